package driver

import (
	"fmt"
	"os/exec"

	"github.com/dmzlang/dmzc/internal/ir"
)

// handoff forks opts.Backend and writes mod's serialized text form to
// its stdin (spec.md §4.8: "forks a child process that receives the IR
// module through stdin... exit status propagates from the child").
// opts.ModuleMode/opts.Run select which of the two backend personas
// (ahead-of-time object-file compiler vs JIT interpreter) the child
// itself chooses to be; the driver's only job here is the pipe and the
// exit-code passthrough, the backend being an external collaborator
// spec.md places out of scope.
func handoff(mod *ir.Module, opts Options) int {
	if opts.Backend == "" {
		fmt.Fprint(opts.Stdout, mod.String())
		return 0
	}

	args := []string{}
	switch {
	case opts.Run:
		args = append(args, "-run")
	case opts.ModuleMode:
		args = append(args, "-module")
	}
	if opts.Output != "" {
		args = append(args, "-o", opts.Output)
	}

	cmd := exec.Command(opts.Backend, args...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		fmt.Fprintf(opts.Stderr, "%s: cannot open backend pipe: %v\n", red("error"), err)
		return 1
	}
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(opts.Stderr, "%s: cannot start backend %q: %v\n", red("error"), opts.Backend, err)
		return 1
	}

	fmt.Fprint(stdin, mod.String())
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(opts.Stderr, "%s: backend failed: %v\n", red("error"), err)
		return 1
	}
	return 0
}
