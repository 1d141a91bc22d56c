package module

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/parser"
	"github.com/dmzlang/dmzc/internal/token"
)

// Merger runs the C3 pass: discover every ".dmz" file reachable from a
// set of include directories, parse each one independently (no file is
// required to declare `main`), and merge their declarations into one
// Tree keyed by module path.
type Merger struct {
	IncludeDirs []string

	errs     []*errors.Report
	warnings []string
}

// NewMerger creates a Merger that walks includeDirs.
func NewMerger(includeDirs []string) *Merger {
	return &Merger{IncludeDirs: includeDirs}
}

// Errors returns every diagnostic collected while discovering, parsing,
// or merging files.
func (m *Merger) Errors() []*errors.Report { return m.errs }

// Warnings returns non-fatal notices (an include directory that does
// not exist, matching the original driver's own warn-and-skip
// behavior rather than aborting the whole pass).
func (m *Merger) Warnings() []string { return m.warnings }

// DiscoverFiles recursively walks every include directory and returns
// every ".dmz" file found, in a deterministic sorted order. A missing
// or non-directory include path is recorded as a warning and skipped,
// rather than failing the whole pass.
func (m *Merger) DiscoverFiles() ([]string, error) {
	var found []string
	for _, dir := range m.IncludeDirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			m.warnings = append(m.warnings, "include directory is invalid or does not exist: "+dir)
			continue
		}
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".dmz") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(found)
	return found, nil
}

// ParseAll parses every path in paths, collecting every phase-one
// diagnostic into m.Errors(). A file that fails to parse cleanly is
// still returned (best-effort, matching the parser's own recovery
// philosophy) so the merge step can proceed as far as possible.
func (m *Merger) ParseAll(paths []string) []*ast.File {
	files := make([]*ast.File, 0, len(paths))
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			m.warnings = append(m.warnings, "could not read "+path+": "+err.Error())
			continue
		}
		file, errs := parser.ParseFile(src, path)
		m.errs = append(m.errs, errs...)
		files = append(files, file)
	}
	return files
}

// Merge folds every file's declarations into one Tree, nesting them
// under the node found by walking each file's module path (creating
// intermediate nodes on demand) and recording every import it wrote.
// A declaration whose name collides with one already merged into the
// same node is reported as MOD003 and dropped; a second `module`
// header inside one file is already caught by the parser (MOD002) and
// is not re-checked here.
func (m *Merger) Merge(files []*ast.File) *Tree {
	tree := newTree()
	for _, file := range files {
		var path []string
		pos := file.Pos
		if file.Module != nil {
			path = file.Module.Path
			pos = file.Module.Pos
		}
		target := m.mergeInto(tree.Root, path, pos)
		m.mergeDecls(target, file.Decls)
		for _, imp := range file.Imports {
			tree.Imports = append(tree.Imports, &ImportEntry{
				From:  path,
				Path:  imp.Path,
				Alias: imp.Alias,
				Pos:   imp.Pos,
			})
		}
	}
	return tree
}

// mergeInto walks path from root, creating any node that does not yet
// exist, and returns the node at the end of it.
func (m *Merger) mergeInto(root *Node, path []string, pos token.Pos) *Node {
	cur := root
	for i, seg := range path {
		child, ok := cur.Children[seg]
		if !ok {
			child = newNode(seg, path[:i+1], pos)
			cur.Children[seg] = child
		}
		cur = child
	}
	return cur
}

// mergeDecls appends decls to target, reporting MOD003 for any name
// that already exists in target.
func (m *Merger) mergeDecls(target *Node, decls []ast.Decl) {
	for _, d := range decls {
		name := declName(d)
		if name != "" {
			if existing := target.FindDecl(name); existing != nil {
				rep := errors.New(errors.MOD003, errors.Phase(errors.MOD003), d.Position(),
					name+" is already declared in module \""+target.PathString()+"\"")
				rep.Data = map[string]any{"name": name, "module": target.PathString(), "first": existing.Position().String()}
				m.errs = append(m.errs, rep)
				continue
			}
		}
		target.Decls = append(target.Decls, d)
	}
}

// Validate checks every recorded import against the merged tree:
// MOD004 when the imported path resolves to no node at all, MOD005
// when following import edges from a module back to itself forms a
// cycle.
func (m *Merger) Validate(tree *Tree) {
	for _, imp := range tree.Imports {
		if tree.Root.Lookup(imp.Path) == nil {
			m.errs = append(m.errs, errors.New(errors.MOD004, errors.Phase(errors.MOD004), imp.Pos,
				"import \""+imp.pathKey()+"\" does not resolve to any known module"))
		}
	}
	m.checkImportCycles(tree)
}

// checkImportCycles builds the module-path import graph and reports
// MOD005 at the edge that first closes a cycle, using a standard
// white/gray/black DFS.
func (m *Merger) checkImportCycles(tree *Tree) {
	edges := map[string][]*ImportEntry{}
	for _, imp := range tree.Imports {
		edges[imp.fromKey()] = append(edges[imp.fromKey()], imp)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, e := range edges[node] {
			to := e.pathKey()
			switch color[to] {
			case gray:
				m.errs = append(m.errs, errors.New(errors.MOD005, errors.Phase(errors.MOD005), e.Pos,
					"circular import: \""+node+"\" imports \""+to+"\" which (transitively) imports it back"))
				return true
			case white:
				if visit(to) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}
	for node := range edges {
		if color[node] == white {
			visit(node)
		}
	}
}

// Run is the full C3 entry point the driver calls: discover every
// ".dmz" file under sources and IncludeDirs, parse them all, merge
// them into one Tree, and validate the import registry against it.
// Explicit command-line source files are unioned with include-dir
// discovery rather than treated as a separate pass, so the resolver
// always sees exactly one merged tree as spec.md's C3 description
// requires.
func (m *Merger) Run(sources []string) (*Tree, error) {
	discovered, err := m.DiscoverFiles()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var all []string
	for _, s := range append(append([]string{}, sources...), discovered...) {
		abs, err := filepath.Abs(s)
		if err != nil {
			abs = s
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		all = append(all, s)
	}
	files := m.ParseAll(all)
	tree := m.Merge(files)
	m.Validate(tree)
	return tree, nil
}
