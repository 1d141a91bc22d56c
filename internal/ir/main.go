package ir

import "github.com/dmzlang/dmzc/internal/resolved"

// emitMainWrapper synthesizes the real process entry point (spec.md
// §4.5's "Main wrapper"): a nullary `main` of type `() -> i32` whose
// body calls the user's `__builtin_main` and returns 0, so a `main`
// that returns `void` in source still yields a process exit code.
func (b *Builder) emitMainWrapper(userMain *Func) {
	f := &Func{Name: "main", ReturnType: IntType{Bits: 32, Signed: true}, Status: DeclaredSignatureOnly}
	entry := f.NewBlock("entry")

	callee := GlobalRef{Name: userMain.Name, Typ: funcValueType(userMain)}
	f.emitCall(entry, userMain.ReturnType, callee, nil, nil, nil)
	f.emitRet(entry, IntConst{Typ: IntType{Bits: 32, Signed: true}, Value: 0})

	f.Status = BodyEmitted
	b.funcs["main"] = f
	b.mod.addFunc(f)
}

// emitTestRunner synthesizes `-test` mode's entry point: a `main` of
// type `() -> i32` that calls every TestDecl's lowered nullary function
// in declaration order, then returns 0 (spec.md §4.5: "Test mode emits
// a test-runner main that calls every TestDecl in turn"). Pass/fail
// signaling is left to whatever the test body itself does (a failed
// `!` unwrap traps the process); there is no separate test
// harness protocol to synthesize here.
func (b *Builder) emitTestRunner(tests []*resolved.TestDecl) {
	f := &Func{Name: "main", ReturnType: IntType{Bits: 32, Signed: true}, Status: DeclaredSignatureOnly}
	entry := f.NewBlock("entry")

	for _, td := range tests {
		tf := b.funcs[td.SymbolName()]
		if tf == nil {
			continue
		}
		callee := GlobalRef{Name: tf.Name, Typ: funcValueType(tf)}
		f.emitCall(entry, tf.ReturnType, callee, nil, nil, nil)
	}
	f.emitRet(entry, IntConst{Typ: IntType{Bits: 32, Signed: true}, Value: 0})

	f.Status = BodyEmitted
	b.funcs["main"] = f
	b.mod.addFunc(f)
}
