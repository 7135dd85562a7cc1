// Package examples holds a small set of hand-built Bloch programs the
// driver CLI can run. A textual parser is out of scope for this module (see
// spec.md §1), so programs are assembled directly from internal/ast rather
// than parsed from source text.
package examples

import (
	"sort"

	"github.com/bloch-labs/bloch/internal/ast"
)

// registry is the set of named example programs the CLI's `run` subcommand
// can select between.
var registry = map[string]func() *ast.Program{
	"bell":    BellState,
	"virtual": VirtualDispatch,
	"tracked": TrackedHistogram,
}

// Names returns the registered example names, sorted for stable --help output.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get looks up a named example program.
func Get(name string) (*ast.Program, bool) {
	build, ok := registry[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// BellState builds spec §8's end-to-end scenario 1: allocate two qubits,
// entangle them, and measure both. The QASM transcript is exactly the
// header followed by h/cx/measure/measure.
func BellState() *ast.Program {
	body := ast.Block(
		ast.VarDecl("q0", ast.Prim("qubit"), nil),
		ast.VarDecl("q1", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q0"))},
		&ast.ExprStmt{Expr: ast.Call(ast.Id("cx"), ast.Id("q0"), ast.Id("q1"))},
		&ast.MeasureStmt{Target: ast.Id("q0")},
		&ast.MeasureStmt{Target: ast.Id("q1")},
	)
	main := ast.Func("main", nil, ast.Void(), body)
	return ast.Prog(nil, []*ast.FunctionDecl{main})
}

// VirtualDispatch builds spec §8's scenario 2: base class A with virtual
// f() -> int returning 1, derived B overriding f to return 2. `A a = new
// B(); echo(a.f());` emits 2.
func VirtualDispatch() *ast.Program {
	classA := ast.Class("A", "", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())},
		nil,
		[]*ast.MethodDecl{
			ast.Method("f", nil, ast.Prim("int"), true, false, ast.Block(ast.Return(ast.IntV(1)))),
		},
	)
	classB := ast.Class("B", "A", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())},
		nil,
		[]*ast.MethodDecl{
			ast.Method("f", nil, ast.Prim("int"), false, true, ast.Block(ast.Return(ast.IntV(2)))),
		},
	)
	body := ast.Block(
		ast.VarDecl("a", ast.Named("A"), ast.New("B")),
		ast.Echo(ast.MethodCall(ast.Id("a"), "f")),
	)
	main := ast.Func("main", nil, ast.Void(), body)
	return ast.Prog([]*ast.ClassDecl{classA, classB}, []*ast.FunctionDecl{main})
}

// TrackedHistogram builds spec §8's scenario 4: `@tracked qubit q; h(q);
// measure q;` inside main, run for @shots(8). After 8 shots the histogram
// for label "q" sums to 8.
func TrackedHistogram() *ast.Program {
	body := ast.Block(
		ast.TrackedVarDecl("q", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q"))},
		&ast.MeasureStmt{Target: ast.Id("q")},
	)
	main := ast.Func("main", nil, ast.Void(), body, ast.Shots(8))
	return ast.Prog(nil, []*ast.FunctionDecl{main})
}
