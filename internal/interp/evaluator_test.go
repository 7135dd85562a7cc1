package interp

import (
	"bytes"
	"testing"

	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/registry"
	"github.com/bloch-labs/bloch/internal/semantic"
	"github.com/stretchr/testify/require"
)

func mainProgram(body *ast.BlockStmt, annos ...ast.Annotation) *ast.Program {
	main := ast.Func("main", nil, ast.Void(), body, annos...)
	return ast.Prog(nil, []*ast.FunctionDecl{main})
}

func analyzeAndRun(t *testing.T, program *ast.Program, opts ...Option) (*Evaluator, error) {
	t.Helper()
	reg, err := semantic.Analyze(program)
	require.NoError(t, err)
	ev := New(reg, opts...)
	return ev, ev.Execute(program)
}

func TestExecuteRejectsSecondRun(t *testing.T) {
	reg, err := semantic.Analyze(mainProgram(ast.Block()))
	require.NoError(t, err)
	ev := New(reg)
	require.NoError(t, ev.Execute(mainProgram(ast.Block())))
	require.Error(t, ev.Execute(mainProgram(ast.Block())))
}

func TestExecuteRequiresMain(t *testing.T) {
	reg, errs := registry.Build(nil)
	require.Empty(t, errs)
	ev := New(reg)
	err := ev.Execute(ast.Prog(nil, nil))
	require.Error(t, err)
}

func TestBellStateTranscriptAndEntangledMeasurements(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("q0", ast.Prim("qubit"), nil),
		ast.VarDecl("q1", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q0"))},
		&ast.ExprStmt{Expr: ast.Call(ast.Id("cx"), ast.Id("q0"), ast.Id("q1"))},
		&ast.MeasureStmt{Target: ast.Id("q0")},
		&ast.MeasureStmt{Target: ast.Id("q1")},
	)
	ev, err := analyzeAndRun(t, mainProgram(body))
	require.NoError(t, err)

	want := "OPENQASM 2.0;\n" +
		"include \"qelib1.inc\";\n" +
		"qreg q[2];\n" +
		"creg c[2];\n" +
		"h q[0];\n" +
		"cx q[0],q[1];\n" +
		"measure q[0] -> c[0];\n" +
		"measure q[1] -> c[1];\n"
	require.Equal(t, want, ev.GetQASM())

	meas := ev.Measurements()
	require.Len(t, meas, 2)
	require.Equal(t, meas[0], meas[1])
}

func TestGateAfterMeasureFails(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("q", ast.Prim("qubit"), nil),
		&ast.MeasureStmt{Target: ast.Id("q")},
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q"))},
	)
	_, err := analyzeAndRun(t, mainProgram(body))
	require.Error(t, err)
}

func TestArrayIndexOutOfRangeFails(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("xs", ast.Arr(ast.Prim("int"), 0), nil),
		ast.Echo(&ast.IndexExpr{Receiver: ast.Id("xs"), Index: ast.IntV(0)}),
	)
	_, err := analyzeAndRun(t, mainProgram(body))
	require.Error(t, err)
}

func TestQubitZeroValuesAreDistinctAllocations(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("q0", ast.Prim("qubit"), nil),
		ast.VarDecl("q1", ast.Prim("qubit"), nil),
		&ast.MeasureStmt{Target: ast.Id("q0")},
		&ast.MeasureStmt{Target: ast.Id("q1")},
	)
	ev, err := analyzeAndRun(t, mainProgram(body))
	require.NoError(t, err)
	require.Len(t, ev.Measurements(), 2)
}

func TestVirtualDispatchEchoesOverriddenMethod(t *testing.T) {
	classA := ast.Class("A", "", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil,
		[]*ast.MethodDecl{ast.Method("f", nil, ast.Prim("int"), true, false, ast.Block(ast.Return(ast.IntV(1))))},
	)
	classB := ast.Class("B", "A", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil,
		[]*ast.MethodDecl{ast.Method("f", nil, ast.Prim("int"), false, true, ast.Block(ast.Return(ast.IntV(2))))},
	)
	body := ast.Block(
		ast.VarDecl("a", ast.Named("A"), ast.New("B")),
		ast.Echo(ast.MethodCall(ast.Id("a"), "f")),
	)
	program := ast.Prog([]*ast.ClassDecl{classA, classB}, []*ast.FunctionDecl{ast.Func("main", nil, ast.Void(), body)})

	reg, err := semantic.Analyze(program)
	require.NoError(t, err)
	var out bytes.Buffer
	ev := New(reg, WithEcho(true), WithOutput(&out))
	require.NoError(t, ev.Execute(program))
	require.Equal(t, "2\n", out.String())
}

func TestTernaryAcceptsBitConditionAtRuntime(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("b", ast.Prim("bit"), &ast.BitLit{Value: 1}),
		ast.Echo(&ast.TernaryExpr{Cond: ast.Id("b"), Then: ast.IntV(1), Else: ast.IntV(2)}),
	)
	var out bytes.Buffer
	ev, err := analyzeAndRun(t, mainProgram(body), WithEcho(true), WithOutput(&out))
	require.NoError(t, err)
	require.Equal(t, "1\n", out.String())
}

func TestTrackedHistogramAccumulatesOneOutcomePerShot(t *testing.T) {
	body := ast.Block(
		ast.TrackedVarDecl("q", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q"))},
		&ast.MeasureStmt{Target: ast.Id("q")},
	)
	ev, err := analyzeAndRun(t, mainProgram(body, ast.Shots(8)))
	require.NoError(t, err)

	counts := ev.TrackedCounts()
	require.Contains(t, counts, "q")
	total := 0
	for _, n := range counts["q"] {
		total += n
	}
	require.Equal(t, 1, total)
}

func TestWithSeedIsDeterministic(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("q", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q"))},
		&ast.MeasureStmt{Target: ast.Id("q")},
	)
	program := mainProgram(body)
	reg, err := semantic.Analyze(program)
	require.NoError(t, err)

	ev1 := New(reg, WithSeed(42))
	require.NoError(t, ev1.Execute(program))

	reg2, err := semantic.Analyze(program)
	require.NoError(t, err)
	ev2 := New(reg2, WithSeed(42))
	require.NoError(t, ev2.Execute(program))

	require.Equal(t, ev1.Measurements()[0], ev2.Measurements()[0])
}

func TestWithTranscriptDisabledOmitsGateLines(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("q", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q"))},
		&ast.MeasureStmt{Target: ast.Id("q")},
	)
	ev, err := analyzeAndRun(t, mainProgram(body), WithTranscript(false))
	require.NoError(t, err)
	qasm := ev.GetQASM()
	require.Contains(t, qasm, "qreg q[1];")
	require.NotContains(t, qasm, "h q")
}

func TestDestroyObjectIsIdempotent(t *testing.T) {
	classA := ast.Class("A", "",
		[]*ast.FieldDecl{ast.Field("n", ast.Prim("int"), ast.Public, false, ast.IntV(0))},
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)
	program := ast.Prog([]*ast.ClassDecl{classA}, []*ast.FunctionDecl{ast.Func("main", nil, ast.Void(), ast.Block())})
	reg, err := semantic.Analyze(program)
	require.NoError(t, err)
	ev := New(reg)
	ev.gc.Start()
	defer ev.gc.Stop()

	obj, err := ev.construct("A", nil, ast.Position{}, &execContext{env: ev.global})
	require.NoError(t, err)

	ctx := &execContext{env: ev.global}
	require.NoError(t, ev.destroyObject(obj, ctx))
	require.True(t, obj.destroyed)
	require.NoError(t, ev.destroyObject(obj, ctx))
}

func TestHeapSizeTracksConstructedObjects(t *testing.T) {
	classA := ast.Class("A", "", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)
	body := ast.Block(
		ast.VarDecl("a", ast.Named("A"), ast.New("A")),
		ast.VarDecl("b", ast.Named("A"), ast.New("A")),
	)
	program := ast.Prog([]*ast.ClassDecl{classA}, []*ast.FunctionDecl{ast.Func("main", nil, ast.Void(), body)})
	ev, err := analyzeAndRun(t, program)
	require.NoError(t, err)
	require.Equal(t, 2, ev.HeapSize())
}

func TestWarnOnExitReportsUnmeasuredQubit(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("q0", ast.Prim("qubit"), nil),
		ast.VarDecl("q1", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q0"))},
		&ast.MeasureStmt{Target: ast.Id("q0")},
	)
	var out bytes.Buffer
	ev, err := analyzeAndRun(t, mainProgram(body), WithOutput(&out), WithWarnOnExit(true))
	require.NoError(t, err)
	require.Contains(t, out.String(), "warning: qubit 1 was never measured")
	require.NotContains(t, out.String(), "qubit 0 was never measured")
}

func TestWarnOnExitDisabledEmitsNothing(t *testing.T) {
	body := ast.Block(ast.VarDecl("q0", ast.Prim("qubit"), nil))
	var out bytes.Buffer
	_, err := analyzeAndRun(t, mainProgram(body), WithOutput(&out), WithWarnOnExit(false))
	require.NoError(t, err)
	require.Empty(t, out.String())
}
