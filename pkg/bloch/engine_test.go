package bloch

import (
	"bytes"
	"testing"

	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/stretchr/testify/require"
)

func bellProgram() *ast.Program {
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

func TestEngineRunProducesQASMAndMeasurements(t *testing.T) {
	var out bytes.Buffer
	engine := New(WithOutput(&out), WithSeed(1))
	require.NoError(t, engine.Run(bellProgram()))

	require.Contains(t, engine.QASM(), "cx q[0],q[1];")
	meas := engine.Measurements()
	require.Len(t, meas, 2)
	require.Equal(t, meas[0], meas[1])
}

func TestEngineHeapSizeReflectsConstructedObjects(t *testing.T) {
	classA := ast.Class("A", "", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)
	body := ast.Block(
		ast.VarDecl("a", ast.Named("A"), ast.New("A")),
	)
	program := ast.Prog([]*ast.ClassDecl{classA}, []*ast.FunctionDecl{ast.Func("main", nil, ast.Void(), body)})
	engine := New()
	require.NoError(t, engine.Run(program))
	require.Equal(t, 1, engine.HeapSize())
}

func TestEngineQASMEmptyBeforeRun(t *testing.T) {
	engine := New()
	require.Equal(t, "", engine.QASM())
	require.Nil(t, engine.TrackedCounts())
	require.Nil(t, engine.Measurements())
	require.Equal(t, 0, engine.HeapSize())
}

func TestWithTranscriptFalseSurvivesWithSeed(t *testing.T) {
	// Regression: WithTranscript must always apply after WithSeed, since
	// WithSeed swaps in a fresh simulator (defaulting to transcript-enabled)
	// internally.
	engine := New(WithSeed(7), WithTranscript(false))
	require.NoError(t, engine.Run(bellProgram()))
	require.NotContains(t, engine.QASM(), "h q[0];")
}

func TestEngineRunRejectsInvalidProgram(t *testing.T) {
	// no 'main' function: semantic analysis should fail before execution.
	program := ast.Prog(nil, nil)
	engine := New()
	require.Error(t, engine.Run(program))
}
