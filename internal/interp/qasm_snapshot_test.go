package interp

import (
	"testing"

	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/semantic"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

// Snapshot-tests the generated QASM transcript for representative programs,
// the same way the teacher snapshots program output in fixture_test.go.

func TestQASMTranscriptSnapshotBellState(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("q0", ast.Prim("qubit"), nil),
		ast.VarDecl("q1", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q0"))},
		&ast.ExprStmt{Expr: ast.Call(ast.Id("cx"), ast.Id("q0"), ast.Id("q1"))},
		&ast.MeasureStmt{Target: ast.Id("q0")},
		&ast.MeasureStmt{Target: ast.Id("q1")},
	)
	ev, err := analyzeAndRun(t, mainProgram(body), WithSeed(1))
	require.NoError(t, err)
	snaps.MatchSnapshot(t, ev.GetQASM())
}

func TestQASMTranscriptSnapshotThreeQubitChain(t *testing.T) {
	body := ast.Block(
		ast.VarDecl("q0", ast.Prim("qubit"), nil),
		ast.VarDecl("q1", ast.Prim("qubit"), nil),
		ast.VarDecl("q2", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q0"))},
		&ast.ExprStmt{Expr: ast.Call(ast.Id("cx"), ast.Id("q0"), ast.Id("q1"))},
		&ast.ExprStmt{Expr: ast.Call(ast.Id("cx"), ast.Id("q1"), ast.Id("q2"))},
		&ast.ExprStmt{Expr: ast.Call(ast.Id("x"), ast.Id("q2"))},
		&ast.MeasureStmt{Target: ast.Id("q0")},
		&ast.MeasureStmt{Target: ast.Id("q1")},
		&ast.MeasureStmt{Target: ast.Id("q2")},
	)
	ev, err := analyzeAndRun(t, mainProgram(body), WithSeed(2))
	require.NoError(t, err)
	snaps.MatchSnapshot(t, ev.GetQASM())
}

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	_ = v
	if v != 0 {
		panic("interp package tests failed")
	}
}

var _ = semantic.Analyze
