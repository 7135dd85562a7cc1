package bloch

import (
	"testing"

	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/stretchr/testify/require"
)

func trackedQubitProgram() *ast.Program {
	body := ast.Block(
		ast.TrackedVarDecl("q", ast.Prim("qubit"), nil),
		&ast.ExprStmt{Expr: ast.Call(ast.Id("h"), ast.Id("q"))},
		&ast.MeasureStmt{Target: ast.Id("q")},
	)
	main := ast.Func("main", nil, ast.Void(), body, ast.Shots(10))
	return ast.Prog(nil, []*ast.FunctionDecl{main})
}

func TestRunShotsAggregatesAcrossFreshEvaluators(t *testing.T) {
	engine := New(WithSeed(3))
	result, err := engine.RunShots(trackedQubitProgram(), 10)
	require.NoError(t, err)

	require.Equal(t, 10, result.Shots)
	require.Len(t, result.Runs, 10)

	total := 0
	for _, n := range result.Tracked["q"] {
		total += n
	}
	require.Equal(t, 10, total)

	for _, run := range result.Runs {
		runTotal := 0
		for _, hist := range run.Tracked {
			for _, n := range hist {
				runTotal += n
			}
		}
		require.Equal(t, 1, runTotal)
	}
}

func TestRunShotsEachRunGetsDistinctID(t *testing.T) {
	engine := New()
	result, err := engine.RunShots(trackedQubitProgram(), 4)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, run := range result.Runs {
		id := run.RunID.String()
		require.False(t, seen[id], "expected distinct run IDs, got duplicate %s", id)
		seen[id] = true
	}
}

func TestRunShotsClampsNonPositiveToOne(t *testing.T) {
	engine := New()
	result, err := engine.RunShots(trackedQubitProgram(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, result.Shots)
	require.Len(t, result.Runs, 1)
}

func TestRunShotsPropagatesAnalysisError(t *testing.T) {
	engine := New()
	_, err := engine.RunShots(ast.Prog(nil, nil), 3)
	require.Error(t, err)
}

func TestMergeTrackedSumsAcrossCalls(t *testing.T) {
	dst := map[string]map[string]int{"q": {"0": 2}}
	mergeTracked(dst, map[string]map[string]int{"q": {"0": 1, "1": 3}})
	require.Equal(t, 3, dst["q"]["0"])
	require.Equal(t, 3, dst["q"]["1"])

	mergeTracked(dst, map[string]map[string]int{"r": {"1": 5}})
	require.Equal(t, 5, dst["r"]["1"])
}
