package bloch

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/semantic"
	"github.com/google/uuid"
)

// ShotRun records one shot's outcome for log correlation: its generated run
// identifier and its own (unmerged) tracked-outcome histogram.
type ShotRun struct {
	RunID   uuid.UUID
	Tracked map[string]map[string]int
}

// ShotResult aggregates the outcome of RunShots: per-shot run identifiers
// plus the merged tracked-outcome histogram, summed label-by-label,
// outcome-by-outcome across every shot.
type ShotResult struct {
	Shots   int
	Runs    []ShotRun
	Tracked map[string]map[string]int
}

// RunShots implements spec §4.3's multi-shot contract: "the CLI constructs
// N fresh evaluators and runs main on each; each evaluator is responsible
// for a single execution... aggregation happens outside the evaluator by
// merging trackedCounts." Analysis runs once; a fresh Evaluator backs each
// shot.
func (e *Engine) RunShots(program *ast.Program, shots int) (*ShotResult, error) {
	if shots <= 0 {
		shots = 1
	}
	reg, err := semantic.Analyze(program)
	if err != nil {
		return nil, err
	}

	result := &ShotResult{Shots: shots, Tracked: make(map[string]map[string]int)}
	for i := 0; i < shots; i++ {
		ev := e.newEvaluator(reg)
		if err := ev.Execute(program); err != nil {
			return result, err
		}
		e.lastEval = ev

		runID := uuid.New()
		tracked := ev.TrackedCounts()
		result.Runs = append(result.Runs, ShotRun{RunID: runID, Tracked: tracked})
		mergeTracked(result.Tracked, tracked)
	}
	return result, nil
}

// mergeTracked folds src's label/outcome counts into dst.
func mergeTracked(dst, src map[string]map[string]int) {
	for label, hist := range src {
		out, ok := dst[label]
		if !ok {
			out = make(map[string]int)
			dst[label] = out
		}
		for outcome, count := range hist {
			out[outcome] += count
		}
	}
}
