package bloch

import (
	"io"
	"os"

	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/interp"
	"github.com/bloch-labs/bloch/internal/registry"
	"github.com/bloch-labs/bloch/internal/semantic"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithEcho toggles echo-statement output.
func WithEcho(enabled bool) Option { return func(e *Engine) { e.cfg.Echo = enabled } }

// WithWarnOnExit toggles unmeasured-qubit warnings at program exit.
func WithWarnOnExit(enabled bool) Option { return func(e *Engine) { e.cfg.WarnOnExit = enabled } }

// WithTranscript toggles QASM transcript recording.
func WithTranscript(enabled bool) Option { return func(e *Engine) { e.cfg.Transcript = enabled } }

// WithOutput sets the writer echo statements and exit warnings are written
// to. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option { return func(e *Engine) { e.out = w } }

// WithSeed pins the simulator's measurement RNG for deterministic runs and
// tests.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seeded = true
		e.seed = seed
	}
}

// WithConfig seeds an Engine's defaults from an EngineConfig (for example,
// one loaded via LoadConfig), before any Option overrides are applied.
func WithConfig(cfg EngineConfig) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// Engine is the host facade described in spec §6's "host environment":
// Run/RunShots analyse a program once and drive the runtime evaluator
// (spec §4.3 requires a fresh Evaluator per shot), keeping the most recent
// run's evaluator around so QASM/TrackedCounts can be read back afterward.
type Engine struct {
	cfg    EngineConfig
	out    io.Writer
	seeded bool
	seed   uint64

	lastEval *interp.Evaluator
}

// New builds an Engine. With no options, it behaves as DefaultConfig with
// output to os.Stdout.
func New(opts ...Option) *Engine {
	e := &Engine{cfg: DefaultConfig(), out: os.Stdout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) newEvaluator(reg *registry.Registry) *interp.Evaluator {
	evalOpts := []interp.Option{
		interp.WithEcho(e.cfg.Echo),
		interp.WithWarnOnExit(e.cfg.WarnOnExit),
		interp.WithOutput(e.out),
	}
	if e.seeded {
		evalOpts = append(evalOpts, interp.WithSeed(e.seed))
	}
	evalOpts = append(evalOpts, interp.WithTranscript(e.cfg.Transcript))
	return interp.New(reg, evalOpts...)
}

// Run analyses program and executes it once, through a single fresh
// Evaluator. The evaluator used is retained so QASM/TrackedCounts/
// Measurements can be read back afterward.
func (e *Engine) Run(program *ast.Program) error {
	reg, err := semantic.Analyze(program)
	if err != nil {
		return err
	}
	ev := e.newEvaluator(reg)
	e.lastEval = ev
	return ev.Execute(program)
}

// QASM returns the QASM transcript of the most recent Run (or the last
// shot of the most recent RunShots). Empty before any run.
func (e *Engine) QASM() string {
	if e.lastEval == nil {
		return ""
	}
	return e.lastEval.GetQASM()
}

// TrackedCounts returns the tracked-outcome histogram of the most recent
// single Run. For multi-shot execution, use RunShots's aggregated result
// instead.
func (e *Engine) TrackedCounts() map[string]map[string]int {
	if e.lastEval == nil {
		return nil
	}
	return e.lastEval.TrackedCounts()
}

// Measurements returns the last observed classical bit per qubit index
// from the most recent Run.
func (e *Engine) Measurements() map[int]int {
	if e.lastEval == nil {
		return nil
	}
	return e.lastEval.Measurements()
}

// HeapSize reports the heap-object count of the most recent run's
// evaluator, for tests.
func (e *Engine) HeapSize() int {
	if e.lastEval == nil {
		return 0
	}
	return e.lastEval.HeapSize()
}
