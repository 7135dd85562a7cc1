package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/registry"
	"github.com/bloch-labs/bloch/internal/sim"
	"github.com/bloch-labs/bloch/internal/types"
)

// Evaluator is a single-use tree-walking interpreter: execute is a reuse
// guard, since spec §4.3 runs a fresh evaluator per shot.
type Evaluator struct {
	reg     *registry.Registry
	classes *RuntimeClasses
	sim     *sim.Simulator
	gc      *GC

	global    *Environment
	functions map[string][]*ast.FunctionDecl

	echo       bool
	warnOnExit bool
	out        io.Writer

	executed bool

	lastMeasured map[QubitValue]int
	tracked      *trackedCollector
	warnings     []string
}

// Option configures an Evaluator at construction time.
type Option func(*Evaluator)

func WithEcho(enabled bool) Option       { return func(e *Evaluator) { e.echo = enabled } }
func WithWarnOnExit(enabled bool) Option { return func(e *Evaluator) { e.warnOnExit = enabled } }
func WithOutput(w io.Writer) Option      { return func(e *Evaluator) { e.out = w } }
func WithSeed(seed uint64) Option {
	return func(e *Evaluator) { e.sim = sim.NewSeeded(seed) }
}
func WithTranscript(enabled bool) Option {
	return func(e *Evaluator) { e.sim.SetTranscriptEnabled(enabled) }
}

// New builds an Evaluator against an already-built registry (typically the
// one returned by semantic.Analyze).
func New(reg *registry.Registry, opts ...Option) *Evaluator {
	e := &Evaluator{
		reg:          reg,
		classes:      BuildRuntimeClasses(reg),
		sim:          sim.New(),
		gc:           NewGC(),
		global:       NewEnvironment(),
		functions:    make(map[string][]*ast.FunctionDecl),
		out:          os.Stdout,
		lastMeasured: make(map[QubitValue]int),
		tracked:      newTrackedCollector(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs program's main function once. Calling Execute a second time
// on the same Evaluator fails, since the heap, simulator, and static storage
// are not reset between runs.
func (e *Evaluator) Execute(program *ast.Program) error {
	if e.executed {
		return errors.Runtimef(errors.Position{}, "evaluator has already executed a program")
	}
	e.executed = true

	for _, f := range program.Functions {
		e.functions[f.Name] = append(e.functions[f.Name], f)
	}

	if len(program.Classes) > 0 {
		e.gc.Start()
		defer e.gc.Stop()
	}

	if err := e.initStaticFields(program); err != nil {
		return err
	}

	main := program.Main()
	if main == nil {
		return errors.Runtimef(errors.Position{}, "program has no 'main' function")
	}
	if _, err := e.callFunction(main, nil); err != nil {
		return err
	}

	e.gc.RequestCollection()
	e.runPendingCollection()

	if e.warnOnExit {
		e.emitUnmeasuredWarnings()
	}
	return nil
}

// initStaticFields evaluates every class's static field initializers, in
// registry order (each base class before its derived classes), before main
// runs.
func (e *Evaluator) initStaticFields(program *ast.Program) error {
	for _, name := range e.reg.Order {
		rc := e.classes.Get(name)
		ctx := &execContext{env: NewEnclosedEnvironment(e.global)}
		for _, f := range rc.Info.StaticFields {
			if f.Init == nil {
				v, err := e.zeroValueForNode(f.TypeNode, f.Type, ctx)
				if err != nil {
					return err
				}
				rc.StaticFields[f.Name] = v
				continue
			}
			v, err := e.evalExpr(f.Init, ctx)
			if err != nil {
				return err
			}
			rc.StaticFields[f.Name] = v
		}
	}
	return nil
}

// zeroValue returns the default value for a declared type when no
// initializer is present and no syntax-level type node (carrying an array's
// Size expression) is available. Qubit defaults can't be produced here since
// allocation requires the simulator; callers needing a qubit zero value must
// go through zeroValueForNode instead.
func zeroValue(t types.TypeInfo) Value {
	switch {
	case t.IsArray(), t.IsClass():
		return NullValue{}
	case t.Primitive == types.Int:
		return IntValue(0)
	case t.Primitive == types.Long:
		return LongValue(0)
	case t.Primitive == types.Float:
		return FloatValue(0)
	case t.Primitive == types.Bit:
		return BitValue(0)
	case t.Primitive == types.Boolean:
		return BoolValue(false)
	case t.Primitive == types.String:
		return StringValue("")
	case t.Primitive == types.Char:
		return CharValue(0)
	default:
		return NullValue{}
	}
}

// zeroValueForNode builds a type-appropriate default, per spec §4.3's
// "Value defaults": a freshly allocated qubit for qubit, a fixed-size array
// sized from the declared size (node's Size expression, evaluated in ctx),
// and the usual scalar zeros otherwise. node may be nil when only a resolved
// TypeInfo is available (no array sizing needed in that case).
func (e *Evaluator) zeroValueForNode(node ast.TypeNode, t types.TypeInfo, ctx *execContext) (Value, error) {
	if t.Primitive == types.Qubit {
		return QubitValue(e.sim.AllocateQubit()), nil
	}
	if t.IsArray() {
		size := 0
		var elemNode ast.TypeNode
		if arr, ok := node.(*ast.ArrayTypeNode); ok {
			elemNode = arr.Elem
			if arr.Size != nil {
				sv, err := e.evalExpr(arr.Size, ctx)
				if err != nil {
					return nil, err
				}
				size = asInt(sv)
			}
		}
		if size < 0 {
			return nil, errors.Runtimef(errors.Position{}, "array size must be non-negative, got %d", size)
		}
		elem := t.ElemType()
		items := make([]Value, size)
		for i := range items {
			v, err := e.zeroValueForNode(elemNode, elem, ctx)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return &ArrayValue{Elem: elem, Items: items}, nil
	}
	return zeroValue(t), nil
}

// execContext carries per-call state: the current environment, the `this`
// receiver (nil in a static or free-function context), and the statically
// declared current class for super dispatch.
type execContext struct {
	env          *Environment
	this         *Object
	currentClass *RuntimeClass
	returning    bool
	returnValue  Value

	// trackedNames holds the names of tracked variables declared directly
	// in this block, contributed to the histogram when the block exits.
	trackedNames []string
}

// checkStatementBoundary runs a pending collection, marking roots from the
// live call stack (via ctx.env's chain) plus static storage. Called between
// statements, per spec §5's race-free root-scanning contract.
func (e *Evaluator) checkStatementBoundary(ctx *execContext) error {
	if e.gc.CheckPending() {
		e.collectWithRoots(ctx)
	}
	return nil
}

func (e *Evaluator) runPendingCollection() {
	e.collectWithRoots(&execContext{env: e.global})
}

func (e *Evaluator) collectWithRoots(ctx *execContext) {
	var roots []Value
	for env := ctx.env; env != nil; env = env.Outer() {
		env.Range(func(_ string, v Value) { roots = append(roots, v) })
	}
	if ctx.this != nil {
		roots = append(roots, ObjectRef{Obj: ctx.this})
	}
	for _, name := range e.reg.Order {
		rc := e.classes.Get(name)
		for _, v := range rc.StaticFields {
			roots = append(roots, v)
		}
	}
	e.gc.Collect(roots)
}

// GetQASM returns the accumulated OpenQASM 2.0 transcript.
func (e *Evaluator) GetQASM() string {
	return e.sim.QASM()
}

// SetEcho toggles whether echo statements write to the configured output
// writer. Exposed as a method (in addition to the WithEcho constructor
// option) per spec §6's host-environment surface.
func (e *Evaluator) SetEcho(enabled bool) { e.echo = enabled }

// SetWarnOnExit toggles whether unmeasured-qubit warnings are emitted when
// Execute returns.
func (e *Evaluator) SetWarnOnExit(enabled bool) { e.warnOnExit = enabled }

// Measurements returns the last observed classical bit for every qubit that
// has been measured at least once, keyed by qubit index.
func (e *Evaluator) Measurements() map[int]int {
	out := make(map[int]int, len(e.lastMeasured))
	for q, bit := range e.lastMeasured {
		out[int(q)] = bit
	}
	return out
}

// TrackedCounts returns the histogram accumulated from this run's tracked
// variables, keyed by declaration label.
func (e *Evaluator) TrackedCounts() map[string]map[string]int {
	return e.tracked.counts
}

// HeapSize reports the number of objects registered on the heap, for tests.
func (e *Evaluator) HeapSize() int {
	e.gc.mu.Lock()
	defer e.gc.mu.Unlock()
	return len(e.gc.heap)
}

// collectUnmeasuredWarnings populates e.warnings with one entry per
// allocated qubit that was never measured before Execute returned.
func (e *Evaluator) collectUnmeasuredWarnings() {
	for q := 0; q < e.sim.NumQubits(); q++ {
		if !e.sim.IsMeasured(q) {
			e.warnings = append(e.warnings, fmt.Sprintf("qubit %d was never measured", q))
		}
	}
}

func (e *Evaluator) emitUnmeasuredWarnings() {
	e.collectUnmeasuredWarnings()
	for _, w := range e.warnings {
		_, _ = io.WriteString(e.out, "warning: "+w+"\n")
	}
}
