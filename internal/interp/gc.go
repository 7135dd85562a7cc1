package interp

import (
	"sync"
	"sync/atomic"
	"time"
)

// collectionInterval is how often the background worker requests a pass,
// per spec §4.3's cycle collector.
const collectionInterval = 50 * time.Millisecond

// GC is the background cycle collector. A worker goroutine periodically
// requests a collection by setting a flag; the mutator (the Evaluator, on
// its own goroutine) checks the flag at statement boundaries and performs
// the actual mark/sweep pass itself, since only the mutator can safely walk
// its own environment chain and static storage. This keeps root scanning
// race-free without locking scopes, at the cost of the heap list itself
// needing a mutex shared between the two goroutines.
type GC struct {
	mu   sync.Mutex
	heap []*Object

	pending atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewGC creates a collector with its background worker not yet running.
func NewGC() *GC {
	return &GC{stop: make(chan struct{}), done: make(chan struct{})}
}

// Start launches the background worker goroutine.
func (g *GC) Start() {
	go g.run()
}

// Stop signals the worker to exit and waits for it to do so.
func (g *GC) Stop() {
	close(g.stop)
	<-g.done
}

func (g *GC) run() {
	defer close(g.done)
	ticker := time.NewTicker(collectionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.pending.Store(true)
		}
	}
}

// Register adds obj to the heap list, for future mark/sweep passes.
func (g *GC) Register(obj *Object) {
	g.mu.Lock()
	g.heap = append(g.heap, obj)
	g.mu.Unlock()
}

// CheckPending reports whether a collection has been requested since the
// last call, clearing the request.
func (g *GC) CheckPending() bool {
	return g.pending.Swap(false)
}

// RequestCollection forces a pending collection, used for a final pass at
// program completion and by tests.
func (g *GC) RequestCollection() {
	g.pending.Store(true)
}

// Collect runs one mark/sweep pass: every object reachable from roots is
// marked live; every unmarked object whose class has no tracked fields
// (directly or transitively) has its destructor skipped and its field
// vector cleared, since it can never produce an observable effect again.
// Objects with tracked fields are retained even when unreachable, to
// preserve their eventual tracked-outcome contribution — an intentional,
// documented leak.
func (g *GC) Collect(roots []Value) {
	g.mu.Lock()
	snapshot := make([]*Object, len(g.heap))
	copy(snapshot, g.heap)
	g.mu.Unlock()

	for _, o := range snapshot {
		o.marked = false
	}
	for _, r := range roots {
		markValue(r)
	}
	for _, o := range snapshot {
		if o.marked || o.destroyed {
			continue
		}
		if !o.Class.HasTrackedFields() {
			o.skipDtor = true
			o.Fields = nil
		}
	}
}

func markValue(v Value) {
	switch val := v.(type) {
	case ObjectRef:
		markObject(val.Obj)
	case *ArrayValue:
		if val == nil {
			return
		}
		for _, it := range val.Items {
			markValue(it)
		}
	}
}

func markObject(o *Object) {
	if o == nil || o.marked {
		return
	}
	o.marked = true
	for _, f := range o.Fields {
		markValue(f)
	}
}
