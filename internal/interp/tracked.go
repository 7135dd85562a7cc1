package interp

import (
	"strconv"
	"strings"
)

// trackedCollector accumulates the histogram of outcomes observed for
// tracked variables and fields across a run, keyed by declaration name.
type trackedCollector struct {
	counts map[string]map[string]int
}

func newTrackedCollector() *trackedCollector {
	return &trackedCollector{counts: make(map[string]map[string]int)}
}

func (t *trackedCollector) add(label, outcome string) {
	m, ok := t.counts[label]
	if !ok {
		m = make(map[string]int)
		t.counts[label] = m
	}
	m[outcome]++
}

// contributeTracked folds every tracked local variable declared directly in
// ctx's block into the histogram, reading its value as it stood when the
// block exited.
func (e *Evaluator) contributeTracked(ctx *execContext) {
	for _, name := range ctx.trackedNames {
		v, ok := ctx.env.Get(name)
		if !ok {
			continue
		}
		e.tracked.add(name, e.trackedOutcome(v))
	}
}

// trackedOutcome renders a value as a histogram bucket label: a measured
// qubit becomes its classical bit, an unmeasured one is "?", and a qubit
// array becomes the concatenation of its bits (or "?" if any bit in it is
// unmeasured).
func (e *Evaluator) trackedOutcome(v Value) string {
	switch t := v.(type) {
	case QubitValue:
		if bit, ok := e.lastMeasured[t]; ok {
			return strconv.Itoa(bit)
		}
		return "?"
	case *ArrayValue:
		var sb strings.Builder
		for _, it := range t.Items {
			q, ok := it.(QubitValue)
			if !ok {
				return "?"
			}
			bit, ok := e.lastMeasured[q]
			if !ok {
				return "?"
			}
			sb.WriteString(strconv.Itoa(bit))
		}
		return sb.String()
	default:
		return v.String()
	}
}
