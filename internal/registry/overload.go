package registry

import (
	"fmt"

	"github.com/bloch-labs/bloch/internal/types"
)

// Candidate is anything with a parameter-type list that can compete in
// overload resolution: a MethodInfo or a ConstructorInfo.
type Candidate struct {
	Params []types.TypeInfo
	Method *MethodInfo      // nil for a constructor candidate
	Ctor   *ConstructorInfo // nil for a method candidate
}

// ErrAmbiguous is returned by ResolveOverload when two or more candidates
// tie for the minimum conversion cost.
type ErrAmbiguous struct {
	Name string
}

func (e *ErrAmbiguous) Error() string {
	return fmt.Sprintf("ambiguous call to '%s': no single best overload", e.Name)
}

// ErrNoMatch is returned when no candidate accepts the given arguments.
type ErrNoMatch struct {
	Name string
}

func (e *ErrNoMatch) Error() string {
	return fmt.Sprintf("no overload of '%s' matches the given arguments", e.Name)
}

// ResolveOverload implements spec §4.1's overload-resolution rule: the call
// resolves to the unique minimum-cost candidate; ties are ambiguity errors.
// Candidates earlier in the slice are not given priority over later ones —
// hiding of base signatures by a derived class must already be reflected by
// the candidate set the caller passes in (LookupMethods already stops at
// the first class that declares any overload of the name).
func ResolveOverload(name string, candidates []Candidate, argTypes []types.TypeInfo, h types.Hierarchy) (*Candidate, error) {
	bestCost := -1
	var best *Candidate
	tie := false

	for i := range candidates {
		c := &candidates[i]
		if len(c.Params) != len(argTypes) {
			continue
		}
		total := 0
		ok := true
		for j, want := range c.Params {
			cost, matched := types.ConversionCost(h, want, argTypes[j])
			if !matched {
				ok = false
				break
			}
			total += cost
		}
		if !ok {
			continue
		}
		switch {
		case best == nil || total < bestCost:
			best, bestCost, tie = c, total, false
		case total == bestCost:
			tie = true
		}
	}

	if best == nil {
		return nil, &ErrNoMatch{Name: name}
	}
	if tie {
		return nil, &ErrAmbiguous{Name: name}
	}
	return best, nil
}

// MethodCandidates converts an overload set to Candidate values.
func MethodCandidates(methods []*MethodInfo) []Candidate {
	out := make([]Candidate, len(methods))
	for i, m := range methods {
		out[i] = Candidate{Params: m.Params, Method: m}
	}
	return out
}

// ConstructorCandidates converts a constructor list to Candidate values.
func ConstructorCandidates(ctors []*ConstructorInfo) []Candidate {
	out := make([]Candidate, len(ctors))
	for i, c := range ctors {
		out[i] = Candidate{Params: c.Params, Ctor: c}
	}
	return out
}
