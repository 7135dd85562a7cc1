package types

import "testing"

// fakeHierarchy is a minimal Hierarchy for testing conversion costs without
// pulling in the registry package.
type fakeHierarchy struct {
	// base maps a class name to its direct base class name.
	base map[string]string
}

func (h *fakeHierarchy) IsDescendantOf(descendant, ancestor string) bool {
	return h.Distance(descendant, ancestor) >= 0
}

func (h *fakeHierarchy) Distance(descendant, ancestor string) int {
	d := 0
	cur := descendant
	for {
		if cur == ancestor {
			return d
		}
		next, ok := h.base[cur]
		if !ok {
			return -1
		}
		cur = next
		d++
	}
}

func testHierarchy() *fakeHierarchy {
	return &fakeHierarchy{base: map[string]string{
		"Cat":    "Animal",
		"Animal": "Object",
	}}
}

func TestConversionCostExactMatch(t *testing.T) {
	cost, ok := ConversionCost(nil, IntType(), IntType())
	if !ok || cost != 0 {
		t.Errorf("ConversionCost(int, int) = %v, %v, want 0, true", cost, ok)
	}
}

func TestConversionCostIntToLongWidens(t *testing.T) {
	cost, ok := ConversionCost(nil, LongType(), IntType())
	if !ok || cost != 1 {
		t.Errorf("ConversionCost(long, int) = %v, %v, want 1, true", cost, ok)
	}
}

func TestConversionCostLongToIntFails(t *testing.T) {
	_, ok := ConversionCost(nil, IntType(), LongType())
	if ok {
		t.Errorf("ConversionCost(int, long) should not be assignable")
	}
}

func TestConversionCostNullToClass(t *testing.T) {
	cost, ok := ConversionCost(nil, Class("Cat"), NullType())
	if !ok || cost != 3 {
		t.Errorf("ConversionCost(Cat, null) = %v, %v, want 3, true", cost, ok)
	}
}

func TestConversionCostNullToPrimitiveFails(t *testing.T) {
	_, ok := ConversionCost(nil, IntType(), NullType())
	if ok {
		t.Errorf("null should not be assignable to int")
	}
}

func TestConversionCostClassDistance(t *testing.T) {
	h := testHierarchy()
	cost, ok := ConversionCost(h, Class("Animal"), Class("Cat"))
	if !ok || cost != 1 {
		t.Errorf("ConversionCost(Animal, Cat) = %v, %v, want 1, true", cost, ok)
	}
	cost, ok = ConversionCost(h, Class("Object"), Class("Cat"))
	if !ok || cost != 2 {
		t.Errorf("ConversionCost(Object, Cat) = %v, %v, want 2, true", cost, ok)
	}
}

func TestConversionCostUnrelatedClassesFail(t *testing.T) {
	h := testHierarchy()
	_, ok := ConversionCost(h, Class("Cat"), Class("Animal"))
	if ok {
		t.Errorf("a supertype value should not be assignable to a subtype target")
	}
}

func TestConversionCostArraysRequireIdenticalElement(t *testing.T) {
	_, ok := ConversionCost(nil, ArrayOf(IntType()), ArrayOf(IntType()))
	if !ok {
		t.Errorf("identical-element arrays should be assignable")
	}
	_, ok = ConversionCost(nil, ArrayOf(IntType()), ArrayOf(LongType()))
	if ok {
		t.Errorf("arrays of different element types should not be assignable, even when the element widens")
	}
}

func TestConversionCostTypeParamsMatchByName(t *testing.T) {
	cost, ok := ConversionCost(nil, Param("T"), Param("T"))
	if !ok || cost != 0 {
		t.Errorf("ConversionCost(T, T) = %v, %v, want 0, true", cost, ok)
	}
	_, ok = ConversionCost(nil, Param("T"), Param("U"))
	if ok {
		t.Errorf("differently named type parameters should not match")
	}
}

func TestAssignable(t *testing.T) {
	h := testHierarchy()
	if !Assignable(h, Class("Animal"), Class("Cat")) {
		t.Errorf("Cat should be assignable to Animal")
	}
	if Assignable(h, Class("Cat"), Class("Animal")) {
		t.Errorf("Animal should not be assignable to Cat")
	}
}
