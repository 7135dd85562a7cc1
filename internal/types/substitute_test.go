package types

import "testing"

func TestSubstituteReplacesBoundParam(t *testing.T) {
	bindings := map[string]TypeInfo{"T": IntType()}
	got := Substitute(Param("T"), bindings)
	if !Equal(got, IntType()) {
		t.Errorf("Substitute(T) = %v, want int", got)
	}
}

func TestSubstituteLeavesUnboundParam(t *testing.T) {
	got := Substitute(Param("U"), map[string]TypeInfo{"T": IntType()})
	if !Equal(got, Param("U")) {
		t.Errorf("Substitute(U) = %v, want U unchanged", got)
	}
}

func TestSubstituteAppliesStructurally(t *testing.T) {
	boxed := Class("Box", Param("T"))
	bindings := map[string]TypeInfo{"T": StringType()}
	got := Substitute(boxed, bindings)
	if !Equal(got, Class("Box", StringType())) {
		t.Errorf("Substitute(Box<T>) = %v, want Box<string>", got)
	}
}

func TestSubstituteArrayElement(t *testing.T) {
	arr := ArrayOf(Param("T"))
	got := Substitute(arr, map[string]TypeInfo{"T": LongType()})
	if !got.IsArray() || !Equal(got.ElemType(), LongType()) {
		t.Errorf("Substitute(T[]) = %v, want long[]", got)
	}
}

func TestSubstituteNonGenericUnchanged(t *testing.T) {
	got := Substitute(IntType(), map[string]TypeInfo{"T": StringType()})
	if !Equal(got, IntType()) {
		t.Errorf("Substitute(int) = %v, want int unchanged", got)
	}
}
