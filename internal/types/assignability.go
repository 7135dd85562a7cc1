package types

// Hierarchy is the minimal class-hierarchy query the type system needs to
// judge class-reference assignability and inheritance distance, without
// importing the registry package (which itself imports types). The
// registry's *Registry implements this.
type Hierarchy interface {
	// IsDescendantOf reports whether descendant is sub, equal to, or a
	// transitive subclass of ancestor.
	IsDescendantOf(descendant, ancestor string) bool
	// Distance returns the number of inheritance hops from descendant up to
	// ancestor (0 if they are the same class), or -1 if descendant is not a
	// descendant of ancestor.
	Distance(descendant, ancestor string) int
}

// Assignable reports whether a value of type actual may be used where
// expected is required, per spec §4.1's assignability rules.
func Assignable(h Hierarchy, expected, actual TypeInfo) bool {
	_, ok := ConversionCost(h, expected, actual)
	return ok
}

// widenCost returns the widening cost from actual to expected among
// primitives, or -1 if no implicit widening path exists. int -> long is the
// only implicit numeric widening (spec §4.1).
func widenCost(expected, actual Kind) int {
	if expected == actual {
		return 0
	}
	if actual == Int && expected == Long {
		return 1
	}
	return -1
}

// ConversionCost computes the overload-resolution cost of passing a value
// of type actual where expected is declared, per spec §4.1:
//
//	0 for exact/unknown, +1 per primitive widening, +k for inheritance
//	distance k, +3 for null-to-reference.
//
// The second return value is false when no conversion (implicit or
// identity) exists at all.
func ConversionCost(h Hierarchy, expected, actual TypeInfo) (int, bool) {
	if expected.Primitive == Unknown && expected.ClassName == "" && !expected.IsTypeParam {
		return 0, true
	}
	if actual.Primitive == Unknown && actual.ClassName == "" && !actual.IsTypeParam {
		return 0, true
	}

	// null is assignable only to non-array class-reference types.
	if actual.Primitive == Null {
		if expected.IsClass() {
			return 3, true
		}
		return 0, false
	}

	// Type parameters are assignable to themselves by name; a bounded
	// parameter's assignability to a supertype of its bound is handled by
	// the caller via substitution before reaching here, since ConversionCost
	// has no bound information. Here we only accept identical parameter
	// names.
	if expected.IsTypeParam || actual.IsTypeParam {
		if expected.IsTypeParam && actual.IsTypeParam && expected.ClassName == actual.ClassName {
			return 0, true
		}
		return 0, false
	}

	// Arrays require identical element TypeInfo.
	if expected.IsArray() || actual.IsArray() {
		if expected.IsArray() && actual.IsArray() && Equal(expected.ElemType(), actual.ElemType()) {
			return 0, true
		}
		return 0, false
	}

	// Class references.
	if expected.IsClass() || actual.IsClass() {
		if !expected.IsClass() || !actual.IsClass() {
			return 0, false
		}
		if expected.ClassName == actual.ClassName && sameTypeArgs(expected.TypeArgs, actual.TypeArgs) {
			return 0, true
		}
		if len(expected.TypeArgs) == 0 && len(actual.TypeArgs) == 0 && h != nil {
			if d := h.Distance(actual.ClassName, expected.ClassName); d > 0 {
				return d, true
			}
		}
		return 0, false
	}

	// Primitives.
	if expected.Primitive == actual.Primitive {
		return 0, true
	}
	if c := widenCost(expected.Primitive, actual.Primitive); c >= 0 {
		return c, true
	}
	return 0, false
}

func sameTypeArgs(a, b []TypeInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
