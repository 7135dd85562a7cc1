package types

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{Int, "int"},
		{Long, "long"},
		{Float, "float"},
		{Bit, "bit"},
		{Boolean, "boolean"},
		{String, "string"},
		{Char, "char"},
		{Qubit, "qubit"},
		{Void, "void"},
		{Null, "null"},
		{Unknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Of(tt.kind).String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassTypeString(t *testing.T) {
	c := Class("Widget")
	if got := c.String(); got != "Widget" {
		t.Errorf("String() = %v, want Widget", got)
	}
	if !c.IsClass() {
		t.Errorf("IsClass() = false, want true")
	}
	if c.IsPrimitive() {
		t.Errorf("IsPrimitive() = true, want false")
	}
}

func TestArrayOfString(t *testing.T) {
	arr := ArrayOf(IntType())
	if got := arr.String(); got != "int[]" {
		t.Errorf("String() = %v, want int[]", got)
	}
	if !arr.IsArray() {
		t.Errorf("IsArray() = false, want true")
	}
	if got := arr.ElemType().String(); got != "int" {
		t.Errorf("ElemType().String() = %v, want int", got)
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		name     string
		typ      TypeInfo
		expected bool
	}{
		{"int", IntType(), true},
		{"long", LongType(), true},
		{"float", FloatType(), true},
		{"bit", BitType(), false},
		{"string", StringType(), false},
		{"class", Class("Foo"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.IsNumeric(); got != tt.expected {
				t.Errorf("IsNumeric() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsIntegral(t *testing.T) {
	if !IntType().IsIntegral() {
		t.Errorf("int should be integral")
	}
	if !LongType().IsIntegral() {
		t.Errorf("long should be integral")
	}
	if FloatType().IsIntegral() {
		t.Errorf("float should not be integral")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     TypeInfo
		expected bool
	}{
		{"same primitive", IntType(), IntType(), true},
		{"different primitive", IntType(), LongType(), false},
		{"same class", Class("Foo"), Class("Foo"), true},
		{"different class", Class("Foo"), Class("Bar"), false},
		{"same array elem", ArrayOf(IntType()), ArrayOf(IntType()), true},
		{"different array elem", ArrayOf(IntType()), ArrayOf(LongType()), false},
		{"class vs primitive", Class("Foo"), IntType(), false},
		{"generic class same args", Class("Box", IntType()), Class("Box", IntType()), true},
		{"generic class different args", Class("Box", IntType()), Class("Box", LongType()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParamIsTypeParam(t *testing.T) {
	p := Param("T")
	if !p.IsTypeParam {
		t.Errorf("IsTypeParam = false, want true")
	}
	if got := p.String(); got != "T" {
		t.Errorf("String() = %v, want T", got)
	}
}

func TestUnknownTypeIsNeitherNumericNorClass(t *testing.T) {
	u := UnknownType()
	if u.IsNumeric() || u.IsClass() || u.IsArray() {
		t.Errorf("unknown type should not classify as numeric/class/array")
	}
}
