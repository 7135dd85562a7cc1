// Package types implements the type system primitives shared by the
// semantic analyser and the runtime evaluator: the primitive kind
// enumeration and the structural TypeInfo record described in the spec's
// data model.
package types

import "strings"

// Kind enumerates the primitive kinds. Class references, arrays, and type
// parameters are not primitives and are carried via TypeInfo.ClassName
// instead (Kind is Unknown for those).
type Kind int

const (
	Unknown Kind = iota
	Int
	Long
	Float
	Bit
	Boolean
	String
	Char
	Qubit
	Void
	Null
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Bit:
		return "bit"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Char:
		return "char"
	case Qubit:
		return "qubit"
	case Void:
		return "void"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// arraySuffix marks an array type's ClassName, per spec: "arrays are
// encoded by a className suffix "[]" with the element carried in
// typeArgs[0]".
const arraySuffix = "[]"

// TypeInfo is the structural record capturing a resolved type.
// Invariant: IsTypeParam ⇒ ClassName holds the parameter's name.
type TypeInfo struct {
	Primitive   Kind
	ClassName   string
	TypeArgs    []TypeInfo
	IsTypeParam bool
}

// Primitive constructors.

func Of(k Kind) TypeInfo          { return TypeInfo{Primitive: k} }
func IntType() TypeInfo           { return TypeInfo{Primitive: Int} }
func LongType() TypeInfo          { return TypeInfo{Primitive: Long} }
func FloatType() TypeInfo         { return TypeInfo{Primitive: Float} }
func BitType() TypeInfo           { return TypeInfo{Primitive: Bit} }
func BooleanType() TypeInfo       { return TypeInfo{Primitive: Boolean} }
func StringType() TypeInfo        { return TypeInfo{Primitive: String} }
func CharType() TypeInfo          { return TypeInfo{Primitive: Char} }
func QubitType() TypeInfo         { return TypeInfo{Primitive: Qubit} }
func VoidType() TypeInfo          { return TypeInfo{Primitive: Void} }
func NullType() TypeInfo          { return TypeInfo{Primitive: Null} }
func UnknownType() TypeInfo       { return TypeInfo{Primitive: Unknown} }

// Class builds a class-reference type, optionally with generic arguments.
func Class(name string, args ...TypeInfo) TypeInfo {
	return TypeInfo{ClassName: name, TypeArgs: args}
}

// Param builds a reference to a generic type parameter by name.
func Param(name string) TypeInfo {
	return TypeInfo{ClassName: name, IsTypeParam: true}
}

// ArrayOf builds a fixed-element-type array.
func ArrayOf(elem TypeInfo) TypeInfo {
	return TypeInfo{ClassName: arraySuffix, TypeArgs: []TypeInfo{elem}}
}

// IsArray reports whether t is an array type.
func (t TypeInfo) IsArray() bool { return t.ClassName == arraySuffix && !t.IsTypeParam }

// ElemType returns the element type of an array type, or UnknownType if t is
// not an array type.
func (t TypeInfo) ElemType() TypeInfo {
	if !t.IsArray() || len(t.TypeArgs) == 0 {
		return UnknownType()
	}
	return t.TypeArgs[0]
}

// IsClass reports whether t is a (non-array, non-type-param) class reference.
func (t TypeInfo) IsClass() bool {
	return t.ClassName != "" && !t.IsArray() && !t.IsTypeParam
}

// IsPrimitive reports whether t is one of the primitive kinds.
func (t TypeInfo) IsPrimitive() bool {
	return t.ClassName == "" && !t.IsTypeParam && t.Primitive != Unknown
}

// IsNumeric reports whether t is int, long, or float.
func (t TypeInfo) IsNumeric() bool {
	return t.IsPrimitive() && (t.Primitive == Int || t.Primitive == Long || t.Primitive == Float)
}

// IsIntegral reports whether t is int or long.
func (t TypeInfo) IsIntegral() bool {
	return t.IsPrimitive() && (t.Primitive == Int || t.Primitive == Long)
}

// Equal reports whether two TypeInfo values are structurally identical.
func Equal(a, b TypeInfo) bool {
	if a.IsTypeParam != b.IsTypeParam {
		return false
	}
	if a.IsTypeParam {
		return a.ClassName == b.ClassName
	}
	if a.ClassName != b.ClassName {
		return false
	}
	if a.ClassName == "" {
		return a.Primitive == b.Primitive
	}
	if len(a.TypeArgs) != len(b.TypeArgs) {
		return false
	}
	for i := range a.TypeArgs {
		if !Equal(a.TypeArgs[i], b.TypeArgs[i]) {
			return false
		}
	}
	return true
}

// String renders a TypeInfo for diagnostics.
func (t TypeInfo) String() string {
	if t.IsTypeParam {
		return t.ClassName
	}
	if t.IsArray() {
		return t.ElemType().String() + "[]"
	}
	if t.ClassName != "" {
		if len(t.TypeArgs) == 0 {
			return t.ClassName
		}
		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = a.String()
		}
		return t.ClassName + "<" + strings.Join(parts, ", ") + ">"
	}
	return t.Primitive.String()
}
