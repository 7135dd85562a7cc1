// Package interp implements the runtime evaluator described in spec §4.3:
// a tagged-value tree-walking interpreter with vtable-based virtual
// dispatch, constructor/destructor chains, final-assignment enforcement, a
// background cycle collector, and tracked-variable aggregation.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bloch-labs/bloch/internal/types"
)

// Value is the tagged-value interface every runtime value implements.
type Value interface {
	Kind() types.Kind
	String() string
}

type IntValue int64

func (v IntValue) Kind() types.Kind { return types.Int }
func (v IntValue) String() string   { return strconv.FormatInt(int64(v), 10) }

type LongValue int64

func (v LongValue) Kind() types.Kind { return types.Long }
func (v LongValue) String() string   { return strconv.FormatInt(int64(v), 10) }

type FloatValue float64

func (v FloatValue) Kind() types.Kind { return types.Float }
func (v FloatValue) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// BitValue is a classical bit: 0 or 1.
type BitValue int

func (v BitValue) Kind() types.Kind { return types.Bit }
func (v BitValue) String() string   { return strconv.Itoa(int(v)) }

type BoolValue bool

func (v BoolValue) Kind() types.Kind { return types.Boolean }
func (v BoolValue) String() string   { return strconv.FormatBool(bool(v)) }

type StringValue string

func (v StringValue) Kind() types.Kind { return types.String }
func (v StringValue) String() string   { return string(v) }

type CharValue rune

func (v CharValue) Kind() types.Kind { return types.Char }
func (v CharValue) String() string   { return string(rune(v)) }

// QubitValue is an opaque index into the simulator's amplitude space.
type QubitValue int

func (v QubitValue) Kind() types.Kind { return types.Qubit }
func (v QubitValue) String() string   { return fmt.Sprintf("qubit#%d", int(v)) }

// NullValue is the value of the null literal.
type NullValue struct{}

func (NullValue) Kind() types.Kind { return types.Null }
func (NullValue) String() string   { return "null" }

// VoidValue is returned by statement-form evaluation paths that produce no
// usable value (expression statements, void calls).
type VoidValue struct{}

func (VoidValue) Kind() types.Kind { return types.Void }
func (VoidValue) String() string   { return "void" }

// ArrayValue is a fixed-length, mutable, reference-typed array.
type ArrayValue struct {
	Elem  types.TypeInfo
	Items []Value
}

func (v *ArrayValue) Kind() types.Kind { return types.Unknown }
func (v *ArrayValue) String() string {
	parts := make([]string, len(v.Items))
	for i, it := range v.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectRef is a reference to a heap-allocated Object. Assigning an
// ObjectRef copies the reference, not the Object.
type ObjectRef struct {
	Obj *Object
}

func (v ObjectRef) Kind() types.Kind { return types.Unknown }
func (v ObjectRef) String() string {
	if v.Obj == nil {
		return "null"
	}
	return v.Obj.Class.Name + " instance"
}
