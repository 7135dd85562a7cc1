package interp

// Object is a heap-allocated class instance: a fixed-offset field vector
// matching the layout computed by registry.AllFields, plus the bookkeeping
// the cycle collector needs. Only the main (mutator) goroutine ever reads or
// writes these fields — the collector pass itself runs on the main goroutine
// at a statement boundary, never concurrently with mutation.
type Object struct {
	Class  *RuntimeClass
	Fields []Value

	marked    bool
	destroyed bool
	skipDtor  bool
}

// NewObject allocates a zero-valued instance of class, sized for its
// complete (base-first) field layout. Field defaults are filled in by
// construct, not here.
func NewObject(class *RuntimeClass, fieldCount int) *Object {
	return &Object{
		Class:  class,
		Fields: make([]Value, fieldCount),
	}
}

// GetField reads the field at offset.
func (o *Object) GetField(offset int) Value {
	if offset < 0 || offset >= len(o.Fields) {
		return NullValue{}
	}
	return o.Fields[offset]
}

// SetField writes the field at offset.
func (o *Object) SetField(offset int, v Value) {
	if offset < 0 || offset >= len(o.Fields) {
		return
	}
	o.Fields[offset] = v
}
