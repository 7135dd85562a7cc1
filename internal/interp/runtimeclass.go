package interp

import "github.com/bloch-labs/bloch/internal/registry"

// RuntimeClass mirrors a compile-time ClassInfo with the structures the
// evaluator actually walks at run time: a resolved base link and a vtable
// indexed by slot, each slot holding the most-derived override.
type RuntimeClass struct {
	Name   string
	Base   *RuntimeClass
	Info   *registry.ClassInfo
	VTable []*registry.MethodInfo

	StaticFields map[string]Value
	hasTracked   bool
}

// RuntimeClasses is the set of RuntimeClass mirrors for one program,
// indexed by name.
type RuntimeClasses struct {
	reg     *registry.Registry
	classes map[string]*RuntimeClass
}

// BuildRuntimeClasses constructs one RuntimeClass per registry class,
// base-first, filling each vtable slot with the most-derived override
// found while walking base-to-derived.
func BuildRuntimeClasses(reg *registry.Registry) *RuntimeClasses {
	rc := &RuntimeClasses{reg: reg, classes: make(map[string]*RuntimeClass, len(reg.Order))}
	for _, name := range reg.Order {
		ci := reg.Classes[name]
		var base *RuntimeClass
		if ci.BaseName != "" {
			base = rc.classes[ci.BaseName]
		}
		slots := reg.VSlotCount(name)
		vtable := make([]*registry.MethodInfo, slots)
		if base != nil {
			copy(vtable, base.VTable)
		}
		for _, ms := range ci.Methods {
			for _, m := range ms {
				if m.VSlot >= 0 && m.VSlot < len(vtable) {
					vtable[m.VSlot] = m
				}
			}
		}
		r := &RuntimeClass{
			Name:         name,
			Base:         base,
			Info:         ci,
			VTable:       vtable,
			StaticFields: make(map[string]Value),
			hasTracked:   hasTrackedFields(reg, name),
		}
		rc.classes[name] = r
	}
	return rc
}

// Get returns the RuntimeClass for name.
func (rc *RuntimeClasses) Get(name string) *RuntimeClass {
	return rc.classes[name]
}

// hasTrackedFields reports whether className declares, directly or by
// inheritance, any tracked instance field — used by the cycle collector to
// decide whether an unreachable object must be retained to preserve its
// tracked outcome contribution.
func hasTrackedFields(reg *registry.Registry, className string) bool {
	for _, f := range reg.AllFields(className) {
		if f.IsTracked {
			return true
		}
	}
	return false
}

// HasTrackedFields reports whether instances of rc carry any tracked field.
func (rc *RuntimeClass) HasTrackedFields() bool {
	return rc.hasTracked
}

// IsDescendantOf reports whether rc is name or a transitive subclass of it.
func (rc *RuntimeClass) IsDescendantOf(name string) bool {
	for c := rc; c != nil; c = c.Base {
		if c.Name == name {
			return true
		}
	}
	return false
}
