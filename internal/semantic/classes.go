package semantic

import (
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/registry"
	"github.com/bloch-labs/bloch/internal/types"
)

func (a *Analyzer) checkClass(ci *registry.ClassInfo) error {
	if err := a.checkOverrides(ci); err != nil {
		return err
	}
	if err := a.checkFieldInits(ci); err != nil {
		return err
	}
	if err := a.checkConstructors(ci); err != nil {
		return err
	}
	if ci.Destructor != nil {
		ctx := &funcCtx{returnType: types.VoidType(), class: ci}
		scope := newScope(a.root)
		scope.declare("this", &Symbol{Type: types.Class(ci.Name)})
		if err := a.checkBlock(ci.Destructor.Body, scope, ctx, false); err != nil {
			return err
		}
	}
	for _, ms := range ci.Methods {
		for _, m := range ms {
			if err := a.checkMethod(ci, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkOverrides validates that every IsOverride method matches a base
// method of the same name and parameter types exactly, with an identical
// return type and the same visibility as the base's (neither wider nor
// narrower).
func (a *Analyzer) checkOverrides(ci *registry.ClassInfo) error {
	base := a.reg.Classes[ci.BaseName]
	for _, ms := range ci.Methods {
		for _, m := range ms {
			if !m.IsOverride {
				continue
			}
			if base == nil {
				return errors.Semanticf(pos(m.Pos), "method '%s' in class '%s' is marked override but the class has no base", m.Name, ci.Name)
			}
			baseMethod := findExactBaseMethod(a.reg, ci.BaseName, m)
			if baseMethod == nil {
				return errors.Semanticf(pos(m.Pos), "method '%s' in class '%s' does not override any base method with matching parameters", m.Name, ci.Name)
			}
			if !baseMethod.IsVirtual && !baseMethod.IsOverride {
				return errors.Semanticf(pos(m.Pos), "method '%s' in class '%s' overrides a non-virtual base method", m.Name, ci.Name)
			}
			if !types.Equal(baseMethod.ReturnType, m.ReturnType) {
				return errors.Semanticf(pos(m.Pos), "method '%s' in class '%s' must return '%s' to match the overridden method", m.Name, ci.Name, baseMethod.ReturnType.String())
			}
			if m.Visibility < baseMethod.Visibility {
				return errors.Semanticf(pos(m.Pos), "method '%s' in class '%s' cannot widen visibility of the overridden method", m.Name, ci.Name)
			}
			if m.Visibility > baseMethod.Visibility {
				return errors.Semanticf(pos(m.Pos), "method '%s' in class '%s' cannot narrow visibility of the overridden method", m.Name, ci.Name)
			}
		}
	}
	return nil
}

func findExactBaseMethod(r *registry.Registry, baseClassName string, m *registry.MethodInfo) *registry.MethodInfo {
	for c := r.Classes[baseClassName]; c != nil; {
		if ms, ok := c.Methods[m.Name]; ok {
			for _, bm := range ms {
				if len(bm.Params) != len(m.Params) {
					continue
				}
				match := true
				for i := range bm.Params {
					if !types.Equal(bm.Params[i], m.Params[i]) {
						match = false
						break
					}
				}
				if match {
					return bm
				}
			}
		}
		if c.BaseName == "" {
			break
		}
		c = r.Classes[c.BaseName]
	}
	return nil
}

func (a *Analyzer) checkFieldInits(ci *registry.ClassInfo) error {
	scope := newScope(a.root)
	ctx := &funcCtx{class: ci, inStatic: true}
	for _, f := range append(append([]*registry.FieldInfo{}, ci.Fields...), ci.StaticFields...) {
		if err := a.checkArraySize(f.TypeNode, nil); err != nil {
			return err
		}
		if f.Init == nil {
			continue
		}
		it, err := a.typeOf(f.Init, scope, ctx)
		if err != nil {
			return err
		}
		if !types.Assignable(a.reg, f.Type, it) {
			return errors.Semanticf(pos(f.Pos), "field '%s' initializer of type '%s' is not assignable to declared type '%s'", f.Name, it.String(), f.Type.String())
		}
	}
	return nil
}

func (a *Analyzer) checkConstructors(ci *registry.ClassInfo) error {
	for _, c := range ci.Constructors {
		if err := a.checkConstructor(ci, c); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkConstructor(ci *registry.ClassInfo, c *registry.ConstructorInfo) error {
	decl := c.Decl
	if decl.IsDefault {
		for i, name := range c.ParamNames {
			fi, owner := a.reg.LookupField(ci.Name, name)
			if fi == nil || owner != ci.Name {
				return errors.Semanticf(pos(decl.Position), "default constructor parameter '%s' does not match a field declared on '%s'", name, ci.Name)
			}
			if fi.IsStatic || fi.Type.Primitive == types.Qubit {
				return errors.Semanticf(pos(decl.Position), "default constructor parameter '%s' cannot bind a static or qubit field", name)
			}
			if fi.IsFinal && fi.Init != nil {
				return errors.Semanticf(pos(decl.Position), "default constructor parameter '%s' cannot bind final field '%s' which already has a declaration initializer", name, name)
			}
			if !types.Equal(fi.Type, c.Params[i]) {
				return errors.Semanticf(pos(decl.Position), "default constructor parameter '%s' type does not match field type", name)
			}
		}
		return nil
	}

	base := a.reg.Classes[ci.BaseName]
	if decl.HasSuperCall {
		if base == nil {
			return errors.Semanticf(pos(decl.SuperPos), "super call in a class with no base")
		}
		scope := newScope(a.root)
		ctx := &funcCtx{class: ci, inStatic: true}
		argTypes := make([]types.TypeInfo, len(decl.SuperArgs))
		for i, e := range decl.SuperArgs {
			t, err := a.typeOf(e, scope, ctx)
			if err != nil {
				return err
			}
			argTypes[i] = t
		}
		cands := registry.ConstructorCandidates(base.Constructors)
		if _, err := registry.ResolveOverload(ci.BaseName, cands, argTypes, a.reg); err != nil {
			return errors.Semanticf(pos(decl.SuperPos), "super call: %v", err)
		}
	} else if base != nil && len(base.Constructors) > 0 {
		hasZero := false
		for _, bc := range base.Constructors {
			if len(bc.Params) == 0 {
				hasZero = true
				break
			}
		}
		if !hasZero {
			return errors.Semanticf(pos(decl.Position), "class '%s' must call super(...) explicitly: base '%s' has no zero-argument constructor", ci.Name, ci.BaseName)
		}
	}

	scope := newScope(a.root)
	scope.declare("this", &Symbol{Type: types.Class(ci.Name)})
	for i, name := range c.ParamNames {
		scope.declare(name, &Symbol{Type: c.Params[i]})
	}
	ctx := &funcCtx{
		returnType:        types.VoidType(),
		class:             ci,
		isConstructor:     true,
		finalAssignCounts: make(map[string]int),
	}
	if decl.Body != nil {
		if err := a.checkBlock(decl.Body, scope, ctx, true); err != nil {
			return err
		}
	}
	for _, f := range ci.Fields {
		if f.IsFinal && f.Init == nil && ctx.finalAssignCounts[f.Name] == 0 {
			return errors.Semanticf(pos(decl.Position), "final field '%s' is not assigned by constructor of '%s'", f.Name, ci.Name)
		}
	}
	return nil
}

func (a *Analyzer) checkMethod(ci *registry.ClassInfo, m *registry.MethodInfo) error {
	if m.Decl.Body == nil {
		return nil
	}
	scope := newScope(a.root)
	if !m.IsStatic {
		scope.declare("this", &Symbol{Type: types.Class(ci.Name)})
	}
	for i, name := range m.ParamNames {
		scope.declare(name, &Symbol{Type: m.Params[i]})
	}
	ctx := &funcCtx{returnType: m.ReturnType, class: ci, inStatic: m.IsStatic}
	if err := a.checkBlock(m.Decl.Body, scope, ctx, false); err != nil {
		return err
	}
	if m.ReturnType.Primitive != types.Void && !ctx.sawReturn {
		return errors.Semanticf(pos(m.Pos), "method '%s' of class '%s' does not return on every path", m.Name, ci.Name)
	}
	return nil
}

// ensureInstantiable is used by expression checking (new C(...)) to reject
// construction of a class with unimplemented abstract methods.
func ensureInstantiable(ci *registry.ClassInfo, at errors.Position) error {
	if len(ci.AbstractMethods) > 0 {
		return errors.Semanticf(at, "class '%s' has unimplemented abstract methods and cannot be instantiated", ci.Name)
	}
	if ci.IsStatic {
		return errors.Semanticf(at, "static class '%s' cannot be instantiated", ci.Name)
	}
	return nil
}
