// Package registry builds and queries the compile-time class registry
// described in spec §3/§4.1: each class's fields, overloaded methods,
// constructors, destructor, base link, type parameters, abstract-method
// set, and vtable slot assignments.
package registry

import (
	"sort"

	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/types"
)

// ObjectClassName is the implicit root of every class hierarchy.
const ObjectClassName = "Object"

// FieldInfo is a compile-time field declaration.
type FieldInfo struct {
	Name       string
	Type       types.TypeInfo
	TypeNode   ast.TypeNode // original syntax-level type, kept so the evaluator can read a fixed array's Size expression
	Visibility ast.Visibility
	IsFinal    bool
	IsStatic   bool
	IsTracked  bool
	Init       ast.Expr
	Offset     int // position within the owning class's instance/static layout
	Pos        ast.Position
}

// MethodSignature identifies an overload by its parameter types, for
// override-matching and duplicate-declaration detection.
type MethodSignature struct {
	Name   string
	Params []types.TypeInfo
}

func (s MethodSignature) key() string {
	k := s.Name
	for _, p := range s.Params {
		k += "|" + p.String()
	}
	return k
}

// MethodInfo is a compile-time method declaration.
type MethodInfo struct {
	Name       string
	ParamNames []string
	Params     []types.TypeInfo
	ReturnType types.TypeInfo
	IsVirtual  bool
	IsOverride bool
	IsStatic   bool
	Visibility ast.Visibility
	Decl       *ast.MethodDecl
	OwnerClass string
	VSlot      int // -1 when the method is not virtually dispatched
	Pos        ast.Position
}

func (m *MethodInfo) Signature() MethodSignature {
	return MethodSignature{Name: m.Name, Params: m.Params}
}

// ConstructorInfo is a compile-time constructor declaration.
type ConstructorInfo struct {
	ParamNames []string
	Params     []types.TypeInfo
	Decl       *ast.ConstructorDecl
	OwnerClass string
}

// ClassInfo is the compile-time metadata for one class.
type ClassInfo struct {
	Name       string
	BaseName   string
	IsStatic   bool
	IsAbstract bool
	TypeParams []ast.TypeParam

	Fields       []*FieldInfo // this class's own instance fields, in declaration order
	StaticFields []*FieldInfo

	Methods      map[string][]*MethodInfo // overload set keyed by method name
	Constructors []*ConstructorInfo
	Destructor   *ast.DestructorDecl

	AbstractMethods map[string]MethodSignature // signatures with no body, owned or inherited and unimplemented
	Pos             ast.Position

	nextVSlot int // vtable slot counter, inherited from base and advanced locally
}

// Registry is the compile-time class table built once from a program.
type Registry struct {
	Classes map[string]*ClassInfo
	Order   []string // topological, base-before-derived
}

// IsDescendantOf implements types.Hierarchy.
func (r *Registry) IsDescendantOf(descendant, ancestor string) bool {
	return r.Distance(descendant, ancestor) >= 0
}

// Distance implements types.Hierarchy.
func (r *Registry) Distance(descendant, ancestor string) int {
	d := 0
	cur := descendant
	for {
		if cur == ancestor {
			return d
		}
		ci, ok := r.Classes[cur]
		if !ok || ci.BaseName == "" {
			return -1
		}
		cur = ci.BaseName
		d++
	}
}

// AllFields returns the class's complete instance field layout, base fields
// first, each with an absolute offset into the object's field vector.
func (r *Registry) AllFields(className string) []*FieldInfo {
	ci, ok := r.Classes[className]
	if !ok {
		return nil
	}
	var chain []*ClassInfo
	for c := ci; c != nil; {
		chain = append(chain, c)
		if c.BaseName == "" {
			break
		}
		c = r.Classes[c.BaseName]
	}
	var out []*FieldInfo
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Fields...)
	}
	for i, f := range out {
		f.Offset = i
	}
	return out
}

// LookupMethods returns the overload set for name, starting at className
// and walking to the root, stopping at the first class that declares any
// overload with that name (a derived overload set with the same name
// hides the base set entirely, consistent with per-name hiding rather than
// per-signature hiding across different names).
func (r *Registry) LookupMethods(className, name string) []*MethodInfo {
	for c := r.Classes[className]; c != nil; {
		if ms, ok := c.Methods[name]; ok {
			return ms
		}
		if c.BaseName == "" {
			break
		}
		c = r.Classes[c.BaseName]
	}
	return nil
}

// LookupField finds a field by name anywhere in the hierarchy (own class
// first, then base chain).
func (r *Registry) LookupField(className, name string) (*FieldInfo, string) {
	for c := r.Classes[className]; c != nil; {
		for _, f := range c.Fields {
			if f.Name == name {
				return f, c.Name
			}
		}
		for _, f := range c.StaticFields {
			if f.Name == name {
				return f, c.Name
			}
		}
		if c.BaseName == "" {
			break
		}
		c = r.Classes[c.BaseName]
	}
	return nil, ""
}

// VSlotCount returns the number of vtable slots a class's instances need
// (the highest assigned slot plus one), for building a RuntimeClass vtable.
func (r *Registry) VSlotCount(className string) int {
	ci, ok := r.Classes[className]
	if !ok {
		return 0
	}
	return ci.nextVSlot
}

// AbstractMethods returns the signatures that remain unimplemented for the
// class (its own abstract set minus anything concretely overridden).
func (r *Registry) AbstractMethods(className string) []MethodSignature {
	ci, ok := r.Classes[className]
	if !ok {
		return nil
	}
	out := make([]MethodSignature, 0, len(ci.AbstractMethods))
	for _, s := range ci.AbstractMethods {
		out = append(out, s)
	}
	return out
}

// Build constructs a Registry from a program's class declarations. It
// injects an implicit Object root if absent, links bases, detects cycles,
// computes instance/static layouts, assigns vtable slots (base-first,
// reusing a base's slot on override), and computes each class's residual
// abstract-method set. All structural errors are returned together; callers
// that want semantic validation (override signature/return matching,
// visibility, final-field flow, and so on) run the semantic analyser
// afterward against this Registry.
func Build(decls []*ast.ClassDecl) (*Registry, []error) {
	var errs []error
	byName := make(map[string]*ast.ClassDecl, len(decls))
	for _, d := range decls {
		if _, dup := byName[d.Name]; dup {
			errs = append(errs, errors.Semanticf(pos(d.Position), "duplicate class declaration '%s'", d.Name))
			continue
		}
		byName[d.Name] = d
	}

	if _, hasObject := byName[ObjectClassName]; !hasObject {
		root := &ast.ClassDecl{Name: ObjectClassName}
		byName[ObjectClassName] = root
		decls = append(decls, root)
	}

	for _, d := range decls {
		if d.Name == ObjectClassName {
			if d.BaseName != "" {
				errs = append(errs, errors.Semanticf(pos(d.Position), "Object cannot declare a base class"))
			}
			if len(d.TypeParams) > 0 {
				errs = append(errs, errors.Semanticf(pos(d.Position), "Object cannot be generic"))
			}
		}
		if d.BaseName != "" {
			if _, ok := byName[d.BaseName]; !ok {
				errs = append(errs, errors.Semanticf(pos(d.Position), "unknown base class '%s' for '%s'", d.BaseName, d.Name))
			}
		}
	}

	order, cycleErrs := topoSort(byName)
	errs = append(errs, cycleErrs...)

	r := &Registry{Classes: make(map[string]*ClassInfo, len(byName)), Order: order}
	for _, name := range order {
		ci, buildErrs := buildClassInfo(r, byName[name])
		errs = append(errs, buildErrs...)
		r.Classes[name] = ci
	}

	for _, name := range order {
		computeAbstractSet(r, r.Classes[name])
	}

	return r, errs
}

func pos(p ast.Position) errors.Position {
	return errors.Position{Line: p.Line, Column: p.Column}
}

// topoSort orders classes base-before-derived and reports inheritance cycles.
func topoSort(byName map[string]*ast.ClassDecl) ([]string, []error) {
	var errs []error
	state := make(map[string]int) // 0 unvisited, 1 visiting, 2 done
	var order []string

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	var visit func(name string, path []string) bool
	visit = func(name string, path []string) bool {
		switch state[name] {
		case 2:
			return true
		case 1:
			errs = append(errs, errors.Semanticf(errors.Position{}, "inheritance cycle detected at class '%s'", name))
			return false
		}
		d, ok := byName[name]
		if !ok {
			return true
		}
		state[name] = 1
		if d.BaseName != "" {
			if !visit(d.BaseName, append(path, name)) {
				state[name] = 2
				order = append(order, name)
				return false
			}
		}
		state[name] = 2
		order = append(order, name)
		return true
	}

	for _, n := range names {
		visit(n, nil)
	}
	return order, errs
}

func buildClassInfo(r *Registry, d *ast.ClassDecl) (*ClassInfo, []error) {
	var errs []error
	ci := &ClassInfo{
		Name:            d.Name,
		BaseName:        d.BaseName,
		IsStatic:        d.IsStatic,
		TypeParams:      d.TypeParams,
		Methods:         make(map[string][]*MethodInfo),
		Destructor:      d.Destructor,
		AbstractMethods: make(map[string]MethodSignature),
		Pos:             d.Position,
	}
	if d.BaseName == "" && d.Name != ObjectClassName {
		ci.BaseName = ObjectClassName
	}

	typeParamSet := make(map[string]bool, len(d.TypeParams))
	for _, tp := range d.TypeParams {
		typeParamSet[tp.Name] = true
	}

	base := r.Classes[ci.BaseName]
	baseOffset := 0
	baseStaticOffset := 0
	if base != nil {
		ci.nextVSlot = base.nextVSlot
		baseOffset = len(r.AllFields(base.Name))
		baseStaticOffset = len(allStaticFields(r, base.Name))
	}
	_ = baseOffset

	if d.IsStatic && (len(d.Constructors) > 0 || d.Destructor != nil) {
		errs = append(errs, errors.Semanticf(pos(d.Position), "static class '%s' cannot declare constructors or a destructor", d.Name))
	}
	if !d.IsStatic && d.Name != ObjectClassName && len(d.Constructors) == 0 {
		errs = append(errs, errors.Semanticf(pos(d.Position), "class '%s' must declare at least one constructor", d.Name))
	}
	if d.Destructor != nil {
		// at most one destructor is structurally guaranteed by the AST (a
		// single *DestructorDecl field), so nothing further is checked here.
	}

	localOffset := 0
	localStaticOffset := 0
	for _, f := range d.Fields {
		if d.IsStatic && !f.IsStatic {
			errs = append(errs, errors.Semanticf(pos(f.Position), "static class '%s' cannot declare instance field '%s'", d.Name, f.Name))
			continue
		}
		ft, err := r.ResolveType(f.Type, typeParamSet)
		if err != nil {
			errs = append(errs, err)
		}
		fi := &FieldInfo{
			Name: f.Name, Type: ft, TypeNode: f.Type, Visibility: f.Visibility, IsFinal: f.IsFinal,
			IsStatic: f.IsStatic, IsTracked: f.IsTracked, Init: f.Init, Pos: f.Position,
		}
		if f.IsStatic {
			fi.Offset = baseStaticOffset + localStaticOffset
			localStaticOffset++
			ci.StaticFields = append(ci.StaticFields, fi)
		} else {
			fi.Offset = baseOffset + localOffset
			localOffset++
			ci.Fields = append(ci.Fields, fi)
		}
	}

	declaredSignatures := make(map[string]bool)
	for _, m := range d.Methods {
		if d.IsStatic && !m.IsStatic {
			errs = append(errs, errors.Semanticf(pos(m.Position), "static class '%s' cannot declare instance method '%s'", d.Name, m.Name))
			continue
		}
		mi := &MethodInfo{
			Name: m.Name, ReturnType: types.UnknownType(),
			IsVirtual: m.IsVirtual, IsOverride: m.IsOverride, IsStatic: m.IsStatic,
			Visibility: m.Visibility, Decl: m, OwnerClass: d.Name, VSlot: -1, Pos: m.Position,
		}
		for _, p := range m.Params {
			mi.ParamNames = append(mi.ParamNames, p.Name)
			pt, err := r.ResolveType(p.Type, typeParamSet)
			if err != nil {
				errs = append(errs, err)
			}
			mi.Params = append(mi.Params, pt)
		}
		if rt, err := r.ResolveType(m.ReturnType, typeParamSet); err != nil {
			errs = append(errs, err)
		} else {
			mi.ReturnType = rt
		}
		sigKey := mi.Signature().key()
		if declaredSignatures[sigKey] {
			errs = append(errs, errors.Semanticf(pos(m.Position), "duplicate method declaration '%s' in class '%s'", m.Name, d.Name))
			continue
		}
		declaredSignatures[sigKey] = true

		if mi.IsOverride {
			if baseMethod := findBaseMethodSameParams(r, ci.BaseName, m.Name, mi); baseMethod != nil {
				mi.VSlot = baseMethod.VSlot
			}
		}
		if (mi.IsVirtual || mi.IsOverride) && mi.VSlot < 0 {
			mi.VSlot = ci.nextVSlot
			ci.nextVSlot++
		}

		ci.Methods[m.Name] = append(ci.Methods[m.Name], mi)
		if m.Body == nil {
			ci.IsAbstract = true
		}
	}

	for _, c := range d.Constructors {
		cinfo := &ConstructorInfo{Decl: c, OwnerClass: d.Name}
		for _, p := range c.Params {
			cinfo.ParamNames = append(cinfo.ParamNames, p.Name)
			pt, err := r.ResolveType(p.Type, typeParamSet)
			if err != nil {
				errs = append(errs, err)
			}
			cinfo.Params = append(cinfo.Params, pt)
		}
		ci.Constructors = append(ci.Constructors, cinfo)
	}

	return ci, errs
}

func allStaticFields(r *Registry, className string) []*FieldInfo {
	var out []*FieldInfo
	for c := r.Classes[className]; c != nil; {
		out = append(out, c.StaticFields...)
		if c.BaseName == "" {
			break
		}
		c = r.Classes[c.BaseName]
	}
	return out
}

// findBaseMethodSameParams locates, in the base chain starting at
// baseClassName, the most-derived method of the same name whose parameter
// count matches mi's (used to recover the overridden slot; exact parameter
// *type* matching is enforced later by the semantic analyser once types are
// resolved).
func findBaseMethodSameParams(r *Registry, baseClassName, name string, mi *MethodInfo) *MethodInfo {
	for c := r.Classes[baseClassName]; c != nil; {
		if ms, ok := c.Methods[name]; ok {
			for _, m := range ms {
				if len(m.ParamNames) == len(mi.ParamNames) {
					return m
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

func computeAbstractSet(r *Registry, ci *ClassInfo) {
	base := r.Classes[ci.BaseName]
	inherited := make(map[string]MethodSignature)
	if base != nil {
		for k, s := range base.AbstractMethods {
			inherited[k] = s
		}
	}
	for _, ms := range ci.Methods {
		for _, m := range ms {
			key := m.Signature().key()
			if m.Decl != nil && m.Decl.Body == nil {
				inherited[key] = m.Signature()
			} else {
				delete(inherited, key)
			}
		}
	}
	ci.AbstractMethods = inherited
	if len(ci.AbstractMethods) > 0 {
		ci.IsAbstract = true
	}
}
