// Package semantic implements the semantic analyser: it walks a typed
// syntax tree, validates it against the compile-time class registry, and
// either returns normally (the program is valid) or fails with the first
// error encountered, per spec §4.2.
package semantic

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/registry"
	"github.com/bloch-labs/bloch/internal/types"
)

// Analyzer performs one analysis pass over a Program.
type Analyzer struct {
	reg     *registry.Registry
	root    *Scope // outermost scope: class names + free functions
	funcs   map[string][]*ast.FunctionDecl
}

// funcCtx carries the context needed while checking statements/expressions
// inside one function, method, constructor, or destructor body.
type funcCtx struct {
	returnType    types.TypeInfo
	isQuantum     bool
	class         *registry.ClassInfo // nil outside instance context
	inStatic      bool                // true in a static method or class-static context (no `this`)
	isConstructor bool
	seenSuperCall bool
	sawReturn     bool

	// final-field flow, constructor bodies only: counts of assignments to
	// each of the constructor's own-class final fields, counted only when
	// the assignment is a direct (top-level) statement of the body.
	finalAssignCounts map[string]int
}

// Analyze validates program and returns the registry it built (for reuse by
// the runtime evaluator) along with the first error found, if any.
func Analyze(program *ast.Program) (*registry.Registry, error) {
	reg, regErrs := registry.Build(program.Classes)
	if len(regErrs) > 0 {
		return reg, regErrs[0]
	}

	a := &Analyzer{reg: reg, root: newScope(nil), funcs: make(map[string][]*ast.FunctionDecl)}

	for name := range reg.Classes {
		a.root.declare(name, &Symbol{IsTypeName: true, Type: types.Class(name)})
	}
	for _, f := range program.Functions {
		a.funcs[f.Name] = append(a.funcs[f.Name], f)
	}

	for _, name := range reg.Order {
		if err := a.checkClass(reg.Classes[name]); err != nil {
			return reg, err
		}
	}

	mainCount := 0
	for _, f := range program.Functions {
		if f.Name == "main" {
			mainCount++
		}
		if err := a.checkFunction(f); err != nil {
			return reg, err
		}
	}
	if mainCount == 0 {
		return reg, errors.Semanticf(errors.Position{}, "program has no 'main' function")
	}

	return reg, nil
}

func (a *Analyzer) checkFunction(f *ast.FunctionDecl) error {
	if err := a.checkAnnotations(f); err != nil {
		return err
	}
	retType, err := a.reg.ResolveType(f.ReturnType, nil)
	if err != nil {
		return err
	}
	_, isQuantum := f.HasAnnotation("quantum")

	scope := newScope(a.root)
	for _, p := range f.Params {
		pt, err := a.reg.ResolveType(p.Type, nil)
		if err != nil {
			return err
		}
		scope.declare(p.Name, &Symbol{Type: pt})
	}

	ctx := &funcCtx{returnType: retType, isQuantum: isQuantum}
	if f.Body != nil {
		if err := a.checkBlock(f.Body, scope, ctx, false); err != nil {
			return err
		}
	}
	if retType.Primitive != types.Void && !ctx.sawReturn {
		return errors.Semanticf(pos(f.Position), "function '%s' does not return on every path", f.Name)
	}
	return nil
}

func (a *Analyzer) checkAnnotations(f *ast.FunctionDecl) error {
	if shots, ok := f.HasAnnotation("shots"); ok && f.Name != "main" {
		_ = shots
		return errors.Semanticf(pos(f.Position), "@shots may only annotate 'main'")
	}
	if _, ok := f.HasAnnotation("quantum"); ok && f.Name == "main" {
		return errors.Semanticf(pos(f.Position), "@quantum may not annotate 'main'")
	}
	if _, ok := f.HasAnnotation("quantum"); ok {
		rt, err := a.reg.ResolveType(f.ReturnType, nil)
		if err != nil {
			return err
		}
		if !(rt.Primitive == types.Void || rt.Primitive == types.Bit || (rt.IsArray() && rt.ElemType().Primitive == types.Bit)) {
			return errors.Semanticf(pos(f.Position), "@quantum function '%s' must return bit, bit[], or void", f.Name)
		}
	}
	return nil
}

func pos(p ast.Position) errors.Position {
	return errors.Position{Line: p.Line, Column: p.Column}
}
