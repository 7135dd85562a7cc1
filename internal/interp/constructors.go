package interp

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/registry"
)

// construct allocates and fully initializes a new instance of className:
// every field is zeroed, the constructor chain runs base-first, and the
// object is registered with the collector before any user code can observe
// it (a constructor that loops forever still leaves a collectible object).
func (e *Evaluator) construct(className string, args []Value, at ast.Position, callerCtx *execContext) (*Object, error) {
	rc := e.classes.Get(className)
	if rc == nil {
		return nil, errors.Runtimef(pos(at), "unknown class '%s'", className)
	}
	obj := NewObject(rc, len(e.reg.AllFields(className)))
	defaultCtx := &execContext{env: NewEnclosedEnvironment(e.global)}
	for _, fi := range e.reg.AllFields(className) {
		v, err := e.zeroValueForNode(fi.TypeNode, fi.Type, defaultCtx)
		if err != nil {
			return nil, err
		}
		obj.SetField(fi.Offset, v)
	}
	e.gc.Register(obj)

	if len(rc.Info.Constructors) == 0 {
		return obj, nil
	}
	cand, err := registry.ResolveOverload(className, registry.ConstructorCandidates(rc.Info.Constructors), argTypesOf(args), e.reg)
	if err != nil {
		return nil, errors.Runtimef(pos(at), "%v", err)
	}
	if err := e.runConstructor(obj, rc, cand.Ctor, args, at); err != nil {
		return nil, err
	}
	return obj, nil
}

func (e *Evaluator) runConstructor(obj *Object, rc *RuntimeClass, c *registry.ConstructorInfo, args []Value, at ast.Position) error {
	decl := c.Decl

	if decl.IsDefault {
		if rc.Base != nil {
			if err := e.callImplicitSuper(obj, rc.Base, at); err != nil {
				return err
			}
		}
		if err := e.runFieldInits(obj, rc); err != nil {
			return err
		}
		for i, name := range c.ParamNames {
			fi, _ := e.reg.LookupField(rc.Name, name)
			if fi != nil {
				obj.SetField(fi.Offset, args[i])
			}
		}
		return nil
	}

	if decl.HasSuperCall {
		superCtx := &execContext{env: NewEnclosedEnvironment(e.global), this: obj, currentClass: rc}
		for i, name := range c.ParamNames {
			if i < len(args) {
				superCtx.env.Define(name, args[i])
			}
		}
		superArgs, err := e.evalArgs(decl.SuperArgs, superCtx)
		if err != nil {
			return err
		}
		if rc.Base != nil {
			if err := e.callExplicitSuper(obj, rc.Base, superArgs, at); err != nil {
				return err
			}
		}
	} else if rc.Base != nil {
		if err := e.callImplicitSuper(obj, rc.Base, at); err != nil {
			return err
		}
	}

	if err := e.runFieldInits(obj, rc); err != nil {
		return err
	}

	env := NewEnclosedEnvironment(e.global)
	for i, name := range c.ParamNames {
		if i < len(args) {
			env.Define(name, args[i])
		}
	}
	ctx := &execContext{env: env, this: obj, currentClass: rc}
	if decl.Body != nil {
		if err := e.execBlock(decl.Body, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) callImplicitSuper(obj *Object, base *RuntimeClass, at ast.Position) error {
	if len(base.Info.Constructors) == 0 {
		return nil
	}
	for _, c := range base.Info.Constructors {
		if len(c.Params) == 0 {
			return e.runConstructor(obj, base, c, nil, at)
		}
	}
	return errors.Runtimef(pos(at), "base class '%s' has no zero-argument constructor", base.Name)
}

func (e *Evaluator) callExplicitSuper(obj *Object, base *RuntimeClass, args []Value, at ast.Position) error {
	cand, err := registry.ResolveOverload(base.Name, registry.ConstructorCandidates(base.Info.Constructors), argTypesOf(args), e.reg)
	if err != nil {
		return errors.Runtimef(pos(at), "super call: %v", err)
	}
	return e.runConstructor(obj, base, cand.Ctor, args, at)
}

// runFieldInits evaluates rc's own field initializers (not inherited ones,
// which already ran when the base constructor executed).
func (e *Evaluator) runFieldInits(obj *Object, rc *RuntimeClass) error {
	for _, fi := range rc.Info.Fields {
		if fi.Init == nil {
			continue
		}
		ctx := &execContext{env: NewEnclosedEnvironment(e.global), this: obj, currentClass: rc}
		v, err := e.evalExpr(fi.Init, ctx)
		if err != nil {
			return err
		}
		obj.SetField(fi.Offset, v)
	}
	return nil
}

// destroyObject marks obj destroyed, runs its destructor chain derived-first
// (unless the collector set skipDtor), then contributes any tracked fields
// to the histogram and resets any qubit fields it owns.
func (e *Evaluator) destroyObject(obj *Object, ctx *execContext) error {
	if obj == nil || obj.destroyed {
		return nil
	}
	obj.destroyed = true

	if !obj.skipDtor {
		for rc := obj.Class; rc != nil; rc = rc.Base {
			if rc.Info.Destructor != nil && rc.Info.Destructor.Body != nil {
				dctx := &execContext{env: NewEnclosedEnvironment(e.global), this: obj, currentClass: rc}
				if err := e.execBlock(rc.Info.Destructor.Body, dctx); err != nil {
					return err
				}
			}
		}
	}

	for _, fi := range e.reg.AllFields(obj.Class.Name) {
		v := obj.GetField(fi.Offset)
		if fi.IsTracked {
			e.tracked.add(fi.Name, e.trackedOutcome(v))
		}
		if q, ok := v.(QubitValue); ok {
			_ = e.sim.Reset(int(q))
			delete(e.lastMeasured, q)
		}
	}
	return nil
}
