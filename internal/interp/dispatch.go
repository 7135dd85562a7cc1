package interp

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/registry"
	"github.com/bloch-labs/bloch/internal/types"
)

// quantumGateNames is the fixed set of built-in gate call names, checked
// before free-function overload resolution so a user-defined function can
// never shadow a gate.
var quantumGateNames = map[string]bool{
	"h": true, "x": true, "y": true, "z": true,
	"cx": true, "rx": true, "ry": true, "rz": true,
}

// quantumBuiltin reports whether name is a built-in gate call.
func quantumBuiltin(name string) (string, bool) {
	if quantumGateNames[name] {
		return name, true
	}
	return "", false
}

// valueType returns the runtime TypeInfo of a value, used to drive
// overload resolution with the same cost model the semantic analyser used.
func valueType(v Value) types.TypeInfo {
	switch t := v.(type) {
	case IntValue:
		return types.IntType()
	case LongValue:
		return types.LongType()
	case FloatValue:
		return types.FloatType()
	case BitValue:
		return types.BitType()
	case BoolValue:
		return types.BooleanType()
	case StringValue:
		return types.StringType()
	case CharValue:
		return types.CharType()
	case QubitValue:
		return types.QubitType()
	case NullValue:
		return types.NullType()
	case VoidValue:
		return types.VoidType()
	case *ArrayValue:
		return types.ArrayOf(t.Elem)
	case ObjectRef:
		if t.Obj == nil {
			return types.NullType()
		}
		return types.Class(t.Obj.Class.Name)
	default:
		return types.UnknownType()
	}
}

func argTypesOf(args []Value) []types.TypeInfo {
	out := make([]types.TypeInfo, len(args))
	for i, a := range args {
		out[i] = valueType(a)
	}
	return out
}

// callFunction invokes the given free-function declaration, binding args to
// its parameter names. Overload selection happens in resolveAndCallFunction.
func (e *Evaluator) callFunction(fn *ast.FunctionDecl, args []Value) (Value, error) {
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = p.Name
	}
	return e.invokeBody(fn.Body, names, args, nil, nil)
}

// resolveAndCallFunction picks the best-matching overload of name among the
// program's free functions and invokes it.
func (e *Evaluator) resolveAndCallFunction(name string, args []Value, at ast.Position) (Value, error) {
	fns := e.functions[name]
	if len(fns) == 0 {
		return nil, errors.Runtimef(pos(at), "call to undeclared function '%s'", name)
	}
	argTypes := argTypesOf(args)
	var best *ast.FunctionDecl
	bestCost := -1
	for _, f := range fns {
		if len(f.Params) != len(args) {
			continue
		}
		total := 0
		ok := true
		for i, p := range f.Params {
			pt, err := e.reg.ResolveType(p.Type, nil)
			if err != nil {
				return nil, err
			}
			cost, matched := types.ConversionCost(e.reg, pt, argTypes[i])
			if !matched {
				ok = false
				break
			}
			total += cost
		}
		if ok && (best == nil || total < bestCost) {
			best, bestCost = f, total
		}
	}
	if best == nil {
		return nil, errors.Runtimef(pos(at), "no overload of '%s' matches the given arguments", name)
	}
	return e.callFunction(best, args)
}

// dispatchMethod resolves and invokes an instance method call on obj.
func (e *Evaluator) dispatchMethod(obj *Object, name string, args []Value, at ast.Position) (Value, error) {
	if obj == nil {
		return nil, errors.Runtimef(pos(at), "method '%s' called on a null reference", name)
	}
	methods := e.reg.LookupMethods(obj.Class.Name, name)
	if len(methods) == 0 {
		return nil, errors.Runtimef(pos(at), "class '%s' has no method '%s'", obj.Class.Name, name)
	}
	argTypes := argTypesOf(args)
	cand, err := registry.ResolveOverload(name, registry.MethodCandidates(methods), argTypes, e.reg)
	if err != nil {
		return nil, errors.Runtimef(pos(at), "%v", err)
	}
	mi := cand.Method
	if (mi.IsVirtual || mi.IsOverride) && mi.VSlot >= 0 && mi.VSlot < len(obj.Class.VTable) {
		if resolved := obj.Class.VTable[mi.VSlot]; resolved != nil {
			mi = resolved
		}
	}
	return e.invokeMethod(obj, mi, args)
}

// dispatchStaticMethod resolves and invokes a static method call on rc.
func (e *Evaluator) dispatchStaticMethod(rc *RuntimeClass, name string, args []Value, at ast.Position) (Value, error) {
	methods := e.reg.LookupMethods(rc.Name, name)
	if len(methods) == 0 {
		return nil, errors.Runtimef(pos(at), "class '%s' has no method '%s'", rc.Name, name)
	}
	cand, err := registry.ResolveOverload(name, registry.MethodCandidates(methods), argTypesOf(args), e.reg)
	if err != nil {
		return nil, errors.Runtimef(pos(at), "%v", err)
	}
	return e.invokeBody(cand.Method.Decl.Body, cand.Method.ParamNames, args, nil, rc)
}

// dispatchSuperCall resolves method in ctx.currentClass's base and invokes
// it non-virtually against ctx.this.
func (e *Evaluator) dispatchSuperCall(ctx *execContext, name string, args []Value, at ast.Position) (Value, error) {
	if ctx.currentClass == nil || ctx.currentClass.Base == nil {
		return nil, errors.Runtimef(pos(at), "'super' is not valid here")
	}
	base := ctx.currentClass.Base
	methods := e.reg.LookupMethods(base.Name, name)
	if len(methods) == 0 {
		return nil, errors.Runtimef(pos(at), "base class '%s' has no method '%s'", base.Name, name)
	}
	cand, err := registry.ResolveOverload(name, registry.MethodCandidates(methods), argTypesOf(args), e.reg)
	if err != nil {
		return nil, errors.Runtimef(pos(at), "%v", err)
	}
	return e.invokeMethod(ctx.this, cand.Method, args)
}

func (e *Evaluator) invokeMethod(obj *Object, mi *registry.MethodInfo, args []Value) (Value, error) {
	return e.invokeBody(mi.Decl.Body, mi.ParamNames, args, obj, e.classes.Get(mi.OwnerClass))
}

func (e *Evaluator) invokeBody(body *ast.BlockStmt, paramNames []string, args []Value, this *Object, owner *RuntimeClass) (Value, error) {
	env := NewEnclosedEnvironment(e.global)
	for i, name := range paramNames {
		if i < len(args) {
			env.Define(name, args[i])
		}
	}
	ctx := &execContext{env: env, this: this, currentClass: owner}
	if body == nil {
		return VoidValue{}, nil
	}
	if err := e.execBlock(body, ctx); err != nil {
		return nil, err
	}
	if ctx.returning {
		return ctx.returnValue, nil
	}
	return VoidValue{}, nil
}
