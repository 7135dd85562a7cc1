package semantic

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/registry"
	"github.com/bloch-labs/bloch/internal/types"
)

// typeOf computes the static type of expr, or the first error found while
// doing so.
func (a *Analyzer) typeOf(expr ast.Expr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	switch n := expr.(type) {
	case *ast.IntLit:
		return types.IntType(), nil
	case *ast.LongLit:
		return types.LongType(), nil
	case *ast.FloatLit:
		return types.FloatType(), nil
	case *ast.BitLit:
		return types.BitType(), nil
	case *ast.BoolLit:
		return types.BooleanType(), nil
	case *ast.CharLit:
		return types.CharType(), nil
	case *ast.StringLit:
		return types.StringType(), nil
	case *ast.NullLit:
		return types.NullType(), nil
	case *ast.ParenExpr:
		return a.typeOf(n.Inner, scope, ctx)
	case *ast.Ident:
		return a.typeOfIdent(n, scope)
	case *ast.ThisExpr:
		if ctx.class == nil || ctx.inStatic {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "'this' is not valid in a static context")
		}
		return types.Class(ctx.class.Name), nil
	case *ast.ArrayLit:
		return a.typeOfArrayLit(n, scope, ctx)
	case *ast.MemberExpr:
		return a.typeOfMember(n, scope, ctx)
	case *ast.IndexExpr:
		return a.typeOfIndex(n, scope, ctx)
	case *ast.CallExpr:
		return a.typeOfCall(n, scope, ctx)
	case *ast.SuperCallExpr:
		return a.typeOfSuperCall(n, scope, ctx)
	case *ast.NewExpr:
		return a.typeOfNew(n, scope, ctx)
	case *ast.UnaryExpr:
		return a.typeOfUnary(n, scope, ctx)
	case *ast.BinaryExpr:
		return a.typeOfBinary(n, scope, ctx)
	case *ast.PostfixExpr:
		return a.typeOfPostfix(n, scope, ctx)
	case *ast.CastExpr:
		return a.typeOfCast(n, scope, ctx)
	case *ast.MeasureExpr:
		return a.typeOfMeasure(n.Target, n.Position, scope, ctx)
	case *ast.TernaryExpr:
		return a.typeOfTernary(n, scope, ctx)
	default:
		return types.UnknownType(), errors.Semanticf(errors.Position{}, "unsupported expression node")
	}
}

func (a *Analyzer) typeOfIdent(n *ast.Ident, scope *Scope) (types.TypeInfo, error) {
	if sym, ok := scope.lookup(n.Name); ok && !sym.IsTypeName {
		return sym.Type, nil
	}
	return types.UnknownType(), errors.Semanticf(pos(n.Position), "undeclared identifier '%s'", n.Name)
}

func (a *Analyzer) typeOfArrayLit(n *ast.ArrayLit, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	if len(n.Elements) == 0 {
		return types.ArrayOf(types.UnknownType()), nil
	}
	elem, err := a.typeOf(n.Elements[0], scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	for _, e := range n.Elements[1:] {
		t, err := a.typeOf(e, scope, ctx)
		if err != nil {
			return types.UnknownType(), err
		}
		if !types.Equal(t, elem) {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "array literal elements must share one type")
		}
	}
	return types.ArrayOf(elem), nil
}

// isAccessible reports whether a member declared with vis on ownerClass is
// visible from the current analysis context.
func (a *Analyzer) isAccessible(ctx *funcCtx, ownerClass string, vis ast.Visibility) bool {
	switch vis {
	case ast.Public:
		return true
	case ast.Protected:
		return ctx.class != nil && (ctx.class.Name == ownerClass || a.reg.IsDescendantOf(ctx.class.Name, ownerClass))
	default: // ast.Private
		return ctx.class != nil && ctx.class.Name == ownerClass
	}
}

func (a *Analyzer) typeOfMember(n *ast.MemberExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	if n.Name == "length" {
		rt, err := a.typeOf(n.Receiver, scope, ctx)
		if err != nil {
			return types.UnknownType(), err
		}
		if !rt.IsArray() {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "'length' is only valid on arrays")
		}
		return types.IntType(), nil
	}

	// A bare class-name receiver refers to a static field.
	if id, ok := n.Receiver.(*ast.Ident); ok {
		if sym, ok := scope.lookup(id.Name); ok && sym.IsTypeName {
			ci := a.reg.Classes[sym.Type.ClassName]
			fi, owner := a.reg.LookupField(ci.Name, n.Name)
			if fi == nil || !fi.IsStatic {
				return types.UnknownType(), errors.Semanticf(pos(n.Position), "class '%s' has no static field '%s'", ci.Name, n.Name)
			}
			if !a.isAccessible(ctx, owner, fi.Visibility) {
				return types.UnknownType(), errors.Semanticf(pos(n.Position), "static field '%s' of '%s' is not accessible here", n.Name, owner)
			}
			return fi.Type, nil
		}
	}

	rt, err := a.typeOf(n.Receiver, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	if !rt.IsClass() {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "'%s' is not a field of type '%s'", n.Name, rt.String())
	}
	fi, owner := a.reg.LookupField(rt.ClassName, n.Name)
	if fi == nil {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "class '%s' has no field '%s'", rt.ClassName, n.Name)
	}
	if !a.isAccessible(ctx, owner, fi.Visibility) {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "field '%s' of '%s' is not accessible here", n.Name, owner)
	}
	return types.Substitute(fi.Type, typeArgBindings(a.reg.Classes[owner], rt)), nil
}

// typeArgBindings maps a class's own type-parameter names to the concrete
// type arguments carried by an instance type of that class, for generic
// field/method substitution.
func typeArgBindings(ci *registry.ClassInfo, instance types.TypeInfo) map[string]types.TypeInfo {
	if ci == nil || len(ci.TypeParams) == 0 || len(instance.TypeArgs) != len(ci.TypeParams) {
		return nil
	}
	out := make(map[string]types.TypeInfo, len(ci.TypeParams))
	for i, tp := range ci.TypeParams {
		out[tp.Name] = instance.TypeArgs[i]
	}
	return out
}

func (a *Analyzer) typeOfIndex(n *ast.IndexExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	rt, err := a.typeOf(n.Receiver, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	if !rt.IsArray() {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "indexing requires an array, got '%s'", rt.String())
	}
	it, err := a.typeOf(n.Index, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	if !it.IsIntegral() {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "array index must be int or long, got '%s'", it.String())
	}
	return rt.ElemType(), nil
}

func (a *Analyzer) typeOfCall(n *ast.CallExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	argTypes := make([]types.TypeInfo, len(n.Args))
	for i, arg := range n.Args {
		t, err := a.typeOf(arg, scope, ctx)
		if err != nil {
			return types.UnknownType(), err
		}
		argTypes[i] = t
	}

	switch callee := n.Callee.(type) {
	case *ast.Ident:
		if q, ok := quantumBuiltin(callee.Name); ok {
			return a.checkQuantumBuiltin(q, argTypes, n.Position)
		}
		fns, ok := a.funcs[callee.Name]
		if !ok {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "call to undeclared function '%s'", callee.Name)
		}
		cand, err := resolveFunctionOverload(a, callee.Name, fns, argTypes)
		if err != nil {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "%v", err)
		}
		rt, rerr := a.reg.ResolveType(cand.ReturnType, nil)
		if rerr != nil {
			return types.UnknownType(), rerr
		}
		return rt, nil
	case *ast.MemberExpr:
		var recvType types.TypeInfo
		var err error
		staticReceiver := false
		if id, ok := callee.Receiver.(*ast.Ident); ok {
			if sym, ok := scope.lookup(id.Name); ok && sym.IsTypeName {
				recvType = sym.Type
				staticReceiver = true
			}
		}
		if recvType.ClassName == "" {
			recvType, err = a.typeOf(callee.Receiver, scope, ctx)
			if err != nil {
				return types.UnknownType(), err
			}
		}
		if !recvType.IsClass() {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "cannot call method '%s' on non-class type '%s'", callee.Name, recvType.String())
		}
		methods := a.reg.LookupMethods(recvType.ClassName, callee.Name)
		if len(methods) == 0 {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "class '%s' has no method '%s'", recvType.ClassName, callee.Name)
		}
		if !a.isAccessible(ctx, methods[0].OwnerClass, methods[0].Visibility) {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "method '%s' of '%s' is not accessible here", callee.Name, recvType.ClassName)
		}
		cands := registry.MethodCandidates(methods)
		best, rerr := registry.ResolveOverload(callee.Name, cands, argTypes, a.reg)
		if rerr != nil {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "%v", rerr)
		}
		if staticReceiver && !best.Method.IsStatic {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "method '%s' is not static and requires an instance receiver", callee.Name)
		}
		if !staticReceiver && best.Method.IsStatic {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "method '%s' is static and must be called on the class", callee.Name)
		}
		return types.Substitute(best.Method.ReturnType, typeArgBindings(a.reg.Classes[recvType.ClassName], recvType)), nil
	default:
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "expression is not callable")
	}
}

func resolveFunctionOverload(a *Analyzer, name string, fns []*ast.FunctionDecl, argTypes []types.TypeInfo) (*ast.FunctionDecl, error) {
	var best *ast.FunctionDecl
	bestCost := -1
	tie := false
	for _, f := range fns {
		if len(f.Params) != len(argTypes) {
			continue
		}
		total := 0
		ok := true
		for i, p := range f.Params {
			pt, err := a.reg.ResolveType(p.Type, nil)
			if err != nil {
				return nil, err
			}
			cost, matched := types.ConversionCost(a.reg, pt, argTypes[i])
			if !matched {
				ok = false
				break
			}
			total += cost
		}
		if !ok {
			continue
		}
		switch {
		case best == nil || total < bestCost:
			best, bestCost, tie = f, total, false
		case total == bestCost:
			tie = true
		}
	}
	if best == nil {
		return nil, &registry.ErrNoMatch{Name: name}
	}
	if tie {
		return nil, &registry.ErrAmbiguous{Name: name}
	}
	return best, nil
}

func (a *Analyzer) typeOfSuperCall(n *ast.SuperCallExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	if ctx.class == nil || ctx.class.BaseName == "" {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "'super' is not valid here")
	}
	argTypes := make([]types.TypeInfo, len(n.Args))
	for i, arg := range n.Args {
		t, err := a.typeOf(arg, scope, ctx)
		if err != nil {
			return types.UnknownType(), err
		}
		argTypes[i] = t
	}
	methods := a.reg.LookupMethods(ctx.class.BaseName, n.Method)
	if len(methods) == 0 {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "base class has no method '%s'", n.Method)
	}
	best, err := registry.ResolveOverload(n.Method, registry.MethodCandidates(methods), argTypes, a.reg)
	if err != nil {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "%v", err)
	}
	return best.Method.ReturnType, nil
}

func (a *Analyzer) typeOfNew(n *ast.NewExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	ci, ok := a.reg.Classes[n.ClassName]
	if !ok {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "unknown class '%s'", n.ClassName)
	}
	if err := ensureInstantiable(ci, pos(n.Position)); err != nil {
		return types.UnknownType(), err
	}
	argTypes := make([]types.TypeInfo, len(n.Args))
	for i, arg := range n.Args {
		t, err := a.typeOf(arg, scope, ctx)
		if err != nil {
			return types.UnknownType(), err
		}
		argTypes[i] = t
	}
	if len(ci.Constructors) > 0 {
		if _, err := registry.ResolveOverload(n.ClassName, registry.ConstructorCandidates(ci.Constructors), argTypes, a.reg); err != nil {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "%v", err)
		}
	} else if len(argTypes) != 0 {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "class '%s' takes no constructor arguments", n.ClassName)
	}
	typeArgs := make([]types.TypeInfo, len(n.TypeArgs))
	for i, tn := range n.TypeArgs {
		t, err := a.reg.ResolveType(tn, nil)
		if err != nil {
			return types.UnknownType(), err
		}
		typeArgs[i] = t
	}
	return types.Class(n.ClassName, typeArgs...), nil
}

func (a *Analyzer) typeOfUnary(n *ast.UnaryExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	t, err := a.typeOf(n.Operand, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	switch n.Op {
	case "-":
		if !t.IsNumeric() {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "unary '-' requires a numeric operand, got '%s'", t.String())
		}
		return t, nil
	case "!":
		if t.Primitive != types.Boolean {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "unary '!' requires a boolean operand, got '%s'", t.String())
		}
		return t, nil
	default:
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "unknown unary operator '%s'", n.Op)
	}
}

func numericResult(a, b types.TypeInfo) types.TypeInfo {
	if a.Primitive == types.Float || b.Primitive == types.Float {
		return types.FloatType()
	}
	if a.Primitive == types.Long || b.Primitive == types.Long {
		return types.LongType()
	}
	return types.IntType()
}

func (a *Analyzer) typeOfBinary(n *ast.BinaryExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	lt, err := a.typeOf(n.Left, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	rt, err := a.typeOf(n.Right, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}

	switch n.Op {
	case "+":
		if lt.Primitive == types.String || rt.Primitive == types.String {
			if lt.Primitive != types.String || rt.Primitive != types.String {
				return types.UnknownType(), errors.Semanticf(pos(n.Position), "string concatenation requires both operands to be string")
			}
			return types.StringType(), nil
		}
		fallthrough
	case "-", "*", "/":
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "operator '%s' requires numeric operands, got '%s' and '%s'", n.Op, lt.String(), rt.String())
		}
		return numericResult(lt, rt), nil
	case "%":
		if !lt.IsIntegral() || !rt.IsIntegral() {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "'%%' requires int or long operands")
		}
		return numericResult(lt, rt), nil
	case "==", "!=":
		if lt.IsArray() || rt.IsArray() {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "array equality is not supported")
		}
		if lt.Primitive == types.Null || rt.Primitive == types.Null {
			if !lt.IsClass() && lt.Primitive != types.Null || !rt.IsClass() && rt.Primitive != types.Null {
				return types.UnknownType(), errors.Semanticf(pos(n.Position), "null can only be compared against a class-reference type")
			}
			return types.BooleanType(), nil
		}
		if !types.Assignable(a.reg, lt, rt) && !types.Assignable(a.reg, rt, lt) {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "cannot compare '%s' and '%s'", lt.String(), rt.String())
		}
		return types.BooleanType(), nil
	case "<", "<=", ">", ">=":
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "operator '%s' requires numeric operands", n.Op)
		}
		return types.BooleanType(), nil
	case "&&", "||":
		if lt.Primitive != types.Boolean || rt.Primitive != types.Boolean {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "operator '%s' requires boolean operands", n.Op)
		}
		return types.BooleanType(), nil
	case "&", "|", "^":
		isBit := func(t types.TypeInfo) bool {
			return t.Primitive == types.Bit || (t.IsArray() && t.ElemType().Primitive == types.Bit)
		}
		if !isBit(lt) || !isBit(rt) || !types.Equal(lt, rt) {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "operator '%s' requires matching bit or bit[] operands", n.Op)
		}
		return lt, nil
	default:
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "unknown binary operator '%s'", n.Op)
	}
}

func (a *Analyzer) typeOfPostfix(n *ast.PostfixExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	t, err := a.typeOf(n.Operand, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	if !t.IsIntegral() {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "'%s' requires an int or long operand", n.Op)
	}
	if err := a.checkNotFinalTarget(n.Operand, scope, ctx, n.Position); err != nil {
		return types.UnknownType(), err
	}
	return t, nil
}

var castableKinds = map[types.Kind]bool{types.Int: true, types.Long: true, types.Float: true, types.Bit: true}

func (a *Analyzer) typeOfCast(n *ast.CastExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	target, err := a.reg.ResolveType(n.Type, nil)
	if err != nil {
		return types.UnknownType(), err
	}
	if !castableKinds[target.Primitive] {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "cast target must be one of int, long, float, bit")
	}
	src, err := a.typeOf(n.Operand, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	if !castableKinds[src.Primitive] {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "cannot cast from '%s'", src.String())
	}
	return target, nil
}

func (a *Analyzer) typeOfMeasure(target ast.Expr, at ast.Position, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	t, err := a.typeOf(target, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	if t.Primitive != types.Qubit {
		return types.UnknownType(), errors.Semanticf(pos(at), "measure requires a qubit operand, got '%s'", t.String())
	}
	return types.BitType(), nil
}

func (a *Analyzer) typeOfTernary(n *ast.TernaryExpr, scope *Scope, ctx *funcCtx) (types.TypeInfo, error) {
	ct, err := a.typeOf(n.Cond, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	if ct.Primitive != types.Boolean && ct.Primitive != types.Bit {
		return types.UnknownType(), errors.Semanticf(pos(n.Position), "ternary condition must be boolean or bit")
	}
	tt, err := a.typeOf(n.Then, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	et, err := a.typeOf(n.Else, scope, ctx)
	if err != nil {
		return types.UnknownType(), err
	}
	if types.Assignable(a.reg, tt, et) {
		return tt, nil
	}
	if types.Assignable(a.reg, et, tt) {
		return et, nil
	}
	return types.UnknownType(), errors.Semanticf(pos(n.Position), "ternary branches have incompatible types '%s' and '%s'", tt.String(), et.String())
}

// checkNotFinalTarget rejects ++/-- and assignment on a final variable or field.
func (a *Analyzer) checkNotFinalTarget(target ast.Expr, scope *Scope, ctx *funcCtx, at ast.Position) error {
	switch t := target.(type) {
	case *ast.Ident:
		if sym, ok := scope.lookup(t.Name); ok && sym.IsFinal {
			return errors.Semanticf(pos(at), "cannot modify final variable '%s'", t.Name)
		}
	case *ast.MemberExpr:
		if _, ok := t.Receiver.(*ast.ThisExpr); ok {
			if fi, _ := a.reg.LookupField(ctx.class.Name, t.Name); fi != nil && fi.IsFinal && !ctx.isConstructor {
				return errors.Semanticf(pos(at), "cannot modify final field '%s' outside its constructor", t.Name)
			}
		}
	}
	return nil
}

// quantumBuiltin reports whether name is a built-in gate call, returning the
// name when it is. Gate application itself is a runtime concern; operand
// types and arity are validated by checkQuantumBuiltin.
func quantumBuiltin(name string) (string, bool) {
	switch name {
	case "h", "x", "y", "z", "cx", "rx", "ry", "rz":
		return name, true
	}
	return "", false
}

func (a *Analyzer) checkQuantumBuiltin(name string, argTypes []types.TypeInfo, at ast.Position) (types.TypeInfo, error) {
	isQubit := func(t types.TypeInfo) bool { return t.Primitive == types.Qubit }
	switch name {
	case "h", "x", "y", "z":
		if len(argTypes) != 1 || !isQubit(argTypes[0]) {
			return types.UnknownType(), errors.Semanticf(pos(at), "gate '%s' takes a single qubit argument", name)
		}
	case "cx":
		if len(argTypes) != 2 || !isQubit(argTypes[0]) || !isQubit(argTypes[1]) {
			return types.UnknownType(), errors.Semanticf(pos(at), "'cx' takes two qubit arguments")
		}
	case "rx", "ry", "rz":
		if len(argTypes) != 2 || !isQubit(argTypes[0]) || !argTypes[1].IsNumeric() {
			return types.UnknownType(), errors.Semanticf(pos(at), "'%s' takes a qubit and a numeric angle", name)
		}
	}
	return types.VoidType(), nil
}
