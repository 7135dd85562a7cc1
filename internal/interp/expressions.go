package interp

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/types"
)

// evalExpr evaluates expr against ctx's environment and receiver, mirroring
// the node coverage of the semantic analyser's typeOf but producing values
// instead of static types.
func (e *Evaluator) evalExpr(expr ast.Expr, ctx *execContext) (Value, error) {
	switch n := expr.(type) {
	case *ast.IntLit:
		return IntValue(n.Value), nil
	case *ast.LongLit:
		return LongValue(n.Value), nil
	case *ast.FloatLit:
		return FloatValue(n.Value), nil
	case *ast.BitLit:
		return BitValue(n.Value), nil
	case *ast.BoolLit:
		return BoolValue(n.Value), nil
	case *ast.CharLit:
		return CharValue(n.Value), nil
	case *ast.StringLit:
		return StringValue(n.Value), nil
	case *ast.NullLit:
		return NullValue{}, nil
	case *ast.ParenExpr:
		return e.evalExpr(n.Inner, ctx)
	case *ast.Ident:
		if v, ok := ctx.env.Get(n.Name); ok {
			return v, nil
		}
		return nil, errors.Runtimef(pos(n.Position), "undefined variable '%s'", n.Name)
	case *ast.ThisExpr:
		return ObjectRef{Obj: ctx.this}, nil
	case *ast.ArrayLit:
		return e.evalArrayLit(n, ctx)
	case *ast.MemberExpr:
		return e.evalMember(n, ctx)
	case *ast.IndexExpr:
		return e.evalIndex(n, ctx)
	case *ast.CallExpr:
		return e.evalCall(n, ctx)
	case *ast.SuperCallExpr:
		return e.evalSuperCall(n, ctx)
	case *ast.NewExpr:
		return e.evalNew(n, ctx)
	case *ast.UnaryExpr:
		return e.evalUnary(n, ctx)
	case *ast.BinaryExpr:
		return e.evalBinary(n, ctx)
	case *ast.PostfixExpr:
		return e.evalPostfix(n, ctx)
	case *ast.CastExpr:
		return e.evalCast(n, ctx)
	case *ast.MeasureExpr:
		return e.doMeasure(n.Target, n.Position, ctx)
	case *ast.TernaryExpr:
		return e.evalTernary(n, ctx)
	default:
		return nil, errors.Runtimef(errors.Position{}, "unsupported expression")
	}
}

func (e *Evaluator) evalArrayLit(n *ast.ArrayLit, ctx *execContext) (Value, error) {
	items := make([]Value, len(n.Elements))
	var elem types.TypeInfo
	for i, el := range n.Elements {
		v, err := e.evalExpr(el, ctx)
		if err != nil {
			return nil, err
		}
		items[i] = v
		if i == 0 {
			elem = valueType(v)
		}
	}
	return &ArrayValue{Elem: elem, Items: items}, nil
}

// staticReceiverClass reports the RuntimeClass a bare-identifier receiver
// names, when that identifier is not shadowed by a local binding.
func (e *Evaluator) staticReceiverClass(recv ast.Expr, ctx *execContext) *RuntimeClass {
	id, ok := recv.(*ast.Ident)
	if !ok {
		return nil
	}
	if _, bound := ctx.env.Get(id.Name); bound {
		return nil
	}
	return e.classes.Get(id.Name)
}

func (e *Evaluator) evalMember(n *ast.MemberExpr, ctx *execContext) (Value, error) {
	if n.Name == "length" {
		rv, err := e.evalExpr(n.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		arr, ok := rv.(*ArrayValue)
		if !ok {
			return nil, errors.Runtimef(pos(n.Position), "'length' is only valid on arrays")
		}
		return IntValue(len(arr.Items)), nil
	}

	if rc := e.staticReceiverClass(n.Receiver, ctx); rc != nil {
		if v, ok := rc.StaticFields[n.Name]; ok {
			return v, nil
		}
		return nil, errors.Runtimef(pos(n.Position), "class '%s' has no static field '%s'", rc.Name, n.Name)
	}

	rv, err := e.evalExpr(n.Receiver, ctx)
	if err != nil {
		return nil, err
	}
	ref, ok := rv.(ObjectRef)
	if !ok || ref.Obj == nil {
		return nil, errors.Runtimef(pos(n.Position), "field '%s' accessed on a null reference", n.Name)
	}
	fi, owner := e.reg.LookupField(ref.Obj.Class.Name, n.Name)
	if fi == nil {
		return nil, errors.Runtimef(pos(n.Position), "no such field '%s'", n.Name)
	}
	_ = owner
	return ref.Obj.GetField(fi.Offset), nil
}

func (e *Evaluator) evalIndex(n *ast.IndexExpr, ctx *execContext) (Value, error) {
	rv, err := e.evalExpr(n.Receiver, ctx)
	if err != nil {
		return nil, err
	}
	arr, ok := rv.(*ArrayValue)
	if !ok {
		return nil, errors.Runtimef(pos(n.Position), "indexing requires an array")
	}
	iv, err := e.evalExpr(n.Index, ctx)
	if err != nil {
		return nil, err
	}
	idx := asInt(iv)
	if idx < 0 || idx >= len(arr.Items) {
		return nil, errors.Runtimef(pos(n.Position), "array index %d out of range [0,%d)", idx, len(arr.Items))
	}
	return arr.Items[idx], nil
}

func (e *Evaluator) evalArgs(exprs []ast.Expr, ctx *execContext) ([]Value, error) {
	out := make([]Value, len(exprs))
	for i, a := range exprs {
		v, err := e.evalExpr(a, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Evaluator) evalCall(n *ast.CallExpr, ctx *execContext) (Value, error) {
	switch callee := n.Callee.(type) {
	case *ast.Ident:
		if gate, ok := quantumBuiltin(callee.Name); ok {
			return e.evalQuantumBuiltin(gate, n.Args, n.Position, ctx)
		}
		args, err := e.evalArgs(n.Args, ctx)
		if err != nil {
			return nil, err
		}
		return e.resolveAndCallFunction(callee.Name, args, n.Position)
	case *ast.MemberExpr:
		args, err := e.evalArgs(n.Args, ctx)
		if err != nil {
			return nil, err
		}
		if rc := e.staticReceiverClass(callee.Receiver, ctx); rc != nil {
			return e.dispatchStaticMethod(rc, callee.Name, args, n.Position)
		}
		rv, err := e.evalExpr(callee.Receiver, ctx)
		if err != nil {
			return nil, err
		}
		ref, ok := rv.(ObjectRef)
		if !ok {
			return nil, errors.Runtimef(pos(n.Position), "cannot call method '%s' on a non-object value", callee.Name)
		}
		return e.dispatchMethod(ref.Obj, callee.Name, args, n.Position)
	default:
		return nil, errors.Runtimef(pos(n.Position), "expression is not callable")
	}
}

func (e *Evaluator) evalQuantumBuiltin(name string, argExprs []ast.Expr, at ast.Position, ctx *execContext) (Value, error) {
	args, err := e.evalArgs(argExprs, ctx)
	if err != nil {
		return nil, err
	}
	qubit := func(i int) (int, error) {
		q, ok := args[i].(QubitValue)
		if !ok {
			return 0, errors.Runtimef(pos(at), "'%s' requires a qubit argument", name)
		}
		return int(q), nil
	}
	switch name {
	case "h", "x", "y", "z":
		q, err := qubit(0)
		if err != nil {
			return nil, err
		}
		var gerr error
		switch name {
		case "h":
			gerr = e.sim.H(q)
		case "x":
			gerr = e.sim.X(q)
		case "y":
			gerr = e.sim.Y(q)
		case "z":
			gerr = e.sim.Z(q)
		}
		return VoidValue{}, gerr
	case "cx":
		control, err := qubit(0)
		if err != nil {
			return nil, err
		}
		target, err := qubit(1)
		if err != nil {
			return nil, err
		}
		return VoidValue{}, e.sim.CX(control, target)
	case "rx", "ry", "rz":
		q, err := qubit(0)
		if err != nil {
			return nil, err
		}
		theta := numAsFloat(args[1])
		var gerr error
		switch name {
		case "rx":
			gerr = e.sim.RX(q, theta)
		case "ry":
			gerr = e.sim.RY(q, theta)
		case "rz":
			gerr = e.sim.RZ(q, theta)
		}
		return VoidValue{}, gerr
	default:
		return nil, errors.Runtimef(pos(at), "unknown gate '%s'", name)
	}
}

func (e *Evaluator) evalSuperCall(n *ast.SuperCallExpr, ctx *execContext) (Value, error) {
	args, err := e.evalArgs(n.Args, ctx)
	if err != nil {
		return nil, err
	}
	return e.dispatchSuperCall(ctx, n.Method, args, n.Position)
}

func (e *Evaluator) evalNew(n *ast.NewExpr, ctx *execContext) (Value, error) {
	args, err := e.evalArgs(n.Args, ctx)
	if err != nil {
		return nil, err
	}
	obj, err := e.construct(n.ClassName, args, n.Position, ctx)
	if err != nil {
		return nil, err
	}
	return ObjectRef{Obj: obj}, nil
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpr, ctx *execContext) (Value, error) {
	v, err := e.evalExpr(n.Operand, ctx)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		switch t := v.(type) {
		case IntValue:
			return -t, nil
		case LongValue:
			return -t, nil
		case FloatValue:
			return -t, nil
		default:
			return nil, errors.Runtimef(pos(n.Position), "unary '-' requires a numeric operand")
		}
	case "!":
		b, ok := v.(BoolValue)
		if !ok {
			return nil, errors.Runtimef(pos(n.Position), "unary '!' requires a boolean operand")
		}
		return !b, nil
	default:
		return nil, errors.Runtimef(pos(n.Position), "unknown unary operator '%s'", n.Op)
	}
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpr, ctx *execContext) (Value, error) {
	if n.Op == "&&" || n.Op == "||" {
		lv, err := e.evalExpr(n.Left, ctx)
		if err != nil {
			return nil, err
		}
		lb, ok := lv.(BoolValue)
		if !ok {
			return nil, errors.Runtimef(pos(n.Position), "operator '%s' requires boolean operands", n.Op)
		}
		if n.Op == "&&" && !bool(lb) {
			return BoolValue(false), nil
		}
		if n.Op == "||" && bool(lb) {
			return BoolValue(true), nil
		}
		rv, err := e.evalExpr(n.Right, ctx)
		if err != nil {
			return nil, err
		}
		rb, ok := rv.(BoolValue)
		if !ok {
			return nil, errors.Runtimef(pos(n.Position), "operator '%s' requires boolean operands", n.Op)
		}
		return rb, nil
	}

	lv, err := e.evalExpr(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	rv, err := e.evalExpr(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	return applyBinary(n.Op, lv, rv, n.Position)
}

func applyBinary(op string, lv, rv Value, at ast.Position) (Value, error) {
	switch op {
	case "+":
		if ls, ok := lv.(StringValue); ok {
			rs, ok := rv.(StringValue)
			if !ok {
				return nil, errors.Runtimef(pos(at), "string concatenation requires both operands to be string")
			}
			return ls + rs, nil
		}
		return numericBinary(op, lv, rv, at)
	case "-", "*", "/":
		return numericBinary(op, lv, rv, at)
	case "%":
		return numericBinary(op, lv, rv, at)
	case "==":
		return BoolValue(valuesEqual(lv, rv)), nil
	case "!=":
		return BoolValue(!valuesEqual(lv, rv)), nil
	case "<", "<=", ">", ">=":
		return numericCompare(op, lv, rv, at)
	case "&", "|", "^":
		return bitwiseBinary(op, lv, rv, at)
	default:
		return nil, errors.Runtimef(pos(at), "unknown binary operator '%s'", op)
	}
}

func numKind(v Value) types.Kind {
	switch v.(type) {
	case FloatValue:
		return types.Float
	case LongValue:
		return types.Long
	case IntValue:
		return types.Int
	default:
		return types.Unknown
	}
}

func numAsFloat(v Value) float64 {
	switch t := v.(type) {
	case IntValue:
		return float64(t)
	case LongValue:
		return float64(t)
	case FloatValue:
		return float64(t)
	default:
		return 0
	}
}

func numAsInt64(v Value) int64 {
	switch t := v.(type) {
	case IntValue:
		return int64(t)
	case LongValue:
		return int64(t)
	default:
		return 0
	}
}

func numericBinary(op string, lv, rv Value, at ast.Position) (Value, error) {
	lk, rk := numKind(lv), numKind(rv)
	if lk == types.Unknown || rk == types.Unknown {
		return nil, errors.Runtimef(pos(at), "operator '%s' requires numeric operands", op)
	}
	if lk == types.Float || rk == types.Float {
		l, r := numAsFloat(lv), numAsFloat(rv)
		switch op {
		case "+":
			return FloatValue(l + r), nil
		case "-":
			return FloatValue(l - r), nil
		case "*":
			return FloatValue(l * r), nil
		case "/":
			return FloatValue(l / r), nil
		case "%":
			return nil, errors.Runtimef(pos(at), "'%%' requires int or long operands")
		}
	}
	l, r := numAsInt64(lv), numAsInt64(rv)
	if (op == "/" || op == "%") && r == 0 {
		return nil, errors.Runtimef(pos(at), "division by zero")
	}
	var result int64
	switch op {
	case "+":
		result = l + r
	case "-":
		result = l - r
	case "*":
		result = l * r
	case "/":
		result = l / r
	case "%":
		result = l % r
	}
	if lk == types.Long || rk == types.Long {
		return LongValue(result), nil
	}
	return IntValue(result), nil
}

func numericCompare(op string, lv, rv Value, at ast.Position) (Value, error) {
	lk, rk := numKind(lv), numKind(rv)
	if lk == types.Unknown || rk == types.Unknown {
		return nil, errors.Runtimef(pos(at), "operator '%s' requires numeric operands", op)
	}
	l, r := numAsFloat(lv), numAsFloat(rv)
	var result bool
	switch op {
	case "<":
		result = l < r
	case "<=":
		result = l <= r
	case ">":
		result = l > r
	case ">=":
		result = l >= r
	}
	return BoolValue(result), nil
}

func bitwiseBinary(op string, lv, rv Value, at ast.Position) (Value, error) {
	if lb, ok := lv.(BitValue); ok {
		rb, ok := rv.(BitValue)
		if !ok {
			return nil, errors.Runtimef(pos(at), "operator '%s' requires matching bit operands", op)
		}
		switch op {
		case "&":
			return BitValue(int(lb) & int(rb)), nil
		case "|":
			return BitValue(int(lb) | int(rb)), nil
		case "^":
			return BitValue(int(lb) ^ int(rb)), nil
		}
	}
	la, ok := lv.(*ArrayValue)
	if !ok {
		return nil, errors.Runtimef(pos(at), "operator '%s' requires matching bit or bit[] operands", op)
	}
	ra, ok := rv.(*ArrayValue)
	if !ok || len(ra.Items) != len(la.Items) {
		return nil, errors.Runtimef(pos(at), "operator '%s' requires matching bit or bit[] operands", op)
	}
	items := make([]Value, len(la.Items))
	for i := range la.Items {
		v, err := bitwiseBinary(op, la.Items[i], ra.Items[i], at)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return &ArrayValue{Elem: types.BitType(), Items: items}, nil
}

func valuesEqual(lv, rv Value) bool {
	if _, ok := lv.(NullValue); ok {
		return isNull(rv)
	}
	if _, ok := rv.(NullValue); ok {
		return isNull(lv)
	}
	switch l := lv.(type) {
	case IntValue, LongValue, FloatValue:
		rk := numKind(rv)
		if rk == types.Unknown {
			return false
		}
		return numAsFloat(lv) == numAsFloat(rv)
	case BitValue:
		r, ok := rv.(BitValue)
		return ok && l == r
	case BoolValue:
		r, ok := rv.(BoolValue)
		return ok && l == r
	case StringValue:
		r, ok := rv.(StringValue)
		return ok && l == r
	case CharValue:
		r, ok := rv.(CharValue)
		return ok && l == r
	case QubitValue:
		r, ok := rv.(QubitValue)
		return ok && l == r
	case ObjectRef:
		r, ok := rv.(ObjectRef)
		return ok && l.Obj == r.Obj
	default:
		return false
	}
}

func isNull(v Value) bool {
	switch t := v.(type) {
	case NullValue:
		return true
	case ObjectRef:
		return t.Obj == nil
	default:
		return false
	}
}

func (e *Evaluator) evalPostfix(n *ast.PostfixExpr, ctx *execContext) (Value, error) {
	v, err := e.evalExpr(n.Operand, ctx)
	if err != nil {
		return nil, err
	}
	var updated Value
	switch t := v.(type) {
	case IntValue:
		if n.Op == "++" {
			updated = t + 1
		} else {
			updated = t - 1
		}
	case LongValue:
		if n.Op == "++" {
			updated = t + 1
		} else {
			updated = t - 1
		}
	default:
		return nil, errors.Runtimef(pos(n.Position), "'%s' requires an int or long operand", n.Op)
	}
	if err := e.assignTo(n.Operand, updated, ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func (e *Evaluator) evalCast(n *ast.CastExpr, ctx *execContext) (Value, error) {
	v, err := e.evalExpr(n.Operand, ctx)
	if err != nil {
		return nil, err
	}
	target, err := e.reg.ResolveType(n.Type, nil)
	if err != nil {
		return nil, err
	}
	switch target.Primitive {
	case types.Int:
		return IntValue(castToInt64(v)), nil
	case types.Long:
		return LongValue(castToInt64(v)), nil
	case types.Float:
		return FloatValue(numAsFloat(v)), nil
	case types.Bit:
		if numKind(v) == types.Unknown {
			if b, ok := v.(BitValue); ok {
				return b, nil
			}
			return nil, errors.Runtimef(pos(n.Position), "cannot cast to bit")
		}
		if castToInt64(v) != 0 {
			return BitValue(1), nil
		}
		return BitValue(0), nil
	default:
		return nil, errors.Runtimef(pos(n.Position), "unsupported cast target")
	}
}

func castToInt64(v Value) int64 {
	switch t := v.(type) {
	case IntValue:
		return int64(t)
	case LongValue:
		return int64(t)
	case FloatValue:
		return int64(t)
	case BitValue:
		return int64(t)
	default:
		return 0
	}
}

func (e *Evaluator) evalTernary(n *ast.TernaryExpr, ctx *execContext) (Value, error) {
	cv, err := e.evalExpr(n.Cond, ctx)
	if err != nil {
		return nil, err
	}
	switch cv.(type) {
	case BoolValue, BitValue:
	default:
		return nil, errors.Runtimef(pos(n.Position), "ternary condition must be boolean or bit")
	}
	if truthy(cv) {
		return e.evalExpr(n.Then, ctx)
	}
	return e.evalExpr(n.Else, ctx)
}
