package interp

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
)

// execBlock runs a block in a freshly nested scope, checking for a pending
// collection between statements (the mutator's statement-boundary
// cooperation point described in spec §5).
func (e *Evaluator) execBlock(b *ast.BlockStmt, parent *execContext) error {
	inner := &execContext{
		env:          NewEnclosedEnvironment(parent.env),
		this:         parent.this,
		currentClass: parent.currentClass,
	}
	for _, s := range b.Stmts {
		if err := e.execStmt(s, inner); err != nil {
			return err
		}
		if err := e.checkStatementBoundary(inner); err != nil {
			return err
		}
		if inner.returning {
			parent.returning = true
			parent.returnValue = inner.returnValue
			e.contributeTracked(inner)
			return nil
		}
	}
	e.contributeTracked(inner)
	return nil
}

func (e *Evaluator) execStmt(s ast.Stmt, ctx *execContext) error {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return e.execBlock(n, ctx)
	case *ast.IfStmt:
		return e.execIf(n, ctx)
	case *ast.WhileStmt:
		return e.execWhile(n, ctx)
	case *ast.ForStmt:
		return e.execFor(n, ctx)
	case *ast.ReturnStmt:
		return e.execReturn(n, ctx)
	case *ast.EchoStmt:
		v, err := e.evalExpr(n.Value, ctx)
		if err != nil {
			return err
		}
		if e.echo {
			_, _ = e.out.Write([]byte(v.String() + "\n"))
		}
		return nil
	case *ast.ResetStmt:
		return e.execReset(n, ctx)
	case *ast.MeasureStmt:
		_, err := e.doMeasure(n.Target, n.Position, ctx)
		return err
	case *ast.DestroyStmt:
		return e.execDestroy(n, ctx)
	case *ast.ExprStmt:
		_, err := e.evalExpr(n.Expr, ctx)
		return err
	case *ast.VarDeclStmt:
		return e.execVarDecl(n, ctx)
	case *ast.AssignStmt:
		return e.execAssign(n, ctx)
	default:
		return errors.Runtimef(errors.Position{}, "unsupported statement")
	}
}

func (e *Evaluator) execIf(n *ast.IfStmt, ctx *execContext) error {
	cond, err := e.evalExpr(n.Cond, ctx)
	if err != nil {
		return err
	}
	if truthy(cond) {
		return e.execBlock(n.Then, ctx)
	}
	if n.Else != nil {
		return e.execBlock(n.Else, ctx)
	}
	return nil
}

func (e *Evaluator) execWhile(n *ast.WhileStmt, ctx *execContext) error {
	for {
		cond, err := e.evalExpr(n.Cond, ctx)
		if err != nil {
			return err
		}
		if !truthy(cond) {
			return nil
		}
		if err := e.execBlock(n.Body, ctx); err != nil {
			return err
		}
		if ctx.returning {
			return nil
		}
	}
}

func (e *Evaluator) execFor(n *ast.ForStmt, ctx *execContext) error {
	inner := &execContext{env: NewEnclosedEnvironment(ctx.env), this: ctx.this, currentClass: ctx.currentClass}
	if n.Init != nil {
		if err := e.execStmt(n.Init, inner); err != nil {
			return err
		}
	}
	for {
		if n.Cond != nil {
			cond, err := e.evalExpr(n.Cond, inner)
			if err != nil {
				return err
			}
			if !truthy(cond) {
				break
			}
		}
		if err := e.execBlock(n.Body, inner); err != nil {
			return err
		}
		if inner.returning {
			ctx.returning = true
			ctx.returnValue = inner.returnValue
			return nil
		}
		if n.Post != nil {
			if err := e.execStmt(n.Post, inner); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Evaluator) execReturn(n *ast.ReturnStmt, ctx *execContext) error {
	if n.Value == nil {
		ctx.returning = true
		ctx.returnValue = VoidValue{}
		return nil
	}
	v, err := e.evalExpr(n.Value, ctx)
	if err != nil {
		return err
	}
	ctx.returning = true
	ctx.returnValue = v
	return nil
}

func (e *Evaluator) execReset(n *ast.ResetStmt, ctx *execContext) error {
	v, err := e.evalExpr(n.Target, ctx)
	if err != nil {
		return err
	}
	q, ok := v.(QubitValue)
	if !ok {
		return errors.Runtimef(pos(n.Position), "reset requires a qubit value")
	}
	if err := e.sim.Reset(int(q)); err != nil {
		return err
	}
	delete(e.lastMeasured, q)
	return nil
}

func (e *Evaluator) doMeasure(target ast.Expr, at ast.Position, ctx *execContext) (Value, error) {
	v, err := e.evalExpr(target, ctx)
	if err != nil {
		return nil, err
	}
	q, ok := v.(QubitValue)
	if !ok {
		return nil, errors.Runtimef(pos(at), "measure requires a qubit value")
	}
	bit, err := e.sim.Measure(int(q), int(q))
	if err != nil {
		return nil, err
	}
	e.lastMeasured[q] = bit
	return BitValue(bit), nil
}

func (e *Evaluator) execDestroy(n *ast.DestroyStmt, ctx *execContext) error {
	v, err := e.evalExpr(n.Target, ctx)
	if err != nil {
		return err
	}
	ref, ok := v.(ObjectRef)
	if !ok || ref.Obj == nil {
		return e.assignTo(n.Target, NullValue{}, ctx)
	}
	if err := e.destroyObject(ref.Obj, ctx); err != nil {
		return err
	}
	return e.assignTo(n.Target, NullValue{}, ctx)
}

func (e *Evaluator) execVarDecl(n *ast.VarDeclStmt, ctx *execContext) error {
	var v Value
	if n.Init != nil {
		val, err := e.evalExpr(n.Init, ctx)
		if err != nil {
			return err
		}
		v = val
	} else {
		t, err := e.reg.ResolveType(n.Type, nil)
		if err != nil {
			return err
		}
		v, err = e.zeroValueForNode(n.Type, t, ctx)
		if err != nil {
			return err
		}
	}
	ctx.env.Define(n.Name, v)
	if n.IsTracked {
		ctx.trackedNames = append(ctx.trackedNames, n.Name)
	}
	return nil
}

func (e *Evaluator) execAssign(n *ast.AssignStmt, ctx *execContext) error {
	v, err := e.evalExpr(n.Value, ctx)
	if err != nil {
		return err
	}
	return e.assignTo(n.Target, v, ctx)
}

func (e *Evaluator) assignTo(target ast.Expr, v Value, ctx *execContext) error {
	switch t := target.(type) {
	case *ast.Ident:
		if ctx.env.Set(t.Name, v) {
			return nil
		}
		return errors.Runtimef(pos(t.Position), "undefined variable '%s'", t.Name)
	case *ast.MemberExpr:
		return e.assignMember(t, v, ctx)
	case *ast.IndexExpr:
		return e.assignIndex(t, v, ctx)
	default:
		return errors.Runtimef(pos(target.Pos()), "invalid assignment target")
	}
}

func (e *Evaluator) assignMember(t *ast.MemberExpr, v Value, ctx *execContext) error {
	if id, ok := t.Receiver.(*ast.Ident); ok {
		if rc := e.classes.Get(id.Name); rc != nil {
			if _, ok := ctx.env.Get(id.Name); !ok {
				rc.StaticFields[t.Name] = v
				return nil
			}
		}
	}
	rv, err := e.evalExpr(t.Receiver, ctx)
	if err != nil {
		return err
	}
	ref, ok := rv.(ObjectRef)
	if !ok || ref.Obj == nil {
		return errors.Runtimef(pos(t.Position), "cannot assign field '%s' on a null reference", t.Name)
	}
	fi, _ := e.reg.LookupField(ref.Obj.Class.Name, t.Name)
	if fi == nil {
		return errors.Runtimef(pos(t.Position), "no such field '%s'", t.Name)
	}
	ref.Obj.SetField(fi.Offset, v)
	return nil
}

func (e *Evaluator) assignIndex(t *ast.IndexExpr, v Value, ctx *execContext) error {
	rv, err := e.evalExpr(t.Receiver, ctx)
	if err != nil {
		return err
	}
	arr, ok := rv.(*ArrayValue)
	if !ok {
		return errors.Runtimef(pos(t.Position), "index assignment requires an array")
	}
	iv, err := e.evalExpr(t.Index, ctx)
	if err != nil {
		return err
	}
	idx := asInt(iv)
	if idx < 0 || idx >= len(arr.Items) {
		return errors.Runtimef(pos(t.Position), "array index %d out of range [0,%d)", idx, len(arr.Items))
	}
	arr.Items[idx] = v
	return nil
}

func truthy(v Value) bool {
	switch t := v.(type) {
	case BoolValue:
		return bool(t)
	case BitValue:
		return t != 0
	default:
		return false
	}
}

func asInt(v Value) int {
	switch t := v.(type) {
	case IntValue:
		return int(t)
	case LongValue:
		return int(t)
	default:
		return 0
	}
}

func pos(p ast.Position) errors.Position {
	return errors.Position{Line: p.Line, Column: p.Column}
}
