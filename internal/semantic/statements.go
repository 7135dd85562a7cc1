package semantic

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/types"
)

// checkBlock opens a nested scope and checks every statement in it. topLevel
// is true only for the direct body of a constructor, where final-field
// assignment is counted toward the one-assignment-per-field rule.
func (a *Analyzer) checkBlock(b *ast.BlockStmt, parent *Scope, ctx *funcCtx, topLevel bool) error {
	inner := newScope(parent)
	for _, s := range b.Stmts {
		if err := a.checkStmt(s, inner, ctx, topLevel); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStmt(s ast.Stmt, scope *Scope, ctx *funcCtx, topLevel bool) error {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return a.checkBlock(n, scope, ctx, false)
	case *ast.IfStmt:
		return a.checkIf(n, scope, ctx)
	case *ast.WhileStmt:
		return a.checkWhile(n, scope, ctx)
	case *ast.ForStmt:
		return a.checkFor(n, scope, ctx)
	case *ast.ReturnStmt:
		return a.checkReturn(n, scope, ctx)
	case *ast.EchoStmt:
		_, err := a.typeOf(n.Value, scope, ctx)
		return err
	case *ast.ResetStmt:
		return a.checkQubitTarget(n.Target, n.Position, scope, ctx)
	case *ast.MeasureStmt:
		_, err := a.typeOfMeasure(n.Target, n.Position, scope, ctx)
		return err
	case *ast.DestroyStmt:
		t, err := a.typeOf(n.Target, scope, ctx)
		if err != nil {
			return err
		}
		if !t.IsClass() {
			return errors.Semanticf(pos(n.Position), "destroy requires an object reference, got '%s'", t.String())
		}
		return nil
	case *ast.ExprStmt:
		_, err := a.typeOf(n.Expr, scope, ctx)
		return err
	case *ast.VarDeclStmt:
		return a.checkVarDecl(n, scope, ctx)
	case *ast.AssignStmt:
		return a.checkAssign(n, scope, ctx, topLevel)
	default:
		return errors.Semanticf(errors.Position{}, "unsupported statement node")
	}
}

func (a *Analyzer) checkCondition(cond ast.Expr, scope *Scope, ctx *funcCtx) error {
	t, err := a.typeOf(cond, scope, ctx)
	if err != nil {
		return err
	}
	if t.Primitive != types.Boolean && t.Primitive != types.Bit {
		return errors.Semanticf(pos(cond.Pos()), "condition must be boolean or bit, got '%s'", t.String())
	}
	return nil
}

func (a *Analyzer) checkIf(n *ast.IfStmt, scope *Scope, ctx *funcCtx) error {
	if err := a.checkCondition(n.Cond, scope, ctx); err != nil {
		return err
	}
	thenReturns, elseReturns := false, false
	if err := a.checkBlock(n.Then, scope, ctx, false); err != nil {
		return err
	}
	thenReturns = ctx.sawReturn
	ctx.sawReturn = false
	if n.Else != nil {
		if err := a.checkBlock(n.Else, scope, ctx, false); err != nil {
			return err
		}
		elseReturns = ctx.sawReturn
	}
	ctx.sawReturn = thenReturns && elseReturns
	return nil
}

func (a *Analyzer) checkWhile(n *ast.WhileStmt, scope *Scope, ctx *funcCtx) error {
	if err := a.checkCondition(n.Cond, scope, ctx); err != nil {
		return err
	}
	saved := ctx.sawReturn
	if err := a.checkBlock(n.Body, scope, ctx, false); err != nil {
		return err
	}
	ctx.sawReturn = saved // a loop body's return is not guaranteed to execute
	return nil
}

func (a *Analyzer) checkFor(n *ast.ForStmt, scope *Scope, ctx *funcCtx) error {
	inner := newScope(scope)
	if n.Init != nil {
		if err := a.checkStmt(n.Init, inner, ctx, false); err != nil {
			return err
		}
	}
	if n.Cond != nil {
		if err := a.checkCondition(n.Cond, inner, ctx); err != nil {
			return err
		}
	}
	if n.Post != nil {
		if err := a.checkStmt(n.Post, inner, ctx, false); err != nil {
			return err
		}
	}
	saved := ctx.sawReturn
	if err := a.checkBlock(n.Body, inner, ctx, false); err != nil {
		return err
	}
	ctx.sawReturn = saved
	return nil
}

func (a *Analyzer) checkReturn(n *ast.ReturnStmt, scope *Scope, ctx *funcCtx) error {
	if n.Value == nil {
		if ctx.returnType.Primitive != types.Void {
			return errors.Semanticf(pos(n.Position), "missing return value, expected '%s'", ctx.returnType.String())
		}
		ctx.sawReturn = true
		return nil
	}
	t, err := a.typeOf(n.Value, scope, ctx)
	if err != nil {
		return err
	}
	if ctx.returnType.Primitive == types.Void {
		return errors.Semanticf(pos(n.Position), "void function cannot return a value")
	}
	if !types.Assignable(a.reg, ctx.returnType, t) {
		return errors.Semanticf(pos(n.Position), "cannot return '%s' where '%s' is expected", t.String(), ctx.returnType.String())
	}
	ctx.sawReturn = true
	return nil
}

func (a *Analyzer) checkQubitTarget(target ast.Expr, at ast.Position, scope *Scope, ctx *funcCtx) error {
	t, err := a.typeOf(target, scope, ctx)
	if err != nil {
		return err
	}
	if t.Primitive != types.Qubit {
		return errors.Semanticf(pos(at), "reset requires a qubit operand, got '%s'", t.String())
	}
	return nil
}

func (a *Analyzer) checkVarDecl(n *ast.VarDeclStmt, scope *Scope, ctx *funcCtx) error {
	if scope.declareLocal(n.Name) {
		return errors.Semanticf(pos(n.Position), "'%s' is already declared in this scope", n.Name)
	}
	if err := a.checkArraySize(n.Type, scope); err != nil {
		return err
	}
	declared, err := a.reg.ResolveType(n.Type, nil)
	if err != nil {
		return err
	}
	sym := &Symbol{Type: declared, IsFinal: n.IsFinal}
	if n.Init != nil {
		it, err := a.typeOf(n.Init, scope, ctx)
		if err != nil {
			return err
		}
		if !types.Assignable(a.reg, declared, it) {
			return errors.Semanticf(pos(n.Position), "cannot initialize '%s' of type '%s' with value of type '%s'", n.Name, declared.String(), it.String())
		}
		if n.IsFinal && declared.Primitive == types.Int {
			if v, ok := a.constInt(n.Init, scope); ok {
				sym.ConstInt = &v
			}
		}
	} else if n.IsFinal {
		return errors.Semanticf(pos(n.Position), "final variable '%s' must be initialized", n.Name)
	}
	if n.IsTracked && declared.Primitive != types.Qubit && !(declared.IsArray() && declared.ElemType().Primitive == types.Qubit) {
		return errors.Semanticf(pos(n.Position), "'tracked' only applies to a qubit or qubit[] variable")
	}
	scope.declare(n.Name, sym)
	return nil
}

func (a *Analyzer) checkAssign(n *ast.AssignStmt, scope *Scope, ctx *funcCtx, topLevel bool) error {
	targetType, err := a.typeOf(n.Target, scope, ctx)
	if err != nil {
		return err
	}
	valType, err := a.typeOf(n.Value, scope, ctx)
	if err != nil {
		return err
	}
	if !types.Assignable(a.reg, targetType, valType) {
		return errors.Semanticf(pos(n.Position), "cannot assign value of type '%s' to target of type '%s'", valType.String(), targetType.String())
	}

	switch t := n.Target.(type) {
	case *ast.Ident:
		if sym, ok := scope.lookup(t.Name); ok && sym.IsFinal {
			return errors.Semanticf(pos(n.Position), "cannot modify final variable '%s'", t.Name)
		}
	case *ast.MemberExpr:
		if err := a.checkFieldAssign(t, ctx, topLevel, n.Position); err != nil {
			return err
		}
	case *ast.IndexExpr:
		// array element assignment carries no final restriction of its own.
	default:
		return errors.Semanticf(pos(n.Position), "invalid assignment target")
	}
	return nil
}

func (a *Analyzer) checkFieldAssign(t *ast.MemberExpr, ctx *funcCtx, topLevel bool, at ast.Position) error {
	_, isThis := t.Receiver.(*ast.ThisExpr)
	if !isThis || ctx.class == nil {
		return nil
	}
	fi, owner := a.reg.LookupField(ctx.class.Name, t.Name)
	if fi == nil || !fi.IsFinal {
		return nil
	}
	if !ctx.isConstructor {
		return errors.Semanticf(pos(at), "cannot modify final field '%s' outside its constructor", t.Name)
	}
	if owner != ctx.class.Name {
		return errors.Semanticf(pos(at), "cannot assign inherited final field '%s' from a derived constructor", t.Name)
	}
	if fi.Init != nil {
		return errors.Semanticf(pos(at), "final field '%s' already has a declaration initializer and may not be reassigned in a constructor", t.Name)
	}
	if !topLevel {
		return errors.Semanticf(pos(at), "final field '%s' may only be assigned as a top-level statement of the constructor", t.Name)
	}
	if ctx.finalAssignCounts == nil {
		ctx.finalAssignCounts = make(map[string]int)
	}
	ctx.finalAssignCounts[t.Name]++
	if ctx.finalAssignCounts[t.Name] > 1 {
		return errors.Semanticf(pos(at), "final field '%s' assigned more than once", t.Name)
	}
	return nil
}
