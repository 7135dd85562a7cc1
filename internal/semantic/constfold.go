package semantic

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
)

// constInt attempts to fold e to a compile-time constant int, per spec
// §4.2's "array size expressions must be compile-time const-int (literals,
// final int variables, constant sub-expressions)". scope may be nil, in
// which case identifier references never fold (used when checking field
// declarations, which have no enclosing local scope).
func (a *Analyzer) constInt(e ast.Expr, scope *Scope) (int64, bool) {
	switch n := e.(type) {
	case *ast.IntLit:
		return n.Value, true
	case *ast.ParenExpr:
		return a.constInt(n.Inner, scope)
	case *ast.Ident:
		if scope == nil {
			return 0, false
		}
		sym, ok := scope.lookup(n.Name)
		if !ok || sym.ConstInt == nil {
			return 0, false
		}
		return *sym.ConstInt, true
	case *ast.UnaryExpr:
		if n.Op != "-" {
			return 0, false
		}
		v, ok := a.constInt(n.Operand, scope)
		if !ok {
			return 0, false
		}
		return -v, true
	case *ast.BinaryExpr:
		l, ok := a.constInt(n.Left, scope)
		if !ok {
			return 0, false
		}
		r, ok := a.constInt(n.Right, scope)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case "+":
			return l + r, true
		case "-":
			return l - r, true
		case "*":
			return l * r, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

// checkArraySize validates every fixed-size array dimension reachable from
// node folds to a non-negative compile-time constant int.
func (a *Analyzer) checkArraySize(node ast.TypeNode, scope *Scope) error {
	arr, ok := node.(*ast.ArrayTypeNode)
	if !ok {
		return nil
	}
	if arr.Size != nil {
		v, ok := a.constInt(arr.Size, scope)
		if !ok {
			return errors.Semanticf(pos(arr.Size.Pos()), "array size must be a compile-time constant int")
		}
		if v < 0 {
			return errors.Semanticf(pos(arr.Size.Pos()), "array size must be non-negative, got %d", v)
		}
	}
	return a.checkArraySize(arr.Elem, scope)
}
