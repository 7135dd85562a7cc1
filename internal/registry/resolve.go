package registry

import (
	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/errors"
	"github.com/bloch-labs/bloch/internal/types"
)

var primitiveNames = map[string]types.Kind{
	"int": types.Int, "long": types.Long, "float": types.Float,
	"bit": types.Bit, "boolean": types.Boolean, "string": types.String,
	"char": types.Char, "qubit": types.Qubit,
}

// ResolveType resolves a syntax-level type node to a TypeInfo. typeParams,
// when non-nil, names the generic parameters visible at the resolution
// site (a class's own type parameters), so that a NamedTypeNode referring
// to one of them resolves to a type-parameter reference rather than an
// unknown class.
func (r *Registry) ResolveType(node ast.TypeNode, typeParams map[string]bool) (types.TypeInfo, error) {
	switch n := node.(type) {
	case nil:
		return types.VoidType(), nil
	case *ast.VoidTypeNode:
		return types.VoidType(), nil
	case *ast.PrimitiveTypeNode:
		k, ok := primitiveNames[n.Name]
		if !ok {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "unknown primitive type '%s'", n.Name)
		}
		return types.Of(k), nil
	case *ast.ArrayTypeNode:
		elem, err := r.ResolveType(n.Elem, typeParams)
		if err != nil {
			return types.UnknownType(), err
		}
		return types.ArrayOf(elem), nil
	case *ast.NamedTypeNode:
		if typeParams != nil && typeParams[n.Name] && len(n.TypeArgs) == 0 {
			return types.Param(n.Name), nil
		}
		ci, ok := r.Classes[n.Name]
		if !ok {
			return types.UnknownType(), errors.Semanticf(pos(n.Position), "unknown type '%s'", n.Name)
		}
		if len(n.TypeArgs) != len(ci.TypeParams) {
			return types.UnknownType(), errors.Semanticf(pos(n.Position),
				"class '%s' expects %d type argument(s), got %d", n.Name, len(ci.TypeParams), len(n.TypeArgs))
		}
		args := make([]types.TypeInfo, len(n.TypeArgs))
		for i, a := range n.TypeArgs {
			at, err := r.ResolveType(a, typeParams)
			if err != nil {
				return types.UnknownType(), err
			}
			args[i] = at
			if bound := ci.TypeParams[i].Bound; bound != nil {
				boundType, err := r.ResolveType(bound, nil)
				if err != nil {
					return types.UnknownType(), err
				}
				if !r.satisfiesBound(at, boundType) {
					return types.UnknownType(), errors.Semanticf(pos(n.Position),
						"type argument '%s' does not satisfy bound '%s' for parameter '%s' of class '%s'",
						at.String(), boundType.String(), ci.TypeParams[i].Name, n.Name)
				}
			}
		}
		return types.Class(n.Name, args...), nil
	default:
		return types.UnknownType(), errors.Semanticf(errors.Position{}, "unsupported type node")
	}
}

// satisfiesBound reports whether arg is the bound class itself or a
// (non-generic) subclass of it, per spec §4.1's generic-bound rule.
func (r *Registry) satisfiesBound(arg, bound types.TypeInfo) bool {
	if !bound.IsClass() {
		return types.Equal(arg, bound)
	}
	if !arg.IsClass() {
		return false
	}
	if arg.ClassName == bound.ClassName {
		return true
	}
	return r.IsDescendantOf(arg.ClassName, bound.ClassName)
}
