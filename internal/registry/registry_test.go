package registry

import (
	"testing"

	"github.com/bloch-labs/bloch/internal/ast"
	"github.com/bloch-labs/bloch/internal/types"
)

func TestBuildInjectsImplicitObjectRoot(t *testing.T) {
	classA := ast.Class("A", "", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)

	reg, errs := Build([]*ast.ClassDecl{classA})
	if len(errs) != 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	if _, ok := reg.Classes[ObjectClassName]; !ok {
		t.Fatalf("expected an implicit Object class")
	}
	if reg.Classes["A"].BaseName != ObjectClassName {
		t.Errorf("BaseName = %q, want %q", reg.Classes["A"].BaseName, ObjectClassName)
	}
}

func TestBuildDetectsDuplicateClass(t *testing.T) {
	classA1 := ast.Class("A", "", nil, []*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)
	classA2 := ast.Class("A", "", nil, []*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)

	_, errs := Build([]*ast.ClassDecl{classA1, classA2})
	if len(errs) == 0 {
		t.Fatalf("expected a duplicate-class error")
	}
}

func TestBuildDetectsUnknownBase(t *testing.T) {
	classA := ast.Class("A", "Ghost", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)

	_, errs := Build([]*ast.ClassDecl{classA})
	if len(errs) == 0 {
		t.Fatalf("expected an unknown-base error")
	}
}

func TestBuildDetectsInheritanceCycle(t *testing.T) {
	classA := ast.Class("A", "B", nil, []*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)
	classB := ast.Class("B", "A", nil, []*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)

	_, errs := Build([]*ast.ClassDecl{classA, classB})
	if len(errs) == 0 {
		t.Fatalf("expected a cycle error")
	}
}

func TestAllFieldsOrdersBaseBeforeDerived(t *testing.T) {
	classA := ast.Class("A", "",
		[]*ast.FieldDecl{ast.Field("x", ast.Prim("int"), ast.Public, false, nil)},
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)
	classB := ast.Class("B", "A",
		[]*ast.FieldDecl{ast.Field("y", ast.Prim("int"), ast.Public, false, nil)},
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)

	reg, errs := Build([]*ast.ClassDecl{classA, classB})
	if len(errs) != 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	fields := reg.AllFields("B")
	if len(fields) != 2 {
		t.Fatalf("AllFields(B) has %d fields, want 2", len(fields))
	}
	if fields[0].Name != "x" || fields[1].Name != "y" {
		t.Errorf("AllFields(B) = [%s, %s], want [x, y]", fields[0].Name, fields[1].Name)
	}
	if fields[0].Offset != 0 || fields[1].Offset != 1 {
		t.Errorf("offsets = [%d, %d], want [0, 1]", fields[0].Offset, fields[1].Offset)
	}
}

func TestLookupMethodsStopsAtFirstDeclaringClass(t *testing.T) {
	classA := ast.Class("A", "", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil,
		[]*ast.MethodDecl{ast.Method("f", nil, ast.Prim("int"), true, false, ast.Block(ast.Return(ast.IntV(1))))})
	classB := ast.Class("B", "A", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil,
		[]*ast.MethodDecl{ast.Method("f", nil, ast.Prim("int"), false, true, ast.Block(ast.Return(ast.IntV(2))))})

	reg, errs := Build([]*ast.ClassDecl{classA, classB})
	if len(errs) != 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	ms := reg.LookupMethods("B", "f")
	if len(ms) != 1 {
		t.Fatalf("LookupMethods(B, f) returned %d methods, want 1", len(ms))
	}
	if ms[0].OwnerClass != "B" {
		t.Errorf("OwnerClass = %q, want B", ms[0].OwnerClass)
	}
}

func TestLookupMethodsFindsInheritedWhenNotOverridden(t *testing.T) {
	classA := ast.Class("A", "", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil,
		[]*ast.MethodDecl{ast.Method("f", nil, ast.Prim("int"), true, false, ast.Block(ast.Return(ast.IntV(1))))})
	classB := ast.Class("B", "A", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)

	reg, errs := Build([]*ast.ClassDecl{classA, classB})
	if len(errs) != 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	ms := reg.LookupMethods("B", "f")
	if len(ms) != 1 || ms[0].OwnerClass != "A" {
		t.Fatalf("LookupMethods(B, f) should fall through to A's method")
	}
}

func TestIsDescendantOfAndDistance(t *testing.T) {
	classA := ast.Class("A", "", nil, []*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)
	classB := ast.Class("B", "A", nil, []*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil, nil)

	reg, errs := Build([]*ast.ClassDecl{classA, classB})
	if len(errs) != 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	if !reg.IsDescendantOf("B", "A") {
		t.Errorf("B should be a descendant of A")
	}
	if reg.IsDescendantOf("A", "B") {
		t.Errorf("A should not be a descendant of B")
	}
	if d := reg.Distance("B", "A"); d != 1 {
		t.Errorf("Distance(B, A) = %d, want 1", d)
	}
	if d := reg.Distance("B", "B"); d != 0 {
		t.Errorf("Distance(B, B) = %d, want 0", d)
	}
}

func TestResolveOverloadPicksMinimumCost(t *testing.T) {
	narrow := &MethodInfo{Name: "f", Params: []types.TypeInfo{types.IntType()}}
	wide := &MethodInfo{Name: "f", Params: []types.TypeInfo{types.LongType()}}

	cand, err := ResolveOverload("f", MethodCandidates([]*MethodInfo{narrow, wide}),
		[]types.TypeInfo{types.IntType()}, nil)
	if err != nil {
		t.Fatalf("ResolveOverload returned error: %v", err)
	}
	if cand.Method != narrow {
		t.Errorf("expected the exact-match (int) overload to win over the widening (long) one")
	}
}

func TestResolveOverloadDetectsAmbiguity(t *testing.T) {
	f1 := &MethodInfo{Name: "f", Params: []types.TypeInfo{types.IntType(), types.LongType()}}
	f2 := &MethodInfo{Name: "f", Params: []types.TypeInfo{types.LongType(), types.IntType()}}

	_, err := ResolveOverload("f", MethodCandidates([]*MethodInfo{f1, f2}),
		[]types.TypeInfo{types.IntType(), types.IntType()}, nil)
	if err == nil {
		t.Fatalf("expected an ambiguity error")
	}
	if _, ok := err.(*ErrAmbiguous); !ok {
		t.Errorf("error = %T, want *ErrAmbiguous", err)
	}
}

func TestResolveOverloadNoMatch(t *testing.T) {
	f1 := &MethodInfo{Name: "f", Params: []types.TypeInfo{types.StringType()}}

	_, err := ResolveOverload("f", MethodCandidates([]*MethodInfo{f1}),
		[]types.TypeInfo{types.IntType()}, nil)
	if err == nil {
		t.Fatalf("expected a no-match error")
	}
	if _, ok := err.(*ErrNoMatch); !ok {
		t.Errorf("error = %T, want *ErrNoMatch", err)
	}
}

func TestVSlotCountAccountsForOverride(t *testing.T) {
	classA := ast.Class("A", "", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil,
		[]*ast.MethodDecl{ast.Method("f", nil, ast.Prim("int"), true, false, ast.Block(ast.Return(ast.IntV(1))))})
	classB := ast.Class("B", "A", nil,
		[]*ast.ConstructorDecl{ast.Ctor(nil, ast.Block())}, nil,
		[]*ast.MethodDecl{ast.Method("f", nil, ast.Prim("int"), false, true, ast.Block(ast.Return(ast.IntV(2))))})

	reg, errs := Build([]*ast.ClassDecl{classA, classB})
	if len(errs) != 0 {
		t.Fatalf("Build returned errors: %v", errs)
	}
	if reg.VSlotCount("B") != 1 {
		t.Errorf("VSlotCount(B) = %d, want 1 (override reuses the base slot)", reg.VSlotCount("B"))
	}
}
