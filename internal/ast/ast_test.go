package ast

import "testing"

func TestPositionString(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"zero value means no location", Position{}, "?"},
		{"line and column", Position{Line: 3, Column: 7}, "3:7"},
		{"line one column one", Position{Line: 1, Column: 1}, "1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExprNodesCarryPosition(t *testing.T) {
	pos := Position{Line: 2, Column: 5}
	nodes := []Node{
		&IntLit{Value: 1, Position: pos},
		&LongLit{Value: 1, Position: pos},
		&FloatLit{Value: 1.0, Position: pos},
		&BitLit{Value: 1, Position: pos},
		&BoolLit{Value: true, Position: pos},
		&CharLit{Value: 'a', Position: pos},
		&StringLit{Value: "x", Position: pos},
		&NullLit{Position: pos},
		&ArrayLit{Position: pos},
		&Ident{Name: "x", Position: pos},
		&ThisExpr{Position: pos},
		&MemberExpr{Name: "f", Position: pos},
		&IndexExpr{Position: pos},
		&CallExpr{Position: pos},
		&SuperCallExpr{Position: pos},
		&NewExpr{ClassName: "C", Position: pos},
		&UnaryExpr{Op: "-", Position: pos},
		&BinaryExpr{Op: "+", Position: pos},
		&PostfixExpr{Op: "++", Position: pos},
		&CastExpr{Position: pos},
		&MeasureExpr{Position: pos},
		&ParenExpr{Position: pos},
		&TernaryExpr{Position: pos},
	}
	for _, n := range nodes {
		if n.Pos() != pos {
			t.Errorf("%T.Pos() = %v, want %v", n, n.Pos(), pos)
		}
	}
}

func TestStmtNodesCarryPosition(t *testing.T) {
	pos := Position{Line: 4, Column: 1}
	nodes := []Node{
		&BlockStmt{Position: pos},
		&IfStmt{Position: pos},
		&WhileStmt{Position: pos},
		&ForStmt{Position: pos},
		&ReturnStmt{Position: pos},
		&EchoStmt{Position: pos},
		&ResetStmt{Position: pos},
		&MeasureStmt{Position: pos},
		&DestroyStmt{Position: pos},
		&ExprStmt{Position: pos},
		&VarDeclStmt{Name: "x", Position: pos},
		&AssignStmt{Position: pos},
	}
	for _, n := range nodes {
		if n.Pos() != pos {
			t.Errorf("%T.Pos() = %v, want %v", n, n.Pos(), pos)
		}
	}
}

func TestTypeNodesCarryPosition(t *testing.T) {
	pos := Position{Line: 9, Column: 2}
	nodes := []Node{
		&PrimitiveTypeNode{Name: "int", Position: pos},
		&VoidTypeNode{Position: pos},
		&NamedTypeNode{Name: "C", Position: pos},
		&ArrayTypeNode{Position: pos},
	}
	for _, n := range nodes {
		if n.Pos() != pos {
			t.Errorf("%T.Pos() = %v, want %v", n, n.Pos(), pos)
		}
	}
}

func TestFunctionDeclHasAnnotation(t *testing.T) {
	fn := Func("main", nil, nil, Block(), Quantum(), Shots(8))

	if _, ok := fn.HasAnnotation("tracked"); ok {
		t.Errorf("HasAnnotation(tracked) = true, want false")
	}
	anno, ok := fn.HasAnnotation("shots")
	if !ok {
		t.Fatalf("HasAnnotation(shots) = false, want true")
	}
	if !anno.HasArg || anno.IntArg != 8 {
		t.Errorf("shots annotation = %+v, want IntArg=8 HasArg=true", anno)
	}
	if _, ok := fn.HasAnnotation("quantum"); !ok {
		t.Errorf("HasAnnotation(quantum) = false, want true")
	}
}

func TestProgramMain(t *testing.T) {
	prog := Prog(nil, nil)
	if prog.Main() != nil {
		t.Errorf("Main() on empty program = %v, want nil", prog.Main())
	}

	main := Func("main", nil, nil, Block())
	other := Func("helper", nil, nil, Block())
	prog = Prog(nil, []*FunctionDecl{other, main})
	if prog.Main() != main {
		t.Errorf("Main() = %v, want %v", prog.Main(), main)
	}
}

func TestArrBuildsSizedArrayType(t *testing.T) {
	at, ok := Arr(Prim("qubit"), 4).(*ArrayTypeNode)
	if !ok {
		t.Fatalf("Arr() did not return *ArrayTypeNode")
	}
	size, ok := at.Size.(*IntLit)
	if !ok || size.Value != 4 {
		t.Errorf("Arr() size = %v, want IntLit{4}", at.Size)
	}
}
