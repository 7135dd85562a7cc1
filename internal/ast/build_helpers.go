package ast

// These helpers construct AST fragments directly. They stand in for the
// (out-of-scope) parser: tests and the example programs under cmd/bloch
// build trees with them instead of parsing source text.

// P is a terse Position constructor for test fixtures.
func P(line, col int) Position { return Position{Line: line, Column: col} }

// Prim builds a primitive type node.
func Prim(name string) TypeNode { return &PrimitiveTypeNode{Name: name} }

// Void builds the void type node.
func Void() TypeNode { return &VoidTypeNode{} }

// Named builds a named (class) type node, optionally generic.
func Named(name string, args ...TypeNode) TypeNode {
	return &NamedTypeNode{Name: name, TypeArgs: args}
}

// ArrayOf builds a fixed-size array type node.
func ArrayOf(elem TypeNode, size Expr) TypeNode {
	return &ArrayTypeNode{Elem: elem, Size: size}
}

// Block builds a block statement from a statement list.
func Block(stmts ...Stmt) *BlockStmt {
	return &BlockStmt{Stmts: stmts}
}

// Id builds an identifier reference expression.
func Id(name string) Expr { return &Ident{Name: name} }

// IntV builds an int literal.
func IntV(v int64) Expr { return &IntLit{Value: v} }

// Call builds a free-function or gate call.
func Call(callee Expr, args ...Expr) Expr {
	return &CallExpr{Callee: callee, Args: args}
}

// Member builds a field/member access expression.
func Member(recv Expr, name string) Expr {
	return &MemberExpr{Receiver: recv, Name: name}
}

// MethodCall builds obj.Method(args...).
func MethodCall(recv Expr, method string, args ...Expr) Expr {
	return Call(Member(recv, method), args...)
}

// New builds object construction.
func New(className string, args ...Expr) Expr {
	return &NewExpr{ClassName: className, Args: args}
}

// Assign builds an assignment statement.
func Assign(target, value Expr) Stmt {
	return &AssignStmt{Target: target, Value: value}
}

// VarDecl builds a local variable declaration.
func VarDecl(name string, t TypeNode, init Expr) Stmt {
	return &VarDeclStmt{Name: name, Type: t, Init: init}
}

// TrackedVarDecl builds a @tracked local variable declaration.
func TrackedVarDecl(name string, t TypeNode, init Expr) Stmt {
	return &VarDeclStmt{Name: name, Type: t, Init: init, IsTracked: true}
}

// Return builds a return statement.
func Return(v Expr) Stmt { return &ReturnStmt{Value: v} }

// Echo builds an echo statement.
func Echo(v Expr) Stmt { return &EchoStmt{Value: v} }

// Field builds a field declaration.
func Field(name string, t TypeNode, vis Visibility, final bool, init Expr) *FieldDecl {
	return &FieldDecl{Name: name, Type: t, Visibility: vis, IsFinal: final, Init: init}
}

// Method builds a method declaration.
func Method(name string, params []*Param, ret TypeNode, virtual, override bool, body *BlockStmt) *MethodDecl {
	return &MethodDecl{
		Name: name, Params: params, ReturnType: ret,
		IsVirtual: virtual, IsOverride: override, Body: body,
	}
}

// Ctor builds a constructor declaration.
func Ctor(params []*Param, body *BlockStmt) *ConstructorDecl {
	return &ConstructorDecl{Params: params, Body: body}
}

// P1 builds a single parameter.
func P1(name string, t TypeNode) *Param { return &Param{Name: name, Type: t} }

// Func builds a free function declaration, including main.
func Func(name string, params []*Param, ret TypeNode, body *BlockStmt, annos ...Annotation) *FunctionDecl {
	return &FunctionDecl{Name: name, Params: params, ReturnType: ret, Body: body, Annotations: annos}
}

// Quantum builds the @quantum annotation.
func Quantum() Annotation { return Annotation{Name: "quantum"} }

// Shots builds the @shots(n) annotation.
func Shots(n int) Annotation { return Annotation{Name: "shots", IntArg: n, HasArg: true} }

// Tracked builds the @tracked annotation.
func Tracked() Annotation { return Annotation{Name: "tracked"} }

// Class builds a class declaration.
func Class(name, base string, fields []*FieldDecl, ctors []*ConstructorDecl, dtor *DestructorDecl, methods []*MethodDecl) *ClassDecl {
	return &ClassDecl{Name: name, BaseName: base, Fields: fields, Constructors: ctors, Destructor: dtor, Methods: methods}
}

// Prog builds a program from its classes and functions.
func Prog(classes []*ClassDecl, funcs []*FunctionDecl) *Program {
	return &Program{Classes: classes, Functions: funcs}
}

// Arr builds a fixed-size array literal target type for declarations that
// need an explicit element count (e.g. qubit[4]).
func Arr(elem TypeNode, size int) TypeNode {
	return &ArrayTypeNode{Elem: elem, Size: &IntLit{Value: int64(size)}}
}
