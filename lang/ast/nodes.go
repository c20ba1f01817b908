package ast

import "github.com/mna/yala/lang/token"

// ScalarType is one of `integer`, `boolean`, `string` (§6.1).
type ScalarType struct {
	Kind token.Token // INTEGER, BOOLEAN or STRING_KW
	Pos  token.Pos
}

func (ScalarType) typeExpr()                       {}
func (n *ScalarType) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ScalarType) Walk(Visitor)                 {}

// VectorType is `vector[N] of T` (§6.1), nestable for multi-dimensional
// vectors.
type VectorType struct {
	Pos  token.Pos
	Size int // N, a positive compile-time constant
	Elem TypeExpr
}

func (VectorType) typeExpr()                       {}
func (n *VectorType) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *VectorType) Walk(v Visitor)               { Walk(v, n.Elem) }

// ModuleKind discriminates program/procedure/function declarations.
type ModuleKind uint8

const (
	ModuleProgram ModuleKind = iota
	ModuleProcedure
	ModuleFunction
)

// ParamDecl is one formal parameter of a procedure or function declaration
// (§4.3.5 step 4): a name, an optional passing-mode modifier, and a type.
type ParamDecl struct {
	Name     *Ident
	Modifier token.Token // 0 (in), INOUT, or OUT
	Type     TypeExpr
}

func (n *ParamDecl) Span() (token.Pos, token.Pos) { return n.Name.Span() }
func (n *ParamDecl) Walk(v Visitor)               { Walk(v, n.Name); Walk(v, n.Type) }

// VarDecl declares a list of identifiers sharing one type (§4.3.2), with an
// optional initializer (§8 scenario 6) applied to each declared name in
// place of its default zero value.
type VarDecl struct {
	Pos   token.Pos
	Names []*Ident
	Type  TypeExpr
	Init  Expr // nil if absent
}

func (VarDecl) stmt()                           {}
func (n *VarDecl) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *VarDecl) Walk(v Visitor) {
	for _, id := range n.Names {
		Walk(v, id)
	}
	Walk(v, n.Type)
	if n.Init != nil {
		Walk(v, n.Init)
	}
}

// ModuleDecl is a program, procedure, or function declaration (§4.3.5): a
// name, a parameter list, an optional return type (function only), a list
// of local variable declarations, a list of inner module declarations, and
// a body.
type ModuleDecl struct {
	Pos        token.Pos
	Kind       ModuleKind
	Name       *Ident
	Params     []*ParamDecl
	ReturnType TypeExpr // nil for procedure/program
	VarDecls   []*VarDecl
	Inner      []*ModuleDecl
	Body       *StmtList // procedure/program body
	ExprBody   Expr      // function body: a single expression, implicitly returned
	EndName    *Ident    // name repeated after `end`, for error messages
}

func (n *ModuleDecl) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ModuleDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.ReturnType != nil {
		Walk(v, n.ReturnType)
	}
	for _, vd := range n.VarDecls {
		Walk(v, vd)
	}
	for _, in := range n.Inner {
		Walk(v, in)
	}
	if n.Body != nil {
		Walk(v, n.Body)
	}
	if n.ExprBody != nil {
		Walk(v, n.ExprBody)
	}
}
