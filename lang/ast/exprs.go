package ast

import "github.com/mna/yala/lang/token"

// IntLit is a decimal, unsigned integer literal (§6.1); unary minus is a
// separate expression.
type IntLit struct {
	Pos   token.Pos
	Value int64
}

func (IntLit) expr()                            {}
func (n *IntLit) Span() (token.Pos, token.Pos)  { return n.Pos, n.Pos }
func (n *IntLit) Walk(Visitor)                  {}

// StringLit is a single- or double-quoted string literal.
type StringLit struct {
	Pos   token.Pos
	Value string
}

func (StringLit) expr()                           {}
func (n *StringLit) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *StringLit) Walk(Visitor)                 {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Pos   token.Pos
	Value bool
}

func (BoolLit) expr()                           {}
func (n *BoolLit) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *BoolLit) Walk(Visitor)                 {}

// IdentExpr is an identifier used in expression position.
type IdentExpr struct {
	Name *Ident
}

func (IdentExpr) expr()                            {}
func (n *IdentExpr) Span() (token.Pos, token.Pos) { return n.Name.Span() }
func (n *IdentExpr) Walk(v Visitor)               { Walk(v, n.Name) }

// IndexExpr is `base[i0, i1, ...]`. The chained `base[i0][i1]...` form is
// parsed as nested IndexExpr nodes, one per bracket group, each with the
// previous one as its Base (§8: the two forms are equivalent).
type IndexExpr struct {
	Base    Expr
	Indices []Expr
	RBrack  token.Pos
}

func (IndexExpr) expr()                             {}
func (n *IndexExpr) Span() (token.Pos, token.Pos)  { s, _ := n.Base.Span(); return s, n.RBrack }
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Base)
	for _, idx := range n.Indices {
		Walk(v, idx)
	}
}

// BinaryExpr is a binary operator application: arithmetic, relational,
// equality, or `and`/`or` (§4.3.1).
type BinaryExpr struct {
	Op          token.Token
	Left, Right Expr
	OpPos       token.Pos
}

func (BinaryExpr) expr()                            {}
func (n *BinaryExpr) Span() (token.Pos, token.Pos) { s, _ := n.Left.Span(); _, e := n.Right.Span(); return s, e }
func (n *BinaryExpr) Walk(v Visitor)               { Walk(v, n.Left); Walk(v, n.Right) }

// UnaryExpr is unary `-` or `!` (§4.3.1).
type UnaryExpr struct {
	Op      token.Token
	Operand Expr
	OpPos   token.Pos
}

func (UnaryExpr) expr()                            {}
func (n *UnaryExpr) Span() (token.Pos, token.Pos) { _, e := n.Operand.Span(); return n.OpPos, e }
func (n *UnaryExpr) Walk(v Visitor)               { Walk(v, n.Operand) }

// CondExpr is the `if ... then ... elsif ... else ... end` form used as an
// expression (§4.3.1): parallel Conds/Thens arms plus a mandatory trailing
// Else.
type CondExpr struct {
	Pos   token.Pos
	Conds []Expr
	Thens []Expr
	Else  Expr
}

func (CondExpr) expr()                            {}
func (n *CondExpr) Span() (token.Pos, token.Pos) { _, e := n.Else.Span(); return n.Pos, e }
func (n *CondExpr) Walk(v Visitor) {
	for i := range n.Conds {
		Walk(v, n.Conds[i])
		Walk(v, n.Thens[i])
	}
	Walk(v, n.Else)
}

// CallExpr is a procedure or function call, used in both statement and
// expression position (§4.3.7).
type CallExpr struct {
	Callee *Ident
	Args   []Expr
	RParen token.Pos
}

func (CallExpr) expr()                             {}
func (n *CallExpr) Span() (token.Pos, token.Pos)  { s, _ := n.Callee.Span(); return s, n.RParen }
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

// VectorLit is a bracketed vector literal `[e0, e1, ...]`, possibly nested
// for multi-dimensional vectors (§8 scenario 6).
type VectorLit struct {
	Pos    token.Pos
	Elems  []Expr
	RBrack token.Pos
}

func (VectorLit) expr()                            {}
func (n *VectorLit) Span() (token.Pos, token.Pos) { return n.Pos, n.RBrack }
func (n *VectorLit) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
