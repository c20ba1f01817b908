// Package ast defines the abstract syntax tree produced by the parser and
// consumed by the compiler (§6.2). Statement sequences are represented as
// slices rather than a `next` sibling chain: the idiomatic Go rendering of
// the same ordered-sequence contract the distilled specification describes.
package ast

import "github.com/mna/yala/lang/token"

// Node is implemented by every AST node.
type Node interface {
	// Span reports the node's start and end source position.
	Span() (start, end token.Pos)

	// Walk visits the node's children, in order, with v.
	Walk(v Visitor)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// TypeExpr is implemented by every type-denoting node (§6.1's
// `vector[N] of T` and the scalar type keywords).
type TypeExpr interface {
	Node
	typeExpr()
}

// StmtList is a `STAT_LIST` production: an ordered sequence of statements
// opening its own lexical scope (§4.3.2).
type StmtList struct {
	Start, End token.Pos
	Stmts      []Stmt
}

func (n *StmtList) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *StmtList) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// Ident is a bare identifier reference, used for names that are not
// themselves expressions (parameter names, declared variable names,
// module names).
type Ident struct {
	Name string
	Pos  token.Pos
}

func (n *Ident) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *Ident) Walk(Visitor)                 {}
