package ast

import "github.com/mna/yala/lang/token"

// AssignStmt is `lhs = rhs` (§4.3.2). Target is an IdentExpr or IndexExpr.
type AssignStmt struct {
	Pos    token.Pos
	Target Expr
	Value  Expr
}

func (AssignStmt) stmt()                            {}
func (n *AssignStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *AssignStmt) Walk(v Visitor)               { Walk(v, n.Target); Walk(v, n.Value) }

// IfStmt is an `if ... then ... elsif ... else ... end` chain, one Cond
// per arm paired with the matching Block, plus an optional Else (§4.3.2).
type IfStmt struct {
	Pos    token.Pos
	Conds  []Expr
	Blocks []*StmtList
	Else   *StmtList // nil if no else arm
}

func (IfStmt) stmt()                            {}
func (n *IfStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *IfStmt) Walk(v Visitor) {
	for i := range n.Conds {
		Walk(v, n.Conds[i])
		Walk(v, n.Blocks[i])
	}
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

// WhileStmt is `while cond do body end`.
type WhileStmt struct {
	Pos  token.Pos
	Cond Expr
	Body *StmtList
}

func (WhileStmt) stmt()                            {}
func (n *WhileStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *WhileStmt) Walk(v Visitor)               { Walk(v, n.Cond); Walk(v, n.Body) }

// RepeatStmt is `repeat body until cond`.
type RepeatStmt struct {
	Pos  token.Pos
	Body *StmtList
	Cond Expr
}

func (RepeatStmt) stmt()                            {}
func (n *RepeatStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *RepeatStmt) Walk(v Visitor)               { Walk(v, n.Body); Walk(v, n.Cond) }

// ForStmt is `for i := lo to hi do body end` (§4.3.2).
type ForStmt struct {
	Pos     token.Pos
	Var     *Ident
	Lo, Hi  Expr
	Body    *StmtList
}

func (ForStmt) stmt()                            {}
func (n *ForStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ForStmt) Walk(v Visitor) {
	Walk(v, n.Var)
	Walk(v, n.Lo)
	Walk(v, n.Hi)
	Walk(v, n.Body)
}

// BreakStmt is `break`; only legal within a loop body (§4.3.2).
type BreakStmt struct{ Pos token.Pos }

func (BreakStmt) stmt()                            {}
func (n *BreakStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *BreakStmt) Walk(Visitor)                 {}

// ExitStmt is `exit`; compiles to HALT (§4.3.2).
type ExitStmt struct{ Pos token.Pos }

func (ExitStmt) stmt()                            {}
func (n *ExitStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ExitStmt) Walk(Visitor)                 {}

// ReturnStmt is a function/procedure return; Value is nil for a procedure
// return with no expression (§4.3.6).
type ReturnStmt struct {
	Pos   token.Pos
	Value Expr
}

func (ReturnStmt) stmt()                            {}
func (n *ReturnStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

// ReadStmt is `read(target, ...)`; every target must be a writable
// scalar L-value (§4.3.2).
type ReadStmt struct {
	Pos     token.Pos
	Targets []Expr
}

func (ReadStmt) stmt()                            {}
func (n *ReadStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ReadStmt) Walk(v Visitor) {
	for _, t := range n.Targets {
		Walk(v, t)
	}
}

// WriteStmt is `write(...)` or `writeln(...)` (§4.3.2).
type WriteStmt struct {
	Pos     token.Pos
	Args    []Expr
	Newline bool
}

func (WriteStmt) stmt()                            {}
func (n *WriteStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *WriteStmt) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}

// CallStmt is a procedure call used as a statement.
type CallStmt struct {
	Call *CallExpr
}

func (CallStmt) stmt()                            {}
func (n *CallStmt) Span() (token.Pos, token.Pos) { return n.Call.Span() }
func (n *CallStmt) Walk(v Visitor)               { Walk(v, n.Call) }
