package parser

import (
	"github.com/mna/yala/lang/ast"
	"github.com/mna/yala/lang/token"
)

// maxCondArms bounds an if-expression's elsif chain (§4.3.1), matching the
// compiler's own limit so a pathological chain is rejected the same way
// whether it is caught here or during semantic analysis.
const maxCondArms = 400

// parseExpr parses a full expression, starting at the lowest precedence
// level (`or`).
func (p *parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(token.OR) {
		op := p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Op: token.OR, Left: left, Right: right, OpPos: op.Pos}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.at(token.AND) {
		op := p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Op: token.AND, Left: left, Right: right, OpPos: op.Pos}
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.at(token.EQL) || p.at(token.NEQ) {
		op := p.advance()
		right := p.parseRelational()
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, OpPos: op.Pos}
	}
	return left
}

func (p *parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for p.at(token.LT) || p.at(token.LE) || p.at(token.GT) || p.at(token.GE) {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, OpPos: op.Pos}
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, OpPos: op.Pos}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.at(token.STAR) || p.at(token.SLASH) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Op: op.Kind, Left: left, Right: right, OpPos: op.Pos}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	if p.at(token.MINUS) || p.at(token.BANG) {
		op := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Op: op.Kind, Operand: operand, OpPos: op.Pos}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any number of index
// brackets: `a[i][j]` and `a[i, j]` both produce an IndexExpr (§8).
func (p *parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for p.at(token.LBRACK) {
		e = p.parseIndex(e)
	}
	return e
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.kind() {
	case token.INT:
		t := p.advance()
		return &ast.IntLit{Pos: t.Pos, Value: t.IntVal}
	case token.STRING:
		t := p.advance()
		return &ast.StringLit{Pos: t.Pos, Value: t.Lit}
	case token.TRUE:
		t := p.advance()
		return &ast.BoolLit{Pos: t.Pos, Value: true}
	case token.FALSE:
		t := p.advance()
		return &ast.BoolLit{Pos: t.Pos, Value: false}
	case token.IDENT:
		name := p.ident()
		if p.at(token.LPAREN) {
			return p.finishCallExpr(name)
		}
		return &ast.IdentExpr{Name: name}
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	case token.LBRACK:
		return p.parseVectorLit()
	case token.IF:
		return p.parseCondExpr()
	default:
		pos := p.cur().Pos
		p.errorf("expected an expression, got %s", p.kind())
		return &ast.IntLit{Pos: pos}
	}
}

func (p *parser) parseVectorLit() *ast.VectorLit {
	pos := p.advance().Pos // [
	lit := &ast.VectorLit{Pos: pos}
	if !p.at(token.RBRACK) {
		lit.Elems = append(lit.Elems, p.parseExpr())
		for p.at(token.COMMA) {
			p.advance()
			lit.Elems = append(lit.Elems, p.parseExpr())
		}
	}
	lit.RBrack = p.expect(token.RBRACK).Pos
	return lit
}

// parseCondExpr parses `if c1 then e1 {elsif ci then ei} else ee end`
// (§4.3.1): unlike IfStmt, every arm is a single expression and the final
// `else` is mandatory.
func (p *parser) parseCondExpr() *ast.CondExpr {
	pos := p.advance().Pos // if
	ce := &ast.CondExpr{Pos: pos}

	ce.Conds = append(ce.Conds, p.parseExpr())
	p.expect(token.THEN)
	ce.Thens = append(ce.Thens, p.parseExpr())
	for p.at(token.ELSIF) {
		if len(ce.Conds) >= maxCondArms {
			p.errorf("conditional expression exceeds %d arms", maxCondArms)
		}
		p.advance()
		ce.Conds = append(ce.Conds, p.parseExpr())
		p.expect(token.THEN)
		ce.Thens = append(ce.Thens, p.parseExpr())
	}
	p.expect(token.ELSE)
	ce.Else = p.parseExpr()
	p.expect(token.END)
	return ce
}
