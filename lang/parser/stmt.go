package parser

import (
	"github.com/mna/yala/lang/ast"
	"github.com/mna/yala/lang/token"
)

// parseStmt parses one statement (§4.3.2).
func (p *parser) parseStmt() ast.Stmt {
	switch p.kind() {
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.REPEAT:
		return p.parseRepeatStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.BREAK:
		pos := p.advance().Pos
		return &ast.BreakStmt{Pos: pos}
	case token.EXIT:
		pos := p.advance().Pos
		return &ast.ExitStmt{Pos: pos}
	case token.READ:
		return p.parseReadStmt()
	case token.WRITE, token.WRITELN:
		return p.parseWriteStmt()
	case token.IDENT:
		return p.parseIdentLedStmt()
	default:
		p.errorf("expected a statement, got %s", p.kind())
		return &ast.CallStmt{Call: &ast.CallExpr{Callee: &ast.Ident{Pos: p.cur().Pos}}}
	}
}

// parseIdentLedStmt disambiguates a bare procedure call, a statement-
// position var decl, and an assignment: all three start with an
// identifier. A `(` makes it a call; a `,` or `:` makes it a var decl (only
// a bare name, never an indexed target, can begin one); anything else is an
// assignment target, optionally followed by index brackets. This mirrors
// original_source's `dispatch_id_stat`, which applies the same `var_decl`
// production at statement position as in the declaration section (§8
// scenario 6). Yala has no surface `return` keyword: a function's value is
// its body expression, and a procedure's is implicit at the end of its
// statement list (§4.3.6).
func (p *parser) parseIdentLedStmt() ast.Stmt {
	pos := p.cur().Pos
	name := p.ident()
	if p.at(token.LPAREN) {
		call := p.finishCallExpr(name)
		return &ast.CallStmt{Call: call}
	}
	if p.at(token.COMMA) || p.at(token.COLON) {
		return p.finishVarDecl(pos, name)
	}

	target := p.finishLValue(name)
	assignPos := p.cur().Pos
	p.expect(token.ASSIGN)
	value := p.parseExpr()
	return &ast.AssignStmt{Pos: assignPos, Target: target, Value: value}
}

func (p *parser) finishLValue(name *ast.Ident) ast.Expr {
	var e ast.Expr = &ast.IdentExpr{Name: name}
	for p.at(token.LBRACK) {
		e = p.parseIndex(e)
	}
	return e
}

func (p *parser) parseIndex(base ast.Expr) ast.Expr {
	p.advance() // [
	var idxs []ast.Expr
	idxs = append(idxs, p.parseExpr())
	for p.at(token.COMMA) {
		p.advance()
		idxs = append(idxs, p.parseExpr())
	}
	rb := p.expect(token.RBRACK).Pos
	return &ast.IndexExpr{Base: base, Indices: idxs, RBrack: rb}
}

func (p *parser) finishCallExpr(name *ast.Ident) *ast.CallExpr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	if !p.at(token.RPAREN) {
		args = append(args, p.parseExpr())
		for p.at(token.COMMA) {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	rp := p.expect(token.RPAREN).Pos
	return &ast.CallExpr{Callee: name, Args: args, RParen: rp}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	pos := p.advance().Pos // if
	stmt := &ast.IfStmt{Pos: pos}
	stmt.Conds = append(stmt.Conds, p.parseExpr())
	p.expect(token.THEN)
	stmt.Blocks = append(stmt.Blocks, p.parseStmtList())
	for p.at(token.ELSIF) {
		p.advance()
		stmt.Conds = append(stmt.Conds, p.parseExpr())
		p.expect(token.THEN)
		stmt.Blocks = append(stmt.Blocks, p.parseStmtList())
	}
	if p.at(token.ELSE) {
		p.advance()
		stmt.Else = p.parseStmtList()
	}
	p.expect(token.END)
	return stmt
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	pos := p.advance().Pos // while
	cond := p.parseExpr()
	p.expect(token.DO)
	body := p.parseStmtList()
	p.expect(token.END)
	return &ast.WhileStmt{Pos: pos, Cond: cond, Body: body}
}

func (p *parser) parseRepeatStmt() *ast.RepeatStmt {
	pos := p.advance().Pos // repeat
	body := p.parseStmtList()
	p.expect(token.UNTIL)
	cond := p.parseExpr()
	return &ast.RepeatStmt{Pos: pos, Body: body, Cond: cond}
}

func (p *parser) parseForStmt() *ast.ForStmt {
	pos := p.advance().Pos // for
	v := p.ident()
	p.expect(token.ASSIGN)
	lo := p.parseExpr()
	p.expect(token.TO)
	hi := p.parseExpr()
	p.expect(token.DO)
	body := p.parseStmtList()
	p.expect(token.END)
	return &ast.ForStmt{Pos: pos, Var: v, Lo: lo, Hi: hi, Body: body}
}

func (p *parser) parseReadStmt() *ast.ReadStmt {
	pos := p.advance().Pos // read
	p.expect(token.LPAREN)
	stmt := &ast.ReadStmt{Pos: pos}
	stmt.Targets = append(stmt.Targets, p.parseExpr())
	for p.at(token.COMMA) {
		p.advance()
		stmt.Targets = append(stmt.Targets, p.parseExpr())
	}
	p.expect(token.RPAREN)
	return stmt
}

func (p *parser) parseWriteStmt() *ast.WriteStmt {
	nl := p.at(token.WRITELN)
	pos := p.advance().Pos // write or writeln
	stmt := &ast.WriteStmt{Pos: pos, Newline: nl}
	p.expect(token.LPAREN)
	if !p.at(token.RPAREN) {
		stmt.Args = append(stmt.Args, p.parseExpr())
		for p.at(token.COMMA) {
			p.advance()
			stmt.Args = append(stmt.Args, p.parseExpr())
		}
	}
	p.expect(token.RPAREN)
	return stmt
}
