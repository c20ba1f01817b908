// Package parser implements a hand-written recursive-descent, precedence
// climbing parser that turns a token stream into the lang/ast tree the
// compiler consumes directly (§6.2, §11): there is no separate
// `tree_node`-shaped intermediate, since the parser builds the compiler's
// own AST types.
//
// On a syntax error the parser records it, synchronizes to the next `;` (or
// a block-ending keyword) and continues, so that Parse collects as many
// errors as possible before reporting failure (§7).
package parser

import (
	"fmt"
	"strings"

	"github.com/mna/yala/lang/ast"
	"github.com/mna/yala/lang/scanner"
	"github.com/mna/yala/lang/token"
)

// Error is a single syntax error with its source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ErrorList accumulates Errors encountered during a parse.
type ErrorList []Error

func (el ErrorList) Error() string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Parse scans and parses src, returning the top-level program declaration.
// If any lexical or syntax error occurred, err is a non-nil ErrorList and
// prog is nil (no bytecode should ever be generated from a tree that had
// parse errors, §7).
func Parse(src []byte) (prog *ast.ModuleDecl, err error) {
	toks, serr := scanner.ScanAll(src)
	p := &parser{toks: toks}
	if serr != nil {
		if sl, ok := serr.(scanner.ErrorList); ok {
			for _, e := range sl {
				p.errs = append(p.errs, Error{Pos: e.Pos, Msg: e.Msg})
			}
		}
	}

	prog = p.parseProgram()
	if len(p.errs) > 0 {
		return nil, p.errs.Err()
	}
	return prog, nil
}

type parser struct {
	toks []scanner.Tok
	pos  int
	errs ErrorList
}

func (p *parser) cur() scanner.Tok  { return p.toks[p.pos] }
func (p *parser) kind() token.Token { return p.toks[p.pos].Kind }

func (p *parser) advance() scanner.Tok {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(k token.Token) bool { return p.kind() == k }

func (p *parser) expect(k token.Token) scanner.Tok {
	if p.kind() != k {
		p.errorf("expected %s, got %s", k, p.kind())
		return p.cur()
	}
	return p.advance()
}

func (p *parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, Error{Pos: p.cur().Pos, Msg: fmt.Sprintf(format, args...)})
	p.synchronize()
}

// synchronize skips tokens until a `;`, a block-ending keyword, or EOF, so
// parsing can resume collecting further errors (§7).
func (p *parser) synchronize() {
	for {
		switch p.kind() {
		case token.SEMI, token.END, token.EOF, token.UNTIL, token.ELSE, token.ELSIF:
			return
		}
		if p.pos >= len(p.toks)-1 {
			return
		}
		p.advance()
	}
}

func (p *parser) ident() *ast.Ident {
	t := p.expect(token.IDENT)
	return &ast.Ident{Name: t.Lit, Pos: t.Pos}
}

// parseProgram parses `program name; {decl} begin stmtlist end name.`
func (p *parser) parseProgram() *ast.ModuleDecl {
	pos := p.cur().Pos
	p.expect(token.PROGRAM)
	name := p.ident()
	p.expect(token.SEMI)

	decl := &ast.ModuleDecl{Pos: pos, Kind: ast.ModuleProgram, Name: name}
	p.parseDeclSection(decl)
	p.expect(token.BEGIN)
	decl.Body = p.parseStmtList()
	p.expect(token.END)
	decl.EndName = p.ident()
	p.expect(token.DOT)
	return decl
}

// parseDeclSection parses the var-decl / inner-module-decl sequence that
// precedes a procedure, program, or nested block's `begin`.
func (p *parser) parseDeclSection(decl *ast.ModuleDecl) {
	for {
		switch p.kind() {
		case token.IDENT:
			decl.VarDecls = append(decl.VarDecls, p.parseVarDecl())
			p.expect(token.SEMI)
		case token.PROCEDURE, token.FUNCTION:
			decl.Inner = append(decl.Inner, p.parseModuleDecl())
			p.expect(token.SEMI)
		default:
			return
		}
	}
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	pos := p.cur().Pos
	name := p.ident()
	return p.finishVarDecl(pos, name)
}

// finishVarDecl parses the rest of a `VAR_DECL` given its position and
// already-consumed first identifier: `{, identifier} : Type [= expr]`.
// It is shared by the declaration section (parseVarDecl) and
// statement-position var decls (parseIdentLedStmt), since original_source's
// `dispatch_id_stat` admits the same production in both places.
func (p *parser) finishVarDecl(pos token.Pos, first *ast.Ident) *ast.VarDecl {
	names := []*ast.Ident{first}
	for p.at(token.COMMA) {
		p.advance()
		names = append(names, p.ident())
	}
	p.expect(token.COLON)
	typ := p.parseType()
	vd := &ast.VarDecl{Pos: pos, Names: names, Type: typ}
	if p.at(token.ASSIGN) {
		p.advance()
		vd.Init = p.parseExpr()
	}
	return vd
}

func (p *parser) parseType() ast.TypeExpr {
	pos := p.cur().Pos
	switch p.kind() {
	case token.INTEGER:
		p.advance()
		return &ast.ScalarType{Kind: token.INTEGER, Pos: pos}
	case token.BOOLEAN:
		p.advance()
		return &ast.ScalarType{Kind: token.BOOLEAN, Pos: pos}
	case token.STRING_KW:
		p.advance()
		return &ast.ScalarType{Kind: token.STRING_KW, Pos: pos}
	case token.VECTOR:
		p.advance()
		p.expect(token.LBRACK)
		size := p.expect(token.INT)
		p.expect(token.RBRACK)
		p.expect(token.OF)
		elem := p.parseType()
		return &ast.VectorType{Pos: pos, Size: int(size.IntVal), Elem: elem}
	default:
		p.errorf("expected a type, got %s", p.kind())
		return &ast.ScalarType{Kind: token.INTEGER, Pos: pos}
	}
}

// parseModuleDecl parses a procedure or function declaration (§4.3.5).
func (p *parser) parseModuleDecl() *ast.ModuleDecl {
	pos := p.cur().Pos
	kind := ast.ModuleProcedure
	if p.at(token.FUNCTION) {
		kind = ast.ModuleFunction
	}
	p.advance() // PROCEDURE or FUNCTION
	name := p.ident()

	decl := &ast.ModuleDecl{Pos: pos, Kind: kind, Name: name}
	p.expect(token.LPAREN)
	if !p.at(token.RPAREN) {
		decl.Params = append(decl.Params, p.parseParamDecl())
		for p.at(token.SEMI) {
			p.advance()
			decl.Params = append(decl.Params, p.parseParamDecl())
		}
	}
	p.expect(token.RPAREN)
	if p.at(token.COLON) {
		p.advance()
		decl.ReturnType = p.parseType()
	}
	p.expect(token.SEMI)

	if kind == ast.ModuleFunction {
		decl.ExprBody = p.parseExpr()
	} else {
		p.parseDeclSection(decl)
		p.expect(token.BEGIN)
		decl.Body = p.parseStmtList()
	}
	p.expect(token.END)
	decl.EndName = p.ident()
	return decl
}

func (p *parser) parseParamDecl() *ast.ParamDecl {
	var mod token.Token
	switch p.kind() {
	case token.INOUT, token.OUT:
		mod = p.kind()
		p.advance()
	}
	name := p.ident()
	p.expect(token.COLON)
	typ := p.parseType()
	return &ast.ParamDecl{Name: name, Modifier: mod, Type: typ}
}

// parseStmtList parses a `STAT_LIST`: statements separated by `;`, ending
// before a block-closing keyword.
func (p *parser) parseStmtList() *ast.StmtList {
	start := p.cur().Pos
	sl := &ast.StmtList{Start: start}
	for !p.blockEnd() {
		sl.Stmts = append(sl.Stmts, p.parseStmt())
		if p.at(token.SEMI) {
			p.advance()
		} else {
			break
		}
	}
	sl.End = p.cur().Pos
	return sl
}

func (p *parser) blockEnd() bool {
	switch p.kind() {
	case token.END, token.ELSE, token.ELSIF, token.UNTIL, token.EOF:
		return true
	default:
		return false
	}
}
