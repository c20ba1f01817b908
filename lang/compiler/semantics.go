// Package compiler walks a lang/ast tree and emits lang/compiler.Bytecode:
// the semantic analyzer and bytecode generator (§4.3). It keeps a tree of
// Environments (one per program/procedure/function declaration), resolves
// every identifier against that tree, and type-checks every expression and
// statement as it lowers them to the stack machine lang/machine executes.
package compiler

import (
	"fmt"
	"strings"

	"github.com/mna/yala/lang/ast"
	"github.com/mna/yala/lang/token"
	"github.com/mna/yala/lang/types"
)

// maxConditionalArms bounds an if/elsif chain and a cond-expression's arm
// count (§4.3.2).
const maxConditionalArms = 400

// maxLocals bounds a single Environment's locals slice, since GET_LOCAL_LONG
// addresses a local with a 16-bit index.
const maxLocals = 65535

// Error is a single semantic error with its source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ErrorList accumulates Errors encountered during a compile.
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

// Compiler holds the state threaded through one compile: the accumulated
// error list and the "panic flag" that suppresses cascading errors within
// one statement (§7).
type Compiler struct {
	errs     ErrorList
	panicked bool
}

// Compile lowers prog, a top-level program declaration, to bytecode. The
// program is compiled as a parameterless procedure, forward-declared and
// called from an implicit launcher environment whose bytecode ends in HALT
// (§3.5, §4.3.5).
func Compile(prog *ast.ModuleDecl) (*Bytecode, error) {
	c := &Compiler{}
	launcher := NewEnvironment(0, nil, NewBytecode("<launcher>", 0))

	if prog.Kind != ast.ModuleProgram {
		return nil, ErrorList{{Pos: prog.Pos, Msg: "top-level declaration must be a program"}}
	}
	if len(prog.Params) != 0 {
		c.errorf(prog.Pos, "program cannot have parameters")
	}

	addr := c.forwardDeclare(launcher, prog)
	c.patchModule(launcher, prog, addr)
	launcher.Code.EmitLong(CALL, 0, prog.Pos)
	launcher.Code.EmitOp(HALT, prog.Pos)

	if err := c.errs.Err(); err != nil {
		return nil, err
	}
	return launcher.Code, nil
}

func (c *Compiler) errorf(pos token.Pos, format string, args ...any) {
	if c.panicked {
		return
	}
	c.panicked = true
	c.errs = append(c.errs, Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// resetPanic clears the panic flag at a statement boundary (§7).
func (c *Compiler) resetPanic() { c.panicked = false }

// resolveType converts a parsed type expression to a semantic Type,
// recording vector dimensions and overflow-checking their product in env's
// DimensionsArena (§3.4, §4.1).
func (c *Compiler) resolveType(env *Environment, t ast.TypeExpr) types.Type {
	switch n := t.(type) {
	case *ast.ScalarType:
		switch n.Kind {
		case token.INTEGER:
			return types.Scalar(types.Integer)
		case token.BOOLEAN:
			return types.Scalar(types.Boolean)
		case token.STRING_KW:
			return types.Scalar(types.String)
		default:
			c.errorf(n.Pos, "unknown scalar type")
			return types.Scalar(types.Integer)
		}
	case *ast.VectorType:
		if n.Size <= 0 {
			c.errorf(n.Pos, "cannot use a value <= 0 as a vector dimension")
		}
		elem := c.resolveType(env, n.Elem)

		var dims []int
		var base types.Kind
		size := n.Size
		if elem.ID == types.Vector {
			if types.IsMultOverflow(int64(n.Size), int64(elem.Size)) {
				c.errorf(n.Pos, "integer overflow computing vector size")
			}
			dims = append(dims, n.Size)
			dims = append(dims, elem.Dimensions...)
			base = elem.Base
		} else {
			dims = append(dims, n.Size)
			base = elem.ID
		}
		start := len(env.DimensionsArena)
		env.DimensionsArena = append(env.DimensionsArena, dims...)
		arenaDims := env.DimensionsArena[start:len(env.DimensionsArena):len(env.DimensionsArena)]
		_ = size
		return types.VectorType(base, arenaDims)
	default:
		c.errorf(0, "unknown type expression")
		return types.Scalar(types.Integer)
	}
}

// buildSignature computes a module's semantic function type from its
// parameter list and return type (§4.3.5 step 1).
func (c *Compiler) buildSignature(env *Environment, decl *ast.ModuleDecl) types.Type {
	start := len(env.ArgTypesArena)
	for _, p := range decl.Params {
		t := c.resolveType(env, p.Type)
		if decl.Kind == ast.ModuleFunction && p.Modifier != 0 {
			c.errorf(p.Name.Pos, "cannot use modifiers in function parameters")
		}
		switch p.Modifier {
		case token.OUT:
			t = t.WithModifier(types.ModOut)
		case token.INOUT:
			t = t.WithModifier(types.ModInOut)
		default:
			t = t.WithModifier(types.ModIn)
		}
		env.ArgTypesArena = append(env.ArgTypesArena, t)
	}
	params := env.ArgTypesArena[start:len(env.ArgTypesArena):len(env.ArgTypesArena)]

	ret := types.Scalar(types.Void)
	switch decl.Kind {
	case ast.ModuleFunction:
		if decl.ReturnType == nil {
			c.errorf(decl.Pos, "expected return type for function")
		} else {
			ret = c.resolveType(env, decl.ReturnType)
		}
	default:
		if decl.ReturnType != nil {
			c.errorf(decl.Pos, "unexpected return type for procedure")
		}
	}
	return types.FunctionType(ret, params)
}

// forwardDeclare performs §4.3.5 steps 1-2: it computes decl's signature,
// declares its name as a read-only local of that function type in env, and
// emits the LOCF_LONG that both reserves and initializes that local's stack
// slot with a placeholder function value (§4.3.5, patched by patchModule).
func (c *Compiler) forwardDeclare(env *Environment, decl *ast.ModuleDecl) uint16 {
	sig := c.buildSignature(env, decl)
	if env.Redeclared(decl.Name.Name) {
		c.errorf(decl.Name.Pos, "variable already declared")
	}
	if len(env.Locals) >= maxLocals {
		c.errorf(decl.Name.Pos, "maximum number of local variables exceeded")
	}
	env.Declare(decl.Name.Name, sig, PermR)

	addr := env.Code.AddFunctionConstant()
	env.Code.EmitLong(LOCF_LONG, addr, decl.Pos)
	return addr
}

// patchModule performs §4.3.5 steps 3-7: it creates decl's child
// environment, declares its parameters and locals, forward-declares and
// compiles every inner module, compiles its own body, and finally patches
// the constant slot addr reserved by forwardDeclare with the finished child
// Bytecode.
func (c *Compiler) patchModule(env *Environment, decl *ast.ModuleDecl, addr uint16) {
	sig := c.buildSignature(env, decl)

	child := NewEnvironment(env.Index+1, env, NewBytecode(decl.Name.Name, env.Index+1))

	if decl.Kind == ast.ModuleFunction && (len(decl.VarDecls) != 0 || len(decl.Inner) != 0) {
		c.errorf(decl.Pos, "cannot have local variables in function")
	}

	for i, p := range decl.Params {
		if child.Redeclared(p.Name.Name) {
			c.errorf(p.Name.Pos, "variable already declared")
			continue
		}
		child.Declare(p.Name.Name, sig.Signature.Params[i], PermRW)
	}

	for _, vd := range decl.VarDecls {
		c.compileVarDecl(child, vd)
	}

	addrs := make([]uint16, len(decl.Inner))
	for i, inner := range decl.Inner {
		addrs[i] = c.forwardDeclare(child, inner)
	}
	for i, inner := range decl.Inner {
		c.patchModule(child, inner, addrs[i])
	}

	c.compileModuleBody(child, decl, sig)

	env.Code.PatchFunctionConstant(addr, child.Code)
}

// compileModuleBody compiles decl's statement list or expression body into
// child.Code, emitting the synthetic trailing RETURN described in §4.3.6.
func (c *Compiler) compileModuleBody(child *Environment, decl *ast.ModuleDecl, sig types.Type) {
	if decl.Kind == ast.ModuleFunction {
		retType := c.compileExpr(child, decl.ExprBody)
		if !retType.Equal(sig.Signature.Return) {
			c.errorf(decl.Pos, "mismatching return type in function")
		}
		c.emitReturnEpilogue(child, sig, decl.Pos)
		return
	}

	for _, stmt := range decl.Body.Stmts {
		c.resetPanic()
		c.compileStmt(child, stmt)
	}
	// Procedures return implicitly; PUSH_BOOL false stands in for the void
	// result RETURN expects on top of the value stack (see VoidValue), since
	// there is no dedicated opcode to push one.
	child.Code.EmitByteArg(PUSH_BOOL, 0, decl.Pos)
	c.emitReturnEpilogue(child, sig, decl.Pos)
}

// emitReturnEpilogue emits the out/inout writeback and vector relocation
// that precede every RETURN (§4.3.6).
func (c *Compiler) emitReturnEpilogue(child *Environment, sig types.Type, pos token.Pos) {
	arity := len(sig.Signature.Params)
	for i := arity - 1; i >= 0; i-- {
		p := sig.Signature.Params[i]
		if p.Modifier != types.ModOut && p.Modifier != types.ModInOut {
			continue
		}
		isVector := byte(0)
		if p.ID == types.Vector {
			isVector = 1
		}
		child.Code.EmitLongByteArg(ARGSTACK_LOAD, uint16(i), isVector, pos)
	}
	if sig.Signature.Return.ID == types.Vector {
		child.Code.EmitOp(SHIFT_ASTACKENT_TO_BASE, pos)
	}
	child.Code.EmitLong(RETURN, uint16(arity), pos)
}

// compileVarDecl declares each named identifier as an RW local of t's type
// and emits its default initializer, then, if vd has one, lowers its `=
// expr` initializer (§8 scenario 6) to an ordinary assignment to the
// just-declared name, reusing compileAssign's existing whole-value and
// whole-vector assignment path instead of duplicating it.
func (c *Compiler) compileVarDecl(env *Environment, vd *ast.VarDecl) {
	t := c.resolveType(env, vd.Type)
	for _, name := range vd.Names {
		if env.Redeclared(name.Name) {
			c.errorf(name.Pos, "variable already declared")
			continue
		}
		if len(env.Locals) >= maxLocals {
			c.errorf(name.Pos, "maximum number of local variables exceeded")
			continue
		}
		env.Declare(name.Name, t, PermRW)
		c.emitDefault(env, t, name.Pos)
		if vd.Init != nil {
			c.compileAssign(env, &ast.AssignStmt{
				Pos:    vd.Pos,
				Target: &ast.IdentExpr{Name: name},
				Value:  vd.Init,
			})
		}
	}
}

// emitDefault pushes t's zero value onto the value stack: 0 for integer,
// false for boolean, the empty string for string, a freshly zero-filled
// descriptor for vector, and void otherwise (§4.3.2).
func (c *Compiler) emitDefault(env *Environment, t types.Type, pos token.Pos) {
	switch t.ID {
	case types.Integer:
		c.emitInt(env, 0, pos)
	case types.Boolean:
		env.Code.EmitByteArg(PUSH_BOOL, 0, pos)
	case types.String:
		addr := env.Code.AddStringConstant("")
		env.Code.EmitLong(LOCS_LONG, addr, pos)
	case types.Vector:
		c.emitInt(env, int64(t.Size), pos)
		env.Code.EmitOp(ASTACK_SHIFT_UP, pos)
		addr := env.Code.AddVectorSizeConstant(t.Size)
		env.Code.EmitLong(LOC_ALINK_LONG, addr, pos)
	default:
		env.Code.EmitByteArg(PUSH_BOOL, 0, pos)
	}
}

// emitInt pushes n, inlining small non-negative values as a single
// PUSH_BYTE and routing everything else through the constant pool.
func (c *Compiler) emitInt(env *Environment, n int64, pos token.Pos) {
	if n >= 0 && n <= 255 {
		env.Code.EmitByteArg(PUSH_BYTE, byte(n), pos)
		return
	}
	addr := env.Code.AddIntConstant(n)
	env.Code.EmitLong(LOCI_LONG, addr, pos)
}
