package compiler

import (
	"github.com/mna/yala/lang/ast"
	"github.com/mna/yala/lang/token"
	"github.com/mna/yala/lang/types"
)

// maxArity bounds the argument count of a call and of a read or write
// statement (§4.4, §9). A module's own parameter list is not checked
// against it.
const maxArity = 255

// maxVectorRank bounds the dimension count of a vector literal (§4.1).
// Declared vector types are not checked against it.
const maxVectorRank = 50

// compileExpr lowers an expression to the value stack, returning its
// semantic type (§4.3.1).
func (c *Compiler) compileExpr(env *Environment, e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		c.emitInt(env, n.Value, n.Pos)
		return types.Scalar(types.Integer)
	case *ast.BoolLit:
		env.Code.EmitByteArg(PUSH_BOOL, boolByte(n.Value), n.Pos)
		return types.Scalar(types.Boolean)
	case *ast.StringLit:
		addr := env.Code.AddStringConstant(n.Value)
		env.Code.EmitLong(LOCS_LONG, addr, n.Pos)
		return types.Scalar(types.String)
	case *ast.IdentExpr:
		return c.compileIdent(env, n.Name, true)
	case *ast.IndexExpr:
		return c.compileIndexExpr(env, n)
	case *ast.VectorLit:
		t, _ := c.compileVectorLit(env, n, 0)
		return t
	case *ast.UnaryExpr:
		return c.compileUnary(env, n)
	case *ast.BinaryExpr:
		return c.compileBinary(env, n)
	case *ast.CondExpr:
		return c.compileCondExpr(env, n)
	case *ast.CallExpr:
		return c.compileCall(env, n)
	default:
		pos, _ := e.Span()
		c.errorf(pos, "unsupported expression")
		return types.Scalar(types.Integer)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// compileIdent loads the identifier's current value onto the value stack.
// When fullCopy is true and the identifier names a vector, a synthetic
// full-rank indexing prelude copies its elements onto the array-data
// stack (§4.3.3): call arguments and indexing bases pass fullCopy=false
// so vectors are shared by reference instead of copied.
func (c *Compiler) compileIdent(env *Environment, id *ast.Ident, fullCopy bool) types.Type {
	_, local, index, offset, ok := Lookup(env, id.Name)
	if !ok {
		c.errorf(id.Pos, "undefined variable %q", id.Name)
		return types.Scalar(types.Integer)
	}
	env.Code.EmitLongLong(GET_LOCAL_LONG, uint16(offset), uint16(index), id.Pos)
	if local.Type.ID == types.Vector && fullCopy {
		return c.emitVectorFullCopy(env, local.Type, id.Pos)
	}
	return local.Type
}

// emitVectorFullCopy emits the synthetic zero-explicit-index, full-rank
// indexing prelude that copies a vector's elements from their original
// storage onto the array-data stack, producing an independent value
// (§4.3.3). The vector descriptor itself must already be on top of the
// value stack.
func (c *Compiler) emitVectorFullCopy(env *Environment, t types.Type, pos token.Pos) types.Type {
	for _, d := range t.Dimensions {
		c.emitInt(env, int64(d), pos)
	}
	env.Code.EmitByteByteArg(GET_INDEX, 0, byte(t.Rank), pos)
	return t
}

// lvalueSite is a resolved writable local, as produced by lookupWritable.
type lvalueSite struct {
	local  *Local
	index  int
	offset int
}

// lookupWritable resolves id to a writable local, reporting a semantic
// error for an undefined name or one lacking write permission (§4.3.4).
func (c *Compiler) lookupWritable(env *Environment, id *ast.Ident) (lvalueSite, bool) {
	_, local, index, offset, ok := Lookup(env, id.Name)
	if !ok {
		c.errorf(id.Pos, "undefined variable %q", id.Name)
		return lvalueSite{}, false
	}
	if !local.Permissions.Writable() {
		c.errorf(id.Pos, "cannot assign read-only variable %q", id.Name)
		return lvalueSite{}, false
	}
	return lvalueSite{local: local, index: index, offset: offset}, true
}

// identOf returns the identifier naming lhs, which must be an IdentExpr or
// an IndexExpr rooted at one: an L-value is either an identifier bound to
// a writable local, or an indexing expression on such a local (§4.3.3).
func identOf(lhs ast.Expr) (*ast.Ident, bool) {
	switch n := lhs.(type) {
	case *ast.IdentExpr:
		return n.Name, true
	case *ast.IndexExpr:
		return identOf(n.Base)
	default:
		return nil, false
	}
}

// indicesOf returns every index of an L-value in source order, so that a
// chained `v[i][j]` target yields the same list as `v[i, j]`, or nil for a
// bare identifier target.
func indicesOf(lhs ast.Expr) []ast.Expr {
	idx, ok := lhs.(*ast.IndexExpr)
	if !ok {
		return nil
	}
	var all []ast.Expr
	all = append(all, indicesOf(idx.Base)...)
	return append(all, idx.Indices...)
}

// compileLHSPrelude emits §4.3.3's indexing prelude for an assignment,
// read, or write-back target and returns the type the following set
// opcode must match: the local's own type for a bare identifier, or the
// indexed sub-type for an indexing expression.
func (c *Compiler) compileLHSPrelude(env *Environment, site lvalueSite, lhs ast.Expr, pos token.Pos) types.Type {
	if site.local.Type.ID != types.Vector {
		return site.local.Type
	}
	return c.compileIndexingPrelude(env, site.local.Type, indicesOf(lhs), pos)
}

// compileIndexingPrelude emits each index expression, then every declared
// dimension of indexed, and returns the resulting (possibly sub-vector)
// semantic type (§4.3.3).
func (c *Compiler) compileIndexingPrelude(env *Environment, indexed types.Type, indices []ast.Expr, pos token.Pos) types.Type {
	for _, idx := range indices {
		ipos, _ := idx.Span()
		if t := c.compileExpr(env, idx); t.ID != types.Integer {
			c.errorf(ipos, "index must be an integer")
		}
	}
	for _, d := range indexed.Dimensions {
		c.emitInt(env, int64(d), pos)
	}
	return c.indexedType(env, len(indices), indexed)
}

// indexedType computes the semantic type of indexing a vector of type
// indexed with nIndices explicit indices: a scalar of the base type when
// every dimension is indexed, otherwise a sub-vector of the remaining
// dimensions whose Size is their product (§4.3.3, §9 open question).
func (c *Compiler) indexedType(env *Environment, nIndices int, indexed types.Type) types.Type {
	if nIndices >= indexed.Rank {
		return types.Scalar(indexed.Base)
	}
	remaining := indexed.Dimensions[nIndices:]
	start := len(env.DimensionsArena)
	env.DimensionsArena = append(env.DimensionsArena, remaining...)
	dims := env.DimensionsArena[start:len(env.DimensionsArena):len(env.DimensionsArena)]
	return types.VectorType(indexed.Base, dims)
}

// emitSetForLHS emits the opcode that stores the value currently on top of
// the value stack into site, using lhs to pick between SET_LOCAL_LONG and
// SET_INDEX_LOCAL_LONG (§4.3.2, §4.3.3).
func (c *Compiler) emitSetForLHS(env *Environment, site lvalueSite, lhs ast.Expr, pos token.Pos) {
	if site.local.Type.ID != types.Vector {
		env.Code.EmitLongLong(SET_LOCAL_LONG, uint16(site.offset), uint16(site.index), pos)
		return
	}
	n := len(indicesOf(lhs))
	env.Code.EmitLongLongByteByteArg(SET_INDEX_LOCAL_LONG, uint16(site.offset), uint16(site.index), byte(n), byte(site.local.Type.Rank), pos)
}

// compileIndexBase loads an indexing expression's base vector without
// copying its elements: a bare identifier base is read by reference, while
// a nested indexing expression already yields a sub-vector view (§4.3.3).
func (c *Compiler) compileIndexBase(env *Environment, base ast.Expr) types.Type {
	if id, ok := base.(*ast.IdentExpr); ok {
		return c.compileIdent(env, id.Name, false)
	}
	return c.compileExpr(env, base)
}

func (c *Compiler) compileIndexExpr(env *Environment, n *ast.IndexExpr) types.Type {
	indexedType := c.compileIndexBase(env, n.Base)
	if indexedType.ID != types.Vector {
		pos, _ := n.Base.Span()
		c.errorf(pos, "cannot index a non vector")
		return types.Scalar(types.Integer)
	}
	ret := c.compileIndexingPrelude(env, indexedType, n.Indices, n.RBrack)
	env.Code.EmitByteByteArg(GET_INDEX, byte(len(n.Indices)), byte(indexedType.Rank), n.RBrack)
	return ret
}

// compileVectorLit lowers a (possibly nested) vector literal, recursing
// depth-first and pushing every scalar leaf onto the array-data stack with
// POP_TO_ASTACK; only the outermost call emits the LOC_ALINK_LONG that
// links the finished run of elements to a fresh vector descriptor (§4.3.1,
// §8 scenario 6).
func (c *Compiler) compileVectorLit(env *Environment, e ast.Expr, depth int) (types.Type, token.Pos) {
	lit, ok := e.(*ast.VectorLit)
	if !ok {
		t := c.compileExpr(env, e)
		pos, _ := e.Span()
		env.Code.EmitOp(POP_TO_ASTACK, pos)
		return t, pos
	}

	if len(lit.Elems) == 0 {
		c.errorf(lit.Pos, "vector literal cannot be empty")
		return types.VectorType(types.Integer, []int{1}), lit.Pos
	}

	elemType, _ := c.compileVectorLit(env, lit.Elems[0], depth+1)
	for _, elem := range lit.Elems[1:] {
		current, pos := c.compileVectorLit(env, elem, depth+1)
		if !current.Equal(elemType) {
			c.errorf(pos, "vector elements must be homogeneous")
		}
	}

	var base types.Kind
	var dims []int
	size := len(lit.Elems)
	if elemType.ID == types.Vector {
		base = elemType.Base
		dims = append(dims, size)
		dims = append(dims, elemType.Dimensions...)
		size *= elemType.Size
	} else {
		base = elemType.ID
		dims = append(dims, size)
	}
	if len(dims) > maxVectorRank {
		c.errorf(lit.Pos, "maximum vector rank exceeded")
	}
	start := len(env.DimensionsArena)
	env.DimensionsArena = append(env.DimensionsArena, dims...)
	arenaDims := env.DimensionsArena[start:len(env.DimensionsArena):len(env.DimensionsArena)]
	t := types.VectorType(base, arenaDims)

	if depth == 0 {
		addr := env.Code.AddVectorSizeConstant(size)
		env.Code.EmitLong(LOC_ALINK_LONG, addr, lit.Pos)
	}
	return t, lit.Pos
}

func (c *Compiler) compileUnary(env *Environment, n *ast.UnaryExpr) types.Type {
	switch n.Op {
	case token.MINUS:
		env.Code.EmitByteArg(PUSH_BYTE, 0, n.OpPos)
		t := c.compileExpr(env, n.Operand)
		if t.ID != types.Integer {
			c.errorf(n.OpPos, "operand must be an integer")
		}
		env.Code.EmitOp(SUB, n.OpPos)
		return types.Scalar(types.Integer)
	case token.BANG:
		t := c.compileExpr(env, n.Operand)
		if t.ID != types.Boolean {
			c.errorf(n.OpPos, "operand must be a boolean")
		}
		env.Code.EmitOp(NOT, n.OpPos)
		return types.Scalar(types.Boolean)
	default:
		c.errorf(n.OpPos, "unsupported unary operator")
		return types.Scalar(types.Integer)
	}
}

func (c *Compiler) compileBinary(env *Environment, n *ast.BinaryExpr) types.Type {
	switch n.Op {
	case token.AND:
		return c.compileAnd(env, n)
	case token.OR:
		return c.compileOr(env, n)
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		return c.compileArith(env, n)
	case token.EQL, token.NEQ:
		return c.compileEquality(env, n)
	case token.LT, token.LE, token.GT, token.GE:
		return c.compileRelational(env, n)
	default:
		c.errorf(n.OpPos, "unsupported binary operator")
		return types.Scalar(types.Integer)
	}
}

// compileAnd emits `and`'s short-circuit encoding: left, a SKIPF_LONG over
// an explicit POPV plus right, leaving the condition itself as the
// expression's value on the false path (§4.3.1).
func (c *Compiler) compileAnd(env *Environment, n *ast.BinaryExpr) types.Type {
	left := c.compileExpr(env, n.Left)
	addr := env.Code.EmitLong(SKIPF_LONG, 0, n.OpPos)
	here := env.Code.Here()
	env.Code.EmitOp(POPV, n.OpPos)
	right := c.compileExpr(env, n.Right)
	if left.ID != types.Boolean || right.ID != types.Boolean {
		c.errorf(n.OpPos, "operands must be booleans")
	}
	c.patchSkip(env, addr, here, n.OpPos)
	return types.Scalar(types.Boolean)
}

// compileOr emits `or`'s short-circuit encoding: left, SKIPF_LONG 3 past a
// trailing SKIP_LONG that itself jumps over an explicit POPV plus right
// (§4.3.1, §9).
func (c *Compiler) compileOr(env *Environment, n *ast.BinaryExpr) types.Type {
	left := c.compileExpr(env, n.Left)
	env.Code.EmitLong(SKIPF_LONG, 3, n.OpPos)
	addr := env.Code.EmitLong(SKIP_LONG, 0, n.OpPos)
	here := env.Code.Here()
	env.Code.EmitOp(POPV, n.OpPos)
	right := c.compileExpr(env, n.Right)
	if left.ID != types.Boolean || right.ID != types.Boolean {
		c.errorf(n.OpPos, "operands must be booleans")
	}
	c.patchSkip(env, addr, here, n.OpPos)
	return types.Scalar(types.Boolean)
}

func (c *Compiler) compileArith(env *Environment, n *ast.BinaryExpr) types.Type {
	left := c.compileExpr(env, n.Left)
	right := c.compileExpr(env, n.Right)
	if left.ID != types.Integer || right.ID != types.Integer {
		c.errorf(n.OpPos, "operands must be integers")
	}
	var op Opcode
	switch n.Op {
	case token.PLUS:
		op = ADD
	case token.MINUS:
		op = SUB
	case token.STAR:
		op = MUL
	default:
		op = DIV
	}
	env.Code.EmitOp(op, n.OpPos)
	return types.Scalar(types.Integer)
}

func (c *Compiler) compileEquality(env *Environment, n *ast.BinaryExpr) types.Type {
	left := c.compileExpr(env, n.Left)
	right := c.compileExpr(env, n.Right)
	if left.ID == types.Void || right.ID == types.Void {
		c.errorf(n.OpPos, "cannot compare void values")
	} else if !left.Equal(right) {
		c.errorf(n.OpPos, "operands must be of the same type")
	}
	env.Code.EmitByteByteArg(EQUA, byte(left.ID), byte(left.Base), n.OpPos)
	if n.Op == token.NEQ {
		env.Code.EmitOp(NOT, n.OpPos)
	}
	return types.Scalar(types.Boolean)
}

func (c *Compiler) compileRelational(env *Environment, n *ast.BinaryExpr) types.Type {
	left := c.compileExpr(env, n.Left)
	right := c.compileExpr(env, n.Right)
	if !types.Comparable(left, right) {
		c.errorf(n.OpPos, "operands must be both integers or both strings")
	}
	var op Opcode
	switch n.Op {
	case token.LT:
		op = LT
	case token.LE:
		op = LE
	case token.GT:
		op = GT
	default:
		op = GE
	}
	env.Code.EmitOp(op, n.OpPos)
	return types.Scalar(types.Boolean)
}

// compileCondExpr lowers `if ... then ... elsif ... else ... end` used as
// an expression: every arm pushes on the value stack, chained via forward
// SKIPF_LONG per arm with back-patched SKIP_LONG jumps to the end
// (§4.3.1).
func (c *Compiler) compileCondExpr(env *Environment, n *ast.CondExpr) types.Type {
	if len(n.Conds) > maxConditionalArms {
		c.errorf(n.Pos, "maximum if-elsif chain exceeded")
	}
	var toEnd []int
	var armType types.Type
	for i, cond := range n.Conds {
		condType := c.compileExpr(env, cond)
		if condType.ID != types.Boolean {
			c.errorf(n.Pos, "if condition must be boolean")
		}
		skipAddr := env.Code.EmitLong(SKIPF_LONG, 0, n.Pos)
		skipHere := env.Code.Here()
		env.Code.EmitOp(POPV, n.Pos)
		thenType := c.compileExpr(env, n.Thens[i])
		if i == 0 {
			armType = thenType
		} else if armType.ID != thenType.ID {
			c.errorf(n.Pos, "conditional expression arms must share a type")
		}
		toEnd = append(toEnd, env.Code.EmitLong(SKIP_LONG, 0, n.Pos))
		c.patchSkip(env, skipAddr, skipHere, n.Pos)
		env.Code.EmitOp(POPV, n.Pos)
	}
	elseType := c.compileExpr(env, n.Else)
	if len(n.Conds) == 0 {
		armType = elseType
	} else if armType.ID != elseType.ID {
		c.errorf(n.Pos, "conditional expression arms must share a type")
	}
	here := env.Code.Here()
	for _, addr := range toEnd {
		env.Code.PatchLong(addr, uint16(here-addr-2))
	}
	return armType
}

// patchSkip backpatches a forward SKIP_LONG/SKIPF_LONG whose uint16
// operand begins at addr, once the jump target (the current PC) is known,
// checking the 16-bit displacement bound (§3.6, §9).
func (c *Compiler) patchSkip(env *Environment, addr, operandEnd int, pos token.Pos) {
	d := env.Code.Here() - operandEnd
	if d < 0 || d > 0xFFFF {
		c.errorf(pos, "maximum skip size exceeded")
		return
	}
	env.Code.PatchLong(addr, uint16(d))
}

// compileStmt lowers one statement (§4.3.2).
func (c *Compiler) compileStmt(env *Environment, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		c.compileVarDecl(env, n)
	case *ast.AssignStmt:
		c.compileAssign(env, n)
	case *ast.IfStmt:
		c.compileIf(env, n)
	case *ast.WhileStmt:
		c.compileWhile(env, n)
	case *ast.RepeatStmt:
		c.compileRepeat(env, n)
	case *ast.ForStmt:
		c.compileFor(env, n)
	case *ast.BreakStmt:
		c.compileBreak(env, n)
	case *ast.ExitStmt:
		env.Code.EmitOp(HALT, n.Pos)
	case *ast.ReadStmt:
		c.compileRead(env, n)
	case *ast.WriteStmt:
		c.compileWrite(env, n)
	case *ast.CallStmt:
		c.compileCall(env, n.Call)
		// A call used as a statement always leaves exactly one result on the
		// value stack, void procedure or not; discard it so the stack does not
		// grow with every statement-call in a loop body.
		env.Code.EmitOp(POPV, n.Call.RParen)
	default:
		pos, _ := s.Span()
		c.errorf(pos, "unsupported statement")
	}
	c.resetPanic()
}

// compileBlock compiles a STAT_LIST, opening a new lexical block scope on
// entry and, on exit, popping every local declared at that depth both from
// the compile-time locals and via an emitted POPV/POPA per local (§4.3.2).
func (c *Compiler) compileBlock(env *Environment, block *ast.StmtList) {
	env.OpenScope()
	for _, s := range block.Stmts {
		c.compileStmt(env, s)
	}
	c.closeScopeAndPop(env, block.End)
}

func (c *Compiler) closeScopeAndPop(env *Environment, pos token.Pos) {
	popped := env.CloseScope()
	for _, l := range popped {
		if l.Type.ID == types.Vector {
			env.Code.EmitOp(POPA, pos)
		} else {
			env.Code.EmitOp(POPV, pos)
		}
	}
}

func (c *Compiler) compileAssign(env *Environment, n *ast.AssignStmt) {
	id, ok := identOf(n.Target)
	if !ok {
		c.errorf(n.Pos, "invalid assignment target")
		return
	}
	site, ok := c.lookupWritable(env, id)
	if !ok {
		return
	}
	rhsType := c.compileExpr(env, n.Value)
	lhsType := c.compileLHSPrelude(env, site, n.Target, n.Pos)
	if !lhsType.Equal(rhsType) {
		c.errorf(n.Pos, "mismatching types in assignment (%s = %s)", lhsType, rhsType)
	}
	c.emitSetForLHS(env, site, n.Target, n.Pos)
}

// compileIf lowers the if/elsif chain described in §4.3.2: per arm, a
// condition, a SKIPF_LONG over the arm body, and a trailing SKIP_LONG
// collected for a final patch to the chain's end, with an optional else
// arm.
func (c *Compiler) compileIf(env *Environment, n *ast.IfStmt) {
	if len(n.Conds) > maxConditionalArms {
		c.errorf(n.Pos, "maximum if-elsif chain exceeded")
	}
	var toEnd []int
	for i, cond := range n.Conds {
		condType := c.compileExpr(env, cond)
		if condType.ID != types.Boolean {
			c.errorf(n.Pos, "if condition must be boolean")
		}
		skipAddr := env.Code.EmitLong(SKIPF_LONG, 0, n.Pos)
		skipHere := env.Code.Here()
		env.Code.EmitOp(POPV, n.Pos)
		c.compileBlock(env, n.Blocks[i])
		toEnd = append(toEnd, env.Code.EmitLong(SKIP_LONG, 0, n.Pos))
		c.patchSkip(env, skipAddr, skipHere, n.Pos)
		env.Code.EmitOp(POPV, n.Pos)
	}
	if n.Else != nil {
		c.compileBlock(env, n.Else)
	}
	here := env.Code.Here()
	for _, addr := range toEnd {
		env.Code.PatchLong(addr, uint16(here-addr-2))
	}
}

// compileWhile lowers `while cond do body end` (§4.3.2).
func (c *Compiler) compileWhile(env *Environment, n *ast.WhileStmt) {
	env.EnterLoop()
	start := env.Code.Here()
	condType := c.compileExpr(env, n.Cond)
	if condType.ID != types.Boolean {
		c.errorf(n.Pos, "while condition must be boolean")
	}
	skipAddr := env.Code.EmitLong(SKIPF_LONG, 0, n.Pos)
	skipHere := env.Code.Here()
	env.Code.EmitOp(POPV, n.Pos)
	c.compileBlock(env, n.Body)
	c.emitSkipBack(env, start, n.Pos)
	c.patchSkip(env, skipAddr, skipHere, n.Pos)
	env.Code.EmitOp(POPV, n.Pos)
	c.patchBreaks(env, n.Pos)
}

// compileRepeat lowers `repeat body until cond` (§4.3.2): the condition is
// negated so that SKIPF_LONG jumps past the SKIP_BACK_LONG once the
// until-expression is true, and each path pops the condition.
func (c *Compiler) compileRepeat(env *Environment, n *ast.RepeatStmt) {
	env.EnterLoop()
	start := env.Code.Here()
	c.compileBlock(env, n.Body)
	condType := c.compileExpr(env, n.Cond)
	if condType.ID != types.Boolean {
		c.errorf(n.Pos, "until condition must be boolean")
	}
	env.Code.EmitOp(NOT, n.Pos)
	env.Code.EmitLong(SKIPF_LONG, 4, n.Pos) // over POPV and SKIP_BACK_LONG
	env.Code.EmitOp(POPV, n.Pos)
	c.emitSkipBack(env, start, n.Pos)
	env.Code.EmitOp(POPV, n.Pos)
	c.patchBreaks(env, n.Pos)
}

// emitSkipBack emits a SKIP_BACK_LONG to target, checking the 16-bit
// backward displacement bound (§3.6).
func (c *Compiler) emitSkipBack(env *Environment, target int, pos token.Pos) {
	addr := env.Code.EmitLong(SKIP_BACK_LONG, 0, pos)
	d := env.Code.Here() - target
	if d < 0 || d > 0xFFFF {
		c.errorf(pos, "maximum skip size exceeded")
		return
	}
	env.Code.PatchLong(addr, uint16(d))
}

// patchBreaks patches every break recorded at the loop depth being exited
// to target the current PC, then closes the loop (§4.3.2).
func (c *Compiler) patchBreaks(env *Environment, pos token.Pos) {
	_ = pos
	here := env.Code.Here()
	for _, addr := range env.ExitLoop() {
		env.Code.PatchLong(addr, uint16(here-addr-2))
	}
}

// compileFor lowers `for i := lo to hi do body end` (§4.3.2): a hidden,
// read-only local holds the upper bound so it is evaluated exactly once,
// and the loop variable i is writable only for the initializing assign and
// the per-iteration increment, read-only within the body.
func (c *Compiler) compileFor(env *Environment, n *ast.ForStmt) {
	env.EnterLoop()
	env.OpenScope()

	inttype := types.Scalar(types.Integer)
	if env.Redeclared(n.Var.Name) {
		c.errorf(n.Var.Pos, "variable already declared")
	}
	iLocal := env.Declare(n.Var.Name, inttype, PermRW)
	iIndex := len(env.Locals) - 1
	c.emitInt(env, 0, n.Pos) // reserve i's value-stack slot
	loType := c.compileExpr(env, n.Lo)
	if loType.ID != types.Integer {
		c.errorf(n.Pos, "for loop lower range must be an integer")
	}
	env.Code.EmitLongLong(SET_LOCAL_LONG, 0, uint16(iIndex), n.Pos)
	iLocal.Permissions = PermR

	env.Declare("$forcond", inttype, PermR)
	condIndex := len(env.Locals) - 1
	c.emitInt(env, 0, n.Pos) // reserve the upper bound's value-stack slot
	hiType := c.compileExpr(env, n.Hi)
	if hiType.ID != types.Integer {
		c.errorf(n.Pos, "for loop upper range must be an integer")
	}
	env.Code.EmitLongLong(SET_LOCAL_LONG, 0, uint16(condIndex), n.Pos)

	start := env.Code.Here()
	env.Code.EmitLongLong(GET_LOCAL_LONG, 0, uint16(iIndex), n.Pos)
	env.Code.EmitLongLong(GET_LOCAL_LONG, 0, uint16(condIndex), n.Pos)
	env.Code.EmitOp(LE, n.Pos)
	skipAddr := env.Code.EmitLong(SKIPF_LONG, 0, n.Pos)
	skipHere := env.Code.Here()
	env.Code.EmitOp(POPV, n.Pos)

	c.compileBlock(env, n.Body)

	env.Code.EmitLongLong(GET_LOCAL_LONG, 0, uint16(iIndex), n.Pos)
	c.emitInt(env, 1, n.Pos)
	env.Code.EmitOp(ADD, n.Pos)
	env.Code.EmitLongLong(SET_LOCAL_LONG, 0, uint16(iIndex), n.Pos)
	c.emitSkipBack(env, start, n.Pos)
	c.patchSkip(env, skipAddr, skipHere, n.Pos)
	env.Code.EmitOp(POPV, n.Pos)

	c.patchBreaks(env, n.Pos)
	c.closeScopeAndPop(env, n.Pos)
}

func (c *Compiler) compileBreak(env *Environment, n *ast.BreakStmt) {
	if env.LoopDepth == 0 {
		c.errorf(n.Pos, "cannot use break outside a loop")
		return
	}
	addr := env.Code.EmitLong(SKIP_LONG, 0, n.Pos)
	env.RecordBreak(addr)
}

func (c *Compiler) compileRead(env *Environment, n *ast.ReadStmt) {
	if len(n.Targets) > maxArity {
		c.errorf(n.Pos, "maximum arity exceeded")
	}
	for _, target := range n.Targets {
		id, ok := identOf(target)
		if !ok {
			c.errorf(n.Pos, "expected an lvalue")
			continue
		}
		site, ok := c.lookupWritable(env, id)
		if !ok {
			continue
		}
		lhsType := c.lhsType(env, site, target)
		if lhsType.ID == types.Vector {
			c.errorf(n.Pos, "reading a whole vector is not supported")
			continue
		}
		env.Code.EmitByteArg(READ, byte(lhsType.ID), n.Pos)
		c.compileLHSPrelude(env, site, target, n.Pos)
		c.emitSetForLHS(env, site, target, n.Pos)
	}
}

// lhsType computes an L-value's type without emitting any code: used
// where the type must be known before the value that will be stored is
// itself produced, as with READ's type-tagged opcode (§4.3.2).
func (c *Compiler) lhsType(env *Environment, site lvalueSite, target ast.Expr) types.Type {
	if site.local.Type.ID != types.Vector {
		return site.local.Type
	}
	return c.indexedType(env, len(indicesOf(target)), site.local.Type)
}

func (c *Compiler) compileWrite(env *Environment, n *ast.WriteStmt) {
	if len(n.Args) > maxArity {
		c.errorf(n.Pos, "maximum arity exceeded")
	}
	count := 0
	for _, a := range n.Args {
		t := c.compileExpr(env, a)
		if t.ID == types.Void {
			pos, _ := a.Span()
			c.errorf(pos, "cannot print a void value")
			continue
		}
		pos, _ := a.Span()
		env.Code.EmitByteArg(PUSH_BYTE, byte(t.ID), pos)
		env.Code.EmitByteArg(PUSH_BYTE, byte(t.Base), pos)
		count++
	}
	env.Code.EmitLong(WRITE, uint16(count), n.Pos)
	if n.Newline {
		env.Code.EmitOp(NEWLINE, n.Pos)
	}
}

// pendingWriteback records an out/inout call argument awaiting its
// post-CALL ARGSTACK_PEEK/emitSetForLHS/ARGSTACK_UNLOAD sequence.
type pendingWriteback struct {
	site     lvalueSite
	target   ast.Expr
	isVector bool
}

// compileCall lowers a procedure or function call (§4.3.7): every
// argument is pushed in order regardless of mode, then CALL, then every
// out/inout argument's write-back is drained from the VM's argument stack
// in ascending parameter order, mirroring the descending order the
// callee's return epilogue loaded them in (§4.3.6).
func (c *Compiler) compileCall(env *Environment, call *ast.CallExpr) types.Type {
	calleeType := c.compileIdent(env, call.Callee, false)
	if calleeType.ID != types.Function {
		c.errorf(call.Callee.Pos, "cannot call a non callable variable")
		return types.Scalar(types.Integer)
	}
	sig := calleeType.Signature
	if len(call.Args) != len(sig.Params) {
		c.errorf(call.Callee.Pos, "wrong number of arguments")
		return sig.Return
	}
	if len(call.Args) > maxArity {
		c.errorf(call.Callee.Pos, "maximum arity exceeded")
	}

	var pending []pendingWriteback
	for i, arg := range call.Args {
		param := sig.Params[i]
		pos, _ := arg.Span()

		argType := c.compileCallArg(env, arg)
		if !argType.Equal(param) {
			c.errorf(pos, "mismatching argument type")
		}

		if param.Modifier != types.ModOut && param.Modifier != types.ModInOut {
			continue
		}
		id, ok := identOf(arg)
		if !ok {
			c.errorf(pos, "expected an lvalue for an out or inout argument")
			continue
		}
		site, ok := c.lookupWritable(env, id)
		if !ok {
			continue
		}
		pending = append(pending, pendingWriteback{site: site, target: arg, isVector: param.ID == types.Vector})
	}

	env.Code.EmitLong(CALL, uint16(len(sig.Params)), call.RParen)

	for _, p := range pending {
		env.Code.EmitOp(ARGSTACK_PEEK, call.RParen)
		c.compileLHSPrelude(env, p.site, p.target, call.RParen)
		c.emitSetForLHS(env, p.site, p.target, call.RParen)
		isVector := byte(0)
		if p.isVector {
			isVector = 1
		}
		env.Code.EmitByteArg(ARGSTACK_UNLOAD, isVector, call.RParen)
	}

	return sig.Return
}

// compileCallArg emits one call argument: identifier arguments are passed
// by reference when their type is a vector, since the callee shares the
// caller's storage for in-place indexed writes and out/inout write-back
// (§4.3.3, §4.3.7).
func (c *Compiler) compileCallArg(env *Environment, arg ast.Expr) types.Type {
	if id, ok := arg.(*ast.IdentExpr); ok {
		return c.compileIdent(env, id.Name, false)
	}
	return c.compileExpr(env, arg)
}
