package compiler

import (
	"github.com/dolthub/swiss"

	"github.com/mna/yala/lang/types"
)

// Permission is the read/write capability of a Local (§3.3).
type Permission uint8

//nolint:revive
const (
	PermR Permission = iota
	PermW
	PermRW
)

func (p Permission) Writable() bool { return p == PermW || p == PermRW }

// Local is a compile-time local variable: {name, type, depth, permissions}
// (§3.3). Depth is the lexical nesting depth within its owning Environment
// (block scope), distinct from the Environment's own Index.
type Local struct {
	Name        string
	Type        types.Type
	Depth       int
	Permissions Permission
}

// Environment is one compile-time lexical scope, one per program, function,
// or procedure declaration (§3.4). Environments form a tree via Parent;
// Index is the lexical nesting depth of the declaration (parent.Index+1),
// not a creation-order id, so sibling declarations share the same Index.
// This is what lets the machine's frame "display" address an enclosing
// scope by depth alone (§4.4.1).
type Environment struct {
	Index  int
	Parent *Environment
	Code   *Bytecode

	Locals []*Local

	// ArgTypesArena and DimensionsArena back the variable-length parts
	// (parameter-type lists, vector dimension lists) of semantic types
	// declared in this environment. Because Go slices are views over a
	// shared backing array, a Type's Dimensions/Signature.Params slice is
	// already an "arena handle + start index" in effect: appending to the
	// arena and re-slicing it is the cheap clone the spec calls for,
	// without a separate indirection layer.
	ArgTypesArena   []types.Type
	DimensionsArena []int

	Depth     int
	LoopDepth int

	// BreakPatchList records the address of each unpatched SKIP_LONG
	// emitted by a `break` statement, paired with the loop depth it was
	// emitted at (§4.3.2).
	BreakPatchList []breakSite

	nameCache *swiss.Map[string, int] // name -> most recent index in Locals
}

type breakSite struct {
	addr  int
	depth int
}

// NewEnvironment creates a child environment of parent (nil for the root
// program environment) bound to code.
func NewEnvironment(index int, parent *Environment, code *Bytecode) *Environment {
	return &Environment{
		Index:     index,
		Parent:    parent,
		Code:      code,
		nameCache: swiss.NewMap[string, int](8),
	}
}

// Declare appends a new local to the environment's locals, at the
// environment's current block Depth. It does not check for redeclaration;
// callers must do so via Redeclared first.
func (e *Environment) Declare(name string, t types.Type, perm Permission) *Local {
	l := &Local{Name: name, Type: t, Depth: e.Depth, Permissions: perm}
	e.Locals = append(e.Locals, l)
	e.nameCache.Put(name, len(e.Locals)-1)
	return l
}

// Redeclared reports whether name is already declared at the environment's
// current block depth (§4.3.4: "redeclaration at the same depth in the
// same environment is an error").
func (e *Environment) Redeclared(name string) bool {
	for i := len(e.Locals) - 1; i >= 0; i-- {
		l := e.Locals[i]
		if l.Depth < e.Depth {
			break
		}
		if l.Name == name {
			return true
		}
	}
	return false
}

// Lookup searches the environment tree for name, starting in env and
// walking Locals from most recent to oldest before recursing to Parent
// with offset+1 (§4.3.4, "first match wins"). It returns the owning
// environment, the local, the offset (number of enclosing environments
// traversed, 0 meaning env itself), and whether it was found.
func Lookup(env *Environment, name string) (owner *Environment, local *Local, index, offset int, found bool) {
	for e, off := env, 0; e != nil; e, off = e.Parent, off+1 {
		if idx, ok := e.nameCache.Get(name); ok {
			// The cache only remembers the most recently declared index for
			// name; confirm it is still live (not pruned by a scope exit) and
			// fall back to a linear scan otherwise, since shadowing requires
			// visiting the chain in declaration order, which a plain name->index
			// map cannot express by itself.
			if idx < len(e.Locals) && e.Locals[idx].Name == name {
				return e, e.Locals[idx], idx, off, true
			}
		}
		for i := len(e.Locals) - 1; i >= 0; i-- {
			if e.Locals[i].Name == name {
				e.nameCache.Put(name, i)
				return e, e.Locals[i], i, off, true
			}
		}
	}
	return nil, nil, 0, 0, false
}

// OpenScope increments the block nesting depth on entry to a STAT_LIST
// (§4.3.2).
func (e *Environment) OpenScope() { e.Depth++ }

// CloseScope pops every local declared at the current depth, returning
// them (most recently declared first) so the caller can emit the matching
// POPV/POPA for each.
func (e *Environment) CloseScope() []*Local {
	var popped []*Local
	for len(e.Locals) > 0 && e.Locals[len(e.Locals)-1].Depth == e.Depth {
		n := len(e.Locals) - 1
		popped = append(popped, e.Locals[n])
		e.Locals = e.Locals[:n]
	}
	e.Depth--
	return popped
}

// EnterLoop increments the loop nesting depth and returns it.
func (e *Environment) EnterLoop() int {
	e.LoopDepth++
	return e.LoopDepth
}

// ExitLoop decrements the loop nesting depth and returns the break-patch
// addresses recorded at the loop depth being exited, removing them from
// BreakPatchList.
func (e *Environment) ExitLoop() []int {
	depth := e.LoopDepth
	var sites []int
	kept := e.BreakPatchList[:0]
	for _, s := range e.BreakPatchList {
		if s.depth == depth {
			sites = append(sites, s.addr)
		} else {
			kept = append(kept, s)
		}
	}
	e.BreakPatchList = kept
	e.LoopDepth--
	return sites
}

// RecordBreak records an unpatched break-jump site at the current loop
// depth.
func (e *Environment) RecordBreak(addr int) {
	e.BreakPatchList = append(e.BreakPatchList, breakSite{addr: addr, depth: e.LoopDepth})
}
