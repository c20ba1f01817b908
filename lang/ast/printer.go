package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented textual rendering of node and its children to w,
// for the CLI driver's --display-tree flag.
func Print(w io.Writer, node Node) {
	depth := 0
	var visitor VisitorFunc
	visitor = func(n Node, dir VisitDirection) Visitor {
		if dir == VisitExit {
			depth--
			return nil
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(n))
		depth++
		return visitor
	}
	Walk(visitor, node)
}

func describe(n Node) string {
	switch n := n.(type) {
	case *ModuleDecl:
		return fmt.Sprintf("ModuleDecl(%s %s)", moduleKindName(n.Kind), n.Name.Name)
	case *VarDecl:
		return "VarDecl"
	case *StmtList:
		return fmt.Sprintf("StmtList(%d)", len(n.Stmts))
	case *Ident:
		return fmt.Sprintf("Ident(%s)", n.Name)
	case *IdentExpr:
		return fmt.Sprintf("Ident(%s)", n.Name.Name)
	case *IntLit:
		return fmt.Sprintf("IntLit(%d)", n.Value)
	case *StringLit:
		return fmt.Sprintf("StringLit(%q)", n.Value)
	case *BoolLit:
		return fmt.Sprintf("BoolLit(%t)", n.Value)
	case *BinaryExpr:
		return fmt.Sprintf("BinaryExpr(%s)", n.Op)
	case *UnaryExpr:
		return fmt.Sprintf("UnaryExpr(%s)", n.Op)
	case *IndexExpr:
		return "IndexExpr"
	case *CallExpr:
		return fmt.Sprintf("CallExpr(%s)", n.Callee.Name)
	case *AssignStmt:
		return "AssignStmt"
	case *IfStmt:
		return "IfStmt"
	case *WhileStmt:
		return "WhileStmt"
	case *RepeatStmt:
		return "RepeatStmt"
	case *ForStmt:
		return fmt.Sprintf("ForStmt(%s)", n.Var.Name)
	case *BreakStmt:
		return "BreakStmt"
	case *ExitStmt:
		return "ExitStmt"
	case *ReturnStmt:
		return "ReturnStmt"
	case *ReadStmt:
		return "ReadStmt"
	case *WriteStmt:
		return "WriteStmt"
	case *CallStmt:
		return "CallStmt"
	case *VectorLit:
		return "VectorLit"
	case *CondExpr:
		return "CondExpr"
	case *ScalarType:
		return fmt.Sprintf("ScalarType(%s)", n.Kind)
	case *VectorType:
		return fmt.Sprintf("VectorType(%d)", n.Size)
	case *ParamDecl:
		return fmt.Sprintf("ParamDecl(%s)", n.Name.Name)
	default:
		return fmt.Sprintf("%T", n)
	}
}

func moduleKindName(k ModuleKind) string {
	switch k {
	case ModuleProgram:
		return "program"
	case ModuleFunction:
		return "function"
	default:
		return "procedure"
	}
}
