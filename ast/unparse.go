package ast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sanity-io/litter"
)

// Unparse renders n back to concrete syntax.
func Unparse(n Node) string {
	var sb strings.Builder
	unparse(&sb, n)
	return sb.String()
}

func unparse(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Program:
		for i, form := range n.Forms {
			if i > 0 {
				sb.WriteByte('\n')
			}
			unparse(sb, form)
		}
	case *NumExp:
		sb.WriteString(FormatNumber(n.Value))
	case *BoolExp:
		sb.WriteString(BoolVal(n.Value).String())
	case *StrExp:
		sb.WriteString(strconv.Quote(n.Value))
	case *LitExp:
		sb.WriteByte('\'')
		sb.WriteString(n.Value.String())
	case *PrimOp:
		sb.WriteString(n.Name())
	case *VarRef:
		sb.WriteString(n.Name())
	case *IfExp:
		sb.WriteString("(if ")
		unparse(sb, n.Test)
		sb.WriteByte(' ')
		unparse(sb, n.Then)
		sb.WriteByte(' ')
		unparse(sb, n.Alt)
		sb.WriteByte(')')
	case *ProcExp:
		sb.WriteString("(lambda (")
		for i, p := range n.Params {
			if i > 0 {
				sb.WriteByte(' ')
			}
			unparseDecl(sb, p)
		}
		fmt.Fprintf(sb, ") : %s", n.Return)
		unparseBody(sb, n.Body)
	case *AppExp:
		sb.WriteByte('(')
		unparse(sb, n.Operator)
		for _, rand := range n.Operands {
			sb.WriteByte(' ')
			unparse(sb, rand)
		}
		sb.WriteByte(')')
	case *LetExp:
		sb.WriteString("(let ")
		unparseBindings(sb, n.Bindings)
		unparseBody(sb, n.Body)
	case *LetrecExp:
		sb.WriteString("(letrec ")
		unparseBindings(sb, n.Bindings)
		unparseBody(sb, n.Body)
	case *DefineExp:
		sb.WriteString("(define ")
		unparseDecl(sb, n.Var)
		sb.WriteByte(' ')
		unparse(sb, n.Value)
		sb.WriteByte(')')
	case nil:
		sb.WriteString("<nil>")
	default:
		panic(fmt.Sprintf("unreachable: %T", n))
	}
}

func unparseDecl(sb *strings.Builder, v *VarDecl) {
	if v.Type == nil {
		sb.WriteString(v.Name())
		return
	}
	fmt.Fprintf(sb, "(%s : %s)", v.Name(), v.Type)
}

func unparseBindings(sb *strings.Builder, bindings []*Binding) {
	sb.WriteByte('(')
	for i, b := range bindings {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('(')
		unparseDecl(sb, b.Var)
		sb.WriteByte(' ')
		unparse(sb, b.Value)
		sb.WriteByte(')')
	}
	sb.WriteByte(')')
}

// unparseBody writes the body forms and the closing paren of the
// enclosing special form.
func unparseBody(sb *strings.Builder, body []Node) {
	for _, n := range body {
		sb.WriteByte(' ')
		unparse(sb, n)
	}
	sb.WriteByte(')')
}

var dumper = litter.Options{
	HidePrivateFields: true,
	FieldExclusions:   regexp.MustCompile(`^(LeadingTrivia|Span|End|LeftParen|RightParen)$`),
}

// Dump returns a structural dump of n for debugging.
func Dump(n Node) string {
	return dumper.Sdump(n)
}

// PrintAST writes a structural dump of root to standard output.
func PrintAST(root Node) {
	fmt.Println(Dump(root))
}
