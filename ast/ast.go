package ast

import (
	"github.com/smasher164/l5/lexer"
)

// Node is a parsed expression or top-level form. The set of
// implementations is closed; consumers switch over them exhaustively.
type Node interface {
	Span() lexer.Span
	isNode()
}

var (
	_ Node = (*Program)(nil)
	_ Node = (*NumExp)(nil)
	_ Node = (*BoolExp)(nil)
	_ Node = (*StrExp)(nil)
	_ Node = (*LitExp)(nil)
	_ Node = (*PrimOp)(nil)
	_ Node = (*VarRef)(nil)
	_ Node = (*IfExp)(nil)
	_ Node = (*ProcExp)(nil)
	_ Node = (*AppExp)(nil)
	_ Node = (*LetExp)(nil)
	_ Node = (*LetrecExp)(nil)
	_ Node = (*DefineExp)(nil)
)

func spanOf(n any) lexer.Span {
	if n == nil {
		return lexer.Span{}
	}
	switch n := n.(type) {
	case Node:
		return n.Span()
	case []Node:
		if len(n) > 0 {
			return spanOf(n[0]).Add(spanOf(n[len(n)-1]))
		}
	}
	return lexer.Span{}
}

// Program is the ordered sequence of top-level forms of a source text.
type Program struct {
	Forms []Node
}

func (p *Program) Span() lexer.Span { return spanOf(p.Forms) }

type NumExp struct {
	Lit   lexer.Token
	Value float64
}

func (n *NumExp) Span() lexer.Span { return n.Lit.Span }

type BoolExp struct {
	Lit   lexer.Token
	Value bool
}

func (b *BoolExp) Span() lexer.Span { return b.Lit.Span }

type StrExp struct {
	Lit   lexer.Token
	Value string
}

func (s *StrExp) Span() lexer.Span { return s.Lit.Span }

// LitExp is a quoted datum, written 'datum or (quote datum).
type LitExp struct {
	Quote lexer.Token
	Value Value
	End   lexer.Span
}

func (l *LitExp) Span() lexer.Span { return l.Quote.Span.Add(l.End) }

// PrimOp is a reference to one of the built-in operators.
type PrimOp struct {
	Op lexer.Token
}

func (p *PrimOp) Name() string     { return p.Op.Data }
func (p *PrimOp) Span() lexer.Span { return p.Op.Span }

type VarRef struct {
	Var lexer.Token
}

func (v *VarRef) Name() string     { return v.Var.Data }
func (v *VarRef) Span() lexer.Span { return v.Var.Span }

// VarDecl is a binding occurrence with its declared type. Type is nil
// only for letrec bindings written without an annotation.
type VarDecl struct {
	Var  lexer.Token
	Type Type
	End  lexer.Span
}

func (v *VarDecl) Name() string     { return v.Var.Data }
func (v *VarDecl) Span() lexer.Span { return v.Var.Span.Add(v.End) }

type IfExp struct {
	LeftParen  lexer.Token
	Test       Node
	Then       Node
	Alt        Node
	RightParen lexer.Token
}

func (i *IfExp) Span() lexer.Span { return i.LeftParen.Span.Add(i.RightParen.Span) }

type ProcExp struct {
	LeftParen  lexer.Token
	Params     []*VarDecl
	Return     Type
	Body       []Node
	RightParen lexer.Token
}

func (p *ProcExp) Span() lexer.Span { return p.LeftParen.Span.Add(p.RightParen.Span) }

// ParamTypes returns the declared parameter types in order.
func (p *ProcExp) ParamTypes() []Type {
	ts := make([]Type, len(p.Params))
	for i, param := range p.Params {
		ts[i] = param.Type
	}
	return ts
}

type AppExp struct {
	LeftParen  lexer.Token
	Operator   Node
	Operands   []Node
	RightParen lexer.Token
}

func (a *AppExp) Span() lexer.Span { return a.LeftParen.Span.Add(a.RightParen.Span) }

type Binding struct {
	Var   *VarDecl
	Value Node
}

type LetExp struct {
	LeftParen  lexer.Token
	Bindings   []*Binding
	Body       []Node
	RightParen lexer.Token
}

func (l *LetExp) Span() lexer.Span { return l.LeftParen.Span.Add(l.RightParen.Span) }

type LetrecExp struct {
	LeftParen  lexer.Token
	Bindings   []*Binding
	Body       []Node
	RightParen lexer.Token
}

func (l *LetrecExp) Span() lexer.Span { return l.LeftParen.Span.Add(l.RightParen.Span) }

type DefineExp struct {
	LeftParen  lexer.Token
	Var        *VarDecl
	Value      Node
	RightParen lexer.Token
}

func (d *DefineExp) Span() lexer.Span { return d.LeftParen.Span.Add(d.RightParen.Span) }

func (*Program) isNode()   {}
func (*NumExp) isNode()    {}
func (*BoolExp) isNode()   {}
func (*StrExp) isNode()    {}
func (*LitExp) isNode()    {}
func (*PrimOp) isNode()    {}
func (*VarRef) isNode()    {}
func (*IfExp) isNode()     {}
func (*ProcExp) isNode()   {}
func (*AppExp) isNode()    {}
func (*LetExp) isNode()    {}
func (*LetrecExp) isNode() {}
func (*DefineExp) isNode() {}
