package lexer

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type TokenType int

const (
	EOF TokenType = iota
	LeftParen
	RightParen
	Quote
	Period
	Colon

	Number
	Boolean
	String
	Symbol
	Whitespace
	Comment
	Illegal
)

var tokenNames = [...]string{
	EOF:        "EOF",
	LeftParen:  "LeftParen",
	RightParen: "RightParen",
	Quote:      "Quote",
	Period:     "Period",
	Colon:      "Colon",
	Number:     "Number",
	Boolean:    "Boolean",
	String:     "String",
	Symbol:     "Symbol",
	Whitespace: "Whitespace",
	Comment:    "Comment",
	Illegal:    "Illegal",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var SingleCharTokens = map[rune]TokenType{
	'(':  LeftParen,
	')':  RightParen,
	'\'': Quote,
	'.':  Period,
	':':  Colon,
	eof:  EOF,
}

// Punctuation that may appear anywhere in a symbol, in addition to the
// XID identifier classes.
const symbolPunct = "+-*/<>=!?&%$^~_"

var Booleans = map[string]bool{
	"#t":     true,
	"#true":  true,
	"#f":     false,
	"#false": false,
}

type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) Min(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset < other.Offset {
		return p
	}
	return other
}

func (p Pos) Max(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset > other.Offset {
		return p
	}
	return other
}

type Span struct {
	Start Pos
	End   Pos
}

func (span Span) Add(other Span) Span {
	return Span{span.Start.Min(other.Start), span.End.Max(other.End)}
}

func (s Span) IsZero() bool {
	return s.Start.Column == 0 && s.End.Column == 0
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

type Token struct {
	LeadingTrivia []Token
	Type          TokenType
	Span          Span
	Data          string
}

func (t Token) String() string {
	if t.Data == "" {
		return fmt.Sprintf("%s:%s", t.Span, t.Type)
	}
	return fmt.Sprintf("%s:%s %q", t.Span, t.Type, t.Data)
}

func (a Token) ExactEq(b Token) bool {
	return a.Type == b.Type && a.Span == b.Span && a.Data == b.Data && slices.EqualFunc(a.LeadingTrivia, b.LeadingTrivia, Token.ExactEq)
}
