package parser

import (
	"errors"
	"fmt"

	"github.com/smasher164/l5/lexer"
)

// Sexp is a raw s-expression, before special forms are recognized.
type Sexp interface {
	Span() lexer.Span
	isSexp()
}

var (
	_ Sexp = (*Atom)(nil)
	_ Sexp = (*List)(nil)
	_ Sexp = (*Quoted)(nil)
)

type Atom struct {
	Tok lexer.Token
}

func (a *Atom) Span() lexer.Span { return a.Tok.Span }

// IsSymbol reports whether a is the symbol name.
func (a *Atom) IsSymbol(name string) bool {
	return a.Tok.Type == lexer.Symbol && a.Tok.Data == name
}

// List is a parenthesized sequence. Tail is non-nil for dotted lists.
type List struct {
	LeftParen  lexer.Token
	Elems      []Sexp
	Tail       Sexp
	RightParen lexer.Token
}

func (l *List) Span() lexer.Span { return l.LeftParen.Span.Add(l.RightParen.Span) }

// Quoted is 'X.
type Quoted struct {
	Quote lexer.Token
	X     Sexp
}

func (q *Quoted) Span() lexer.Span { return q.Quote.Span.Add(q.X.Span()) }

func (*Atom) isSexp()   {}
func (*List) isSexp()   {}
func (*Quoted) isSexp() {}

// Error is a syntax error at a source location.
type Error struct {
	Span lexer.Span
	Msg  string
	// Incomplete is set when the input ended inside an unfinished form.
	Incomplete bool
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

func errorf(span lexer.Span, format string, args ...any) *Error {
	return &Error{Span: span, Msg: fmt.Sprintf(format, args...)}
}

// IsIncomplete reports whether err means that more input could complete
// the form being read.
func IsIncomplete(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Incomplete
}

type Lexer interface {
	Next() lexer.Token
}

type reader struct {
	l   Lexer
	tok lexer.Token
}

func (r *reader) next() {
	r.tok = r.l.Next()
}

// ReadSexps reads every s-expression up to the end of input.
func ReadSexps(l Lexer) ([]Sexp, error) {
	r := &reader{l: l}
	r.next()
	var sexps []Sexp
	for r.tok.Type != lexer.EOF {
		s, err := r.read()
		if err != nil {
			return nil, err
		}
		sexps = append(sexps, s)
	}
	if el, ok := l.(interface{ Err() error }); ok && el.Err() != nil {
		return nil, el.Err()
	}
	return sexps, nil
}

func (r *reader) read() (Sexp, error) {
	switch r.tok.Type {
	case lexer.LeftParen:
		return r.readList()
	case lexer.Quote:
		q := r.tok
		r.next()
		if r.tok.Type == lexer.EOF {
			return nil, &Error{Span: q.Span, Msg: "expected datum after quote", Incomplete: true}
		}
		x, err := r.read()
		if err != nil {
			return nil, err
		}
		return &Quoted{Quote: q, X: x}, nil
	case lexer.RightParen:
		return nil, errorf(r.tok.Span, "unexpected ')'")
	case lexer.Period:
		return nil, errorf(r.tok.Span, "unexpected '.'")
	case lexer.EOF:
		return nil, &Error{Span: r.tok.Span, Msg: "unexpected end of input", Incomplete: true}
	case lexer.Illegal:
		return nil, errorf(r.tok.Span, "%s", r.tok.Data)
	}
	a := &Atom{Tok: r.tok}
	r.next()
	return a, nil
}

func (r *reader) readList() (Sexp, error) {
	list := &List{LeftParen: r.tok}
	r.next()
	for {
		switch r.tok.Type {
		case lexer.RightParen:
			list.RightParen = r.tok
			r.next()
			return list, nil
		case lexer.EOF:
			return nil, &Error{Span: list.LeftParen.Span, Msg: "unclosed '('", Incomplete: true}
		case lexer.Period:
			if len(list.Elems) == 0 {
				return nil, errorf(r.tok.Span, "unexpected '.'")
			}
			r.next()
			if r.tok.Type == lexer.EOF {
				return nil, &Error{Span: list.LeftParen.Span, Msg: "unclosed '('", Incomplete: true}
			}
			tail, err := r.read()
			if err != nil {
				return nil, err
			}
			list.Tail = tail
			switch r.tok.Type {
			case lexer.RightParen:
				list.RightParen = r.tok
				r.next()
				return list, nil
			case lexer.EOF:
				return nil, &Error{Span: list.LeftParen.Span, Msg: "unclosed '('", Incomplete: true}
			}
			return nil, errorf(r.tok.Span, "expected ')' after dotted tail")
		}
		elem, err := r.read()
		if err != nil {
			return nil, err
		}
		list.Elems = append(list.Elems, elem)
	}
}
