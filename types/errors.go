package types

import (
	"fmt"

	"github.com/smasher164/l5/lexer"
)

// Kind classifies a typing failure.
type Kind int

const (
	UnboundIdentifier Kind = iota + 1
	TypeMismatch
	ArityMismatch
	NotProcedure
	Unsupported
	Structural
)

func (k Kind) String() string {
	switch k {
	case UnboundIdentifier:
		return "unbound identifier"
	case TypeMismatch:
		return "type mismatch"
	case ArityMismatch:
		return "arity mismatch"
	case NotProcedure:
		return "not a procedure"
	case Unsupported:
		return "unsupported"
	case Structural:
		return "structural"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinels for errors.Is.
var (
	ErrUnboundIdentifier = &Error{Kind: UnboundIdentifier}
	ErrTypeMismatch      = &Error{Kind: TypeMismatch}
	ErrArityMismatch     = &Error{Kind: ArityMismatch}
	ErrNotProcedure      = &Error{Kind: NotProcedure}
	ErrUnsupported       = &Error{Kind: Unsupported}
	ErrStructural        = &Error{Kind: Structural}
)

// Error is a typing failure. Span is the location of the offending
// expression, when it has one.
type Error struct {
	Kind Kind
	Msg  string
	Span lexer.Span
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func errorf(kind Kind, span lexer.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Span: span}
}
