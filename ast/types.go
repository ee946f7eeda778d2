package ast

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Type is a type expression of the checked language.
type Type interface {
	isType()
	fmt.Stringer
}

var (
	_ Type = Base(0)
	_ Type = Pair{}
	_ Type = Proc{}
	_ Type = TypeVar{}
)

type Base int

const (
	Num Base = iota
	Bool
	Str
	Void
	Literal    // opaque type of quoted data
	EmptyTuple // type of the empty quoted list
)

func (b Base) String() string {
	switch b {
	case Num:
		return "number"
	case Bool:
		return "boolean"
	case Str:
		return "string"
	case Void:
		return "void"
	case Literal:
		return "literal"
	case EmptyTuple:
		return "Empty"
	default:
		panic("unreachable")
	}
}

func (Base) isType() {}

var BaseMap = map[string]Base{
	"number":  Num,
	"boolean": Bool,
	"string":  Str,
	"void":    Void,
	"literal": Literal,
	"Empty":   EmptyTuple,
}

type Pair struct {
	Car Type
	Cdr Type
}

func (Pair) isType() {}

func (p Pair) String() string {
	return fmt.Sprintf("(Pair %s %s)", p.Car, p.Cdr)
}

type Proc struct {
	Params []Type
	Return Type
}

func (Proc) isType() {}

func (p Proc) String() string {
	if len(p.Params) == 0 {
		return fmt.Sprintf("(Empty -> %s)", p.Return)
	}
	params := make([]string, len(p.Params))
	for i, t := range p.Params {
		params[i] = t.String()
	}
	return fmt.Sprintf("(%s -> %s)", strings.Join(params, " * "), p.Return)
}

// TypeVar is a placeholder type. IDs are unique for the lifetime of the
// process.
type TypeVar struct {
	ID int64
}

func (TypeVar) isType() {}

func (tv TypeVar) String() string {
	return fmt.Sprintf("T_%d", tv.ID)
}

var typeVarCounter atomic.Int64

// NewTypeVar returns a type variable that has never been returned before.
// It is safe for concurrent use.
func NewTypeVar() TypeVar {
	return TypeVar{ID: typeVarCounter.Add(1)}
}
