package ast

import (
	"strconv"
	"strings"
)

// Value is a quoted datum.
type Value interface {
	isValue()
	String() string
}

var (
	_ Value = NumVal(0)
	_ Value = BoolVal(false)
	_ Value = StrVal("")
	_ Value = SymbolVal("")
	_ Value = EmptyVal{}
	_ Value = PairVal{}
)

type NumVal float64

func (NumVal) isValue()         {}
func (n NumVal) String() string { return FormatNumber(float64(n)) }

type BoolVal bool

func (BoolVal) isValue() {}
func (b BoolVal) String() string {
	if b {
		return "#t"
	}
	return "#f"
}

type StrVal string

func (StrVal) isValue()         {}
func (s StrVal) String() string { return strconv.Quote(string(s)) }

type SymbolVal string

func (SymbolVal) isValue()         {}
func (s SymbolVal) String() string { return string(s) }

type EmptyVal struct{}

func (EmptyVal) isValue()       {}
func (EmptyVal) String() string { return "()" }

type PairVal struct {
	Car Value
	Cdr Value
}

func (PairVal) isValue() {}

func (p PairVal) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(p.Car.String())
	rest := p.Cdr
	for {
		switch r := rest.(type) {
		case PairVal:
			sb.WriteByte(' ')
			sb.WriteString(r.Car.String())
			rest = r.Cdr
			continue
		case EmptyVal:
		default:
			sb.WriteString(" . ")
			sb.WriteString(r.String())
		}
		break
	}
	sb.WriteByte(')')
	return sb.String()
}

// List builds a proper list from vals.
func List(vals ...Value) Value {
	var v Value = EmptyVal{}
	for i := len(vals) - 1; i >= 0; i-- {
		v = PairVal{vals[i], v}
	}
	return v
}

func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
