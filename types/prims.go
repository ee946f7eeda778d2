package types

import (
	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/parser"
)

var primSignatures = map[string]string{
	"+": "(number * number -> number)",
	"-": "(number * number -> number)",
	"*": "(number * number -> number)",
	"/": "(number * number -> number)",

	">": "(number * number -> boolean)",
	"<": "(number * number -> boolean)",
	"=": "(number * number -> boolean)",

	"and": "(boolean * boolean -> boolean)",
	"or":  "(boolean * boolean -> boolean)",
	"not": "(boolean -> boolean)",

	"number?":  "(T -> boolean)",
	"boolean?": "(T -> boolean)",
	"string?":  "(T -> boolean)",
	"list?":    "(T -> boolean)",
	"pair?":    "(T -> boolean)",
	"symbol?":  "(T -> boolean)",

	"eq?":      "(T1 * T2 -> boolean)",
	"string=?": "(T1 * T2 -> boolean)",

	"display": "(T -> void)",
	"newline": "(Empty -> void)",

	"cons": "(T1 * T2 -> (Pair T1 T2))",
	"car":  "((Pair T1 T2) -> T1)",
	"cdr":  "((Pair T1 T2) -> T2)",
}

// TypeOfPrim returns the signature of a primitive operator. Polymorphic
// signatures get new type variables on every call.
func TypeOfPrim(name string) (ast.Type, error) {
	sig, ok := primSignatures[name]
	if !ok {
		return nil, &Error{Kind: Unsupported, Msg: "primitive not implemented: " + name}
	}
	return parser.MustParseTExp(sig), nil
}
