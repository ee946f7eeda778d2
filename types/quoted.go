package types

import (
	"github.com/smasher164/l5/ast"
)

// TypeOfQuoted returns the type of a quoted datum. A scalar at the top of
// the datum is opaque Literal data; scalars nested inside pairs keep their
// own type.
func TypeOfQuoted(v ast.Value, isTopLevel bool) (ast.Type, error) {
	switch v := v.(type) {
	case ast.PairVal:
		car, err := TypeOfQuoted(v.Car, false)
		if err != nil {
			return nil, err
		}
		cdr, err := TypeOfQuoted(v.Cdr, false)
		if err != nil {
			return nil, err
		}
		return ast.Pair{Car: car, Cdr: cdr}, nil
	case ast.EmptyVal:
		return ast.EmptyTuple, nil
	case ast.SymbolVal:
		return ast.Literal, nil
	case ast.NumVal:
		return scalar(ast.Num, isTopLevel), nil
	case ast.BoolVal:
		return scalar(ast.Bool, isTopLevel), nil
	case ast.StrVal:
		return scalar(ast.Str, isTopLevel), nil
	}
	return nil, &Error{Kind: Unsupported, Msg: "unexpected quoted form"}
}

func scalar(t ast.Base, isTopLevel bool) ast.Type {
	if isTopLevel {
		return ast.Literal
	}
	return t
}
