package parser

import (
	"fmt"

	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/lexer"
)

// ParseTExp parses the text of a type expression. Each distinct type
// variable name in src gets one fresh variable.
func ParseTExp(src string) (ast.Type, error) {
	sexps, err := ReadSexps(lexer.FromString(src))
	if err != nil {
		return nil, err
	}
	if len(sexps) != 1 {
		return nil, &Error{Msg: fmt.Sprintf("expected exactly one type expression, found %d", len(sexps))}
	}
	return parseTExp(sexps[0], make(map[string]ast.TypeVar))
}

// MustParseTExp is like ParseTExp but panics on malformed input. It is
// meant for signatures written in source code.
func MustParseTExp(src string) ast.Type {
	t, err := ParseTExp(src)
	if err != nil {
		panic(fmt.Sprintf("parser: type expression %q: %v", src, err))
	}
	return t
}

func parseTExp(s Sexp, vars map[string]ast.TypeVar) (ast.Type, error) {
	switch s := s.(type) {
	case *Atom:
		if s.Tok.Type != lexer.Symbol {
			return nil, errorf(s.Span(), "invalid type expression %q", s.Tok.Data)
		}
		if base, ok := ast.BaseMap[s.Tok.Data]; ok {
			return base, nil
		}
		switch s.Tok.Data {
		case "Pair", "->", "*":
			return nil, errorf(s.Span(), "unexpected %q in type expression", s.Tok.Data)
		}
		tv, ok := vars[s.Tok.Data]
		if !ok {
			tv = ast.NewTypeVar()
			vars[s.Tok.Data] = tv
		}
		return tv, nil
	case *List:
		if s.Tail != nil {
			return nil, errorf(s.Span(), "dotted list in type expression")
		}
		if len(s.Elems) == 0 {
			return nil, errorf(s.Span(), "empty type expression")
		}
		if head, ok := s.Elems[0].(*Atom); ok && head.IsSymbol("Pair") {
			return parsePairTExp(s, vars)
		}
		return parseProcTExp(s, vars)
	}
	return nil, errorf(s.Span(), "invalid type expression")
}

func parsePairTExp(s *List, vars map[string]ast.TypeVar) (ast.Type, error) {
	if len(s.Elems) != 3 {
		return nil, errorf(s.Span(), "Pair takes exactly two types")
	}
	car, err := parseTExp(s.Elems[1], vars)
	if err != nil {
		return nil, err
	}
	cdr, err := parseTExp(s.Elems[2], vars)
	if err != nil {
		return nil, err
	}
	return ast.Pair{Car: car, Cdr: cdr}, nil
}

// (T1 * T2 -> R), (Empty -> R) and (-> R).
func parseProcTExp(s *List, vars map[string]ast.TypeVar) (ast.Type, error) {
	n := len(s.Elems)
	if n < 2 {
		return nil, errorf(s.Span(), "expected '->' in procedure type")
	}
	if arrow, ok := s.Elems[n-2].(*Atom); !ok || !arrow.IsSymbol("->") {
		return nil, errorf(s.Span(), "expected '->' before the return type")
	}
	ret, err := parseTExp(s.Elems[n-1], vars)
	if err != nil {
		return nil, err
	}
	paramSexps := s.Elems[:n-2]
	if len(paramSexps) == 1 {
		if a, ok := paramSexps[0].(*Atom); ok && a.IsSymbol("Empty") {
			paramSexps = nil
		}
	}
	params := []ast.Type{}
	for i, p := range paramSexps {
		if i%2 == 1 {
			if star, ok := p.(*Atom); !ok || !star.IsSymbol("*") {
				return nil, errorf(p.Span(), "expected '*' between parameter types")
			}
			continue
		}
		t, err := parseTExp(p, vars)
		if err != nil {
			return nil, err
		}
		params = append(params, t)
	}
	if len(paramSexps) > 0 && len(paramSexps)%2 == 0 {
		return nil, errorf(s.Span(), "expected parameter type after '*'")
	}
	return ast.Proc{Params: params, Return: ret}, nil
}
