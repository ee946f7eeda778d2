package parser

import (
	"io/fs"
	"strconv"

	"github.com/samber/lo"
	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/lexer"
)

// PrimitiveOps are the operator names that parse to *ast.PrimOp.
var PrimitiveOps = []string{
	"+", "-", "*", "/",
	">", "<", "=",
	"and", "or", "not",
	"number?", "boolean?", "string?", "list?", "pair?", "symbol?",
	"eq?", "string=?",
	"display", "newline",
	"cons", "car", "cdr",
}

var keywords = []string{"if", "lambda", "let", "letrec", "define", "quote"}

// ProgramWrapper is the optional head symbol of a whole-program form.
const ProgramWrapper = "L5"

func IsPrimitiveOp(name string) bool {
	return lo.Contains(PrimitiveOps, name)
}

// ParseProgram parses every top-level form produced by l.
func ParseProgram(l Lexer) (*ast.Program, error) {
	sexps, err := ReadSexps(l)
	if err != nil {
		return nil, err
	}
	if len(sexps) == 1 {
		if list, ok := sexps[0].(*List); ok && len(list.Elems) > 0 && list.Tail == nil {
			if head, ok := list.Elems[0].(*Atom); ok && head.IsSymbol(ProgramWrapper) {
				sexps = list.Elems[1:]
			}
		}
	}
	prog := &ast.Program{Forms: make([]ast.Node, 0, len(sexps))}
	for _, s := range sexps {
		n, err := parseExp(s)
		if err != nil {
			return nil, err
		}
		prog.Forms = append(prog.Forms, n)
	}
	return prog, nil
}

func ParseProgramString(src string) (*ast.Program, error) {
	return ParseProgram(lexer.FromString(src))
}

// ParseFile reads and parses filename from fsys. When the file was read
// but fails to parse, the returned File holds its source and a nil Program.
func ParseFile(fsys fs.FS, filename string) (*File, error) {
	l, err := lexer.NewLexer(fsys, filename)
	if err != nil {
		return nil, err
	}
	f := &File{Name: filename, Source: l.Source()}
	f.Program, err = ParseProgram(l)
	return f, err
}

// ParseExp parses src, which must hold exactly one expression.
func ParseExp(src string) (ast.Node, error) {
	sexps, err := ReadSexps(lexer.FromString(src))
	if err != nil {
		return nil, err
	}
	switch len(sexps) {
	case 0:
		return nil, &Error{Msg: "expected an expression", Incomplete: true}
	case 1:
		return parseExp(sexps[0])
	}
	return nil, errorf(sexps[1].Span(), "unexpected form after expression")
}

func parseExp(s Sexp) (ast.Node, error) {
	switch s := s.(type) {
	case *Atom:
		return parseAtom(s)
	case *Quoted:
		v, err := parseDatum(s.X)
		if err != nil {
			return nil, err
		}
		return &ast.LitExp{Quote: s.Quote, Value: v, End: s.X.Span()}, nil
	case *List:
		return parseCompound(s)
	}
	return nil, errorf(s.Span(), "unexpected form")
}

func parseAtom(a *Atom) (ast.Node, error) {
	tok := a.Tok
	switch tok.Type {
	case lexer.Number:
		f, err := strconv.ParseFloat(tok.Data, 64)
		if err != nil {
			return nil, errorf(tok.Span, "invalid number %q", tok.Data)
		}
		return &ast.NumExp{Lit: tok, Value: f}, nil
	case lexer.Boolean:
		return &ast.BoolExp{Lit: tok, Value: lexer.Booleans[tok.Data]}, nil
	case lexer.String:
		s, err := strconv.Unquote(tok.Data)
		if err != nil {
			return nil, errorf(tok.Span, "invalid string literal %s", tok.Data)
		}
		return &ast.StrExp{Lit: tok, Value: s}, nil
	case lexer.Symbol:
		if IsPrimitiveOp(tok.Data) {
			return &ast.PrimOp{Op: tok}, nil
		}
		if lo.Contains(keywords, tok.Data) {
			return nil, errorf(tok.Span, "unexpected keyword %q", tok.Data)
		}
		return &ast.VarRef{Var: tok}, nil
	case lexer.Colon:
		return nil, errorf(tok.Span, "unexpected ':' outside of a type annotation")
	}
	return nil, errorf(tok.Span, "unexpected token %s", tok.Type)
}

func parseCompound(s *List) (ast.Node, error) {
	if s.Tail != nil {
		return nil, errorf(s.Span(), "dotted list is not an expression")
	}
	if len(s.Elems) == 0 {
		return nil, errorf(s.Span(), "empty combination")
	}
	if head, ok := s.Elems[0].(*Atom); ok && head.Tok.Type == lexer.Symbol {
		switch head.Tok.Data {
		case "if":
			return parseIf(s)
		case "lambda":
			return parseProc(s)
		case "let":
			bindings, body, err := parseLetParts(s, false)
			if err != nil {
				return nil, err
			}
			return &ast.LetExp{LeftParen: s.LeftParen, Bindings: bindings, Body: body, RightParen: s.RightParen}, nil
		case "letrec":
			bindings, body, err := parseLetParts(s, true)
			if err != nil {
				return nil, err
			}
			return &ast.LetrecExp{LeftParen: s.LeftParen, Bindings: bindings, Body: body, RightParen: s.RightParen}, nil
		case "define":
			return parseDefine(s)
		case "quote":
			if len(s.Elems) != 2 {
				return nil, errorf(s.Span(), "quote takes exactly one datum")
			}
			v, err := parseDatum(s.Elems[1])
			if err != nil {
				return nil, err
			}
			return &ast.LitExp{Quote: head.Tok, Value: v, End: s.RightParen.Span}, nil
		}
	}
	return parseApp(s)
}

func parseIf(s *List) (ast.Node, error) {
	if len(s.Elems) != 4 {
		return nil, errorf(s.Span(), "if takes exactly a test, a consequent and an alternative")
	}
	parts, err := parseExps(s.Elems[1:])
	if err != nil {
		return nil, err
	}
	return &ast.IfExp{LeftParen: s.LeftParen, Test: parts[0], Then: parts[1], Alt: parts[2], RightParen: s.RightParen}, nil
}

// (lambda ((x : T) ...) : R body ...)
func parseProc(s *List) (ast.Node, error) {
	if len(s.Elems) < 4 {
		return nil, errorf(s.Span(), "lambda requires a parameter list and a return type")
	}
	paramList, ok := s.Elems[1].(*List)
	if !ok || paramList.Tail != nil {
		return nil, errorf(s.Elems[1].Span(), "expected parameter list")
	}
	if !isColon(s.Elems[2]) {
		return nil, errorf(s.Elems[2].Span(), "expected ':' and a return type after the parameter list")
	}
	vars := make(map[string]ast.TypeVar)
	params := make([]*ast.VarDecl, 0, len(paramList.Elems))
	seen := make(map[string]struct{})
	for _, p := range paramList.Elems {
		decl, err := parseDecl(p, vars, false)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[decl.Name()]; dup {
			return nil, errorf(decl.Span(), "duplicate parameter %q", decl.Name())
		}
		seen[decl.Name()] = struct{}{}
		params = append(params, decl)
	}
	ret, err := parseTExp(s.Elems[3], vars)
	if err != nil {
		return nil, err
	}
	body, err := parseExps(s.Elems[4:])
	if err != nil {
		return nil, err
	}
	return &ast.ProcExp{LeftParen: s.LeftParen, Params: params, Return: ret, Body: body, RightParen: s.RightParen}, nil
}

func parseApp(s *List) (ast.Node, error) {
	parts, err := parseExps(s.Elems)
	if err != nil {
		return nil, err
	}
	return &ast.AppExp{LeftParen: s.LeftParen, Operator: parts[0], Operands: parts[1:], RightParen: s.RightParen}, nil
}

// (let (binding ...) body ...), where a binding is ((x : T) e) or (x : T e).
// Letrec bindings may also be written (x e).
func parseLetParts(s *List, rec bool) ([]*ast.Binding, []ast.Node, error) {
	keyword := s.Elems[0].(*Atom).Tok.Data
	if len(s.Elems) < 2 {
		return nil, nil, errorf(s.Span(), "%s requires a binding list", keyword)
	}
	bindingList, ok := s.Elems[1].(*List)
	if !ok || bindingList.Tail != nil {
		return nil, nil, errorf(s.Elems[1].Span(), "expected %s binding list", keyword)
	}
	bindings := make([]*ast.Binding, 0, len(bindingList.Elems))
	seen := make(map[string]struct{})
	for _, b := range bindingList.Elems {
		binding, err := parseBinding(b, rec)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := seen[binding.Var.Name()]; dup {
			return nil, nil, errorf(binding.Var.Span(), "duplicate binding %q", binding.Var.Name())
		}
		seen[binding.Var.Name()] = struct{}{}
		bindings = append(bindings, binding)
	}
	body, err := parseExps(s.Elems[2:])
	if err != nil {
		return nil, nil, err
	}
	return bindings, body, nil
}

func parseBinding(s Sexp, untypedOK bool) (*ast.Binding, error) {
	list, ok := s.(*List)
	if !ok || list.Tail != nil {
		return nil, errorf(s.Span(), "expected binding")
	}
	var decl *ast.VarDecl
	var valueSexp Sexp
	switch len(list.Elems) {
	case 2:
		var err error
		decl, err = parseDecl(list.Elems[0], make(map[string]ast.TypeVar), untypedOK)
		if err != nil {
			return nil, err
		}
		valueSexp = list.Elems[1]
	case 4:
		name, err := parseName(list.Elems[0])
		if err != nil {
			return nil, err
		}
		if !isColon(list.Elems[1]) {
			return nil, errorf(list.Elems[1].Span(), "expected ':' after %q", name.Data)
		}
		t, err := parseTExp(list.Elems[2], make(map[string]ast.TypeVar))
		if err != nil {
			return nil, err
		}
		decl = &ast.VarDecl{Var: name, Type: t, End: list.Elems[2].Span()}
		valueSexp = list.Elems[3]
	default:
		return nil, errorf(list.Span(), "malformed binding")
	}
	value, err := parseExp(valueSexp)
	if err != nil {
		return nil, err
	}
	return &ast.Binding{Var: decl, Value: value}, nil
}

// (define (x : T) e) or (define x : T e)
func parseDefine(s *List) (ast.Node, error) {
	var decl *ast.VarDecl
	var valueSexp Sexp
	switch len(s.Elems) {
	case 3:
		var err error
		decl, err = parseDecl(s.Elems[1], make(map[string]ast.TypeVar), false)
		if err != nil {
			return nil, err
		}
		valueSexp = s.Elems[2]
	case 5:
		name, err := parseName(s.Elems[1])
		if err != nil {
			return nil, err
		}
		if !isColon(s.Elems[2]) {
			return nil, errorf(s.Elems[2].Span(), "expected ':' after %q", name.Data)
		}
		t, err := parseTExp(s.Elems[3], make(map[string]ast.TypeVar))
		if err != nil {
			return nil, err
		}
		decl = &ast.VarDecl{Var: name, Type: t, End: s.Elems[3].Span()}
		valueSexp = s.Elems[4]
	default:
		return nil, errorf(s.Span(), "define requires a typed name and a value")
	}
	value, err := parseExp(valueSexp)
	if err != nil {
		return nil, err
	}
	return &ast.DefineExp{LeftParen: s.LeftParen, Var: decl, Value: value, RightParen: s.RightParen}, nil
}

// parseDecl parses (x : T), or a bare x when untypedOK is set.
func parseDecl(s Sexp, vars map[string]ast.TypeVar, untypedOK bool) (*ast.VarDecl, error) {
	if a, ok := s.(*Atom); ok {
		name, err := parseName(a)
		if err != nil {
			return nil, err
		}
		if !untypedOK {
			return nil, errorf(a.Span(), "missing type annotation for %q", name.Data)
		}
		return &ast.VarDecl{Var: name, End: name.Span}, nil
	}
	list, ok := s.(*List)
	if !ok || list.Tail != nil || len(list.Elems) != 3 {
		return nil, errorf(s.Span(), "expected (name : type)")
	}
	name, err := parseName(list.Elems[0])
	if err != nil {
		return nil, err
	}
	if !isColon(list.Elems[1]) {
		return nil, errorf(list.Elems[1].Span(), "expected ':' after %q", name.Data)
	}
	t, err := parseTExp(list.Elems[2], vars)
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{Var: name, Type: t, End: list.RightParen.Span}, nil
}

func parseName(s Sexp) (lexer.Token, error) {
	a, ok := s.(*Atom)
	if !ok || a.Tok.Type != lexer.Symbol {
		return lexer.Token{}, errorf(s.Span(), "expected a variable name")
	}
	if lo.Contains(keywords, a.Tok.Data) {
		return lexer.Token{}, errorf(a.Span(), "cannot bind keyword %q", a.Tok.Data)
	}
	return a.Tok, nil
}

func parseExps(sexps []Sexp) ([]ast.Node, error) {
	nodes := make([]ast.Node, 0, len(sexps))
	for _, s := range sexps {
		n, err := parseExp(s)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func isColon(s Sexp) bool {
	a, ok := s.(*Atom)
	return ok && a.Tok.Type == lexer.Colon
}

// parseDatum converts quoted text into a value.
func parseDatum(s Sexp) (ast.Value, error) {
	switch s := s.(type) {
	case *Atom:
		tok := s.Tok
		switch tok.Type {
		case lexer.Number:
			f, err := strconv.ParseFloat(tok.Data, 64)
			if err != nil {
				return nil, errorf(tok.Span, "invalid number %q", tok.Data)
			}
			return ast.NumVal(f), nil
		case lexer.Boolean:
			return ast.BoolVal(lexer.Booleans[tok.Data]), nil
		case lexer.String:
			str, err := strconv.Unquote(tok.Data)
			if err != nil {
				return nil, errorf(tok.Span, "invalid string literal %s", tok.Data)
			}
			return ast.StrVal(str), nil
		case lexer.Symbol:
			return ast.SymbolVal(tok.Data), nil
		case lexer.Colon:
			return ast.SymbolVal(":"), nil
		}
		return nil, errorf(tok.Span, "unexpected token %s in quoted datum", tok.Type)
	case *Quoted:
		v, err := parseDatum(s.X)
		if err != nil {
			return nil, err
		}
		return ast.List(ast.SymbolVal("quote"), v), nil
	case *List:
		var tail ast.Value = ast.EmptyVal{}
		if s.Tail != nil {
			var err error
			if tail, err = parseDatum(s.Tail); err != nil {
				return nil, err
			}
		}
		elems := make([]ast.Value, len(s.Elems))
		for i, e := range s.Elems {
			v, err := parseDatum(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		for i := len(elems) - 1; i >= 0; i-- {
			tail = ast.PairVal{Car: elems[i], Cdr: tail}
		}
		return tail, nil
	}
	return nil, errorf(s.Span(), "unexpected quoted form")
}
