package types_test

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/parser"
	"github.com/smasher164/l5/types"
)

func TestTypeOfExpression(t *testing.T) {
	run := func(src, expected string) {
		t.Run(src, func(t *testing.T) {
			got, err := types.TypeOfExpression(src)
			if err != nil {
				t.Fatal(err)
			}
			if got != expected {
				t.Errorf("got %s, expected %s", got, expected)
			}
		})
	}

	run("5", "number")
	run("#t", "boolean")
	run(`"s"`, "string")
	run("'5", "literal")
	run("'a", "literal")
	run("'(5 . 6)", "(Pair number number)")
	run("'()", "Empty")
	run("'(1 #t)", "(Pair number (Pair boolean Empty))")
	run(`'(a "s")`, "(Pair literal (Pair string Empty))")
	run("(if #t 1 2)", "number")
	run("(lambda ((x : number) (y : boolean)) : number x)", "(number * boolean -> number)")
	run("(lambda () : void (newline))", "(Empty -> void)")
	run("(lambda ((f : (number -> boolean))) : boolean (f 1))", "((number -> boolean) -> boolean)")
	run("((lambda ((x : number) (y : number)) : number (+ x y)) 1 2)", "number")
	run("(car (cons 1 2))", "number")
	run("(cdr (cons 1 2))", "number")
	run("(car (cons 1 #t))", "number")
	run("(cdr (cons 1 #t))", "boolean")
	run("(cons 1 '(2))", "(Pair number (Pair number Empty))")
	run("(car (cdr (cons 1 (cons \"a\" #f))))", "string")
	run("(eq? 1 \"a\")", "boolean")
	run("(number? '5)", "boolean")
	run(`(display "hi")`, "void")
	run("(not (and #t (or #f (< 1 2))))", "boolean")
	run("((lambda ((x : T)) : T x) 5)", "number")
	run(`(let ((x : number 1) (y : string "a")) y)`, "string")
	run("(let ((f : (number -> number) (lambda ((x : number)) : number x))) (f 3))", "number")
	run("(let ((x : number 1)) (let ((x : string \"a\")) x))", "string")
	run("(letrec ((fact : (number -> number) (lambda ((n : number)) : number (if (= n 0) 1 (* n (fact (- n 1))))))) (fact 5))", "number")
	run("(letrec ((ev (lambda ((n : number)) : boolean (if (= n 0) #t (od (- n 1))))) (od (lambda ((n : number)) : boolean (if (= n 0) #f (ev (- n 1)))))) (ev 10))", "boolean")
	run("(define (x : number) 5)", "void")
}

func TestTypeOfExpressionErrors(t *testing.T) {
	run := func(src string, kind error, msg string) {
		t.Run(src, func(t *testing.T) {
			got, err := types.TypeOfExpression(src)
			if err == nil {
				t.Fatalf("expected error, got type %s", got)
			}
			if !errors.Is(err, kind) {
				t.Errorf("got %v, expected kind %v", err, kind)
			}
			if !strings.Contains(err.Error(), msg) {
				t.Errorf("got %q, expected it to contain %q", err, msg)
			}
		})
	}

	run("(if 5 1 2)", types.ErrTypeMismatch, "expected boolean, got number")
	run(`(if #t 1 "a")`, types.ErrTypeMismatch, "expected number, got string")
	run("x", types.ErrUnboundIdentifier, "unbound identifier: x")
	run("((lambda ((x : number) (y : number)) : number x) 1)", types.ErrArityMismatch, "wrong parameter numbers")
	run("(+ 1)", types.ErrArityMismatch, "expects 2, got 1")
	run("(cons 1)", types.ErrArityMismatch, "wrong parameter numbers")
	run("(5 1)", types.ErrNotProcedure, "application of non-procedure 5 of type number")
	run("(+ 1 #t)", types.ErrTypeMismatch, "expected number, got boolean in #t")
	run(`(+ #t "a")`, types.ErrTypeMismatch, "expected number, got boolean in #t")
	run("(car 5)", types.ErrTypeMismatch, "got number in 5")
	run("(letrec ((x : number 5)) x)", types.ErrUnsupported, "letrec only supports procedure bindings")
	run("(letrec ((x 5)) x)", types.ErrUnsupported, "letrec only supports procedure bindings")
	run("(letrec ((f : (number -> boolean) (lambda ((n : number)) : number n))) f)", types.ErrTypeMismatch, "expected (number -> boolean), got (number -> number)")
	run("(letrec ((f (lambda ((n : number)) : boolean n))) f)", types.ErrTypeMismatch, "expected boolean, got number")
	run("(lambda ((x : number)) : boolean x)", types.ErrTypeMismatch, "expected boolean, got number")
	run("(let ((x : number 1) (y : number x)) y)", types.ErrUnboundIdentifier, "unbound identifier: x")
	run(`(let ((x : number "a")) x)`, types.ErrTypeMismatch, "expected number, got string")
	run("(lambda () : number)", types.ErrStructural, "empty body")
	run("(let ((x : number 1)) (define (y : number) 2) y)", types.ErrUnsupported, "define is only allowed at top level")
	run("(let ((v : void (define (x : number) 5))) 1)", types.ErrUnsupported, "define is only allowed at top level")
	run("((lambda ((v : void)) : number 1) (define (x : number) 5))", types.ErrUnsupported, "define is only allowed at top level")
	run("(if #t (define (x : number) 5) 1)", types.ErrUnsupported, "define is only allowed at top level")
	run("(define (x : string) 5)", types.ErrTypeMismatch, "expected string, got number")
	run("(lambda ((x : number)) : number (+ x y))", types.ErrUnboundIdentifier, "unbound identifier: y")
}

func TestTypeOfNil(t *testing.T) {
	_, err := new(types.Checker).TypeOf(nil, types.EmptyEnv())
	if !errors.Is(err, types.ErrUnsupported) {
		t.Fatalf("got %v, expected kind %v", err, types.ErrUnsupported)
	}
	if !strings.Contains(err.Error(), "unknown type: <nil>") {
		t.Errorf("unexpected message %q", err)
	}
}

func TestErrorSpan(t *testing.T) {
	_, err := types.TypeOfExpression("(if 5 1 2)")
	var terr *types.Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *types.Error, got %v", err)
	}
	if terr.Span.Start.Offset != 4 {
		t.Errorf("expected error at offset 4, got %s", terr.Span)
	}
	if got, expected := err.Error(), "1:5: type mismatch: expected boolean, got number in 5"; got != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}
}

func TestParseErrorPassthrough(t *testing.T) {
	_, err := types.TypeOfExpression("(+ 1")
	if !parser.IsIncomplete(err) {
		t.Errorf("expected parser error, got %v", err)
	}
	_, err = types.TypeOfProgram("(define x 5)")
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Errorf("expected *parser.Error, got %v", err)
	}
}

func TestTypeOfProgram(t *testing.T) {
	run := func(name, src, expected string) {
		t.Run(name, func(t *testing.T) {
			got, err := types.TypeOfProgram(src)
			if err != nil {
				t.Fatal(err)
			}
			if got != expected {
				t.Errorf("got %s, expected %s", got, expected)
			}
		})
	}

	run("define then use", "(define (x : number) 5) (+ x 1)", "number")
	run("wrapped", "(L5 (define (x : number) 5) (+ x 1))", "number")
	run("define last", "(define (x : number) 5)", "void")
	run("chain", `
		(define (f : (number -> number)) (lambda ((n : number)) : number (* n 2)))
		(define (y : number) (f 3))
		(= y 6)`, "boolean")
	run("redefine", `(define (x : number) 1) (define (x : string) "a") x`, "string")
	run("expression forms discarded", `"a" 1 #t`, "boolean")
	run("self application", identity+"((id id) 5)", "number")
	run("self application at string", identity+`((id id) "s")`, "string")
	run("generic at two types", identity+`(id 5) (id "a")`, "string")
}

const identity = "(define (id : (T -> T)) (lambda ((x : T)) : T x))\n"

func TestSelfApplication(t *testing.T) {
	got, err := types.TypeOfProgram(identity + "(id id)")
	if err != nil {
		t.Fatal(err)
	}
	m := regexp.MustCompile(`^\((T_\d+) -> (T_\d+)\)$`).FindStringSubmatch(got)
	if m == nil || m[1] != m[2] {
		t.Errorf("got %s, expected (T_n -> T_n)", got)
	}
}

func TestTypeOfProgramErrors(t *testing.T) {
	run := func(name, src string, kind error, msg string) {
		t.Run(name, func(t *testing.T) {
			got, err := types.TypeOfProgram(src)
			if err == nil {
				t.Fatalf("expected error, got type %s", got)
			}
			if !errors.Is(err, kind) {
				t.Errorf("got %v, expected kind %v", err, kind)
			}
			if !strings.Contains(err.Error(), msg) {
				t.Errorf("got %q, expected it to contain %q", err, msg)
			}
		})
	}

	run("empty", "", types.ErrStructural, "program must contain at least one expression")
	run("comments only", "; nothing\n", types.ErrStructural, "program must contain at least one expression")
	run("use before define", "(+ x 1) (define (x : number) 5)", types.ErrUnboundIdentifier, "unbound identifier: x")
	run("failed define", "(define (x : number) #t) x", types.ErrTypeMismatch, "expected number, got boolean")
	run("define sees only earlier forms", "(define (f : (number -> number)) (lambda ((n : number)) : number (f n)))", types.ErrUnboundIdentifier, "unbound identifier: f")
	run("first failure wins", "(+ 1 #t) y", types.ErrTypeMismatch, "expected number, got boolean")
}

func TestFreshPrimitiveVariables(t *testing.T) {
	first, err := types.TypeOfPrim("cons")
	if err != nil {
		t.Fatal(err)
	}
	second, err := types.TypeOfPrim("cons")
	if err != nil {
		t.Fatal(err)
	}
	vars := func(t ast.Type) []ast.TypeVar {
		p := t.(ast.Proc)
		return []ast.TypeVar{p.Params[0].(ast.TypeVar), p.Params[1].(ast.TypeVar)}
	}
	a, b := vars(first), vars(second)
	for _, x := range a {
		for _, y := range b {
			if x == y {
				t.Errorf("variable %s shared between lookups", x)
			}
		}
	}
	if a[0] == a[1] {
		t.Errorf("cons parameters should be distinct variables: %s", first)
	}

	s1, _ := types.TypeOfExpression("cons")
	s2, _ := types.TypeOfExpression("cons")
	if s1 == s2 {
		t.Errorf("two lookups rendered identically: %s", s1)
	}

	got, err := types.TypeOfExpression("(let ((a : number (car (cons 1 #t))) (b : boolean (cdr (cons 1 #t)))) (cons a b))")
	if err != nil {
		t.Fatal(err)
	}
	if got != "(Pair number boolean)" {
		t.Errorf("got %s", got)
	}
}

func TestTypeOfPrim(t *testing.T) {
	for _, name := range parser.PrimitiveOps {
		if _, err := types.TypeOfPrim(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	got, err := types.TypeOfPrim("+")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(got, ast.Proc{Params: []ast.Type{ast.Num, ast.Num}, Return: ast.Num}); len(diff) > 0 {
		t.Error(diff)
	}
	_, err = types.TypeOfPrim("vector-ref")
	if !errors.Is(err, types.ErrUnsupported) || !strings.Contains(err.Error(), "primitive not implemented") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	c := &types.Checker{Trace: &buf}
	n, err := parser.ParseExp("(+ 1 2)")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.TypeOf(n, types.EmptyEnv()); err != nil {
		t.Fatal(err)
	}
	expected := "(+ 1 2)\n  +\n  1\n  2\n"
	if buf.String() != expected {
		t.Errorf("got %q, expected %q", buf.String(), expected)
	}
}

func TestSession(t *testing.T) {
	s := types.NewSession()
	check := func(src string) (string, error) {
		prog, err := parser.ParseProgramString(src)
		if err != nil {
			t.Fatal(err)
		}
		ty, err := s.Check(prog)
		if err != nil {
			return "", err
		}
		return ty.String(), nil
	}

	if got, err := check("(define (x : number) 5)"); err != nil || got != "void" {
		t.Fatalf("got %s, %v", got, err)
	}
	if got, err := check("(+ x 1)"); err != nil || got != "number" {
		t.Fatalf("got %s, %v", got, err)
	}
	if _, err := check("(define (y : number) #t)"); !errors.Is(err, types.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if _, err := check("y"); !errors.Is(err, types.ErrUnboundIdentifier) {
		t.Fatalf("expected unbound y, got %v", err)
	}
	if _, err := check("(define (z : number) 1) (+ z #t)"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := s.Env().LookupStack("z"); ok {
		t.Error("failed submission should not extend the session")
	}
	if _, ok := s.Env().LookupStack("x"); !ok {
		t.Error("x should still be bound")
	}
}
