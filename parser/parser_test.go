package parser_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/kr/pretty"
	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/lexer"
	"github.com/smasher164/l5/parser"
)

func TestParseExp(t *testing.T) {
	run := func(src, expected string) {
		t.Run(src, func(t *testing.T) {
			n, err := parser.ParseExp(src)
			if err != nil {
				t.Fatal(err)
			}
			if got := ast.Unparse(n); got != expected {
				t.Errorf("got %s, expected %s\n%s", got, expected, ast.Dump(n))
			}
		})
	}

	run("5", "5")
	run("(if #true 1 2.5)", "(if #t 1 2.5)")
	run("(+ 1 -3)", "(+ 1 -3)")
	run(`(string=? "a\tb" "c")`, `(string=? "a\tb" "c")`)
	run("(lambda ((x : number) (y : boolean)) : number x)", "(lambda ((x : number) (y : boolean)) : number x)")
	run("(lambda ((x:number)) : number (display x) x)", "(lambda ((x : number)) : number (display x) x)")
	run("(lambda () : (number * boolean -> (Pair number string)) 1)", "(lambda () : (number * boolean -> (Pair number string)) 1)")
	run("(lambda () : (-> void) (lambda () : void (newline)))", "(lambda () : (Empty -> void) (lambda () : void (newline)))")
	run(`(let ((x : number 1) ((y : string) "a")) y)`, `(let (((x : number) 1) ((y : string) "a")) y)`)
	run("(letrec ((f (lambda ((n : number)) : number (f n)))) (f 1))", "(letrec ((f (lambda ((n : number)) : number (f n)))) (f 1))")
	run("(letrec ((f : (number -> number) (lambda ((n : number)) : number n))) f)", "(letrec (((f : (number -> number)) (lambda ((n : number)) : number n))) f)")
	run("(define x : number 5)", "(define (x : number) 5)")
	run("(define (x : number) 5)", "(define (x : number) 5)")
	run(`'(1 "a" . b)`, `'(1 "a" . b)`)
	run("(quote (a 'b))", "'(a (quote b))")
	run("'()", "'()")
	run("'(x : number)", "'(x : number)")
	run("((lambda ((x : number)) : number x) 1)", "((lambda ((x : number)) : number x) 1)")
}

func TestParseExpNodes(t *testing.T) {
	n, err := parser.ParseExp("(car (cons x '5))")
	if err != nil {
		t.Fatal(err)
	}
	app, ok := n.(*ast.AppExp)
	if !ok {
		t.Fatalf("expected *ast.AppExp, got %T", n)
	}
	if op, ok := app.Operator.(*ast.PrimOp); !ok || op.Name() != "car" {
		t.Fatalf("expected primitive car, got %s", ast.Dump(app.Operator))
	}
	inner := app.Operands[0].(*ast.AppExp)
	if v, ok := inner.Operands[0].(*ast.VarRef); !ok || v.Name() != "x" {
		t.Errorf("expected variable x, got %s", ast.Dump(inner.Operands[0]))
	}
	lit, ok := inner.Operands[1].(*ast.LitExp)
	if !ok {
		t.Fatalf("expected *ast.LitExp, got %T", inner.Operands[1])
	}
	if diff := pretty.Diff(lit.Value, ast.NumVal(5)); len(diff) > 0 {
		t.Error(diff)
	}
}

func TestParseAnnotationVariables(t *testing.T) {
	n, err := parser.ParseExp("(lambda ((x : T) (y : U)) : T x)")
	if err != nil {
		t.Fatal(err)
	}
	proc := n.(*ast.ProcExp)
	if proc.Params[0].Type != proc.Return {
		t.Errorf("parameter and return annotations of one lambda should share T: %s vs %s", proc.Params[0].Type, proc.Return)
	}
	if proc.Params[0].Type == proc.Params[1].Type {
		t.Errorf("T and U should be distinct variables")
	}

	n, err = parser.ParseExp("(let ((a : T 1) (b : T 2)) a)")
	if err != nil {
		t.Fatal(err)
	}
	let := n.(*ast.LetExp)
	if let.Bindings[0].Var.Type == let.Bindings[1].Var.Type {
		t.Errorf("separate annotations should not share variables")
	}
}

func TestParseErrors(t *testing.T) {
	run := func(src, msg string) {
		t.Run(src, func(t *testing.T) {
			_, err := parser.ParseExp(src)
			if err == nil {
				t.Fatalf("expected error containing %q", msg)
			}
			if !strings.Contains(err.Error(), msg) {
				t.Errorf("got %q, expected it to contain %q", err, msg)
			}
		})
	}

	run("(lambda (x) : number x)", `missing type annotation for "x"`)
	run("(lambda ((x : number)) x)", "lambda requires a parameter list and a return type")
	run("(lambda ((x : number)) number x)", "expected ':' and a return type")
	run("(lambda ((x : number) (x : number)) : number x)", `duplicate parameter "x"`)
	run("()", "empty combination")
	run("(if 1 2)", "if takes exactly")
	run("(let ((x 1)) x)", `missing type annotation for "x"`)
	run("(let ((x : number 1) (x : number 2)) x)", `duplicate binding "x"`)
	run("(let x x)", "expected let binding list")
	run("(define x 5)", `missing type annotation for "x"`)
	run("(define x number 5)", "define requires a typed name and a value")
	run("(define x = number 5)", `expected ':' after "x"`)
	run("lambda", `unexpected keyword "lambda"`)
	run("(let ((if : number 1)) 2)", `cannot bind keyword "if"`)
	run("(a . b)", "dotted list is not an expression")
	run(")", "unexpected ')'")
	run("(quote 1 2)", "quote takes exactly one datum")
	run(":", "unexpected ':'")
	run("1 2", "unexpected form after expression")
	run("(lambda ((x : (Pair number))) : number 1)", "Pair takes exactly two types")
	run("#q", `unknown literal "#q"`)
}

func TestParseErrorSpan(t *testing.T) {
	_, err := parser.ParseExp("(if 1 2)")
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.Error, got %v", err)
	}
	if diff := pretty.Diff(perr.Span.Start, lexer.Pos{Offset: 0, Line: 1, Column: 1}); len(diff) > 0 {
		t.Error(diff)
	}
}

func TestIncomplete(t *testing.T) {
	for _, src := range []string{"", "(+ 1", "'", "(a . ", "(lambda ((x : number)) : number"} {
		_, err := parser.ParseExp(src)
		if !parser.IsIncomplete(err) {
			t.Errorf("%q: expected incomplete input error, got %v", src, err)
		}
	}
	for _, src := range []string{")", "(a . b c)"} {
		_, err := parser.ParseExp(src)
		if err == nil || parser.IsIncomplete(err) {
			t.Errorf("%q: expected a complete syntax error, got %v", src, err)
		}
	}
}

func TestParseProgram(t *testing.T) {
	run := func(name, src string, forms int) {
		t.Run(name, func(t *testing.T) {
			prog, err := parser.ParseProgramString(src)
			if err != nil {
				t.Fatal(err)
			}
			if len(prog.Forms) != forms {
				t.Errorf("got %d forms, expected %d\n%s", len(prog.Forms), forms, ast.Dump(prog))
			}
		})
	}

	run("empty", "", 0)
	run("comment only", "; nothing here\n", 0)
	run("bare", "(define (x : number) 5)\n(+ x 1)", 2)
	run("wrapped", "(L5 (define (x : number) 5) (+ x 1))", 2)
	run("wrapped empty", "(L5)", 0)
	run("single", "(+ 1 2)", 1)
}

func TestParseFile(t *testing.T) {
	fsys := fstest.MapFS{
		"main.l5":  &fstest.MapFile{Data: []byte("(define (x : number) 5)\n(+ x 1)\n")},
		"main.txt": &fstest.MapFile{Data: []byte("(+ 1 2)")},
	}
	f, err := parser.ParseFile(fsys, "main.l5")
	if err != nil {
		t.Fatal(err)
	}
	expected := "(define (x : number) 5)\n(+ x 1)"
	if got := ast.Unparse(f.Program); got != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}
	if f.Name != "main.l5" || f.Source != "(define (x : number) 5)\n(+ x 1)\n" {
		t.Errorf("unexpected file %# v", pretty.Formatter(f))
	}
	if _, err := parser.ParseFile(fsys, "main.txt"); err == nil {
		t.Error("expected extension error")
	}
}

func TestParseTExp(t *testing.T) {
	run := func(src string, expected ast.Type) {
		t.Run(src, func(t *testing.T) {
			got, err := parser.ParseTExp(src)
			if err != nil {
				t.Fatal(err)
			}
			if diff := pretty.Diff(got, expected); len(diff) > 0 {
				t.Error(diff)
			}
		})
	}

	run("number", ast.Num)
	run("Empty", ast.EmptyTuple)
	run("(number * number -> boolean)", ast.Proc{Params: []ast.Type{ast.Num, ast.Num}, Return: ast.Bool})
	run("(Empty -> void)", ast.Proc{Params: []ast.Type{}, Return: ast.Void})
	run("(-> void)", ast.Proc{Params: []ast.Type{}, Return: ast.Void})
	run("(Pair string (Pair number literal))", ast.Pair{Car: ast.Str, Cdr: ast.Pair{Car: ast.Num, Cdr: ast.Literal}})
	run("((number -> number) -> Empty)", ast.Proc{Params: []ast.Type{ast.Proc{Params: []ast.Type{ast.Num}, Return: ast.Num}}, Return: ast.EmptyTuple})
}

func TestParseTExpVariables(t *testing.T) {
	t1 := parser.MustParseTExp("(Pair T1 T1)").(ast.Pair)
	if t1.Car != t1.Cdr {
		t.Errorf("same name should denote one variable: %s", t1)
	}
	t2 := parser.MustParseTExp("(Pair T1 T2)").(ast.Pair)
	if t2.Car == t2.Cdr {
		t.Errorf("different names should denote different variables: %s", t2)
	}
	if t1.Car == t2.Car {
		t.Errorf("separate parses should never share variables: %s %s", t1, t2)
	}
}

func TestParseTExpErrors(t *testing.T) {
	run := func(src, msg string) {
		t.Run(src, func(t *testing.T) {
			_, err := parser.ParseTExp(src)
			if err == nil {
				t.Fatalf("expected error containing %q", msg)
			}
			if !strings.Contains(err.Error(), msg) {
				t.Errorf("got %q, expected it to contain %q", err, msg)
			}
		})
	}

	run("number boolean", "expected exactly one type expression, found 2")
	run("(number number -> number)", "expected '*' between parameter types")
	run("(number * -> number)", "expected parameter type after '*'")
	run("(number)", "expected '->' in procedure type")
	run("(number number)", "expected '->' before the return type")
	run("(Pair number)", "Pair takes exactly two types")
	run("->", `unexpected "->" in type expression`)
	run("5", `invalid type expression "5"`)
	run("()", "empty type expression")
}

func TestMustParseTExpPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	parser.MustParseTExp("(Pair)")
}
