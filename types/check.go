package types

import (
	"fmt"
	"io"

	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/lexer"
)

// Checker computes the types of expressions. The zero value is ready to
// use. A Checker is not safe for concurrent use.
type Checker struct {
	// Trace, if set, receives one indented line per typing judgment.
	Trace  io.Writer
	indent int
}

func (c *Checker) trace(n ast.Node) func() {
	if c.Trace == nil {
		return func() {}
	}
	fmt.Fprintf(c.Trace, "%*s%s\n", c.indent*2, "", ast.Unparse(n))
	c.indent++
	return func() {
		c.indent--
	}
}

func at(err error, span lexer.Span) error {
	if terr, ok := err.(*Error); ok && terr.Span.IsZero() {
		terr.Span = span
	}
	return err
}

func mismatch(expected, got ast.Type, n ast.Node) *Error {
	return errorf(TypeMismatch, n.Span(), "type mismatch: expected %s, got %s in %s", expected, got, ast.Unparse(n))
}

// TypeOf returns the type of n under env. A define is rejected here,
// since it may only appear as a top-level form of a program.
func (c *Checker) TypeOf(n ast.Node, env *Env) (ast.Type, error) {
	defer c.trace(n)()
	switch n := n.(type) {
	case *ast.NumExp:
		return ast.Num, nil
	case *ast.BoolExp:
		return ast.Bool, nil
	case *ast.StrExp:
		return ast.Str, nil
	case *ast.LitExp:
		t, err := TypeOfQuoted(n.Value, true)
		return t, at(err, n.Span())
	case *ast.PrimOp:
		t, err := TypeOfPrim(n.Name())
		return t, at(err, n.Span())
	case *ast.VarRef:
		t, err := env.Lookup(n.Name())
		return t, at(err, n.Span())
	case *ast.IfExp:
		return c.typeOfIf(n, env)
	case *ast.ProcExp:
		return c.typeOfProc(n, env)
	case *ast.AppExp:
		return c.typeOfApp(n, env)
	case *ast.LetExp:
		return c.typeOfLet(n, env)
	case *ast.LetrecExp:
		return c.typeOfLetrec(n, env)
	case *ast.DefineExp:
		return nil, errorf(Unsupported, n.Span(), "define is only allowed at top level: %s", ast.Unparse(n))
	case *ast.Program:
		t, _, err := c.typeOfProgram(n, env)
		return t, err
	case nil:
		return nil, &Error{Kind: Unsupported, Msg: "unknown type: " + ast.Unparse(n)}
	default:
		panic(fmt.Sprintf("unreachable: %T", n))
	}
}

func (c *Checker) typeOfIf(n *ast.IfExp, env *Env) (ast.Type, error) {
	testType, err := c.TypeOf(n.Test, env)
	if err != nil {
		return nil, err
	}
	if !Equal(ast.Bool, testType) {
		return nil, mismatch(ast.Bool, testType, n.Test)
	}
	thenType, err := c.TypeOf(n.Then, env)
	if err != nil {
		return nil, err
	}
	altType, err := c.TypeOf(n.Alt, env)
	if err != nil {
		return nil, err
	}
	if !Equal(thenType, altType) {
		return nil, mismatch(thenType, altType, n.Alt)
	}
	return thenType, nil
}

func paramNames(n *ast.ProcExp) []string {
	names := make([]string, len(n.Params))
	for i, p := range n.Params {
		names[i] = p.Name()
	}
	return names
}

func procType(n *ast.ProcExp) ast.Proc {
	return ast.Proc{Params: n.ParamTypes(), Return: n.Return}
}

// typeOfProcBody checks the body of n against its declared return type.
func (c *Checker) typeOfProcBody(n *ast.ProcExp, env *Env) error {
	bodyType, err := c.typeOfBody(n.Body, env.Extend(paramNames(n), n.ParamTypes()), n)
	if err != nil {
		return err
	}
	if !Equal(n.Return, bodyType) {
		return mismatch(n.Return, bodyType, n)
	}
	return nil
}

func (c *Checker) typeOfProc(n *ast.ProcExp, env *Env) (ast.Type, error) {
	if err := c.typeOfProcBody(n, env); err != nil {
		return nil, err
	}
	return procType(n), nil
}

func (c *Checker) typeOfApp(n *ast.AppExp, env *Env) (ast.Type, error) {
	ratorType, err := c.TypeOf(n.Operator, env)
	if err != nil {
		return nil, err
	}
	proc, ok := ratorType.(ast.Proc)
	if !ok {
		return nil, errorf(NotProcedure, n.Operator.Span(), "application of non-procedure %s of type %s in %s", ast.Unparse(n.Operator), ratorType, ast.Unparse(n))
	}
	if len(proc.Params) != len(n.Operands) {
		return nil, errorf(ArityMismatch, n.Span(), "wrong parameter numbers: %s expects %d, got %d in %s", proc, len(proc.Params), len(n.Operands), ast.Unparse(n))
	}
	// Each application gets its own copy of the operator's variables.
	proc = freshen(proc, make(map[int64]ast.Type)).(ast.Proc)
	subst := Subst{}
	for i, rand := range n.Operands {
		randType, err := c.TypeOf(rand, env)
		if err != nil {
			return nil, err
		}
		if !subst.Match(proc.Params[i], randType) {
			return nil, mismatch(subst.Apply(proc.Params[i]), subst.Apply(randType), rand)
		}
	}
	return subst.Apply(proc.Return), nil
}

func (c *Checker) typeOfLet(n *ast.LetExp, env *Env) (ast.Type, error) {
	names := make([]string, len(n.Bindings))
	ts := make([]ast.Type, len(n.Bindings))
	for i, b := range n.Bindings {
		valueType, err := c.TypeOf(b.Value, env)
		if err != nil {
			return nil, err
		}
		if !Equal(b.Var.Type, valueType) {
			return nil, mismatch(b.Var.Type, valueType, b.Value)
		}
		names[i] = b.Var.Name()
		ts[i] = b.Var.Type
	}
	return c.typeOfBody(n.Body, env.Extend(names, ts), n)
}

func (c *Checker) typeOfLetrec(n *ast.LetrecExp, env *Env) (ast.Type, error) {
	names := make([]string, len(n.Bindings))
	ts := make([]ast.Type, len(n.Bindings))
	procs := make([]*ast.ProcExp, len(n.Bindings))
	for i, b := range n.Bindings {
		proc, ok := b.Value.(*ast.ProcExp)
		if !ok {
			return nil, errorf(Unsupported, b.Value.Span(), "letrec only supports procedure bindings: %s", ast.Unparse(b.Value))
		}
		t := procType(proc)
		if b.Var.Type != nil && !Equal(b.Var.Type, t) {
			return nil, mismatch(b.Var.Type, t, b.Value)
		}
		names[i] = b.Var.Name()
		ts[i] = t
		procs[i] = proc
	}
	recEnv := env.Extend(names, ts)
	for _, proc := range procs {
		if err := c.typeOfProcBody(proc, recEnv); err != nil {
			return nil, err
		}
	}
	return c.typeOfBody(n.Body, recEnv, n)
}

func (c *Checker) typeOfDefine(n *ast.DefineExp, env *Env) (ast.Type, error) {
	defer c.trace(n)()
	valueType, err := c.TypeOf(n.Value, env)
	if err != nil {
		return nil, err
	}
	if !Equal(n.Var.Type, valueType) {
		return nil, mismatch(n.Var.Type, valueType, n.Value)
	}
	return ast.Void, nil
}

// typeOfBody types every form of body under env and returns the type of
// the last one. parent is the form that owns the body.
func (c *Checker) typeOfBody(body []ast.Node, env *Env, parent ast.Node) (ast.Type, error) {
	if len(body) == 0 {
		return nil, errorf(Structural, parent.Span(), "empty body in %s", ast.Unparse(parent))
	}
	var t ast.Type
	for _, n := range body {
		var err error
		if t, err = c.TypeOf(n, env); err != nil {
			return nil, err
		}
	}
	return t, nil
}
