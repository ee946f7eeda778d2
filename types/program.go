package types

import (
	"github.com/smasher164/l5/ast"
	"github.com/smasher164/l5/parser"
)

// typeOfProgram types the top-level forms of p in order. Each successful
// define extends the environment seen by the forms after it.
func (c *Checker) typeOfProgram(p *ast.Program, env *Env) (ast.Type, *Env, error) {
	if len(p.Forms) == 0 {
		return nil, env, &Error{Kind: Structural, Msg: "program must contain at least one expression"}
	}
	var t ast.Type
	for _, form := range p.Forms {
		var err error
		if t, env, err = c.typeOfTopLevel(form, env); err != nil {
			return nil, env, err
		}
	}
	return t, env, nil
}

func (c *Checker) typeOfTopLevel(form ast.Node, env *Env) (ast.Type, *Env, error) {
	d, ok := form.(*ast.DefineExp)
	if !ok {
		t, err := c.TypeOf(form, env)
		return t, env, err
	}
	t, err := c.typeOfDefine(d, env)
	if err != nil {
		return nil, env, err
	}
	return t, env.Extend([]string{d.Var.Name()}, []ast.Type{d.Var.Type}), nil
}

// CheckExpression types n from an empty environment. Unlike TypeOf, it
// accepts a define, which yields void.
func (c *Checker) CheckExpression(n ast.Node) (ast.Type, error) {
	t, _, err := c.typeOfTopLevel(n, EmptyEnv())
	return t, err
}

// CheckProgram types p from an empty environment.
func (c *Checker) CheckProgram(p *ast.Program) (ast.Type, error) {
	t, _, err := c.typeOfProgram(p, EmptyEnv())
	return t, err
}

// TypeOfExpression parses a single expression and returns the rendering
// of its type.
func TypeOfExpression(src string) (string, error) {
	n, err := parser.ParseExp(src)
	if err != nil {
		return "", err
	}
	t, err := new(Checker).CheckExpression(n)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// TypeOfProgram parses a whole program and returns the rendering of the
// type of its last form.
func TypeOfProgram(src string) (string, error) {
	prog, err := parser.ParseProgramString(src)
	if err != nil {
		return "", err
	}
	t, err := new(Checker).CheckProgram(prog)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// Session keeps the top-level environment alive across submissions, so
// that a define stays visible to everything submitted after it.
type Session struct {
	Checker Checker
	env     *Env
}

func NewSession() *Session {
	return &Session{env: EmptyEnv()}
}

func (s *Session) Env() *Env {
	return s.env
}

// Check types the forms of p in order. The session environment is only
// updated when every form succeeds.
func (s *Session) Check(p *ast.Program) (ast.Type, error) {
	t, env, err := s.Checker.typeOfProgram(p, s.env)
	if err != nil {
		return nil, err
	}
	s.env = env
	return t, nil
}
