package types

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smasher164/l5/ast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Env maps variable names to their types. An Env is never modified after
// construction; Extend layers a new frame over its receiver.
type Env struct {
	Parent  *Env
	Symbols map[string]ast.Type
}

// EmptyEnv returns an environment with no bindings.
func EmptyEnv() *Env {
	return &Env{Symbols: map[string]ast.Type{}}
}

// Extend returns a new environment binding names[i] to ts[i] over e.
// Passing slices of different lengths is a programming error.
func (e *Env) Extend(names []string, ts []ast.Type) *Env {
	if len(names) != len(ts) {
		panic(fmt.Sprintf("types: extend with %d names and %d types", len(names), len(ts)))
	}
	symbols := make(map[string]ast.Type, len(names))
	for i, name := range names {
		symbols[name] = ts[i]
	}
	return &Env{Parent: e, Symbols: symbols}
}

func (e *Env) LookupLocal(name string) (ast.Type, bool) {
	t, ok := e.Symbols[name]
	return t, ok
}

// LookupStack finds name in e or the nearest enclosing frame.
func (e *Env) LookupStack(name string) (t ast.Type, ok bool) {
	for p := e; p != nil; p = p.Parent {
		if t, ok = p.LookupLocal(name); ok {
			return t, true
		}
	}
	return nil, false
}

// Lookup is LookupStack with an unbound identifier error.
func (e *Env) Lookup(name string) (ast.Type, error) {
	if t, ok := e.LookupStack(name); ok {
		return t, nil
	}
	return nil, &Error{Kind: UnboundIdentifier, Msg: "unbound identifier: " + name}
}

func envString(buf io.Writer, e *Env) {
	if e.Parent != nil {
		envString(buf, e.Parent)
		fmt.Fprint(buf, "↑\n")
	}
	if len(e.Symbols) == 0 {
		fmt.Fprintf(buf, "(empty)\n")
		return
	}
	names := maps.Keys(e.Symbols)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(buf, "%s:\t%s\n", name, e.Symbols[name])
	}
}

func (e *Env) String() string {
	sb := new(strings.Builder)
	buf := tabwriter.NewWriter(sb, 0, 0, 1, ' ', 0)
	envString(buf, e)
	buf.Flush()
	return sb.String()
}
