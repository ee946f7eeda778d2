package types

import (
	"fmt"
	"strings"

	"github.com/smasher164/l5/ast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Subst records the type variable bindings made while matching two types.
// A Subst belongs to one judgment and is dropped when that judgment is done.
type Subst map[int64]ast.Type

func (s Subst) walk(t ast.Type) ast.Type {
	for {
		tv, ok := t.(ast.TypeVar)
		if !ok {
			return t
		}
		bound, ok := s[tv.ID]
		if !ok {
			return t
		}
		t = bound
	}
}

func (s Subst) occurs(id int64, t ast.Type) bool {
	switch t := s.walk(t).(type) {
	case ast.TypeVar:
		return t.ID == id
	case ast.Pair:
		return s.occurs(id, t.Car) || s.occurs(id, t.Cdr)
	case ast.Proc:
		return s.occurs(id, t.Return) || slices.IndexFunc(t.Params, func(p ast.Type) bool { return s.occurs(id, p) }) >= 0
	}
	return false
}

func (s Subst) bind(tv ast.TypeVar, t ast.Type) bool {
	if other, ok := t.(ast.TypeVar); ok && other == tv {
		return true
	}
	if s.occurs(tv.ID, t) {
		return false
	}
	s[tv.ID] = t
	return true
}

// Match reports whether a and b are structurally equal, binding type
// variables on either side as needed. A variable that is already bound
// must keep denoting the same type.
func (s Subst) Match(a, b ast.Type) bool {
	a, b = s.walk(a), s.walk(b)
	if tv, ok := a.(ast.TypeVar); ok {
		return s.bind(tv, b)
	}
	if tv, ok := b.(ast.TypeVar); ok {
		return s.bind(tv, a)
	}
	switch a := a.(type) {
	case ast.Base:
		b, ok := b.(ast.Base)
		return ok && a == b
	case ast.Pair:
		b, ok := b.(ast.Pair)
		return ok && s.Match(a.Car, b.Car) && s.Match(a.Cdr, b.Cdr)
	case ast.Proc:
		b, ok := b.(ast.Proc)
		return ok && slices.EqualFunc(a.Params, b.Params, s.Match) && s.Match(a.Return, b.Return)
	}
	return false
}

// Apply replaces every bound variable in t with its binding.
func (s Subst) Apply(t ast.Type) ast.Type {
	switch t := s.walk(t).(type) {
	case ast.Pair:
		return ast.Pair{Car: s.Apply(t.Car), Cdr: s.Apply(t.Cdr)}
	case ast.Proc:
		params := make([]ast.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = s.Apply(p)
		}
		return ast.Proc{Params: params, Return: s.Apply(t.Return)}
	default:
		return t
	}
}

func (s Subst) String() string {
	ids := maps.Keys(s)
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s := %s", ast.TypeVar{ID: id}, s[id])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// freshen renames the type variables of t to variables that appear
// nowhere else. fresh maps old ids to their replacements.
func freshen(t ast.Type, fresh map[int64]ast.Type) ast.Type {
	switch t := t.(type) {
	case ast.TypeVar:
		v, ok := fresh[t.ID]
		if !ok {
			v = ast.NewTypeVar()
			fresh[t.ID] = v
		}
		return v
	case ast.Pair:
		return ast.Pair{Car: freshen(t.Car, fresh), Cdr: freshen(t.Cdr, fresh)}
	case ast.Proc:
		params := make([]ast.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = freshen(p, fresh)
		}
		return ast.Proc{Params: params, Return: freshen(t.Return, fresh)}
	default:
		return t
	}
}

// Equal reports whether a and b are equal up to the type variables they
// contain. Bindings made during the comparison are discarded.
func Equal(a, b ast.Type) bool {
	return Subst{}.Match(a, b)
}
