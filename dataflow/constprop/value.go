// Package constprop implements constant propagation for int-like variables.
package constprop

import (
	"fmt"
	"strings"

	"github.com/BarrensZeppelin/pta/ir"
	"golang.org/x/exp/slices"
)

type valueKind uint8

const (
	undef valueKind = iota
	constant
	nac
)

// Value is an element of the lattice UNDEF < c < NAC, for every int32
// constant c. The zero Value is UNDEF.
type Value struct {
	kind valueKind
	c    int32
}

var (
	Undef = Value{}
	NAC   = Value{kind: nac}
)

func Const(c int32) Value { return Value{kind: constant, c: c} }

func (v Value) IsUndef() bool    { return v.kind == undef }
func (v Value) IsConstant() bool { return v.kind == constant }
func (v Value) IsNAC() bool      { return v.kind == nac }

// Constant returns the constant held by v. It panics if v is not constant.
func (v Value) Constant() int32 {
	if v.kind != constant {
		panic(fmt.Errorf("%v is not a constant", v))
	}
	return v.c
}

func (v Value) String() string {
	switch v.kind {
	case undef:
		return "UNDEF"
	case nac:
		return "NAC"
	default:
		return fmt.Sprint(v.c)
	}
}

// MeetValue returns the greatest lower bound of a and b.
func MeetValue(a, b Value) Value {
	switch {
	case a.IsNAC() || b.IsNAC():
		return NAC
	case a.IsUndef():
		return b
	case b.IsUndef():
		return a
	case a == b:
		return a
	default:
		return NAC
	}
}

// Fact maps variables to values. Variables that are not mapped are UNDEF.
type Fact struct {
	m map[*ir.Var]Value
}

func NewFact() *Fact {
	return &Fact{m: make(map[*ir.Var]Value)}
}

func (f *Fact) Get(v *ir.Var) Value { return f.m[v] }

// Update sets the value of v and reports whether it changed.
func (f *Fact) Update(v *ir.Var, val Value) bool {
	old := f.m[v]
	if val.IsUndef() {
		delete(f.m, v)
	} else {
		f.m[v] = val
	}
	return old != val
}

func (f *Fact) Remove(v *ir.Var) { delete(f.m, v) }

// ForEach calls fn for every variable that is not UNDEF, in no particular
// order.
func (f *Fact) ForEach(fn func(*ir.Var, Value)) {
	for v, val := range f.m {
		fn(v, val)
	}
}

func (f *Fact) Copy() *Fact {
	c := &Fact{m: make(map[*ir.Var]Value, len(f.m))}
	for v, val := range f.m {
		c.m[v] = val
	}
	return c
}

// CopyFrom replaces the content of f by that of other and reports whether f
// changed.
func (f *Fact) CopyFrom(other *Fact) bool {
	if f.Equal(other) {
		return false
	}
	f.m = other.Copy().m
	return true
}

func (f *Fact) Equal(other *Fact) bool {
	if len(f.m) != len(other.m) {
		return false
	}
	for v, val := range f.m {
		if oval, found := other.m[v]; !found || oval != val {
			return false
		}
	}
	return true
}

// Vars returns the variables that are not UNDEF, ordered by method and
// position.
func (f *Fact) Vars() []*ir.Var {
	vars := make([]*ir.Var, 0, len(f.m))
	for v := range f.m {
		vars = append(vars, v)
	}
	slices.SortFunc(vars, func(a, b *ir.Var) bool {
		if a.Method != b.Method {
			return a.Method.String() < b.Method.String()
		}
		return a.Index() < b.Index()
	})
	return vars
}

func (f *Fact) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range f.Vars() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", v.Name, f.m[v])
	}
	sb.WriteByte('}')
	return sb.String()
}
