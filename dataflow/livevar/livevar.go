// Package livevar implements the backward live variable analysis.
package livevar

import (
	"strings"

	"github.com/BarrensZeppelin/pta/dataflow"
	"github.com/BarrensZeppelin/pta/ir"
	"golang.org/x/tools/container/intsets"
)

// Fact is a set of variables of one method, keyed by their index.
type Fact struct {
	m    *ir.Method
	vars intsets.Sparse
}

func (f *Fact) Contains(v *ir.Var) bool { return f.vars.Has(v.Index()) }
func (f *Fact) Add(v *ir.Var) bool      { return f.vars.Insert(v.Index()) }
func (f *Fact) Remove(v *ir.Var) bool   { return f.vars.Remove(v.Index()) }
func (f *Fact) Len() int                { return f.vars.Len() }
func (f *Fact) Equal(other *Fact) bool  { return f.vars.Equals(&other.vars) }

// Vars returns the live variables in declaration order.
func (f *Fact) Vars() []*ir.Var {
	all := f.m.Vars()
	var res []*ir.Var
	for _, i := range f.vars.AppendTo(nil) {
		res = append(res, all[i])
	}
	return res
}

func (f *Fact) String() string {
	names := make([]string, 0, f.Len())
	for _, v := range f.Vars() {
		names = append(names, v.Name)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

type Analysis struct {
	method *ir.Method
}

var _ dataflow.Analysis[ir.Stmt, *Fact] = (*Analysis)(nil)

func New(m *ir.Method) *Analysis { return &Analysis{method: m} }

func (*Analysis) IsForward() bool { return false }

func (a *Analysis) NewBoundaryFact() *Fact { return &Fact{m: a.method} }
func (a *Analysis) NewInitialFact() *Fact  { return &Fact{m: a.method} }

func (*Analysis) MeetInto(fact, target *Fact) {
	target.vars.UnionWith(&fact.vars)
}

// TransferNode computes in = uses ∪ (out \ {def}).
func (*Analysis) TransferNode(s ir.Stmt, in, out *Fact) bool {
	var next intsets.Sparse
	next.Copy(&out.vars)
	if def := s.Def(); def != nil {
		next.Remove(def.Index())
	}
	for _, u := range s.Uses() {
		next.Insert(u.Index())
	}

	if next.Equals(&in.vars) {
		return false
	}
	in.vars.Copy(&next)
	return true
}

func Analyze(cfg *dataflow.CFG) *dataflow.Result[ir.Stmt, *Fact] {
	return dataflow.SolveWorkList[ir.Stmt, *Fact](New(cfg.Method()), cfg)
}
