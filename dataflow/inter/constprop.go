package inter

import (
	"github.com/BarrensZeppelin/pta/dataflow"
	"github.com/BarrensZeppelin/pta/dataflow/constprop"
	"github.com/BarrensZeppelin/pta/ir"
)

// ConstantPropagation propagates constants across calls: arguments flow to
// parameters and returned values flow to the result of the call.
type ConstantPropagation struct {
	icfg *ICFG
}

var _ Analysis[*constprop.Fact] = (*ConstantPropagation)(nil)

func NewConstantPropagation(icfg *ICFG) *ConstantPropagation {
	return &ConstantPropagation{icfg: icfg}
}

func (*ConstantPropagation) NewBoundaryFact(entry ir.Stmt) *constprop.Fact {
	return constprop.New(entry.Method()).NewBoundaryFact()
}

func (*ConstantPropagation) NewInitialFact() *constprop.Fact { return constprop.NewFact() }

func (*ConstantPropagation) MeetInto(fact, target *constprop.Fact) {
	fact.ForEach(func(v *ir.Var, val constprop.Value) {
		target.Update(v, constprop.MeetValue(val, target.Get(v)))
	})
}

// TransferNode is the identity on call sites; the value of the result is
// decided by the return edges.
func (cp *ConstantPropagation) TransferNode(n ir.Stmt, in, out *constprop.Fact) bool {
	if cp.icfg.IsCallSite(n) {
		return out.CopyFrom(in)
	}
	return out.CopyFrom(constprop.Transfer(n, in))
}

func (*ConstantPropagation) TransferEdge(e *Edge, out *constprop.Fact) *constprop.Fact {
	switch e.Kind {
	case CallToReturn:
		res := out.Copy()
		if def := e.Source.Def(); def != nil {
			res.Remove(def)
		}
		return res

	case Call:
		site := e.Source.(*ir.Invoke)
		res := constprop.NewFact()
		for i, p := range e.Callee.Params() {
			if constprop.CanHoldInt(p) {
				res.Update(p, out.Get(site.Args[i]))
			}
		}
		return res

	case Return:
		res := constprop.NewFact()
		if lhs := e.CallSite.LValue; lhs != nil && constprop.CanHoldInt(lhs) {
			val := constprop.Undef
			for _, v := range e.ReturnVars() {
				val = constprop.MeetValue(val, out.Get(v))
			}
			res.Update(lhs, val)
		}
		return res

	default:
		return out.Copy()
	}
}

// Analyze runs interprocedural constant propagation over the methods of the
// call graph of icfg.
func Analyze(icfg *ICFG) *dataflow.Result[ir.Stmt, *constprop.Fact] {
	return Solve[*constprop.Fact](NewConstantPropagation(icfg), icfg)
}
