package pta

import (
	"github.com/BarrensZeppelin/pta/callgraph"
	"github.com/BarrensZeppelin/pta/ir"
)

// Result holds the fixed point computed by Analyze.
type Result struct {
	// CallGraph contains the methods reachable from the entry methods and
	// the call edges resolved on the fly.
	CallGraph *callgraph.Graph

	heap HeapModel
	pfg  *PointerFlowGraph
}

func (r *Result) objects(p *Pointer) []*Obj {
	if p == nil {
		return nil
	}
	return p.pts.Objects()
}

// PointsTo returns the objects that v may point to, ordered by object ID.
// Variables of unreachable methods point to nothing.
func (r *Result) PointsTo(v *ir.Var) []*Obj {
	return r.objects(r.pfg.vars[v])
}

func (r *Result) StaticFieldPointsTo(f *ir.Field) []*Obj {
	return r.objects(r.pfg.statics[f])
}

func (r *Result) InstanceFieldPointsTo(o *Obj, f *ir.Field) []*Obj {
	return r.objects(r.pfg.instances[fieldKey{o, f}])
}

// ArrayPointsTo returns the objects that may be stored in the array o.
func (r *Result) ArrayPointsTo(o *Obj) []*Obj {
	return r.objects(r.pfg.arrays[o])
}

// MayAlias reports whether a and b may point to the same object.
func (r *Result) MayAlias(a, b *ir.Var) bool {
	pa, pb := r.pfg.vars[a], r.pfg.vars[b]
	return pa != nil && pb != nil && pa.pts.Intersects(pb.pts)
}

// Objects returns every abstract object created during the analysis.
func (r *Result) Objects() []*Obj { return r.heap.Objects() }

// Pointers returns every node of the pointer flow graph.
func (r *Result) Pointers() []*Pointer { return r.pfg.Pointers() }

func (r *Result) PointerFlowGraph() *PointerFlowGraph { return r.pfg }

func (r *Result) Reachable(m *ir.Method) bool { return r.CallGraph.Contains(m) }
