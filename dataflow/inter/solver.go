package inter

import (
	"github.com/BarrensZeppelin/pta/dataflow"
	"github.com/BarrensZeppelin/pta/internal/queue"
	"github.com/BarrensZeppelin/pta/ir"
)

// Analysis is a forward interprocedural dataflow analysis. Facts flowing
// along an ICFG edge are first passed through TransferEdge.
type Analysis[F any] interface {
	// NewBoundaryFact is the fact at the entry node of an entry method.
	NewBoundaryFact(entry ir.Stmt) F
	NewInitialFact() F
	MeetInto(fact, target F)
	TransferNode(n ir.Stmt, in, out F) bool
	// TransferEdge returns the fact that flows to the target of e, given
	// the out fact of its source. It must not modify out.
	TransferEdge(e *Edge, out F) F
}

// Solve computes the fixed point of a over icfg. All nodes are initially on
// the work list, so methods that are only reachable through call edges that
// carry no facts are still visited.
func Solve[F any](a Analysis[F], icfg *ICFG) *dataflow.Result[ir.Stmt, F] {
	res := dataflow.NewResult[ir.Stmt, F]()
	for _, n := range icfg.Nodes() {
		res.SetInFact(n, a.NewInitialFact())
		res.SetOutFact(n, a.NewInitialFact())
	}
	for _, m := range icfg.EntryMethods() {
		entry := icfg.EntryOf(m)
		res.SetInFact(entry, a.NewBoundaryFact(entry))
		res.SetOutFact(entry, a.NewBoundaryFact(entry))
	}

	var wl queue.Queue[ir.Stmt]
	for _, n := range icfg.Nodes() {
		wl.Push(n)
	}

	for !wl.Empty() {
		n := wl.Pop()
		in := res.InFact(n)
		for _, e := range icfg.InEdgesOf(n) {
			a.MeetInto(a.TransferEdge(e, res.OutFact(e.Source)), in)
		}
		if a.TransferNode(n, in, res.OutFact(n)) {
			for _, s := range icfg.SuccsOf(n) {
				wl.Push(s)
			}
		}
	}
	return res
}
