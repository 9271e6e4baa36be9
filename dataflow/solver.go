package dataflow

import "github.com/BarrensZeppelin/pta/internal/queue"

// Analysis is a monotone dataflow analysis with facts of type F at the nodes
// of graphs with nodes of type N. Facts are mutable; MeetInto and
// TransferNode update their last argument in place.
type Analysis[N comparable, F any] interface {
	IsForward() bool
	// NewBoundaryFact is the fact at the entry (forward) or exit (backward)
	// node.
	NewBoundaryFact() F
	NewInitialFact() F
	MeetInto(fact, target F)
	// TransferNode computes out from in (or in from out for backward
	// analyses) and reports whether the computed fact changed.
	TransferNode(n N, in, out F) bool
}

type Result[N comparable, F any] struct {
	in, out map[N]F
}

func NewResult[N comparable, F any]() *Result[N, F] {
	return &Result[N, F]{in: make(map[N]F), out: make(map[N]F)}
}

func (r *Result[N, F]) InFact(n N) F        { return r.in[n] }
func (r *Result[N, F]) OutFact(n N) F       { return r.out[n] }
func (r *Result[N, F]) SetInFact(n N, f F)  { r.in[n] = f }
func (r *Result[N, F]) SetOutFact(n N, f F) { r.out[n] = f }

func initialize[N comparable, F any](a Analysis[N, F], g Graph[N]) *Result[N, F] {
	res := NewResult[N, F]()
	for _, n := range g.Nodes() {
		res.SetInFact(n, a.NewInitialFact())
		res.SetOutFact(n, a.NewInitialFact())
	}
	if a.IsForward() {
		res.SetOutFact(g.Entry(), a.NewBoundaryFact())
	} else {
		res.SetInFact(g.Exit(), a.NewBoundaryFact())
	}
	return res
}

// meetPreds recomputes the in fact of n from the out facts of its
// predecessors.
func meetPreds[N comparable, F any](a Analysis[N, F], g Graph[N], res *Result[N, F], n N) F {
	in := a.NewInitialFact()
	for _, p := range g.PredsOf(n) {
		a.MeetInto(res.OutFact(p), in)
	}
	res.SetInFact(n, in)
	return in
}

func meetSuccs[N comparable, F any](a Analysis[N, F], g Graph[N], res *Result[N, F], n N) F {
	out := a.NewInitialFact()
	for _, s := range g.SuccsOf(n) {
		a.MeetInto(res.InFact(s), out)
	}
	res.SetOutFact(n, out)
	return out
}

// SolveWorkList computes the fixed point of a on g by propagating changes
// along the edges of g only.
func SolveWorkList[N comparable, F any](a Analysis[N, F], g Graph[N]) *Result[N, F] {
	res := initialize(a, g)
	boundary := g.Entry()
	if !a.IsForward() {
		boundary = g.Exit()
	}

	var wl queue.Queue[N]
	queued := make(map[N]bool)
	push := func(n N) {
		if n != boundary && !queued[n] {
			queued[n] = true
			wl.Push(n)
		}
	}
	for _, n := range g.Nodes() {
		push(n)
	}

	for !wl.Empty() {
		n := wl.Pop()
		queued[n] = false

		if a.IsForward() {
			in := meetPreds(a, g, res, n)
			if a.TransferNode(n, in, res.OutFact(n)) {
				for _, s := range g.SuccsOf(n) {
					push(s)
				}
			}
		} else {
			out := meetSuccs(a, g, res, n)
			if a.TransferNode(n, res.InFact(n), out) {
				for _, p := range g.PredsOf(n) {
					push(p)
				}
			}
		}
	}
	return res
}

// SolveIterative computes the fixed point of a on g by visiting every node
// in order until a full round makes no change.
func SolveIterative[N comparable, F any](a Analysis[N, F], g Graph[N]) *Result[N, F] {
	res := initialize(a, g)
	nodes := g.Nodes()

	for changed := true; changed; {
		changed = false
		if a.IsForward() {
			for _, n := range nodes {
				if n == g.Entry() {
					continue
				}
				in := meetPreds(a, g, res, n)
				if a.TransferNode(n, in, res.OutFact(n)) {
					changed = true
				}
			}
		} else {
			for i := len(nodes) - 1; i >= 0; i-- {
				n := nodes[i]
				if n == g.Exit() {
					continue
				}
				out := meetSuccs(a, g, res, n)
				if a.TransferNode(n, res.InFact(n), out) {
					changed = true
				}
			}
		}
	}
	return res
}
