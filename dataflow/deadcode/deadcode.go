// Package deadcode finds statements that are either unreachable or assign a
// variable that is never read afterwards.
package deadcode

import (
	"github.com/BarrensZeppelin/pta/dataflow"
	"github.com/BarrensZeppelin/pta/dataflow/constprop"
	"github.com/BarrensZeppelin/pta/dataflow/livevar"
	"github.com/BarrensZeppelin/pta/internal/queue"
	"github.com/BarrensZeppelin/pta/ir"
	"golang.org/x/exp/slices"
)

// Detect returns the dead statements of the method of cfg, ordered by index.
// Branches of if and switch statements whose condition is constant according
// to constants are not followed.
func Detect(
	cfg *dataflow.CFG,
	constants *dataflow.Result[ir.Stmt, *constprop.Fact],
	live *dataflow.Result[ir.Stmt, *livevar.Fact],
) []ir.Stmt {
	visited := make(map[ir.Stmt]bool)
	liveCode := make(map[ir.Stmt]bool)

	var wl queue.Queue[ir.Stmt]
	wl.Push(cfg.Entry())
	push := func(ns ...ir.Stmt) {
		for _, n := range ns {
			if !visited[n] {
				visited[n] = true
				wl.Push(n)
			}
		}
	}
	visited[cfg.Entry()] = true

	for !wl.Empty() {
		s := wl.Pop()

		if isDeadAssignment(s, live.OutFact(s)) {
			push(cfg.SuccsOf(s)...)
			continue
		}
		liveCode[s] = true

		switch s := s.(type) {
		case *ir.If:
			cond := constprop.Evaluate(s.Op, s.X, s.Y, constants.InFact(s))
			if !cond.IsConstant() {
				push(cfg.SuccsOf(s)...)
				break
			}
			want := dataflow.IfFalse
			if cond.Constant() != 0 {
				want = dataflow.IfTrue
			}
			for _, e := range cfg.OutEdgesOf(s) {
				if e.Kind == want {
					push(e.Target)
				}
			}

		case *ir.Switch:
			val := constants.InFact(s).Get(s.Var)
			if !constprop.CanHoldInt(s.Var) || !val.IsConstant() {
				push(cfg.SuccsOf(s)...)
				break
			}
			target := s.Default
			for _, c := range s.Cases {
				if c.Value == val.Constant() {
					target = c.Target
					break
				}
			}
			push(target)

		default:
			push(cfg.SuccsOf(s)...)
		}
	}

	var dead []ir.Stmt
	for _, s := range cfg.Nodes() {
		if !liveCode[s] && !cfg.IsEntry(s) && !cfg.IsExit(s) {
			dead = append(dead, s)
		}
	}
	slices.SortFunc(dead, func(a, b ir.Stmt) bool { return a.Index() < b.Index() })
	return dead
}

func isDeadAssignment(s ir.Stmt, liveOut *livevar.Fact) bool {
	def := s.Def()
	return def != nil && !liveOut.Contains(def) && hasNoSideEffect(s)
}

// hasNoSideEffect reports whether evaluating the right-hand side of s can
// neither modify the heap nor fail at run time.
func hasNoSideEffect(s ir.Stmt) bool {
	switch s := s.(type) {
	case *ir.Copy, *ir.AssignLiteral:
		return true
	case *ir.Binary:
		return s.Op != ir.Div && s.Op != ir.Rem
	default:
		// Allocations, field and array accesses, and calls.
		return false
	}
}

// Analyze runs the analyses that Detect depends on for m and returns its dead
// code.
func Analyze(m *ir.Method) []ir.Stmt {
	cfg := dataflow.BuildCFG(m)
	return Detect(cfg, constprop.Analyze(cfg), livevar.Analyze(cfg))
}
