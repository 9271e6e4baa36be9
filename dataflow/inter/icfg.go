// Package inter contains the interprocedural control flow graph of a program
// and an interprocedural dataflow solver over it.
package inter

import (
	"fmt"

	"github.com/BarrensZeppelin/pta/callgraph"
	"github.com/BarrensZeppelin/pta/dataflow"
	"github.com/BarrensZeppelin/pta/internal/slices"
	"github.com/BarrensZeppelin/pta/ir"
)

type EdgeKind uint8

const (
	// Normal edges are the intraprocedural edges that do not leave a call
	// site.
	Normal EdgeKind = iota
	// CallToReturn edges connect a call site to its successors in the
	// caller.
	CallToReturn
	// Call edges connect a call site to the entry of a callee.
	Call
	// Return edges connect the exit of a callee to the successors of the
	// call site.
	Return
)

func (k EdgeKind) String() string {
	switch k {
	case Normal:
		return "NORMAL"
	case CallToReturn:
		return "CALL_TO_RETURN"
	case Call:
		return "CALL"
	case Return:
		return "RETURN"
	default:
		return fmt.Sprintf("EdgeKind(%d)", k)
	}
}

type Edge struct {
	Kind           EdgeKind
	Source, Target ir.Stmt
	// Callee is set on call and return edges.
	Callee *ir.Method
	// CallSite is set on return edges.
	CallSite *ir.Invoke
}

// ReturnVars are the variables whose values flow to the call site along a
// return edge.
func (e *Edge) ReturnVars() []*ir.Var {
	if e.Callee == nil {
		return nil
	}
	return e.Callee.ReturnVars()
}

// ICFG joins the control flow graphs of the reachable methods of a call
// graph.
type ICFG struct {
	cg      *callgraph.Graph
	cfgs    map[*ir.Method]*dataflow.CFG
	methods []*ir.Method
	nodes   []ir.Stmt
	in, out map[ir.Stmt][]*Edge
}

func BuildICFG(cg *callgraph.Graph) *ICFG {
	g := &ICFG{
		cg:   cg,
		cfgs: make(map[*ir.Method]*dataflow.CFG),
		in:   make(map[ir.Stmt][]*Edge),
		out:  make(map[ir.Stmt][]*Edge),
	}

	for _, m := range cg.ReachableMethods() {
		cfg := dataflow.BuildCFG(m)
		g.cfgs[m] = cfg
		g.methods = append(g.methods, m)
		g.nodes = append(g.nodes, cfg.Nodes()...)
	}

	for _, m := range g.methods {
		cfg := g.cfgs[m]
		for _, n := range cfg.Nodes() {
			isCall := g.IsCallSite(n)
			for _, succ := range cfg.SuccsOf(n) {
				if !isCall {
					g.addEdge(&Edge{Kind: Normal, Source: n, Target: succ})
					continue
				}

				site := n.(*ir.Invoke)
				g.addEdge(&Edge{Kind: CallToReturn, Source: n, Target: succ})
				for _, callee := range cg.CalleesOf(site) {
					g.addEdge(&Edge{Kind: Return, Source: g.cfgs[callee].Exit(), Target: succ, Callee: callee, CallSite: site})
				}
			}

			if isCall {
				for _, callee := range cg.CalleesOf(n.(*ir.Invoke)) {
					g.addEdge(&Edge{Kind: Call, Source: n, Target: g.cfgs[callee].Entry(), Callee: callee})
				}
			}
		}
	}
	return g
}

func (g *ICFG) addEdge(e *Edge) {
	g.out[e.Source] = append(g.out[e.Source], e)
	g.in[e.Target] = append(g.in[e.Target], e)
}

func (g *ICFG) CallGraph() *callgraph.Graph { return g.cg }
func (g *ICFG) EntryMethods() []*ir.Method  { return g.cg.EntryMethods() }
func (g *ICFG) Methods() []*ir.Method       { return g.methods }

// Nodes returns the nodes of every method, including the synthetic entry
// and exit nodes.
func (g *ICFG) Nodes() []ir.Stmt { return g.nodes }

func (g *ICFG) CFGOf(m *ir.Method) *dataflow.CFG { return g.cfgs[m] }
func (g *ICFG) EntryOf(m *ir.Method) ir.Stmt     { return g.cfgs[m].Entry() }
func (g *ICFG) ExitOf(m *ir.Method) ir.Stmt      { return g.cfgs[m].Exit() }

func (g *ICFG) InEdgesOf(n ir.Stmt) []*Edge  { return g.in[n] }
func (g *ICFG) OutEdgesOf(n ir.Stmt) []*Edge { return g.out[n] }

// SuccsOf returns the distinct targets of the out edges of n.
func (g *ICFG) SuccsOf(n ir.Stmt) []ir.Stmt {
	return slices.Distinct(slices.Map(g.out[n], func(e *Edge) ir.Stmt { return e.Target }))
}

// IsCallSite reports whether n is a call with at least one callee in the
// call graph. Calls without callees are connected by normal edges.
func (g *ICFG) IsCallSite(n ir.Stmt) bool {
	site, ok := n.(*ir.Invoke)
	return ok && len(g.cg.CalleesOf(site)) > 0
}
