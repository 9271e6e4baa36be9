// Package callgraph holds the call graph built by the pointer analysis and by
// class hierarchy analysis.
package callgraph

import (
	"fmt"

	"github.com/BarrensZeppelin/pta/ir"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

type CallKind uint8

const (
	Static CallKind = iota
	Special
	Virtual
	Interface
)

func (k CallKind) String() string {
	switch k {
	case Static:
		return "STATIC"
	case Special:
		return "SPECIAL"
	case Virtual:
		return "VIRTUAL"
	case Interface:
		return "INTERFACE"
	default:
		return fmt.Sprintf("CallKind(%d)", k)
	}
}

// KindOf returns the kind of call made at site.
func KindOf(site *ir.Invoke) CallKind {
	switch site.Kind {
	case ir.InvokeStatic:
		return Static
	case ir.InvokeSpecial:
		return Special
	case ir.InvokeVirtual:
		return Virtual
	default:
		return Interface
	}
}

type Edge struct {
	Kind     CallKind
	CallSite *ir.Invoke
	Callee   *ir.Method
}

func (e Edge) Caller() *ir.Method { return e.CallSite.Method() }

func (e Edge) String() string {
	return fmt.Sprintf("[%v] %v@%d -> %v", e.Kind, e.Caller(), e.CallSite.Index(), e.Callee)
}

type edgeKey struct {
	site   *ir.Invoke
	callee *ir.Method
}

// Graph is a call graph whose nodes are methods and whose edges connect call
// sites to the methods they may invoke. Methods and edges are kept in the
// order they were added.
type Graph struct {
	entries   []*ir.Method
	reachable []*ir.Method
	index     map[*ir.Method]int

	edges   []Edge
	edgeSet map[edgeKey]struct{}
	out     map[*ir.Invoke][]Edge
	in      map[*ir.Method][]Edge
}

func New() *Graph {
	return &Graph{
		index:   make(map[*ir.Method]int),
		edgeSet: make(map[edgeKey]struct{}),
		out:     make(map[*ir.Invoke][]Edge),
		in:      make(map[*ir.Method][]Edge),
	}
}

// AddEntryMethod records m as a root of the graph. It does not make m
// reachable.
func (g *Graph) AddEntryMethod(m *ir.Method) {
	if !slices.Contains(g.entries, m) {
		g.entries = append(g.entries, m)
	}
}

func (g *Graph) EntryMethods() []*ir.Method { return g.entries }

// AddReachableMethod adds m to the graph and reports whether it was new.
func (g *Graph) AddReachableMethod(m *ir.Method) bool {
	if _, found := g.index[m]; found {
		return false
	}
	g.index[m] = len(g.reachable)
	g.reachable = append(g.reachable, m)
	return true
}

// Contains reports whether m is reachable.
func (g *Graph) Contains(m *ir.Method) bool {
	_, found := g.index[m]
	return found
}

func (g *Graph) ReachableMethods() []*ir.Method { return g.reachable }

// AddEdge adds e unless an edge from the same call site to the same callee
// exists, and reports whether it was added.
func (g *Graph) AddEdge(e Edge) bool {
	key := edgeKey{e.CallSite, e.Callee}
	if _, found := g.edgeSet[key]; found {
		return false
	}
	g.edgeSet[key] = struct{}{}
	g.edges = append(g.edges, e)
	g.out[e.CallSite] = append(g.out[e.CallSite], e)
	g.in[e.Callee] = append(g.in[e.Callee], e)
	return true
}

func (g *Graph) HasEdge(site *ir.Invoke, callee *ir.Method) bool {
	_, found := g.edgeSet[edgeKey{site, callee}]
	return found
}

func (g *Graph) Edges() []Edge { return g.edges }
func (g *Graph) NumEdges() int { return len(g.edges) }

func (g *Graph) EdgesOutOf(site *ir.Invoke) []Edge { return g.out[site] }
func (g *Graph) EdgesInto(m *ir.Method) []Edge     { return g.in[m] }

// CalleesOf returns the methods that may be invoked at site.
func (g *Graph) CalleesOf(site *ir.Invoke) []*ir.Method {
	edges := g.out[site]
	callees := make([]*ir.Method, len(edges))
	for i, e := range edges {
		callees[i] = e.Callee
	}
	return callees
}

// CallersOf returns the call sites that may invoke m.
func (g *Graph) CallersOf(m *ir.Method) []*ir.Invoke {
	edges := g.in[m]
	sites := make([]*ir.Invoke, len(edges))
	for i, e := range edges {
		sites[i] = e.CallSite
	}
	return sites
}

// CallSitesIn returns the call sites in the body of m.
func (g *Graph) CallSitesIn(m *ir.Method) []*ir.Invoke {
	var sites []*ir.Invoke
	for _, s := range m.Stmts() {
		if call, ok := s.(*ir.Invoke); ok {
			sites = append(sites, call)
		}
	}
	return sites
}

// CalleesOfMethod returns the methods that may be invoked from any call site
// in m, without duplicates.
func (g *Graph) CalleesOfMethod(m *ir.Method) []*ir.Method {
	var callees []*ir.Method
	for _, site := range g.CallSitesIn(m) {
		for _, e := range g.out[site] {
			if !slices.Contains(callees, e.Callee) {
				callees = append(callees, e.Callee)
			}
		}
	}
	return callees
}

// Iterator views the reachable methods as the vertices 0..n-1, numbered in
// the order they became reachable.
func (g *Graph) Iterator() graph.Iterator {
	vg := graph.New(len(g.reachable))
	for _, e := range g.edges {
		from, ok1 := g.index[e.Caller()]
		to, ok2 := g.index[e.Callee]
		if ok1 && ok2 {
			vg.Add(from, to)
		}
	}
	return vg
}

// RecursiveComponents returns the sets of mutually recursive methods: strongly
// connected components with more than one method, and methods that call
// themselves directly.
func (g *Graph) RecursiveComponents() [][]*ir.Method {
	it := g.Iterator()

	var res [][]*ir.Method
	for _, comp := range graph.StrongComponents(it) {
		if len(comp) == 1 && !selfLoop(it, comp[0]) {
			continue
		}

		slices.Sort(comp)
		methods := make([]*ir.Method, len(comp))
		for i, v := range comp {
			methods[i] = g.reachable[v]
		}
		res = append(res, methods)
	}

	slices.SortFunc(res, func(a, b []*ir.Method) bool {
		return g.index[a[0]] < g.index[b[0]]
	})
	return res
}

func selfLoop(it graph.Iterator, v int) bool {
	return it.Visit(v, func(w int, _ int64) bool { return w == v })
}
