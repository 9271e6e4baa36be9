package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/BarrensZeppelin/pta/callgraph"
	"github.com/BarrensZeppelin/pta/ir"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

type methodNode struct {
	id     int64
	method *ir.Method
	entry  bool
}

func (n *methodNode) ID() int64 { return n.id }

// DOTID quotes the signature; unquoted, the angle brackets of "<C: R m()>"
// would make it an HTML string to Graphviz.
func (n *methodNode) DOTID() string { return strconv.Quote(n.method.String()) }
func (n *methodNode) Attributes() []encoding.Attribute {
	if n.entry {
		return []encoding.Attribute{{Key: "shape", Value: "box"}}
	}
	return nil
}

// callLine is a single call graph edge. Several lines may connect the same
// pair of methods, one per call site.
type callLine struct {
	id       int64
	from, to *methodNode
	edge     callgraph.Edge
}

func (l *callLine) ID() int64                { return l.id }
func (l *callLine) From() graph.Node         { return l.from }
func (l *callLine) To() graph.Node           { return l.to }
func (l *callLine) ReversedLine() graph.Line { return &callLine{l.id, l.to, l.from, l.edge} }
func (l *callLine) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{
		Key:   "label",
		Value: fmt.Sprintf("%v:%d", l.edge.Kind, l.edge.CallSite.Line()),
	}}
}

// WriteDOT renders the reachable part of cg in Graphviz format. Entry methods
// are drawn as boxes, and every edge is labelled with the kind and line of
// its call site.
func WriteDOT(w io.Writer, cg *callgraph.Graph) error {
	g := multi.NewDirectedGraph()

	nodes := make(map[*ir.Method]*methodNode)
	for i, m := range cg.ReachableMethods() {
		n := &methodNode{id: int64(i), method: m, entry: slices.Contains(cg.EntryMethods(), m)}
		nodes[m] = n
		g.AddNode(n)
	}

	for i, e := range cg.Edges() {
		from, to := nodes[e.Caller()], nodes[e.Callee]
		if from == nil || to == nil {
			continue
		}
		g.SetLine(&callLine{id: int64(i), from: from, to: to, edge: e})
	}

	b, err := dot.MarshalMulti(g, "callgraph", "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
