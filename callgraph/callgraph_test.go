package callgraph_test

import (
	"testing"

	"github.com/BarrensZeppelin/pta/callgraph"
	"github.com/BarrensZeppelin/pta/ir"
	"github.com/BarrensZeppelin/pta/irutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph(t *testing.T) {
	prog, err := irutil.LoadProgramFromSource(`
		classes:
		  - name: Main
		    methods:
		      - decl: static void main()
		        body: |
		          invokestatic <Main: void even()>()
		          invokestatic <Main: void leaf()>()
		      - decl: static void even()
		        body: |
		          invokestatic <Main: void odd()>()
		      - decl: static void odd()
		        body: |
		          invokestatic <Main: void even()>()
		      - decl: static void leaf()
		        body: |
		          invokestatic <Main: void leaf()>()
		      - decl: static void dead()
		        body: return`)
	require.NoError(t, err)

	m := func(name string) *ir.Method { return prog.Method("<Main: void " + name + "()>") }
	site := func(name string, i int) *ir.Invoke { return m(name).Stmts()[i].(*ir.Invoke) }

	g := callgraph.New()
	g.AddEntryMethod(prog.Main)
	g.AddEntryMethod(prog.Main)
	assert.Equal(t, []*ir.Method{prog.Main}, g.EntryMethods())
	assert.False(t, g.Contains(prog.Main), "entries are not reachable by themselves")

	for _, name := range []string{"main", "even", "odd", "leaf"} {
		assert.True(t, g.AddReachableMethod(m(name)))
	}
	assert.False(t, g.AddReachableMethod(m("even")))
	assert.False(t, g.Contains(m("dead")))

	edges := []callgraph.Edge{
		{Kind: callgraph.Static, CallSite: site("main", 0), Callee: m("even")},
		{Kind: callgraph.Static, CallSite: site("main", 1), Callee: m("leaf")},
		{Kind: callgraph.Static, CallSite: site("even", 0), Callee: m("odd")},
		{Kind: callgraph.Static, CallSite: site("odd", 0), Callee: m("even")},
		{Kind: callgraph.Static, CallSite: site("leaf", 0), Callee: m("leaf")},
	}
	for _, e := range edges {
		assert.True(t, g.AddEdge(e))
	}
	assert.False(t, g.AddEdge(edges[0]), "duplicate edges are ignored")

	assert.Equal(t, edges, g.Edges())
	assert.Equal(t, 5, g.NumEdges())
	assert.True(t, g.HasEdge(site("odd", 0), m("even")))
	assert.False(t, g.HasEdge(site("odd", 0), m("odd")))

	assert.Equal(t, []*ir.Method{m("even")}, g.CalleesOf(site("main", 0)))
	assert.Equal(t, []*ir.Invoke{site("main", 0), site("odd", 0)}, g.CallersOf(m("even")))
	assert.Equal(t, []*ir.Method{m("even"), m("leaf")}, g.CalleesOfMethod(prog.Main))
	assert.Equal(t, []*ir.Invoke{site("main", 0), site("main", 1)}, g.CallSitesIn(prog.Main))
	assert.Same(t, prog.Main, edges[0].Caller())
	assert.Equal(t, "[STATIC] <Main: void main()>@1 -> <Main: void leaf()>", edges[1].String())

	assert.Equal(t, [][]*ir.Method{
		{m("even"), m("odd")},
		{m("leaf")},
	}, g.RecursiveComponents())
}

func TestKindOf(t *testing.T) {
	for kind, want := range map[ir.InvokeKind]callgraph.CallKind{
		ir.InvokeStatic:    callgraph.Static,
		ir.InvokeSpecial:   callgraph.Special,
		ir.InvokeVirtual:   callgraph.Virtual,
		ir.InvokeInterface: callgraph.Interface,
	} {
		assert.Equal(t, want, callgraph.KindOf(&ir.Invoke{Kind: kind}))
	}
	assert.Equal(t, "INTERFACE", callgraph.Interface.String())
}
