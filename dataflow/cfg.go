// Package dataflow contains control flow graphs of method bodies and generic
// solvers for monotone dataflow analyses over them.
package dataflow

import (
	"fmt"

	"github.com/BarrensZeppelin/pta/internal/slices"
	"github.com/BarrensZeppelin/pta/ir"
)

type EdgeKind uint8

const (
	FallThrough EdgeKind = iota
	Goto
	IfTrue
	IfFalse
	SwitchCase
	SwitchDefault
	// Return connects a return statement to the exit node.
	Return
)

func (k EdgeKind) String() string {
	switch k {
	case FallThrough:
		return "FALL_THROUGH"
	case Goto:
		return "GOTO"
	case IfTrue:
		return "IF_TRUE"
	case IfFalse:
		return "IF_FALSE"
	case SwitchCase:
		return "SWITCH_CASE"
	case SwitchDefault:
		return "SWITCH_DEFAULT"
	case Return:
		return "RETURN"
	default:
		return fmt.Sprintf("EdgeKind(%d)", k)
	}
}

type Edge struct {
	Kind           EdgeKind
	Source, Target ir.Stmt
	// CaseValue is the value selecting a SwitchCase edge.
	CaseValue int32
}

func (e *Edge) String() string {
	return fmt.Sprintf("%d -[%v]-> %d", e.Source.Index(), e.Kind, e.Target.Index())
}

// Graph is the view of a control flow graph needed by the solvers.
type Graph[N comparable] interface {
	Entry() N
	Exit() N
	Nodes() []N
	PredsOf(n N) []N
	SuccsOf(n N) []N
}

// CFG is the control flow graph of a method body. Besides the statements it
// has a synthetic entry and exit node, so that every method has exactly one
// of each.
type CFG struct {
	method      *ir.Method
	entry, exit *ir.Nop
	nodes       []ir.Stmt
	in, out     map[ir.Stmt][]*Edge
}

var _ Graph[ir.Stmt] = (*CFG)(nil)

// BuildCFG builds the control flow graph of m. Abstract methods yield a graph
// where entry flows directly to exit.
func BuildCFG(m *ir.Method) *CFG {
	stmts := m.Stmts()
	g := &CFG{
		method: m,
		entry:  ir.NewNop(m, -1),
		exit:   ir.NewNop(m, len(stmts)),
		in:     make(map[ir.Stmt][]*Edge),
		out:    make(map[ir.Stmt][]*Edge),
	}

	g.nodes = make([]ir.Stmt, 0, len(stmts)+2)
	g.nodes = append(g.nodes, g.entry)
	g.nodes = append(g.nodes, stmts...)
	g.nodes = append(g.nodes, g.exit)

	next := func(s ir.Stmt) ir.Stmt {
		if i := s.Index() + 1; i < len(stmts) {
			return stmts[i]
		}
		return g.exit
	}

	if len(stmts) == 0 {
		g.addEdge(&Edge{Kind: FallThrough, Source: g.entry, Target: g.exit})
	} else {
		g.addEdge(&Edge{Kind: FallThrough, Source: g.entry, Target: stmts[0]})
	}

	for _, s := range stmts {
		switch s := s.(type) {
		case *ir.Return:
			g.addEdge(&Edge{Kind: Return, Source: s, Target: g.exit})
		case *ir.Goto:
			g.addEdge(&Edge{Kind: Goto, Source: s, Target: s.Target})
		case *ir.If:
			g.addEdge(&Edge{Kind: IfTrue, Source: s, Target: s.Target})
			g.addEdge(&Edge{Kind: IfFalse, Source: s, Target: next(s)})
		case *ir.Switch:
			for _, c := range s.Cases {
				g.addEdge(&Edge{Kind: SwitchCase, Source: s, Target: c.Target, CaseValue: c.Value})
			}
			g.addEdge(&Edge{Kind: SwitchDefault, Source: s, Target: s.Default})
		default:
			g.addEdge(&Edge{Kind: FallThrough, Source: s, Target: next(s)})
		}
	}
	return g
}

func (g *CFG) addEdge(e *Edge) {
	g.out[e.Source] = append(g.out[e.Source], e)
	g.in[e.Target] = append(g.in[e.Target], e)
}

func (g *CFG) Method() *ir.Method     { return g.method }
func (g *CFG) Entry() ir.Stmt         { return g.entry }
func (g *CFG) Exit() ir.Stmt          { return g.exit }
func (g *CFG) IsEntry(n ir.Stmt) bool { return n == g.entry }
func (g *CFG) IsExit(n ir.Stmt) bool  { return n == g.exit }

// Nodes returns entry, the statements in body order, and exit.
func (g *CFG) Nodes() []ir.Stmt { return g.nodes }

func (g *CFG) InEdgesOf(n ir.Stmt) []*Edge  { return g.in[n] }
func (g *CFG) OutEdgesOf(n ir.Stmt) []*Edge { return g.out[n] }

// PredsOf returns the distinct predecessors of n.
func (g *CFG) PredsOf(n ir.Stmt) []ir.Stmt {
	return slices.Distinct(slices.Map(g.in[n], func(e *Edge) ir.Stmt { return e.Source }))
}

// SuccsOf returns the distinct successors of n.
func (g *CFG) SuccsOf(n ir.Stmt) []ir.Stmt {
	return slices.Distinct(slices.Map(g.out[n], func(e *Edge) ir.Stmt { return e.Target }))
}
