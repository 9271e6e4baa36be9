package pta

import (
	"fmt"

	"github.com/BarrensZeppelin/pta/ir"
	"golang.org/x/tools/container/intsets"
)

type PointerKind uint8

const (
	// VarPtr is a local variable.
	VarPtr PointerKind = iota
	// StaticFieldPtr is a static field.
	StaticFieldPtr
	// InstanceFieldPtr is a field of an abstract object.
	InstanceFieldPtr
	// ArrayIndexPtr stands for all elements of an abstract array object.
	ArrayIndexPtr
)

func (k PointerKind) String() string {
	switch k {
	case VarPtr:
		return "var"
	case StaticFieldPtr:
		return "static-field"
	case InstanceFieldPtr:
		return "instance-field"
	case ArrayIndexPtr:
		return "array-index"
	default:
		return fmt.Sprintf("PointerKind(%d)", k)
	}
}

// Pointer is a node of the pointer flow graph. Pointers are canonical: the
// PointerFlowGraph returns the same *Pointer for the same variable, field or
// object slot.
type Pointer struct {
	id   int
	kind PointerKind

	v     *ir.Var
	field *ir.Field
	obj   *Obj

	pts   *PointsToSet
	succs intsets.Sparse
}

// ID is unique within the owning graph and increases in creation order.
func (p *Pointer) ID() int { return p.id }

// Kind tells which of the accessors below are meaningful.
func (p *Pointer) Kind() PointerKind { return p.kind }

func (p *Pointer) PointsTo() *PointsToSet { return p.pts }

// Var is the variable of a VarPtr.
func (p *Pointer) Var() *ir.Var { return p.v }

// Field is the field of a StaticFieldPtr or InstanceFieldPtr.
func (p *Pointer) Field() *ir.Field { return p.field }

// Obj is the base object of an InstanceFieldPtr or ArrayIndexPtr.
func (p *Pointer) Obj() *Obj { return p.obj }

func (p *Pointer) String() string {
	switch p.kind {
	case VarPtr:
		return p.v.QualifiedName()
	case StaticFieldPtr:
		return p.field.String()
	case InstanceFieldPtr:
		return fmt.Sprintf("%v.%s", p.obj, p.field.Name)
	default:
		return fmt.Sprintf("%v[*]", p.obj)
	}
}

type fieldKey struct {
	obj   *Obj
	field *ir.Field
}

// PointerFlowGraph has an edge s -> t when the objects pointed to by s may
// flow to t. Nodes are created on first request and edges are never removed.
type PointerFlowGraph struct {
	heap     HeapModel
	pointers []*Pointer

	vars      map[*ir.Var]*Pointer
	statics   map[*ir.Field]*Pointer
	instances map[fieldKey]*Pointer
	arrays    map[*Obj]*Pointer

	edges int
}

func NewPointerFlowGraph(heap HeapModel) *PointerFlowGraph {
	return &PointerFlowGraph{
		heap:      heap,
		vars:      make(map[*ir.Var]*Pointer),
		statics:   make(map[*ir.Field]*Pointer),
		instances: make(map[fieldKey]*Pointer),
		arrays:    make(map[*Obj]*Pointer),
	}
}

func (g *PointerFlowGraph) mk(kind PointerKind) *Pointer {
	p := &Pointer{id: len(g.pointers), kind: kind, pts: newPointsToSet(g.heap)}
	g.pointers = append(g.pointers, p)
	return p
}

func (g *PointerFlowGraph) VarPtr(v *ir.Var) *Pointer {
	p, found := g.vars[v]
	if !found {
		p = g.mk(VarPtr)
		p.v = v
		g.vars[v] = p
	}
	return p
}

func (g *PointerFlowGraph) StaticField(f *ir.Field) *Pointer {
	p, found := g.statics[f]
	if !found {
		p = g.mk(StaticFieldPtr)
		p.field = f
		g.statics[f] = p
	}
	return p
}

func (g *PointerFlowGraph) InstanceField(o *Obj, f *ir.Field) *Pointer {
	key := fieldKey{o, f}
	p, found := g.instances[key]
	if !found {
		p = g.mk(InstanceFieldPtr)
		p.obj, p.field = o, f
		g.instances[key] = p
	}
	return p
}

func (g *PointerFlowGraph) ArrayIndex(o *Obj) *Pointer {
	p, found := g.arrays[o]
	if !found {
		p = g.mk(ArrayIndexPtr)
		p.obj = o
		g.arrays[o] = p
	}
	return p
}

// AddEdge adds the edge s -> t and reports whether it was new.
func (g *PointerFlowGraph) AddEdge(s, t *Pointer) bool {
	if s.succs.Insert(t.id) {
		g.edges++
		return true
	}
	return false
}

func (g *PointerFlowGraph) HasEdge(s, t *Pointer) bool {
	return s.succs.Has(t.id)
}

// Succs returns the successors of p ordered by pointer ID.
func (g *PointerFlowGraph) Succs(p *Pointer) []*Pointer {
	ids := p.succs.AppendTo(nil)
	succs := make([]*Pointer, len(ids))
	for i, id := range ids {
		succs[i] = g.pointers[id]
	}
	return succs
}

// Pointers returns all nodes in creation order.
func (g *PointerFlowGraph) Pointers() []*Pointer { return g.pointers }

func (g *PointerFlowGraph) NumEdges() int { return g.edges }
