package pta

import (
	"fmt"
	"strings"

	"github.com/BarrensZeppelin/pta/ir"
)

// This file contains the abstract objects that pointers point to, and the
// heap models that decide which allocations are represented by the same
// abstract object.

// Obj is an abstract object. Objects are created by a HeapModel, are never
// modified afterwards, and are compared by identity. Each object has a dense
// integer ID, unique within its heap model, which is used to represent sets
// of objects as bit vectors.
type Obj struct {
	id    int
	// Allocation site of the object. For objects of a TypeHeap this is the
	// first allocation of the type that was seen by the heap.
	site  *ir.New
	typ   ir.Type
	label string
}

func (o *Obj) ID() int        { return o.id }
func (o *Obj) Site() *ir.New  { return o.site }
func (o *Obj) Type() ir.Type  { return o.typ }
func (o *Obj) String() string { return o.label }

// HeapModel maps allocation sites to abstract objects.
type HeapModel interface {
	// Obj returns the abstract object for objects allocated at site.
	// Repeated calls with the same site return the same object.
	Obj(site *ir.New) *Obj
	// Objects returns the objects created so far, indexed by ID.
	Objects() []*Obj
}

// siteLabel names the object allocated at site. An allocation can be given a
// name by a trailing comment, e.g. "x = new A // a1"; text from an "@" on is
// reserved for annotations.
func siteLabel(site *ir.New) string {
	name := site.Comment()
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name = strings.TrimSpace(name); name != "" {
		return name
	}

	m := site.Method()
	pos := site.Line()
	if pos == 0 {
		pos = site.Index()
	}
	return fmt.Sprintf("new %v@%s.%s:%d", site.Type, m.Class.Name, m.Name, pos)
}

// AllocationSiteHeap represents all objects allocated by the same statement
// with one abstract object.
type AllocationSiteHeap struct {
	objs   []*Obj
	bySite map[*ir.New]*Obj
}

func NewAllocationSiteHeap() *AllocationSiteHeap {
	return &AllocationSiteHeap{bySite: make(map[*ir.New]*Obj)}
}

func (h *AllocationSiteHeap) Obj(site *ir.New) *Obj {
	if o, found := h.bySite[site]; found {
		return o
	}

	o := &Obj{id: len(h.objs), site: site, typ: site.Type, label: siteLabel(site)}
	h.objs = append(h.objs, o)
	h.bySite[site] = o
	return o
}

func (h *AllocationSiteHeap) Objects() []*Obj { return h.objs }

// TypeHeap merges all objects of the same type. It is coarser than an
// AllocationSiteHeap but produces fewer objects.
type TypeHeap struct {
	objs   []*Obj
	byType map[ir.Type]*Obj
}

func NewTypeHeap() *TypeHeap {
	return &TypeHeap{byType: make(map[ir.Type]*Obj)}
}

func (h *TypeHeap) Obj(site *ir.New) *Obj {
	if o, found := h.byType[site.Type]; found {
		return o
	}

	o := &Obj{
		id:    len(h.objs),
		site:  site,
		typ:   site.Type,
		label: fmt.Sprintf("new %v", site.Type),
	}
	h.objs = append(h.objs, o)
	h.byType[site.Type] = o
	return o
}

func (h *TypeHeap) Objects() []*Obj { return h.objs }
