package pta

import (
	"strings"

	"golang.org/x/tools/container/intsets"
)

// PointsToSet is a set of abstract objects from one heap model. Sets only
// grow during the analysis.
type PointsToSet struct {
	heap HeapModel
	set  intsets.Sparse
}

func newPointsToSet(heap HeapModel) *PointsToSet {
	return &PointsToSet{heap: heap}
}

func singleton(heap HeapModel, o *Obj) *PointsToSet {
	s := newPointsToSet(heap)
	s.set.Insert(o.id)
	return s
}

// Add inserts o and reports whether it was not already present.
func (s *PointsToSet) Add(o *Obj) bool { return s.set.Insert(o.id) }

func (s *PointsToSet) Contains(o *Obj) bool { return s.set.Has(o.id) }
func (s *PointsToSet) IsEmpty() bool        { return s.set.IsEmpty() }
func (s *PointsToSet) Len() int             { return s.set.Len() }

// Diff returns the objects of other that are not in s.
func (s *PointsToSet) Diff(other *PointsToSet) *PointsToSet {
	d := newPointsToSet(s.heap)
	d.set.Difference(&other.set, &s.set)
	return d
}

// UnionFrom adds the objects of other to s and returns the objects that
// were added.
func (s *PointsToSet) UnionFrom(other *PointsToSet) *PointsToSet {
	delta := s.Diff(other)
	s.set.UnionWith(&delta.set)
	return delta
}

// Intersects reports whether s and other share an object.
func (s *PointsToSet) Intersects(other *PointsToSet) bool {
	return s.set.Intersects(&other.set)
}

func (s *PointsToSet) clone() *PointsToSet {
	c := newPointsToSet(s.heap)
	c.set.Copy(&s.set)
	return c
}

// ForEach calls f on every object in the set, in order of object IDs.
func (s *PointsToSet) ForEach(f func(*Obj)) {
	objs := s.heap.Objects()
	for _, id := range s.set.AppendTo(nil) {
		f(objs[id])
	}
}

// Objects returns the objects of the set ordered by ID.
func (s *PointsToSet) Objects() []*Obj {
	res := make([]*Obj, 0, s.Len())
	s.ForEach(func(o *Obj) { res = append(res, o) })
	return res
}

func (s *PointsToSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	s.ForEach(func(o *Obj) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(o.String())
	})
	sb.WriteByte('}')
	return sb.String()
}
