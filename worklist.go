package pta

import (
	"fmt"
	"strings"

	"github.com/BarrensZeppelin/pta/internal/queue"
)

// WorkListOrder decides which pending pointer is processed next.
type WorkListOrder uint8

const (
	FIFO WorkListOrder = iota
	LIFO
)

func (o WorkListOrder) String() string {
	if o == LIFO {
		return "lifo"
	}
	return "fifo"
}

// ParseWorkListOrder accepts "fifo" and "lifo" in any case. The empty string
// selects FIFO.
func ParseWorkListOrder(s string) (WorkListOrder, error) {
	switch strings.ToLower(s) {
	case "", "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	}
	return FIFO, fmt.Errorf("unknown work list order %q", s)
}

// Entry is a unit of pending propagation: the objects in PointsTo must be
// added to the points-to set of Pointer.
type Entry struct {
	Pointer  *Pointer
	PointsTo *PointsToSet
}

// WorkList holds at most one entry per pointer; objects added for a pointer
// that is already pending are merged into its entry.
type WorkList struct {
	order   WorkListOrder
	fifo    queue.Queue[*Pointer]
	lifo    queue.Stack[*Pointer]
	pending map[*Pointer]*PointsToSet
}

func NewWorkList(order WorkListOrder) *WorkList {
	return &WorkList{order: order, pending: make(map[*Pointer]*PointsToSet)}
}

// Add schedules the objects of pts to be propagated to p. pts is not
// retained.
func (w *WorkList) Add(p *Pointer, pts *PointsToSet) {
	if pts.IsEmpty() {
		return
	}
	if cur, found := w.pending[p]; found {
		cur.set.UnionWith(&pts.set)
		return
	}

	w.pending[p] = pts.clone()
	if w.order == LIFO {
		w.lifo.Push(p)
	} else {
		w.fifo.Push(p)
	}
}

func (w *WorkList) Empty() bool { return len(w.pending) == 0 }
func (w *WorkList) Len() int    { return len(w.pending) }

// Pop removes the next entry. It panics with queue.ErrEmpty if the work list
// is empty.
func (w *WorkList) Pop() Entry {
	var p *Pointer
	if w.order == LIFO {
		p = w.lifo.Pop()
	} else {
		p = w.fifo.Pop()
	}

	pts := w.pending[p]
	delete(w.pending, p)
	return Entry{Pointer: p, PointsTo: pts}
}
