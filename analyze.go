package pta

import (
	"errors"
	"fmt"
	"os"

	"github.com/BarrensZeppelin/pta/callgraph"
	"github.com/BarrensZeppelin/pta/cha"
	"github.com/BarrensZeppelin/pta/ir"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnresolvedMethod is returned when a call site names a method that
	// no class in the hierarchy declares.
	ErrUnresolvedMethod = cha.ErrUnresolvedMethod
	// ErrNoEntry is returned when there is no entry method to start from, or
	// when an entry method is abstract.
	ErrNoEntry = cha.ErrNoEntry
)

// AnalysisConfig configures a run of Analyze.
type AnalysisConfig struct {
	// Program supplies the default entry method when EntryMethods is empty.
	Program *ir.Program

	// EntryMethods are the roots of the call graph. When empty, the main
	// method of Program is used.
	EntryMethods []*ir.Method

	// Heap decides which allocations share an abstract object. Defaults to a
	// fresh AllocationSiteHeap.
	Heap HeapModel

	// WorkListOrder selects the order in which pending entries are
	// processed. The result does not depend on it.
	WorkListOrder WorkListOrder

	// Log receives debug output about newly reachable methods and call
	// edges, and warnings about calls without a target. When nil, warnings
	// are written to standard error.
	Log logrus.FieldLogger
}

type solver struct {
	heap HeapModel
	pfg  *PointerFlowGraph
	wl   *WorkList
	cg   *callgraph.Graph
	log  logrus.FieldLogger
}

func newSolver(heap HeapModel, order WorkListOrder, log logrus.FieldLogger) *solver {
	return &solver{
		heap: heap,
		pfg:  NewPointerFlowGraph(heap),
		wl:   NewWorkList(order),
		cg:   callgraph.New(),
		log:  log,
	}
}

func defaultLogger() logrus.FieldLogger {
	return &logrus.Logger{
		Out:       os.Stderr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.WarnLevel,
	}
}

// Analyze runs a context-insensitive inclusion-based pointer analysis of the
// methods reachable from the configured entry methods, building the call
// graph on the fly.
func Analyze(config AnalysisConfig) (*Result, error) {
	entries := config.EntryMethods
	if len(entries) == 0 && config.Program != nil && config.Program.Main != nil {
		entries = []*ir.Method{config.Program.Main}
	}
	if len(entries) == 0 {
		return nil, ErrNoEntry
	}

	heap := config.Heap
	if heap == nil {
		heap = NewAllocationSiteHeap()
	}
	log := config.Log
	if log == nil {
		log = defaultLogger()
	}

	s := newSolver(heap, config.WorkListOrder, log)

	for _, m := range entries {
		if m.IsAbstract {
			return nil, fmt.Errorf("%w: %v is abstract", ErrNoEntry, m)
		}
		s.cg.AddEntryMethod(m)
		if err := s.addReachable(m); err != nil {
			return nil, err
		}
	}

	if err := s.solve(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"methods":  len(s.cg.ReachableMethods()),
		"edges":    s.cg.NumEdges(),
		"pointers": len(s.pfg.Pointers()),
		"objects":  len(heap.Objects()),
		"pfgEdges": s.pfg.NumEdges(),
	}).Info("Pointer analysis done")

	return &Result{CallGraph: s.cg, heap: heap, pfg: s.pfg}, nil
}

// addReachable processes the statements of m the first time m becomes
// reachable. Statements whose effect depends on the objects pointed to by a
// variable are handled in solve when those objects arrive.
func (s *solver) addReachable(m *ir.Method) error {
	if !s.cg.AddReachableMethod(m) {
		return nil
	}
	s.log.WithField("method", m).Debug("New reachable method")

	for _, stmt := range m.Stmts() {
		switch stmt := stmt.(type) {
		case *ir.New:
			s.wl.Add(s.pfg.VarPtr(stmt.LValue), singleton(s.heap, s.heap.Obj(stmt)))

		case *ir.Copy:
			s.addPFGEdge(s.pfg.VarPtr(stmt.RValue), s.pfg.VarPtr(stmt.LValue))

		case *ir.LoadField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.pfg.StaticField(stmt.Field), s.pfg.VarPtr(stmt.LValue))
			}

		case *ir.StoreField:
			if stmt.IsStatic() {
				s.addPFGEdge(s.pfg.VarPtr(stmt.RValue), s.pfg.StaticField(stmt.Field))
			}

		case *ir.Invoke:
			if stmt.IsStatic() {
				callee, err := cha.ResolveCallee(nil, stmt)
				if err != nil {
					return err
				}
				if err := s.processSingleCall(stmt, callee); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *solver) addPFGEdge(src, dst *Pointer) {
	if s.pfg.AddEdge(src, dst) {
		s.wl.Add(dst, src.pts)
	}
}

func (s *solver) solve() error {
	for !s.wl.Empty() {
		if err := s.step(); err != nil {
			return err
		}
	}
	return nil
}

// step processes one work list entry. Only the objects that are new to the
// entry's pointer are propagated; an entry that brings nothing new has no
// effect.
func (s *solver) step() error {
	entry := s.wl.Pop()
	n := entry.Pointer

	delta := n.pts.UnionFrom(entry.PointsTo)
	if delta.IsEmpty() {
		return nil
	}

	for _, succ := range s.pfg.Succs(n) {
		s.wl.Add(succ, delta)
	}

	if n.kind != VarPtr {
		return nil
	}

	v := n.v
	for _, o := range delta.Objects() {
		for _, store := range v.StoreFields() {
			s.addPFGEdge(s.pfg.VarPtr(store.RValue), s.pfg.InstanceField(o, store.Field))
		}
		for _, load := range v.LoadFields() {
			s.addPFGEdge(s.pfg.InstanceField(o, load.Field), s.pfg.VarPtr(load.LValue))
		}
		for _, store := range v.StoreArrays() {
			s.addPFGEdge(s.pfg.VarPtr(store.RValue), s.pfg.ArrayIndex(o))
		}
		for _, load := range v.LoadArrays() {
			s.addPFGEdge(s.pfg.ArrayIndex(o), s.pfg.VarPtr(load.LValue))
		}

		if err := s.processCall(v, o); err != nil {
			return err
		}
	}
	return nil
}

// processCall handles the instance calls with receiver v for a newly
// discovered receiver object o.
func (s *solver) processCall(v *ir.Var, o *Obj) error {
	for _, site := range v.Invokes() {
		callee, err := cha.ResolveCallee(cha.ReceiverClass(o.Type(), site), site)
		if errors.Is(err, cha.ErrNoTarget) {
			s.log.WithFields(logrus.Fields{
				"site":   site,
				"method": site.Method(),
				"object": o,
			}).Warn("Receiver object has no method for call")
			continue
		} else if err != nil {
			return err
		}

		if this := callee.This(); this != nil {
			s.wl.Add(s.pfg.VarPtr(this), singleton(s.heap, o))
		}
		if err := s.processSingleCall(site, callee); err != nil {
			return err
		}
	}
	return nil
}

func (s *solver) processSingleCall(site *ir.Invoke, callee *ir.Method) error {
	edge := callgraph.Edge{Kind: callgraph.KindOf(site), CallSite: site, Callee: callee}
	if !s.cg.AddEdge(edge) {
		return nil
	}
	s.log.WithField("edge", edge).Debug("New call edge")

	if err := s.addReachable(callee); err != nil {
		return err
	}

	params := callee.Params()
	for i, arg := range site.Args {
		if i < len(params) {
			s.addPFGEdge(s.pfg.VarPtr(arg), s.pfg.VarPtr(params[i]))
		}
	}

	if site.LValue != nil {
		for _, ret := range callee.ReturnVars() {
			s.addPFGEdge(s.pfg.VarPtr(ret), s.pfg.VarPtr(site.LValue))
		}
	}
	return nil
}
