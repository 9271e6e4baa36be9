// Package cha resolves call sites using class hierarchy analysis, and builds
// conservative call graphs from it.
package cha

import (
	"errors"
	"fmt"

	"github.com/BarrensZeppelin/pta/callgraph"
	"github.com/BarrensZeppelin/pta/internal/queue"
	"github.com/BarrensZeppelin/pta/ir"
)

var (
	ErrUnresolvedMethod = errors.New("unresolved method reference")
	ErrNoEntry          = errors.New("no entry method")
	// ErrNoTarget is returned by ResolveCallee when the receiver's class
	// neither declares nor inherits the invoked method.
	ErrNoTarget = errors.New("no dispatch target")
)

// Hierarchy answers the subtype queries needed to enumerate the possible
// targets of a virtual call. *ir.Program implements it.
type Hierarchy interface {
	DirectSubclassesOf(c *ir.Class) []*ir.Class
	DirectSubinterfacesOf(c *ir.Class) []*ir.Class
	DirectImplementorsOf(c *ir.Class) []*ir.Class
}

// Dispatch finds the method that an instance of class c executes when
// invoked with the given subsignature: the non-abstract method declared in c,
// or else the result of dispatching on c's superclass. It returns nil when no
// such method exists.
func Dispatch(c *ir.Class, subsig string) *ir.Method {
	for ; c != nil; c = c.Super {
		if m := c.DeclaredMethod(subsig); m != nil && !m.IsAbstract {
			return m
		}
	}
	return nil
}

func resolveStatic(ref *ir.MethodRef) *ir.Method {
	for c := ref.Class; c != nil; c = c.Super {
		if m := c.DeclaredMethod(ref.Subsignature); m != nil && m.IsStatic {
			return m
		}
	}
	return nil
}

// ResolveVirtualTargets returns every method that a virtual or interface call
// to subsig on a receiver of static type c may reach, in breadth first order
// over the subtypes of c.
func ResolveVirtualTargets(h Hierarchy, c *ir.Class, subsig string) []*ir.Method {
	var (
		targets []*ir.Method
		seen    = map[*ir.Method]bool{}
		visited = map[*ir.Class]bool{c: true}
		q       queue.Queue[*ir.Class]
	)

	q.Push(c)
	for !q.Empty() {
		k := q.Pop()
		if m := Dispatch(k, subsig); m != nil && !seen[m] {
			seen[m] = true
			targets = append(targets, m)
		}

		push := func(subs []*ir.Class) {
			for _, sub := range subs {
				if !visited[sub] {
					visited[sub] = true
					q.Push(sub)
				}
			}
		}
		if k.IsInterface {
			push(h.DirectSubinterfacesOf(k))
			push(h.DirectImplementorsOf(k))
		} else {
			push(h.DirectSubclassesOf(k))
		}
	}
	return targets
}

// Resolve returns the possible callees of site according to the class
// hierarchy.
func Resolve(h Hierarchy, site *ir.Invoke) ([]*ir.Method, error) {
	ref := site.Ref
	switch site.Kind {
	case ir.InvokeStatic:
		if m := resolveStatic(ref); m != nil {
			return []*ir.Method{m}, nil
		}
	case ir.InvokeSpecial:
		if m := Dispatch(ref.Class, ref.Subsignature); m != nil {
			return []*ir.Method{m}, nil
		}
	default:
		return ResolveVirtualTargets(h, ref.Class, ref.Subsignature), nil
	}
	return nil, fmt.Errorf("%w: %v at %v", ErrUnresolvedMethod, ref, site.Method())
}

// ResolveCallee returns the method invoked at site when the receiver is an
// instance of recv. recv is ignored for static and special calls. For
// virtual and interface calls ErrNoTarget is returned if recv (which may be
// nil for receivers that are not class instances) has no matching method.
func ResolveCallee(recv *ir.Class, site *ir.Invoke) (*ir.Method, error) {
	ref := site.Ref
	var m *ir.Method
	switch site.Kind {
	case ir.InvokeStatic:
		m = resolveStatic(ref)
	case ir.InvokeSpecial:
		m = Dispatch(ref.Class, ref.Subsignature)
	default:
		if m = Dispatch(recv, ref.Subsignature); m == nil {
			return nil, fmt.Errorf("%w: %v on %v", ErrNoTarget, ref, recv)
		}
		return m, nil
	}

	if m == nil {
		return nil, fmt.Errorf("%w: %v at %v", ErrUnresolvedMethod, ref, site.Method())
	}
	return m, nil
}

// ReceiverClass returns the class to dispatch from when site is invoked on an
// object of type t. Arrays inherit the methods of the root of the hierarchy,
// which is found by walking up from the class named at site. It returns nil
// when t has no class to dispatch from.
func ReceiverClass(t ir.Type, site *ir.Invoke) *ir.Class {
	switch t := t.(type) {
	case *ir.ClassType:
		return t.Class
	case *ir.ArrayType:
		c := site.Ref.Class
		if c == nil || c.IsInterface {
			return nil
		}
		for c.Super != nil {
			c = c.Super
		}
		return c
	}
	return nil
}

// CallGraph builds the call graph of the methods reachable from entries,
// resolving every call site with Resolve.
func CallGraph(h Hierarchy, entries ...*ir.Method) (*callgraph.Graph, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntry
	}

	cg := callgraph.New()
	var work queue.Queue[*ir.Method]
	for _, m := range entries {
		cg.AddEntryMethod(m)
		work.Push(m)
	}

	for !work.Empty() {
		m := work.Pop()
		if !cg.AddReachableMethod(m) {
			continue
		}

		for _, site := range cg.CallSitesIn(m) {
			callees, err := Resolve(h, site)
			if err != nil {
				return nil, err
			}
			for _, callee := range callees {
				cg.AddEdge(callgraph.Edge{
					Kind:     callgraph.KindOf(site),
					CallSite: site,
					Callee:   callee,
				})
				work.Push(callee)
			}
		}
	}
	return cg, nil
}
