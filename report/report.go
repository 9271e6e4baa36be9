// Package report renders analysis results for humans and for other tools.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BarrensZeppelin/pta"
	"github.com/BarrensZeppelin/pta/callgraph"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Snapshot is a self-contained, serializable view of a call graph and,
// when produced by the pointer analysis, of the non-empty points-to sets.
type Snapshot struct {
	Entries   []string   `yaml:"entries" msgpack:"entries"`
	Reachable []string   `yaml:"reachable" msgpack:"reachable"`
	Edges     []Edge     `yaml:"edges" msgpack:"edges"`
	PointsTo  []PointsTo `yaml:"points-to,omitempty" msgpack:"points_to,omitempty"`
}

type Edge struct {
	Kind   string `yaml:"kind" msgpack:"kind"`
	Caller string `yaml:"caller" msgpack:"caller"`
	Line   int    `yaml:"line" msgpack:"line"`
	Site   string `yaml:"site" msgpack:"site"`
	Callee string `yaml:"callee" msgpack:"callee"`
}

type PointsTo struct {
	Pointer string   `yaml:"pointer" msgpack:"pointer"`
	Objects []string `yaml:"objects" msgpack:"objects"`
}

func names[T fmt.Stringer](xs []T) []string {
	res := make([]string, len(xs))
	for i, x := range xs {
		res[i] = x.String()
	}
	return res
}

// FromCallGraph lists methods in the order they became reachable and edges
// in the order they were discovered.
func FromCallGraph(cg *callgraph.Graph) *Snapshot {
	s := &Snapshot{
		Entries:   names(cg.EntryMethods()),
		Reachable: names(cg.ReachableMethods()),
	}
	for _, e := range cg.Edges() {
		s.Edges = append(s.Edges, Edge{
			Kind:   e.Kind.String(),
			Caller: e.Caller().String(),
			Line:   e.CallSite.Line(),
			Site:   e.CallSite.String(),
			Callee: e.Callee.String(),
		})
	}
	return s
}

// FromResult additionally records every non-empty points-to set, sorted by
// pointer name.
func FromResult(res *pta.Result) *Snapshot {
	s := FromCallGraph(res.CallGraph)
	for _, p := range res.Pointers() {
		if p.PointsTo().IsEmpty() {
			continue
		}
		s.PointsTo = append(s.PointsTo, PointsTo{
			Pointer: p.String(),
			Objects: names(p.PointsTo().Objects()),
		})
	}
	slices.SortFunc(s.PointsTo, func(a, b PointsTo) bool {
		return a.Pointer < b.Pointer
	})
	return s
}

// Write encodes s in the given format: "text", "yaml" or "msgpack".
func Write(w io.Writer, s *Snapshot, format string) error {
	switch format {
	case "", "text":
		return WriteText(w, s)
	}
	return encode(w, s, format)
}

func encode(w io.Writer, v any, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(v)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func Read(r io.Reader, format string) (*Snapshot, error) {
	s := new(Snapshot)
	var err error
	switch format {
	case "yaml":
		err = yaml.NewDecoder(r).Decode(s)
	case "msgpack":
		err = msgpack.NewDecoder(r).Decode(s)
	default:
		return nil, fmt.Errorf("%w: cannot read %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return s, nil
}

func WriteText(w io.Writer, s *Snapshot) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Entry methods: %s\n", strings.Join(s.Entries, ", "))
	fmt.Fprintf(bw, "Reachable methods (%d):\n", len(s.Reachable))
	for _, m := range s.Reachable {
		fmt.Fprintf(bw, "  %s\n", m)
	}

	fmt.Fprintf(bw, "Call edges (%d):\n", len(s.Edges))
	for _, e := range s.Edges {
		fmt.Fprintf(bw, "  [%s] %s:%d %s\n      -> %s\n", e.Kind, e.Caller, e.Line, e.Site, e.Callee)
	}

	if len(s.PointsTo) > 0 {
		fmt.Fprintf(bw, "Points-to sets (%d):\n", len(s.PointsTo))
		for _, pt := range s.PointsTo {
			fmt.Fprintf(bw, "  %s -> {%s}\n", pt.Pointer, strings.Join(pt.Objects, ", "))
		}
	}
	return bw.Flush()
}
