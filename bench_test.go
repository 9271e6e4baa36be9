package pta_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/BarrensZeppelin/pta"
	"github.com/BarrensZeppelin/pta/cha"
	"github.com/BarrensZeppelin/pta/ir"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var blackHole any

// syntheticProgram generates a program with n subclasses of a base class
// Node. Each subclass overrides a method that allocates an object, stores it
// into a linked list and calls the method on the next node, so that the call
// graph and the heap grow with n.
func syntheticProgram(n int) string {
	var sb strings.Builder
	sb.WriteString("classes:\n")
	sb.WriteString("  - name: Node\n")
	sb.WriteString("    fields: [Node next, Node val, \"Node[] arr\"]\n")
	sb.WriteString("    methods:\n")
	sb.WriteString("      - decl: Node run(Node p)\n")
	sb.WriteString("        body: return p\n")

	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "  - name: N%d\n", i)
		sb.WriteString("    extends: Node\n")
		sb.WriteString("    methods:\n")
		sb.WriteString("      - decl: Node run(Node p)\n")
		sb.WriteString("        locals: [Node o, Node n, Node r, \"Node[] a\", int i]\n")
		sb.WriteString("        body: |\n")
		fmt.Fprintf(&sb, "          o = new N%d\n", (i+1)%n)
		sb.WriteString("          o.val = p\n")
		sb.WriteString("          this.next = o\n")
		sb.WriteString("          a = new Node[]\n")
		sb.WriteString("          i = 0\n")
		sb.WriteString("          a[i] = this\n")
		sb.WriteString("          this.arr = a\n")
		sb.WriteString("          n = this.next\n")
		sb.WriteString("          r = invokevirtual n.<Node: Node run(Node)>(o)\n")
		sb.WriteString("          return r\n")
	}

	sb.WriteString("  - name: Main\n")
	sb.WriteString("    methods:\n")
	sb.WriteString("      - decl: static void main()\n")
	sb.WriteString("        locals: [Node root, Node r]\n")
	sb.WriteString("        body: |\n")
	sb.WriteString("          root = new N0\n")
	sb.WriteString("          r = invokevirtual root.<Node: Node run(Node)>(root)\n")
	return sb.String()
}

func loadSynthetic(b *testing.B, n int) *ir.Program {
	prog, err := ir.Load(strings.NewReader(syntheticProgram(n)))
	require.NoError(b, err)
	return prog
}

func BenchmarkAnalyze(b *testing.B) {
	logger, _ := test.NewNullLogger()
	for _, n := range [...]int{10, 100, 500} {
		prog := loadSynthetic(b, n)
		for _, order := range [...]pta.WorkListOrder{pta.FIFO, pta.LIFO} {
			b.Run(fmt.Sprintf("N=%d/%v", n, order), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					res, err := pta.Analyze(pta.AnalysisConfig{
						Program:       prog,
						WorkListOrder: order,
						Log:           logger,
					})
					require.NoError(b, err)
					blackHole = res
				}
			})
		}
	}
}

func BenchmarkCHA(b *testing.B) {
	for _, n := range [...]int{10, 100, 500} {
		prog := loadSynthetic(b, n)
		b.Run(fmt.Sprintf("N=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				cg, err := cha.CallGraph(prog, prog.Main)
				require.NoError(b, err)
				blackHole = cg
			}
		})
	}
}

func TestSyntheticProgram(t *testing.T) {
	prog, err := ir.Load(strings.NewReader(syntheticProgram(20)))
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	res, err := pta.Analyze(pta.AnalysisConfig{Program: prog, Log: logger})
	require.NoError(t, err)

	// main and every override are reachable; the base method is not.
	require.Len(t, res.CallGraph.ReachableMethods(), 21)
	require.False(t, res.Reachable(prog.Method("<Node: Node run(Node)>")))

	cg, err := cha.CallGraph(prog, prog.Main)
	require.NoError(t, err)
	require.Len(t, cg.ReachableMethods(), 22)
	require.Len(t, res.CallGraph.RecursiveComponents(), 1)
}
