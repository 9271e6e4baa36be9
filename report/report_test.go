package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/BarrensZeppelin/pta"
	"github.com/BarrensZeppelin/pta/cha"
	"github.com/BarrensZeppelin/pta/irutil"
	"github.com/BarrensZeppelin/pta/report"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `
	classes:
	  - name: A
	    methods:
	      - decl: A id()
	        body: return this
	  - name: B
	    extends: A
	    methods:
	      - decl: A id()
	        body: return this
	  - name: Main
	    methods:
	      - decl: static void main()
	        locals: [A a, A r]
	        body: |
	          a = new A   // a
	          r = invokevirtual a.<A: A id()>()
	          r = invokevirtual r.<A: A id()>()
`

func analyze(t *testing.T) *pta.Result {
	t.Helper()
	prog, err := irutil.LoadProgramFromSource(program)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	res, err := pta.Analyze(pta.AnalysisConfig{Program: prog, Log: logger})
	require.NoError(t, err)
	return res
}

func TestFromResult(t *testing.T) {
	s := report.FromResult(analyze(t))

	assert.Equal(t, []string{"<Main: void main()>"}, s.Entries)
	assert.Equal(t, []string{"<Main: void main()>", "<A: A id()>"}, s.Reachable)
	require.Len(t, s.Edges, 2)
	assert.Equal(t, report.Edge{
		Kind:   "VIRTUAL",
		Caller: "<Main: void main()>",
		Line:   s.Edges[0].Line,
		Site:   "r = invokevirtual a.<A: A id()>()",
		Callee: "<A: A id()>",
	}, s.Edges[0])
	assert.Equal(t, s.Edges[0].Line+1, s.Edges[1].Line)

	assert.Equal(t, []report.PointsTo{
		{Pointer: "<A: A id()>/this", Objects: []string{"a"}},
		{Pointer: "<Main: void main()>/a", Objects: []string{"a"}},
		{Pointer: "<Main: void main()>/r", Objects: []string{"a"}},
	}, s.PointsTo)
}

func TestFromCallGraph(t *testing.T) {
	prog, err := irutil.LoadProgramFromSource(program)
	require.NoError(t, err)
	cg, err := cha.CallGraph(prog, prog.Main)
	require.NoError(t, err)

	s := report.FromCallGraph(cg)
	assert.ElementsMatch(t, []string{"<Main: void main()>", "<A: A id()>", "<B: A id()>"}, s.Reachable)
	assert.Len(t, s.Edges, 4)
	assert.Empty(t, s.PointsTo)
}

func TestEncodings(t *testing.T) {
	s := report.FromResult(analyze(t))

	for _, format := range []string{"yaml", "msgpack"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, report.Write(&buf, s, format))
			decoded, err := report.Read(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, s, decoded)
		})
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf, s, "text"))
		out := buf.String()
		assert.Contains(t, out, "Reachable methods (2):")
		assert.Contains(t, out, "Call edges (2):")
		assert.Contains(t, out, "<Main: void main()>/r -> {a}")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorIs(t, report.Write(&bytes.Buffer{}, s, "xml"), report.ErrUnknownFormat)
		_, err := report.Read(strings.NewReader(""), "text")
		assert.ErrorIs(t, err, report.ErrUnknownFormat)
	})
}

func TestWriteDOT(t *testing.T) {
	res := analyze(t)

	var buf bytes.Buffer
	require.NoError(t, report.WriteDOT(&buf, res.CallGraph))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph callgraph {"), out)
	assert.Contains(t, out, `"<Main: void main()>" [shape=box];`)
	assert.Equal(t, 2, strings.Count(out, `"<Main: void main()>" -> "<A: A id()>"`),
		"every call site has its own edge")
	assert.Contains(t, out, `label="VIRTUAL:`)
	assert.NotContains(t, out, "  <", "method IDs must not be HTML strings")
	assert.Contains(t, out, `"<A: A id()>";`)
}
