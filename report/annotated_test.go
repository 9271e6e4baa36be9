package report_test

import (
	"bytes"
	"testing"

	"github.com/BarrensZeppelin/pta/ir"
	"github.com/BarrensZeppelin/pta/irutil"
	"github.com/BarrensZeppelin/pta/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestAnnotated(t *testing.T) {
	prog, err := irutil.LoadProgramFromSource(program)
	require.NoError(t, err)
	stmts := prog.Main.Stmts()

	a := &report.Annotated{
		Analysis: "dead code in",
		Methods: []report.AnnotatedMethod{
			report.Annotate(prog.Main, stmts[:1], func(s ir.Stmt) string { return "{}" }),
			report.Annotate(prog.Method("<A: A id()>"), nil, nil),
		},
	}
	require.Len(t, a.Methods[0].Stmts, 1)
	assert.Equal(t, report.AnnotatedStmt{
		Index: 0,
		Line:  stmts[0].Line(),
		Stmt:  "a = new A",
		Fact:  "{}",
	}, a.Methods[0].Stmts[0])

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.WriteAnnotated(&buf, a, "text"))
		assert.Contains(t, buf.String(), "dead code in <Main: void main()>\n")
		assert.Contains(t, buf.String(), "a = new A  {}\n")
		assert.Contains(t, buf.String(), "dead code in <A: A id()>\n")
	})

	t.Run("msgpack", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.WriteAnnotated(&buf, a, "msgpack"))
		var decoded report.Annotated
		require.NoError(t, msgpack.NewDecoder(&buf).Decode(&decoded))
		assert.Equal(t, a.Analysis, decoded.Analysis)
		require.Len(t, decoded.Methods, 2)
		assert.Equal(t, a.Methods[0], decoded.Methods[0])
		assert.Empty(t, decoded.Methods[1].Stmts)
	})

	assert.ErrorIs(t, report.WriteAnnotated(&bytes.Buffer{}, a, "dot"), report.ErrUnknownFormat)
}
