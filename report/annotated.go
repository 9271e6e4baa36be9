package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/BarrensZeppelin/pta/ir"
)

// Annotated lists statements of methods together with what an
// intraprocedural or interprocedural analysis computed for them.
type Annotated struct {
	Analysis string            `yaml:"analysis" msgpack:"analysis"`
	Methods  []AnnotatedMethod `yaml:"methods" msgpack:"methods"`
}

type AnnotatedMethod struct {
	Method string          `yaml:"method" msgpack:"method"`
	Stmts  []AnnotatedStmt `yaml:"stmts" msgpack:"stmts"`
}

type AnnotatedStmt struct {
	Index int    `yaml:"index" msgpack:"index"`
	Line  int    `yaml:"line" msgpack:"line"`
	Stmt  string `yaml:"stmt" msgpack:"stmt"`
	Fact  string `yaml:"fact,omitempty" msgpack:"fact,omitempty"`
}

// Annotate describes stmts of m. A nil fact function leaves facts empty.
func Annotate(m *ir.Method, stmts []ir.Stmt, fact func(ir.Stmt) string) AnnotatedMethod {
	am := AnnotatedMethod{Method: m.String(), Stmts: []AnnotatedStmt{}}
	for _, s := range stmts {
		as := AnnotatedStmt{Index: s.Index(), Line: s.Line(), Stmt: s.String()}
		if fact != nil {
			as.Fact = fact(s)
		}
		am.Stmts = append(am.Stmts, as)
	}
	return am
}

func WriteAnnotated(w io.Writer, a *Annotated, format string) error {
	switch format {
	case "", "text":
		return writeAnnotatedText(w, a)
	}
	return encode(w, a, format)
}

func writeAnnotatedText(w io.Writer, a *Annotated) error {
	bw := bufio.NewWriter(w)
	for _, m := range a.Methods {
		fmt.Fprintf(bw, "%s %s\n", a.Analysis, m.Method)
		for _, s := range m.Stmts {
			fmt.Fprintf(bw, "  %3d@L%-3d %s", s.Index, s.Line, s.Stmt)
			if s.Fact != "" {
				fmt.Fprintf(bw, "  %s", s.Fact)
			}
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}
