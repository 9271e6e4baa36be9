package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BarrensZeppelin/pta"
	"github.com/BarrensZeppelin/pta/ir"
	"github.com/BarrensZeppelin/pta/irutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	opts := NewDefault()
	require.NoError(t, opts.Validate())
	assert.Equal(t, logrus.WarnLevel, opts.Level())
	assert.Equal(t, "text", opts.Format)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
heap-model: type
work-list: lifo
log-level: debug
format: dot
`)
	opts, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, HeapType, opts.HeapModel)
	assert.Equal(t, "lifo", opts.WorkList)
	assert.Equal(t, logrus.DebugLevel, opts.Level())
	assert.Equal(t, "dot", opts.Format)
	assert.Equal(t, CallGraphPTA, opts.CallGraph, "missing options keep their defaults")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "format: [text"))
	assert.Error(t, err)

	for _, content := range []string{
		"heap-model: k-cfa",
		"work-list: random",
		"log-level: loud",
		"format: xml",
		"call-graph: rta",
	} {
		_, err := Load(writeConfig(t, content))
		assert.ErrorIs(t, err, ErrInvalid, content)
	}
}

func TestAnalysisConfig(t *testing.T) {
	prog, err := irutil.LoadProgramFromSource(`
		classes:
		  - name: Main
		    methods:
		      - decl: static void main()
		        body: return
		      - decl: static void other()
		        body: return`)
	require.NoError(t, err)

	opts := NewDefault()
	cfg, err := opts.AnalysisConfig(prog, nil)
	require.NoError(t, err)
	assert.Equal(t, []*ir.Method{prog.Main}, cfg.EntryMethods)
	assert.IsType(t, &pta.AllocationSiteHeap{}, cfg.Heap)
	assert.Equal(t, pta.FIFO, cfg.WorkListOrder)

	opts.Entry = "<Main: void other()>"
	opts.HeapModel = HeapType
	opts.WorkList = "LIFO"
	cfg, err = opts.AnalysisConfig(prog, nil)
	require.NoError(t, err)
	assert.Equal(t, []*ir.Method{prog.Method("<Main: void other()>")}, cfg.EntryMethods)
	assert.IsType(t, &pta.TypeHeap{}, cfg.Heap)
	assert.Equal(t, pta.LIFO, cfg.WorkListOrder)

	opts.Entry = "<Main: void missing()>"
	_, err = opts.AnalysisConfig(prog, nil)
	assert.ErrorIs(t, err, ir.ErrUnknownMethod)

	opts.Entry = ""
	prog.Main = nil
	_, err = opts.AnalysisConfig(prog, nil)
	assert.ErrorIs(t, err, pta.ErrNoEntry)
}
