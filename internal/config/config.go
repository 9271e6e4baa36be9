// Package config holds the options of the command line tool, which may be
// read from a YAML file and then overridden by flags.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BarrensZeppelin/pta"
	"github.com/BarrensZeppelin/pta/ir"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

const (
	HeapAllocationSite = "allocation-site"
	HeapType           = "type"

	CallGraphPTA = "pta"
	CallGraphCHA = "cha"
)

// Formats lists the supported output formats. The first is the default.
var Formats = []string{"text", "yaml", "msgpack", "dot"}

type Options struct {
	// Entry is the signature of the entry method. The program's main method
	// is used when empty.
	Entry     string `yaml:"entry"`
	HeapModel string `yaml:"heap-model"`
	WorkList  string `yaml:"work-list"`
	LogLevel  string `yaml:"log-level"`
	Format    string `yaml:"format"`
	// Output is the file results are written to; standard output when empty.
	Output string `yaml:"output"`
	// CallGraph selects the call graph used by interprocedural analyses.
	CallGraph string `yaml:"call-graph"`
}

func NewDefault() *Options {
	return &Options{
		HeapModel: HeapAllocationSite,
		WorkList:  pta.FIFO.String(),
		LogLevel:  logrus.WarnLevel.String(),
		Format:    Formats[0],
		CallGraph: CallGraphPTA,
	}
}

// Load reads options from a YAML file. Options missing from the file keep
// their default values.
func Load(filename string) (*Options, error) {
	opts := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, opts); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return opts, nil
}

func (o *Options) Validate() error {
	if o.HeapModel != HeapAllocationSite && o.HeapModel != HeapType {
		return fmt.Errorf("%w: unknown heap model %q", ErrInvalid, o.HeapModel)
	}
	if _, err := pta.ParseWorkListOrder(o.WorkList); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !slices.Contains(Formats, o.Format) {
		return fmt.Errorf("%w: unknown format %q", ErrInvalid, o.Format)
	}
	if o.CallGraph != CallGraphPTA && o.CallGraph != CallGraphCHA {
		return fmt.Errorf("%w: unknown call graph %q", ErrInvalid, o.CallGraph)
	}
	return nil
}

func (o *Options) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(o.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

// EntryMethod returns the method named by Entry, or the main method of prog.
func (o *Options) EntryMethod(prog *ir.Program) (*ir.Method, error) {
	if o.Entry == "" {
		if prog.Main == nil {
			return nil, pta.ErrNoEntry
		}
		return prog.Main, nil
	}
	m := prog.Method(o.Entry)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ir.ErrUnknownMethod, o.Entry)
	}
	return m, nil
}

// AnalysisConfig translates the options into a configuration for the pointer
// analysis of prog.
func (o *Options) AnalysisConfig(prog *ir.Program, log logrus.FieldLogger) (pta.AnalysisConfig, error) {
	if err := o.Validate(); err != nil {
		return pta.AnalysisConfig{}, err
	}
	entry, err := o.EntryMethod(prog)
	if err != nil {
		return pta.AnalysisConfig{}, err
	}
	order, _ := pta.ParseWorkListOrder(o.WorkList)

	var heap pta.HeapModel
	switch o.HeapModel {
	case HeapType:
		heap = pta.NewTypeHeap()
	default:
		heap = pta.NewAllocationSiteHeap()
	}

	return pta.AnalysisConfig{
		Program:       prog,
		EntryMethods:  []*ir.Method{entry},
		Heap:          heap,
		WorkListOrder: order,
		Log:           log,
	}, nil
}
