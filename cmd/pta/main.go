// Command pta runs the analyses of this module on programs in the YAML IR
// format.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/BarrensZeppelin/pta/internal/config"
	"github.com/BarrensZeppelin/pta/ir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var log = logrus.New()

type rootFlags struct {
	configFile string
	cpuprofile string
	opts       *config.Options
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:           "pta",
		Short:         "Pointer analysis, call graphs and dataflow analyses for the YAML IR",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rf.configFile, "config", "", "read options from YAML `file`")
	flags.StringVar(&rf.cpuprofile, "cpuprofile", "", "write cpu profile to `file`")
	flags.String("log-level", "", "log level (panic, fatal, error, warning, info, debug, trace)")
	flags.String("entry", "", "signature of the entry method (default: the main method)")
	flags.StringP("format", "f", "", fmt.Sprintf("output format, one of %v", config.Formats))
	flags.StringP("output", "o", "", "write results to `file` instead of standard output")

	var stopProfile func()
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd, rf.configFile)
		if err != nil {
			return err
		}
		rf.opts = opts
		setupLogging(opts.Level())

		if rf.cpuprofile != "" {
			stop, err := startProfile(rf.cpuprofile)
			if err != nil {
				return err
			}
			stopProfile = stop
		}
		return nil
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		if stopProfile != nil {
			stopProfile()
		}
	}

	root.AddCommand(
		analyzeCmd(&rf),
		chaCmd(&rf),
		constpropCmd(&rf),
		deadcodeCmd(&rf),
	)
	return root
}

func setupLogging(level logrus.Level) {
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
		ForceColors:     term.IsTerminal(int(os.Stderr.Fd())),
	})
}

// loadOptions reads the configuration file, if any, and lets flags that were
// set explicitly override it.
func loadOptions(cmd *cobra.Command, file string) (*config.Options, error) {
	opts := config.NewDefault()
	if file != "" {
		var err error
		if opts, err = config.Load(file); err != nil {
			return nil, err
		}
	}

	overrides := map[string]*string{
		"log-level":  &opts.LogLevel,
		"entry":      &opts.Entry,
		"format":     &opts.Format,
		"output":     &opts.Output,
		"heap-model": &opts.HeapModel,
		"work-list":  &opts.WorkList,
		"call-graph": &opts.CallGraph,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	return opts, opts.Validate()
}

func startProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			log.Errorf("Failed to close %s: %v", path, err)
		}
	}, nil
}

func loadProgram(path string) (*ir.Program, error) {
	prog, err := ir.LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded %d classes from %s", len(prog.Classes()), path)
	return prog, nil
}

// withOutput calls write with the configured output destination.
func withOutput(opts *config.Options, write func(io.Writer) error) (err error) {
	if opts.Output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
