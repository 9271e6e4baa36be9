package main

import (
	"io"

	"github.com/BarrensZeppelin/pta"
	"github.com/BarrensZeppelin/pta/callgraph"
	"github.com/BarrensZeppelin/pta/cha"
	"github.com/BarrensZeppelin/pta/dataflow"
	"github.com/BarrensZeppelin/pta/dataflow/constprop"
	"github.com/BarrensZeppelin/pta/dataflow/deadcode"
	"github.com/BarrensZeppelin/pta/dataflow/inter"
	"github.com/BarrensZeppelin/pta/internal/config"
	"github.com/BarrensZeppelin/pta/internal/slices"
	"github.com/BarrensZeppelin/pta/ir"
	"github.com/BarrensZeppelin/pta/report"
	"github.com/spf13/cobra"
)

func analyzeCmd(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <program.yaml>",
		Short: "Run the pointer analysis and print points-to sets and the call graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			res, err := runPointerAnalysis(rf.opts, prog)
			if err != nil {
				return err
			}
			return writeCallGraph(rf.opts, res.CallGraph, report.FromResult(res))
		},
	}
	cmd.Flags().String("heap-model", "", "heap abstraction, "+config.HeapAllocationSite+" or "+config.HeapType)
	cmd.Flags().String("work-list", "", "work list order, fifo or lifo")
	return cmd
}

func chaCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cha <program.yaml>",
		Short: "Build a call graph with class hierarchy analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			cg, err := runCHA(rf.opts, prog)
			if err != nil {
				return err
			}
			return writeCallGraph(rf.opts, cg, report.FromCallGraph(cg))
		},
	}
}

func constpropCmd(rf *rootFlags) *cobra.Command {
	var interprocedural bool
	cmd := &cobra.Command{
		Use:   "constprop <program.yaml>",
		Short: "Print the constants known after every statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			out := &report.Annotated{Analysis: "constants in"}
			if interprocedural {
				cg, err := buildCallGraph(rf.opts, prog)
				if err != nil {
					return err
				}
				icfg := inter.BuildICFG(cg)
				res := inter.Analyze(icfg)
				for _, m := range icfg.Methods() {
					out.Methods = append(out.Methods, report.Annotate(m, m.Stmts(), func(s ir.Stmt) string {
						return res.OutFact(s).String()
					}))
				}
			} else {
				for _, m := range concreteMethods(prog) {
					res := constprop.Analyze(dataflow.BuildCFG(m))
					out.Methods = append(out.Methods, report.Annotate(m, m.Stmts(), func(s ir.Stmt) string {
						return res.OutFact(s).String()
					}))
				}
			}

			return withOutput(rf.opts, func(w io.Writer) error {
				return report.WriteAnnotated(w, out, rf.opts.Format)
			})
		},
	}
	cmd.Flags().BoolVar(&interprocedural, "inter", false, "propagate constants across calls")
	cmd.Flags().String("call-graph", "", "call graph for --inter, "+config.CallGraphPTA+" or "+config.CallGraphCHA)
	return cmd
}

func deadcodeCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "deadcode <program.yaml>",
		Short: "Print unreachable statements and dead assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			out := &report.Annotated{Analysis: "dead code in"}
			for _, m := range concreteMethods(prog) {
				if dead := deadcode.Analyze(m); len(dead) > 0 {
					out.Methods = append(out.Methods, report.Annotate(m, dead, nil))
				}
			}
			log.Infof("Found dead code in %d methods", len(out.Methods))

			return withOutput(rf.opts, func(w io.Writer) error {
				return report.WriteAnnotated(w, out, rf.opts.Format)
			})
		},
	}
}

func concreteMethods(prog *ir.Program) []*ir.Method {
	return slices.Filter(prog.Methods(), func(m *ir.Method) bool { return !m.IsAbstract })
}

func runPointerAnalysis(opts *config.Options, prog *ir.Program) (*pta.Result, error) {
	conf, err := opts.AnalysisConfig(prog, log)
	if err != nil {
		return nil, err
	}
	res, err := pta.Analyze(conf)
	if err != nil {
		return nil, err
	}
	log.Infof("%d reachable methods", len(res.CallGraph.ReachableMethods()))
	return res, nil
}

func runCHA(opts *config.Options, prog *ir.Program) (*callgraph.Graph, error) {
	entry, err := opts.EntryMethod(prog)
	if err != nil {
		return nil, err
	}
	cg, err := cha.CallGraph(prog, entry)
	if err != nil {
		return nil, err
	}
	log.Infof("%d reachable methods", len(cg.ReachableMethods()))
	return cg, nil
}

func buildCallGraph(opts *config.Options, prog *ir.Program) (*callgraph.Graph, error) {
	if opts.CallGraph == config.CallGraphCHA {
		return runCHA(opts, prog)
	}
	res, err := runPointerAnalysis(opts, prog)
	if err != nil {
		return nil, err
	}
	return res.CallGraph, nil
}

func writeCallGraph(opts *config.Options, cg *callgraph.Graph, s *report.Snapshot) error {
	return withOutput(opts, func(w io.Writer) error {
		if opts.Format == "dot" {
			return report.WriteDOT(w, cg)
		}
		return report.Write(w, s, opts.Format)
	})
}
