package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixjones/tinyheap/cmd/tinyctl/logger"
	"github.com/felixjones/tinyheap/heap/printer"
	"github.com/felixjones/tinyheap/internal/trace"
)

var (
	replayStopOnError bool
	replayShowSteps   bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayStopOnError, "stop-on-error", false, "Abort at the first failed operation")
	cmd.Flags().BoolVar(&replayShowSteps, "steps", false, "Print the outcome of every operation")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay a trace and print the final heap",
		Long: `The replay command runs every operation of a trace against a fresh
allocator and prints the final free and used lists plus allocator counters.
Failed allocations are counted and reported but do not stop the replay
unless --stop-on-error is given.

Example:
  tinyctl replay workload.trace
  tinyctl replay workload.trace --max-blocks 16 --split-threshold 64
  tinyctl replay workload.trace --strategy bump --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args)
		},
	}
	return cmd
}

// replayOutput is the JSON form of a replay.
type replayOutput struct {
	Trace  string          `json:"trace"`
	Ops    int             `json:"ops"`
	Failed int             `json:"failed"`
	Checks int             `json:"checks"`
	Steps  []stepOutput    `json:"steps,omitempty"`
	Report json.RawMessage `json:"report"`
}

type stepOutput struct {
	Line  int    `json:"line"`
	Op    string `json:"op"`
	Addr  string `json:"addr,omitempty"`
	Error string `json:"error,omitempty"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	return runTrace(cmd, args[0], trace.Options{StopOnError: replayStopOnError}, replayShowSteps)
}

// runTrace parses path, replays it against the configured allocator, and
// prints the result. It is shared by replay and check.
func runTrace(cmd *cobra.Command, path string, opts trace.Options, showSteps bool) error {
	p, err := resolveProfile(cmd)
	if err != nil {
		return err
	}

	printVerbose("Parsing trace: %s\n", path)
	ops, err := trace.ParseFile(path)
	if err != nil {
		return err
	}

	a, r, err := newAllocator(p)
	if err != nil {
		return err
	}
	defer r.Close()

	opts.Logger = logger.L
	res, replayErr := trace.Replay(a, ops, opts)
	for _, s := range res.Steps {
		if s.Err != nil {
			logger.Warn("operation failed", "line", s.Op.Line, "op", s.Op.String(), "err", s.Err)
		}
	}
	logger.Info("replay finished", "trace", path, "ops", len(res.Steps), "failed", res.Failed, "err", replayErr)

	popts := printer.DefaultOptions()
	if jsonOut {
		popts.Format = printer.FormatJSON
		var report bytes.Buffer
		if err := printer.New(&report, popts).PrintReport(a.Snapshot(), a.Stats()); err != nil {
			return err
		}
		out := replayOutput{
			Trace:  path,
			Ops:    len(res.Steps),
			Failed: res.Failed,
			Checks: res.Checks,
			Report: report.Bytes(),
		}
		if showSteps {
			out.Steps = stepsOutput(res)
		}
		if err := printJSON(out); err != nil {
			return err
		}
		return replayErr
	}

	if showSteps {
		printTitle("Steps:")
		for _, s := range stepsOutput(res) {
			switch {
			case s.Error != "":
				printInfo("  %4d  %-24s %s\n", s.Line, s.Op, styled(errorStyle, s.Error))
			case s.Addr != "":
				printInfo("  %4d  %-24s -> %s\n", s.Line, s.Op, s.Addr)
			default:
				printInfo("  %4d  %s\n", s.Line, s.Op)
			}
		}
	}

	if !quiet {
		if err := printer.New(os.Stdout, popts).PrintReport(a.Snapshot(), a.Stats()); err != nil {
			return err
		}
	}
	printInfo("%d operations, %d failed\n", len(res.Steps), res.Failed)
	return replayErr
}

func stepsOutput(res *trace.Result) []stepOutput {
	out := make([]stepOutput, len(res.Steps))
	for i, s := range res.Steps {
		out[i] = stepOutput{Line: s.Op.Line, Op: s.Op.String()}
		if s.Err != nil {
			out[i].Error = s.Err.Error()
		} else if s.Op.Kind != trace.OpFree && s.Op.Kind != trace.OpCheck {
			out[i].Addr = fmt.Sprintf("0x%X", uintptr(s.Addr))
		}
	}
	return out
}
