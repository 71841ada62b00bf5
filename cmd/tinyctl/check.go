package main

import (
	"github.com/spf13/cobra"

	"github.com/felixjones/tinyheap/cmd/tinyctl/logger"
	"github.com/felixjones/tinyheap/internal/trace"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <trace>",
		Short: "Replay a trace verifying heap invariants after every operation",
		Long: `The check command replays a trace like replay, but validates the
allocator's bookkeeping after every operation: record counts, bounds,
alignment, free list order, coalescing, and overlap. The first violation
stops the run and is reported with the offending trace line.

Example:
  tinyctl check workload.trace
  tinyctl check workload.trace --retain-top --split-threshold 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	p, err := resolveProfile(cmd)
	if err != nil {
		return err
	}
	printVerbose("Checking %s with strategy %s\n", path, p.Strategy)

	ops, err := trace.ParseFile(path)
	if err != nil {
		return err
	}
	a, r, err := newAllocator(p)
	if err != nil {
		return err
	}
	defer r.Close()

	res, err := trace.Replay(a, ops, trace.Options{CheckEach: true, Logger: logger.L})
	if jsonOut {
		out := map[string]any{
			"trace":  path,
			"ok":     err == nil,
			"ops":    len(res.Steps),
			"checks": res.Checks,
			"failed": res.Failed,
		}
		if err != nil {
			out["error"] = err.Error()
		}
		if jerr := printJSON(out); jerr != nil {
			return jerr
		}
		return err
	}
	if err != nil {
		return err
	}

	printOK("OK: %d operations, %d checks, %d failed allocations", len(res.Steps), res.Checks, res.Failed)
	return nil
}
