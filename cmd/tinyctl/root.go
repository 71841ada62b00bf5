package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixjones/tinyheap/cmd/tinyctl/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
	logFile    string
	configPath string
)

var (
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

var rootCmd = &cobra.Command{
	Use:   "tinyctl",
	Short: "Replay and check allocation traces against a tiny heap",
	Long: `tinyctl drives the tinyheap allocators from line-oriented trace
scripts. It replays alloc, calloc, realloc and free operations against a
fixed region, verifies heap invariants, and prints the final free and used
lists together with allocator counters.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write JSON logs to this file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML allocator profile")

	addAllocatorFlags(rootCmd)
}

func execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("command failed", "err", err)
	}
	_ = logger.Close()
	if err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func initLogger() error {
	opts := logger.Options{
		Enabled: verbose || logFile != "",
		LogFile: logFile,
	}
	if verbose {
		opts.Level = logger.LevelDebug
	}
	return logger.Init(opts)
}

// Helper functions for output

// styled renders s with style unless color is disabled.
func styled(style lipgloss.Style, s string) string {
	if noColor {
		return s
	}
	return style.Render(s)
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printOK prints a highlighted success line if not in quiet mode
func printOK(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintln(os.Stdout, styled(okStyle, fmt.Sprintf(format, args...)))
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, styled(errorStyle, "Error:")+" "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printTitle prints a section heading if not in quiet mode
func printTitle(title string) {
	if !quiet {
		fmt.Fprintln(os.Stdout, styled(titleStyle, title))
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
