// Package printer renders allocator snapshots and counters as text or JSON.
package printer

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/felixjones/tinyheap/heap/alloc"
)

const DefaultIndentSize = 2

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// ShowFree includes the free list.
	// Default: true
	ShowFree bool

	// ShowUsed includes live allocations.
	// Default: true
	ShowUsed bool

	// Language selects digit grouping for text output.
	// Default: language.English
	Language language.Tag
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:     FormatText,
		IndentSize: DefaultIndentSize,
		ShowFree:   true,
		ShowUsed:   true,
		Language:   language.English,
	}
}

// Printer handles formatted output of allocator state.
type Printer struct {
	opts   Options
	writer io.Writer
	msg    *message.Printer
}

// New creates a new Printer writing to w.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintSnapshot(a.Snapshot())
func New(w io.Writer, opts Options) *Printer {
	if opts.IndentSize <= 0 {
		opts.IndentSize = DefaultIndentSize
	}
	return &Printer{
		opts:   opts,
		writer: w,
		msg:    message.NewPrinter(opts.Language),
	}
}

// PrintSnapshot prints region bounds and the free and used lists.
func (p *Printer) PrintSnapshot(s alloc.Snapshot) error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(p.snapshotJSON(s))
	}
	return p.printSnapshotText(s)
}

// PrintStats prints allocator counters.
func (p *Printer) PrintStats(st alloc.Stats) error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(statsJSON(st))
	}
	return p.printStatsText(st)
}

// PrintReport prints a snapshot and counters together. JSON output is a
// single object.
func (p *Printer) PrintReport(s alloc.Snapshot, st alloc.Stats) error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(jsonReport{
			Snapshot: p.snapshotJSON(s),
			Stats:    statsJSON(st),
		})
	}
	if err := p.printSnapshotText(s); err != nil {
		return err
	}
	return p.printStatsText(st)
}
