package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/felixjones/tinyheap/cmd/tinyctl/logger"
	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/heap/alloc"
)

const (
	strategyTiny = "tiny"
	strategyBump = "bump"

	defaultBase  heap.Addr = 0x1000
	defaultLimit heap.Addr = 0x2000
)

// profile is the allocator setup, loaded from --config and then overridden
// by any allocator flag given on the command line.
type profile struct {
	Base      heap.Addr    `yaml:"base"`
	Limit     heap.Addr    `yaml:"limit"`
	Strategy  string       `yaml:"strategy"`
	Allocator alloc.Config `yaml:"allocator"`
}

func defaultProfile() profile {
	return profile{
		Base:      defaultBase,
		Limit:     defaultLimit,
		Strategy:  strategyTiny,
		Allocator: alloc.DefaultConfig(),
	}
}

var (
	flagBase           string
	flagLimit          string
	flagMaxBlocks      int
	flagSplitThreshold uint
	flagAlign          uint
	flagStrict         bool
	flagPanic          bool
	flagPoison         bool
	flagRetainTop      bool
	flagStrategy       string
)

func addAllocatorFlags(cmd *cobra.Command) {
	def := defaultProfile()
	f := cmd.PersistentFlags()
	f.StringVar(&flagBase, "base", fmt.Sprintf("0x%X", def.Base), "Region base address")
	f.StringVar(&flagLimit, "limit", fmt.Sprintf("0x%X", def.Limit), "Region limit address (exclusive)")
	f.IntVar(&flagMaxBlocks, "max-blocks", def.Allocator.MaxBlocks, "Block metadata records")
	f.UintVar(&flagSplitThreshold, "split-threshold", uint(def.Allocator.SplitThreshold), "Minimum leftover worth splitting off")
	f.UintVar(&flagAlign, "align", uint(def.Allocator.Alignment), "Size and address alignment (power of two)")
	f.BoolVar(&flagStrict, "strict", false, "Report frees of unallocated addresses")
	f.BoolVar(&flagPanic, "panic", false, "Panic on allocation failure instead of returning an error")
	f.BoolVar(&flagPoison, "poison", false, "Fill allocated and freed memory with poison bytes")
	f.BoolVar(&flagRetainTop, "retain-top", false, "Keep a freed block at top on the free list")
	f.StringVar(&flagStrategy, "strategy", def.Strategy, "Allocator: tiny or bump")
}

// loadProfile reads the YAML profile at path. Fields missing from the file
// keep their defaults.
func loadProfile(path string) (profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return p, nil
}

// applyFlags overrides p with every allocator flag set on the command line.
func applyFlags(p *profile, flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "base":
			p.Base, err = parseAddr(flagBase)
		case "limit":
			p.Limit, err = parseAddr(flagLimit)
		case "max-blocks":
			p.Allocator.MaxBlocks = flagMaxBlocks
		case "split-threshold":
			p.Allocator.SplitThreshold = uintptr(flagSplitThreshold)
		case "align":
			p.Allocator.Alignment = uintptr(flagAlign)
		case "strict":
			p.Allocator.FreePolicy = alloc.FreeLenient
			if flagStrict {
				p.Allocator.FreePolicy = alloc.FreeStrict
			}
		case "panic":
			p.Allocator.OnFailure = alloc.FailReturn
			if flagPanic {
				p.Allocator.OnFailure = alloc.FailPanic
			}
		case "poison":
			p.Allocator.Poison = flagPoison
		case "retain-top":
			p.Allocator.RetainTop = flagRetainTop
		case "strategy":
			p.Strategy = flagStrategy
		}
	})
	return err
}

func parseAddr(s string) (heap.Addr, error) {
	v, err := strconv.ParseUint(s, 0, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return heap.Addr(v), nil
}

// resolveProfile builds the effective profile for cmd.
func resolveProfile(cmd *cobra.Command) (profile, error) {
	p, err := loadProfile(configPath)
	if err != nil {
		return p, err
	}
	if err := applyFlags(&p, cmd.Flags()); err != nil {
		return p, err
	}
	return p, nil
}

// heapAllocator is what the commands need from an allocator.
type heapAllocator interface {
	alloc.Allocator
	alloc.Introspector
}

// newAllocator maps the profile's region and creates the allocator over it.
// The returned region must be closed by the caller.
func newAllocator(p profile) (heapAllocator, *heap.Region, error) {
	if p.Limit <= p.Base {
		return nil, nil, fmt.Errorf("limit 0x%X must be above base 0x%X", p.Limit, p.Base)
	}
	r, err := heap.Map(p.Base, int(p.Limit-p.Base))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map region: %w", err)
	}

	conf := p.Allocator
	conf.Logger = logger.L

	var a heapAllocator
	switch p.Strategy {
	case strategyTiny, "":
		a, err = alloc.New(r, conf)
	case strategyBump:
		a, err = alloc.NewBump(r, conf)
	default:
		err = fmt.Errorf("unknown strategy %q (want %s or %s)", p.Strategy, strategyTiny, strategyBump)
	}
	if err != nil {
		_ = r.Close()
		return nil, nil, err
	}
	logger.Debug("allocator ready", "strategy", p.Strategy, "base", p.Base, "limit", p.Limit,
		"max_blocks", conf.MaxBlocks, "split_threshold", conf.SplitThreshold, "alignment", conf.Alignment)
	return a, r, nil
}
