package alloc

import (
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/internal/align"
)

// FailurePolicy selects how allocation failures surface.
type FailurePolicy uint8

const (
	// FailReturn returns heap.Nil and an error.
	FailReturn FailurePolicy = iota

	// FailPanic panics with *OutOfMemoryError.
	FailPanic
)

// FreePolicy selects how frees of unallocated addresses are handled.
type FreePolicy uint8

const (
	// FreeLenient ignores the call.
	FreeLenient FreePolicy = iota

	// FreeStrict reports ErrInvalidFree (and panics under FailPanic).
	FreeStrict
)

const (
	// DefaultMaxBlocks is the metadata pool size used by DefaultConfig.
	DefaultMaxBlocks = 64

	// DefaultSplitThreshold is the minimum leftover worth a new free block.
	DefaultSplitThreshold = 16

	// DefaultAlignment is the word size of 32-bit targets.
	DefaultAlignment = 4

	// maxBlocksLimit keeps record indexes inside blockRef.
	maxBlocksLimit = math.MaxInt32
)

// Config controls a Tiny allocator.
type Config struct {
	// MaxBlocks is the number of metadata records, the upper bound on the
	// number of free plus used blocks at any time.
	MaxBlocks int `yaml:"max_blocks"`

	// SplitThreshold is the minimum leftover (in bytes) for which a reused
	// block is split. Smaller leftovers stay inside the allocation.
	SplitThreshold uintptr `yaml:"split_threshold"`

	// Alignment applies to every size and address. Must be a power of two.
	Alignment uintptr `yaml:"alignment"`

	OnFailure  FailurePolicy `yaml:"on_failure"`
	FreePolicy FreePolicy    `yaml:"free_policy"`

	// RetainTop keeps a freed block that ends at top on the free list
	// instead of lowering top. The next allocation that reaches it in the
	// free list scan then resizes that block in place, growing or shrinking
	// it within limit.
	//
	// When false (the default) such a block is handed back to the untouched
	// region, so freeing every block returns top to base and the resize
	// path is never taken.
	RetainTop bool `yaml:"retain_top"`

	// Poison fills allocated and released memory with PoisonAlloc and
	// PoisonFree. Ignored for regions without backing memory.
	Poison bool `yaml:"poison"`

	// Logger receives allocator events. Nil selects the package default.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the configuration used when none is specified.
func DefaultConfig() Config {
	return Config{
		MaxBlocks:      DefaultMaxBlocks,
		SplitThreshold: DefaultSplitThreshold,
		Alignment:      DefaultAlignment,
		OnFailure:      FailReturn,
		FreePolicy:     FreeLenient,
	}
}

// Validate checks the configuration on its own.
func (c Config) Validate() error {
	if c.MaxBlocks < 1 {
		return errors.Wrapf(ErrBadConfig, "MaxBlocks must be >= 1, got %d", c.MaxBlocks)
	}
	if c.MaxBlocks > maxBlocksLimit {
		return errors.Wrapf(ErrBadConfig, "MaxBlocks must be <= %d, got %d", maxBlocksLimit, c.MaxBlocks)
	}
	if !align.IsPow2(c.Alignment) {
		return errors.Wrapf(ErrBadConfig, "Alignment must be a power of two, got %d", c.Alignment)
	}
	if c.OnFailure > FailPanic {
		return errors.Wrapf(ErrBadConfig, "unknown failure policy %d", c.OnFailure)
	}
	if c.FreePolicy > FreeStrict {
		return errors.Wrapf(ErrBadConfig, "unknown free policy %d", c.FreePolicy)
	}
	return nil
}

// validateRegion checks that r can be managed with this configuration.
func (c Config) validateRegion(r *heap.Region) error {
	if r == nil {
		return errors.Wrap(ErrBadConfig, "nil region")
	}
	if !align.Is(uintptr(r.Base()), c.Alignment) {
		return errors.Wrapf(ErrBadConfig, "region base 0x%X not aligned to %d", r.Base(), c.Alignment)
	}
	if !align.Is(uintptr(r.Limit()), c.Alignment) {
		return errors.Wrapf(ErrBadConfig, "region limit 0x%X not aligned to %d", r.Limit(), c.Alignment)
	}
	return nil
}

func (p FailurePolicy) String() string {
	switch p {
	case FailReturn:
		return "return"
	case FailPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p FailurePolicy) MarshalText() ([]byte, error) {
	if p > FailPanic {
		return nil, errors.Newf("alloc: unknown failure policy %d", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *FailurePolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "return", "":
		*p = FailReturn
	case "panic":
		*p = FailPanic
	default:
		return errors.Newf("alloc: unknown failure policy %q", text)
	}
	return nil
}

func (p FreePolicy) String() string {
	switch p {
	case FreeLenient:
		return "lenient"
	case FreeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p FreePolicy) MarshalText() ([]byte, error) {
	if p > FreeStrict {
		return nil, errors.Newf("alloc: unknown free policy %d", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *FreePolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "lenient", "":
		*p = FreeLenient
	case "strict":
		*p = FreeStrict
	default:
		return errors.Newf("alloc: unknown free policy %q", text)
	}
	return nil
}
