package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/heap/alloc"
)

// validSnapshot describes a heap with one free hole between two live blocks.
func validSnapshot() alloc.Snapshot {
	return alloc.Snapshot{
		Base:      0x1000,
		Limit:     0x2000,
		Top:       0x1100,
		Alignment: 4,
		MaxBlocks: 8,
		Free:      []alloc.Block{{Addr: 0x1040, Size: 0x40}},
		Used:      []alloc.Block{{Addr: 0x1080, Size: 0x80}, {Addr: 0x1000, Size: 0x40}},
		Fresh:     5,
	}
}

func TestAllInvariants_Valid(t *testing.T) {
	require.NoError(t, AllInvariants(validSnapshot()))
}

func TestAllInvariants_Empty(t *testing.T) {
	s := alloc.Snapshot{Base: 0x1000, Limit: 0x2000, Top: 0x1000, Alignment: 4, MaxBlocks: 8, Fresh: 8}
	require.NoError(t, AllInvariants(s))
}

func TestAllInvariants_Violations(t *testing.T) {
	table := []struct {
		name   string
		mutate func(s *alloc.Snapshot)
		typ    string
		addr   heap.Addr
	}{
		{
			name:   "lost-record",
			mutate: func(s *alloc.Snapshot) { s.Fresh = 4 },
			typ:    "Counts",
		},
		{
			name:   "top-above-limit",
			mutate: func(s *alloc.Snapshot) { s.Top = 0x2004 },
			typ:    "Bounds",
		},
		{
			name:   "block-above-top",
			mutate: func(s *alloc.Snapshot) { s.Used[0].Size = 0x100 },
			typ:    "Bounds",
			addr:   0x1080,
		},
		{
			name:   "empty-block",
			mutate: func(s *alloc.Snapshot) { s.Free[0].Size = 0 },
			typ:    "Bounds",
			addr:   0x1040,
		},
		{
			name:   "misaligned",
			mutate: func(s *alloc.Snapshot) { s.Used[0].Size = 0x7E },
			typ:    "Alignment",
			addr:   0x1080,
		},
		{
			name: "unsorted-free",
			mutate: func(s *alloc.Snapshot) {
				s.Used = s.Used[:1]
				s.Free = []alloc.Block{{Addr: 0x1020, Size: 0x10}, {Addr: 0x1000, Size: 0x10}}
				s.Fresh = 5
			},
			typ:  "FreeOrder",
			addr: 0x1000,
		},
		{
			name: "adjacent-free",
			mutate: func(s *alloc.Snapshot) {
				s.Used = s.Used[:1]
				s.Free = []alloc.Block{{Addr: 0x1000, Size: 0x40}, {Addr: 0x1040, Size: 0x40}}
				s.Fresh = 5
			},
			typ:  "Coalesced",
			addr: 0x1040,
		},
		{
			name:   "overlap",
			mutate: func(s *alloc.Snapshot) { s.Free[0].Addr = 0x1020 },
			typ:    "NoOverlap",
			addr:   0x1020,
		},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			s := validSnapshot()
			e.mutate(&s)

			err := AllInvariants(s)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, e.typ, verr.Type, "%v", err)
			assert.Equal(t, e.addr, verr.Addr)
		})
	}
}

func TestCounts_SkippedWithoutPool(t *testing.T) {
	s := validSnapshot()
	s.MaxBlocks = 0
	s.Fresh = 0
	assert.NoError(t, Counts(s))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Type: "Coalesced", Message: "adjacent", Addr: 0x1040}
	assert.Equal(t, "Coalesced at 0x1040: adjacent", err.Error())

	err = &ValidationError{Type: "Counts", Message: "short"}
	assert.Equal(t, "Counts: short", err.Error())
}

func TestCheck_LiveAllocator(t *testing.T) {
	r, err := heap.NewRegion(0x1000, make([]byte, 0x400))
	require.NoError(t, err)
	a, err := alloc.New(r, alloc.DefaultConfig())
	require.NoError(t, err)

	p, err := a.Alloc(100)
	require.NoError(t, err)
	_, err = a.Alloc(20)
	require.NoError(t, err)
	require.NoError(t, a.Free(p))

	assert.NoError(t, Check(a))
}
