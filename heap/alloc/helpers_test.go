package alloc

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixjones/tinyheap/heap"
)

const (
	testBase  heap.Addr = 0x1000
	testLimit heap.Addr = 0x2000
)

// testConfig is the configuration most tests start from:
// 8 records, split at 16 bytes, 4-byte alignment.
func testConfig() Config {
	return Config{
		MaxBlocks:      8,
		SplitThreshold: 16,
		Alignment:      4,
	}
}

// newTestRegion creates a slice-backed region covering [base, limit).
func newTestRegion(t testing.TB, base, limit heap.Addr) (*heap.Region, []byte) {
	t.Helper()
	data := make([]byte, limit-base)
	r, err := heap.NewRegion(base, data)
	require.NoError(t, err)
	return r, data
}

// newTestTiny creates a Tiny over a fresh backed region. mutate may adjust
// the default test configuration.
func newTestTiny(t testing.TB, base, limit heap.Addr, mutate func(*Config)) (*Tiny, []byte) {
	t.Helper()
	r, data := newTestRegion(t, base, limit)
	conf := testConfig()
	if mutate != nil {
		mutate(&conf)
	}
	a, err := New(r, conf)
	require.NoError(t, err)
	return a, data
}

// mustAlloc allocates and fails the test on error.
func mustAlloc(t testing.TB, a Allocator, size uintptr) heap.Addr {
	t.Helper()
	p, err := a.Alloc(size)
	require.NoError(t, err, "Alloc(%d)", size)
	require.NotEqual(t, heap.Nil, p)
	return p
}

// recoverPanic runs fn and returns the recovered panic value, if any.
func recoverPanic(fn func()) (v any) {
	defer func() { v = recover() }()
	fn()
	return nil
}

// assertInvariants checks every structural property of a Tiny allocator.
func assertInvariants(t testing.TB, a *Tiny) {
	t.Helper()

	require.True(t, a.InvariantCheck(), "free + used + fresh must equal MaxBlocks")

	s := a.Snapshot()
	require.Equal(t, a.MaxBlocks(), len(s.Free)+len(s.Used)+s.Fresh)
	require.Equal(t, a.FreeBlockCount(), len(s.Free))
	require.Equal(t, a.UsedBlockCount(), len(s.Used))
	require.Equal(t, a.FreshBlockCount(), s.Fresh)

	require.LessOrEqual(t, s.Base, s.Top, "top below base")
	require.LessOrEqual(t, s.Top, s.Limit, "top above limit")

	checkBlock := func(kind string, b Block) {
		assert.Zero(t, uintptr(b.Addr)%s.Alignment, "%s block 0x%X misaligned", kind, b.Addr)
		assert.Zero(t, b.Size%s.Alignment, "%s block 0x%X size %d misaligned", kind, b.Addr, b.Size)
		assert.NotZero(t, b.Size, "%s block 0x%X empty", kind, b.Addr)
		assert.GreaterOrEqual(t, b.Addr, s.Base, "%s block 0x%X below base", kind, b.Addr)
		assert.LessOrEqual(t, b.End(), s.Top, "%s block 0x%X ends above top", kind, b.Addr)
	}

	for i, b := range s.Free {
		checkBlock("free", b)
		if i > 0 {
			prev := s.Free[i-1]
			assert.Less(t, prev.End(), b.Addr,
				"free blocks 0x%X and 0x%X out of order, overlapping, or adjacent", prev.Addr, b.Addr)
		}
	}
	for _, b := range s.Used {
		checkBlock("used", b)
	}

	all := append(append([]Block{}, s.Free...), s.Used...)
	sort.Slice(all, func(i, j int) bool { return all[i].Addr < all[j].Addr })
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].End(), all[i].Addr,
			"blocks 0x%X and 0x%X overlap", all[i-1].Addr, all[i].Addr)
	}
}
