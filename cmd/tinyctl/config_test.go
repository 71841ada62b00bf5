package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/heap/alloc"
)

func TestLoadProfile_Defaults(t *testing.T) {
	p, err := loadProfile("")
	require.NoError(t, err)
	assert.Equal(t, defaultProfile(), p)
}

func TestLoadProfile_PartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "p.yaml", `
limit: 0x3000
allocator:
  split_threshold: 64
  retain_top: true
  on_failure: panic
`)
	p, err := loadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, defaultBase, p.Base)
	assert.Equal(t, heap.Addr(0x3000), p.Limit)
	assert.Equal(t, strategyTiny, p.Strategy)
	assert.Equal(t, alloc.DefaultMaxBlocks, p.Allocator.MaxBlocks)
	assert.Equal(t, uintptr(64), p.Allocator.SplitThreshold)
	assert.True(t, p.Allocator.RetainTop)
	assert.Equal(t, alloc.FailPanic, p.Allocator.OnFailure)
}

func TestParseAddr(t *testing.T) {
	a, err := parseAddr("0x1000")
	require.NoError(t, err)
	assert.Equal(t, heap.Addr(0x1000), a)

	a, err = parseAddr("8192")
	require.NoError(t, err)
	assert.Equal(t, heap.Addr(0x2000), a)

	_, err = parseAddr("top")
	assert.Error(t, err)
}

func TestNewAllocator(t *testing.T) {
	p := defaultProfile()
	a, r, err := newAllocator(p)
	require.NoError(t, err)
	defer r.Close()

	ptr, err := a.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, p.Base, ptr)
	assert.True(t, r.Backed())
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tinyctl dev")
}
