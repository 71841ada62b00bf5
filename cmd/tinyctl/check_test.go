package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommand_OK(t *testing.T) {
	path := writeFile(t, "scenario.trace", scenarioTrace+"check\n")

	out, err := run(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 5 operations, 5 checks, 0 failed allocations")
}

func TestCheckCommand_RetainTop(t *testing.T) {
	path := writeFile(t, "top.trace", "alloc a 100\nfree a\nalloc b 200\nfree b\nalloc c 40\n")

	out, err := run(t, "check", path, "--retain-top", "--json")
	require.NoError(t, err)

	v := decodeJSON(t, out)
	assert.Equal(t, true, v["ok"])
	assert.InDelta(t, 5, v["checks"], 0)
}

func TestCheckCommand_StrictDoubleFree(t *testing.T) {
	path := writeFile(t, "double.trace", "alloc a 8\nalloc g 8\nfree a\nfree a\n")

	out, err := run(t, "check", path, "--strict")
	require.NoError(t, err, "an invalid free is a failed operation, not a broken heap")
	assert.Contains(t, out, "1 failed allocations")
}

func TestCheckCommand_Profile(t *testing.T) {
	profile := writeFile(t, "profile.yaml", `
base: 0x1000
limit: 0x2000
strategy: tiny
allocator:
  max_blocks: 1
  free_policy: strict
  on_failure: return
`)
	path := writeFile(t, "scenario.trace", scenarioTrace)

	out, err := run(t, "check", path, "--config", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "1 failed allocations", "second alloc runs out of records")

	out, err = run(t, "check", path, "--config", profile, "--max-blocks", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "0 failed allocations", "flags override the profile")
}

func TestCheckCommand_BadProfile(t *testing.T) {
	path := writeFile(t, "scenario.trace", scenarioTrace)

	_, err := run(t, "check", path, "--config", writeFile(t, "bad.yaml", "allocator:\n  on_failure: explode\n"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = run(t, "check", path, "--config", "/nonexistent/profile.yaml")
	assert.ErrorContains(t, err, "failed to read config")
}
