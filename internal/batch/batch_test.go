package batch

import (
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(chunkSize int, delay, checkDelay time.Duration) (*Runner, *[]time.Duration) {
	r := New(hclog.NewNullLogger(), chunkSize, delay, checkDelay)
	var sleeps []time.Duration
	r.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return r, &sleeps
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("repo-%d", i)
	}
	return ids
}

func TestChunks(t *testing.T) {
	r, _ := newTestRunner(250, 0, 0)

	tests := []struct {
		name  string
		count int
		sizes []int
	}{
		{"empty", 0, nil},
		{"one partial chunk", 10, []int{10}},
		{"exactly one chunk", 250, []int{250}},
		{"one over the boundary", 251, []int{250, 1}},
		{"three chunks", 600, []int{250, 250, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := r.Chunks(makeIDs(tt.count))
			require.Len(t, chunks, len(tt.sizes))
			for i, size := range tt.sizes {
				assert.Len(t, chunks[i], size)
			}
		})
	}
}

func TestRunDelaysBetweenChunksOnly(t *testing.T) {
	r, sleeps := newTestRunner(250, 2*time.Second, 0)

	var calls int
	result := r.Run(makeIDs(251), func(ids []string) error {
		calls++
		return nil
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, 251, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []time.Duration{2 * time.Second}, *sleeps)
}

func TestRunContinuesPastFailedChunk(t *testing.T) {
	r, _ := newTestRunner(100, 0, 0)

	var calls int
	result := r.Run(makeIDs(250), func(ids []string) error {
		calls++
		if calls == 2 {
			return fmt.Errorf("server unavailable")
		}
		return nil
	})

	assert.Equal(t, 3, calls)
	assert.Equal(t, 150, result.Succeeded)
	assert.Equal(t, 100, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Chunk)
	assert.Len(t, result.Failures[0].IDs, 100)
	assert.Equal(t, "server unavailable", result.Failures[0].Message)
}

func TestRunFilteredFlushesFullAndFinalChunks(t *testing.T) {
	r, _ := newTestRunner(10, 0, 0)

	// items 0-14 need work, 15-19 are already done
	ids := makeIDs(20)
	done := func(id string) (bool, error) {
		var n int
		fmt.Sscanf(id, "repo-%d", &n)
		return n >= 15, nil
	}

	var submitted [][]string
	result := r.RunFiltered(ids, done, func(chunk []string) error {
		submitted = append(submitted, append([]string(nil), chunk...))
		return nil
	})

	require.Len(t, submitted, 2)
	assert.Len(t, submitted[0], 10)
	assert.Len(t, submitted[1], 5)
	assert.Equal(t, "repo-0", submitted[0][0])
	assert.Equal(t, "repo-14", submitted[1][4])
	assert.Equal(t, 15, result.Succeeded)
	assert.Equal(t, 5, result.Skipped)
	assert.Equal(t, 0, result.Warnings)
}

func TestRunFilteredFailsOpenOnPrecheckError(t *testing.T) {
	r, _ := newTestRunner(10, 0, 0)

	ids := []string{"repo-0", "repo-1", "repo-2"}
	precheck := func(id string) (bool, error) {
		if id == "repo-1" {
			return false, fmt.Errorf("scan history unavailable")
		}
		return false, nil
	}

	var submitted []string
	result := r.RunFiltered(ids, precheck, func(chunk []string) error {
		submitted = append(submitted, chunk...)
		return nil
	})

	assert.Equal(t, ids, submitted)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 1, result.Warnings)
	assert.Equal(t, 0, result.Skipped)
}

func TestRunFilteredPacesChecksAndChunks(t *testing.T) {
	r, sleeps := newTestRunner(2, 5*time.Second, time.Second)

	result := r.RunFiltered(makeIDs(5),
		func(id string) (bool, error) { return false, nil },
		func(chunk []string) error { return nil })

	assert.Equal(t, 5, result.Succeeded)
	// 4 check delays between 5 checks, 2 chunk delays between 3 chunks
	var checks, chunks int
	for _, d := range *sleeps {
		switch d {
		case time.Second:
			checks++
		case 5 * time.Second:
			chunks++
		}
	}
	assert.Equal(t, 4, checks)
	assert.Equal(t, 2, chunks)
}

func TestRunFilteredNoSubmitWhenAllSkipped(t *testing.T) {
	r, _ := newTestRunner(10, 0, 0)

	var calls int
	result := r.RunFiltered(makeIDs(4),
		func(id string) (bool, error) { return true, nil },
		func(chunk []string) error { calls++; return nil })

	assert.Equal(t, 0, calls)
	assert.Equal(t, 4, result.Skipped)
	assert.Equal(t, 0, result.Succeeded)
}
