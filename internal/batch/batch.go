// Package batch drives chunked, rate-limited bulk mutations with
// partial-failure accounting. Execution is strictly single-threaded: the
// only pacing controls are the inter-chunk and inter-check delays.
package batch

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultChunkSize is the number of units submitted per mutation call when
// no chunk size is configured.
const DefaultChunkSize = 250

// Failure records one failed chunk of work.
type Failure struct {
	Chunk   int
	IDs     []string
	Message string
}

// Result accumulates the counters of one bulk run. Partial failure is a
// normal outcome; the counters and failures are reported, never swallowed.
type Result struct {
	Succeeded int
	Failed    int
	Skipped   int
	Warnings  int
	Failures  []Failure
}

// SubmitFunc performs one mutation call for a chunk of target ids.
type SubmitFunc func(ids []string) error

// PrecheckFunc reports whether a single target already satisfies the goal of
// the run and can be skipped.
type PrecheckFunc func(id string) (bool, error)

// Runner drives chunked mutation calls.
type Runner struct {
	ChunkSize  int
	Delay      time.Duration // between chunk submissions
	CheckDelay time.Duration // between per-item precondition checks
	Logger     hclog.Logger

	sleep func(time.Duration)
}

// New creates a Runner with the given pacing settings.
func New(logger hclog.Logger, chunkSize int, delay, checkDelay time.Duration) *Runner {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{
		ChunkSize:  chunkSize,
		Delay:      delay,
		CheckDelay: checkDelay,
		Logger:     logger,
		sleep:      time.Sleep,
	}
}

// Chunks splits ids into ChunkSize-sized slices, preserving order.
func (r *Runner) Chunks(ids []string) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += r.ChunkSize {
		end := start + r.ChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// Run submits every chunk of the pre-computed target set. A failed chunk is
// recorded and the loop continues; the delay applies strictly between
// chunks, never after the last one.
func (r *Runner) Run(ids []string, submit SubmitFunc) *Result {
	result := &Result{}
	for i, chunk := range r.Chunks(ids) {
		if i > 0 && r.Delay > 0 {
			r.sleep(r.Delay)
		}
		r.submitChunk(result, i, chunk, submit)
	}
	return result
}

// streamState is the explicit accumulator of a streaming run: the pending
// buffer of units awaiting submission and the index of the next chunk.
type streamState struct {
	pending []string
	chunk   int
}

// RunFiltered evaluates targets one at a time against the precondition and
// submits the ones that still need work in ChunkSize batches, flushing the
// remainder at end of input. A precondition error fails open: the unit is
// kept in the buffer and a warning is recorded, because dropping it would
// silently exclude it from a best-effort run.
func (r *Runner) RunFiltered(ids []string, precheck PrecheckFunc, submit SubmitFunc) *Result {
	result := &Result{}
	state := &streamState{}

	for i, id := range ids {
		if i > 0 && r.CheckDelay > 0 {
			r.sleep(r.CheckDelay)
		}

		done, err := precheck(id)
		if err != nil {
			result.Warnings++
			r.Logger.Warn("precondition check failed, keeping unit in the batch",
				"id", id, "error", err)
		} else if done {
			result.Skipped++
			continue
		}

		state.pending = append(state.pending, id)
		if len(state.pending) >= r.ChunkSize {
			r.flush(result, state, submit)
		}
	}
	r.flush(result, state, submit)

	return result
}

// flush submits the pending buffer as one chunk, pacing between chunks only.
func (r *Runner) flush(result *Result, state *streamState, submit SubmitFunc) {
	if len(state.pending) == 0 {
		return
	}
	if state.chunk > 0 && r.Delay > 0 {
		r.sleep(r.Delay)
	}
	r.submitChunk(result, state.chunk, state.pending, submit)
	state.chunk++
	state.pending = nil
}

func (r *Runner) submitChunk(result *Result, index int, chunk []string, submit SubmitFunc) {
	r.Logger.Debug("submitting chunk", "chunk", index, "size", len(chunk))
	if err := submit(chunk); err != nil {
		result.Failed += len(chunk)
		result.Failures = append(result.Failures, Failure{
			Chunk:   index,
			IDs:     append([]string(nil), chunk...),
			Message: err.Error(),
		})
		r.Logger.Error("chunk failed", "chunk", index, "size", len(chunk), "error", err)
		return
	}
	result.Succeeded += len(chunk)
}
