package trace

import (
	"context"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/heap/alloc"
	"github.com/felixjones/tinyheap/heap/verify"
)

var (
	// ErrInvariant is matched by the error returned when a check fails
	// during replay.
	ErrInvariant = errors.New("trace: invariant violated")

	// ErrNoIntrospection indicates a check against an allocator that cannot
	// report its state.
	ErrNoIntrospection = errors.New("trace: allocator does not support checks")
)

// Options controls Replay.
type Options struct {
	// CheckEach verifies invariants after every operation, not only at
	// explicit "check" lines.
	CheckEach bool

	// StopOnError aborts at the first failed allocation or free.
	StopOnError bool

	// Logger receives one debug record per operation. Nil discards.
	Logger *slog.Logger
}

// Step is the outcome of one operation.
type Step struct {
	Op       Op
	Addr     heap.Addr // resulting pointer, heap.Nil for free and check
	Err      error
	Panicked bool // Err was recovered from an allocator panic
}

// Result summarises a replay.
type Result struct {
	Steps  []Step
	Failed int
	Checks int

	// Live maps each variable to its current pointer. Like a C pointer
	// variable, a freed name keeps its dangling address.
	Live map[string]heap.Addr
}

// Replay runs ops against a in order.
//
// Variables start as heap.Nil, so "realloc" of an unset name allocates and
// "free" of one is a no-op. "alloc" and "calloc" assign their result, Nil on
// failure. "realloc" assigns only on success. "free" leaves the variable
// alone, so freeing it twice is a double free.
//
// Allocation errors are recorded in the Step and counted. They end the
// replay only under StopOnError. A failed invariant check always ends it,
// with an error matching ErrInvariant.
func Replay(a alloc.Allocator, ops []Op, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	debug := log.Enabled(context.Background(), slog.LevelDebug)

	res := &Result{
		Steps: make([]Step, 0, len(ops)),
		Live:  make(map[string]heap.Addr),
	}

	for _, op := range ops {
		step := Step{Op: op}
		if op.Kind == OpCheck {
			res.Checks++
			if err := check(a); err != nil {
				return res, errors.Wrapf(err, "line %d", op.Line)
			}
			res.Steps = append(res.Steps, step)
			continue
		}

		step.Addr, step.Panicked, step.Err = apply(a, op, res.Live[op.Name])
		switch {
		case op.Kind == OpAlloc, op.Kind == OpCalloc:
			res.Live[op.Name] = step.Addr
		case op.Kind == OpRealloc && step.Err == nil:
			res.Live[op.Name] = step.Addr
		}
		res.Steps = append(res.Steps, step)

		if debug {
			log.Debug("trace: op", "line", op.Line, "op", op.String(), "addr", step.Addr, "err", step.Err)
		}
		if step.Err != nil {
			res.Failed++
			if opts.StopOnError {
				return res, errors.Wrapf(step.Err, "line %d: %s", op.Line, op)
			}
		}

		if opts.CheckEach {
			res.Checks++
			if err := check(a); err != nil {
				return res, errors.Wrapf(err, "after line %d: %s", op.Line, op)
			}
		}
	}
	return res, nil
}

// invariantError reports a failed check. It matches ErrInvariant and
// unwraps to the underlying validation error.
type invariantError struct {
	err error
}

func (e *invariantError) Error() string {
	return "trace: invariant violated: " + e.err.Error()
}

func (e *invariantError) Is(target error) bool { return target == ErrInvariant }

func (e *invariantError) Unwrap() error { return e.err }

// apply runs a single allocator call, converting a FailPanic panic back into
// an error. Only out-of-memory and invalid-free panics are recovered; any
// other panic is an allocator bug and propagates.
func apply(a alloc.Allocator, op Op, cur heap.Addr) (addr heap.Addr, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !isPolicyPanic(e) {
				panic(r)
			}
			addr, panicked, err = heap.Nil, true, e
		}
	}()

	switch op.Kind {
	case OpAlloc:
		addr, err = a.Alloc(op.Size)
	case OpCalloc:
		addr, err = a.Calloc(op.Count, op.Size)
	case OpRealloc:
		addr, err = a.Realloc(cur, op.Size)
	case OpFree:
		err = a.Free(cur)
	default:
		err = errors.AssertionFailedf("trace: unexpected op %s", op.Kind)
	}
	return addr, false, err
}

func check(a alloc.Allocator) error {
	in, ok := a.(alloc.Introspector)
	if !ok {
		return ErrNoIntrospection
	}
	if err := verify.AllInvariants(in.Snapshot()); err != nil {
		return &invariantError{err: err}
	}
	return nil
}

// isPolicyPanic reports whether err is a panic raised by FailPanic.
func isPolicyPanic(err error) bool {
	var oom *alloc.OutOfMemoryError
	return errors.As(err, &oom) || errors.Is(err, alloc.ErrInvalidFree)
}
