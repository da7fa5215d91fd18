package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vyrodovalexey/avembed/internal/observability"
)

var (
	// ErrClosed is returned when a task is enqueued after Close.
	ErrClosed = errors.New("bridge: loop closed")

	// ErrNilTask is returned when a nil task is enqueued.
	ErrNilTask = errors.New("bridge: nil task")
)

// Task is a unit of work submitted for execution on the host's thread.
type Task func()

// Executor accepts tasks for execution in a host-controlled context.
// Implementations decide where and when tasks run; callers must assume
// the task executes asynchronously on another goroutine.
type Executor interface {
	// Enqueue submits a task. It blocks while the queue is full and
	// returns the context error if ctx expires first.
	Enqueue(ctx context.Context, task Task) error
}

// Loop is an Executor backed by a bounded queue drained by a single
// goroutine. It is the reference execution bridge for hosts that pump
// tasks from their own loop: start Run on the goroutine that owns the
// host state, and every enqueued task executes there, serialized.
type Loop struct {
	tasks     chan Task
	done      chan struct{}
	closeOnce sync.Once
	logger    observability.Logger
}

// NewLoop creates a Loop with the given queue capacity.
func NewLoop(capacity int, logger observability.Logger) *Loop {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Loop{
		tasks:  make(chan Task, capacity),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Enqueue submits a task to the loop. It blocks while the queue is
// full, failing with the context error if ctx expires or ErrClosed if
// the loop shuts down while waiting.
func (l *Loop) Enqueue(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}

	select {
	case <-l.done:
		return ErrClosed
	default:
	}

	select {
	case l.tasks <- task:
		m := getBridgeMetrics()
		m.enqueuedTotal.Inc()
		m.queueDepth.Set(float64(len(l.tasks)))
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled or Close is called. It
// must be called from exactly one goroutine; that goroutine is where
// every task executes. On shutdown the tasks already queued are drained
// before Run returns, so accepted work is never silently dropped.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case task := <-l.tasks:
			l.execute(task)
		case <-ctx.Done():
			l.drain()
			return
		case <-l.done:
			l.drain()
			return
		}
	}
}

// RunOnce executes at most one queued task without blocking and
// reports whether a task ran. It lets hosts with their own event loop
// pump the bridge a task at a time.
func (l *Loop) RunOnce() bool {
	select {
	case task := <-l.tasks:
		l.execute(task)
		return true
	default:
		return false
	}
}

// Close stops accepting tasks and unblocks Run. Safe to call multiple
// times.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	return len(l.tasks)
}

func (l *Loop) drain() {
	for {
		select {
		case task := <-l.tasks:
			l.execute(task)
		default:
			return
		}
	}
}

// execute runs a task, containing any panic so one faulty task cannot
// kill the loop. Tasks built by RunOn recover their own panics first
// and surface them to the caller; this recovery is for bare tasks.
func (l *Loop) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			getBridgeMetrics().panicsTotal.Inc()
			l.logger.Error("task panic recovered",
				observability.Any("panic", r),
			)
		}
	}()

	task()
	m := getBridgeMetrics()
	m.executedTotal.Inc()
	m.queueDepth.Set(float64(len(l.tasks)))
}

type result[T any] struct {
	value T
	err   error
}

// RunOn executes fn on the executor and blocks until the result is
// available or ctx expires. A panic inside fn is captured and returned
// as an error rather than crashing the executor's goroutine. When ctx
// expires after the task was accepted, the task still runs to
// completion on the executor; only the caller stops waiting.
func RunOn[T any](ctx context.Context, exec Executor, fn func() (T, error)) (T, error) {
	var zero T

	out := make(chan result[T], 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				getBridgeMetrics().panicsTotal.Inc()
				out <- result[T]{err: fmt.Errorf("bridge: task panicked: %v", r)}
			}
		}()
		value, err := fn()
		out <- result[T]{value: value, err: err}
	}

	if err := exec.Enqueue(ctx, task); err != nil {
		return zero, err
	}

	select {
	case res := <-out:
		return res.value, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
