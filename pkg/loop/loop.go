// Package loop provides the single-threaded host loop the engine runs on.
//
// A Loop owns three queues, drained in the order a browser event loop would:
// macrotasks (Post), microtasks (QueueMicrotask) that run after the task that
// queued them, and next-tick callbacks (NextTick) batched into one macrotask
// so they run after every microtask of the current turn.
//
// Queueing is safe from any goroutine. Task bodies always run one at a time on
// whichever goroutine drives the loop (RunUntilIdle or Run).
package loop

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/go-drift/weft/pkg/errors"
)

// Loop is a cooperative task scheduler.
type Loop struct {
	mu            sync.Mutex
	tasks         []func()
	microtasks    []func()
	ticks         []func()
	tickScheduled bool
	wake          chan struct{}

	// OnUncaught receives errors passed to Throw. Defaults to reporting
	// them to the global errors handler.
	OnUncaught func(err error)
}

// New creates an idle loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn as a macrotask.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.signal()
}

// QueueMicrotask queues fn to run once the current task finishes, before the
// next macrotask.
func (l *Loop) QueueMicrotask(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.microtasks = append(l.microtasks, fn)
	l.mu.Unlock()
	l.signal()
}

// NextTick queues fn to run after the current batch of synchronous and
// microtask work. Callbacks queued in the same turn run together, in order,
// in a single macrotask.
func (l *Loop) NextTick(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.ticks = append(l.ticks, fn)
	schedule := !l.tickScheduled
	l.tickScheduled = true
	l.mu.Unlock()
	if schedule {
		l.Post(l.releaseTicks)
	}
}

func (l *Loop) releaseTicks() {
	l.mu.Lock()
	ticks := l.ticks
	l.ticks = nil
	l.tickScheduled = false
	l.mu.Unlock()
	for _, fn := range ticks {
		l.run("loop.nextTick", fn)
	}
}

// Throw re-raises err on a later macrotask, decoupled from the caller's
// stack, where it is handed to OnUncaught.
func (l *Loop) Throw(err error) {
	if err == nil {
		return
	}
	l.Post(func() { l.uncaught(err) })
}

func (l *Loop) uncaught(err error) {
	if l.OnUncaught != nil {
		l.OnUncaught(err)
		return
	}
	var de *errors.DirectiveError
	if stderrors.As(err, &de) {
		errors.ReportDirectiveError(de)
		return
	}
	errors.Report(&errors.WeftError{
		Op:        "loop.Throw",
		Kind:      errors.KindUncaught,
		Err:       err,
		Timestamp: time.Now(),
	})
}

// Pending reports whether any work is queued.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) > 0 || len(l.microtasks) > 0
}

// RunUntilIdle drains all queues on the calling goroutine, including work
// queued while draining.
func (l *Loop) RunUntilIdle() {
	for {
		l.drainMicrotasks()
		task, ok := l.nextTask()
		if !ok {
			return
		}
		l.run("loop.task", task)
	}
}

// Run serves queued work until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunUntilIdle()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) nextTask() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	task := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return task, true
}

func (l *Loop) drainMicrotasks() {
	for {
		l.mu.Lock()
		if len(l.microtasks) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.microtasks[0]
		l.microtasks[0] = nil
		l.microtasks = l.microtasks[1:]
		l.mu.Unlock()
		l.run("loop.microtask", fn)
	}
}

// run executes fn with panic recovery so one failing task never stops the loop.
func (l *Loop) run(op string, fn func()) {
	defer errors.Recover(op)
	fn()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
