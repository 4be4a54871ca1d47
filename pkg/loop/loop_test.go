package loop

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"
	"time"

	"github.com/go-drift/weft/pkg/errors"
)

func TestRunUntilIdle_Ordering(t *testing.T) {
	l := New()
	var got []string
	l.Post(func() {
		got = append(got, "task1")
		l.NextTick(func() { got = append(got, "tick") })
		l.QueueMicrotask(func() {
			got = append(got, "micro1")
			l.QueueMicrotask(func() { got = append(got, "micro2") })
		})
	})
	l.Post(func() { got = append(got, "task2") })

	l.RunUntilIdle()

	want := []string{"task1", "micro1", "micro2", "task2", "tick"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if l.Pending() {
		t.Error("loop should be idle")
	}
}

func TestMicrotasksBeforeFirstTask(t *testing.T) {
	l := New()
	var got []string
	l.Post(func() { got = append(got, "task") })
	l.QueueMicrotask(func() { got = append(got, "micro") })
	l.RunUntilIdle()
	if want := []string{"micro", "task"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestNextTick_BatchesAfterMicrotasks(t *testing.T) {
	l := New()
	var got []string
	l.NextTick(func() { got = append(got, "tick1") })
	l.QueueMicrotask(func() {
		got = append(got, "micro")
		l.NextTick(func() { got = append(got, "tick2") })
	})
	l.RunUntilIdle()
	if want := []string{"micro", "tick1", "tick2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestThrow_DeliversLater(t *testing.T) {
	l := New()
	var got []error
	l.OnUncaught = func(err error) { got = append(got, err) }

	boom := stderrors.New("boom")
	l.Throw(boom)
	l.Throw(nil)
	if len(got) != 0 {
		t.Fatal("Throw must not deliver synchronously")
	}
	l.RunUntilIdle()
	if len(got) != 1 || got[0] != boom {
		t.Errorf("uncaught = %v, want [boom]", got)
	}
}

func TestThrow_DefaultRoutesToGlobalHandler(t *testing.T) {
	h := &captureHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	l := New()
	l.Throw(&errors.DirectiveError{Expression: "x", Err: stderrors.New("a")})
	l.Throw(stderrors.New("plain"))
	l.RunUntilIdle()

	if len(h.directive) != 1 {
		t.Errorf("directive errors = %d, want 1", len(h.directive))
	}
	if len(h.errs) != 1 || h.errs[0].Kind != errors.KindUncaught {
		t.Errorf("expected one uncaught WeftError, got %+v", h.errs)
	}
}

func TestPanickingTaskDoesNotStopLoop(t *testing.T) {
	h := &captureHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	l := New()
	ran := false
	l.Post(func() { panic("task failed") })
	l.Post(func() { ran = true })
	l.RunUntilIdle()

	if !ran {
		t.Error("second task should run after a panic")
	}
	if len(h.panics) != 1 || h.panics[0].Op != "loop.task" {
		t.Errorf("expected one loop.task panic, got %+v", h.panics)
	}
}

func TestRun_ServesOtherGoroutines(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		l.Post(func() { close(done) })
	}()

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("posted task never ran")
	}
	cancel()
	if err := <-errc; !stderrors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

type captureHandler struct {
	errs      []*errors.WeftError
	panics    []*errors.PanicError
	directive []*errors.DirectiveError
}

func (h *captureHandler) HandleError(err *errors.WeftError) { h.errs = append(h.errs, err) }
func (h *captureHandler) HandlePanic(err *errors.PanicError) { h.panics = append(h.panics, err) }
func (h *captureHandler) HandleDirectiveError(err *errors.DirectiveError) { h.directive = append(h.directive, err) }
