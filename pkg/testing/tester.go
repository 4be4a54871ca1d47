package testing

import (
	"bytes"
	"slices"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/dom"
	"github.com/go-drift/weft/pkg/lifecycle"
)

// TreeTester runs the lifecycle engine over a parsed document without a
// host. Failures the engine re-raises are captured rather than reported,
// and engine logs are written to an in-memory buffer.
type TreeTester struct {
	tb testing.TB
	rt *lifecycle.Runtime

	mu          sync.Mutex
	logs        bytes.Buffer
	activations []string
	cleanups    []string
	uncaught    []error
}

// NewTreeTester parses src and wires a runtime around it. Parse failures
// fail the test immediately.
func NewTreeTester(tb testing.TB, src string) *TreeTester {
	tb.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		tb.Fatalf("parse document: %v", err)
	}
	return NewTreeTesterForDocument(tb, doc)
}

// NewTreeTesterForDocument wires a runtime around an existing document.
func NewTreeTesterForDocument(tb testing.TB, doc *dom.Document) *TreeTester {
	t := &TreeTester{tb: tb}
	logger := zerolog.New(&lockedWriter{t: t})
	t.rt = lifecycle.NewRuntime(doc, logger)
	t.rt.Loop.OnUncaught = func(err error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.uncaught = append(t.uncaught, err)
	}
	tb.Cleanup(t.rt.Engine.Stop)
	return t
}

// Runtime returns the wired runtime.
func (t *TreeTester) Runtime() *lifecycle.Runtime {
	return t.rt
}

// Engine returns the lifecycle engine under test.
func (t *TreeTester) Engine() *lifecycle.Engine {
	return t.rt.Engine
}

// Document returns the document under test.
func (t *TreeTester) Document() *dom.Document {
	return t.rt.Document
}

// Directives returns the directive registry.
func (t *TreeTester) Directives() *directive.Registry {
	return t.rt.Directives
}

// Trace registers a recording definition for each directive type. Every
// activation appends "<element> <attribute>" to Activations, and every
// cleanup appends the same label to Cleanups.
func (t *TreeTester) Trace(types ...string) {
	for _, typ := range types {
		t.rt.Directives.Register(typ, directive.Definition{
			Handle: func(el *html.Node, d directive.Directive, u *directive.Utilities) error {
				label := Label(el, d)
				t.record(&t.activations, label)
				u.Cleanup(func() { t.record(&t.cleanups, label) })
				return nil
			},
		})
	}
}

// Label returns the label Trace records for directive d on el.
func Label(el *html.Node, d directive.Directive) string {
	return dom.Describe(el) + " " + d.Original
}

func (t *TreeTester) record(list *[]string, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	*list = append(*list, label)
}

// Start starts the engine and drains the loop. A start failure fails the
// test; use TryStart to assert on it.
func (t *TreeTester) Start() {
	t.tb.Helper()
	if err := t.TryStart(); err != nil {
		t.tb.Fatalf("start: %v", err)
	}
}

// TryStart starts the engine, drains the loop and returns the start error.
func (t *TreeTester) TryStart() error {
	return t.rt.Start()
}

// Pump drains the loop: pending mutation records, deferred teardown and
// re-raised failures. It keeps draining while work posted from other
// goroutines is still arriving.
func (t *TreeTester) Pump() {
	for t.rt.Loop.Pending() {
		t.rt.Loop.RunUntilIdle()
	}
}

// Pending reports whether the loop holds work that a Pump would run.
func (t *TreeTester) Pending() bool {
	return t.rt.Loop.Pending()
}

// Find evaluates a finder against the document.
func (t *TreeTester) Find(f Finder) FinderResult {
	return FinderResult{elements: f.Evaluate(t.rt.Document), finder: f}
}

// Activations returns the traced activations so far, in order.
func (t *TreeTester) Activations() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.activations)
}

// Cleanups returns the traced cleanups so far, in order.
func (t *TreeTester) Cleanups() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.cleanups)
}

// Uncaught returns the failures re-raised on the loop so far.
func (t *TreeTester) Uncaught() []error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.uncaught)
}

// Logs returns the engine's log output as JSON lines.
func (t *TreeTester) Logs() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.logs.String()
}

// Reset clears recorded activations, cleanups, failures and logs.
func (t *TreeTester) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activations = nil
	t.cleanups = nil
	t.uncaught = nil
	t.logs.Reset()
}

type lockedWriter struct {
	t *TreeTester
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.t.mu.Lock()
	defer w.t.mu.Unlock()
	return w.t.logs.Write(p)
}
