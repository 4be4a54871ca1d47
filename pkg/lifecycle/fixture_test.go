package lifecycle

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/dom"
	"github.com/go-drift/weft/pkg/loop"
	"github.com/go-drift/weft/pkg/mutation"
)

// fakeScheduler holds deferred work and thrown failures for inspection.
type fakeScheduler struct {
	ticks  []func()
	thrown []error
}

func (s *fakeScheduler) NextTick(fn func()) { s.ticks = append(s.ticks, fn) }

func (s *fakeScheduler) Throw(err error) { s.thrown = append(s.thrown, err) }

func (s *fakeScheduler) runTicks() {
	ticks := s.ticks
	s.ticks = nil
	for _, fn := range ticks {
		fn()
	}
}

type fixture struct {
	doc         *dom.Document
	engine      *Engine
	registry    *directive.Registry
	observer    *mutation.Observer
	loop        *loop.Loop
	sched       *fakeScheduler
	logs        *bytes.Buffer
	activations []string
}

func newFixture(t *testing.T, src string) *fixture {
	t.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f := &fixture{
		doc:   doc,
		loop:  loop.New(),
		sched: &fakeScheduler{},
		logs:  &bytes.Buffer{},
	}
	f.observer = mutation.NewObserver(doc, f.loop)
	f.registry = directive.NewRegistry(f.observer)
	logger := zerolog.New(f.logs)
	f.engine = NewEngine(doc, Options{
		Observer:  f.observer,
		Resolver:  f.registry,
		Cleaner:   f.observer,
		Scheduler: f.sched,
		Logger:    &logger,
	})
	f.engine.AddRootSelector(func() string { return "[x-data]" })
	return f
}

// trace registers directive types that record "<element> <attribute>" on
// activation.
func (f *fixture) trace(types ...string) {
	for _, typ := range types {
		f.registry.Register(typ, directive.Definition{
			Handle: func(el *html.Node, d directive.Directive, u *directive.Utilities) error {
				f.activations = append(f.activations, dom.Describe(el)+" "+d.Original)
				return nil
			},
		})
	}
}

func (f *fixture) byID(t *testing.T, id string) *html.Node {
	t.Helper()
	el := f.doc.GetElementByID(id)
	if el == nil {
		t.Fatalf("no element #%s", id)
	}
	return el
}
