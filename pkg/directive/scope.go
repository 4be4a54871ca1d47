package directive

import (
	stderrors "errors"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/errors"
)

type ignoreMode uint8

const (
	ignoreNone ignoreMode = iota
	// ignoreSelf suppresses the element's remaining directives.
	ignoreSelf
	// ignoreAll also keeps the walker out of the element's subtree.
	ignoreAll
)

// marks holds ignore markers for the lifetime of one walk.
type marks struct {
	modes map[*html.Node]ignoreMode
}

func newMarks() *marks {
	return &marks{modes: make(map[*html.Node]ignoreMode)}
}

func (m *marks) set(el *html.Node, mode ignoreMode) {
	if mode > m.modes[el] {
		m.modes[el] = mode
	}
}

func (m *marks) ignored(el *html.Node) bool {
	return m.modes[el] != ignoreNone
}

func (m *marks) skipsDescendants(el *html.Node) bool {
	return m.modes[el] == ignoreAll
}

type queued struct {
	el  *html.Node
	run func() error
}

// scope is one deferred-activation batch.
type scope struct {
	parent *scope
	report ReportFunc
	queue  []queued
	marks  *marks
}

// Defer runs body inside a deferred-activation scope. Main handlers
// activated during body are queued and run in order once body returns;
// their failures (errors and panics) go to report. Scopes nest: an inner
// scope flushes when its own body returns.
func (r *Registry) Defer(report ReportFunc, body func()) {
	s := &scope{report: report, marks: newMarks()}
	r.mu.Lock()
	s.parent = r.scope
	r.scope = s
	r.mu.Unlock()

	popped := false
	pop := func() {
		if popped {
			return
		}
		popped = true
		r.mu.Lock()
		r.scope = s.parent
		r.mu.Unlock()
	}
	defer pop()

	body()
	pop()
	s.flush()
}

// SkipsDescendants reports whether an ignore marker set on el during the
// current scope asks the walker not to descend into el.
func (r *Registry) SkipsDescendants(el *html.Node) bool {
	s := r.currentScope()
	if s == nil {
		return false
	}
	return s.marks.skipsDescendants(el)
}

func (r *Registry) currentScope() *scope {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scope
}

func (r *Registry) currentMarks() *marks {
	if s := r.currentScope(); s != nil {
		return s.marks
	}
	return newMarks()
}

func (s *scope) enqueue(el *html.Node, run func() error) {
	s.queue = append(s.queue, queued{el: el, run: run})
}

func (s *scope) flush() {
	for len(s.queue) > 0 {
		q := s.queue[0]
		s.queue = s.queue[1:]
		s.invoke(q)
	}
}

func (s *scope) invoke(q queued) {
	if err := errors.Capture("directive.flush", q.run); err != nil {
		s.fail(q.el, err)
	}
}

func (s *scope) fail(el *html.Node, err error) {
	if s.report != nil {
		s.report(el, err)
		return
	}
	var de *errors.DirectiveError
	if stderrors.As(err, &de) {
		errors.ReportDirectiveError(de)
		return
	}
	errors.ReportDirectiveError(&errors.DirectiveError{
		Element:    el,
		Expression: errors.UnknownExpression,
		Err:        err,
	})
}
