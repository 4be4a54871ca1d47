package lifecycle

import (
	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/dom"
	"github.com/go-drift/weft/pkg/errors"
)

// Start brings the engine up: it announces initialization on the document,
// starts mutation observation, registers the mutation handlers, initializes
// every top-level element matching a registered selector, and announces
// completion.
//
// Listeners of EventInit may still register selectors and directives; the
// scan happens afterwards. Start returns ErrAlreadyStarted when called again,
// and a selector error when a registered selector cannot be compiled.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	e.mu.Unlock()

	if e.doc.Body() == nil {
		e.logger.Warn().Msg("Unable to initialize. Trying to start weft before <body> is available. " +
			"Did you parse a full document before calling Start?")
	}

	e.doc.Dispatch(EventInit)
	e.doc.Dispatch(EventInitializing)

	e.observer.Start()

	e.observer.OnElAdded(func(el *html.Node) {
		e.InitTree(el, e.walk)
	})
	e.observer.OnElRemoved(func(el *html.Node) {
		e.scheduler.NextTick(func() { e.DestroyTree(el) })
	})
	e.observer.OnAttributesAdded(func(el *html.Node, attrs []html.Attribute) {
		e.activate(el, attrs)
	})

	if err := e.scan(); err != nil {
		return &errors.WeftError{Op: "lifecycle.Start", Kind: errors.KindInit, Err: err}
	}

	e.doc.Dispatch(EventInitialized)
	return nil
}

// Stop ends mutation observation. Directives already active stay active.
func (e *Engine) Stop() {
	e.observer.Stop()
}

// scan initializes every selector match that is not nested inside a root.
func (e *Engine) scan() error {
	candidates, err := e.doc.QuerySelectorAll(e.AllSelectors()...)
	if err != nil {
		return err
	}

	var tops []*html.Node
	for _, el := range candidates {
		nested, err := e.nested(el)
		if err != nil {
			return err
		}
		if !nested {
			tops = append(tops, el)
		}
	}

	// A top-level init element may still sit inside another one; walk it
	// only if no earlier walk of this scan reached it.
	seen := make(map[*html.Node]bool)
	walker := func(root *html.Node, visit dom.VisitFunc) {
		e.walk(root, func(el *html.Node) dom.WalkAction {
			seen[el] = true
			return visit(el)
		})
	}
	for _, el := range tops {
		if seen[el] {
			continue
		}
		e.InitTree(el, walker)
	}
	return nil
}

// nested reports whether a root encloses el, searching from el's parent, or
// from el's own closest root when el has no parent.
func (e *Engine) nested(el *html.Node) (bool, error) {
	start := el.Parent
	if start == nil {
		root, err := e.ClosestRoot(el)
		if err != nil {
			return false, err
		}
		start = root
	}
	root, err := e.ClosestRoot(start)
	if err != nil {
		return false, err
	}
	return root != nil, nil
}
