package lifecycle

import (
	stderrors "errors"
	"time"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/dom"
	"github.com/go-drift/weft/pkg/errors"
)

// InitTree activates the directives of el and its descendants in pre-order,
// inside one deferred-activation scope. A nil walker means dom.Walk.
//
// Failures are caught per activation, not once around the walk: an error or
// panic from one directive, or from resolving one element's directives, is
// handed to reportFailure and the element's remaining directives, its
// descendants and its siblings still activate. Handlers queued with
// deferred activation are caught the same way, one by one, when the scope
// flushes.
func (e *Engine) InitTree(el *html.Node, walker Walker) {
	if walker == nil {
		walker = e.walk
	}
	e.resolver.Defer(e.reportFailure, func() {
		walker(el, func(node *html.Node) dom.WalkAction {
			e.activate(node, dom.Attributes(node))
			if e.resolver.SkipsDescendants(node) {
				return dom.SkipChildren
			}
			return dom.Continue
		})
	})
}

// DestroyTree runs attribute cleanup on root and every element below it.
// Ignore markers do not apply: teardown always covers the whole subtree.
func (e *Engine) DestroyTree(root *html.Node) {
	e.walk(root, func(el *html.Node) dom.WalkAction {
		e.cleaner.CleanupAttributes(el)
		return dom.Continue
	})
}

// activate resolves and invokes el's directives for attrs.
func (e *Engine) activate(el *html.Node, attrs []html.Attribute) {
	acts, err := e.resolve(el, attrs)
	if err != nil {
		e.reportFailure(el, err)
		return
	}
	for _, act := range acts {
		if err := invoke(act); err != nil {
			e.reportFailure(el, err)
		}
	}
}

func (e *Engine) resolve(el *html.Node, attrs []html.Attribute) (acts []directive.Activation, err error) {
	err = errors.Capture("lifecycle.resolve", func() error {
		acts = e.resolver.Resolve(el, attrs)
		return nil
	})
	return acts, err
}

func invoke(act directive.Activation) error {
	return errors.Capture("lifecycle.activate", act)
}

// reportFailure re-raises a directive failure on the scheduler. Failures
// that already name their element and expression are thrown unchanged.
// Others get el and an unknown expression attached, and a warning is
// logged before they are thrown.
func (e *Engine) reportFailure(el *html.Node, err error) {
	var de *errors.DirectiveError
	if stderrors.As(err, &de) {
		if de.HasContext() {
			e.scheduler.Throw(err)
			return
		}
		de.Element = el
		de.Expression = errors.UnknownExpression
	} else {
		de = &errors.DirectiveError{
			Element:    el,
			Expression: errors.UnknownExpression,
			Err:        err,
			Timestamp:  time.Now(),
		}
		err = de
	}

	e.logger.Warn().
		Str("element", dom.Describe(el)).
		Err(de.Err).
		Msgf("weft error: %v", de.Err)
	e.scheduler.Throw(err)
}
