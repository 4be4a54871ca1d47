package lifecycle

import (
	"slices"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/dom"
)

// AddRootSelector registers a selector identifying root elements.
func (e *Engine) AddRootSelector(fn SelectorFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rootSelectorCallbacks = append(e.rootSelectorCallbacks, fn)
}

// AddInitSelector registers a selector identifying elements that need
// initializing without being roots.
func (e *Engine) AddInitSelector(fn SelectorFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initSelectorCallbacks = append(e.initSelectorCallbacks, fn)
}

// RootSelectors evaluates every root selector callback, in registration
// order.
func (e *Engine) RootSelectors() []string {
	e.mu.Lock()
	fns := slices.Clone(e.rootSelectorCallbacks)
	e.mu.Unlock()
	return evaluate(fns)
}

// AllSelectors evaluates the root selector callbacks followed by the init
// selector callbacks.
func (e *Engine) AllSelectors() []string {
	e.mu.Lock()
	fns := append(slices.Clone(e.rootSelectorCallbacks), e.initSelectorCallbacks...)
	e.mu.Unlock()
	return evaluate(fns)
}

func evaluate(fns []SelectorFunc) []string {
	out := make([]string, 0, len(fns))
	for _, fn := range fns {
		out = append(out, fn())
	}
	return out
}

// IsRoot reports whether el matches a root selector.
func (e *Engine) IsRoot(el *html.Node) (bool, error) {
	for _, sel := range e.RootSelectors() {
		ok, err := e.doc.Matches(el, sel)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ClosestRoot returns el when it is a root, otherwise its nearest root
// ancestor element. It returns nil when no root encloses el.
func (e *Engine) ClosestRoot(el *html.Node) (*html.Node, error) {
	for cur := el; cur != nil; cur = dom.ParentElement(cur) {
		ok, err := e.IsRoot(cur)
		if err != nil {
			return nil, err
		}
		if ok {
			return cur, nil
		}
	}
	return nil, nil
}
