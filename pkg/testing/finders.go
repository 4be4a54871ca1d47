package testing

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/dom"
)

// Finder locates elements in a document.
type Finder interface {
	// Evaluate returns all matching elements under root (pre-order).
	Evaluate(doc *dom.Document) []*html.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []*html.Node
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *html.Node {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.describe()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *html.Node {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *html.Node {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.describe()))
	}
	return r.elements[index]
}

// All returns all matches in document order.
func (r FinderResult) All() []*html.Node {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// --- Concrete finders ---

type predicateFinder struct {
	match func(*html.Node) bool
	desc  string
}

func (f *predicateFinder) Evaluate(doc *dom.Document) []*html.Node {
	var out []*html.Node
	dom.Walk(doc.Root(), func(el *html.Node) dom.WalkAction {
		if f.match(el) {
			out = append(out, el)
		}
		return dom.Continue
	})
	return out
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByID matches the element whose id attribute equals id.
func ByID(id string) Finder {
	return &predicateFinder{
		match: func(el *html.Node) bool {
			v, ok := dom.GetAttribute(el, "id")
			return ok && v == id
		},
		desc: fmt.Sprintf("ByID(%q)", id),
	}
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) Finder {
	return &predicateFinder{
		match: func(el *html.Node) bool { return el.Data == tag },
		desc:  fmt.Sprintf("ByTag(%q)", tag),
	}
}

// ByAttribute matches elements carrying attribute key.
func ByAttribute(key string) Finder {
	return &predicateFinder{
		match: func(el *html.Node) bool {
			_, ok := dom.GetAttribute(el, key)
			return ok
		},
		desc: fmt.Sprintf("ByAttribute(%q)", key),
	}
}

type selectorFinder struct {
	selector string
}

// Evaluate panics on an invalid selector, since that is a bug in the test.
func (f *selectorFinder) Evaluate(doc *dom.Document) []*html.Node {
	nodes, err := doc.QuerySelectorAll(f.selector)
	if err != nil {
		panic(fmt.Sprintf("BySelector(%q): %v", f.selector, err))
	}
	return nodes
}

func (f *selectorFinder) Description() string {
	return fmt.Sprintf("BySelector(%q)", f.selector)
}

// BySelector matches elements selected by a CSS selector.
func BySelector(selector string) Finder {
	return &selectorFinder{selector: selector}
}
