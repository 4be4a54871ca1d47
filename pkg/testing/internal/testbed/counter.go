// Package testbed provides internal fixture directives for the testing framework.
package testbed

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/dom"
)

// Counter counts activations per element and writes the running count to
// the element's data-count attribute.
type Counter struct {
	counts map[*html.Node]int
	doc    *dom.Document
}

// NewCounter returns a counter that writes through doc.
func NewCounter(doc *dom.Document) *Counter {
	return &Counter{counts: make(map[*html.Node]int), doc: doc}
}

// Definition returns the directive definition that increments the counter.
func (c *Counter) Definition() directive.Definition {
	return directive.Definition{
		Handle: func(el *html.Node, d directive.Directive, u *directive.Utilities) error {
			c.counts[el]++
			c.doc.SetAttribute(el, "data-count", strconv.Itoa(c.counts[el]))
			return nil
		},
	}
}

// Count returns how many times el was activated.
func (c *Counter) Count(el *html.Node) int {
	return c.counts[el]
}

// Failing returns a definition whose handler always returns err.
func Failing(err error) directive.Definition {
	return directive.Definition{
		Handle: func(el *html.Node, d directive.Directive, u *directive.Utilities) error {
			return err
		},
	}
}

// Panicking returns a definition whose handler panics with v.
func Panicking(v any) directive.Definition {
	return directive.Definition{
		Handle: func(el *html.Node, d directive.Directive, u *directive.Utilities) error {
			panic(fmt.Sprint(v))
		},
	}
}
