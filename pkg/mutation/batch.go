package mutation

import (
	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/dom"
)

// orderedMap keeps insertion order of its keys.
type orderedMap[V any] struct {
	keys   []*html.Node
	values map[*html.Node]V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{values: make(map[*html.Node]V)}
}

func (m *orderedMap[V]) has(n *html.Node) bool {
	_, ok := m.values[n]
	return ok
}

func (m *orderedMap[V]) update(n *html.Node, fn func(V) V) {
	v, ok := m.values[n]
	if !ok {
		m.keys = append(m.keys, n)
	}
	m.values[n] = fn(v)
}

// batch is the net effect of one delivery of mutation records.
type batch struct {
	addedNodes   *orderedMap[struct{}]
	removedNodes *orderedMap[struct{}]
	addedAttrs   *orderedMap[[]html.Attribute]
	removedAttrs *orderedMap[[]string]

	// initialized holds the added elements handed to OnElAdded: connected,
	// not moved, and without an ancestor that is itself handed over.
	initialized []*html.Node
	initSet     map[*html.Node]bool
}

func (o *Observer) collect(records []dom.MutationRecord) *batch {
	b := &batch{
		addedNodes:   newOrderedMap[struct{}](),
		removedNodes: newOrderedMap[struct{}](),
		addedAttrs:   newOrderedMap[[]html.Attribute](),
		removedAttrs: newOrderedMap[[]string](),
		initSet:      make(map[*html.Node]bool),
	}
	keep := func(struct{}) struct{} { return struct{}{} }

	for _, rec := range records {
		switch rec.Type {
		case dom.ChildList:
			for _, n := range rec.Added {
				if n.Type == html.ElementNode {
					b.addedNodes.update(n, keep)
				}
			}
			for _, n := range rec.Removed {
				if n.Type == html.ElementNode {
					b.removedNodes.update(n, keep)
				}
			}
		case dom.AttributeChange:
			el, name := rec.Target, rec.AttributeName
			val, present := dom.GetAttribute(el, name)
			switch {
			case present && !rec.HadOldValue:
				b.addAttr(el, name, val)
			case present:
				b.removeAttr(el, name)
				b.addAttr(el, name, val)
			default:
				b.removeAttr(el, name)
			}
		}
	}

	candidates := make(map[*html.Node]bool)
	for _, n := range b.addedNodes.keys {
		if b.removedNodes.has(n) || !o.doc.IsConnected(n) {
			continue
		}
		candidates[n] = true
	}
	for _, n := range b.addedNodes.keys {
		if !candidates[n] || hasAncestorIn(n, candidates) {
			continue
		}
		b.initialized = append(b.initialized, n)
		b.initSet[n] = true
	}
	return b
}

func (b *batch) addAttr(el *html.Node, name, val string) {
	b.addedAttrs.update(el, func(attrs []html.Attribute) []html.Attribute {
		for i := range attrs {
			if attrs[i].Key == name {
				attrs[i].Val = val
				return attrs
			}
		}
		return append(attrs, html.Attribute{Key: name, Val: val})
	})
}

func (b *batch) removeAttr(el *html.Node, name string) {
	b.removedAttrs.update(el, func(names []string) []string {
		for _, n := range names {
			if n == name {
				return names
			}
		}
		return append(names, name)
	})
}

// coveredByAdd reports whether el is inside a subtree that OnElAdded will
// initialize in full.
func (b *batch) coveredByAdd(el *html.Node) bool {
	return b.initSet[el] || hasAncestorIn(el, b.initSet)
}

func hasAncestorIn(n *html.Node, set map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if set[p] {
			return true
		}
	}
	return false
}
