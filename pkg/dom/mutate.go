package dom

import "golang.org/x/net/html"

// MutationType distinguishes mutation records.
type MutationType int

const (
	// ChildList records added or removed children of Target.
	ChildList MutationType = iota + 1
	// AttributeChange records a change to one attribute of Target.
	AttributeChange
)

// MutationRecord describes a single observed change, in the shape of a
// browser MutationRecord.
type MutationRecord struct {
	Type   MutationType
	Target *html.Node

	Added   []*html.Node
	Removed []*html.Node

	AttributeName string
	// OldValue is the attribute's previous value when HadOldValue is true.
	OldValue    string
	HadOldValue bool
}

type observerEntry struct {
	id int
	fn func(MutationRecord)
}

// Observe registers fn to receive a record for every mutation made through
// the Document to a connected node. The returned function unregisters it.
func (d *Document) Observe(fn func(MutationRecord)) (cancel func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.observers = append(d.observers, observerEntry{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, o := range d.observers {
			if o.id == id {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) notify(rec MutationRecord) {
	if !d.IsConnected(rec.Target) {
		return
	}
	d.mu.Lock()
	observers := make([]observerEntry, len(d.observers))
	copy(observers, d.observers)
	d.mu.Unlock()

	for _, o := range observers {
		o.fn(rec)
	}
}

// AppendChild adds child as the last child of parent. An attached child is
// moved, producing a removal record followed by an addition record.
func (d *Document) AppendChild(parent, child *html.Node) {
	d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts child into parent before ref, or at the end when ref
// is nil.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if child.Parent != nil {
		d.RemoveChild(child)
	}
	parent.InsertBefore(child, ref)
	d.notify(MutationRecord{Type: ChildList, Target: parent, Added: []*html.Node{child}})
}

// RemoveChild detaches n from its parent. Detached nodes are ignored.
func (d *Document) RemoveChild(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	connected := d.IsConnected(parent)
	parent.RemoveChild(n)
	if connected {
		d.notify(MutationRecord{Type: ChildList, Target: parent, Removed: []*html.Node{n}})
	}
}

// ReplaceChild swaps old for replacement in old's parent.
func (d *Document) ReplaceChild(replacement, old *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	next := old.NextSibling
	d.RemoveChild(old)
	d.InsertBefore(parent, replacement, next)
}

// SetAttribute sets el's attribute key to val.
func (d *Document) SetAttribute(el *html.Node, key, val string) {
	rec := MutationRecord{Type: AttributeChange, Target: el, AttributeName: key}
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Namespace == "" && a.Key == key {
			rec.OldValue, rec.HadOldValue = a.Val, true
			a.Val = val
			d.notify(rec)
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
	d.notify(rec)
}

// RemoveAttribute deletes el's attribute key when present.
func (d *Document) RemoveAttribute(el *html.Node, key string) {
	for i, a := range el.Attr {
		if a.Namespace == "" && a.Key == key {
			el.Attr = append(el.Attr[:i:i], el.Attr[i+1:]...)
			d.notify(MutationRecord{
				Type:          AttributeChange,
				Target:        el,
				AttributeName: key,
				OldValue:      a.Val,
				HadOldValue:   true,
			})
			return
		}
	}
}
