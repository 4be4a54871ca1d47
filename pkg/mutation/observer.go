// Package mutation turns document mutation records into element and
// attribute lifecycle callbacks, and keeps the per-attribute cleanup
// registry that teardown drains.
package mutation

import (
	"slices"
	"sync"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/dom"
)

// Scheduler queues work to run after the current task.
type Scheduler interface {
	QueueMicrotask(fn func())
}

type attrCleanup struct {
	name string
	fn   func()
}

// Observer batches mutation records and delivers them once per microtask.
type Observer struct {
	doc   *dom.Document
	sched Scheduler

	mu          sync.Mutex
	cancel      func()
	pending     []dom.MutationRecord
	flushQueued bool
	cleanups    map[*html.Node][]attrCleanup

	onElAdded         []func(el *html.Node)
	onElRemoved       []func(el *html.Node)
	onAttributesAdded []func(el *html.Node, attrs []html.Attribute)
}

// NewObserver creates an observer for doc. It records nothing until Start.
func NewObserver(doc *dom.Document, sched Scheduler) *Observer {
	return &Observer{
		doc:      doc,
		sched:    sched,
		cleanups: make(map[*html.Node][]attrCleanup),
	}
}

// Start begins recording mutations. Calling Start twice is a no-op.
func (o *Observer) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		return
	}
	o.cancel = o.doc.Observe(o.record)
}

// Stop delivers any pending records, then stops recording.
func (o *Observer) Stop() {
	o.Flush()
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Observing reports whether the observer is recording.
func (o *Observer) Observing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancel != nil
}

// Mutate runs fn with recording suspended, so changes made by fn produce no
// callbacks. Records pending before the call are delivered first.
func (o *Observer) Mutate(fn func()) {
	if !o.Observing() {
		fn()
		return
	}
	o.Stop()
	defer o.Start()
	fn()
}

// OnElAdded registers fn for elements inserted into the document.
func (o *Observer) OnElAdded(fn func(el *html.Node)) {
	o.mu.Lock()
	o.onElAdded = append(o.onElAdded, fn)
	o.mu.Unlock()
}

// OnElRemoved registers fn for elements detached from the document.
func (o *Observer) OnElRemoved(fn func(el *html.Node)) {
	o.mu.Lock()
	o.onElRemoved = append(o.onElRemoved, fn)
	o.mu.Unlock()
}

// OnAttributesAdded registers fn for attributes added to (or changed on)
// connected elements.
func (o *Observer) OnAttributesAdded(fn func(el *html.Node, attrs []html.Attribute)) {
	o.mu.Lock()
	o.onAttributesAdded = append(o.onAttributesAdded, fn)
	o.mu.Unlock()
}

// OnAttributeRemoved registers fn to run when attribute name is removed from
// el, or when el's attributes are cleaned up.
func (o *Observer) OnAttributeRemoved(el *html.Node, name string, fn func()) {
	o.mu.Lock()
	o.cleanups[el] = append(o.cleanups[el], attrCleanup{name: name, fn: fn})
	o.mu.Unlock()
}

// CleanupAttributes runs and forgets el's attribute cleanups for names, or
// for every attribute when names is empty. Repeated calls are harmless.
func (o *Observer) CleanupAttributes(el *html.Node, names ...string) {
	o.mu.Lock()
	entries := o.cleanups[el]
	var run, keep []attrCleanup
	for _, c := range entries {
		if len(names) == 0 || slices.Contains(names, c.name) {
			run = append(run, c)
		} else {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		delete(o.cleanups, el)
	} else {
		o.cleanups[el] = keep
	}
	o.mu.Unlock()

	for _, c := range run {
		c.fn()
	}
}

func (o *Observer) record(rec dom.MutationRecord) {
	o.mu.Lock()
	o.pending = append(o.pending, rec)
	queue := !o.flushQueued
	o.flushQueued = true
	o.mu.Unlock()
	if queue {
		o.sched.QueueMicrotask(o.Flush)
	}
}

// Flush delivers pending records immediately.
func (o *Observer) Flush() {
	o.mu.Lock()
	records := o.pending
	o.pending = nil
	o.flushQueued = false
	added := slices.Clone(o.onElAdded)
	removed := slices.Clone(o.onElRemoved)
	attrsAdded := slices.Clone(o.onAttributesAdded)
	o.mu.Unlock()

	if len(records) == 0 {
		return
	}
	b := o.collect(records)

	for _, el := range b.removedAttrs.keys {
		o.CleanupAttributes(el, b.removedAttrs.values[el]...)
	}
	for _, el := range b.addedAttrs.keys {
		if b.coveredByAdd(el) || !o.doc.IsConnected(el) {
			continue
		}
		for _, fn := range attrsAdded {
			fn(el, b.addedAttrs.values[el])
		}
	}
	for _, el := range b.removedNodes.keys {
		if b.addedNodes.has(el) {
			continue
		}
		for _, fn := range removed {
			fn(el)
		}
	}
	for _, el := range b.initialized {
		for _, fn := range added {
			fn(el)
		}
	}
}
