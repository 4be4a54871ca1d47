package dom

// Event is a document-level notification.
type Event struct {
	Name     string
	Document *Document
}

// Listener handles a dispatched Event.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// AddEventListener registers fn for events named name.
// Returns a function that removes the listener.
func (d *Document) AddEventListener(name string, fn Listener) (remove func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[name] = append(d.listeners[name], listenerEntry{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		entries := d.listeners[name]
		for i, e := range entries {
			if e.id == id {
				d.listeners[name] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Dispatch synchronously invokes every listener registered for name, in
// registration order. Listeners added during dispatch are not called.
func (d *Document) Dispatch(name string) {
	d.mu.Lock()
	entries := make([]listenerEntry, len(d.listeners[name]))
	copy(entries, d.listeners[name])
	d.mu.Unlock()

	ev := Event{Name: name, Document: d}
	for _, e := range entries {
		e.fn(ev)
	}
}
