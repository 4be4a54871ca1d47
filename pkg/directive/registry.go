package directive

import (
	stderrors "errors"
	"slices"
	"sync"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/errors"
)

// DefaultPrefix is the attribute prefix used unless SetPrefix changes it.
const DefaultPrefix = "x-"

// HandlerFunc implements one phase of a directive.
type HandlerFunc func(el *html.Node, d Directive, u *Utilities) error

// Definition describes a directive type.
type Definition struct {
	// Inline runs as soon as the directive is activated, even inside a
	// deferred scope. Use it for markers other directives must observe.
	Inline HandlerFunc
	// Handle is the directive's main setup. Inside a deferred scope it is
	// queued until the scope ends.
	Handle HandlerFunc
}

// Activation performs one directive's one-time setup on one element.
type Activation func() error

// ReportFunc receives failures of deferred handlers.
type ReportFunc func(el *html.Node, err error)

// CleanupRegistrar stores cleanups keyed by element and attribute.
type CleanupRegistrar interface {
	OnAttributeRemoved(el *html.Node, name string, fn func())
}

// Registry maps directive types to definitions and resolves elements'
// attributes into activations.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]Definition
	fallback *Definition
	order    []string
	parser   *parser
	cleanups CleanupRegistrar
	scope    *scope
}

// NewRegistry creates a registry with the built-in ignore directive.
// cleanups may be nil, in which case Utilities.Cleanup callbacks are dropped.
func NewRegistry(cleanups CleanupRegistrar) *Registry {
	r := &Registry{
		defs:     make(map[string]Definition),
		order:    slices.Clone(defaultOrder),
		cleanups: cleanups,
	}
	r.parser = newParser(DefaultPrefix, r.order)
	r.Register("ignore", Definition{Inline: ignoreInline})
	return r
}

// Register adds or replaces the definition for directive type name.
func (r *Registry) Register(name string, def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[name] = def
}

// Registered reports whether a definition exists for name.
func (r *Registry) Registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

// SetFallback installs a definition used for directive types with no
// registration. By default such directives are no-ops.
func (r *Registry) SetFallback(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = &def
}

// Before moves name's priority to just ahead of other. When other has no
// fixed priority, name is placed ahead of the default slot.
func (r *Registry) Before(name, other string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order := slices.DeleteFunc(slices.Clone(r.order), func(s string) bool { return s == name })
	pos := slices.Index(order, other)
	if pos < 0 {
		pos = slices.Index(order, defaultSlot)
	}
	r.order = slices.Insert(order, pos, name)
	r.parser = newParser(r.parser.prefix, r.order)
}

// Prefix returns the current attribute prefix.
func (r *Registry) Prefix() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parser.prefix
}

// SetPrefix changes the attribute prefix (e.g., "data-x-").
func (r *Registry) SetPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parser = newParser(prefix, r.order)
}

// Prefixed returns name with the current prefix.
func (r *Registry) Prefixed(name string) string {
	return r.Prefix() + name
}

// Parse returns the directives among attrs, in activation order.
func (r *Registry) Parse(attrs []html.Attribute) []Directive {
	r.mu.RLock()
	p := r.parser
	r.mu.RUnlock()
	return p.parse(attrs)
}

// Resolve returns one activation per directive in attrs, in activation order.
// Activations resolved together share ignore markers; inside a deferred
// scope the markers belong to the scope.
func (r *Registry) Resolve(el *html.Node, attrs []html.Attribute) []Activation {
	dirs := r.Parse(attrs)
	if len(dirs) == 0 {
		return nil
	}
	m := r.currentMarks()
	acts := make([]Activation, 0, len(dirs))
	for _, d := range dirs {
		acts = append(acts, r.activation(el, d, m))
	}
	return acts
}

func (r *Registry) lookup(typ string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.defs[typ]; ok {
		return def, true
	}
	if r.fallback != nil {
		return *r.fallback, true
	}
	return Definition{}, false
}

func (r *Registry) activation(el *html.Node, d Directive, m *marks) Activation {
	return func() error {
		if m.ignored(el) {
			return nil
		}
		def, ok := r.lookup(d.Type)
		if !ok {
			return nil
		}
		u := &Utilities{el: el, directive: d, marks: m, cleanups: r.cleanups}
		if def.Inline != nil {
			if err := def.Inline(el, d, u); err != nil {
				return annotate(el, d, err)
			}
		}
		if def.Handle == nil {
			return nil
		}
		run := func() error { return annotate(el, d, def.Handle(el, d, u)) }
		if s := r.currentScope(); s != nil {
			s.enqueue(el, run)
			return nil
		}
		return run()
	}
}

// annotate attaches the originating element and expression to err unless it
// already carries a directive context.
func annotate(el *html.Node, d Directive, err error) error {
	if err == nil {
		return nil
	}
	var de *errors.DirectiveError
	if stderrors.As(err, &de) {
		return err
	}
	return &errors.DirectiveError{
		Element:    el,
		Expression: d.Expression,
		Directive:  d.Original,
		Err:        err,
	}
}
