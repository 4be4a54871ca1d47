package lifecycle

import (
	stderrors "errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/dom"
)

// Lifecycle notifications dispatched on the document by Start.
const (
	EventInit         = "weft:init"
	EventInitializing = "weft:initializing"
	EventInitialized  = "weft:initialized"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = stderrors.New("lifecycle: engine already started")

// Observer reports structural and attribute changes of the document.
type Observer interface {
	Start()
	Stop()
	OnElAdded(fn func(el *html.Node))
	OnElRemoved(fn func(el *html.Node))
	OnAttributesAdded(fn func(el *html.Node, attrs []html.Attribute))
}

// Resolver turns attributes into directive activations.
type Resolver interface {
	Resolve(el *html.Node, attrs []html.Attribute) []directive.Activation
	Defer(report directive.ReportFunc, body func())
	SkipsDescendants(el *html.Node) bool
}

// Cleaner releases the resources directives hold on an element.
type Cleaner interface {
	CleanupAttributes(el *html.Node, names ...string)
}

// Scheduler defers work past the current batch and re-raises failures
// outside the caller's stack.
type Scheduler interface {
	NextTick(fn func())
	Throw(err error)
}

// Walker traverses a subtree in pre-order.
type Walker func(root *html.Node, visit dom.VisitFunc)

// SelectorFunc returns a CSS selector. It is called every time selectors are
// computed, so it may depend on state registered later.
type SelectorFunc func() string

// Options configures an Engine. Observer, Resolver, Cleaner and Scheduler
// are required.
type Options struct {
	Observer  Observer
	Resolver  Resolver
	Cleaner   Cleaner
	Scheduler Scheduler
	// Walker defaults to dom.Walk.
	Walker Walker
	// Logger receives usage warnings. Defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// Engine is the directive lifecycle engine for one document.
type Engine struct {
	doc       *dom.Document
	observer  Observer
	resolver  Resolver
	cleaner   Cleaner
	scheduler Scheduler
	walk      Walker
	logger    zerolog.Logger

	mu                    sync.Mutex
	started               bool
	rootSelectorCallbacks []SelectorFunc
	initSelectorCallbacks []SelectorFunc
}

// NewEngine creates an engine for doc.
func NewEngine(doc *dom.Document, opts Options) *Engine {
	e := &Engine{
		doc:       doc,
		observer:  opts.Observer,
		resolver:  opts.Resolver,
		cleaner:   opts.Cleaner,
		scheduler: opts.Scheduler,
		walk:      opts.Walker,
		logger:    log.Logger,
	}
	if e.walk == nil {
		e.walk = dom.Walk
	}
	if opts.Logger != nil {
		e.logger = *opts.Logger
	}
	return e
}

// Document returns the engine's document.
func (e *Engine) Document() *dom.Document {
	return e.doc
}
