package lifecycle

import (
	"github.com/rs/zerolog"

	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/dom"
	"github.com/go-drift/weft/pkg/loop"
	"github.com/go-drift/weft/pkg/mutation"
)

// Runtime is an Engine wired to the default collaborators.
type Runtime struct {
	Document   *dom.Document
	Loop       *loop.Loop
	Observer   *mutation.Observer
	Directives *directive.Registry
	Engine     *Engine
}

// NewRuntime wires a loop, mutation observer and directive registry around
// doc and registers the default selectors: roots are elements carrying the
// data directive and init elements those carrying the init directive, both
// under the registry's current prefix.
func NewRuntime(doc *dom.Document, logger zerolog.Logger) *Runtime {
	l := loop.New()
	obs := mutation.NewObserver(doc, l)
	reg := directive.NewRegistry(obs)
	eng := NewEngine(doc, Options{
		Observer:  obs,
		Resolver:  reg,
		Cleaner:   obs,
		Scheduler: l,
		Logger:    &logger,
	})
	eng.AddRootSelector(func() string { return "[" + reg.Prefixed("data") + "]" })
	eng.AddInitSelector(func() string { return "[" + reg.Prefixed("init") + "]" })

	return &Runtime{
		Document:   doc,
		Loop:       l,
		Observer:   obs,
		Directives: reg,
		Engine:     eng,
	}
}

// Start starts the engine and drains the work it queued on the loop.
func (r *Runtime) Start() error {
	err := r.Engine.Start()
	r.Loop.RunUntilIdle()
	return err
}
