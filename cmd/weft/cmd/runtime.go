package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-drift/weft/pkg/config"
	"github.com/go-drift/weft/pkg/dom"
	"github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/lifecycle"
	"github.com/go-drift/weft/pkg/logging"
)

// loadConfig resolves the explicit config file, or the nearest weft.yaml
// above dir, or the defaults.
func loadConfig(explicit, dir string) (*config.Resolved, error) {
	if explicit != "" {
		return config.ResolveFile(explicit)
	}
	root, err := config.FindConfig(dir)
	if err != nil {
		return config.Resolve(dir)
	}
	return config.Resolve(root)
}

// newRuntime wires a runtime for doc configured by cfg and installs the
// process-wide logger and error handler.
func newRuntime(doc *dom.Document, cfg *config.Resolved, verbose bool) *lifecycle.Runtime {
	opts := cfg.LogOptions()
	opts.Writer = os.Stderr
	opts.Component = "weft"
	logger := logging.Init(opts)
	errors.SetHandler(&errors.LogHandler{Verbose: verbose || cfg.Verbose, Logger: &logger})

	rt := lifecycle.NewRuntime(doc, logger)
	cfg.Apply(rt.Engine, rt.Directives)
	return rt
}

func parseFile(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}
