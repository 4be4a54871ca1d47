package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"golang.org/x/net/html"

	"github.com/go-drift/weft/pkg/config"
	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/dom"
)

func init() {
	RegisterCommand(&Command{
		Name:  "trace",
		Short: "Print directive activations for a document",
		Long: `Parse an HTML document, start the lifecycle engine over it and print
every directive activation in order.

Every directive is handled by a tracing handler, so the output shows which
elements the initial scan reaches and in which order, after nested roots,
init selectors and ignore markers are taken into account. Failures
re-raised by the engine are printed after the trace.

Selectors and the attribute prefix come from the nearest weft.yaml above
the document, or from --config. With --watch the trace is printed again
every time the document is saved, until interrupted.`,
		Usage: "weft trace <file.html> [--config weft.yaml] [--watch] [--verbose]",
		Run:   runTrace,
	})
}

func runTrace(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.args) != 1 {
		return fmt.Errorf("exactly one document is required\n\nUsage: weft trace <file.html>")
	}
	path := f.args[0]

	cfg, err := loadConfig(f.config, filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !f.watch {
		return trace(path, cfg, f.verbose)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run := func() error {
		if err := trace(path, cfg, f.verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return nil
	}
	run()
	return watchFile(ctx, path, func() error {
		fmt.Fprintf(stdout, "--- %s changed\n", path)
		return run()
	})
}

// trace runs the engine once over the document at path, printing each
// activation and every re-raised failure.
func trace(path string, cfg *config.Resolved, verbose bool) error {
	doc, err := parseFile(path)
	if err != nil {
		return err
	}

	rt := newRuntime(doc, cfg, verbose)

	rt.Directives.SetFallback(directive.Definition{
		Handle: func(el *html.Node, d directive.Directive, u *directive.Utilities) error {
			if d.Expression != "" {
				fmt.Fprintf(stdout, "activate %s on %s: %s\n", d.Type, dom.Describe(el), d.Expression)
			} else {
				fmt.Fprintf(stdout, "activate %s on %s\n", d.Type, dom.Describe(el))
			}
			return nil
		},
	})

	var uncaught []error
	rt.Loop.OnUncaught = func(err error) {
		uncaught = append(uncaught, err)
	}

	if err := rt.Start(); err != nil {
		return err
	}
	rt.Engine.Stop()

	for _, err := range uncaught {
		fmt.Fprintf(stdout, "uncaught %v\n", err)
	}
	if len(uncaught) > 0 {
		return fmt.Errorf("%d directive failure(s)", len(uncaught))
	}
	return nil
}
