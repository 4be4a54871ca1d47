package cmd

import (
	"fmt"
	"os"

	"github.com/go-drift/weft/pkg/dom"
)

func init() {
	RegisterCommand(&Command{
		Name:  "selectors",
		Short: "Show the resolved selectors",
		Long: `Show the root and init selectors the engine would scan with, after
applying weft.yaml (or --config) to the defaults.`,
		Usage: "weft selectors [--config weft.yaml]",
		Run:   runSelectors,
	})
}

func runSelectors(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.args) > 0 {
		return fmt.Errorf("unexpected argument %q", f.args[0])
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(f.config, dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	rt := newRuntime(dom.New(), cfg, f.verbose)

	if cfg.Path != "" {
		fmt.Fprintf(stdout, "Config:  %s\n", cfg.Path)
	} else {
		fmt.Fprintln(stdout, "Config:  (defaults)")
	}
	fmt.Fprintf(stdout, "Prefix:  %s\n", rt.Directives.Prefix())
	fmt.Fprintln(stdout)

	roots := rt.Engine.RootSelectors()
	fmt.Fprintln(stdout, "Root selectors:")
	for _, sel := range roots {
		fmt.Fprintf(stdout, "  %s\n", sel)
	}
	fmt.Fprintln(stdout, "Init selectors:")
	for _, sel := range rt.Engine.AllSelectors()[len(roots):] {
		fmt.Fprintf(stdout, "  %s\n", sel)
	}
	return nil
}
