// Package config loads the optional weft.yaml configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/weft/pkg/directive"
	"github.com/go-drift/weft/pkg/lifecycle"
	"github.com/go-drift/weft/pkg/logging"
)

// FileName is the configuration file looked up by LoadOptional and Resolve.
const FileName = "weft.yaml"

// CurrentVersion is the configuration version written by this release.
// Files declaring another major version are rejected.
const CurrentVersion = "v1.0.0"

// Config represents the optional weft.yaml configuration.
type Config struct {
	Version   string          `yaml:"version,omitempty"`
	Prefix    string          `yaml:"prefix,omitempty"`
	Selectors SelectorsConfig `yaml:"selectors"`
	Log       LogConfig       `yaml:"log"`
}

// SelectorsConfig lists static selectors registered in addition to the
// runtime defaults.
type SelectorsConfig struct {
	Root []string `yaml:"root,omitempty"`
	Init []string `yaml:"init,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string `yaml:"level,omitempty"`
	Console bool   `yaml:"console,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// Resolved contains validated configuration with defaults filled in.
type Resolved struct {
	// Path is the file the configuration came from, empty when defaulted.
	Path          string
	Version       string
	Prefix        string
	RootSelectors []string
	InitSelectors []string
	LogLevel      string
	LogConsole    bool
	Verbose       bool
}

// Parse decodes weft.yaml content. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional reads weft.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Resolve loads weft.yaml from dir (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	path := filepath.Join(dir, FileName)
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	r, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		r.Path = path
	}
	return r, nil
}

// ResolveFile is like Resolve for an explicit file, which must exist.
func ResolveFile(path string) (*Resolved, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	r, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	r.Path = path
	return r, nil
}

// Resolve validates c and fills in defaults.
func (c *Config) Resolve() (*Resolved, error) {
	version, err := normalizeVersion(c.Version)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSpace(c.Prefix)
	if prefix == "" {
		prefix = directive.DefaultPrefix
	}
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}

	roots, err := cleanSelectors("selectors.root", c.Selectors.Root)
	if err != nil {
		return nil, err
	}
	inits, err := cleanSelectors("selectors.init", c.Selectors.Init)
	if err != nil {
		return nil, err
	}

	level := strings.TrimSpace(c.Log.Level)
	if level == "" {
		level = "info"
	}

	return &Resolved{
		Version:       version,
		Prefix:        prefix,
		RootSelectors: roots,
		InitSelectors: inits,
		LogLevel:      level,
		LogConsole:    c.Log.Console,
		Verbose:       c.Log.Verbose,
	}, nil
}

// LogOptions returns the logging options described by r.
func (r *Resolved) LogOptions() logging.Options {
	return logging.Options{Level: r.LogLevel, Console: r.LogConsole}
}

// Apply sets the directive prefix and registers the configured selectors.
// Call it before Start.
func (r *Resolved) Apply(engine *lifecycle.Engine, registry *directive.Registry) {
	if registry != nil && r.Prefix != "" {
		registry.SetPrefix(r.Prefix)
	}
	for _, sel := range r.RootSelectors {
		sel := sel
		engine.AddRootSelector(func() string { return sel })
	}
	for _, sel := range r.InitSelectors {
		sel := sel
		engine.AddInitSelector(func() string { return sel })
	}
}

// FindConfig walks up from dir looking for weft.yaml and returns the
// directory containing it.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found", FileName)
		}
		dir = parent
	}
}

func normalizeVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return CurrentVersion, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("version must be a semantic version (got %q)", v)
	}
	if semver.Major(v) != semver.Major(CurrentVersion) {
		return "", fmt.Errorf("unsupported config version %s (this release reads %s.x)", v, semver.Major(CurrentVersion))
	}
	return semver.Canonical(v), nil
}

func validatePrefix(prefix string) error {
	for _, r := range prefix {
		if !(r == '-' || r == ':' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return fmt.Errorf("prefix contains invalid character %q in %q", r, prefix)
		}
	}
	return nil
}

func cleanSelectors(field string, in []string) ([]string, error) {
	var out []string
	for _, sel := range in {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(sel); err != nil {
			return nil, fmt.Errorf("%s: invalid selector %q: %w", field, sel, err)
		}
		out = append(out, sel)
	}
	return out, nil
}
