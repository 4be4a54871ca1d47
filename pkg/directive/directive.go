// Package directive discovers directives in element attributes and turns them
// into ordered activation callbacks.
//
// A directive attribute has the form
//
//	<prefix><type>[:<value>][.<modifier>...]="<expression>"
//
// with the default prefix "x-". Two shorthands are expanded before parsing:
// "@click" means "x-on:click" and ":class" means "x-bind:class".
//
// Registry.Resolve returns one Activation per directive, sorted by directive
// priority. Registry.Defer opens a scope in which the main handlers of
// activated directives are queued and run in discovery order when the scope
// ends, so a whole tree walk is set up before any handler commits its effects.
package directive

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Directive is one parsed directive attribute.
type Directive struct {
	// Type is the directive name without prefix (e.g., "on").
	Type string
	// Value is the argument after the colon (e.g., "click").
	Value string
	// Modifiers are the dot-separated suffixes (e.g., ["prevent"]).
	Modifiers []string
	// Expression is the attribute value.
	Expression string
	// Original is the attribute name as written in the markup.
	Original string
}

// HasModifier reports whether m is among d's modifiers.
func (d Directive) HasModifier(m string) bool {
	return slices.Contains(d.Modifiers, m)
}

// defaultOrder is the activation priority of known directive types.
// Types not listed sort at the "DEFAULT" position.
var defaultOrder = []string{
	"ignore",
	"ref",
	"data",
	"id",
	"anchor",
	"bind",
	"init",
	"for",
	"model",
	"modelable",
	"transition",
	"show",
	"if",
	defaultSlot,
	"teleport",
}

const defaultSlot = "DEFAULT"

var (
	valuePattern    = regexp.MustCompile(`:([a-zA-Z0-9\-_:]+)`)
	modifierPattern = regexp.MustCompile(`\.[^.\]]+`)
)

type parser struct {
	prefix  string
	typeRE  *regexp.Regexp
	ordered []string
}

func newParser(prefix string, order []string) *parser {
	return &parser{
		prefix:  prefix,
		typeRE:  regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `([^:^.]+)\b`),
		ordered: order,
	}
}

// transform expands attribute shorthands.
func (p *parser) transform(name string) string {
	switch {
	case strings.HasPrefix(name, "@"):
		return p.prefix + "on:" + name[1:]
	case strings.HasPrefix(name, ":"):
		return p.prefix + "bind:" + name[1:]
	}
	return name
}

func (p *parser) parse(attrs []html.Attribute) []Directive {
	var out []Directive
	for _, a := range attrs {
		if a.Namespace != "" {
			continue
		}
		name := p.transform(a.Key)
		m := p.typeRE.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		d := Directive{
			Type:       m[1],
			Expression: a.Val,
			Original:   a.Key,
		}
		if v := valuePattern.FindStringSubmatch(name); v != nil {
			d.Value = v[1]
		}
		// Modifiers after a closing bracket only, so "x-on:[a.b]" has none.
		tail := name[strings.LastIndex(name, "]")+1:]
		for _, mod := range modifierPattern.FindAllString(tail, -1) {
			d.Modifiers = append(d.Modifiers, strings.TrimPrefix(mod, "."))
		}
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b Directive) int {
		return p.rank(a.Type) - p.rank(b.Type)
	})
	return out
}

func (p *parser) rank(typ string) int {
	if i := slices.Index(p.ordered, typ); i >= 0 {
		return i
	}
	return slices.Index(p.ordered, defaultSlot)
}
