package dom

import (
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/weft/pkg/errors"
)

// Document is a live HTML document.
type Document struct {
	root *html.Node

	mu        sync.Mutex
	selectors map[string]cascadia.SelectorGroup
	observers []observerEntry
	listeners map[string][]listenerEntry
	nextID    int
}

// New returns an empty document with no elements.
func New() *Document {
	return Wrap(&html.Node{Type: html.DocumentNode})
}

// Wrap returns a Document backed by an existing node tree.
func Wrap(root *html.Node) *Document {
	return &Document{
		root:      root,
		selectors: make(map[string]cascadia.SelectorGroup),
		listeners: make(map[string][]listenerEntry),
	}
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return Wrap(root), nil
}

// ParseString parses an HTML document held in s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the <body> element, or nil when the document has none.
func (d *Document) Body() *html.Node {
	return d.findFirst(func(n *html.Node) bool { return n.DataAtom == atom.Body })
}

// GetElementByID returns the first element whose id attribute equals id.
func (d *Document) GetElementByID(id string) *html.Node {
	return d.findFirst(func(n *html.Node) bool {
		v, ok := GetAttribute(n, "id")
		return ok && v == id
	})
}

func (d *Document) findFirst(pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(d.root, func(el *html.Node) WalkAction {
		if found != nil {
			return SkipChildren
		}
		if pred(el) {
			found = el
			return SkipChildren
		}
		return Continue
	})
	return found
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     append([]html.Attribute(nil), attrs...),
	}
}

// IsConnected reports whether n is attached to this document.
func (d *Document) IsConnected(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Matches reports whether el matches the CSS selector group in selector.
// Non-element nodes never match.
func (d *Document) Matches(el *html.Node, selector string) (bool, error) {
	if el == nil || el.Type != html.ElementNode {
		return false, nil
	}
	group, err := d.compile(selector)
	if err != nil {
		return false, err
	}
	return group.Match(el), nil
}

// QuerySelectorAll returns every element matching any of selectors, in
// document order and without duplicates. No selectors yields no elements.
func (d *Document) QuerySelectorAll(selectors ...string) ([]*html.Node, error) {
	if len(selectors) == 0 {
		return nil, nil
	}
	group, err := d.compile(strings.Join(selectors, ", "))
	if err != nil {
		return nil, err
	}
	return cascadia.QueryAll(d.root, group), nil
}

func (d *Document) compile(selector string) (cascadia.SelectorGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if group, ok := d.selectors[selector]; ok {
		return group, nil
	}
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, &errors.WeftError{
			Op:   "dom.compile",
			Kind: errors.KindSelector,
			Err:  err,
		}
	}
	d.selectors[selector] = group
	return group, nil
}

// Attributes returns a copy of el's attributes.
func Attributes(el *html.Node) []html.Attribute {
	if el == nil || len(el.Attr) == 0 {
		return nil
	}
	return append([]html.Attribute(nil), el.Attr...)
}

// GetAttribute returns the value of el's attribute key.
func GetAttribute(el *html.Node, key string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, a := range el.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Describe returns a short tag#id.class label for el, for logs and errors.
func Describe(el *html.Node) string {
	if el == nil {
		return "<nil>"
	}
	if el.Type != html.ElementNode {
		return "#document"
	}
	var sb strings.Builder
	sb.WriteString(el.Data)
	if id, ok := GetAttribute(el, "id"); ok && id != "" {
		sb.WriteString("#")
		sb.WriteString(id)
	}
	if class, ok := GetAttribute(el, "class"); ok {
		for _, c := range strings.Fields(class) {
			sb.WriteString(".")
			sb.WriteString(c)
		}
	}
	return sb.String()
}
