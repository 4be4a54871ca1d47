package dom

import "golang.org/x/net/html"

// WalkAction tells Walk how to proceed after visiting an element.
type WalkAction int

const (
	// Continue descends into the element's children.
	Continue WalkAction = iota
	// SkipChildren leaves the element's subtree unvisited. Siblings are
	// still visited.
	SkipChildren
)

// VisitFunc is called for each element reached by Walk.
type VisitFunc func(el *html.Node) WalkAction

// Walk visits root and its element descendants in pre-order. When root is
// not an element (e.g. the document node) only its descendants are visited.
//
// The next sibling is read after a child's subtree has been walked, so a
// visit that detaches the current element ends iteration at that level.
func Walk(root *html.Node, visit VisitFunc) {
	if root == nil {
		return
	}
	if root.Type == html.ElementNode && visit(root) == SkipChildren {
		return
	}
	for child := FirstElementChild(root); child != nil; {
		Walk(child, visit)
		child = NextElementSibling(child)
	}
}

// FirstElementChild returns n's first child element, or nil.
func FirstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// NextElementSibling returns the next sibling element of n, or nil.
func NextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// ParentElement returns n's parent when it is an element, or nil.
func ParentElement(n *html.Node) *html.Node {
	if n == nil || n.Parent == nil || n.Parent.Type != html.ElementNode {
		return nil
	}
	return n.Parent
}
