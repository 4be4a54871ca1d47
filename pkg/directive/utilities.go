package directive

import "golang.org/x/net/html"

// Utilities gives a handler access to its element's lifecycle.
type Utilities struct {
	el        *html.Node
	directive Directive
	marks     *marks
	cleanups  CleanupRegistrar
}

// Element returns the element the directive is attached to.
func (u *Utilities) Element() *html.Node {
	return u.el
}

// Cleanup registers fn to run when the directive's attribute is removed or
// the element is torn down.
func (u *Utilities) Cleanup(fn func()) {
	if u.cleanups == nil || fn == nil {
		return
	}
	u.cleanups.OnAttributeRemoved(u.el, u.directive.Original, fn)
}

// Ignore suppresses the element's remaining directives and keeps the
// current walk out of its subtree.
func (u *Utilities) Ignore() {
	u.marks.set(u.el, ignoreAll)
}

// IgnoreSelf suppresses the element's remaining directives only.
func (u *Utilities) IgnoreSelf() {
	u.marks.set(u.el, ignoreSelf)
}

func ignoreInline(_ *html.Node, d Directive, u *Utilities) error {
	if d.HasModifier("self") {
		u.IgnoreSelf()
	} else {
		u.Ignore()
	}
	return nil
}
