// Package dom provides the live document tree the lifecycle engine operates on.
//
// A Document wraps a golang.org/x/net/html node tree and adds the pieces a
// browser document would supply: CSS selector matching (via cascadia),
// mutation records for observers, document-level event listeners, and a
// pre-order element walker with per-branch skipping.
//
// Tree mutations must go through the Document (AppendChild, RemoveChild,
// SetAttribute, ...) to be visible to observers. Direct edits of the
// underlying html.Node fields are allowed but go unobserved.
//
// Document is not safe for concurrent tree mutation; like the rest of the
// engine it assumes a single host goroutine. The selector cache, observer
// list and listener list are guarded and may be touched from anywhere.
package dom
