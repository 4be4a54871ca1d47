// Package lifecycle is the directive lifecycle engine.
//
// An Engine discovers directives on the elements of a live document,
// activates them in a defined order, keeps activation in step with later
// mutations of the tree, and tears directives down when their elements are
// removed.
//
// # Roots
//
// Root selectors mark component boundaries. The initial scan started by
// Start walks only top-level matches; elements nested under another root are
// reached through that root's own walk, never independently. Init selectors
// name further elements that need initializing without being roots.
//
// # Walks
//
// InitTree walks a subtree in pre-order inside one deferred-activation scope.
// Each element's directives are activated in resolver order; an element whose
// activation sets the ignore marker keeps the walk out of its subtree.
//
// # Failures
//
// A failing directive never aborts a walk. The failure is annotated with its
// element and expression and re-raised on a later task of the host loop, where
// the global errors handler reports it.
//
// # Collaborators
//
// The engine reaches the document, mutation observer, directive resolver,
// attribute cleanup and scheduler through small interfaces. NewRuntime wires
// the default implementations from the dom, mutation, directive and loop
// packages.
package lifecycle
