// Package ast defines the abstract syntax tree for Prose programs.
//
// The tree is pure: nodes never point back at their parents, and any
// "reference" between constructs — a session naming its agent, a do
// statement naming its block — is a named lookup resolved by the validator,
// never a pointer. Statement lists are owned exclusively by their parent
// node and are never shared.
//
// Every node carries the source span it covers, contained within its
// parent's span, so diagnostics and editor tooling can map any node back to
// source text.
//
// # Immutability
//
// The parser builds the tree once; the validator and compiler inspect it
// without modification. Validating the same tree twice yields identical
// diagnostics.
//
// # Traversal
//
// Walk performs a pre-order traversal with a single exhaustive type switch
// over all node kinds. Passes that need structure-aware behavior (the
// validator's scope tracking, the compiler's serialization) implement their
// own switches instead; the grammar is large and each pass genuinely treats
// node kinds differently.
package ast
