// Package token defines the lexical tokens of the Prose language.
//
// Tokens carry their source span (1-based line and column plus byte offset)
// so that every later stage — parser, validator, compiler, editor tooling —
// can point back at the exact source range. STRING tokens additionally carry
// StringMeta describing quoting style, escape sequences, and {name}
// interpolations found inside the literal.
//
// The token stream for an indentation-sensitive source includes synthetic
// INDENT and DEDENT tokens, mirroring how Python tokenizes block structure.
// A well-formed stream always ends with one DEDENT per open indentation
// level followed by a single EOF.
package token
