// Package prose is the front-end toolchain for the Prose workflow
// language: an indentation-sensitive scripting language for orchestrating
// AI agent sessions.
//
// The package tree mirrors the pipeline:
//
//   - token: lexical vocabulary (token types, positions, spans)
//   - lexer: source text to token stream, indentation made explicit
//   - ast: the parse tree node types and a generic walker
//   - parser: token stream to parse tree, with error recovery
//   - validator: semantic analysis over the parse tree
//   - compiler: canonical source rendering with a source map
//   - diag: the shared diagnostic model all stages report through
//
// This package itself is the umbrella: Check runs the whole front end over
// a source text and aggregates every stage's diagnostics, and
// ParseAndValidate additionally produces the canonical compiled form for
// valid programs. No stage ever panics or stops at the first problem;
// malformed input yields a partial tree plus the full list of findings.
package prose
