// Package diag provides the diagnostic types shared by the Prose lexer,
// parser, and validator.
//
// # Design
//
// Every stage accumulates diagnostics into a List instead of returning on
// the first failure, so one run over a source file reports as many problems
// as possible. Severity splits diagnostics into blocking errors and
// non-blocking warnings; Stage records which pass found the problem; Code
// gives a stable machine-readable identifier for tooling.
//
// # Diagnostic Codes
//
// Codes are short kebab-case strings, e.g.:
//
//	unterminated-string     lex: single-line string hits a newline or EOF
//	inconsistent-indent     lex: dedent to a level never opened
//	unexpected-token        parse: token cannot start or continue a statement
//	undefined-variable      validate: name does not resolve in scope
//	duplicate-agent         validate: agent name defined twice
//	orphan-clause           validate: catch/finally/elif/else without parent
//
// # Rendering
//
// Diagnostic.Error gives a compact one-liner. Diagnostic.Format renders the
// multi-line form with source context and a caret:
//
//	[validate] undefined variable 'x' in interpolation
//	  --> 4:10
//	  |
//	     3 |   let x = session "process {item}"
//	  -> 4 | session "use {x}"
//	  |
//	  = suggestion: Did you mean 'item'?
//
// SuggestName uses Levenshtein distance to propose likely fixes for typos in
// variable, agent, and block names.
package diag
