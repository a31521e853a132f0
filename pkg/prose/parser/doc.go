// Package parser builds Prose abstract syntax trees from source text.
//
// # Contract
//
// Parse never fails and never panics on malformed input. It always returns
// a Program — partial when the input is broken — together with every lex
// and parse diagnostic it could collect in a single pass. Callers decide
// pass/fail by checking the diagnostic list, mirroring compiler UX where
// one run reports as many problems as possible.
//
// # Technique
//
// Recursive descent with one token of lookahead, plus a second token to
// disambiguate the session headers:
//
//	session "prompt"        literal prompt
//	session : agent         anonymous session bound to an agent
//	session name : agent    named session bound to an agent
//
// Block structure arrives pre-tokenized as INDENT/DEDENT from the lexer, so
// every suite is the fixed shape ": NEWLINE INDENT statement+ DEDENT".
//
// # Error recovery
//
// A missing required token records one error at the cursor and parsing
// continues as if the token were present. An unparseable statement records
// one error and skips to the next logical line, taking any indented body
// with it so nested statements do not cascade into further diagnostics.
// Statement nesting depth is capped (default 64, see WithMaxDepth) to turn
// pathologically deep input into a reported error instead of stack
// exhaustion.
package parser
