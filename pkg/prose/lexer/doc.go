// Package lexer tokenizes Prose source text.
//
// # Contract
//
// Tokenize never fails. Malformed input becomes error diagnostics plus
// best-effort recovery tokens, and the returned stream is always terminated:
// one DEDENT per open indentation level, then EOF. The parser can therefore
// consume any stream without guarding against truncation.
//
// # Indentation
//
// Block structure is carried by synthetic INDENT and DEDENT tokens, driven
// by an indent stack that starts at [0]. Leading whitespace is measured per
// logical line; tabs round the column up to the next multiple of the tab
// width (default 4). A dedent that does not land exactly on an outer stack
// level is reported as inconsistent indentation. Blank lines and
// comment-only lines never change indentation.
//
// # Strings and interpolation
//
// Double-quoted single-line strings support the escapes
// \n \t \r \\ \" \# \0 \{ \} and \uXXXX; unrecognized escapes are warnings
// and the character is kept literally. Triple-quoted strings span lines and
// interpret no escapes. Both forms record {name} interpolations in
// StringMeta while keeping the braces verbatim in the token value —
// substitution happens downstream at execution time.
//
// # Discretion markers
//
// **text** (inline, must close on its line) and ***text*** (may span lines)
// capture natural-language conditions verbatim for AI evaluation. The lexer
// never looks inside them.
package lexer
