// Package compiler renders parsed programs in canonical source form.
//
// Canonical form uses four-space indentation, one statement per line, and
// strips comments; string literals keep their original quoting so escapes
// and interpolations survive unchanged. The defining property is that
// canonical output re-parses to a structurally identical program, which
// makes it a stable hand-off format for execution engines and formatters.
//
// A SourceMap accompanies the output, mapping each generated line back to
// the source line that produced it, so runtime failures can point at the
// file the author actually wrote.
package compiler
