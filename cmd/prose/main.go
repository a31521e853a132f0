// Prose is the front-end toolchain for the Prose workflow language: an
// indentation-sensitive scripting language for multi-agent AI workflows.
//
// It tokenizes, parses, and validates .prose source files and emits a
// canonical, normalized form for downstream execution.
//
// Usage:
//
//	# Check files for errors and warnings
//	prose check workflow.prose
//
//	# Check every .prose file under a directory
//	prose check workflows/
//
//	# Emit the canonical form of a valid program
//	prose compile workflow.prose
//
//	# Dump the token stream (lexer debugging)
//	prose tokens workflow.prose
//
//	# Recheck files as they change on disk
//	prose watch workflows/
//
//	# List recent check runs from the history store
//	prose history list
package main

func main() {
	Execute()
}
