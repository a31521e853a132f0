// Package validator performs semantic analysis of parsed programs.
//
// Validation runs in two passes. The first collects every top-level
// declaration (agents, blocks, skill imports), reports duplicates within
// each namespace, and checks the block-call graph for cycles. The second
// walks the statement tree with an explicit scope stack, resolving every
// variable, agent, and block reference at its point of use.
//
// # Scope Model
//
// Scoping is Python-like rather than C-like. Conditional bodies (if, elif,
// else) and error-handling bodies (try, catch, finally) do not introduce a
// scope: bindings made inside them escape to the enclosing scope. Bodies
// that may run zero or many times (loop, for, repeat, pipeline stages) do
// introduce a scope, as do block bodies and choice options, which are
// isolated. "do <block>" splices the invoked block's top-level bindings
// into the caller's scope, modeling textual inlining.
//
// # Errors and Warnings
//
// Conditions that make a program impossible to execute are errors and mark
// the result invalid: undefined references, duplicate definitions, invalid
// join strategies, cyclic block invocations. Conditions that are likely
// mistakes but still executable are warnings: empty prompts, very long
// prompts, unknown properties, unimported skills, shadowed variables.
// Warnings never affect validity.
//
// # Usage
//
//	result := validator.Validate(program)
//	if !result.Valid {
//		for _, e := range result.Errors {
//			fmt.Println(e)
//		}
//	}
package validator
