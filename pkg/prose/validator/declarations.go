package validator

import (
	"fmt"
	"sort"

	"mercator-hq/prose/pkg/prose/ast"
	"mercator-hq/prose/pkg/prose/diag"
)

// declarations is the symbol table built by the first validation pass:
// every top-level agent, block, and import, plus the block-call graph.
// Agents, blocks, and variables live in separate namespaces; cross-
// namespace collisions between variables and agents are reported during
// the scoped walk.
type declarations struct {
	agents  map[string]*ast.AgentDefinition
	blocks  map[string]*ast.BlockDefinition
	imports map[string]*ast.ImportStatement

	// blockBindings maps a block name to the names its body binds at top
	// level. "do <block>" splices these into the caller's scope.
	blockBindings map[string][]string

	// blockCalls is the block-call graph: which blocks each block's body
	// invokes via "do".
	blockCalls map[string][]*ast.DoStatement
}

// Name accessors return sorted slices so diagnostic text built from them
// never depends on map iteration order.

func (d *declarations) agentNames() []string {
	names := make([]string, 0, len(d.agents))
	for name := range d.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *declarations) blockNames() []string {
	names := make([]string, 0, len(d.blocks))
	for name := range d.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *declarations) importNames() []string {
	names := make([]string, 0, len(d.imports))
	for name := range d.imports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// collectDeclarations records every top-level agent, block, and import,
// reporting duplicates within each namespace, then checks the block-call
// graph for cycles. Blocks may be invoked before their definition appears
// in the file; only cycles are errors, because invocation models textual
// inlining and a cyclic splice could never terminate.
func (v *Validator) collectDeclarations(program *ast.Program) *declarations {
	d := &declarations{
		agents:        make(map[string]*ast.AgentDefinition),
		blocks:        make(map[string]*ast.BlockDefinition),
		imports:       make(map[string]*ast.ImportStatement),
		blockBindings: make(map[string][]string),
		blockCalls:    make(map[string][]*ast.DoStatement),
	}

	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.AgentDefinition:
			if s.Name == nil {
				continue
			}
			if prev, ok := d.agents[s.Name.Name]; ok {
				v.diags.AddErrorWithSuggestion(diag.StageValidate, "duplicate-agent",
					fmt.Sprintf("duplicate agent definition %q", s.Name.Name),
					s.Name.Span,
					fmt.Sprintf("agent %q is already defined at line %d", s.Name.Name, prev.Name.Span.Start.Line))
				continue
			}
			d.agents[s.Name.Name] = s

		case *ast.BlockDefinition:
			if s.Name == nil {
				continue
			}
			if prev, ok := d.blocks[s.Name.Name]; ok {
				v.diags.AddErrorWithSuggestion(diag.StageValidate, "duplicate-block",
					fmt.Sprintf("duplicate block definition %q", s.Name.Name),
					s.Name.Span,
					fmt.Sprintf("block %q is already defined at line %d", s.Name.Name, prev.Name.Span.Start.Line))
				continue
			}
			d.blocks[s.Name.Name] = s
			d.blockBindings[s.Name.Name] = topLevelBindings(s.Body)
			d.blockCalls[s.Name.Name] = collectDoStatements(s.Body)

		case *ast.ImportStatement:
			for _, name := range s.Names {
				if name == nil {
					continue
				}
				if _, ok := d.imports[name.Name]; ok {
					v.diags.AddWarning(diag.StageValidate, "duplicate-import",
						fmt.Sprintf("skill %q is imported more than once", name.Name),
						name.Span)
					continue
				}
				d.imports[name.Name] = s
			}
		}
	}

	v.checkBlockCycles(d)
	return d
}

// topLevelBindings returns the names bound by let/const statements at the
// top level of a statement list.
func topLevelBindings(body []ast.Statement) []string {
	var names []string
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.LetBinding:
			if s.Name != nil {
				names = append(names, s.Name.Name)
			}
		case *ast.ConstBinding:
			if s.Name != nil {
				names = append(names, s.Name.Name)
			}
		}
	}
	return names
}

// collectDoStatements finds every "do" invocation anywhere under a
// statement list, nested constructs included.
func collectDoStatements(body []ast.Statement) []*ast.DoStatement {
	var dos []*ast.DoStatement
	for _, stmt := range body {
		ast.Walk(stmt, func(n ast.Node) error {
			if do, ok := n.(*ast.DoStatement); ok {
				dos = append(dos, do)
			}
			return nil
		})
	}
	return dos
}

// checkBlockCycles runs a DFS with a visiting set over the block-call
// graph, reporting direct and mutual recursion.
func (v *Validator) checkBlockCycles(d *declarations) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)

	var visit func(name string, path []string)
	visit = func(name string, path []string) {
		visited[name] = true
		visiting[name] = true
		path = append(path, name)

		for _, do := range d.blockCalls[name] {
			if do.Block == nil {
				continue
			}
			callee := do.Block.Name
			if _, ok := d.blocks[callee]; !ok {
				continue // undefined blocks are reported by the scoped walk
			}
			if visiting[callee] {
				v.diags.AddErrorWithSuggestion(diag.StageValidate, "block-cycle",
					fmt.Sprintf("block %q participates in a recursive invocation cycle: %s",
						callee, formatCycle(path, callee)),
					do.Span,
					"block invocation is textual inlining; a cycle can never finish expanding")
				continue
			}
			if !visited[callee] {
				visit(callee, path)
			}
		}

		visiting[name] = false
	}

	// Roots are visited in sorted order so the same program always yields
	// the same cycle diagnostics, not whatever map iteration produced.
	for _, name := range d.blockNames() {
		if !visited[name] {
			visit(name, nil)
		}
	}
}

func formatCycle(path []string, repeat string) string {
	out := ""
	started := false
	for _, name := range path {
		if name == repeat {
			started = true
		}
		if started {
			out += name + " -> "
		}
	}
	return out + repeat
}
