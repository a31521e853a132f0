package ast

import "fmt"

// Walk traverses the tree rooted at node in source order, calling fn for
// every node before descending into its children. Returning an error stops
// the walk and propagates the error.
//
// The type switch below is the single exhaustive enumeration of node kinds
// in this package; new node types must be added here.
func Walk(node Node, fn func(Node) error) error {
	if node == nil {
		return nil
	}
	if err := fn(node); err != nil {
		return err
	}

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Statements {
			if err := Walk(stmt, fn); err != nil {
				return err
			}
		}
		for _, c := range n.Comments {
			if err := Walk(c, fn); err != nil {
				return err
			}
		}

	case *Comment:
		// leaf

	case *ImportStatement:
		for _, name := range n.Names {
			if err := Walk(name, fn); err != nil {
				return err
			}
		}

	case *AgentDefinition:
		if err := Walk(n.Name, fn); err != nil {
			return err
		}
		for _, p := range n.Properties {
			if err := Walk(p, fn); err != nil {
				return err
			}
		}

	case *BlockDefinition:
		if err := Walk(n.Name, fn); err != nil {
			return err
		}
		for _, p := range n.Parameters {
			if err := Walk(p, fn); err != nil {
				return err
			}
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *DoStatement:
		if err := Walk(n.Block, fn); err != nil {
			return err
		}
		for _, arg := range n.Arguments {
			if err := Walk(arg, fn); err != nil {
				return err
			}
		}

	case *SessionStatement:
		if n.Prompt != nil {
			if err := Walk(n.Prompt, fn); err != nil {
				return err
			}
		}
		if n.Agent != nil {
			if err := Walk(n.Agent, fn); err != nil {
				return err
			}
		}
		if n.Name != nil {
			if err := Walk(n.Name, fn); err != nil {
				return err
			}
		}
		for _, p := range n.Properties {
			if err := Walk(p, fn); err != nil {
				return err
			}
		}

	case *Property:
		if err := Walk(n.Name, fn); err != nil {
			return err
		}
		if err := Walk(n.Value, fn); err != nil {
			return err
		}

	case *LetBinding:
		if err := Walk(n.Name, fn); err != nil {
			return err
		}
		if err := Walk(n.Value, fn); err != nil {
			return err
		}

	case *ConstBinding:
		if err := Walk(n.Name, fn); err != nil {
			return err
		}
		if err := Walk(n.Value, fn); err != nil {
			return err
		}

	case *Assignment:
		if err := Walk(n.Name, fn); err != nil {
			return err
		}
		if err := Walk(n.Value, fn); err != nil {
			return err
		}

	case *ForEachBlock:
		if err := Walk(n.Variable, fn); err != nil {
			return err
		}
		if err := Walk(n.Iterable, fn); err != nil {
			return err
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *LoopBlock:
		if n.Condition != nil {
			if err := Walk(n.Condition, fn); err != nil {
				return err
			}
		}
		if n.IterationVar != nil {
			if err := Walk(n.IterationVar, fn); err != nil {
				return err
			}
		}
		if n.MaxIterations != nil {
			if err := Walk(n.MaxIterations, fn); err != nil {
				return err
			}
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *RepeatBlock:
		if err := Walk(n.Count, fn); err != nil {
			return err
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *ParallelBlock:
		if n.Count != nil {
			if err := Walk(n.Count, fn); err != nil {
				return err
			}
		}
		for _, b := range n.Branches {
			if err := Walk(b, fn); err != nil {
				return err
			}
		}

	case *ParallelBranch:
		if n.Name != nil {
			if err := Walk(n.Name, fn); err != nil {
				return err
			}
		}
		if err := Walk(n.Statement, fn); err != nil {
			return err
		}

	case *TryBlock:
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}
		if n.Catch != nil {
			if err := Walk(n.Catch, fn); err != nil {
				return err
			}
		}
		if n.Finally != nil {
			if err := Walk(n.Finally, fn); err != nil {
				return err
			}
		}

	case *CatchClause:
		if n.Variable != nil {
			if err := Walk(n.Variable, fn); err != nil {
				return err
			}
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *FinallyClause:
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *ChoiceBlock:
		if n.Prompt != nil {
			if err := Walk(n.Prompt, fn); err != nil {
				return err
			}
		}
		for _, opt := range n.Options {
			if err := Walk(opt, fn); err != nil {
				return err
			}
		}

	case *ChoiceOption:
		if n.Label != nil {
			if err := Walk(n.Label, fn); err != nil {
				return err
			}
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *IfStatement:
		if err := Walk(n.Condition, fn); err != nil {
			return err
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}
		for _, elif := range n.Elifs {
			if err := Walk(elif, fn); err != nil {
				return err
			}
		}
		if n.Else != nil {
			if err := Walk(n.Else, fn); err != nil {
				return err
			}
		}

	case *ElifClause:
		if err := Walk(n.Condition, fn); err != nil {
			return err
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *ElseClause:
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	case *ExpressionStatement:
		if err := Walk(n.Expression, fn); err != nil {
			return err
		}

	case *Identifier, *StringLiteral, *NumberLiteral, *Discretion:
		// leaves

	case *ArrayLiteral:
		for _, el := range n.Elements {
			if err := Walk(el, fn); err != nil {
				return err
			}
		}

	case *ObjectLiteral:
		for _, name := range n.Names {
			if err := Walk(name, fn); err != nil {
				return err
			}
		}

	case *ArrowExpression:
		if err := Walk(n.Left, fn); err != nil {
			return err
		}
		if err := Walk(n.Right, fn); err != nil {
			return err
		}

	case *PipeExpression:
		if err := Walk(n.Source, fn); err != nil {
			return err
		}
		for _, stage := range n.Stages {
			if err := Walk(stage, fn); err != nil {
				return err
			}
		}

	case *PipeStage:
		for _, p := range n.Parameters {
			if err := Walk(p, fn); err != nil {
				return err
			}
		}
		if err := walkStatements(n.Body, fn); err != nil {
			return err
		}

	default:
		return fmt.Errorf("ast: unknown node type %T", node)
	}

	return nil
}

func walkStatements(stmts []Statement, fn func(Node) error) error {
	for _, stmt := range stmts {
		if err := Walk(stmt, fn); err != nil {
			return err
		}
	}
	return nil
}
