package ast

import "mercator-hq/prose/pkg/prose/token"

// Identifier is a name reference. Prose identifiers allow hyphens, so
// kebab-case agent and block names are single identifiers.
type Identifier struct {
	Name string
	Span token.Span
}

func (e *Identifier) Pos() token.Span { return e.Span }
func (e *Identifier) expressionNode() {}

// StringLiteral is a string value. Meta preserves the lexical detail
// (quoting style, escapes, interpolations) that the validator and compiler
// need.
type StringLiteral struct {
	Value string
	Meta  *token.StringMeta
	Span  token.Span
}

func (e *StringLiteral) Pos() token.Span { return e.Span }
func (e *StringLiteral) expressionNode() {}

// Interpolations returns the recorded {name} occurrences, or nil.
func (e *StringLiteral) Interpolations() []token.Interpolation {
	if e.Meta == nil {
		return nil
	}
	return e.Meta.Interpolations
}

// NumberLiteral is an unsigned integer or decimal literal.
type NumberLiteral struct {
	Value float64
	Raw   string // source text, e.g. "3" or "2.5"
	IsInt bool
	Span  token.Span
}

func (e *NumberLiteral) Pos() token.Span { return e.Span }
func (e *NumberLiteral) expressionNode() {}

// ArrayLiteral is "[a, b, c]".
type ArrayLiteral struct {
	Elements []Expression
	Span     token.Span
}

func (e *ArrayLiteral) Pos() token.Span { return e.Span }
func (e *ArrayLiteral) expressionNode() {}

// ObjectLiteral is the shorthand "{a, b, c}": a bundle of named values
// assembled from in-scope variables.
type ObjectLiteral struct {
	Names []*Identifier
	Span  token.Span
}

func (e *ObjectLiteral) Pos() token.Span { return e.Span }
func (e *ObjectLiteral) expressionNode() {}

// Discretion is an opaque natural-language condition captured from a
// **...** or ***...*** marker. It is never structurally parsed.
type Discretion struct {
	Expression string
	Multiline  bool
	Span       token.Span
}

func (e *Discretion) Pos() token.Span { return e.Span }
func (e *Discretion) expressionNode() {}

// ArrowExpression chains two units of work: the left result feeds the
// right. Chains are right-associative, so "a -> b -> c" parses as
// "a -> (b -> c)".
type ArrowExpression struct {
	Left  Expression
	Right Expression
	Span  token.Span
}

func (e *ArrowExpression) Pos() token.Span { return e.Span }
func (e *ArrowExpression) expressionNode() {}
func (e *ArrowExpression) statementNode()  {}

// PipeOperation is the kind of a pipeline stage.
type PipeOperation string

const (
	PipeMap    PipeOperation = "map"
	PipeFilter PipeOperation = "filter"
	PipeReduce PipeOperation = "reduce"
)

// PipeExpression applies a sequence of stages to a source collection:
// "items | map: ... | filter: ...".
type PipeExpression struct {
	Source Expression
	Stages []*PipeStage
	Span   token.Span
}

func (e *PipeExpression) Pos() token.Span { return e.Span }
func (e *PipeExpression) expressionNode() {}

// PipeStage is one stage of a pipe chain with its own indented body and its
// own scope. Parameters name the stage inputs; reduce requires both an
// accumulator and an item parameter.
type PipeStage struct {
	Operation  PipeOperation
	Parameters []*Identifier
	Body       []Statement
	Span       token.Span
}

func (s *PipeStage) Pos() token.Span { return s.Span }
