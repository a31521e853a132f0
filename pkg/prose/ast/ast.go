package ast

import "mercator-hq/prose/pkg/prose/token"

// Node is implemented by every AST node. Pos returns the source span the
// node covers; a node's span always lies within its parent's span.
type Node interface {
	Pos() token.Span
}

// Statement is implemented by nodes that can appear in a statement list.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by nodes that can appear in value position.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node. It owns every top-level statement and the
// comments collected across the whole file.
type Program struct {
	Statements []Statement
	Comments   []*Comment
	Span       token.Span
}

func (p *Program) Pos() token.Span { return p.Span }

// Comment is a single '#' comment. Comments are trivia: they are preserved
// for tooling and stripped by the compiler, but carry no meaning.
type Comment struct {
	Text string // includes the leading '#'
	Span token.Span
}

func (c *Comment) Pos() token.Span { return c.Span }

// Property is one "name: value" line inside an agent definition or a
// session property block.
type Property struct {
	Name  *Identifier
	Value Expression
	Span  token.Span
}

func (p *Property) Pos() token.Span { return p.Span }

// ImportStatement declares one or more skill imports. Skills are opaque
// names from the toolchain's perspective; resolution happens at execution
// time.
type ImportStatement struct {
	Names []*Identifier
	Span  token.Span
}

func (s *ImportStatement) Pos() token.Span { return s.Span }
func (s *ImportStatement) statementNode()  {}

// AgentDefinition declares a named, reusable bundle of session defaults.
// Agents may only be defined at program top level, and names must be unique
// among agents.
type AgentDefinition struct {
	Name       *Identifier
	Properties []*Property
	Span       token.Span
}

func (s *AgentDefinition) Pos() token.Span { return s.Span }
func (s *AgentDefinition) statementNode()  {}

// BlockDefinition declares a named statement sequence invokable with
// "do <name>". Invocation models textual inlining, so block call graphs
// must be acyclic.
type BlockDefinition struct {
	Name       *Identifier
	Parameters []*Identifier
	Body       []Statement
	Span       token.Span
}

func (s *BlockDefinition) Pos() token.Span { return s.Span }
func (s *BlockDefinition) statementNode()  {}

// DoStatement invokes a named block, optionally with arguments. It is also
// legal in expression position ("let x = do summarize").
type DoStatement struct {
	Block     *Identifier
	Arguments []Expression
	Span      token.Span
}

func (s *DoStatement) Pos() token.Span { return s.Span }
func (s *DoStatement) statementNode()  {}
func (s *DoStatement) expressionNode() {}

// SessionStatement spawns one unit of AI work. Exactly one of Prompt or
// Agent must be present for the session to be executable; that rule is
// enforced by the validator, not the parser. A session is legal in both
// statement and expression position.
type SessionStatement struct {
	Prompt     *StringLiteral // literal prompt, or nil
	Agent      *Identifier    // agent reference, or nil
	Name       *Identifier    // session name for "session name: agent", or nil
	Properties []*Property
	Span       token.Span
}

func (s *SessionStatement) Pos() token.Span { return s.Span }
func (s *SessionStatement) statementNode()  {}
func (s *SessionStatement) expressionNode() {}

// LetBinding binds a new name to an expression result in the current scope.
type LetBinding struct {
	Name  *Identifier
	Value Expression
	Span  token.Span
}

func (s *LetBinding) Pos() token.Span { return s.Span }
func (s *LetBinding) statementNode()  {}

// ConstBinding binds a write-once name to an expression result.
type ConstBinding struct {
	Name  *Identifier
	Value Expression
	Span  token.Span
}

func (s *ConstBinding) Pos() token.Span { return s.Span }
func (s *ConstBinding) statementNode()  {}

// Assignment reassigns an existing binding.
type Assignment struct {
	Name  *Identifier
	Value Expression
	Span  token.Span
}

func (s *Assignment) Pos() token.Span { return s.Span }
func (s *Assignment) statementNode()  {}

// ForEachBlock iterates a collection, binding each element. The body scope
// does not escape: the loop may run zero times.
type ForEachBlock struct {
	Variable *Identifier
	Iterable Expression
	Body     []Statement
	Span     token.Span
}

func (s *ForEachBlock) Pos() token.Span { return s.Span }
func (s *ForEachBlock) statementNode()  {}

// LoopVariant distinguishes the three loop forms sharing one node shape.
type LoopVariant string

const (
	LoopPlain LoopVariant = "loop"
	LoopUntil LoopVariant = "until"
	LoopWhile LoopVariant = "while"
)

// LoopBlock is "loop", "loop until **cond**", or "loop while **cond**".
// Condition is non-nil only for the until/while variants. IterationVar
// names the optional "as i" counter; MaxIterations is the optional "(N)"
// cap.
type LoopBlock struct {
	Variant       LoopVariant
	Condition     *Discretion
	IterationVar  *Identifier
	MaxIterations *NumberLiteral
	Body          []Statement
	Span          token.Span
}

func (s *LoopBlock) Pos() token.Span { return s.Span }
func (s *LoopBlock) statementNode()  {}

// RepeatBlock runs its body a fixed number of times. Count is a number
// literal or an identifier, so block parameters can drive repeat counts.
type RepeatBlock struct {
	Count Expression
	Body  []Statement
	Span  token.Span
}

func (s *RepeatBlock) Pos() token.Span { return s.Span }
func (s *RepeatBlock) statementNode()  {}

// ParallelBlock runs branches concurrently. Strategy is "all" (default),
// "first", or "any"; Count is the required branch count for "any".
type ParallelBlock struct {
	Strategy string
	Count    *NumberLiteral
	Branches []*ParallelBranch
	Span     token.Span
}

func (s *ParallelBlock) Pos() token.Span { return s.Span }
func (s *ParallelBlock) statementNode()  {}

// ParallelBranch is one branch of a parallel block, optionally binding its
// result to a name visible after the block.
type ParallelBranch struct {
	Name      *Identifier // result binding, or nil
	Statement Statement
	Span      token.Span
}

func (b *ParallelBranch) Pos() token.Span { return b.Span }

// TryBlock guards a statement sequence with optional catch and finally
// clauses.
type TryBlock struct {
	Body    []Statement
	Catch   *CatchClause
	Finally *FinallyClause
	Span    token.Span
}

func (s *TryBlock) Pos() token.Span { return s.Span }
func (s *TryBlock) statementNode()  {}

// CatchClause handles a failure from the matching try body. Variable
// optionally binds the failure description.
type CatchClause struct {
	Variable *Identifier
	Body     []Statement
	Span     token.Span
}

func (c *CatchClause) Pos() token.Span { return c.Span }

// FinallyClause always runs after the matching try/catch.
type FinallyClause struct {
	Body []Statement
	Span token.Span
}

func (c *FinallyClause) Pos() token.Span { return c.Span }

// ChoiceBlock presents mutually exclusive options; the Orchestrator picks
// one at execution time, guided by the optional discretion prompt.
type ChoiceBlock struct {
	Prompt  *Discretion
	Options []*ChoiceOption
	Span    token.Span
}

func (s *ChoiceBlock) Pos() token.Span { return s.Span }
func (s *ChoiceBlock) statementNode()  {}

// ChoiceOption is one option body, optionally labelled.
type ChoiceOption struct {
	Label *StringLiteral
	Body  []Statement
	Span  token.Span
}

func (o *ChoiceOption) Pos() token.Span { return o.Span }

// IfStatement branches on an AI-evaluated condition.
type IfStatement struct {
	Condition *Discretion
	Body      []Statement
	Elifs     []*ElifClause
	Else      *ElseClause
	Span      token.Span
}

func (s *IfStatement) Pos() token.Span { return s.Span }
func (s *IfStatement) statementNode()  {}

// ElifClause is one "elif **cond**:" branch.
type ElifClause struct {
	Condition *Discretion
	Body      []Statement
	Span      token.Span
}

func (c *ElifClause) Pos() token.Span { return c.Span }

// ElseClause is the fallback branch of an if statement.
type ElseClause struct {
	Body []Statement
	Span token.Span
}

func (c *ElseClause) Pos() token.Span { return c.Span }

// ExpressionStatement wraps an expression used for its effect at statement
// level, such as a bare pipe chain.
type ExpressionStatement struct {
	Expression Expression
	Span       token.Span
}

func (s *ExpressionStatement) Pos() token.Span { return s.Span }
func (s *ExpressionStatement) statementNode()  {}
