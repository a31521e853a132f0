package parser

import (
	"mercator-hq/prose/pkg/prose/ast"
	"mercator-hq/prose/pkg/prose/token"
)

// parseStatement dispatches on the current token. It returns nil when the
// statement could not be parsed; the error has already been recorded and
// the cursor advanced past the damage.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.IMPORT:
		return p.parseImport()
	case token.AGENT:
		return p.parseAgentDefinition()
	case token.BLOCK:
		return p.parseBlockDefinition()
	case token.PARALLEL:
		return p.parseParallelBlock()
	case token.SESSION:
		return p.parseSessionChainStatement()
	case token.LET:
		return p.parseLetBinding()
	case token.CONST:
		return p.parseConstBinding()
	case token.DO:
		return p.parseDoStatement()
	case token.FOR:
		return p.parseForEach()
	case token.LOOP:
		return p.parseLoop()
	case token.REPEAT:
		return p.parseRepeat()
	case token.TRY:
		return p.parseTry()
	case token.CHOICE:
		return p.parseChoice()
	case token.IF:
		return p.parseIf()
	case token.CATCH, token.FINALLY, token.ELIF, token.ELSE, token.OPTION:
		p.parseOrphanClause()
		return nil
	case token.IDENT:
		if p.peek(1).Type == token.ASSIGN {
			return p.parseAssignment()
		}
		if p.peek(1).Type == token.PIPE {
			return p.parsePipeStatement()
		}
	case token.LBRACKET:
		return p.parsePipeStatement()
	}

	p.errorHere("unexpected-token",
		"unexpected "+describeToken(p.cur())+" at start of statement")
	p.syncToNextLine()
	return nil
}

// endStatement consumes the statement terminator. Statements that end in an
// indented region (a property block or suite) have already consumed their
// DEDENT and need no newline.
func (p *Parser) endStatement() {
	if p.match(token.NEWLINE) {
		return
	}
	if p.atEnd() || p.at(token.DEDENT) {
		return
	}
	if p.pos > 0 && p.tokens[p.pos-1].Type == token.DEDENT {
		return
	}
	p.errorHere("expected-token",
		"expected end of line after statement, found "+describeToken(p.cur()))
	p.syncToNextLine()
}

// parseSuite parses ":" NEWLINE INDENT statement+ DEDENT. On a missing
// colon or body it records an error and returns what it has; empty bodies
// are structural issues judged by the validator per construct.
func (p *Parser) parseSuite(context string) []ast.Statement {
	p.expect(token.COLON, "after "+context)
	return p.parseIndentedBody(context)
}

// parseIndentedBody parses NEWLINE INDENT statement+ DEDENT, for callers
// that have already consumed the colon.
func (p *Parser) parseIndentedBody(context string) []ast.Statement {
	body := make([]ast.Statement, 0)

	if !p.at(token.NEWLINE) || p.peek(1).Type != token.INDENT {
		p.errorHere("expected-token", "expected an indented block after "+context)
		p.syncToNextLine()
		return body
	}
	p.advance() // NEWLINE
	p.advance() // INDENT

	p.depth++
	if p.depth > p.maxDepth {
		p.errorHere("max-depth-exceeded", "maximum statement nesting depth exceeded")
		p.depth--
		p.skipToDedent()
		return body
	}

	for !p.at(token.DEDENT) && !p.atEnd() {
		if p.match(token.NEWLINE) {
			continue
		}
		if p.at(token.INDENT) {
			p.errorHere("unexpected-indent", "unexpected indentation")
			p.skipBalanced()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	p.expect(token.DEDENT, "to close the block")

	p.depth--
	return body
}

// skipToDedent discards tokens until the DEDENT matching the already
// consumed INDENT.
func (p *Parser) skipToDedent() {
	depth := 1
	for !p.atEnd() {
		switch p.cur().Type {
		case token.INDENT:
			depth++
		case token.DEDENT:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// parseOrphanClause reports a clause keyword that appears without its
// parent construct and discards the clause, body included, so its contents
// do not produce cascading diagnostics.
func (p *Parser) parseOrphanClause() {
	tok := p.cur()
	var parent string
	switch tok.Type {
	case token.CATCH, token.FINALLY:
		parent = "'try'"
	case token.ELIF, token.ELSE:
		parent = "'if'"
	case token.OPTION:
		parent = "'choice'"
	}
	p.errorAt("orphan-clause",
		"'"+tok.Value+"' without a matching "+parent, tok.Span)
	p.syncToNextLine()
}

func (p *Parser) parseImport() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // import

	stmt := &ast.ImportStatement{}
	for {
		name := p.parseIdentifier("skill name in import")
		if name == nil {
			break
		}
		stmt.Names = append(stmt.Names, name)
		if !p.match(token.COMMA) {
			break
		}
	}

	stmt.Span = p.spanFrom(start)
	p.endStatement()
	return stmt
}

func (p *Parser) parseAgentDefinition() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // agent

	stmt := &ast.AgentDefinition{}
	stmt.Name = p.parseIdentifier("agent name")
	p.expect(token.COLON, "after agent name")

	if p.at(token.NEWLINE) && p.peek(1).Type == token.INDENT {
		stmt.Properties = p.parsePropertyBlock()
	} else {
		p.errorHere("expected-token", "agent definition requires an indented property block")
		p.syncToNextLine()
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseBlockDefinition() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // block

	stmt := &ast.BlockDefinition{}
	stmt.Name = p.parseIdentifier("block name")

	if p.match(token.LPAREN) {
		for {
			param := p.parseIdentifier("block parameter")
			if param == nil {
				break
			}
			stmt.Parameters = append(stmt.Parameters, param)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN, "to close the parameter list")
	}

	stmt.Body = p.parseSuite("block definition")
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseDoStatement() ast.Statement {
	stmt := p.parseDoExpression()
	p.endStatement()
	return stmt
}

func (p *Parser) parseDoExpression() *ast.DoStatement {
	start := p.cur().Span.Start
	p.advance() // do

	stmt := &ast.DoStatement{}
	stmt.Block = p.parseIdentifier("block name after 'do'")

	if p.match(token.LPAREN) {
		for !p.at(token.RPAREN) && !p.atEnd() {
			arg := p.parseExpression()
			if arg == nil {
				break
			}
			stmt.Arguments = append(stmt.Arguments, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN, "to close the argument list")
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseSessionChainStatement parses a session statement, which may extend
// into an arrow chain: session "A" -> session "B".
func (p *Parser) parseSessionChainStatement() ast.Statement {
	sess := p.parseSession()

	if p.at(token.ARROW) {
		chain := p.parseArrowChain(sess)
		p.endStatement()
		if arrow, ok := chain.(*ast.ArrowExpression); ok {
			return arrow
		}
		return sess
	}

	p.endStatement()
	return sess
}

// parseSession parses one session form. Disambiguation, in order:
//
//	session "prompt"        literal prompt
//	session : agent         anonymous session bound to an agent
//	session name : agent    named session bound to an agent
//	session                 bare; validator reports the missing prompt/agent
//
// An optional indented property block follows.
func (p *Parser) parseSession() *ast.SessionStatement {
	start := p.cur().Span.Start
	p.advance() // session

	sess := &ast.SessionStatement{}

	switch {
	case p.at(token.STRING):
		tok := p.advance()
		sess.Prompt = &ast.StringLiteral{Value: tok.Value, Meta: tok.StringMeta, Span: tok.Span}
	case p.at(token.COLON):
		p.advance()
		sess.Agent = p.parseIdentifier("agent name after ':'")
	case p.at(token.IDENT) && p.peek(1).Type == token.COLON:
		sess.Name = p.parseIdentifier("session name")
		p.advance() // colon
		sess.Agent = p.parseIdentifier("agent name after ':'")
	}

	if p.hasPropertyBlock() {
		sess.Properties = p.parsePropertyBlock()
	}

	sess.Span = p.spanFrom(start)
	return sess
}

// hasPropertyBlock looks ahead for NEWLINE INDENT IDENT COLON, the shape of
// a property override block.
func (p *Parser) hasPropertyBlock() bool {
	return p.at(token.NEWLINE) &&
		p.peek(1).Type == token.INDENT &&
		p.peek(2).Type == token.IDENT &&
		p.peek(3).Type == token.COLON
}

func (p *Parser) parsePropertyBlock() []*ast.Property {
	p.advance() // NEWLINE
	p.advance() // INDENT

	props := make([]*ast.Property, 0)
	for !p.at(token.DEDENT) && !p.atEnd() {
		if p.match(token.NEWLINE) {
			continue
		}
		prop := p.parseProperty()
		if prop == nil {
			p.syncToNextLine()
			continue
		}
		props = append(props, prop)
	}
	p.expect(token.DEDENT, "to close the property block")
	return props
}

func (p *Parser) parseProperty() *ast.Property {
	start := p.cur().Span.Start

	name := p.parseIdentifier("property name")
	if name == nil {
		return nil
	}
	p.expect(token.COLON, "after property name")

	value := p.parseExpression()
	prop := &ast.Property{Name: name, Value: value, Span: p.spanFrom(start)}

	if !p.match(token.NEWLINE) && !p.at(token.DEDENT) && !p.atEnd() {
		p.errorHere("expected-token", "expected end of line after property value")
		p.syncToNextLine()
	}
	return prop
}

func (p *Parser) parseLetBinding() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // let

	stmt := &ast.LetBinding{}
	stmt.Name = p.parseIdentifier("variable name after 'let'")
	p.expect(token.ASSIGN, "in let binding")
	stmt.Value = p.parseExpression()
	stmt.Span = p.spanFrom(start)
	p.endStatement()
	return stmt
}

func (p *Parser) parseConstBinding() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // const

	stmt := &ast.ConstBinding{}
	stmt.Name = p.parseIdentifier("constant name after 'const'")
	p.expect(token.ASSIGN, "in const binding")
	stmt.Value = p.parseExpression()
	stmt.Span = p.spanFrom(start)
	p.endStatement()
	return stmt
}

func (p *Parser) parseAssignment() ast.Statement {
	start := p.cur().Span.Start

	stmt := &ast.Assignment{}
	stmt.Name = p.parseIdentifier("assignment target")
	p.expect(token.ASSIGN, "in assignment")
	stmt.Value = p.parseExpression()
	stmt.Span = p.spanFrom(start)
	p.endStatement()
	return stmt
}

func (p *Parser) parsePipeStatement() ast.Statement {
	start := p.cur().Span.Start
	expr := p.parseExpression()
	if expr == nil {
		p.syncToNextLine()
		return nil
	}
	stmt := &ast.ExpressionStatement{Expression: expr, Span: p.spanFrom(start)}
	p.endStatement()
	return stmt
}

func (p *Parser) parseForEach() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // for

	stmt := &ast.ForEachBlock{}
	stmt.Variable = p.parseIdentifier("iteration variable after 'for'")
	p.expect(token.IN, "in for-each header")
	stmt.Iterable = p.parseExpression()
	stmt.Body = p.parseSuite("for-each header")
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseLoop parses the three loop variants sharing one node shape:
//
//	loop [until|while **cond**] [as <var>] [(<max>)]:
func (p *Parser) parseLoop() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // loop

	stmt := &ast.LoopBlock{Variant: ast.LoopPlain}

	switch p.cur().Type {
	case token.UNTIL:
		p.advance()
		stmt.Variant = ast.LoopUntil
		stmt.Condition = p.parseDiscretion("after 'until'")
	case token.WHILE:
		p.advance()
		stmt.Variant = ast.LoopWhile
		stmt.Condition = p.parseDiscretion("after 'while'")
	}

	if p.match(token.AS) {
		stmt.IterationVar = p.parseIdentifier("iteration variable after 'as'")
	}

	if p.match(token.LPAREN) {
		stmt.MaxIterations = p.parseNumberLiteral("loop iteration cap")
		p.expect(token.RPAREN, "to close the iteration cap")
	}

	stmt.Body = p.parseSuite("loop header")
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseRepeat parses "repeat <count> [times]:". The count may be a number
// literal or an identifier, so block parameters can drive repeat counts.
func (p *Parser) parseRepeat() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // repeat

	stmt := &ast.RepeatBlock{}
	switch p.cur().Type {
	case token.NUMBER:
		stmt.Count = p.parseNumberLiteral("repeat count")
	case token.IDENT:
		stmt.Count = p.parseIdentifier("repeat count")
	default:
		p.errorHere("expected-token",
			"expected a number or identifier after 'repeat', found "+describeToken(p.cur()))
	}
	p.match(token.TIMES)

	stmt.Body = p.parseSuite("repeat header")
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseParallelBlock parses:
//
//	parallel [("all" | "first" | "any", <count>)]:
//	    [name =] <statement>
//	    ...
func (p *Parser) parseParallelBlock() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // parallel

	stmt := &ast.ParallelBlock{Strategy: "all"}

	if p.match(token.LPAREN) {
		if p.at(token.STRING) {
			stmt.Strategy = p.advance().Value
		} else {
			p.errorHere("expected-token",
				"expected a join strategy string after '(', found "+describeToken(p.cur()))
		}
		if p.match(token.COMMA) {
			stmt.Count = p.parseNumberLiteral("join strategy count")
		}
		p.expect(token.RPAREN, "to close the join strategy")
	}

	p.expect(token.COLON, "after parallel header")

	if !p.at(token.NEWLINE) || p.peek(1).Type != token.INDENT {
		p.errorHere("expected-token", "expected an indented block after parallel header")
		p.syncToNextLine()
		stmt.Span = p.spanFrom(start)
		return stmt
	}
	p.advance() // NEWLINE
	p.advance() // INDENT

	for !p.at(token.DEDENT) && !p.atEnd() {
		if p.match(token.NEWLINE) {
			continue
		}
		branch := p.parseParallelBranch()
		if branch != nil {
			stmt.Branches = append(stmt.Branches, branch)
		}
	}
	p.expect(token.DEDENT, "to close the parallel block")

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseParallelBranch parses one branch, optionally of the form
// "name = <statement>" binding the branch result.
func (p *Parser) parseParallelBranch() *ast.ParallelBranch {
	start := p.cur().Span.Start
	branch := &ast.ParallelBranch{}

	if p.at(token.IDENT) && p.peek(1).Type == token.ASSIGN && p.peek(2).Type != token.ASSIGN {
		// Distinguish a result binding from a plain assignment statement:
		// inside a parallel block, "name = session ..." binds the branch
		// result.
		if isBranchValueStart(p.peek(2).Type) {
			branch.Name = p.parseIdentifier("branch result name")
			p.advance() // '='
		}
	}

	// A bound branch value can be any expression, not only a statement
	// form: "b = [x, y]" and "c = 3" are legal alongside "a = session ...".
	// Sessions and do invocations go through parseStatement so they keep
	// their statement node shapes.
	if branch.Name != nil && !p.at(token.SESSION) && !p.at(token.DO) {
		valueStart := p.cur().Span.Start
		value := p.parseExpression()
		if value == nil {
			p.syncToNextLine()
			return nil
		}
		branch.Statement = &ast.ExpressionStatement{Expression: value, Span: p.spanFrom(valueStart)}
		p.endStatement()
	} else {
		branch.Statement = p.parseStatement()
	}
	if branch.Statement == nil && branch.Name == nil {
		return nil
	}
	branch.Span = p.spanFrom(start)
	return branch
}

func isBranchValueStart(tt token.Type) bool {
	switch tt {
	case token.SESSION, token.DO, token.LBRACKET, token.LBRACE, token.STRING,
		token.NUMBER, token.IDENT:
		return true
	default:
		return false
	}
}

func (p *Parser) parseTry() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // try

	stmt := &ast.TryBlock{}
	stmt.Body = p.parseSuite("try")

	if p.at(token.CATCH) {
		catchStart := p.cur().Span.Start
		p.advance()
		clause := &ast.CatchClause{}
		if p.at(token.IDENT) {
			clause.Variable = p.parseIdentifier("catch variable")
		}
		clause.Body = p.parseSuite("catch")
		clause.Span = p.spanFrom(catchStart)
		stmt.Catch = clause
	}

	if p.at(token.FINALLY) {
		finallyStart := p.cur().Span.Start
		p.advance()
		clause := &ast.FinallyClause{}
		clause.Body = p.parseSuite("finally")
		clause.Span = p.spanFrom(finallyStart)
		stmt.Finally = clause
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseChoice() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // choice

	stmt := &ast.ChoiceBlock{}
	if p.at(token.DISCRETION) {
		stmt.Prompt = p.discretionAt(p.advance())
	}

	p.expect(token.COLON, "after choice header")

	if !p.at(token.NEWLINE) || p.peek(1).Type != token.INDENT {
		p.errorHere("expected-token", "expected an indented block of options after choice header")
		p.syncToNextLine()
		stmt.Span = p.spanFrom(start)
		return stmt
	}
	p.advance() // NEWLINE
	p.advance() // INDENT

	for !p.at(token.DEDENT) && !p.atEnd() {
		if p.match(token.NEWLINE) {
			continue
		}
		if !p.at(token.OPTION) {
			p.errorHere("expected-token",
				"expected 'option' inside choice block, found "+describeToken(p.cur()))
			p.syncToNextLine()
			continue
		}

		optStart := p.cur().Span.Start
		p.advance() // option
		opt := &ast.ChoiceOption{}
		if p.at(token.STRING) {
			tok := p.advance()
			opt.Label = &ast.StringLiteral{Value: tok.Value, Meta: tok.StringMeta, Span: tok.Span}
		}
		opt.Body = p.parseSuite("option")
		opt.Span = p.spanFrom(optStart)
		stmt.Options = append(stmt.Options, opt)
	}
	p.expect(token.DEDENT, "to close the choice block")

	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseIf() ast.Statement {
	start := p.cur().Span.Start
	p.advance() // if

	stmt := &ast.IfStatement{}
	stmt.Condition = p.parseDiscretion("after 'if'")
	stmt.Body = p.parseSuite("if condition")

	for p.at(token.ELIF) {
		elifStart := p.cur().Span.Start
		p.advance()
		clause := &ast.ElifClause{}
		clause.Condition = p.parseDiscretion("after 'elif'")
		clause.Body = p.parseSuite("elif condition")
		clause.Span = p.spanFrom(elifStart)
		stmt.Elifs = append(stmt.Elifs, clause)
	}

	if p.at(token.ELSE) {
		elseStart := p.cur().Span.Start
		p.advance()
		clause := &ast.ElseClause{}
		clause.Body = p.parseSuite("else")
		clause.Span = p.spanFrom(elseStart)
		stmt.Else = clause
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseDiscretion(context string) *ast.Discretion {
	if p.at(token.DISCRETION) {
		return p.discretionAt(p.advance())
	}
	p.errorHere("expected-token",
		"expected a **discretion** condition "+context+", found "+describeToken(p.cur()))
	return nil
}
