package parser

import (
	"strconv"
	"strings"

	"mercator-hq/prose/pkg/prose/ast"
	"mercator-hq/prose/pkg/prose/token"
)

// parseExpression parses a value expression. Returns nil after recording an
// error when no expression starts at the cursor.
func (p *Parser) parseExpression() ast.Expression {
	switch p.cur().Type {
	case token.STRING:
		tok := p.advance()
		return &ast.StringLiteral{Value: tok.Value, Meta: tok.StringMeta, Span: tok.Span}

	case token.NUMBER:
		return p.parseNumberLiteral("expression")

	case token.DISCRETION:
		return p.discretionAt(p.advance())

	case token.SESSION:
		sess := p.parseSession()
		return p.parseArrowChain(sess)

	case token.DO:
		do := p.parseDoExpression()
		return p.parseArrowChain(do)

	case token.LBRACKET:
		arr := p.parseArrayLiteral()
		if p.at(token.PIPE) {
			return p.parsePipeChain(arr)
		}
		return arr

	case token.LBRACE:
		return p.parseObjectLiteral()

	case token.IDENT:
		id := p.parseIdentifier("expression")
		if p.at(token.PIPE) {
			return p.parsePipeChain(id)
		}
		return id
	}

	p.errorHere("expected-token",
		"expected an expression, found "+describeToken(p.cur()))
	return nil
}

// parseIdentifier parses a single identifier, or records an error and
// returns nil.
func (p *Parser) parseIdentifier(context string) *ast.Identifier {
	if !p.at(token.IDENT) {
		p.errorHere("expected-token",
			"expected an identifier as "+context+", found "+describeToken(p.cur()))
		return nil
	}
	tok := p.advance()
	return &ast.Identifier{Name: tok.Value, Span: tok.Span}
}

// parseNumberLiteral parses a NUMBER token, or records an error and returns
// nil.
func (p *Parser) parseNumberLiteral(context string) *ast.NumberLiteral {
	if !p.at(token.NUMBER) {
		p.errorHere("expected-token",
			"expected a number as "+context+", found "+describeToken(p.cur()))
		return nil
	}
	tok := p.advance()
	value, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		p.errorAt("invalid-number", "invalid number literal '"+tok.Value+"'", tok.Span)
		value = 0
	}
	return &ast.NumberLiteral{
		Value: value,
		Raw:   tok.Value,
		IsInt: !strings.Contains(tok.Value, "."),
		Span:  tok.Span,
	}
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	start := p.cur().Span.Start
	p.advance() // '['

	arr := &ast.ArrayLiteral{}
	for !p.at(token.RBRACKET) && !p.atEnd() {
		el := p.parseExpression()
		if el == nil {
			break
		}
		arr.Elements = append(arr.Elements, el)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACKET, "to close the array")

	arr.Span = p.spanFrom(start)
	return arr
}

// parseObjectLiteral parses the shorthand "{a, b, c}", bundling in-scope
// variables by name.
func (p *Parser) parseObjectLiteral() *ast.ObjectLiteral {
	start := p.cur().Span.Start
	p.advance() // '{'

	obj := &ast.ObjectLiteral{}
	for !p.at(token.RBRACE) && !p.atEnd() {
		name := p.parseIdentifier("object member")
		if name == nil {
			break
		}
		obj.Names = append(obj.Names, name)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "to close the object")

	obj.Span = p.spanFrom(start)
	return obj
}

// parseArrowChain extends an expression with "-> <operand>" links.
// Chains are right-associative: a -> b -> c is a -> (b -> c).
func (p *Parser) parseArrowChain(left ast.Expression) ast.Expression {
	if left == nil || !p.at(token.ARROW) {
		return left
	}
	p.advance() // '->'

	right := p.parseArrowOperand()
	if right == nil {
		return left
	}
	rest := p.parseArrowChain(right)

	return &ast.ArrowExpression{
		Left:  left,
		Right: rest,
		Span:  token.Span{Start: left.Pos().Start, End: rest.Pos().End},
	}
}

// parseArrowOperand parses the unit of work on the right of an arrow.
func (p *Parser) parseArrowOperand() ast.Expression {
	switch p.cur().Type {
	case token.SESSION:
		return p.parseSession()
	case token.DO:
		return p.parseDoExpression()
	}
	p.errorHere("expected-token",
		"expected a session or 'do' invocation after '->', found "+describeToken(p.cur()))
	return nil
}

// parsePipeChain parses "| <stage>" links after a source collection. Each
// stage has its own indented body, so the closing '|' of the next stage
// arrives at the enclosing indentation level:
//
//	items | map (item):
//	    session "summarize {item}"
//	| filter (summary):
//	    session "keep only useful entries: {summary}"
func (p *Parser) parsePipeChain(source ast.Expression) ast.Expression {
	pipe := &ast.PipeExpression{Source: source}
	start := source.Pos().Start

	for p.at(token.PIPE) {
		p.advance() // '|'
		stage := p.parsePipeStage()
		if stage == nil {
			break
		}
		pipe.Stages = append(pipe.Stages, stage)
	}

	pipe.Span = p.spanFrom(start)
	return pipe
}

func (p *Parser) parsePipeStage() *ast.PipeStage {
	start := p.cur().Span.Start

	var op ast.PipeOperation
	switch p.cur().Type {
	case token.MAP:
		op = ast.PipeMap
	case token.FILTER:
		op = ast.PipeFilter
	case token.REDUCE:
		op = ast.PipeReduce
	default:
		p.errorHere("expected-token",
			"expected 'map', 'filter', or 'reduce' after '|', found "+describeToken(p.cur()))
		p.syncToNextLine()
		return nil
	}
	p.advance()

	stage := &ast.PipeStage{Operation: op}

	if p.match(token.LPAREN) {
		for {
			param := p.parseIdentifier("pipeline stage parameter")
			if param == nil {
				break
			}
			stage.Parameters = append(stage.Parameters, param)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN, "to close the parameter list")
	}

	stage.Body = p.parseSuite("pipeline stage")
	stage.Span = p.spanFrom(start)
	return stage
}
