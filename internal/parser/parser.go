package parser

import (
	"context"
	"fmt"

	"gopkg.microglot.org/jasm/internal/ast"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/iter"
	"gopkg.microglot.org/jasm/internal/jasm"
	"gopkg.microglot.org/jasm/internal/result"
)

const (
	parserLookahead = 2
	// codeKey is the object key whose value is read as a code block.
	codeKey = "code"
)

// Parser groups tokens into declarations, objects, arrays and code blocks.
// Only braces and keywords are enforced here; the processor assigns
// meaning afterwards.
type Parser struct {
	reporter exc.Reporter
}

func NewParser(reporter exc.Reporter) *Parser {
	return &Parser{reporter: reporter}
}

// Parse consumes the token stream. It returns nil after reporting a single
// structural error when the tree cannot be built.
func (self *Parser) Parse(ctx context.Context, uri string, tokens jasm.Iterator[*jasm.Token]) []ast.Node {
	p := &parserTokens{
		reporter: self.reporter,
		ctx:      ctx,
		uri:      uri,
		tokens:   iter.NewLookahead(tokens, parserLookahead),
	}
	nodes := p.parseUnit()
	if p.failed {
		return nil
	}
	return nodes
}

// Parse is a convenience wrapper over a token slice. The value is absent when
// a structural error stopped parsing.
func Parse(ctx context.Context, uri string, tokens []*jasm.Token) result.Result[[]ast.Node] {
	reporter := exc.NewReporter(nil)
	nodes := NewParser(reporter).Parse(ctx, uri, iter.NewSlice(tokens))
	if nodes == nil && len(reporter.Reported()) > 0 {
		return result.Err[[]ast.Node](reporter.Reported()...)
	}
	if nodes == nil {
		nodes = []ast.Node{}
	}
	return result.FromReporter(nodes, reporter)
}

type parserTokens struct {
	reporter exc.Reporter
	ctx      context.Context
	uri      string
	tokens   jasm.Lookahead[*jasm.Token]
	// last is the location of the most recently consumed token. It locates
	// EOF errors and ends instruction lines.
	last   jasm.Location
	failed bool
}

func (p *parserTokens) report(loc jasm.Location, code string, message string) {
	if p.failed {
		return
	}
	if e := p.reporter.Report(exc.New(loc, code, message)); e != nil {
		p.failed = true
	}
}

func (p *parserTokens) advance() *jasm.Token {
	t := p.peek()
	if t != nil {
		p.last = t.Location
	}
	_ = p.tokens.Next(p.ctx)
	return t
}

func (p *parserTokens) peekN(n uint8) *jasm.Token {
	maybeToken := p.tokens.Lookahead(p.ctx, n)
	if !maybeToken.IsPresent() {
		return nil
	}
	return maybeToken.Value()
}

func (p *parserTokens) peek() *jasm.Token {
	return p.peekN(0)
}

// expectSymbol reports an error if the current token is not the given symbol.
// Advances on success.
func (p *parserTokens) expectSymbol(symbol string) *jasm.Token {
	t := p.peek()
	if t == nil {
		p.reportEOF(fmt.Sprintf("expecting %q", symbol))
		return nil
	}
	if !t.Is(jasm.TokenKindSymbol, symbol) {
		p.unexpected(t, fmt.Sprintf("expecting %q", symbol))
		return nil
	}
	return p.advance()
}

func (p *parserTokens) reportEOF(expecting string) {
	loc := p.last
	loc.Column = loc.End()
	loc.Length = 0
	loc.URI = p.uri
	p.report(loc, exc.CodeUnexpectedEOF, "unexpected EOF ("+expecting+")")
}

func (p *parserTokens) unexpected(t *jasm.Token, expecting string) {
	code := exc.CodeUnexpectedToken
	if t.Is(jasm.TokenKindSymbol, "}") {
		code = exc.CodeUnbalancedBrace
	}
	p.report(t.Location, code, fmt.Sprintf("unexpected %s %q (%s)", t.Kind, t.Content, expecting))
}

func (p *parserTokens) skipComments() {
	for t := p.peek(); t != nil && t.Kind == jasm.TokenKindComment; t = p.peek() {
		p.advance()
	}
}

// isDeclarationStart reports whether t begins a declaration. The bare
// keywords extends and implements only appear inside one.
func isDeclarationStart(t *jasm.Token) bool {
	if t == nil || t.Kind != jasm.TokenKindKeyword {
		return false
	}
	return t.Content != "extends" && t.Content != "implements"
}

func (p *parserTokens) parseUnit() []ast.Node {
	nodes := []ast.Node{}
	for t := p.peek(); t != nil; t = p.peek() {
		switch {
		case t.Kind == jasm.TokenKindComment:
			nodes = append(nodes, &ast.Comment{Token: p.advance()})
		case isDeclarationStart(t):
			d := p.parseDeclaration()
			if d == nil {
				return nil
			}
			nodes = append(nodes, d)
		default:
			p.unexpected(t, "expecting a declaration keyword")
			return nil
		}
	}
	return nodes
}

// parseDeclaration reads a keyword and everything after it up to the next
// declaration keyword, a separator, a closing brace, or its own block.
func (p *parserTokens) parseDeclaration() *ast.Declaration {
	d := &ast.Declaration{Keyword: p.advance()}
	for {
		t := p.peek()
		if t == nil || isDeclarationStart(t) {
			return d
		}
		if t.Is(jasm.TokenKindSymbol, "}") || t.Is(jasm.TokenKindSymbol, ",") {
			return d
		}
		if t.Kind == jasm.TokenKindComment {
			p.advance()
			continue
		}
		if t.Is(jasm.TokenKindSymbol, "{") {
			block := p.parseBlock(blockBody)
			if block == nil {
				return nil
			}
			d.Elements = append(d.Elements, block)
			return d
		}
		if t.Kind == jasm.TokenKindSymbol {
			p.unexpected(t, "inside "+d.Name())
			return nil
		}
		d.Elements = append(d.Elements, p.parseAtom())
	}
}

type blockKind uint8

const (
	// blockBody follows a declaration's own elements.
	blockBody blockKind = iota
	// blockValue is an object value or an array element.
	blockValue
	blockCode
)

// parseBlock reads a braced block. Code blocks are only read where the
// caller asks for one; otherwise the first elements decide between a list of
// declarations, an object and an array. Declarations only form a list in a
// body; as a value they are the comma separated elements of an array.
func (p *parserTokens) parseBlock(kind blockKind) ast.Node {
	open := p.expectSymbol("{")
	if open == nil {
		return nil
	}
	if kind == blockCode {
		return p.parseCode(open)
	}
	p.skipComments()
	t := p.peek()
	if t == nil {
		p.reportEOF("expecting \"}\"")
		return nil
	}
	switch {
	case t.Is(jasm.TokenKindSymbol, "}"):
		p.advance()
		return &ast.Empty{Open: open}
	case isDeclarationStart(t) && kind == blockBody:
		return p.parseDeclarationList(open)
	case p.peekN(1).Is(jasm.TokenKindSymbol, ":"):
		return p.parseObject(open)
	default:
		return p.parseArray(open)
	}
}

func (p *parserTokens) parseDeclarationList(open *jasm.Token) ast.Node {
	list := &ast.Array{Open: open}
	for {
		p.skipComments()
		t := p.peek()
		if t == nil {
			p.reportEOF("expecting \"}\"")
			return nil
		}
		if t.Is(jasm.TokenKindSymbol, "}") {
			p.advance()
			return list
		}
		if !isDeclarationStart(t) {
			p.unexpected(t, "expecting a declaration keyword")
			return nil
		}
		d := p.parseDeclaration()
		if d == nil {
			return nil
		}
		list.Values = append(list.Values, d)
	}
}

func (p *parserTokens) parseObject(open *jasm.Token) ast.Node {
	obj := &ast.Object{Open: open}
	for {
		p.skipComments()
		t := p.peek()
		if t == nil {
			p.reportEOF("expecting an object key")
			return nil
		}
		if t.Is(jasm.TokenKindSymbol, "}") {
			p.advance()
			return obj
		}
		key := p.parseKey()
		if key == nil {
			return nil
		}
		if p.expectSymbol(":") == nil {
			return nil
		}
		p.skipComments()
		var value ast.Node
		if id, ok := key.(*ast.Identifier); ok && id.Content() == codeKey && p.peek().Is(jasm.TokenKindSymbol, "{") {
			value = p.parseBlock(blockCode)
		} else {
			value = p.parseValue()
		}
		if value == nil {
			return nil
		}
		obj.Entries = append(obj.Entries, &ast.Entry{Key: key, Value: value})
		if !p.parseSeparator() {
			return nil
		}
	}
}

func (p *parserTokens) parseArray(open *jasm.Token) ast.Node {
	arr := &ast.Array{Open: open}
	for {
		p.skipComments()
		t := p.peek()
		if t == nil {
			p.reportEOF("expecting an array value")
			return nil
		}
		if t.Is(jasm.TokenKindSymbol, "}") {
			p.advance()
			return arr
		}
		value := p.parseValue()
		if value == nil {
			return nil
		}
		arr.Values = append(arr.Values, value)
		if !p.parseSeparator() {
			return nil
		}
	}
}

// parseSeparator accepts a comma or leaves a closing brace for the caller.
func (p *parserTokens) parseSeparator() bool {
	p.skipComments()
	t := p.peek()
	if t == nil {
		p.reportEOF("expecting \",\" or \"}\"")
		return false
	}
	if t.Is(jasm.TokenKindSymbol, ",") {
		p.advance()
		return true
	}
	if t.Is(jasm.TokenKindSymbol, "}") {
		return true
	}
	p.unexpected(t, "expecting \",\" or \"}\"")
	return false
}

func (p *parserTokens) parseKey() ast.Node {
	t := p.peek()
	switch t.Kind {
	case jasm.TokenKindIdentifier:
		return &ast.Identifier{Token: p.advance()}
	case jasm.TokenKindNumber:
		return &ast.Number{Token: p.advance()}
	case jasm.TokenKindString:
		return &ast.String{Token: p.advance()}
	}
	p.unexpected(t, "expecting an object key")
	return nil
}

func (p *parserTokens) parseValue() ast.Node {
	t := p.peek()
	switch {
	case t == nil:
		p.reportEOF("expecting a value")
		return nil
	case t.Is(jasm.TokenKindSymbol, "{"):
		return p.parseBlock(blockValue)
	case isDeclarationStart(t):
		d := p.parseDeclaration()
		if d == nil {
			return nil
		}
		return d
	case t.Kind == jasm.TokenKindSymbol:
		p.unexpected(t, "expecting a value")
		return nil
	}
	return p.parseAtom()
}

func (p *parserTokens) parseAtom() ast.Node {
	t := p.advance()
	switch t.Kind {
	case jasm.TokenKindString:
		return &ast.String{Token: t}
	case jasm.TokenKindNumber:
		return &ast.Number{Token: t}
	case jasm.TokenKindCharacter:
		return &ast.Character{Token: t}
	case jasm.TokenKindKeyword:
		return &ast.Keyword{Token: t}
	default:
		return &ast.Identifier{Token: t}
	}
}

// parseCode reads one instruction per line. A word directly followed by a
// colon is a label. Operands continue the instruction while they start on
// the line where the previous token ended.
func (p *parserTokens) parseCode(open *jasm.Token) ast.Node {
	code := &ast.Code{Open: open}
	for {
		t := p.peek()
		if t == nil {
			p.reportEOF("expecting \"}\"")
			return nil
		}
		switch {
		case t.Is(jasm.TokenKindSymbol, "}"):
			p.advance()
			if len(code.Elements) == 0 {
				return &ast.Empty{Open: open}
			}
			return code
		case t.Kind == jasm.TokenKindComment:
			code.Elements = append(code.Elements, &ast.Comment{Token: p.advance()})
		case t.Kind == jasm.TokenKindIdentifier:
			if isLabel(t, p.peekN(1)) {
				name := &ast.Identifier{Token: p.advance()}
				p.advance()
				code.Elements = append(code.Elements, &ast.Label{Name: name})
				continue
			}
			insn := p.parseInstruction()
			if insn == nil {
				return nil
			}
			code.Elements = append(code.Elements, insn)
		default:
			p.unexpected(t, "expecting an instruction or label")
			return nil
		}
	}
}

func isLabel(name *jasm.Token, colon *jasm.Token) bool {
	if !colon.Is(jasm.TokenKindSymbol, ":") {
		return false
	}
	return colon.Location.Line == name.Location.Line && colon.Location.Column == name.Location.End()
}

func (p *parserTokens) parseInstruction() *ast.Instruction {
	insn := &ast.Instruction{Mnemonic: &ast.Identifier{Token: p.advance()}}
	for {
		t := p.peek()
		if t == nil || t.Location.Line != p.last.Line {
			return insn
		}
		if t.Is(jasm.TokenKindSymbol, "}") || t.Kind == jasm.TokenKindComment {
			return insn
		}
		value := p.parseValue()
		if value == nil {
			return nil
		}
		insn.Args = append(insn.Args, value)
	}
}
