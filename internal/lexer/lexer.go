// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lexer

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.microglot.org/jasm/internal/escape"
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/iter"
	"gopkg.microglot.org/jasm/internal/jasm"
	"gopkg.microglot.org/jasm/internal/optional"
	"gopkg.microglot.org/jasm/internal/result"
)

const (
	lexerLookahead = 2
)

// bareKeywords are the keywords written without a leading dot.
var bareKeywords = map[string]bool{
	"class":      true,
	"extends":    true,
	"implements": true,
}

// Lexer implements a tokenizer for assembly text. It never stops on bad
// input: problems are sent to the reporter and lexing continues.
type Lexer struct {
	reporter exc.Reporter
}

func NewLexer(reporter exc.Reporter) *Lexer {
	return &Lexer{reporter: reporter}
}

// Lex returns an iterator of tokens over the given code points.
func (self *Lexer) Lex(ctx context.Context, uri string, points jasm.Iterator[jasm.CodePoint]) jasm.Iterator[*jasm.Token] {
	return &lexerTokens{
		uri:      uri,
		body:     iter.NewLookahead(points, lexerLookahead),
		reporter: self.reporter,
		line:     1,
		col:      0,
	}
}

// Tokenize lexes text in one pass. The token list is always present; the
// result carries every lexical error found.
func Tokenize(ctx context.Context, uri string, text string) result.Result[[]*jasm.Token] {
	return tokenize(ctx, uri, iter.NewUnicodeString(text))
}

// TokenizeFile lexes the body of f as it is read. Failing to read the body
// is fatal.
func TokenizeFile(ctx context.Context, uri string, f jasm.File) result.Result[[]*jasm.Token] {
	body, err := f.Body(ctx)
	if err != nil {
		return result.Err[[]*jasm.Token](exc.Wrap(jasm.Location{URI: uri}, exc.CodeReadFailure, err))
	}
	return tokenize(ctx, uri, iter.NewUnicodeFileBody(ctx, body))
}

func tokenize(ctx context.Context, uri string, points jasm.Iterator[jasm.CodePoint]) result.Result[[]*jasm.Token] {
	reporter := exc.NewReporter(nil)
	tokens, err := iter.Collect(ctx, NewLexer(reporter).Lex(ctx, uri, points))
	if err != nil {
		return result.Err[[]*jasm.Token](exc.Wrap(jasm.Location{URI: uri}, exc.CodeReadFailure, err))
	}
	return result.FromReporter(tokens, reporter)
}

type lexerTokens struct {
	uri      string
	body     jasm.Lookahead[jasm.CodePoint]
	reporter exc.Reporter
	line     int
	col      int
}

func (self *lexerTokens) Next(ctx context.Context) optional.Optional[*jasm.Token] {
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		line, col := self.line, self.col
		switch r {
		case '\n':
			self.newLine()
			continue
		case ' ', '\t', '\r', 0xFEFF:
			continue
		case '{', '}', ',', ':':
			return optional.Some(self.token(jasm.TokenKindSymbol, string(r), line, col, 1))
		case '"':
			return self.readQuoted(ctx, '"', jasm.TokenKindString, line, col)
		case '\'':
			return self.readQuoted(ctx, '\'', jasm.TokenKindCharacter, line, col)
		case '/':
			if self.peekIs(ctx, 1, '/') {
				_ = self.next(ctx)
				return self.readComment(ctx, line, col)
			}
		}
		if isInvalid(r) {
			_ = self.reporter.Report(exc.Newf(
				jasm.Location{URI: self.uri, Line: line, Column: col, Length: 1},
				exc.CodeUnexpectedCharacter,
				"unexpected character %q", r,
			))
			continue
		}
		return self.readWord(ctx, r, line, col)
	}
	return optional.None[*jasm.Token]()
}

func (self *lexerTokens) readWord(ctx context.Context, first rune, line int, col int) optional.Optional[*jasm.Token] {
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	size := 1
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			break
		}
		r := rune(n.Value())
		if isDelimiter(r) || isInvalid(r) {
			break
		}
		if r == '/' && self.peekIs(ctx, 2, '/') {
			break
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(r)
		size = size + 1
	}
	content := builder.String()
	return optional.Some(self.token(classify(content), content, line, col, size))
}

func (self *lexerTokens) readQuoted(ctx context.Context, quote rune, kind jasm.TokenKind, line int, col int) optional.Optional[*jasm.Token] {
	var builder strings.Builder
	size := 1
	closed := false
	for !closed {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || rune(n.Value()) == '\n' {
			break
		}
		r := rune(n.Value())
		_ = self.next(ctx)
		size = size + 1
		switch r {
		case quote:
			closed = true
		case '\\':
			_, _ = builder.WriteRune(r)
			nn := self.body.Lookahead(ctx, 1)
			if nn.IsPresent() && rune(nn.Value()) != '\n' {
				_ = self.next(ctx)
				size = size + 1
				_, _ = builder.WriteRune(rune(nn.Value()))
			}
		default:
			_, _ = builder.WriteRune(r)
		}
	}
	t := self.token(kind, builder.String(), line, col, size)
	if !closed {
		_ = self.reporter.Report(exc.New(t.Location, exc.CodeUnterminatedString, "unterminated "+kind.String()+" literal"))
		return optional.Some(t)
	}
	value, err := escape.Unescape(t.Content)
	if err != nil {
		_ = self.reporter.Report(exc.New(t.Location, exc.CodeInvalidEscape, err.Error()))
		return optional.Some(t)
	}
	if kind == jasm.TokenKindCharacter && utf8.RuneCountInString(value) != 1 {
		_ = self.reporter.Report(exc.New(t.Location, exc.CodeInvalidCharacter, "character literal must hold exactly one character"))
	}
	return optional.Some(t)
}

func (self *lexerTokens) readComment(ctx context.Context, line int, col int) optional.Optional[*jasm.Token] {
	var builder strings.Builder
	size := 2
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || rune(n.Value()) == '\n' {
			break
		}
		_ = self.next(ctx)
		size = size + 1
		_, _ = builder.WriteRune(rune(n.Value()))
	}
	content := strings.TrimSuffix(builder.String(), "\r")
	return optional.Some(self.token(jasm.TokenKindComment, content, line, col, size))
}

func (self *lexerTokens) peekIs(ctx context.Context, n uint8, r rune) bool {
	p := self.body.Lookahead(ctx, n)
	return p.IsPresent() && rune(p.Value()) == r
}

func (self *lexerTokens) next(ctx context.Context) optional.Optional[jasm.CodePoint] {
	n := self.body.Next(ctx)
	if n.IsPresent() {
		self.col = self.col + 1
	}
	return n
}

func (self *lexerTokens) newLine() {
	self.line = self.line + 1
	self.col = 0
}

func (self *lexerTokens) token(kind jasm.TokenKind, content string, line int, col int, size int) *jasm.Token {
	return &jasm.Token{
		Kind:    kind,
		Content: content,
		Location: jasm.Location{
			URI:    self.uri,
			Line:   line,
			Column: col,
			Length: size,
		},
	}
}

func (self *lexerTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func isDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '{', '}', ',', ':', '"', '\'':
		return true
	}
	return false
}

func isInvalid(r rune) bool {
	if r == utf8.RuneError {
		return true
	}
	return unicode.IsControl(r) && r != '\t' && r != '\r' && r != '\n'
}

func classify(content string) jasm.TokenKind {
	if bareKeywords[content] {
		return jasm.TokenKindKeyword
	}
	if len(content) > 1 && content[0] == '.' && isLetter(content[1]) {
		return jasm.TokenKindKeyword
	}
	if IsNumber(content) {
		return jasm.TokenKindNumber
	}
	return jasm.TokenKindIdentifier
}

// IsNumber reports whether a word reads as a numeric literal: a digit, or a
// sign or dot followed by a digit, or one of NaN and Infinity with an
// optional sign and suffix.
func IsNumber(content string) bool {
	s := strings.TrimLeft(content, "+-")
	if len(content)-len(s) > 1 || s == "" {
		return false
	}
	if isDigit(s[0]) {
		return true
	}
	if s[0] == '.' && len(s) > 1 && isDigit(s[1]) {
		return true
	}
	switch strings.TrimRight(s, "fFdD") {
	case "NaN", "Infinity":
		return true
	}
	return false
}

// IsIdentifier reports whether text reads back as exactly one identifier
// token.
func IsIdentifier(text string) bool {
	if text == "" || strings.Contains(text, "//") {
		return false
	}
	for _, r := range text {
		if isDelimiter(r) || isInvalid(r) || r == 0xFEFF {
			return false
		}
	}
	return classify(text) == jasm.TokenKindIdentifier
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
