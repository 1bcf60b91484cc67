package jasm

import (
	"context"
	"fmt"

	"gopkg.microglot.org/jasm/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindSource
	FileKindClass
	FileKindImage
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindSource:
		return "source"
	case FileKindClass:
		return "class"
	case FileKindImage:
		return "image"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content []byte) error
}

// Target selects the instruction set a unit is assembled for.
type Target uint8

const (
	TargetJVM Target = iota
	TargetDalvik
)

func (t Target) String() string {
	switch t {
	case TargetJVM:
		return "jvm"
	case TargetDalvik:
		return "dalvik"
	default:
		return fmt.Sprintf("target-%d", t)
	}
}

// Location points at a span of source text. The zero value is a
// location-less position and is used for structural or global failures.
type Location struct {
	URI    string
	Line   int
	Column int
	Length int
}

func (l Location) IsValid() bool {
	return l.Line > 0
}

func (l Location) String() string {
	if !l.IsValid() {
		return l.URI
	}
	return fmt.Sprintf("%s:%d:%d", l.URI, l.Line, l.Column)
}

// End returns the column one past the last character of the span.
func (l Location) End() int {
	return l.Column + l.Length
}

type TokenKind uint8

const (
	TokenKindKeyword TokenKind = iota
	TokenKindIdentifier
	TokenKindString
	TokenKindNumber
	TokenKindCharacter
	TokenKindSymbol
	TokenKindComment
)

func (k TokenKind) String() string {
	switch k {
	case TokenKindKeyword:
		return "keyword"
	case TokenKindIdentifier:
		return "identifier"
	case TokenKindString:
		return "string"
	case TokenKindNumber:
		return "number"
	case TokenKindCharacter:
		return "character"
	case TokenKindSymbol:
		return "symbol"
	case TokenKindComment:
		return "comment"
	default:
		return fmt.Sprintf("token-%d", k)
	}
}

// Token is a single lexeme. Content holds the raw source text without
// quotes for strings and characters; escapes are resolved later.
type Token struct {
	Kind     TokenKind
	Content  string
	Location Location
}

func (t *Token) String() string {
	return fmt.Sprintf("%s %q @ %s", t.Kind, t.Content, t.Location)
}

// Is reports whether the token is the given symbol or keyword text.
func (t *Token) Is(kind TokenKind, content string) bool {
	return t != nil && t.Kind == kind && t.Content == content
}

type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error)
}

// Source is an in-memory unit of assembly text.
type Source struct {
	Name string
	Text string
}

type CompileRequest struct {
	Files      []string
	Sources    []Source
	DumpTokens bool
	DumpTree   bool
}

// Unit is the outcome of compiling one source. Output is the encoded
// member image and is nil when the unit failed.
type Unit struct {
	Name   string
	Output []byte
}

type CompileResponse struct {
	Units []*Unit
}
