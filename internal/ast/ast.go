package ast

import (
	"fmt"

	"gopkg.microglot.org/jasm/internal/jasm"
)

type Kind uint8

const (
	KindArray Kind = iota
	KindObject
	KindDeclaration
	KindKeyword
	KindIdentifier
	KindString
	KindNumber
	KindCharacter
	KindBool
	KindCode
	KindInstruction
	KindLabel
	KindComment
	KindEmpty
	KindType
	KindMethod
	KindField
	KindAnnotation
	KindEnumConstant
	KindInnerType
	KindTypeAttribute
	KindSignature
	KindTypeReference
	KindMethodTypeReference
	KindException
)

var kindNames = map[Kind]string{
	KindArray:               "array",
	KindObject:              "object",
	KindDeclaration:         "declaration",
	KindKeyword:             "keyword",
	KindIdentifier:          "identifier",
	KindString:              "string",
	KindNumber:              "number",
	KindCharacter:           "character",
	KindBool:                "bool",
	KindCode:                "code",
	KindInstruction:         "instruction",
	KindLabel:               "label",
	KindComment:             "comment",
	KindEmpty:               "empty",
	KindType:                "type declaration",
	KindMethod:              "method",
	KindField:               "field",
	KindAnnotation:          "annotation",
	KindEnumConstant:        "enum constant",
	KindInnerType:           "inner type",
	KindTypeAttribute:       "type attribute",
	KindSignature:           "signature",
	KindTypeReference:       "type reference",
	KindMethodTypeReference: "method type reference",
	KindException:           "exception",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind-%d", k)
}

// Node is the closed set of syntax tree elements. Every node reports a
// location: its own token when it has one, otherwise the location of its
// first located child.
type Node interface {
	Kind() Kind
	Location() jasm.Location
	node()
}

func tokenLocation(t *jasm.Token) jasm.Location {
	if t == nil {
		return jasm.Location{}
	}
	return t.Location
}

func firstLocation(nodes ...Node) jasm.Location {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if loc := n.Location(); loc.IsValid() {
			return loc
		}
	}
	return jasm.Location{}
}

// Identifier is a bare word: names, descriptors, labels and mnemonics.
type Identifier struct {
	Token *jasm.Token
}

func (*Identifier) Kind() Kind { return KindIdentifier }
func (*Identifier) node()      {}
func (self *Identifier) Location() jasm.Location {
	if self == nil {
		return jasm.Location{}
	}
	return tokenLocation(self.Token)
}
func (self *Identifier) Content() string {
	if self == nil || self.Token == nil {
		return ""
	}
	return self.Token.Content
}

// Keyword is a bare keyword found inside a declaration, like extends.
type Keyword struct {
	Token *jasm.Token
}

func (*Keyword) Kind() Kind                   { return KindKeyword }
func (*Keyword) node()                        {}
func (self *Keyword) Location() jasm.Location { return tokenLocation(self.Token) }

type Comment struct {
	Token *jasm.Token
}

func (*Comment) Kind() Kind                   { return KindComment }
func (*Comment) node()                        {}
func (self *Comment) Location() jasm.Location { return tokenLocation(self.Token) }

// Empty is the {} marker used for both empty objects and empty arrays.
type Empty struct {
	Open *jasm.Token
}

func (*Empty) Kind() Kind                   { return KindEmpty }
func (*Empty) node()                        {}
func (self *Empty) Location() jasm.Location { return tokenLocation(self.Open) }

type Array struct {
	Open   *jasm.Token
	Values []Node
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) node()      {}
func (self *Array) Location() jasm.Location {
	if self.Open != nil {
		return self.Open.Location
	}
	return firstLocation(self.Values...)
}

// Entry is one key/value pair of an Object.
type Entry struct {
	Key   Node
	Value Node
}

// KeyContent returns the raw text of the key.
func (self *Entry) KeyContent() string {
	switch k := self.Key.(type) {
	case *Identifier:
		return k.Content()
	case *Number:
		return k.Token.Content
	case *String:
		return k.Token.Content
	}
	return ""
}

// Object keeps entries in source order. Keys may repeat; lookups return the
// first match.
type Object struct {
	Open    *jasm.Token
	Entries []*Entry
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) node()      {}
func (self *Object) Location() jasm.Location {
	if self.Open != nil {
		return self.Open.Location
	}
	for _, e := range self.Entries {
		if loc := firstLocation(e.Key, e.Value); loc.IsValid() {
			return loc
		}
	}
	return jasm.Location{}
}

func (self *Object) Get(key string) (Node, bool) {
	if self == nil {
		return nil, false
	}
	for _, e := range self.Entries {
		if e.KeyContent() == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Declaration is a keyword-led run of elements prior to processing.
type Declaration struct {
	Keyword  *jasm.Token
	Elements []Node
}

func (*Declaration) Kind() Kind { return KindDeclaration }
func (*Declaration) node()      {}
func (self *Declaration) Location() jasm.Location {
	if self.Keyword != nil {
		return self.Keyword.Location
	}
	return firstLocation(self.Elements...)
}

// Name returns the keyword text.
func (self *Declaration) Name() string {
	if self.Keyword == nil {
		return ""
	}
	return self.Keyword.Content
}

// Code is a flat sequence of instructions, labels and comments.
type Code struct {
	Open     *jasm.Token
	Elements []Node
}

func (*Code) Kind() Kind { return KindCode }
func (*Code) node()      {}
func (self *Code) Location() jasm.Location {
	if self.Open != nil {
		return self.Open.Location
	}
	return firstLocation(self.Elements...)
}

type Instruction struct {
	Mnemonic *Identifier
	Args     []Node
}

func (*Instruction) Kind() Kind { return KindInstruction }
func (*Instruction) node()      {}
func (self *Instruction) Location() jasm.Location {
	if loc := self.Mnemonic.Location(); loc.IsValid() {
		return loc
	}
	return firstLocation(self.Args...)
}

// Label is an instruction with no arguments that marks a position. It is
// written with a trailing colon.
type Label struct {
	Name *Identifier
}

func (*Label) Kind() Kind                   { return KindLabel }
func (*Label) node()                        {}
func (self *Label) Location() jasm.Location { return self.Name.Location() }
func (self *Label) String() string          { return self.Name.Content() + ":" }
