package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.microglot.org/jasm/internal/escape"
	"gopkg.microglot.org/jasm/internal/jasm"
)

type String struct {
	Token *jasm.Token
}

func (*String) Kind() Kind                   { return KindString }
func (*String) node()                        {}
func (self *String) Location() jasm.Location { return tokenLocation(self.Token) }

// Value resolves escapes in the raw content.
func (self *String) Value() (string, error) {
	return escape.Unescape(self.Token.Content)
}

type Character struct {
	Token *jasm.Token
}

func (*Character) Kind() Kind                   { return KindCharacter }
func (*Character) node()                        {}
func (self *Character) Location() jasm.Location { return tokenLocation(self.Token) }

func (self *Character) Value() (rune, error) {
	s, err := escape.Unescape(self.Token.Content)
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("character literal must hold exactly one character")
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r > 0xFFFF {
		return 0, fmt.Errorf("character literal %q does not fit in a char", s)
	}
	return r, nil
}

type Bool struct {
	Token *jasm.Token
}

func (*Bool) Kind() Kind                   { return KindBool }
func (*Bool) node()                        {}
func (self *Bool) Location() jasm.Location { return tokenLocation(self.Token) }
func (self *Bool) Value() bool             { return self.Token.Content == "true" }

type Number struct {
	Token *jasm.Token
}

func (*Number) Kind() Kind                   { return KindNumber }
func (*Number) node()                        {}
func (self *Number) Location() jasm.Location { return tokenLocation(self.Token) }

// Value parses the literal. Numbers are kept as raw text until asked.
func (self *Number) Value() (NumberValue, error) {
	return ParseNumber(self.Token.Content)
}

type NumberKind uint8

const (
	NumberInt NumberKind = iota
	NumberLong
	NumberFloat
	NumberDouble
)

func (k NumberKind) String() string {
	switch k {
	case NumberInt:
		return "int"
	case NumberLong:
		return "long"
	case NumberFloat:
		return "float"
	default:
		return "double"
	}
}

// NumberValue holds a parsed literal. Int is set for integral kinds and
// Float for floating kinds.
type NumberValue struct {
	Kind  NumberKind
	Int   int64
	Float float64
}

func (self NumberValue) IsIntegral() bool {
	return self.Kind == NumberInt || self.Kind == NumberLong
}

// ParseNumber evaluates a numeric literal. A 0x prefix selects hex, an L or
// l suffix selects long, f or F selects float on decimal literals, d or D
// selects double, and a dot, an exponent, NaN or Infinity imply a floating
// literal. Hex int literals may use the full unsigned 32 bit range.
func ParseNumber(text string) (NumberValue, error) {
	s := text
	neg := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return NumberValue{}, fmt.Errorf("%q is not a number", text)
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "nan") || strings.HasPrefix(lower, "infinity") {
		kind := NumberDouble
		if strings.HasSuffix(lower, "f") {
			kind = NumberFloat
			lower = lower[:len(lower)-1]
		} else if strings.HasSuffix(lower, "d") {
			lower = lower[:len(lower)-1]
		}
		var v float64
		switch lower {
		case "nan":
			v = math.NaN()
		case "infinity":
			v = math.Inf(1)
			if neg {
				v = math.Inf(-1)
			}
		default:
			return NumberValue{}, fmt.Errorf("%q is not a number", text)
		}
		return NumberValue{Kind: kind, Float: v}, nil
	}
	hex := strings.HasPrefix(lower, "0x")
	if hex {
		digits := lower[2:]
		kind := NumberInt
		if strings.HasSuffix(digits, "l") {
			kind = NumberLong
			digits = digits[:len(digits)-1]
		}
		bits := 32
		if kind == NumberLong {
			bits = 64
		}
		u, err := strconv.ParseUint(digits, 16, bits)
		if err != nil {
			return NumberValue{}, fmt.Errorf("%q is not a valid %s", text, kind)
		}
		var v int64
		if kind == NumberInt {
			v = int64(int32(uint32(u)))
		} else {
			v = int64(u)
		}
		if neg {
			v = -v
		}
		return NumberValue{Kind: kind, Int: v}, nil
	}
	switch lower[len(lower)-1] {
	case 'l':
		v, err := strconv.ParseInt(sign(neg)+lower[:len(lower)-1], 10, 64)
		if err != nil {
			return NumberValue{}, fmt.Errorf("%q is not a valid long", text)
		}
		return NumberValue{Kind: NumberLong, Int: v}, nil
	case 'f':
		v, err := strconv.ParseFloat(sign(neg)+lower[:len(lower)-1], 32)
		if err != nil {
			return NumberValue{}, fmt.Errorf("%q is not a valid float", text)
		}
		return NumberValue{Kind: NumberFloat, Float: v}, nil
	case 'd':
		v, err := strconv.ParseFloat(sign(neg)+lower[:len(lower)-1], 64)
		if err != nil {
			return NumberValue{}, fmt.Errorf("%q is not a valid double", text)
		}
		return NumberValue{Kind: NumberDouble, Float: v}, nil
	}
	if strings.ContainsAny(lower, ".e") {
		v, err := strconv.ParseFloat(sign(neg)+lower, 64)
		if err != nil {
			return NumberValue{}, fmt.Errorf("%q is not a valid double", text)
		}
		return NumberValue{Kind: NumberDouble, Float: v}, nil
	}
	v, err := strconv.ParseInt(sign(neg)+lower, 10, 32)
	if err != nil {
		return NumberValue{}, fmt.Errorf("%q is not a valid int", text)
	}
	return NumberValue{Kind: NumberInt, Int: v}, nil
}

func sign(neg bool) string {
	if neg {
		return "-"
	}
	return ""
}
