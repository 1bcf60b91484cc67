// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package escape converts between quoted literal text and its value using
// the escape set \n \r \t \b \f \" \' \\ and \uXXXX.
package escape

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Unescape resolves every escape sequence in s. UTF-16 surrogate pairs
// written as two \u escapes are combined into one code point.
func Unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	runes := []rune(s)
	for x := 0; x < len(runes); x = x + 1 {
		r := runes[x]
		if r != '\\' {
			_, _ = b.WriteRune(r)
			continue
		}
		if x+1 >= len(runes) {
			return "", fmt.Errorf("trailing backslash")
		}
		x = x + 1
		switch runes[x] {
		case 'n':
			_ = b.WriteByte('\n')
		case 'r':
			_ = b.WriteByte('\r')
		case 't':
			_ = b.WriteByte('\t')
		case 'b':
			_ = b.WriteByte('\b')
		case 'f':
			_ = b.WriteByte('\f')
		case '"':
			_ = b.WriteByte('"')
		case '\'':
			_ = b.WriteByte('\'')
		case '\\':
			_ = b.WriteByte('\\')
		case 'u':
			v, err := readHex(runes, x+1)
			if err != nil {
				return "", err
			}
			x = x + 4
			if utf16.IsSurrogate(v) && x+6 < len(runes) && runes[x+1] == '\\' && runes[x+2] == 'u' {
				low, err := readHex(runes, x+3)
				if err == nil {
					if d := utf16.DecodeRune(v, low); d != unicode.ReplacementChar {
						_, _ = b.WriteRune(d)
						x = x + 6
						continue
					}
				}
			}
			_, _ = b.WriteRune(v)
		default:
			return "", fmt.Errorf("invalid escape \\%c", runes[x])
		}
	}
	return b.String(), nil
}

func readHex(runes []rune, start int) (rune, error) {
	if start+4 > len(runes) {
		return 0, fmt.Errorf("\\u requires four hex digits")
	}
	v, err := strconv.ParseUint(string(runes[start:start+4]), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("\\u requires four hex digits")
	}
	return rune(v), nil
}

// Escape quotes s for use inside a double-quoted string literal.
func Escape(s string) string {
	return escape(s, '"')
}

// EscapeChar quotes r for use inside a single-quoted character literal.
func EscapeChar(r rune) string {
	return escape(string(r), '\'')
}

func escape(s string, quote rune) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			_, _ = b.WriteString(`\n`)
		case '\r':
			_, _ = b.WriteString(`\r`)
		case '\t':
			_, _ = b.WriteString(`\t`)
		case '\b':
			_, _ = b.WriteString(`\b`)
		case '\f':
			_, _ = b.WriteString(`\f`)
		case '\\':
			_, _ = b.WriteString(`\\`)
		case quote:
			_ = b.WriteByte('\\')
			_, _ = b.WriteRune(r)
		default:
			if unicode.IsPrint(r) {
				_, _ = b.WriteRune(r)
				continue
			}
			if r > 0xFFFF {
				hi, lo := utf16.EncodeRune(r)
				_, _ = fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
				continue
			}
			_, _ = fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String()
}
