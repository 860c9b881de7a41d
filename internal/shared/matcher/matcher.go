// Package matcher translates user supplied wildcard filters (* and ?) into
// SQL LIKE patterns and evaluates those patterns in memory.
package matcher

import (
	"strings"
	"unicode"
)

// EscapeChar is the LIKE escape character used by every pattern produced
// by Sanitize. It is also escaped itself.
const EscapeChar = '!'

// Sanitize converts a wildcard filter into a LIKE pattern using EscapeChar.
//
// '*' becomes '%' and '?' becomes '_'. Literal '%', '_' and '!' are escaped.
// A backslash escapes the following '*' or '?' so it is matched literally,
// and a doubled backslash yields one literal backslash. A trailing lone
// backslash is dropped.
func Sanitize(filter string) string {
	var b strings.Builder
	b.Grow(len(filter) + 4)
	escaped := false

	for _, c := range filter {
		switch c {
		case EscapeChar, '_', '%':
			b.WriteRune(EscapeChar)
			b.WriteRune(c)

		case '\\':
			if escaped {
				b.WriteRune(c)
			}
			escaped = !escaped

		case '*', '?':
			if !escaped {
				if c == '*' {
					b.WriteByte('%')
				} else {
					b.WriteByte('_')
				}
				continue
			}
			b.WriteRune(c)
			escaped = false

		default:
			b.WriteRune(c)
			escaped = false
		}
	}

	return b.String()
}

// Like returns the case-insensitive SQL predicate for column against a
// sanitized pattern bound as the single argument.
func Like(column string) string {
	return "LOWER(" + column + ") LIKE LOWER(?) ESCAPE '" + string(EscapeChar) + "'"
}

type tokenKind uint8

const (
	tokenLiteral tokenKind = iota
	tokenAnyOne
	tokenAnyRun
)

type token struct {
	kind tokenKind
	r    rune
}

func compile(pattern string) []token {
	runes := []rune(pattern)
	tokens := make([]token, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; {
		case c == EscapeChar && i+1 < len(runes):
			i++
			tokens = append(tokens, token{kind: tokenLiteral, r: unicode.ToLower(runes[i])})
		case c == '%':
			tokens = append(tokens, token{kind: tokenAnyRun})
		case c == '_':
			tokens = append(tokens, token{kind: tokenAnyOne})
		default:
			tokens = append(tokens, token{kind: tokenLiteral, r: unicode.ToLower(c)})
		}
	}
	return tokens
}

// Match reports whether value matches a LIKE pattern produced by Sanitize,
// ignoring case, with the same semantics as the SQL predicate from Like.
func Match(pattern, value string) bool {
	tokens := compile(pattern)
	text := []rune(strings.ToLower(value))

	// prev[j]: tokens[:i] matches text[:j]
	prev := make([]bool, len(text)+1)
	curr := make([]bool, len(text)+1)
	prev[0] = true

	for _, tk := range tokens {
		curr[0] = prev[0] && tk.kind == tokenAnyRun
		for j := 1; j <= len(text); j++ {
			switch tk.kind {
			case tokenAnyRun:
				curr[j] = prev[j] || curr[j-1]
			case tokenAnyOne:
				curr[j] = prev[j-1]
			default:
				curr[j] = prev[j-1] && text[j-1] == tk.r
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(text)]
}

// MatchFilter sanitizes a raw wildcard filter and matches it against value.
func MatchFilter(filter, value string) bool {
	return Match(Sanitize(filter), value)
}
