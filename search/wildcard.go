package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type elemKind uint8

const (
	elemLiteral elemKind = iota
	elemAnyOne
	elemAnyRun
)

type patternElem struct {
	kind elemKind
	r    rune
}

// WildcardQuery is a cleaned wildcard query with its case sensitivity.
//
// The zero value is an empty query that only matches empty messages. Create queries with
// NewWildcardQuery.
type WildcardQuery struct {
	query         string
	caseSensitive bool
	pattern       []patternElem
}

// NewWildcardQuery creates a cleaned query.
//
// Cleaning collapses consecutive unescaped '*', drops a trailing unpaired '\' and drops the
// escape in front of any character other than '*', '?' and '\'.
//
// Parameters:
//   - query: Raw wildcard query
//   - caseSensitive: false to compare characters with simple Unicode case folding
//
// Returns:
//   - WildcardQuery: The cleaned query, ready for matching
func NewWildcardQuery(query string, caseSensitive bool) WildcardQuery {
	clean := cleanQuery(query)

	return WildcardQuery{
		query:         clean,
		caseSensitive: caseSensitive,
		pattern:       compile(clean, caseSensitive),
	}
}

// Query returns the cleaned query string.
func (q WildcardQuery) Query() string { return q.query }

// CaseSensitive reports whether the query is case-sensitive.
func (q WildcardQuery) CaseSensitive() bool { return q.caseSensitive }

func (q WildcardQuery) String() string {
	if q.caseSensitive {
		return q.query
	}

	return q.query + " (ignore case)"
}

func cleanQuery(query string) string {
	var sb strings.Builder
	sb.Grow(len(query))

	escaped := false
	prevStar := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if escaped {
			escaped = false
			if c == '*' || c == '?' || c == '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(c)
			prevStar = false

			continue
		}

		switch c {
		case '\\':
			escaped = true
		case '*':
			if !prevStar {
				sb.WriteByte('*')
			}
			prevStar = true

			continue
		default:
			sb.WriteByte(c)
		}
		prevStar = false
	}

	return sb.String()
}

func compile(clean string, caseSensitive bool) []patternElem {
	pattern := make([]patternElem, 0, len(clean))
	for i := 0; i < len(clean); {
		c := clean[i]
		switch {
		case c == '*':
			pattern = append(pattern, patternElem{kind: elemAnyRun})
			i++
		case c == '?':
			pattern = append(pattern, patternElem{kind: elemAnyOne})
			i++
		default:
			if c == '\\' {
				// Cleaned queries only escape '*', '?' and '\'.
				i++
				if i >= len(clean) {
					return pattern
				}
			}
			r, size := decodeRuneInString(clean[i:], caseSensitive)
			pattern = append(pattern, patternElem{kind: elemLiteral, r: r})
			i += size
		}
	}

	return pattern
}

// decodeRune decodes the first character of b. Invalid UTF-8 bytes are returned as negative
// values so they only ever match the same raw byte.
func decodeRune(b []byte, caseSensitive bool) (rune, int) {
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return -1 - rune(b[0]), 1
	}
	if !caseSensitive {
		r = foldRune(r)
	}

	return r, size
}

func decodeRuneInString(s string, caseSensitive bool) (rune, int) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return -1 - rune(s[0]), 1
	}
	if !caseSensitive {
		r = foldRune(r)
	}

	return r, size
}

// foldRune maps r to the smallest rune of its simple case folding orbit, so two runes are
// equal ignoring case exactly when their folded values are equal.
func foldRune(r rune) rune {
	if r < utf8.RuneSelf {
		if 'a' <= r && r <= 'z' {
			return r - ('a' - 'A')
		}

		return r
	}

	folded := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < folded {
			folded = f
		}
	}

	return folded
}
