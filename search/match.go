package search

import "unicode/utf8"

// Match reports whether the whole msg matches the query.
// It does not allocate.
func (q *WildcardQuery) Match(msg []byte) bool {
	p := q.pattern
	mi, pi := 0, 0
	starPi, starMi := -1, 0

	for mi < len(msg) {
		if pi < len(p) {
			switch e := p[pi]; e.kind {
			case elemAnyRun:
				starPi, starMi = pi, mi
				pi++

				continue
			case elemAnyOne:
				_, size := utf8.DecodeRune(msg[mi:])
				mi += size
				pi++

				continue
			default:
				if r, size := decodeRune(msg[mi:], q.caseSensitive); r == e.r {
					mi += size
					pi++

					continue
				}
			}
		}

		if starPi < 0 {
			return false
		}
		// Let the last '*' absorb one more character and retry.
		_, size := utf8.DecodeRune(msg[starMi:])
		starMi += size
		mi = starMi
		pi = starPi + 1
	}

	for pi < len(p) && p[pi].kind == elemAnyRun {
		pi++
	}

	return pi == len(p)
}

// MatchString is Match for a string message.
func (q *WildcardQuery) MatchString(msg string) bool {
	return q.Match([]byte(msg))
}

// MatchAny returns the index of the first query in queries that matches msg.
// An empty query set matches every message with index 0.
//
// Parameters:
//   - queries: Queries evaluated in order
//   - msg: Message text
//
// Returns:
//   - int: Index of the first matching query, or -1
//   - bool: true if a query matched
func MatchAny(queries []WildcardQuery, msg []byte) (int, bool) {
	if len(queries) == 0 {
		return 0, true
	}

	for i := range queries {
		if queries[i].Match(msg) {
			return i, true
		}
	}

	return -1, false
}
