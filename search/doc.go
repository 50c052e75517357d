// Package search provides the wildcard queries and timestamp intervals used to scan IR
// streams.
//
// A WildcardQuery supports two wildcards: '*' matches any run of characters, including
// an empty one, and '?' matches exactly one character. Either can be escaped with a preceding
// '\'. Other escaped characters are treated as plain characters. Characters are UTF-8 runes;
// bytes that are not valid UTF-8 are matched one byte at a time.
//
// Queries are cleaned when they are created, so Query always returns the canonical form:
//
//	q := search.NewWildcardQuery(`*fail**ed\`, false)
//	q.Query()              // "*fail*ed"
//	q.MatchString("FAILED") // true
package search
