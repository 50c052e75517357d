package message

// nonDelimiters are the bytes a variable token is made of. Every other byte separates tokens.
var nonDelimiters = func() (t [256]bool) {
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		t[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] = true
	}
	for _, c := range []byte{'+', '-', '.', '/', '\\', '_'} {
		t[c] = true
	}

	return t
}()

func isDelimiter(c byte) bool {
	return !nonDelimiters[c]
}

func isDecimalDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlphabet(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isHexDigit(c byte) bool {
	return isDecimalDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// nextVariable finds the next variable token of msg at or after pos.
//
// A token is a maximal run of non-delimiters. It is a variable when it contains a decimal
// digit, when it directly follows '=' and contains a letter, or when it is a hexadecimal run
// of at least two characters.
//
// Returns the token bounds, or begin == end == len(msg) when no variable remains.
func nextVariable(msg string, pos int) (begin int, end int) {
	n := len(msg)
	for pos < n {
		for pos < n && isDelimiter(msg[pos]) {
			pos++
		}
		if pos >= n {
			break
		}

		begin = pos
		hasDigit, hasAlpha, allHex := false, false, true
		for pos < n && !isDelimiter(msg[pos]) {
			c := msg[pos]
			hasDigit = hasDigit || isDecimalDigit(c)
			hasAlpha = hasAlpha || isAlphabet(c)
			allHex = allHex && isHexDigit(c)
			pos++
		}
		end = pos

		switch {
		case hasDigit:
			return begin, end
		case begin > 0 && msg[begin-1] == '=' && hasAlpha:
			return begin, end
		case allHex && end-begin >= 2:
			return begin, end
		}
	}

	return n, n
}
