package format

import "strings"

const (
	xExtra = "/-?:().,'+ "
	zExtra = xExtra + "=!\"%&*<>;{@#_"
)

func knownCharset(c byte) bool {
	return strings.IndexByte("nacdhexz", c) >= 0
}

func inCharset(charset, c byte) bool {
	isDigit := c >= '0' && c <= '9'
	isUpper := c >= 'A' && c <= 'Z'
	isLower := c >= 'a' && c <= 'z'

	switch charset {
	case 'n':
		return isDigit
	case 'a':
		return isUpper
	case 'c':
		return isDigit || isUpper
	case 'd':
		return isDigit || c == ',' || c == '.'
	case 'h':
		return isDigit || (c >= 'A' && c <= 'F')
	case 'e':
		return c == ' '
	case 'x':
		return isDigit || isUpper || isLower || strings.IndexByte(xExtra, c) >= 0
	case 'z':
		return isDigit || isUpper || isLower || strings.IndexByte(zExtra, c) >= 0
	}
	return false
}

// Conforms reports whether every character of s belongs to charset.
func Conforms(charset byte, s string) bool {
	for i := 0; i < len(s); i++ {
		if !inCharset(charset, s[i]) {
			return false
		}
	}
	return true
}
