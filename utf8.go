package bitio

import (
	"errors"
	"unicode/utf8"
)

// trimAndValidate implements the fixed-length half of read_string: trim
// trailing NUL padding, then validate what remains is well-formed UTF-8.
func trimAndValidate(raw []byte, bytesAttempted int) (string, error) {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return validateUTF8WithLen(raw[:end], bytesAttempted)
}

func validateUTF8(raw []byte) (string, error) {
	return validateUTF8WithLen(raw, len(raw))
}

func validateUTF8WithLen(raw []byte, bytesAttempted int) (string, error) {
	if !utf8.Valid(raw) {
		return "", errUTF8(errInvalidUTF8Encoding, bytesAttempted)
	}
	return string(raw), nil
}

// validPrefixLen returns the length, in bytes, of the longest prefix of raw
// that is valid UTF-8 — used to trim a string read back to a sub-stream's
// boundary (the ToOwned-adjacent trimming behavior carried over from
// read_string's sub-stream-boundary carveout).
func validPrefixLen(raw []byte) int {
	n := 0
	for n < len(raw) {
		r, size := utf8.DecodeRune(raw[n:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		n += size
	}
	return n
}

var errInvalidUTF8Encoding = errors.New("bitio: invalid utf-8 encoding")
