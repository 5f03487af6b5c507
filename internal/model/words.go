package model

import (
	"strings"
	"unicode"
)

// IndexWord returns the index of the first occurrence of word in s, or -1.
// An ASCII word must sit on word boundaries so that "check" does not match
// "checkbox". Other words match as plain substrings.
func IndexWord(s, word string) int {
	if word == "" {
		return -1
	}
	if !isASCII(word) {
		return strings.Index(s, word)
	}
	from := 0
	for {
		idx := strings.Index(s[from:], word)
		if idx < 0 {
			return -1
		}
		idx += from
		if !wordByteAt(s, idx-1) && !wordByteAt(s, idx+len(word)) {
			return idx
		}
		from = idx + 1
	}
}

// ContainsWord reports whether s holds any of words, per IndexWord.
func ContainsWord(s string, words ...string) bool {
	for _, w := range words {
		if IndexWord(s, w) >= 0 {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func wordByteAt(s string, i int) bool {
	if i < 0 || i >= len(s) || s[i] >= 0x80 {
		return false
	}
	r := rune(s[i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
