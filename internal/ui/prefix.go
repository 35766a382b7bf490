package ui

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CurrentPrefix returns the word being typed at the end of input: the last
// whitespace-separated token, or "" when input is empty or ends in
// whitespace. This is the only text the completion core ever sees.
func CurrentPrefix(input string) string {
	if input == "" {
		return ""
	}
	last, _ := utf8.DecodeLastRuneInString(input)
	if unicode.IsSpace(last) {
		return ""
	}
	fields := strings.Fields(input)
	return fields[len(fields)-1]
}

// ReplaceCurrentWord replaces the word being typed with word and appends a
// space so the next word can start immediately.
func ReplaceCurrentWord(input string, word string) string {
	prefix := CurrentPrefix(input)
	return input[:len(input)-len(prefix)] + word + " "
}
