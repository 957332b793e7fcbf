// Package labels derives human readable labels from property names.
package labels

import (
	"regexp"
	"strings"
	"unicode"
)

var separators = regexp.MustCompile(`[_\-.\s]+`)

// FromName turns a property name into a label: "firstName" and "first_name"
// both become "First name".
func FromName(name string) string {
	var words []string
	for _, chunk := range separators.Split(name, -1) {
		words = append(words, splitCamel(chunk)...)
	}
	if len(words) == 0 {
		return ""
	}
	for i, word := range words {
		if i > 0 && !isAcronym(word) {
			words[i] = strings.ToLower(word)
		}
	}
	first := []rune(words[0])
	first[0] = unicode.ToUpper(first[0])
	words[0] = string(first)
	return strings.Join(words, " ")
}

func splitCamel(input string) []string {
	runes := []rune(input)
	var out []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if boundary(runes, i) {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

// boundary reports a word break before runes[i]. Runs of capitals stay
// together so "HTTPServer" splits into "HTTP" and "Server".
func boundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(cur), unicode.IsDigit(prev) && unicode.IsLetter(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
		return true
	}
	return false
}

func isAcronym(word string) bool {
	if len(word) < 2 {
		return false
	}
	for _, r := range word {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
