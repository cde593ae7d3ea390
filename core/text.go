package core

import "strings"

// NormalizeKey returns the lowercased, whitespace-trimmed form of a title
// used for exact case-insensitive matching.
func NormalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Tokens splits a title into its normalized whitespace-delimited tokens.
func Tokens(text string) []string {
	return strings.Fields(NormalizeKey(text))
}

// ContainsToken reports whether word occurs in text as a whole token.
// Both sides are padded with boundary spaces before the substring test so a
// word never matches inside a longer token ("cat" must not match "category").
func ContainsToken(text, word string) bool {
	padded := " " + strings.Join(Tokens(text), " ") + " "
	return strings.Contains(padded, " "+NormalizeKey(word)+" ")
}
