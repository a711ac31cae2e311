// Package textnorm applies light inverse-text-normalization: the decoder
// already reports whether SenseVoice's own ITN pass ran (via the <|withitn|>
// tag), so this package only adds sentence capitalization on top of
// whatever text comes out. Numeral conversion, punctuation restoration, and
// full ITN grammars are out of scope here; that normalization lives inside
// the model's own output and is not reimplemented in Go.
package textnorm

import "strings"

// Capitalize uppercases the first ASCII letter of text, leaving the rest
// unchanged; non-ASCII letters before it are skipped over. Empty input is
// returned unchanged.
func Capitalize(text string) string {
	if text == "" {
		return text
	}
	runes := []rune(text)
	for i, r := range runes {
		if r >= 'a' && r <= 'z' {
			runes[i] = r - ('a' - 'A')
			return string(runes)
		}
		if r >= 'A' && r <= 'Z' {
			return string(runes)
		}
	}
	return string(runes)
}

// Apply runs the available normalization steps: trims surrounding
// whitespace and capitalizes the first letter.
func Apply(text string) string {
	return Capitalize(strings.TrimSpace(text))
}
