// internal/cw/table.go
// Package cw decodes Morse code and keyed bit signals into text.
package cw

import (
	"maps"
	"slices"
	"unicode"
	"unicode/utf8"
)

// Morse text separators
const (
	// CharSeparator separates characters within a word
	CharSeparator = " "
	// WordSeparator separates words
	WordSeparator = "   "
	// Dit and Dah are the element symbols of a Morse token
	Dit = '.'
	Dah = '-'
)

// Table maps Morse tokens to their text. It is never modified.
var Table = map[string]string{
	".-": "A", "-...": "B", "-.-.": "C", "-..": "D", ".": "E", "..-.": "F",
	"--.": "G", "....": "H", "..": "I", ".---": "J", "-.-": "K", ".-..": "L",
	"--": "M", "-.": "N", "---": "O", ".--.": "P", "--.-": "Q", ".-.": "R",
	"...": "S", "-": "T", "..-": "U", "...-": "V", ".--": "W", "-..-": "X",
	"-.--": "Y", "--..": "Z",

	"-----": "0", ".----": "1", "..---": "2", "...--": "3", "....-": "4",
	".....": "5", "-....": "6", "--...": "7", "---..": "8", "----.": "9",

	".-.-.-": ".", "--..--": ",", "..--..": "?", ".----.": "'", "-.-.--": "!",
	"-..-.": "/", "-.--.": "(", "-.--.-": ")", ".-...": "&", "---...": ":",
	"-.-.-.": ";", "-...-": "=", ".-.-.": "+", "-....-": "-", "..--.-": "_",
	".-..-.": "\"", "...-..-": "$", ".--.-.": "@",

	// distress prosign, sent without character gaps
	"...---...": "SOS",
}

// reverse maps single characters back to their token. Multi-character
// entries (prosigns) are not encodable from text.
var reverse = buildReverse()

// tokens lists every Morse token in lexical order, for deterministic
// suggestion lookups.
var tokens = slices.Sorted(maps.Keys(Table))

func buildReverse() map[rune]string {
	m := make(map[rune]string, len(Table))
	for token, text := range Table {
		if utf8.RuneCountInString(text) == 1 {
			r, _ := utf8.DecodeRuneInString(text)
			m[r] = token
		}
	}
	return m
}

// Lookup returns the text for a Morse token.
func Lookup(token string) (string, bool) {
	text, ok := Table[token]
	return text, ok
}

// Encode returns the Morse token for a character. Letters are case-insensitive.
func Encode(r rune) (string, bool) {
	token, ok := reverse[unicode.ToUpper(r)]
	return token, ok
}
