// internal/cw/encoder.go
package cw

import (
	"fmt"
	"strings"

	"github.com/ColonelBlimp/morsedecoder/internal/timing"
)

// EncodeMorse writes text as Morse: one space between characters, three
// between words. Words are split on any whitespace.
func EncodeMorse(text string) (string, error) {
	words := strings.Fields(text)
	morseWords := make([]string, 0, len(words))
	for _, word := range words {
		chars := make([]string, 0, len(word))
		for _, r := range word {
			token, ok := Encode(r)
			if !ok {
				return "", fmt.Errorf("%w: %q", ErrUnencodable, r)
			}
			chars = append(chars, token)
		}
		morseWords = append(morseWords, strings.Join(chars, CharSeparator))
	}
	return strings.Join(morseWords, WordSeparator), nil
}

// EncodeBits keys text as a bit string with unit samples per dit.
func EncodeBits(text string, unit int) (string, error) {
	if unit <= 0 {
		return "", ErrInvalidUnit
	}
	morse, err := EncodeMorse(text)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, word := range strings.Split(morse, WordSeparator) {
		if word == "" {
			continue
		}
		if i > 0 {
			b.WriteString(timing.WordGap.Token())
		}
		for j, token := range strings.Split(word, CharSeparator) {
			if j > 0 {
				b.WriteString(timing.CharGap.Token())
			}
			for k := 0; k < len(token); k++ {
				if k > 0 {
					b.WriteString(timing.LiteralGap.Token())
				}
				if token[k] == Dah {
					b.WriteString(timing.Dash.Token())
				} else {
					b.WriteString(timing.Dot.Token())
				}
			}
		}
	}
	return scale(b.String(), unit), nil
}

// scale repeats every symbol of a canonical stream unit times.
func scale(canonical string, unit int) string {
	var b strings.Builder
	b.Grow(len(canonical) * unit)
	for i := 0; i < len(canonical); i++ {
		for range unit {
			b.WriteByte(canonical[i])
		}
	}
	return b.String()
}
