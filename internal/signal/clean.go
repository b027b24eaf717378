// internal/signal/clean.go
// Package signal turns raw keyed input into runs of identical state.
package signal

import "strings"

// Signal alphabet for bit strings
const (
	// OnSymbol marks a keyed (tone present) sample
	OnSymbol = '1'
	// OffSymbol marks an idle sample
	OffSymbol = '0'
)

// Morse text alphabet
const (
	DotSymbol   = '.'
	DashSymbol  = '-'
	SpaceSymbol = ' '
)

// Clean removes every character that is not OnSymbol or OffSymbol and strips
// leading and trailing idle time. Returns "" if no OnSymbol is present.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c == OnSymbol || c == OffSymbol {
			b.WriteByte(c)
		}
	}
	return strings.Trim(b.String(), string(OffSymbol))
}

// CleanMorse keeps only dots, dashes and spaces and trims surrounding spaces.
func CleanMorse(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; c {
		case DotSymbol, DashSymbol, SpaceSymbol:
			b.WriteByte(c)
		}
	}
	return strings.Trim(b.String(), string(SpaceSymbol))
}
