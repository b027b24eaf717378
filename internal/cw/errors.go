// internal/cw/errors.go
package cw

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

var (
	// ErrUnknownSymbol indicates a Morse token has no entry in the table
	ErrUnknownSymbol = errors.New("unknown morse symbol")
	// ErrMalformedElement indicates a canonical on run that is neither a dit nor a dah
	ErrMalformedElement = errors.New("malformed morse element")
	// ErrUnencodable indicates a character has no Morse encoding
	ErrUnencodable = errors.New("character has no morse encoding")
	// ErrInvalidUnit indicates the encoding unit must be positive
	ErrInvalidUnit = errors.New("unit must be positive")
)

// UnknownSymbolError reports a Morse token that could not be decoded.
type UnknownSymbolError struct {
	// Token is the offending dot/dash group
	Token string
	// Suggestion is the closest known token by edit distance
	Suggestion string
}

func (e *UnknownSymbolError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("%v %q", ErrUnknownSymbol, e.Token)
	}
	return fmt.Sprintf("%v %q (closest %q = %s)", ErrUnknownSymbol, e.Token, e.Suggestion, Table[e.Suggestion])
}

func (e *UnknownSymbolError) Unwrap() error {
	return ErrUnknownSymbol
}

func newUnknownSymbolError(token string) *UnknownSymbolError {
	return &UnknownSymbolError{Token: token, Suggestion: suggest(token)}
}

// suggest returns the known token with the smallest edit distance, first in
// lexical order on ties. Empty tokens get no suggestion.
func suggest(token string) string {
	if token == "" {
		return ""
	}
	best := ""
	bestDist := -1
	for _, candidate := range tokens {
		d := levenshtein.ComputeDistance(token, candidate)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
