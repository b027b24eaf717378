// internal/timing/class.go
// Package timing estimates the timing unit of a keyed signal and classifies
// its runs into Morse symbol classes.
package timing

import (
	"strings"

	"github.com/ColonelBlimp/morsedecoder/internal/signal"
)

// Morse code timing ratios (ITU standard)
const (
	// DitUnits is the length of a dit and of the space between elements
	DitUnits = 1
	// DahDitRatio is the ratio of dah duration to dit duration (ITU: 3:1)
	DahDitRatio = 3
	// InterCharSpaceRatio is the ratio of space between characters to dit (ITU: 3:1)
	InterCharSpaceRatio = 3
	// WordSpaceRatio is the ratio of space between words to dit (ITU: 7:1)
	WordSpaceRatio = 7
)

// Class is the symbol class of a single run.
type Class uint8

const (
	Dot Class = iota
	Dash
	LiteralGap
	CharGap
	WordGap
)

var classUnits = [...]int{
	Dot:        DitUnits,
	Dash:       DahDitRatio,
	LiteralGap: DitUnits,
	CharGap:    InterCharSpaceRatio,
	WordGap:    WordSpaceRatio,
}

var classNames = [...]string{
	Dot:        "dot",
	Dash:       "dash",
	LiteralGap: "literal-gap",
	CharGap:    "char-gap",
	WordGap:    "word-gap",
}

// Legal classes per run kind, ordered by length. Ties in nearest-multiple
// classification go to the earlier entry.
var (
	OnClasses  = []Class{Dot, Dash}
	OffClasses = []Class{LiteralGap, CharGap, WordGap}
)

// Units returns the class length in timing units.
func (c Class) Units() int {
	return classUnits[c]
}

// Kind returns the run kind the class applies to.
func (c Class) Kind() signal.Kind {
	if c == Dot || c == Dash {
		return signal.On
	}
	return signal.Off
}

// Token returns the canonical unit-length-1 representation of the class.
func (c Class) Token() string {
	return strings.Repeat(string(c.Kind().Symbol()), c.Units())
}

// Tier returns the duration tier the class belongs to.
func (c Class) Tier() Tier {
	switch c.Units() {
	case DitUnits:
		return Short
	case WordSpaceRatio:
		return Long
	default:
		return Medium
	}
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// ClassesFor returns the legal classes for a run kind.
func ClassesFor(k signal.Kind) []Class {
	if k == signal.On {
		return OnClasses
	}
	return OffClasses
}

// Tier is one of the three duration tiers (1x, 3x, 7x the unit).
type Tier uint8

const (
	Short Tier = iota
	Medium
	Long
	// TierCount is the number of tiers the adaptive classifier clusters into
	TierCount
)

var tierMultiples = [TierCount]float64{DitUnits, InterCharSpaceRatio, WordSpaceRatio}

// Multiple returns how many timing units the tier spans.
func (t Tier) Multiple() float64 {
	return tierMultiples[t]
}

func (t Tier) String() string {
	switch t {
	case Short:
		return "short"
	case Medium:
		return "medium"
	case Long:
		return "long"
	}
	return "unknown"
}

// ClassFor maps a tier to the class of a run of the given kind. An on run in
// the long tier is a dash.
func ClassFor(k signal.Kind, t Tier) Class {
	if k == signal.On {
		if t == Short {
			return Dot
		}
		return Dash
	}
	switch t {
	case Short:
		return LiteralGap
	case Medium:
		return CharGap
	default:
		return WordGap
	}
}
