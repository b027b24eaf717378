// internal/cw/decoder.go
package cw

import (
	"errors"
	"fmt"
	"strings"

	"github.com/womat/debug"

	"github.com/ColonelBlimp/morsedecoder/internal/signal"
	"github.com/ColonelBlimp/morsedecoder/internal/timing"
)

// DefaultPlaceholder replaces characters that could not be decoded
const DefaultPlaceholder = "?"

// AmbiguousPattern is the cleaned signal that reads equally well as "I" and
// "EE". It always decodes as EE.
const AmbiguousPattern = "1001"

// ambiguousClasses is the fixed reading of AmbiguousPattern: E, char gap, E.
var ambiguousClasses = []timing.Class{timing.Dot, timing.CharGap, timing.Dot}

// DecoderConfig holds configuration for the decoder.
type DecoderConfig struct {
	// Placeholder is written in place of undecodable characters (from config: placeholder)
	Placeholder string
	// Classifier configures adaptive timing classification
	Classifier timing.Options
}

// DefaultDecoderConfig returns the configuration used by the package-level functions.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Placeholder: DefaultPlaceholder,
		Classifier:  timing.DefaultOptions(),
	}
}

// Decoder decodes Morse text and keyed bit strings. It holds no mutable
// state and is safe for concurrent use.
type Decoder struct {
	config     DecoderConfig
	classifier *timing.Classifier
}

// NewDecoder creates a new decoder with the given configuration.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	classifier, err := timing.NewClassifier(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	return &Decoder{config: cfg, classifier: classifier}, nil
}

// Config returns the decoder configuration.
func (d *Decoder) Config() DecoderConfig {
	return d.config
}

// Analysis captures every intermediate stage of decoding a bit string.
type Analysis struct {
	// Cleaned is the signal with noise and idle edges removed
	Cleaned string
	// Runs is the run-length encoding of Cleaned
	Runs signal.Runs
	// Classification holds the per-run classes and the timing unit
	Classification timing.Classification
	// Override is true when the fixed I/EE reading was applied
	Override bool
	// Canonical is the unit-normalized token stream
	Canonical string
	// Morse is the canonical stream written as dots, dashes and spaces
	Morse string
}

// DecodeMorse decodes Morse text. Characters are separated by one space and
// words by three; anything other than dots, dashes and spaces is ignored.
// Unknown tokens are replaced by the placeholder and reported in the returned
// error, which joins one *UnknownSymbolError per token.
func (d *Decoder) DecodeMorse(morse string) (string, error) {
	cleaned := signal.CleanMorse(morse)
	if cleaned == "" {
		return "", nil
	}

	var errs []error
	words := strings.Split(cleaned, WordSeparator)
	decoded := make([]string, 0, len(words))
	for _, word := range words {
		var b strings.Builder
		for _, token := range strings.Split(word, CharSeparator) {
			text, ok := Lookup(token)
			if !ok {
				errs = append(errs, newUnknownSymbolError(token))
				text = d.config.Placeholder
			}
			b.WriteString(text)
		}
		decoded = append(decoded, b.String())
	}

	return strings.TrimSpace(strings.Join(decoded, " ")), errors.Join(errs...)
}

// DecodeBits decodes a bit string sent at one consistent rate. The unit is
// the shortest run; every run is rounded to its nearest legal length.
func (d *Decoder) DecodeBits(bits string) (string, error) {
	cleaned := signal.Clean(bits)
	if cleaned == "" {
		return "", nil
	}
	runs := signal.Tokenize(cleaned)
	classification := timing.Baseline(runs)
	return d.decodeCanonical(timing.Reconstruct(runs, classification.Classes))
}

// DecodeBitsAdvanced decodes a bit string whose timing may drift, as when
// keyed by hand.
func (d *Decoder) DecodeBitsAdvanced(bits string) (string, error) {
	a, err := d.Analyze(bits)
	if err != nil {
		return "", err
	}
	if a.Morse == "" {
		return "", nil
	}
	return d.DecodeMorse(a.Morse)
}

// Analyze runs the adaptive pipeline up to the Morse text and returns every
// intermediate result.
func (d *Decoder) Analyze(bits string) (Analysis, error) {
	a := Analysis{Cleaned: signal.Clean(bits)}
	if a.Cleaned == "" {
		return a, nil
	}
	a.Runs = signal.Tokenize(a.Cleaned)

	if a.Cleaned == AmbiguousPattern {
		a.Override = true
		a.Classification = timing.Classification{
			Strategy: timing.StrategyBaseline,
			Unit:     1,
			Classes:  ambiguousClasses,
		}
		debug.DebugLog.Printf("signal %q read as EE", a.Cleaned)
	} else {
		classification, err := d.classifier.Classify(a.Runs)
		if err != nil {
			return a, err
		}
		a.Classification = classification
	}

	a.Canonical = timing.Reconstruct(a.Runs, a.Classification.Classes)
	morse, err := CanonicalToMorse(a.Canonical)
	if err != nil {
		return a, err
	}
	a.Morse = morse
	return a, nil
}

// decodeCanonical decodes a canonical token stream into text.
func (d *Decoder) decodeCanonical(canonical string) (string, error) {
	morse, err := CanonicalToMorse(canonical)
	if err != nil {
		return "", err
	}
	return d.DecodeMorse(morse)
}

// CanonicalToMorse rewrites a canonical token stream (unit length 1) as Morse
// text: word gaps become three spaces, char gaps one space, literal gaps vanish.
func CanonicalToMorse(canonical string) (string, error) {
	if canonical == "" {
		return "", nil
	}

	words := strings.Split(canonical, timing.WordGap.Token())
	morseWords := make([]string, 0, len(words))
	for _, word := range words {
		chars := strings.Split(word, timing.CharGap.Token())
		morseChars := make([]string, 0, len(chars))
		for _, char := range chars {
			var b strings.Builder
			for _, element := range strings.Split(char, timing.LiteralGap.Token()) {
				switch element {
				case timing.Dot.Token():
					b.WriteByte(Dit)
				case timing.Dash.Token():
					b.WriteByte(Dah)
				default:
					return "", fmt.Errorf("%w %q", ErrMalformedElement, element)
				}
			}
			morseChars = append(morseChars, b.String())
		}
		morseWords = append(morseWords, strings.Join(morseChars, CharSeparator))
	}
	return strings.Join(morseWords, WordSeparator), nil
}
