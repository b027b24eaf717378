// internal/cw/cw.go
package cw

import "github.com/ColonelBlimp/morsedecoder/internal/timing"

var defaultDecoder = &Decoder{
	config:     DefaultDecoderConfig(),
	classifier: mustClassifier(timing.DefaultOptions()),
}

func mustClassifier(opts timing.Options) *timing.Classifier {
	c, err := timing.NewClassifier(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// DecodeMorse decodes Morse text with the default configuration.
func DecodeMorse(morse string) (string, error) {
	return defaultDecoder.DecodeMorse(morse)
}

// DecodeBits decodes a consistent-rate bit string with the default configuration.
func DecodeBits(bits string) (string, error) {
	return defaultDecoder.DecodeBits(bits)
}

// DecodeBitsAdvanced decodes a bit string with drifting timing using the
// default configuration.
func DecodeBitsAdvanced(bits string) (string, error) {
	return defaultDecoder.DecodeBitsAdvanced(bits)
}
