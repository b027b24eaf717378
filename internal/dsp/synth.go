// internal/dsp/synth.go
package dsp

import (
	"errors"
	"math"
)

// ErrInvalidBitSamples indicates samples per bit must be positive
var ErrInvalidBitSamples = errors.New("samples per bit must be positive")

// ToneConfig describes how a keyed bit string is rendered as audio.
type ToneConfig struct {
	// Frequency is the tone frequency in Hz (from config: tone_frequency)
	Frequency float64
	// SampleRate is the output sample rate in Hz (from config: sample_rate)
	SampleRate float64
	// SamplesPerBit is the duration of one bit in samples
	SamplesPerBit int
	// Amplitude is the peak level, 0.0-1.0
	Amplitude float32
}

// Synthesize renders bits as a phase-continuous sine tone keyed on every '1'
// and silence elsewhere. Characters other than '0' and '1' are skipped.
func Synthesize(bits string, cfg ToneConfig) ([]float32, error) {
	if cfg.SamplesPerBit <= 0 {
		return nil, ErrInvalidBitSamples
	}
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.Frequency <= 0 || cfg.Frequency >= cfg.SampleRate/2 {
		return nil, ErrInvalidFrequency
	}

	omega := 2 * math.Pi * cfg.Frequency / cfg.SampleRate
	samples := make([]float32, 0, len(bits)*cfg.SamplesPerBit)
	for _, b := range bits {
		if b != '0' && b != '1' {
			continue
		}
		for range cfg.SamplesPerBit {
			var s float32
			if b == '1' {
				s = cfg.Amplitude * float32(math.Sin(omega*float64(len(samples))))
			}
			samples = append(samples, s)
		}
	}
	return samples, nil
}
