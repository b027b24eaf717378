// internal/dsp/goertzel.go
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBlockSize indicates block size must be positive
	ErrInvalidBlockSize = errors.New("block size must be positive")
	// ErrInvalidSampleRate indicates sample rate must be positive
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidFrequency indicates frequency must be positive and below Nyquist
	ErrInvalidFrequency = errors.New("target frequency must be positive and less than Nyquist frequency")
	// ErrInsufficientSamples indicates not enough samples for the configured block size
	ErrInsufficientSamples = errors.New("insufficient samples for block size")
)

// GoertzelConfig holds configuration for the Goertzel filter.
type GoertzelConfig struct {
	// TargetFrequency is the tone frequency in Hz (from config: tone_frequency)
	TargetFrequency float64
	// SampleRate is the audio sample rate in Hz (from config: sample_rate)
	SampleRate float64
	// BlockSize is the number of samples per window (from config: block_size)
	BlockSize int
}

// Goertzel measures the strength of a single frequency over a fixed window.
// It is cheaper than an FFT when only one bin is of interest.
type Goertzel struct {
	config      GoertzelConfig
	coefficient float64 // 2 * cos(omega)
	normalizer  float64 // 2 / BlockSize
}

// NewGoertzel creates a filter for the configured tone.
func NewGoertzel(cfg GoertzelConfig) (*Goertzel, error) {
	if cfg.BlockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.TargetFrequency <= 0 || cfg.TargetFrequency >= cfg.SampleRate/2 {
		return nil, ErrInvalidFrequency
	}

	omega := 2 * math.Pi * cfg.TargetFrequency / cfg.SampleRate
	return &Goertzel{
		config:      cfg,
		coefficient: 2 * math.Cos(omega),
		normalizer:  2 / float64(cfg.BlockSize),
	}, nil
}

// Magnitude returns the tone magnitude over the first BlockSize samples. A
// full-scale sine at the target frequency measures about 1.0.
func (g *Goertzel) Magnitude(samples []float32) (float64, error) {
	if len(samples) < g.config.BlockSize {
		return 0, ErrInsufficientSamples
	}
	return g.magnitude(samples[:g.config.BlockSize]), nil
}

func (g *Goertzel) magnitude(block []float32) float64 {
	var s1, s2 float64
	for _, x := range block {
		s0 := float64(x) + g.coefficient*s1 - s2
		s2, s1 = s1, s0
	}

	power := s1*s1 + s2*s2 - g.coefficient*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) * g.normalizer
}

// Config returns the filter configuration.
func (g *Goertzel) Config() GoertzelConfig {
	return g.config
}

// Coefficient returns 2*cos(omega)
func (g *Goertzel) Coefficient() float64 {
	return g.coefficient
}

// BlockSize returns the configured block size
func (g *Goertzel) BlockSize() int {
	return g.config.BlockSize
}
