// internal/dsp/keyer.go
package dsp

import (
	"errors"
	"strings"

	"github.com/womat/debug"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidThreshold indicates threshold must be between 0 and 1
	ErrInvalidThreshold = errors.New("threshold must be between 0.0 and 1.0")
	// ErrInvalidHysteresis indicates hysteresis must be non-negative
	ErrInvalidHysteresis = errors.New("hysteresis must be non-negative")
	// ErrInvalidOverlap indicates overlap percentage must be 0-99
	ErrInvalidOverlap = errors.New("overlap percentage must be between 0 and 99")
	// ErrGoertzelRequired indicates Goertzel instance is required
	ErrGoertzelRequired = errors.New("goertzel instance is required")
)

// silenceFloor is the peak magnitude below which a take is treated as silent
const silenceFloor = 1e-4

// KeyerConfig holds configuration for turning audio into a keyed bit string.
type KeyerConfig struct {
	// Threshold is the fraction of the peak magnitude above which the tone
	// counts as present, 0.0-1.0 (from config: threshold)
	Threshold float64
	// Hysteresis is the number of consecutive blocks needed to confirm a
	// state change (from config: hysteresis)
	Hysteresis int
	// OverlapPct is the block overlap percentage 0-99 (from config: overlap_pct)
	OverlapPct int
}

// Keyer converts a complete audio take into a bit string with one bit per
// hop: '1' while the tone is keyed, '0' otherwise.
type Keyer struct {
	config   KeyerConfig
	goertzel *Goertzel
	hop      int
}

// NewKeyer creates a keyer measuring the tone with g.
func NewKeyer(cfg KeyerConfig, g *Goertzel) (*Keyer, error) {
	if g == nil {
		return nil, ErrGoertzelRequired
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, ErrInvalidThreshold
	}
	if cfg.Hysteresis < 0 {
		return nil, ErrInvalidHysteresis
	}
	if cfg.OverlapPct < 0 || cfg.OverlapPct >= 100 {
		return nil, ErrInvalidOverlap
	}

	block := g.BlockSize()
	hop := block - block*cfg.OverlapPct/100
	if hop < 1 {
		hop = 1
	}
	return &Keyer{config: cfg, goertzel: g, hop: hop}, nil
}

// Hop returns the number of samples between successive bits.
func (k *Keyer) Hop() int {
	return k.hop
}

// Config returns the keyer configuration.
func (k *Keyer) Config() KeyerConfig {
	return k.config
}

// Envelope returns the tone magnitude of every complete block, advancing by
// Hop samples. Trailing samples that do not fill a block are ignored.
func (k *Keyer) Envelope(samples []float32) []float64 {
	block := k.goertzel.BlockSize()
	if len(samples) < block {
		return nil
	}
	env := make([]float64, 0, (len(samples)-block)/k.hop+1)
	for start := 0; start+block <= len(samples); start += k.hop {
		env = append(env, k.goertzel.magnitude(samples[start:start+block]))
	}
	return env
}

// Key thresholds the envelope against the peak magnitude of the take and
// debounces it. A confirmed change is backdated to the block where it began,
// so hysteresis does not shorten runs. A silent take keys as all zeros.
func (k *Keyer) Key(samples []float32) (string, error) {
	env := k.Envelope(samples)
	if len(env) == 0 {
		return "", ErrInsufficientSamples
	}

	peak := floats.Max(env)
	debug.DebugLog.Printf("keyer: %d blocks, hop %d, peak magnitude %.4f", len(env), k.hop, peak)
	if peak < silenceFloor {
		return strings.Repeat("0", len(env)), nil
	}

	confirm := max(k.config.Hysteresis, 1)
	bits := make([]byte, len(env))
	state := false
	pending := 0
	for i, m := range env {
		present := m/peak > k.config.Threshold
		if present == state {
			pending = 0
		} else {
			pending++
			if pending >= confirm {
				state = present
				for j := i - pending + 1; j < i; j++ {
					bits[j] = bitFor(state)
				}
				pending = 0
			}
		}
		bits[i] = bitFor(state)
	}
	return string(bits), nil
}

func bitFor(on bool) byte {
	if on {
		return '1'
	}
	return '0'
}
