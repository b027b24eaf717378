// internal/dsp/goertzel_test.go
package dsp

import (
	"errors"
	"math"
	"testing"
)

const (
	testSampleRate    = 8000.0
	testToneFrequency = 600.0
	testBlockSize     = 256
)

// generateSineWave creates a sine wave at the specified frequency
func generateSineWave(frequency, sampleRate float64, numSamples int, amplitude float32) []float32 {
	samples := make([]float32, numSamples)
	for i := range samples {
		samples[i] = amplitude * float32(math.Sin(2*math.Pi*frequency*float64(i)/sampleRate))
	}
	return samples
}

// generateNoise creates deterministic pseudo-random samples
func generateNoise(numSamples int, amplitude float32) []float32 {
	samples := make([]float32, numSamples)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i*7919))) * amplitude
	}
	return samples
}

func newTestGoertzel(t *testing.T, blockSize int) *Goertzel {
	t.Helper()
	g, err := NewGoertzel(GoertzelConfig{
		TargetFrequency: testToneFrequency,
		SampleRate:      testSampleRate,
		BlockSize:       blockSize,
	})
	if err != nil {
		t.Fatalf("NewGoertzel failed: %v", err)
	}
	return g
}

func TestNewGoertzel_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  GoertzelConfig
		want error
	}{
		{"zero block", GoertzelConfig{testToneFrequency, testSampleRate, 0}, ErrInvalidBlockSize},
		{"negative block", GoertzelConfig{testToneFrequency, testSampleRate, -1}, ErrInvalidBlockSize},
		{"zero sample rate", GoertzelConfig{testToneFrequency, 0, testBlockSize}, ErrInvalidSampleRate},
		{"zero frequency", GoertzelConfig{0, testSampleRate, testBlockSize}, ErrInvalidFrequency},
		{"at nyquist", GoertzelConfig{testSampleRate / 2, testSampleRate, testBlockSize}, ErrInvalidFrequency},
		{"above nyquist", GoertzelConfig{testSampleRate, testSampleRate, testBlockSize}, ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGoertzel(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewGoertzel() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGoertzel_Coefficient(t *testing.T) {
	g := newTestGoertzel(t, testBlockSize)

	want := 2 * math.Cos(2*math.Pi*testToneFrequency/testSampleRate)
	if math.Abs(g.Coefficient()-want) > 1e-12 {
		t.Errorf("Coefficient() = %v, want %v", g.Coefficient(), want)
	}
	if g.BlockSize() != testBlockSize || g.Config().SampleRate != testSampleRate {
		t.Errorf("Config() = %+v", g.Config())
	}
}

func TestGoertzel_Magnitude(t *testing.T) {
	g := newTestGoertzel(t, testBlockSize)

	tests := []struct {
		name    string
		samples []float32
		min     float64
		max     float64
	}{
		{"full scale tone", generateSineWave(testToneFrequency, testSampleRate, testBlockSize, 1), 0.9, 1.1},
		{"half scale tone", generateSineWave(testToneFrequency, testSampleRate, testBlockSize, 0.5), 0.45, 0.55},
		{"extra samples ignored", generateSineWave(testToneFrequency, testSampleRate, testBlockSize*2, 1), 0.9, 1.1},
		{"silence", make([]float32, testBlockSize), 0, 0.001},
		{"far off frequency", generateSineWave(2000, testSampleRate, testBlockSize, 1), 0, 0.2},
		{"noise", generateNoise(testBlockSize, 0.1), 0, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := g.Magnitude(tt.samples)
			if err != nil {
				t.Fatalf("Magnitude() error = %v", err)
			}
			if m < tt.min || m > tt.max {
				t.Errorf("Magnitude() = %v, want in [%v, %v]", m, tt.min, tt.max)
			}
		})
	}
}

func TestGoertzel_Magnitude_InsufficientSamples(t *testing.T) {
	g := newTestGoertzel(t, testBlockSize)

	_, err := g.Magnitude(make([]float32, testBlockSize-1))
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("Magnitude() error = %v, want %v", err, ErrInsufficientSamples)
	}
}

func BenchmarkGoertzel_Magnitude(b *testing.B) {
	g, _ := NewGoertzel(GoertzelConfig{
		TargetFrequency: testToneFrequency,
		SampleRate:      testSampleRate,
		BlockSize:       testBlockSize,
	})
	samples := generateSineWave(testToneFrequency, testSampleRate, testBlockSize, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.Magnitude(samples)
	}
}
