// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"github.com/womat/debug"

	"github.com/ColonelBlimp/morsedecoder/internal/audio"
	"github.com/ColonelBlimp/morsedecoder/internal/cw"
	"github.com/ColonelBlimp/morsedecoder/internal/dsp"
	"github.com/ColonelBlimp/morsedecoder/internal/timing"
)

const (
	AppName       = "morsedecoder"
	ConfigType    = "yaml"
	DefaultConfig = `# Morse Decoder Configuration

# Decoding
placeholder: "?"          # Written in place of unknown Morse characters
kmeans_trials: 21         # k-means++ initializations per signal
kmeans_iterations: 300    # Lloyd iterations per initialization
kmeans_seed: 1            # Seed for the initializations (same seed, same result)
boundary_correction: true # Re-tier run lengths by their nearest unit multiple

# Audio device settings
device_index: -1          # -1 for default device
sample_rate: 48000        # Audio sample rate in Hz
channels: 1               # Number of channels (1=mono)
buffer_size: 512          # Frames per capture callback
record_seconds: 10        # Length of a take for the listen command

# Tone detection
tone_frequency: 600       # CW tone frequency in Hz
block_size: 256           # Goertzel block size (samples per detection window)
overlap_pct: 0            # Block overlap percentage (0-99)
threshold: 0.5            # Fraction of the loudest block that counts as tone (0.0-1.0)
hysteresis: 2             # Consecutive blocks required to confirm a state change

# Encoding
wpm: 20                   # Sending speed for generated audio

# Logging
log_level: "standard"     # standard, debug or trace
log_file: "stderr"        # stderr, stdout or a file path
`
)

// Log levels accepted by log_level
const (
	LogStandard = "standard"
	LogDebug    = "debug"
	LogTrace    = "trace"
)

// Settings holds all application configuration
type Settings struct {
	// Decoding
	Placeholder        string `mapstructure:"placeholder"`
	KMeansTrials       int    `mapstructure:"kmeans_trials"`
	KMeansIterations   int    `mapstructure:"kmeans_iterations"`
	KMeansSeed         uint64 `mapstructure:"kmeans_seed"`
	BoundaryCorrection bool   `mapstructure:"boundary_correction"`

	// Audio device settings
	DeviceIndex   int     `mapstructure:"device_index"`
	SampleRate    float64 `mapstructure:"sample_rate"`
	Channels      int     `mapstructure:"channels"`
	BufferSize    int     `mapstructure:"buffer_size"`
	RecordSeconds float64 `mapstructure:"record_seconds"`

	// Tone detection
	ToneFrequency float64 `mapstructure:"tone_frequency"`
	BlockSize     int     `mapstructure:"block_size"`
	OverlapPct    int     `mapstructure:"overlap_pct"`
	Threshold     float64 `mapstructure:"threshold"`
	Hysteresis    int     `mapstructure:"hysteresis"`

	// Encoding
	WPM int `mapstructure:"wpm"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/morsedecoder/
func Init() error {
	viper.SetDefault("placeholder", cw.DefaultPlaceholder)
	viper.SetDefault("kmeans_trials", timing.DefaultTrials)
	viper.SetDefault("kmeans_iterations", timing.DefaultMaxIterations)
	viper.SetDefault("kmeans_seed", timing.DefaultSeed)
	viper.SetDefault("boundary_correction", true)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("sample_rate", 48000)
	viper.SetDefault("channels", 1)
	viper.SetDefault("buffer_size", 512)
	viper.SetDefault("record_seconds", 10)
	viper.SetDefault("tone_frequency", 600)
	viper.SetDefault("block_size", 256)
	viper.SetDefault("overlap_pct", 0)
	viper.SetDefault("threshold", 0.5)
	viper.SetDefault("hysteresis", 2)
	viper.SetDefault("wpm", 20)
	viper.SetDefault("log_level", LogStandard)
	viper.SetDefault("log_file", "stderr")

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// .config.yaml (hidden) wins over config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(filepath.Join(configDir, AppName)); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Decoding
	if s.Placeholder == "" {
		errs = append(errs, errors.New("placeholder must not be empty"))
	}
	if s.KMeansTrials < 1 || s.KMeansTrials > 1000 {
		errs = append(errs, fmt.Errorf("kmeans_trials must be between 1 and 1000, got %d", s.KMeansTrials))
	}
	if s.KMeansIterations < 1 || s.KMeansIterations > 10000 {
		errs = append(errs, fmt.Errorf("kmeans_iterations must be between 1 and 10000, got %d", s.KMeansIterations))
	}

	// Audio device settings
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %v", s.SampleRate))
	}
	if s.Channels < 1 || s.Channels > 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", s.Channels))
	}
	if s.BufferSize < 64 || s.BufferSize > 8192 {
		errs = append(errs, fmt.Errorf("buffer_size must be between 64 and 8192, got %d", s.BufferSize))
	}
	if s.BufferSize&(s.BufferSize-1) != 0 {
		errs = append(errs, fmt.Errorf("buffer_size should be a power of 2, got %d", s.BufferSize))
	}
	if s.RecordSeconds <= 0 || s.RecordSeconds > 3600 {
		errs = append(errs, fmt.Errorf("record_seconds must be between 0 and 3600, got %v", s.RecordSeconds))
	}

	// Tone detection
	if s.ToneFrequency < 100 || s.ToneFrequency > 3000 {
		errs = append(errs, fmt.Errorf("tone_frequency must be between 100 and 3000 Hz, got %v", s.ToneFrequency))
	}
	if s.BlockSize < 32 || s.BlockSize > 4096 {
		errs = append(errs, fmt.Errorf("block_size must be between 32 and 4096, got %d", s.BlockSize))
	}
	if s.BlockSize&(s.BlockSize-1) != 0 {
		errs = append(errs, fmt.Errorf("block_size should be a power of 2, got %d", s.BlockSize))
	}
	if s.OverlapPct < 0 || s.OverlapPct > 99 {
		errs = append(errs, fmt.Errorf("overlap_pct must be between 0 and 99, got %d", s.OverlapPct))
	}
	if s.Threshold < 0.0 || s.Threshold > 1.0 {
		errs = append(errs, fmt.Errorf("threshold must be between 0.0 and 1.0, got %v", s.Threshold))
	}
	if s.Hysteresis < 0 || s.Hysteresis > 50 {
		errs = append(errs, fmt.Errorf("hysteresis must be between 0 and 50, got %d", s.Hysteresis))
	}

	// Encoding
	if s.WPM < 5 || s.WPM > 60 {
		errs = append(errs, fmt.Errorf("wpm must be between 5 and 60, got %d", s.WPM))
	}

	// Logging
	switch s.LogLevel {
	case LogStandard, LogDebug, LogTrace:
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of standard, debug, trace, got %q", s.LogLevel))
	}
	if s.LogFile == "" {
		errs = append(errs, errors.New("log_file must not be empty"))
	}

	// Nyquist check: tone frequency must be less than half the sample rate
	if s.ToneFrequency >= s.SampleRate/2 {
		errs = append(errs, fmt.Errorf("tone_frequency (%v Hz) must be less than Nyquist frequency (%v Hz)", s.ToneFrequency, s.SampleRate/2))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DecoderConfig returns the decoder configuration
func (s *Settings) DecoderConfig() cw.DecoderConfig {
	return cw.DecoderConfig{
		Placeholder: s.Placeholder,
		Classifier: timing.Options{
			Trials:             s.KMeansTrials,
			MaxIterations:      s.KMeansIterations,
			Seed:               s.KMeansSeed,
			BoundaryCorrection: s.BoundaryCorrection,
		},
	}
}

// AudioConfig returns the capture configuration
func (s *Settings) AudioConfig() audio.Config {
	return audio.Config{
		DeviceIndex: s.DeviceIndex,
		SampleRate:  uint32(s.SampleRate),
		Channels:    uint32(s.Channels),
		BufferSize:  uint32(s.BufferSize),
	}
}

// GoertzelConfig returns the tone filter configuration for audio sampled at
// sampleRate Hz. A WAV file may not use the configured sample_rate.
func (s *Settings) GoertzelConfig(sampleRate float64) dsp.GoertzelConfig {
	return dsp.GoertzelConfig{
		TargetFrequency: s.ToneFrequency,
		SampleRate:      sampleRate,
		BlockSize:       s.BlockSize,
	}
}

// KeyerConfig returns the keyer configuration
func (s *Settings) KeyerConfig() dsp.KeyerConfig {
	return dsp.KeyerConfig{
		Threshold:  s.Threshold,
		Hysteresis: s.Hysteresis,
		OverlapPct: s.OverlapPct,
	}
}

// ToneConfig returns the synthesizer configuration for one bit per dit at
// the configured speed. A dit lasts 1.2/wpm seconds (PARIS timing).
func (s *Settings) ToneConfig() dsp.ToneConfig {
	return dsp.ToneConfig{
		Frequency:     s.ToneFrequency,
		SampleRate:    s.SampleRate,
		SamplesPerBit: int(math.Round(s.SampleRate * 1.2 / float64(s.WPM))),
		Amplitude:     0.8,
	}
}

// RecordDuration returns the length of one take
func (s *Settings) RecordDuration() time.Duration {
	return time.Duration(s.RecordSeconds * float64(time.Second))
}

// LogFlag maps log_level to debug logger flags
func (s *Settings) LogFlag() int {
	switch s.LogLevel {
	case LogTrace:
		return debug.Full
	case LogDebug:
		return debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	default:
		return debug.Standard
	}
}

// OpenLog opens the log_file destination. Closing stderr or stdout is a no-op.
func (s *Settings) OpenLog() (io.WriteCloser, error) {
	switch s.LogFile {
	case "stderr":
		return nopCloser{os.Stderr}, nil
	case "stdout":
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.OpenFile(s.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
