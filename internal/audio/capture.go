// internal/audio/capture.go
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/womat/debug"
)

var (
	ErrNotInitialized  = errors.New("audio capture not initialized")
	ErrAlreadyRunning  = errors.New("audio capture already running")
	ErrInvalidDuration = errors.New("record duration must be positive")
	ErrInvalidChannels = errors.New("channel count must be positive")
)

// Config holds audio capture configuration
type Config struct {
	DeviceIndex int    // -1 for default device
	SampleRate  uint32 // e.g., 48000
	Channels    uint32 // 1 for mono, 2 for stereo
	BufferSize  uint32 // frames per callback
}

// DefaultConfig returns sensible defaults for CW recording
func DefaultConfig() Config {
	return Config{
		DeviceIndex: -1,
		SampleRate:  48000,
		Channels:    1,
		BufferSize:  512,
	}
}

// Capture records complete takes from an audio input device
type Capture struct {
	config  Config
	ctx     *malgo.AllocatedContext
	running bool
	mu      sync.Mutex

	take []float32 // interleaved samples of the take in progress
	want int       // interleaved samples still needed
	full chan struct{}
}

// New creates a new audio capture instance
func New(cfg Config) *Capture {
	return &Capture{config: cfg}
}

// Config returns the capture configuration
func (c *Capture) Config() Config {
	return c.config
}

// Init initializes the audio backend
func (c *Capture) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	c.ctx = ctx
	return nil
}

// ListDevices returns available capture devices
func (c *Capture) ListDevices() ([]malgo.DeviceInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		return nil, ErrNotInitialized
	}
	infos, err := c.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

// Record captures d of audio and returns it as mono samples in -1.0..1.0.
// It returns early with the samples captured so far and ctx.Err() when ctx
// is cancelled.
func (c *Capture) Record(ctx context.Context, d time.Duration) ([]float32, error) {
	if d <= 0 {
		return nil, ErrInvalidDuration
	}
	if c.config.Channels == 0 {
		return nil, ErrInvalidChannels
	}

	frames := int(d.Seconds() * float64(c.config.SampleRate))
	if frames <= 0 {
		return nil, ErrInvalidDuration
	}
	if err := c.begin(frames * int(c.config.Channels)); err != nil {
		return nil, err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.SampleRate = c.config.SampleRate
	deviceConfig.PeriodSizeInFrames = c.config.BufferSize
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = c.config.Channels

	if c.config.DeviceIndex >= 0 {
		devices, err := c.ListDevices()
		if err != nil {
			c.end()
			return nil, err
		}
		if c.config.DeviceIndex >= len(devices) {
			c.end()
			return nil, fmt.Errorf("device index %d out of range (have %d devices)",
				c.config.DeviceIndex, len(devices))
		}
		deviceConfig.Capture.DeviceID = devices[c.config.DeviceIndex].ID.Pointer()
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			c.appendSamples(bytesToFloat32(input))
		},
	})
	if err != nil {
		c.end()
		return nil, fmt.Errorf("init device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		c.end()
		return nil, fmt.Errorf("start device: %w", err)
	}
	debug.InfoLog.Printf("recording %v at %d Hz", d, c.config.SampleRate)

	var waitErr error
	select {
	case <-c.full:
	case <-ctx.Done():
		waitErr = ctx.Err()
	}
	_ = device.Stop()

	take := c.end()
	debug.DebugLog.Printf("captured %d samples", len(take))
	return Downmix(take, int(c.config.Channels)), waitErr
}

// begin prepares a take of n interleaved samples
func (c *Capture) begin(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		return ErrNotInitialized
	}
	if c.running {
		return ErrAlreadyRunning
	}
	c.running = true
	c.take = make([]float32, 0, n)
	c.want = n
	c.full = make(chan struct{})
	return nil
}

// end finishes the take in progress and returns its samples
func (c *Capture) end() []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	take := c.take
	c.take = nil
	c.want = 0
	c.running = false
	return take
}

// appendSamples is called from the audio thread
func (c *Capture) appendSamples(samples []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.want == 0 {
		return
	}
	if len(samples) > c.want {
		samples = samples[:c.want]
	}
	c.take = append(c.take, samples...)
	c.want -= len(samples)
	if c.want == 0 {
		close(c.full)
	}
}

// Close releases all audio resources
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		return nil
	}
	if err := c.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninit context: %w", err)
	}
	c.ctx.Free()
	c.ctx = nil
	return nil
}

// IsRunning returns true while a take is being recorded
func (c *Capture) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// bytesToFloat32 decodes little-endian IEEE 754 samples. Trailing bytes
// that do not form a whole sample are ignored.
func bytesToFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}

// Downmix averages interleaved frames into one channel. An incomplete final
// frame is dropped.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	mono := make([]float32, len(interleaved)/channels)
	for i := range mono {
		var sum float32
		for _, s := range interleaved[i*channels : (i+1)*channels] {
			sum += s
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
