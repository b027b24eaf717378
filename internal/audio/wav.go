// internal/audio/wav.go
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mjibson/go-dsp/wav"
	"github.com/womat/debug"
)

// ErrEmptyWAV indicates a WAV stream without sample data
var ErrEmptyWAV = errors.New("wav has no samples")

// wavChunkSamples is the number of samples read from a WAV stream at once
const wavChunkSamples = 4096

// LoadWAV reads a PCM or float WAV stream and returns its samples downmixed
// to mono in -1.0..1.0, together with the sample rate in Hz.
func LoadWAV(r io.Reader) ([]float32, uint32, error) {
	w, err := wav.New(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read wav header: %w", err)
	}
	if w.Header.NumChannels == 0 {
		return nil, 0, ErrInvalidChannels
	}

	interleaved, err := readSamples(w)
	if err != nil {
		return nil, 0, fmt.Errorf("read wav samples: %w", err)
	}
	if len(interleaved) == 0 {
		return nil, 0, ErrEmptyWAV
	}
	debug.DebugLog.Printf("wav: %d Hz, %d channels, %d bits, %d samples",
		w.Header.SampleRate, w.Header.NumChannels, w.Header.BitsPerSample, len(interleaved))

	return Downmix(interleaved, int(w.Header.NumChannels)), w.Header.SampleRate, nil
}

// readSamples reads the whole data chunk. w.Samples is rounded down to a
// multiple of 8, so the samples after it are read one at a time until the
// chunk ends. A truncated final sample is dropped.
func readSamples(w *wav.Wav) ([]float32, error) {
	samples := make([]float32, 0, w.Samples)
	for remaining := w.Samples; remaining > 0; {
		n := min(remaining, wavChunkSamples)
		chunk, err := readChunk(w, n)
		if isEndOfData(err) {
			return samples, nil
		}
		if err != nil {
			return nil, err
		}
		samples = append(samples, chunk...)
		remaining -= n
	}

	for {
		chunk, err := readChunk(w, 1)
		if isEndOfData(err) {
			return samples, nil
		}
		if err != nil {
			return nil, err
		}
		samples = append(samples, chunk...)
	}
}

// readChunk reads n samples and scales them to -1.0..1.0
func readChunk(w *wav.Wav, n int) ([]float32, error) {
	raw, err := w.ReadSamples(n)
	if err != nil {
		return nil, err
	}

	switch data := raw.(type) {
	case []uint8:
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = (float32(v) - 128) / 128
		}
		return out, nil
	case []int16:
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = float32(v) / 32768
		}
		return out, nil
	case []float32:
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported wav sample type %T", raw)
	}
}

func isEndOfData(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// LoadWAVFile opens path and reads it with LoadWAV.
func LoadWAVFile(path string) ([]float32, uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()
	return LoadWAV(f)
}
