// internal/audio/wavwriter.go
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	wavHeaderSize = 44
	pcmFormat     = 1
	pcmBits       = 16
)

// WriteWAV writes mono samples in -1.0..1.0 as a 16-bit PCM WAV stream.
// Samples outside that range are clipped.
func WriteWAV(w io.Writer, samples []float32, sampleRate uint32) error {
	if sampleRate == 0 {
		return fmt.Errorf("write wav: sample rate must be positive")
	}

	dataSize := uint32(len(samples) * pcmBits / 8)
	buf := make([]byte, 0, wavHeaderSize+int(dataSize))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, 36+dataSize)
	buf = append(buf, "WAVEfmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, pcmFormat)
	buf = binary.LittleEndian.AppendUint16(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate*pcmBits/8)
	buf = binary.LittleEndian.AppendUint16(buf, pcmBits/8)
	buf = binary.LittleEndian.AppendUint16(buf, pcmBits)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, dataSize)

	for _, s := range samples {
		v := math.Round(float64(max(-1, min(1, s))) * math.MaxInt16)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(v)))
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}
