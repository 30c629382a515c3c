// Package wavpcm decodes a RIFF/WAVE byte stream into normalized float32
// PCM, the shape the speech-to-text engine's transcription adapter expects.
package wavpcm

import (
	"bytes"
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Decode reads a mono or multi-channel WAV file and returns its samples as
// float32 normalized to [-1.0, 1.0], downmixing to mono by averaging
// channels, along with the file's native sample rate.
func Decode(wavBytes []byte) ([]float32, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(wavBytes))
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("wavpcm: not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavpcm: read PCM buffer: %w", err)
	}

	// AsFloat32Buffer divides each sample by 2^(SourceBitDepth-1), so a
	// 16-bit source already lands in [-1.0, 1.0] with no further scaling.
	fb := buf.AsFloat32Buffer()
	return downmix(fb), fb.Format.SampleRate, nil
}

// downmix averages a buffer's channels into one; a mono buffer passes
// through as-is.
func downmix(fb *audio.Float32Buffer) []float32 {
	channels := fb.Format.NumChannels
	if channels <= 1 {
		return fb.Data
	}
	out := make([]float32, len(fb.Data)/channels)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += fb.Data[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
