package wavpcm

import (
	"encoding/binary"
	"math"
	"testing"
)

// buildMonoWAV hand-assembles a minimal 16-bit PCM mono RIFF/WAVE file for
// test fixtures; writing one by hand avoids pulling in an encoder just for
// test data.
func buildMonoWAV(sampleRate int, samples []int16) []byte {
	dataSize := len(samples) * 2
	buf := make([]byte, 0, 44+dataSize)

	write := func(b []byte) { buf = append(buf, b...) }
	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b
	}

	write([]byte("RIFF"))
	write(u32(uint32(36 + dataSize)))
	write([]byte("WAVE"))
	write([]byte("fmt "))
	write(u32(16))
	write(u16(1)) // PCM
	write(u16(1)) // mono
	write(u32(uint32(sampleRate)))
	write(u32(uint32(sampleRate * 2)))
	write(u16(2))
	write(u16(16))
	write([]byte("data"))
	write(u32(uint32(dataSize)))
	for _, s := range samples {
		write(u16(uint16(s)))
	}
	return buf
}

func TestDecodeMono(t *testing.T) {
	samples := []int16{0, math.MinInt16, math.MaxInt16, 16384}
	wavBytes := buildMonoWAV(16000, samples)

	pcm, sr, err := Decode(wavBytes)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sr != 16000 {
		t.Fatalf("sample rate = %d, want 16000", sr)
	}
	if len(pcm) != len(samples) {
		t.Fatalf("len(pcm) = %d, want %d", len(pcm), len(samples))
	}
	for i, s := range pcm {
		if s < -1.0 || s > 1.0 {
			t.Fatalf("pcm[%d] = %v outside [-1.0, 1.0]", i, s)
		}
	}
	if pcm[1] > -0.99 || pcm[1] < -1.0 {
		t.Fatalf("min sample not normalized near -1.0, got %v", pcm[1])
	}
	if pcm[2] < 0.99 || pcm[2] > 1.0 {
		t.Fatalf("max sample not normalized near 1.0, got %v", pcm[2])
	}
	if pcm[3] < 0.49 || pcm[3] > 0.51 {
		t.Fatalf("half-scale sample not normalized near 0.5, got %v", pcm[3])
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, _, err := Decode([]byte("not a wav file")); err == nil {
		t.Fatalf("expected error decoding non-WAV bytes")
	}
}
