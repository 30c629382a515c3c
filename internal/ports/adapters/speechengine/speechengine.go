// Package speechengine implements the ports.Transcriber contract on top
// of a whisper.cpp-style CLI binary. It takes already-decoded PCM (see
// internal/domain/wavpcm), re-encodes it to a scratch WAV, runs the binary
// with JSON output enabled, and reads the sidecar back into a
// types.Transcription.
package speechengine

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/takecut/silencecutter/internal/types"
)

// Adapter drives a whisper.cpp-compatible binary as the concrete speech
// engine.
type Adapter struct {
	bin      string
	model    string
	modelTag string // tiny/base/small/medium/large, for logging only
}

// New builds an Adapter for the given binary/model-file pair.
func New(binPath, modelPath, modelTag string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, modelTag: modelTag}
}

type sidecarChunk struct {
	Timestamps struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"timestamps"`
	Offsets struct {
		From int `json:"from"`
		To   int `json:"to"`
	} `json:"offsets"`
	Text string `json:"text"`
}

type sidecar struct {
	Transcription []sidecarChunk `json:"transcription"`
}

// Transcribe writes pcm back out as a scratch mono WAV at sampleRate, runs
// the whisper.cpp binary with JSON output enabled, and reads the sidecar
// back into a types.Transcription. lang == "" or "auto" is passed through
// as auto-detect (no -l flag).
func (a *Adapter) Transcribe(ctx context.Context, pcm []float32, sampleRate int, lang string) (types.Transcription, error) {
	dir, err := os.MkdirTemp("", "takecut-asr-*")
	if err != nil {
		return types.Transcription{}, fmt.Errorf("speechengine: scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "segment.wav")
	if err := writeMonoWAV(wavPath, pcm, sampleRate); err != nil {
		return types.Transcription{}, fmt.Errorf("speechengine: write scratch wav: %w", err)
	}

	outPrefix := filepath.Join(dir, "out")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	if lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, a.bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return types.Transcription{}, fmt.Errorf("speechengine: transcribe failed: %w\n%s", err, string(out))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcription{}, fmt.Errorf("speechengine: read sidecar: %w", err)
	}
	var sc sidecar
	if err := json.Unmarshal(jb, &sc); err != nil {
		return types.Transcription{}, fmt.Errorf("speechengine: parse sidecar: %w", err)
	}

	var parts []string
	chunks := make([]types.Chunk, 0, len(sc.Transcription))
	for _, c := range sc.Transcription {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		chunks = append(chunks, types.Chunk{
			Start: float64(c.Offsets.From) / 1000.0,
			End:   float64(c.Offsets.To) / 1000.0,
			Text:  text,
		})
	}

	return types.Transcription{
		Text:   strings.TrimSpace(strings.Join(parts, " ")),
		Chunks: chunks,
	}, nil
}

// writeMonoWAV re-encodes normalized float32 PCM back to a 16-bit mono
// RIFF/WAVE file for the speech engine's CLI to read.
func writeMonoWAV(path string, pcm []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dataSize := len(pcm) * 2
	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], 1) // mono
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(hdr[32:34], 2)
	binary.LittleEndian.PutUint16(hdr[34:36], 16)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))
	if _, err := f.Write(hdr[:]); err != nil {
		return err
	}

	buf := make([]byte, 2)
	for _, s := range pcm {
		v := s * 32767
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(buf, uint16(int16(v)))
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
