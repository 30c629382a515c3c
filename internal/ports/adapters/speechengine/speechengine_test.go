package speechengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/takecut/silencecutter/internal/domain/wavpcm"
)

func TestWriteMonoWAVRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")
	pcm := []float32{0, -1, 1, 0.5}

	if err := writeMonoWAV(path, pcm, 16000); err != nil {
		t.Fatalf("writeMonoWAV: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written wav: %v", err)
	}
	decoded, sr, err := wavpcm.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sr != 16000 {
		t.Fatalf("sample rate = %d, want 16000", sr)
	}
	if len(decoded) != len(pcm) {
		t.Fatalf("len(decoded) = %d, want %d", len(decoded), len(pcm))
	}
}
