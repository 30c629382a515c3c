//go:build integration

package itest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/takecut/silencecutter/internal/config"
	"github.com/takecut/silencecutter/internal/pipeline"
)

func TestE2E(t *testing.T) {
	if os.Getenv("ORACLE_API_KEY") == "" {
		t.Fatalf("ORACLE_API_KEY is required for itest")
	}

	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")

	// Generate a speech take via espeak-ng, then repeat it with a silence
	// gap wide enough for silencedetect to cut on.
	speech := filepath.Join(tmp, "speech.wav")
	text := "This is the first take of the line. Let me try that line one more time."
	cmd := exec.Command("espeak-ng", "-w", speech, text)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("espeak-ng failed: %v\n%s", err, string(b))
	}

	padded := filepath.Join(tmp, "padded.wav")
	pad := exec.Command("ffmpeg", "-y", "-i", speech, "-af", "apad=pad_dur=1.5", padded)
	if b, err := pad.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg pad failed: %v\n%s", err, string(b))
	}

	twoTakes := filepath.Join(tmp, "takes.wav")
	cat := exec.Command("ffmpeg",
		"-y",
		"-i", padded,
		"-i", padded,
		"-filter_complex", "[0:a][1:a]concat=n=2:v=0:a=1",
		twoTakes,
	)
	if b, err := cat.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg concat failed: %v\n%s", err, string(b))
	}

	// Mux under a black video track so the source counts as video-like.
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "color=c=black:s=1280x720:d=30",
		"-i", twoTakes,
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	outDir := filepath.Join(tmp, "out")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	tunables := config.Default()
	tunables.TranscriptionModel = "base"

	cfg := pipeline.Config{
		InputPath:       in,
		OutDir:          outDir,
		Tunables:        tunables,
		FFmpegPath:      "ffmpeg",
		FFprobePath:     "ffprobe",
		WhisperBin:      envOr("WHISPER_BIN", ".cache/bin/whisper.cpp"),
		WhisperModelDir: envOr("WHISPER_MODEL_DIR", ".cache/models"),
		OracleAPIKey:    os.Getenv("ORACLE_API_KEY"),
		OracleModel:     os.Getenv("ORACLE_MODEL"),
		OracleBaseURL:   os.Getenv("ORACLE_BASE_URL"),
	}

	if err := pipeline.Run(ctx, cfg); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	runDirs, err := filepath.Glob(filepath.Join(outDir, "input-*"))
	if err != nil || len(runDirs) != 1 {
		t.Fatalf("expected exactly one run dir under %s, got %v (err %v)", outDir, runDirs, err)
	}
	runDir := runDirs[0]

	for _, name := range []string{"input_edit.xml", "input_edit.edl", "input_report.json", "input_cut.mp4"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}

	srcDur, err := probeDurationSeconds(in)
	if err != nil {
		t.Fatalf("probe source: %v", err)
	}
	cutDur, err := probeDurationSeconds(filepath.Join(runDir, "input_cut.mp4"))
	if err != nil {
		t.Fatalf("probe cut: %v", err)
	}
	if cutDur > srcDur+0.5 {
		t.Fatalf("cut duration %.2fs exceeds source duration %.2fs", cutDur, srcDur)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
