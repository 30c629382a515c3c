// Package pipeline wires the concrete adapters to the usecase, lays out
// one run's output directory, and writes the export artifacts after the
// usecase reaches Ready.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/takecut/silencecutter/internal/config"
	"github.com/takecut/silencecutter/internal/errs"
	"github.com/takecut/silencecutter/internal/export/edl"
	"github.com/takecut/silencecutter/internal/export/report"
	"github.com/takecut/silencecutter/internal/export/xmeml"
	"github.com/takecut/silencecutter/internal/ports"
	"github.com/takecut/silencecutter/internal/ports/adapters/ffmpegengine"
	"github.com/takecut/silencecutter/internal/ports/adapters/oracle"
	"github.com/takecut/silencecutter/internal/ports/adapters/speechengine"
	"github.com/takecut/silencecutter/internal/session"
	"github.com/takecut/silencecutter/internal/usecase"
)

// Config is everything one pipeline run needs: the input path, the
// pipeline's tunables (internal/config.Config), output/scratch
// directories, and the three external collaborators' connection details.
type Config struct {
	InputPath  string
	OutDir     string
	ScratchDir string

	Tunables config.Config

	FFmpegPath  string
	FFprobePath string

	WhisperBin      string
	WhisperModelDir string

	OracleAPIKey       string
	OracleModel        string
	OracleBaseURL      string
	OracleAllowedHosts []string
}

// Validate checks the run is self-consistent before any adapter is built:
// cheap, local checks first, then the oracle base-URL allowlist.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path is empty")
	}
	if _, err := os.Stat(c.InputPath); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if err := c.Tunables.Validate(); err != nil {
		return err
	}
	if c.WhisperBin == "" {
		return errors.New("whisper binary path is required")
	}
	if c.WhisperModelDir == "" {
		return errors.New("whisper model directory is required")
	}
	return oracle.ValidateBaseURL(c.OracleBaseURL, c.OracleAllowedHosts)
}

func (c Config) whisperModelPath() string {
	return filepath.Join(c.WhisperModelDir, fmt.Sprintf("ggml-%s.bin", c.Tunables.TranscriptionModel))
}

// Run drives one end-to-end pipeline run: build adapters, run the
// usecase to Ready, then export XMEML/EDL/JSON report and render the cut
// media file. Export failures are per-artifact: a failure writing one
// artifact is logged and joined into the returned error, but the
// remaining artifacts are still attempted and written.
func Run(ctx context.Context, cfg Config) error {
	engine := ffmpegengine.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.ScratchDir)
	transcriber := speechengine.New(cfg.WhisperBin, cfg.whisperModelPath(), cfg.Tunables.TranscriptionModel)
	scoringOracle := oracle.New(cfg.OracleAPIKey, cfg.OracleModel, cfg.OracleBaseURL)

	uc := usecase.New(usecase.Deps{Engine: engine, Transcriber: transcriber, Oracle: scoringOracle})
	sess := session.New(cfg.InputPath)

	slog.Info("starting pipeline run", "input", cfg.InputPath)
	handle, err := uc.Run(ctx, sess, cfg.Tunables)
	if handle != nil {
		defer func() {
			if relErr := engine.Release(handle); relErr != nil {
				slog.Warn("release engine handle failed", "err", relErr)
			}
		}()
	}
	if err != nil {
		sess.Fail(err)
		slog.Error("pipeline run failed", "err", err)
		return err
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.InputPath, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		sess.Fail(err)
		return err
	}
	slog.Info("output run dir", "dir", runOutDir)

	snap := sess.Snapshot()
	base := strings.TrimSuffix(filepath.Base(cfg.InputPath), filepath.Ext(cfg.InputPath))
	hasVideo := ffmpegengine.ContainerForExt(cfg.InputPath) == ports.ContainerVideoMP4

	var exportErrs []error

	xmemlPath := filepath.Join(runOutDir, base+"_edit.xml")
	if xmlBytes, err := xmeml.Render(snap.EditList, cfg.Tunables.FPS, hasVideo, cfg.InputPath); err != nil {
		exportErrs = append(exportErrs, &errs.ExportError{Format: "xmeml", Err: err})
	} else if err := os.WriteFile(xmemlPath, xmlBytes, 0o644); err != nil {
		exportErrs = append(exportErrs, &errs.ExportError{Format: "xmeml", Err: err})
	} else {
		slog.Info("wrote xmeml", "path", xmemlPath)
	}

	edlPath := filepath.Join(runOutDir, base+"_edit.edl")
	edlText := edl.Render(snap.EditList, cfg.Tunables.FPS, cfg.InputPath)
	if err := os.WriteFile(edlPath, []byte(edlText), 0o644); err != nil {
		exportErrs = append(exportErrs, &errs.ExportError{Format: "edl", Err: err})
	} else {
		slog.Info("wrote edl", "path", edlPath)
	}

	reportPath := filepath.Join(runOutDir, base+"_report.json")
	rep := report.Build(cfg.InputPath, cfg.Tunables.FPS, snap.Groups, snap.EditList)
	if repBytes, err := rep.MarshalIndent(); err != nil {
		exportErrs = append(exportErrs, &errs.ExportError{Format: "report", Err: err})
	} else if err := os.WriteFile(reportPath, repBytes, 0o644); err != nil {
		exportErrs = append(exportErrs, &errs.ExportError{Format: "report", Err: err})
	} else {
		slog.Info("wrote report", "path", reportPath)
	}

	sess.SetState(session.Rendering)
	container := ffmpegengine.ContainerForExt(cfg.InputPath)
	cutExt := ".mp3"
	if container == ports.ContainerVideoMP4 {
		cutExt = ".mp4"
	}
	cutPath := filepath.Join(runOutDir, base+"_cut"+cutExt)
	intervals := make([]ports.Interval, len(snap.EditList.BestTakes))
	for i, e := range snap.EditList.BestTakes {
		intervals[i] = ports.Interval{Start: e.Segment.Start, End: e.Segment.End}
	}
	if cutBytes, err := engine.RenderCut(ctx, handle, intervals, container, func(pct int) { sess.ReportPercent(pct) }); err != nil {
		exportErrs = append(exportErrs, &errs.ExportError{Format: "cut", Err: err})
	} else if err := os.WriteFile(cutPath, cutBytes, 0o644); err != nil {
		exportErrs = append(exportErrs, &errs.ExportError{Format: "cut", Err: err})
	} else {
		slog.Info("wrote cut render", "path", cutPath)
	}

	if len(exportErrs) > 0 {
		joined := errors.Join(exportErrs...)
		slog.Error("one or more exports failed", "err", joined)
		sess.SetState(session.Done)
		return joined
	}

	sess.SetState(session.Done)
	return nil
}

func buildRunOutDir(outRoot, inputPath string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputPath, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
