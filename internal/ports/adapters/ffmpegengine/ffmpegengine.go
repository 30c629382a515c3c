// Package ffmpegengine implements the ports.Engine contract on top of the
// ffmpeg/ffprobe binaries, shelling out per operation and parsing the
// filter log text they leave on stderr.
package ffmpegengine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/takecut/silencecutter/internal/errs"
	"github.com/takecut/silencecutter/internal/ports"
)

// streamedReadThreshold is the size above which Ingest mounts the source
// as a streamed-read view instead of copying it into scratch space.
const streamedReadThreshold = 500 * 1024 * 1024 // 500 MiB

// Adapter drives ffmpeg/ffprobe as the concrete media engine.
type Adapter struct {
	ffmpegPath  string
	ffprobePath string
	scratchDir  string
}

// New builds an Adapter. Empty paths fall back to "ffmpeg"/"ffprobe" on
// PATH.
func New(ffmpegPath, ffprobePath, scratchDir string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &Adapter{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, scratchDir: scratchDir}
}

// handle is the concrete ports.Handle behind this adapter.
type handle struct {
	sourcePath string // the path ffmpeg should read from (copy or original)
	origExt    string
	workDir    string
}

func (a *Adapter) Ingest(ctx context.Context, path string) (ports.Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.SourceUnreadableError{Path: path, Err: err}
	}
	defer f.Close()

	var probe [1]byte
	if _, err := f.Read(probe[:]); err != nil && err != io.EOF {
		return nil, &errs.SourceUnreadableError{Path: path, Err: err}
	}

	st, err := f.Stat()
	if err != nil {
		return nil, &errs.SourceUnreadableError{Path: path, Err: err}
	}

	workDir, err := os.MkdirTemp(a.scratchDir, "takecut-*")
	if err != nil {
		return nil, &errs.EngineError{Kind: errs.FileSystem, Message: err.Error()}
	}

	ext := filepath.Ext(path)
	h := &handle{origExt: ext, workDir: workDir}

	if st.Size() <= streamedReadThreshold {
		dst := filepath.Join(workDir, "source"+ext)
		if err := copyFile(path, dst); err != nil {
			return nil, &errs.EngineError{Kind: errs.FileSystem, Message: err.Error()}
		}
		h.sourcePath = dst
		slog.Debug("ingested source by copy", "bytes", st.Size(), "dst", dst)
	} else {
		h.sourcePath = path
		slog.Debug("ingested source by streamed reference", "bytes", st.Size())
	}
	return h, nil
}

func (a *Adapter) Release(h ports.Handle) error {
	hh, ok := h.(*handle)
	if !ok || hh == nil {
		return nil
	}
	return os.RemoveAll(hh.workDir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// SilenceLog runs ffmpeg's silencedetect filter and returns the raw log
// text (silencedetect and the Duration header both land on stderr).
func (a *Adapter) SilenceLog(ctx context.Context, h ports.Handle, noiseDB int, minSilenceS float64, progress ports.ProgressFunc) (string, error) {
	hh, err := asHandle(h)
	if err != nil {
		return "", err
	}
	args := []string{
		"-i", hh.sourcePath,
		"-af", fmt.Sprintf("silencedetect=noise=%ddB:d=%s", noiseDB, fmtSeconds(minSilenceS)),
		"-f", "null",
		"-",
	}
	out, runErr := a.run(ctx, args, progress)
	if runErr != nil && !looksLikeBenignNullProbe(out) {
		return "", execErr(runErr, out)
	}
	if strings.TrimSpace(out) == "" {
		return "", &errs.EngineError{Kind: errs.ExecFailed, Message: "empty silencedetect log"}
	}
	return out, nil
}

// ExtractWAV produces 16 kHz mono 16-bit PCM WAV bytes for [start, end].
func (a *Adapter) ExtractWAV(ctx context.Context, h ports.Handle, start, end float64) ([]byte, error) {
	hh, err := asHandle(h)
	if err != nil {
		return nil, err
	}
	outPath := filepath.Join(hh.workDir, fmt.Sprintf("seg-%s-%s.wav", fmtSeconds(start), fmtSeconds(end)))
	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", hh.sourcePath,
		"-vn", "-ac", "1", "-ar", "16000", "-acodec", "pcm_s16le",
		"-f", "wav",
		outPath,
	}
	out, runErr := a.run(ctx, args, nil)
	if runErr != nil {
		return nil, execErr(runErr, out)
	}
	defer os.Remove(outPath)
	b, readErr := os.ReadFile(outPath)
	if readErr != nil {
		return nil, &errs.EngineError{Kind: errs.FileSystem, Message: readErr.Error()}
	}
	return b, nil
}

// VolumeLog runs ffmpeg's volumedetect filter over [start, end] and returns
// the raw log text.
func (a *Adapter) VolumeLog(ctx context.Context, h ports.Handle, start, end float64) (string, error) {
	hh, err := asHandle(h)
	if err != nil {
		return "", err
	}
	args := []string{
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", hh.sourcePath,
		"-af", "volumedetect",
		"-f", "null",
		"-",
	}
	out, runErr := a.run(ctx, args, nil)
	if runErr != nil && !looksLikeBenignNullProbe(out) {
		return "", execErr(runErr, out)
	}
	return out, nil
}

// RenderCut concatenates the given intervals of the source into one output
// stream, choosing a video or audio container per ports.Container.
func (a *Adapter) RenderCut(ctx context.Context, h ports.Handle, intervals []ports.Interval, container ports.Container, progress ports.ProgressFunc) ([]byte, error) {
	hh, err := asHandle(h)
	if err != nil {
		return nil, err
	}
	if len(intervals) == 0 {
		return nil, &errs.EngineError{Kind: errs.ExecFailed, Message: "render_cut: no intervals"}
	}

	clipPaths := make([]string, 0, len(intervals))
	ext := ".mp4"
	if container == ports.ContainerAudioMP3 {
		ext = ".mp3"
	}
	for i, iv := range intervals {
		clipPath := filepath.Join(hh.workDir, fmt.Sprintf("clip-%04d%s", i, ext))
		args := []string{
			"-y",
			"-ss", fmtSeconds(iv.Start),
			"-to", fmtSeconds(iv.End),
			"-i", hh.sourcePath,
		}
		if container == ports.ContainerAudioMP3 {
			args = append(args, "-vn", "-acodec", "libmp3lame")
		} else {
			args = append(args, "-c:v", "libx264", "-preset", "veryfast", "-c:a", "aac")
		}
		args = append(args, clipPath)
		if out, runErr := a.run(ctx, args, nil); runErr != nil {
			return nil, execErr(runErr, out)
		}
		clipPaths = append(clipPaths, clipPath)
		if progress != nil {
			progress(int(float64(i+1) / float64(len(intervals)) * 90))
		}
	}
	defer func() {
		for _, p := range clipPaths {
			os.Remove(p)
		}
	}()

	listPath := filepath.Join(hh.workDir, "concat.txt")
	var listBuf strings.Builder
	for _, p := range clipPaths {
		listBuf.WriteString(fmt.Sprintf("file '%s'\n", strings.ReplaceAll(p, "'", "'\\''")))
	}
	if err := os.WriteFile(listPath, []byte(listBuf.String()), 0o644); err != nil {
		return nil, &errs.EngineError{Kind: errs.FileSystem, Message: err.Error()}
	}
	defer os.Remove(listPath)

	outPath := filepath.Join(hh.workDir, "render"+ext)
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
	if out, runErr := a.run(ctx, args, nil); runErr != nil {
		return nil, execErr(runErr, out)
	}
	defer os.Remove(outPath)
	if progress != nil {
		progress(100)
	}

	b, readErr := os.ReadFile(outPath)
	if readErr != nil {
		return nil, &errs.EngineError{Kind: errs.FileSystem, Message: readErr.Error()}
	}
	return b, nil
}

// ContainerForExt chooses the render container by source file extension:
// mp4/mov/mkv/webm render as video, everything else as audio.
func ContainerForExt(path string) ports.Container {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".mkv", ".webm":
		return ports.ContainerVideoMP4
	default:
		return ports.ContainerAudioMP3
	}
}

func asHandle(h ports.Handle) (*handle, error) {
	hh, ok := h.(*handle)
	if !ok || hh == nil {
		return nil, &errs.EngineError{Kind: errs.ExecFailed, Message: "invalid engine handle"}
	}
	return hh, nil
}

// run executes ffmpeg, tailing a -progress sidecar file in a background
// goroutine to drive the caller's progress callback; it always returns the
// combined stderr/stdout text alongside the error so callers can inspect
// logs even on a non-zero exit (ffmpeg's probe filters commonly exit
// non-zero from "-f null" while still producing a usable log).
func (a *Adapter) run(ctx context.Context, args []string, progress ports.ProgressFunc) (string, error) {
	var progPath string
	if progress != nil {
		f, err := os.CreateTemp("", "takecut-progress-*")
		if err == nil {
			progPath = f.Name()
			f.Close()
			args = append([]string{"-progress", progPath}, args...)
			defer os.Remove(progPath)
		}
	}

	cmd := exec.CommandContext(ctx, a.ffmpegPath, args...)

	done := make(chan struct{})
	if progPath != "" {
		go tailProgress(progPath, done, progress)
	}

	b, err := cmd.CombinedOutput()
	close(done)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return string(b), err
}

// execErr classifies a failed ffmpeg invocation: a missing binary, a
// context deadline, or an ordinary non-zero exit.
func execErr(runErr error, log string) *errs.EngineError {
	kind := errs.ExecFailed
	switch {
	case errors.Is(runErr, exec.ErrNotFound):
		kind = errs.LoadFailed
	case errors.Is(runErr, context.DeadlineExceeded):
		kind = errs.Timeout
	}
	return &errs.EngineError{Kind: kind, Message: runErr.Error() + "\n" + log}
}

// tailProgress polls ffmpeg's "-progress" sidecar file until the
// progress=end marker appears or done fires; intermediate ticks carry no
// total-duration reference, so only completion is reported here.
func tailProgress(path string, done <-chan struct{}, progress ports.ProgressFunc) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			f, err := os.Open(path)
			if err != nil {
				continue
			}
			last := lastProgressLine(f)
			f.Close()
			if last == "" {
				continue
			}
			if last == "end" {
				progress(100)
				return
			}
		}
	}
}

func lastProgressLine(f *os.File) string {
	sc := bufio.NewScanner(f)
	status := ""
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "progress=") {
			status = strings.TrimPrefix(line, "progress=")
		}
	}
	return status
}

func looksLikeBenignNullProbe(log string) bool {
	return strings.Contains(log, "Duration:") || strings.Contains(log, "silence_") || strings.Contains(log, "volumedetect") || strings.Contains(log, "mean_volume")
}

func fmtSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
