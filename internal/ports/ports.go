// Package ports declares the interfaces the usecase drives; concrete
// implementations live under internal/ports/adapters.
package ports

import (
	"context"

	"github.com/takecut/silencecutter/internal/types"
)

// Container selects the render container for the final cut.
type Container string

const (
	ContainerVideoMP4 Container = "video-mp4"
	ContainerAudioMP3 Container = "audio-mp3"
)

// Handle is an opaque reference to a source the media engine has ingested.
type Handle interface{}

// Interval is a [Start, End] span in source-media seconds.
type Interval struct {
	Start float64
	End   float64
}

// ProgressFunc receives 0-100 percent progress updates from an adapter call.
type ProgressFunc func(pct int)

// Engine is the media-engine contract: a black-box decoder/filter engine
// driven by file ingest, silence-detect, per-segment extraction, a volume
// probe, and a final concatenated render.
type Engine interface {
	Ingest(ctx context.Context, path string) (Handle, error)
	SilenceLog(ctx context.Context, h Handle, noiseDB int, minSilenceS float64, progress ProgressFunc) (string, error)
	ExtractWAV(ctx context.Context, h Handle, start, end float64) ([]byte, error)
	VolumeLog(ctx context.Context, h Handle, start, end float64) (string, error)
	RenderCut(ctx context.Context, h Handle, intervals []Interval, container Container, progress ProgressFunc) ([]byte, error)
	Release(h Handle) error
}

// Transcriber is the speech-to-text engine contract.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32, sampleRate int, lang string) (types.Transcription, error)
}

// ScoringOracle ranks takes: given group and take metadata it returns
// per-take scores and a suggested group order.
type ScoringOracle interface {
	Evaluate(ctx context.Context, groups []types.Group) (types.Evaluation, error)
}
