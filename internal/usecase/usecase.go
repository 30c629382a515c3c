// Package usecase orchestrates the take-selection pipeline's domain
// packages over the ports interfaces: a small struct holding Deps, one Run
// method, no business logic of its own beyond sequencing.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/takecut/silencecutter/internal/config"
	"github.com/takecut/silencecutter/internal/domain/features"
	"github.com/takecut/silencecutter/internal/domain/grouper"
	"github.com/takecut/silencecutter/internal/domain/segmenter"
	"github.com/takecut/silencecutter/internal/domain/wavpcm"
	"github.com/takecut/silencecutter/internal/ports"
	"github.com/takecut/silencecutter/internal/session"
	"github.com/takecut/silencecutter/internal/types"
)

// Deps are the external collaborators the usecase drives, one per ports
// interface.
type Deps struct {
	Engine      ports.Engine
	Transcriber ports.Transcriber
	Oracle      ports.ScoringOracle
}

// Usecase sequences the pipeline's stages over a Session. It holds no
// state of its own between runs.
type Usecase struct{ d Deps }

// New builds a Usecase over the given collaborators.
func New(d Deps) Usecase { return Usecase{d: d} }

// Run drives the session from Idle through Ready: ingest, silence-detect,
// segment, extract+feature-probe every segment, transcribe every segment,
// group, score, and assemble. It returns the open engine handle so the
// caller can drive RenderCut afterward; the caller owns releasing it.
//
// On error the session is left in whatever state it reached; the caller
// is responsible for calling sess.Fail and releasing any handle that was
// returned.
func (u Usecase) Run(ctx context.Context, sess *session.Session, cfg config.Config) (ports.Handle, error) {
	sess.SetState(session.LoadingEngine)
	handle, err := u.d.Engine.Ingest(ctx, sess.SourcePath())
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	sess.SetState(session.Probing)
	log, err := u.d.Engine.SilenceLog(ctx, handle, cfg.NoiseThresholdDB, cfg.MinSilenceS, func(pct int) {
		sess.ReportPercent(pct)
	})
	if err != nil {
		return handle, fmt.Errorf("silence-detect: %w", err)
	}
	sess.SetTotalDuration(segmenter.TotalDuration(log))

	sess.SetState(session.Segmenting)
	segs, err := segmenter.Segment(log, cfg)
	if err != nil {
		return handle, err
	}
	sess.SetSegments(segs)
	slog.Info("segmented speech", "segments", len(segs), "total_duration", sess.TotalDuration())

	wavBySegment := make([][]byte, len(segs))

	sess.SetState(session.Extracting)
	for i := range segs {
		wav, err := u.d.Engine.ExtractWAV(ctx, handle, segs[i].Start, segs[i].End)
		if err != nil {
			return handle, fmt.Errorf("extract segment %d: %w", i, err)
		}
		wavBySegment[i] = wav

		volLog, err := u.d.Engine.VolumeLog(ctx, handle, segs[i].Start, segs[i].End)
		if err != nil {
			return handle, fmt.Errorf("volume probe segment %d: %w", i, err)
		}
		segs[i].AudioMetrics = features.Extract(volLog)
		sess.ReportIndexed(i+1, len(segs))
	}
	sess.SetSegments(segs)

	sess.SetState(session.LoadingTranscriber)
	sess.SetState(session.Transcribing)
	for i := range segs {
		tr, err := u.transcribeSegment(ctx, wavBySegment[i], cfg.TranscriptionLanguage)
		if err != nil {
			// A transcription failure is local to its segment: keep the
			// empty transcription and let the pipeline continue.
			slog.Warn("transcription failed, continuing with empty text", "segment", i, "err", err)
		} else {
			segs[i].Transcription = tr
		}
		sess.ReportIndexed(i+1, len(segs))
	}
	sess.SetSegments(segs)

	sess.SetState(session.Grouping)
	groups := grouper.Group(segs, cfg.SimilarityThreshold)
	sess.SetGroups(groups)
	slog.Info("grouped takes", "groups", len(groups))

	sess.SetState(session.Scoring)
	eval, err := u.d.Oracle.Evaluate(ctx, groups)
	if err != nil {
		return handle, err
	}

	sess.SetState(session.Assembling)
	sess.Assembler().ApplyEvaluation(eval)

	sess.SetState(session.Ready)
	return handle, nil
}

// transcribeSegment decodes a segment's WAV bytes and feeds the resulting
// PCM to the speech engine.
func (u Usecase) transcribeSegment(ctx context.Context, wavBytes []byte, lang string) (types.Transcription, error) {
	pcm, sampleRate, err := wavpcm.Decode(wavBytes)
	if err != nil {
		return types.Transcription{}, fmt.Errorf("decode wav: %w", err)
	}
	tr, err := u.d.Transcriber.Transcribe(ctx, pcm, sampleRate, lang)
	if err != nil {
		return types.Transcription{}, fmt.Errorf("transcribe: %w", err)
	}
	return tr, nil
}
