// Package segmenter parses a media engine's silence-detect log into
// padded speech segments. The log format is the only I/O contract that can
// silently drift, so parsing is isolated here behind a small, explicit set
// of regexes.
package segmenter

import (
	"regexp"
	"strconv"

	"github.com/takecut/silencecutter/internal/config"
	"github.com/takecut/silencecutter/internal/errs"
	"github.com/takecut/silencecutter/internal/types"
)

var (
	durationRE     = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)
	silenceStartRE = regexp.MustCompile(`silence_start:\s*(-?\d+(?:\.\d+)?)`)
	silenceEndRE   = regexp.MustCompile(`silence_end:\s*(-?\d+(?:\.\d+)?)`)
)

type silenceInterval struct {
	start float64
	end   float64
	// endSynthesized marks an unmatched silence_start whose end was closed
	// at total duration rather than read from the log. The synthesized end
	// is not trusted as a speech-gap cursor: the trailing emission still
	// runs from the silence's own start, so the tail of the recording is
	// kept rather than dropped on a truncated log.
	endSynthesized bool
}

// TotalDuration parses the first "Duration: HH:MM:SS.ff" line of a
// silence-detect log, returning 0 if the log has none.
func TotalDuration(log string) float64 {
	total, _ := parseDuration(log)
	return total
}

// Segment parses the engine's silence-detect log text into an ordered,
// padded list of speech segments.
func Segment(log string, cfg config.Config) ([]types.Segment, error) {
	total, ok := parseDuration(log)
	if !ok {
		total = 0
	}

	intervals := pairSilences(log, total)

	padding := cfg.PaddingS
	minSpeech := cfg.MinSpeechS

	var out []types.Segment
	prevEnd := 0.0
	emit := func(start, end float64) {
		if end-start+1e-9 < minSpeech {
			return
		}
		out = append(out, types.Segment{
			Index:    len(out),
			Start:    round3(start),
			End:      round3(end),
			Duration: round3(end - start),
		})
	}

	for _, s := range intervals {
		candStart := maxF(0, prevEnd-padding)
		candEnd := minF(total, s.start+padding)
		emit(candStart, candEnd)
		if s.endSynthesized {
			prevEnd = s.start
		} else {
			prevEnd = s.end
		}
	}
	if prevEnd < total {
		candStart := maxF(0, prevEnd-padding)
		emit(candStart, total)
	}

	if len(out) == 0 {
		return nil, &errs.NoSpeechDetectedError{NoiseDB: cfg.NoiseThresholdDB, MinSilence: cfg.MinSilenceS}
	}
	return out, nil
}

// parseDuration reads the first "Duration: HH:MM:SS.ff" line.
func parseDuration(log string) (float64, bool) {
	m := durationRE.FindStringSubmatch(log)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.ParseFloat(m[1], 64)
	mi, _ := strconv.ParseFloat(m[2], 64)
	s, _ := strconv.ParseFloat(m[3], 64)
	return h*3600 + mi*60 + s, true
}

// pairSilences collects silence_start/silence_end occurrences in textual
// order and pairs the i-th start with the i-th end; an unmatched trailing
// start is closed at total duration.
func pairSilences(log string, total float64) []silenceInterval {
	starts := silenceStartRE.FindAllStringSubmatch(log, -1)
	ends := silenceEndRE.FindAllStringSubmatch(log, -1)

	out := make([]silenceInterval, 0, len(starts))
	for i, sm := range starts {
		start, _ := strconv.ParseFloat(sm[1], 64)
		iv := silenceInterval{start: start, end: total, endSynthesized: true}
		if i < len(ends) {
			iv.end, _ = strconv.ParseFloat(ends[i][1], 64)
			iv.endSynthesized = false
		}
		out = append(out, iv)
	}
	return out
}

func round3(f float64) float64 {
	return float64(int64(f*1000+sign(f)*0.5)) / 1000
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
