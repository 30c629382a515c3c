// Package features turns a volume-probe log into a segment's coarse audio
// quality read-out. It has no loop of its own: the usecase calls Extract
// once per segment and reports per-segment progress itself.
package features

import (
	"regexp"
	"strconv"

	"github.com/takecut/silencecutter/internal/types"
)

var (
	meanVolumeRE = regexp.MustCompile(`mean_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
	maxVolumeRE  = regexp.MustCompile(`max_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
)

// defaultMeanDB is used only to pick a quality tag when the volume log has
// no mean_volume line at all; it is never written back onto the segment.
const defaultMeanDB = -70.0

// Extract parses a volumedetect-style log into AudioMetrics, tagging the
// segment loud/clipping, good, or quiet by its mean dB.
func Extract(volumeLog string) types.AudioMetrics {
	m := types.AudioMetrics{}

	meanForTag := defaultMeanDB
	if match := meanVolumeRE.FindStringSubmatch(volumeLog); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			m.MeanDB = &v
			meanForTag = v
		}
	}
	if match := maxVolumeRE.FindStringSubmatch(volumeLog); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			m.MaxDB = &v
		}
	}

	switch {
	case meanForTag > -5:
		m.Quality = "loud/clipping"
	case meanForTag < -30:
		m.Quality = "quiet"
	default:
		m.Quality = "good"
	}
	return m
}
