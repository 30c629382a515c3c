// Package edl renders a types.EditList as a CMX3600 edit decision list:
// a header, then one event block per take, built with strings.Builder and
// fmt.Sprintf.
package edl

import (
	"fmt"
	"math"
	"strings"

	"github.com/takecut/silencecutter/internal/types"
)

// Render builds the CMX3600 text for the edit list at the given frame
// rate, against sourcePath as the reel/clip name.
func Render(el types.EditList, fps int, sourcePath string) string {
	var b strings.Builder
	b.WriteString("TITLE: Silence Cutter Edit\n")
	b.WriteString("FCM: NON-DROP FRAME\n\n")

	for i, e := range el.BestTakes {
		eventNum := fmt.Sprintf("%03d", i+1)
		srcIn := timecode(e.Segment.Start, fps)
		srcOut := timecode(e.Segment.End, fps)
		recIn := timecode(e.TimelineStart, fps)
		recOut := timecode(e.TimelineEnd, fps)

		fmt.Fprintf(&b, "%s  AX       AA/V  C        %s %s %s %s\n",
			eventNum, srcIn, srcOut, recIn, recOut)
		fmt.Fprintf(&b, "* FROM CLIP NAME: %s\n", sourcePath)

		score := "N/A"
		if e.Segment.AIScores != nil {
			score = fmt.Sprintf("%.1f", e.Segment.AIScores.Overall)
		}
		fmt.Fprintf(&b, "* COMMENT: Take %d | Score: %s | %s\n", i+1, score, truncate(e.Segment.Transcription.Text, 60))
		b.WriteString("\n")
	}
	return b.String()
}

// timecode formats seconds as an HH:MM:SS:FF CMX3600 timecode at fps,
// frames = round(seconds*fps) mod fps.
func timecode(seconds float64, fps int) string {
	total := frames(seconds, fps)
	frame := total % fps
	totalSeconds := total / fps
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", h, m, s, frame)
}

// frames converts seconds to an exact frame count via round(seconds*fps).
// Implemented as ceil(x-0.5) so an exact half-frame tie rounds down; all
// timecode outputs share this rule.
func frames(seconds float64, fps int) int {
	return int(math.Ceil(seconds*float64(fps) - 0.5))
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
