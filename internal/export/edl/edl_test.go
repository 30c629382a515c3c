package edl

import (
	"strings"
	"testing"

	"github.com/takecut/silencecutter/internal/types"
)

func TestTimecode(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     int
		want    string
	}{
		{1.000, 25, "00:00:01:00"},
		{2.500, 25, "00:00:02:12"},
		{0.000, 25, "00:00:00:00"},
		{1.500, 25, "00:00:01:12"},
	}
	for _, tt := range tests {
		if got := timecode(tt.seconds, tt.fps); got != tt.want {
			t.Errorf("timecode(%v, %d) = %q, want %q", tt.seconds, tt.fps, got, tt.want)
		}
	}
}

func TestRenderEDLLine(t *testing.T) {
	el := types.EditList{
		BestTakes: []types.TimelineEntry{
			{
				Segment:       types.Segment{Start: 1.000, End: 2.500, Duration: 1.500, Transcription: types.Transcription{Text: "hello"}},
				TimelineStart: 0,
				TimelineEnd:   1.500,
			},
		},
	}
	out := Render(el, 25, "source.mp4")
	if !strings.Contains(out, "00:00:01:00 00:00:02:12 00:00:00:00 00:00:01:12") {
		t.Fatalf("rendered EDL missing expected timecode fragment:\n%s", out)
	}
	if !strings.HasPrefix(out, "TITLE: Silence Cutter Edit\nFCM: NON-DROP FRAME\n") {
		t.Fatalf("rendered EDL missing header:\n%s", out)
	}
	if !strings.Contains(out, "* COMMENT: Take 1 | Score: N/A | hello") {
		t.Fatalf("rendered EDL missing comment line:\n%s", out)
	}
}

func TestTruncateCommentTo60Chars(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := truncate(long, 60)
	if len([]rune(got)) != 60 {
		t.Fatalf("len(truncate) = %d, want 60", len([]rune(got)))
	}
}
