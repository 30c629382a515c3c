package xmeml

import (
	"strings"
	"testing"

	"github.com/takecut/silencecutter/internal/types"
)

func TestFrames(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     int
		want    int
	}{
		{1.000, 25, 25},
		{2.500, 25, 62},
	}
	for _, tt := range tests {
		if got := frames(tt.seconds, tt.fps); got != tt.want {
			t.Errorf("frames(%v, %d) = %d, want %d", tt.seconds, tt.fps, got, tt.want)
		}
	}
}

func TestRenderFrameMath(t *testing.T) {
	el := types.EditList{
		BestTakes: []types.TimelineEntry{
			{
				GroupID:       0,
				Segment:       types.Segment{Start: 1.000, End: 2.500, Duration: 1.500},
				TimelineStart: 0,
				TimelineEnd:   1.500,
			},
		},
	}
	out, err := Render(el, 25, false, "source.wav")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	for _, want := range []string{"<in>25</in>", "<out>62</out>", "<start>0</start>", "<end>37</end>"} {
		if !strings.Contains(s, want) {
			t.Errorf("rendered XMEML missing %q\n%s", want, s)
		}
	}
}

func TestRenderVideoTrackPresence(t *testing.T) {
	el := types.EditList{
		BestTakes: []types.TimelineEntry{
			{Segment: types.Segment{Start: 0, End: 1, Duration: 1}, TimelineStart: 0, TimelineEnd: 1},
		},
	}
	audioOnly, err := Render(el, 25, false, "a.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(audioOnly), "<video>") {
		t.Errorf("audio-only render should not contain a <video> track")
	}

	withVideo, err := Render(el, 25, true, "a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(withVideo), "<video>") {
		t.Errorf("video-source render should contain a <video> track")
	}
}
