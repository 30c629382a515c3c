// Package xmeml renders a types.EditList as an FCP7 XMEML v5 sequence:
// a small tree of structs marshaled with encoding/xml, one clipitem per
// take, with a shared <file> declared once and referenced by id after.
package xmeml

import (
	"encoding/xml"
	"fmt"
	"math"
	"path/filepath"

	"github.com/takecut/silencecutter/internal/types"
)

type xmeml struct {
	XMLName  xml.Name `xml:"xmeml"`
	Version  string   `xml:"version,attr"`
	Sequence sequence `xml:"sequence"`
}

type sequence struct {
	Name     string `xml:"name"`
	Duration int    `xml:"duration"`
	Rate     rate   `xml:"rate"`
	Media    media  `xml:"media"`
}

type rate struct {
	Timebase int    `xml:"timebase"`
	NTSC     string `xml:"ntsc"`
}

type media struct {
	Video *track `xml:"video>track,omitempty"`
	Audio *track `xml:"audio>track"`
}

type track struct {
	ClipItems []clipItem `xml:"clipitem"`
}

type clipItem struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name"`
	Duration int    `xml:"duration"`
	Rate     rate   `xml:"rate"`
	Start    int    `xml:"start"`
	End      int    `xml:"end"`
	In       int    `xml:"in"`
	Out      int    `xml:"out"`
	File     *file  `xml:"file,omitempty"`
}

type file struct {
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name,omitempty"`
	PathURL  string     `xml:"pathurl,omitempty"`
	Rate     *rate      `xml:"rate,omitempty"`
	Duration int        `xml:"duration,omitempty"`
	Media    *fileMedia `xml:"media,omitempty"`
}

type fileMedia struct {
	Video *fileVideo `xml:"video,omitempty"`
	Audio fileAudio  `xml:"audio"`
}

type fileVideo struct {
	Samples fileVideoSamples `xml:"samplecharacteristics"`
}

type fileVideoSamples struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
}

type fileAudio struct {
	Samples fileAudioSamples `xml:"samplecharacteristics"`
}

type fileAudioSamples struct {
	Depth      int `xml:"depth"`
	SampleRate int `xml:"samplerate"`
}

// Render builds the XMEML v5 document for the edit list. hasVideo controls
// whether a <video> track is emitted; callers decide it from the source
// file's extension.
func Render(el types.EditList, fps int, hasVideo bool, sourcePath string) ([]byte, error) {
	totalFrames := 0
	for _, e := range el.BestTakes {
		totalFrames += frames(e.TimelineEnd, fps) - frames(e.TimelineStart, fps)
	}

	r := rate{Timebase: fps, NTSC: "FALSE"}
	audioTrack := &track{}
	var videoTrack *track
	if hasVideo {
		videoTrack = &track{}
	}

	var sharedFile *file
	running := 0
	for i, e := range el.BestTakes {
		in := frames(e.Segment.Start, fps)
		out := frames(e.Segment.End, fps)
		start := running
		end := running + (out - in)
		running = end

		ci := clipItem{
			ID:       fmt.Sprintf("clipitem-%d", i+1),
			Name:     filepath.Base(sourcePath),
			Duration: totalFrames, // every clipitem carries the sequence total; legacy importers expect it
			Rate:     r,
			Start:    start,
			End:      end,
			In:       in,
			Out:      out,
		}
		if sharedFile == nil {
			sharedFile = buildFile(sourcePath, r, totalFrames, hasVideo)
			ci.File = sharedFile
		} else {
			ci.File = &file{ID: sharedFile.ID}
		}

		if hasVideo {
			videoTrack.ClipItems = append(videoTrack.ClipItems, ci)
		} else {
			audioTrack.ClipItems = append(audioTrack.ClipItems, ci)
		}
		// With a video source, each take also gets its own audio clipitem
		// referencing the same shared file, forming an A/V pair; an
		// audio-only source has just the one audio clipitem per take.
		if hasVideo {
			audioCI := ci
			audioCI.ID = fmt.Sprintf("clipitem-%d-a", i+1)
			audioCI.File = &file{ID: sharedFile.ID}
			audioTrack.ClipItems = append(audioTrack.ClipItems, audioCI)
		}
	}

	doc := xmeml{
		Version: "5",
		Sequence: sequence{
			Name:     filepath.Base(sourcePath) + " edit",
			Duration: totalFrames,
			Rate:     r,
			Media:    media{Video: videoTrack, Audio: audioTrack},
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("xmeml: marshal: %w", err)
	}
	header := []byte(xml.Header)
	return append(header, out...), nil
}

func buildFile(sourcePath string, r rate, totalFrames int, hasVideo bool) *file {
	f := &file{
		ID:       "file-1",
		Name:     filepath.Base(sourcePath),
		PathURL:  "file://" + filepath.ToSlash(sourcePath),
		Rate:     &r,
		Duration: totalFrames,
		Media: &fileMedia{
			Audio: fileAudio{Samples: fileAudioSamples{Depth: 16, SampleRate: 48000}},
		},
	}
	if hasVideo {
		f.Media.Video = &fileVideo{Samples: fileVideoSamples{Width: 1920, Height: 1080}}
	}
	return f
}

// frames converts seconds to an exact frame count via round(seconds*fps).
// Implemented as ceil(x-0.5) rather than floor(x+0.5) so an exact
// half-frame tie rounds down; all timecode outputs share this rule.
func frames(seconds float64, fps int) int {
	return int(math.Ceil(seconds*float64(fps) - 0.5))
}
