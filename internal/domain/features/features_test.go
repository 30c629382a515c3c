package features

import "testing"

func TestExtractQualityTags(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want string
	}{
		{"loud", "[Parsed_volumedetect_0 @ 0x0] mean_volume: -2.0 dB\nmax_volume: -0.1 dB", "loud/clipping"},
		{"good", "mean_volume: -18.5 dB\nmax_volume: -4.0 dB", "good"},
		{"quiet", "mean_volume: -45.0 dB\nmax_volume: -20.0 dB", "quiet"},
		{"missing mean defaults quiet", "max_volume: -3.0 dB", "quiet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.log)
			if got.Quality != tt.want {
				t.Fatalf("Extract(%q).Quality = %q, want %q", tt.log, got.Quality, tt.want)
			}
		})
	}
}

func TestExtractParsesValues(t *testing.T) {
	m := Extract("mean_volume: -18.5 dB\nmax_volume: -4.25 dB")
	if m.MeanDB == nil || *m.MeanDB != -18.5 {
		t.Fatalf("MeanDB = %v, want -18.5", m.MeanDB)
	}
	if m.MaxDB == nil || *m.MaxDB != -4.25 {
		t.Fatalf("MaxDB = %v, want -4.25", m.MaxDB)
	}
}

func TestExtractMissingFieldsAbsent(t *testing.T) {
	m := Extract("no useful lines here")
	if m.MeanDB != nil {
		t.Fatalf("MeanDB should be nil when log has no mean_volume line")
	}
	if m.MaxDB != nil {
		t.Fatalf("MaxDB should be nil when log has no max_volume line")
	}
	if m.Quality != "quiet" {
		t.Fatalf("Quality = %q, want quiet (default -70dB tag)", m.Quality)
	}
}
