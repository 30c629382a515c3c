package grouper

import (
	"testing"

	"github.com/takecut/silencecutter/internal/types"
)

func seg(i int, text string) types.Segment {
	return types.Segment{Index: i, Transcription: types.Transcription{Text: text}}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"hello", "hello", 1.0},
		{"", "", 1.0},
		{"hello", "", 0.0},
		{"", "hello", 0.0},
		{"Hello World", "hello world", 1.0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestGroupNearDuplicateTakes(t *testing.T) {
	segments := []types.Segment{
		seg(0, "hello world"),
		seg(1, "hello world."),
		seg(2, "completely different"),
	}
	groups := Group(segments, 0.6)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if len(groups[0].Takes) != 2 || groups[0].Takes[0].Index != 0 || groups[0].Takes[1].Index != 1 {
		t.Fatalf("group 0 takes = %+v, want indices [0 1]", groups[0].Takes)
	}
	if groups[0].TextSummary != "hello world." {
		t.Fatalf("group 0 summary = %q, want %q", groups[0].TextSummary, "hello world.")
	}
	if len(groups[1].Takes) != 1 || groups[1].Takes[0].Index != 2 {
		t.Fatalf("group 1 takes = %+v, want index [2]", groups[1].Takes)
	}
}

func TestGroupEveryMemberUniquelyAssigned(t *testing.T) {
	segments := []types.Segment{
		seg(0, "take one"),
		seg(1, "take two"),
		seg(2, "take one"),
		seg(3, "take three"),
	}
	groups := Group(segments, 0.99)
	seen := map[int]bool{}
	for _, g := range groups {
		if len(g.Takes) == 0 {
			t.Fatalf("group %d is empty", g.GroupID)
		}
		for _, tk := range g.Takes {
			if seen[tk.Index] {
				t.Fatalf("segment %d assigned to more than one group", tk.Index)
			}
			seen[tk.Index] = true
		}
	}
	for i := range segments {
		if !seen[i] {
			t.Fatalf("segment %d not assigned to any group", i)
		}
	}
}

func TestGroupEmpty(t *testing.T) {
	if got := Group(nil, 0.6); got != nil {
		t.Fatalf("Group(nil) = %v, want nil", got)
	}
}
