// Package report builds the full JSON record of a pipeline run: source
// metadata, the timeline with scores, and per-group take detail including
// selection state.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/takecut/silencecutter/internal/types"
)

// Report is the full JSON record for one pipeline run.
type Report struct {
	Source   SourceInfo     `json:"source"`
	Groups   []types.Group  `json:"groups"`
	EditList types.EditList `json:"edit_list"`
}

// SourceInfo carries the input file path, its total duration, and the
// timeline frame rate.
type SourceInfo struct {
	Path          string  `json:"path"`
	TotalDuration float64 `json:"total_duration"`
	FPS           int     `json:"fps"`
}

// Build assembles a Report from the session's final state.
func Build(sourcePath string, fps int, groups []types.Group, editList types.EditList) Report {
	return Report{
		Source: SourceInfo{
			Path:          sourcePath,
			TotalDuration: editList.TotalDuration,
			FPS:           fps,
		},
		Groups:   groups,
		EditList: editList,
	}
}

// MarshalIndent serializes the report as two-space indented JSON.
func (r Report) MarshalIndent() ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: marshal: %w", err)
	}
	return b, nil
}
