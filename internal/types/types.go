// Package types holds the plain data model shared across the take-selection
// pipeline: segments, groups, scores, and the edit list built from them.
package types

// AudioMetrics is the coarse loudness read-out for one segment.
type AudioMetrics struct {
	MeanDB  *float64 `json:"mean_db,omitempty"`
	MaxDB   *float64 `json:"max_db,omitempty"`
	Quality string   `json:"quality"` // "loud/clipping" | "good" | "quiet"
}

// Chunk is a timestamped slice of a transcription.
type Chunk struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the speech-to-text result attached to a segment.
type Transcription struct {
	Text   string  `json:"text"`
	Chunks []Chunk `json:"chunks,omitempty"`
}

// AIScores are the oracle's per-take evaluation, each field in [0, 10].
type AIScores struct {
	AudioQuality float64 `json:"audio_quality"`
	Content      float64 `json:"content"`
	Emotion      float64 `json:"emotion"`
	Overall      float64 `json:"overall"`
	Comment      string  `json:"comment"`
}

// Segment is a contiguous speech interval detected between two silences.
type Segment struct {
	Index         int           `json:"index"`
	Start         float64       `json:"start"`
	End           float64       `json:"end"`
	Duration      float64       `json:"duration"`
	AudioMetrics  AudioMetrics  `json:"audio_metrics"`
	Transcription Transcription `json:"transcription"`
	AIScores      *AIScores     `json:"ai_scores,omitempty"`
	IsBest        bool          `json:"is_best"`
}

// Group clusters together segments believed to be same-line takes.
type Group struct {
	GroupID     int       `json:"group_id"`
	Takes       []Segment `json:"takes"`
	TextSummary string    `json:"text_summary"`
}

// TimelineEntry is one placed take on the assembled output timeline.
type TimelineEntry struct {
	GroupID       int     `json:"group_id"`
	Segment       Segment `json:"segment"`
	TimelineStart float64 `json:"timeline_start"`
	TimelineEnd   float64 `json:"timeline_end"`
}

// EditList is the current edit decision: a group order plus the resolved
// best take per group and the timeline built from them.
type EditList struct {
	SuggestedOrder []int           `json:"suggested_order"`
	BestTakes      []TimelineEntry `json:"best_takes"`
	FinalDuration  float64         `json:"final_duration"`
	TotalDuration  float64         `json:"total_duration"`
}

// TakeEvaluation is the oracle's verdict for one take within a group.
type TakeEvaluation struct {
	SegmentIndex int     `json:"segment_index"`
	AudioQuality float64 `json:"audio_quality"`
	Content      float64 `json:"content"`
	Emotion      float64 `json:"emotion"`
	Overall      float64 `json:"overall"`
	Comment      string  `json:"comment"`
}

// GroupEvaluation is the oracle's verdict for one group.
type GroupEvaluation struct {
	GroupID       int              `json:"group_id"`
	Takes         []TakeEvaluation `json:"takes"`
	BestTakeIndex int              `json:"best_take_index"`
	Reason        string           `json:"reason"`
}

// Evaluation is the full parsed reply from the scoring oracle.
type Evaluation struct {
	Evaluations    []GroupEvaluation `json:"evaluations"`
	SuggestedOrder []int             `json:"suggested_order"`
	OverallNotes   string            `json:"overall_notes"`
}
