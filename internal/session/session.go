// Package session owns the single mutable value threaded through one
// pipeline run. Progress flows out to the UI on a bounded one-way channel;
// the UI reads an immutable snapshot rather than holding a back-reference
// into the live session.
package session

import (
	"github.com/takecut/silencecutter/internal/domain/assembler"
	"github.com/takecut/silencecutter/internal/types"
)

// State names one point in the per-run state machine.
type State string

const (
	Idle               State = "Idle"
	LoadingEngine      State = "LoadingEngine"
	Probing            State = "Probing"
	Segmenting         State = "Segmenting"
	Extracting         State = "Extracting"
	LoadingTranscriber State = "LoadingTranscriber"
	Transcribing       State = "Transcribing"
	Grouping           State = "Grouping"
	Scoring            State = "Scoring"
	Assembling         State = "Assembling"
	Ready              State = "Ready"
	Rendering          State = "Rendering"
	Done               State = "Done"
	Failed             State = "Failed"
)

// ProgressEvent is one update emitted on the Session's progress channel.
// Current/Total are set for indexed phases (Extracting, Transcribing);
// Percent is set for an adapter call's own 0-100 progress.
type ProgressEvent struct {
	State   State
	Current int
	Total   int
	Percent int
}

// Snapshot is the immutable view the UI reads once the session reaches
// Ready; it has no back-reference into the live Session.
type Snapshot struct {
	State         State
	SourcePath    string
	TotalDuration float64
	Groups        []types.Group
	EditList      types.EditList
	Err           error
}

// Session owns every component output for one run's duration. It is
// mutated only by the pipeline driver; progress callbacks read state but
// never write it, so there is no concurrent mutation to guard against.
type Session struct {
	state         State
	sourcePath    string
	totalDuration float64
	segments      []types.Segment
	groups        []types.Group
	assembler     *assembler.Assembler
	err           error

	progress chan ProgressEvent
}

// progressBuffer bounds the channel so a driver that never drains progress
// cannot block the pipeline indefinitely on a slow-reading UI.
const progressBuffer = 64

// New starts a session in the Idle state for the given source path.
func New(sourcePath string) *Session {
	return &Session{
		state:      Idle,
		sourcePath: sourcePath,
		progress:   make(chan ProgressEvent, progressBuffer),
	}
}

// Progress returns the read-only progress channel for the UI to drain.
func (s *Session) Progress() <-chan ProgressEvent { return s.progress }

// SetState transitions the session and emits a bare progress event for
// the new state.
func (s *Session) SetState(state State) {
	s.state = state
	s.emit(ProgressEvent{State: state})
}

// ReportIndexed emits an (i+1, N) progress update without changing state,
// for the per-segment loops in C/D.
func (s *Session) ReportIndexed(current, total int) {
	s.emit(ProgressEvent{State: s.state, Current: current, Total: total})
}

// ReportPercent emits an adapter's own 0-100 progress update without
// changing state.
func (s *Session) ReportPercent(pct int) {
	s.emit(ProgressEvent{State: s.state, Percent: pct})
}

func (s *Session) emit(ev ProgressEvent) {
	select {
	case s.progress <- ev:
	default:
		// Drop rather than block: the UI missing one progress tick is
		// harmless, blocking the pipeline on a slow reader is not.
	}
}

// SetTotalDuration records the source media's total duration once the
// silence-detect log has been parsed.
func (s *Session) SetTotalDuration(d float64) { s.totalDuration = d }

// SetSegments records the segmenter's output; segment indices are never
// reshuffled after this call.
func (s *Session) SetSegments(segs []types.Segment) { s.segments = segs }

// Segments returns the current segment list.
func (s *Session) Segments() []types.Segment { return s.segments }

// SetGroups records the grouper's output and initializes the assembler
// over it.
func (s *Session) SetGroups(groups []types.Group) {
	s.groups = groups
	s.assembler = assembler.New(groups, s.totalDuration)
}

// Assembler exposes the edit-list assembler for ApplyEvaluation,
// SelectTake, and BuildEditList calls.
func (s *Session) Assembler() *assembler.Assembler { return s.assembler }

// Fail transitions the session to Failed with a single human-readable
// cause; no partial outputs are offered for fatal errors.
func (s *Session) Fail(err error) {
	s.err = err
	s.SetState(Failed)
}

// SourcePath returns the source media path this session was opened for.
func (s *Session) SourcePath() string { return s.sourcePath }

// TotalDuration returns the source media's total duration in seconds.
func (s *Session) TotalDuration() float64 { return s.totalDuration }

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Snapshot returns an immutable view of the session's current state for
// the UI to read once Ready.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:         s.state,
		SourcePath:    s.sourcePath,
		TotalDuration: s.totalDuration,
		Err:           s.err,
	}
	if s.assembler != nil {
		live := s.assembler.Groups()
		snap.Groups = make([]types.Group, len(live))
		for i, g := range live {
			snap.Groups[i] = g
			snap.Groups[i].Takes = append([]types.Segment(nil), g.Takes...)
		}
		snap.EditList = s.assembler.BuildEditList()
	} else {
		snap.Groups = s.groups
	}
	return snap
}
