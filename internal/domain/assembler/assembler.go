// Package assembler applies the oracle's evaluation to a group list and
// builds the edit-list timeline. Scores and best-take flags may be
// re-applied after a user override; rebuilding the timeline from the same
// state always yields the same result.
package assembler

import (
	"math"

	"github.com/takecut/silencecutter/internal/types"
)

// Assembler holds the group list and the current suggested order, and
// rebuilds types.EditList deterministically from them on demand.
type Assembler struct {
	groups         []types.Group
	suggestedOrder []int
	totalDuration  float64
}

// New builds an Assembler over the grouper's output. Group order and
// segment indices are never reshuffled after this point.
func New(groups []types.Group, totalDuration float64) *Assembler {
	a := &Assembler{groups: cloneGroups(groups), totalDuration: totalDuration}
	a.suggestedOrder = identityOrder(groups)
	return a
}

// Groups returns the assembler's current group list (with any ai_scores
// and is_best flags already applied).
func (a *Assembler) Groups() []types.Group {
	return a.groups
}

// ApplyEvaluation attaches the oracle's per-take scores to their matching
// segments, sets is_best on exactly one member of each group the evaluation
// names whose best_take_index resolves to a member (other groups keep their
// flags unchanged), and adopts the oracle's suggested group order (falling
// back to the identity order on an empty/missing one).
func (a *Assembler) ApplyEvaluation(eval types.Evaluation) {
	scoresBySegment := make(map[int]types.AIScores)
	bestIdxByGroup := make(map[int]int)
	for _, ge := range eval.Evaluations {
		for _, te := range ge.Takes {
			scoresBySegment[te.SegmentIndex] = types.AIScores{
				AudioQuality: te.AudioQuality,
				Content:      te.Content,
				Emotion:      te.Emotion,
				Overall:      te.Overall,
				Comment:      te.Comment,
			}
		}
		bestIdxByGroup[ge.GroupID] = ge.BestTakeIndex
	}

	for gi := range a.groups {
		g := &a.groups[gi]
		for ti := range g.Takes {
			if sc, ok := scoresBySegment[g.Takes[ti].Index]; ok {
				scCopy := sc
				g.Takes[ti].AIScores = &scCopy
			}
		}
		bestIdx, ok := bestIdxByGroup[g.GroupID]
		if !ok {
			continue
		}
		applyBestTakeIndex(g, bestIdx)
	}

	if len(eval.SuggestedOrder) > 0 {
		a.suggestedOrder = append([]int(nil), eval.SuggestedOrder...)
	} else {
		a.suggestedOrder = identityOrder(a.groups)
	}
}

// applyBestTakeIndex interprets bestIdx as an index within the group's
// takes list; when out of range it is taken verbatim as a global segment
// index, a compatibility fallback for oracle replies that answer with the
// segment number instead.
func applyBestTakeIndex(g *types.Group, bestIdx int) {
	target := -1
	if bestIdx >= 0 && bestIdx < len(g.Takes) {
		target = bestIdx
	} else {
		for ti, tk := range g.Takes {
			if tk.Index == bestIdx {
				target = ti
				break
			}
		}
	}
	if target == -1 {
		return
	}
	for ti := range g.Takes {
		g.Takes[ti].IsBest = ti == target
	}
}

// SelectTake is the user-override entry point: set is_best on the given
// segment within the given group, clear it on its siblings, and leave
// suggested_order untouched. An unknown group or segment index is a
// silent no-op. Calling it twice with the same arguments is idempotent.
func (a *Assembler) SelectTake(groupID, segmentIndex int) {
	for gi := range a.groups {
		g := &a.groups[gi]
		if g.GroupID != groupID {
			continue
		}
		found := -1
		for ti, tk := range g.Takes {
			if tk.Index == segmentIndex {
				found = ti
				break
			}
		}
		if found == -1 {
			return
		}
		for ti := range g.Takes {
			g.Takes[ti].IsBest = ti == found
		}
		return
	}
}

// BuildEditList rebuilds best_takes and the timeline from (groups,
// suggested_order, is_best). Groups with no best take are skipped
// silently; the rebuild is deterministic and idempotent.
func (a *Assembler) BuildEditList() types.EditList {
	byID := make(map[int]*types.Group, len(a.groups))
	for gi := range a.groups {
		byID[a.groups[gi].GroupID] = &a.groups[gi]
	}

	var entries []types.TimelineEntry
	running := 0.0
	for _, gid := range a.suggestedOrder {
		g, ok := byID[gid]
		if !ok {
			continue
		}
		best := bestOf(g)
		if best == nil {
			continue
		}
		start := round3(running)
		end := round3(running + best.Duration)
		running = end
		entries = append(entries, types.TimelineEntry{
			GroupID:       gid,
			Segment:       *best,
			TimelineStart: start,
			TimelineEnd:   end,
		})
	}

	return types.EditList{
		SuggestedOrder: append([]int(nil), a.suggestedOrder...),
		BestTakes:      entries,
		FinalDuration:  round3(running),
		TotalDuration:  round3(a.totalDuration),
	}
}

func bestOf(g *types.Group) *types.Segment {
	for ti := range g.Takes {
		if g.Takes[ti].IsBest {
			return &g.Takes[ti]
		}
	}
	return nil
}

func identityOrder(groups []types.Group) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.GroupID
	}
	return out
}

func cloneGroups(groups []types.Group) []types.Group {
	out := make([]types.Group, len(groups))
	for i, g := range groups {
		out[i] = g
		out[i].Takes = append([]types.Segment(nil), g.Takes...)
	}
	return out
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
