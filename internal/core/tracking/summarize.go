package tracking

import (
	"time"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// Summarize derives the customs summary of a timeline.
//
// In ModeImportFiltered only IMPORT-leg events qualify, and a delay followed
// by a later qualifying clearance is treated as resolved. When a clearance is
// known but no progress event is, the start is backfilled from the timeline.
// An unknown mode returns domain.ErrInvalidMode.
func Summarize(tl domain.Timeline, mode domain.SummaryMode) (domain.Summary, error) {
	if err := mode.Validate(); err != nil {
		return domain.Summary{}, err
	}

	qualifies := func(e domain.ClassifiedEvent) bool {
		return mode == domain.ModeAny || e.Leg == domain.LegImport
	}

	s := domain.Summary{Delays: []domain.Delay{}}
	clearedIdx := -1
	for i, e := range tl {
		if !qualifies(e) {
			continue
		}
		switch e.Stage {
		case domain.StageInProgress:
			if s.InProgressAt == nil {
				s.InProgressAt = timePtr(e.Timestamp)
			}
		case domain.StageCleared:
			if clearedIdx < 0 {
				clearedIdx = i
				s.ClearedAt = timePtr(e.Timestamp)
			}
		}
	}

	for _, e := range tl {
		if e.Stage != domain.StageDelay || !qualifies(e) {
			continue
		}
		if mode == domain.ModeImportFiltered && clearedAfter(tl, e.Timestamp) {
			continue
		}
		s.Delays = append(s.Delays, domain.Delay{
			At:   e.Timestamp,
			Hint: domain.Truncate(e.Description, domain.DelayHintLimit),
		})
	}

	if s.ClearedAt != nil && s.InProgressAt == nil && len(tl) > 0 {
		start := tl[0].Timestamp
		if mode == domain.ModeImportFiltered && clearedIdx > 0 {
			start = tl[clearedIdx-1].Timestamp
		}
		s.InProgressAt = timePtr(start)
	}

	s.Recompute()
	return s, nil
}

// clearedAfter reports whether an IMPORT-leg CLEARED event exists strictly
// after at.
func clearedAfter(tl domain.Timeline, at time.Time) bool {
	for _, e := range tl {
		if e.Stage == domain.StageCleared && e.Leg == domain.LegImport && e.Timestamp.After(at) {
			return true
		}
	}
	return false
}

func timePtr(t time.Time) *time.Time {
	return &t
}
