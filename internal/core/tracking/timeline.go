package tracking

import (
	"cmp"
	"slices"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// BuildTimeline turns classified events into a canonical timeline: sorted by
// (timestamp, stage priority), deduplicated on the event dedup key, and
// re-sorted when the first CLEARED event precedes the first IN_PROGRESS one.
// The input slice is left untouched.
func BuildTimeline(events []domain.ClassifiedEvent) domain.Timeline {
	out := make(domain.Timeline, 0, len(events))
	if len(events) == 0 {
		return out
	}

	sorted := slices.Clone(events)
	sortEvents(sorted)

	seen := make(map[string]struct{}, len(sorted))
	for _, ev := range sorted {
		key := ev.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ev)
	}

	// Regression guard. It can only reorder what is present; a missing
	// IN_PROGRESS event is never synthesized.
	if out.Regressed() {
		sortEvents(out)
	}
	return out
}

func sortEvents(events []domain.ClassifiedEvent) {
	slices.SortStableFunc(events, compareEvents)
}

func compareEvents(a, b domain.ClassifiedEvent) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.Stage.Priority(), b.Stage.Priority())
}
