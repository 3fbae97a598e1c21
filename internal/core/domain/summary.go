package domain

import (
	"errors"
	"fmt"
	"time"
)

// DelayHintLimit bounds the description excerpt rendered for a delay.
const DelayHintLimit = 140

// SummaryStatus is the shipment-level customs phase.
type SummaryStatus string

const (
	StatusUnknown    SummaryStatus = "UNKNOWN"
	StatusInProgress SummaryStatus = "IN_PROGRESS"
	StatusCleared    SummaryStatus = "CLEARED"
	// StatusPreCustoms means milestones were reported but none of them is a
	// customs milestone yet.
	StatusPreCustoms SummaryStatus = "PRE_CUSTOMS"
)

// SummaryMode selects which events take part in a summary.
type SummaryMode string

const (
	ModeAny            SummaryMode = "any"
	ModeImportFiltered SummaryMode = "import_filtered"
)

var ErrInvalidMode = errors.New("invalid summary mode")

// ParseSummaryMode converts s into a SummaryMode, rejecting unknown values.
func ParseSummaryMode(s string) (SummaryMode, error) {
	m := SummaryMode(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate returns ErrInvalidMode for anything other than the known modes.
func (m SummaryMode) Validate() error {
	switch m {
	case ModeAny, ModeImportFiltered:
		return nil
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidMode, string(m), ModeAny, ModeImportFiltered)
	}
}

// Delay is a single delay occurrence within a summary.
type Delay struct {
	At   time.Time `json:"at"   bson:"at"`
	Hint string    `json:"hint" bson:"hint"`
}

// Summary is the derived customs status of one shipment. It is always
// recomputable from a Timeline.
type Summary struct {
	Status       SummaryStatus `json:"status"         bson:"status"`
	InProgressAt *time.Time    `json:"in_progress_at" bson:"in_progress_at"`
	ClearedAt    *time.Time    `json:"cleared_at"     bson:"cleared_at"`
	HasDelay     bool          `json:"has_delay"      bson:"has_delay"`
	Delays       []Delay       `json:"delays"         bson:"delays"`
	DurationSec  *int64        `json:"duration_sec"   bson:"duration_sec"`
}

// Recompute derives Status, HasDelay and DurationSec from the timestamps and
// delays already set on s.
func (s *Summary) Recompute() {
	if s.Delays == nil {
		s.Delays = []Delay{}
	}
	s.HasDelay = len(s.Delays) > 0

	s.DurationSec = nil
	if s.InProgressAt != nil && s.ClearedAt != nil {
		d := int64(s.ClearedAt.Sub(*s.InProgressAt) / time.Second)
		s.DurationSec = &d
	}

	switch {
	case s.ClearedAt != nil:
		s.Status = StatusCleared
	case s.InProgressAt != nil:
		s.Status = StatusInProgress
	case s.Status == StatusPreCustoms:
	default:
		s.Status = StatusUnknown
	}
}

// WithPreCustoms upgrades UNKNOWN to PRE_CUSTOMS when rawCount milestones were
// reported but none classified.
func (s Summary) WithPreCustoms(rawCount int) Summary {
	if s.Status == StatusUnknown && rawCount > 0 {
		s.Status = StatusPreCustoms
	}
	return s
}

// MergeSummary applies incoming on top of stored. A stored cleared_at is never
// replaced by an earlier or missing one.
func MergeSummary(stored *Summary, incoming Summary) Summary {
	out := incoming
	out.Delays = append([]Delay(nil), incoming.Delays...)
	if stored == nil || stored.ClearedAt == nil {
		out.Recompute()
		return out
	}

	if out.ClearedAt == nil || out.ClearedAt.Before(*stored.ClearedAt) {
		cleared := *stored.ClearedAt
		out.ClearedAt = &cleared
		if out.InProgressAt == nil && stored.InProgressAt != nil {
			start := *stored.InProgressAt
			out.InProgressAt = &start
		}
		if out.InProgressAt != nil && out.InProgressAt.After(cleared) {
			out.InProgressAt = nil
			if stored.InProgressAt != nil {
				start := *stored.InProgressAt
				out.InProgressAt = &start
			}
		}
	}
	out.Recompute()
	return out
}
