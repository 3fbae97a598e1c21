package domain

import (
	"strings"
	"time"
)

// DedupDescriptionLimit bounds how much of a description takes part in the
// dedup key.
const DedupDescriptionLimit = 160

// RawMilestone is one provider-reported tracking event, extracted from any of
// the supported payload shapes. It only lives for one ingestion call.
type RawMilestone struct {
	Time        time.Time
	Description string
	StatusCode  string // optional carrier status code
	Location    string // optional
}

// ClassifiedEvent is a milestone that was recognised as a customs stage.
type ClassifiedEvent struct {
	Timestamp   time.Time `json:"ts"                 bson:"ts"`
	Stage       Stage     `json:"stage"              bson:"stage"`
	Leg         Leg       `json:"leg,omitempty"      bson:"leg,omitempty"`
	Description string    `json:"desc"               bson:"description"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty"`
}

// DedupKey is the stable identity of an event: UTC timestamp, stage and the
// first DedupDescriptionLimit runes of the description.
func (e ClassifiedEvent) DedupKey() string {
	var b strings.Builder
	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339Nano))
	b.WriteByte('|')
	b.WriteString(string(e.Stage))
	b.WriteByte('|')
	b.WriteString(Truncate(e.Description, DedupDescriptionLimit))
	return b.String()
}

// Before reports whether e sorts ahead of o by (timestamp, stage priority).
func (e ClassifiedEvent) Before(o ClassifiedEvent) bool {
	if !e.Timestamp.Equal(o.Timestamp) {
		return e.Timestamp.Before(o.Timestamp)
	}
	return e.Stage.Priority() < o.Stage.Priority()
}

// Timeline is the canonical, ordered and deduplicated event list of one shipment.
type Timeline []ClassifiedEvent

// First returns the earliest event of the given stage.
func (t Timeline) First(stage Stage) (ClassifiedEvent, bool) {
	for _, e := range t {
		if e.Stage == stage {
			return e, true
		}
	}
	return ClassifiedEvent{}, false
}

// Regressed reports whether the first CLEARED event is older than the first
// IN_PROGRESS event.
func (t Timeline) Regressed() bool {
	in, okIn := t.First(StageInProgress)
	cl, okCl := t.First(StageCleared)
	return okIn && okCl && cl.Timestamp.Before(in.Timestamp)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
