package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	set, err := DefaultPatternSet()
	require.NoError(t, err)
	return NewClassifier(set)
}

func event(at time.Time, stage domain.Stage, desc string) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{Timestamp: at, Stage: stage, Description: desc}
}

func importEvent(at time.Time, stage domain.Stage, desc string) domain.ClassifiedEvent {
	e := event(at, stage, desc)
	e.Leg = domain.LegImport
	return e
}

// codedPayload builds a legacy z1 payload from (offset, description) pairs.
func codedPayload(items ...any) map[string]any {
	var list []any
	for i := 0; i+1 < len(items); i += 2 {
		list = append(list, map[string]any{
			"a": t0.Add(items[i].(time.Duration)).Format("2006-01-02 15:04:05"),
			"z": items[i+1],
			"c": "Incheon",
		})
	}
	return map[string]any{"z1": list}
}
