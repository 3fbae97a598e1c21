package redis

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
)

func TestDecodeView_KeepsTimesAndDelays(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	cleared := start.Add(45 * time.Minute)
	summary := domain.Summary{
		InProgressAt: &start,
		ClearedAt:    &cleared,
		Delays:       []domain.Delay{{At: start.Add(15 * time.Minute), Hint: "Customs clearance information required"}},
	}
	summary.Recompute()

	data, err := sonic.Marshal(&ports.CustomsView{
		TrackingNumber: "RR1",
		Mode:           domain.ModeAny,
		Summary:        summary,
		RawCount:       3,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	view, err := decodeView(data)
	if err != nil {
		t.Fatalf("decodeView: %v", err)
	}
	if view.Summary.Status != domain.StatusCleared || view.Summary.DurationSec == nil || *view.Summary.DurationSec != 2700 {
		t.Errorf("unexpected summary: %+v", view.Summary)
	}
	if !view.Summary.ClearedAt.Equal(cleared) || len(view.Summary.Delays) != 1 {
		t.Errorf("unexpected round trip: %+v", view.Summary)
	}
}

func TestDecodeView_RejectsGarbage(t *testing.T) {
	for _, in := range []string{`not json`, `{}`} {
		if _, err := decodeView([]byte(in)); err == nil {
			t.Errorf("decodeView(%q) succeeded", in)
		}
	}
}

func TestKeys(t *testing.T) {
	if got := viewKey("RR1", 7); got != "customs:view:RR1:7" {
		t.Errorf("viewKey = %q", got)
	}
	if got := dedupKey("RR1:tracking_updated:ab"); got != "dedup:RR1:tracking_updated:ab" {
		t.Errorf("dedupKey = %q", got)
	}
}
