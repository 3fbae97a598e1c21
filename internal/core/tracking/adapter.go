package tracking

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// payloadShape is one of the provider record layouts accreted over time.
// Each variant knows how to pull milestones out of its own layout.
type payloadShape interface {
	name() string
	milestones() []domain.RawMilestone
}

// codedArrays is the legacy layout: lists of {a: time, z: text, c: location}
// records under keys starting with "z".
type codedArrays struct {
	track map[string]any
}

// providerEvents is the layout with tracking.providers[].events[].
type providerEvents struct {
	info map[string]any
}

// latestEvent carries only the most recent event of the shipment.
type latestEvent struct {
	event  map[string]any
	legacy bool
}

// DecodePayload decodes a raw JSON provider record.
func DecodePayload(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return raw, nil
}

// ExtractMilestones detects the layout of raw and returns its milestones.
// Malformed items are skipped one by one; a nil or unknown record yields an
// empty slice.
func ExtractMilestones(raw map[string]any) []domain.RawMilestone {
	for _, shape := range detectShapes(raw) {
		if ms := shape.milestones(); len(ms) > 0 {
			return ms
		}
	}
	return []domain.RawMilestone{}
}

// ShapeOf names the first layout detected in raw, or "" when none is.
func ShapeOf(raw map[string]any) string {
	for _, shape := range detectShapes(raw) {
		if len(shape.milestones()) > 0 {
			return shape.name()
		}
	}
	return ""
}

// detectShapes sniffs distinguishing keys and returns the candidate variants
// in precedence order; the latest-event variant always comes last.
func detectShapes(raw map[string]any) []payloadShape {
	if len(raw) == 0 {
		return nil
	}
	var shapes []payloadShape

	info := raw
	if nested, ok := raw["track_info"].(map[string]any); ok {
		info = nested
	}
	if hasProviders(info) {
		shapes = append(shapes, providerEvents{info: info})
	}

	track := raw
	if nested, ok := raw["track"].(map[string]any); ok {
		track = nested
	}
	if hasCodedArrays(track) {
		shapes = append(shapes, codedArrays{track: track})
	}

	if ev, ok := info["latest_event"].(map[string]any); ok {
		shapes = append(shapes, latestEvent{event: ev})
	} else if ev, ok := track["z0"].(map[string]any); ok {
		shapes = append(shapes, latestEvent{event: ev, legacy: true})
	}
	return shapes
}

func hasProviders(info map[string]any) bool {
	if tr, ok := info["tracking"].(map[string]any); ok {
		_, ok := tr["providers"].([]any)
		return ok
	}
	_, ok := info["providers"].([]any)
	return ok
}

func hasCodedArrays(track map[string]any) bool {
	for k, v := range track {
		if _, ok := v.([]any); ok && strings.HasPrefix(k, "z") {
			return true
		}
	}
	return false
}

func (codedArrays) name() string { return "coded_arrays" }

func (s codedArrays) milestones() []domain.RawMilestone {
	keys := make([]string, 0, len(s.track))
	for k, v := range s.track {
		if _, ok := v.([]any); ok && strings.HasPrefix(k, "z") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var out []domain.RawMilestone
	for _, k := range keys {
		for _, item := range s.track[k].([]any) {
			if m, ok := codedRecord(item); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func (providerEvents) name() string { return "provider_events" }

func (s providerEvents) milestones() []domain.RawMilestone {
	providers, _ := s.info["providers"].([]any)
	if tr, ok := s.info["tracking"].(map[string]any); ok {
		providers, _ = tr["providers"].([]any)
	}

	var out []domain.RawMilestone
	for _, p := range providers {
		block, ok := p.(map[string]any)
		if !ok {
			continue
		}
		events, _ := block["events"].([]any)
		for _, ev := range events {
			if m, ok := providerEvent(ev); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func (latestEvent) name() string { return "latest_event" }

func (s latestEvent) milestones() []domain.RawMilestone {
	var (
		m  domain.RawMilestone
		ok bool
	)
	if s.legacy {
		m, ok = codedRecord(s.event)
	} else {
		m, ok = providerEvent(s.event)
	}
	if !ok {
		return nil
	}
	return []domain.RawMilestone{m}
}

func codedRecord(item any) (domain.RawMilestone, bool) {
	rec, ok := item.(map[string]any)
	if !ok {
		return domain.RawMilestone{}, false
	}
	desc, ok := rec["z"].(string)
	if !ok {
		return domain.RawMilestone{}, false
	}
	ts, ok := parseTimestamp(stringField(rec, "a"))
	if !ok {
		return domain.RawMilestone{}, false
	}
	return domain.RawMilestone{
		Time:        ts,
		Description: collapseSpace(desc),
		Location:    collapseSpace(stringField(rec, "c")),
	}, true
}

func providerEvent(item any) (domain.RawMilestone, bool) {
	ev, ok := item.(map[string]any)
	if !ok {
		return domain.RawMilestone{}, false
	}

	desc, ok := ev["description"].(string)
	if !ok || strings.TrimSpace(desc) == "" {
		tr, _ := ev["description_translation"].(map[string]any)
		if alt, altOK := tr["description"].(string); altOK {
			desc, ok = alt, true
		}
	}
	if !ok {
		return domain.RawMilestone{}, false
	}

	ts, ok := eventTime(ev)
	if !ok {
		return domain.RawMilestone{}, false
	}

	code := stringField(ev, "sub_status")
	if code == "" {
		code = stringField(ev, "stage")
	}

	return domain.RawMilestone{
		Time:        ts,
		Description: collapseSpace(desc),
		StatusCode:  strings.TrimSpace(code),
		Location:    eventLocation(ev),
	}, true
}

// eventTime applies the decoding precedence: a fully qualified string, then
// the structured date/time/zone triple.
func eventTime(ev map[string]any) (time.Time, bool) {
	for _, key := range []string{"time_iso", "time_utc"} {
		if ts, ok := parseTimestamp(stringField(ev, key)); ok {
			return ts, true
		}
	}
	if raw, ok := ev["time_raw"].(map[string]any); ok {
		return parseTriple(raw)
	}
	return time.Time{}, false
}

func eventLocation(ev map[string]any) string {
	if loc := collapseSpace(stringField(ev, "location")); loc != "" {
		return loc
	}
	addr, ok := ev["address"].(map[string]any)
	if !ok {
		return ""
	}
	var parts []string
	for _, k := range []string{"city", "state", "country"} {
		if v := collapseSpace(stringField(addr, k)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
