package tracking

import (
	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// NormalizeStats describes what happened to one payload during normalization.
type NormalizeStats struct {
	Shape      string `json:"shape,omitempty"`
	RawCount   int    `json:"raw_count"`
	Classified int    `json:"classified"`
	Dropped    int    `json:"dropped"`
	Regressed  bool   `json:"regressed"`
}

// Normalizer runs the adapter, classifier and timeline builder over a raw
// provider record. It holds no state besides the shared Classifier.
type Normalizer struct {
	classifier *Classifier
}

// NewNormalizer returns a Normalizer that classifies with c.
func NewNormalizer(c *Classifier) *Normalizer {
	return &Normalizer{classifier: c}
}

// Normalize converts raw into a canonical timeline.
func (n *Normalizer) Normalize(raw map[string]any) (domain.Timeline, NormalizeStats) {
	milestones := ExtractMilestones(raw)
	events := n.ClassifyAll(milestones)
	tl := BuildTimeline(events)

	return tl, NormalizeStats{
		Shape:      ShapeOf(raw),
		RawCount:   len(milestones),
		Classified: len(events),
		Dropped:    len(milestones) - len(events),
		Regressed:  tl.Regressed(),
	}
}

// ClassifyAll classifies each milestone and drops the ones that do not
// resolve to a stage.
func (n *Normalizer) ClassifyAll(milestones []domain.RawMilestone) []domain.ClassifiedEvent {
	out := make([]domain.ClassifiedEvent, 0, len(milestones))
	for _, m := range milestones {
		c, ok := n.classifier.Classify(m.Description, m.StatusCode)
		if !ok {
			continue
		}
		out = append(out, domain.ClassifiedEvent{
			Timestamp:   m.Time.UTC(),
			Stage:       c.Stage,
			Leg:         c.Leg,
			Description: m.Description,
			Location:    m.Location,
		})
	}
	return out
}
