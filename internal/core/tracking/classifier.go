package tracking

import (
	"strings"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

// Classification is the outcome of classifying a single milestone.
type Classification struct {
	Stage domain.Stage
	Leg   domain.Leg
}

// Classifier maps milestone text (and an optional carrier status code) to a
// customs stage. It only reads its PatternSet and is safe for concurrent use.
type Classifier struct {
	set *PatternSet
}

// NewClassifier returns a Classifier backed by set.
func NewClassifier(set *PatternSet) *Classifier {
	return &Classifier{set: set}
}

// Classify resolves the stage of a milestone. Text rules are tried first, in
// stage order IN_PROGRESS, DELAY, CLEARED; the carrier status code is only
// consulted when no text rule matches. ok is false when neither resolves.
func (c *Classifier) Classify(text, code string) (Classification, bool) {
	text = strings.TrimSpace(text)

	stage, ok := c.stageFromText(text)
	if !ok {
		stage, ok = c.stageFromCode(code)
	}
	if !ok {
		return Classification{}, false
	}
	return Classification{Stage: stage, Leg: c.legFromText(text)}, true
}

func (c *Classifier) stageFromText(text string) (domain.Stage, bool) {
	if text == "" {
		return "", false
	}
	for _, sr := range c.set.stages {
		for _, r := range sr.rules {
			if r.match(text) {
				return sr.stage, true
			}
		}
	}
	return "", false
}

func (c *Classifier) stageFromCode(code string) (domain.Stage, bool) {
	code = normalizeCode(code)
	if code == "" {
		return "", false
	}
	if stage, ok := c.set.codes[code]; ok {
		return stage, true
	}
	for _, fam := range c.set.families {
		if fam.match(code) {
			return fam.stage, true
		}
	}
	return "", false
}

func (c *Classifier) legFromText(text string) domain.Leg {
	for _, lr := range c.set.legs {
		for _, re := range lr.rules {
			if re.MatchString(text) {
				return lr.leg
			}
		}
	}
	return domain.LegUnspecified
}
