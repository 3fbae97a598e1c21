package domain

// Stage is the customs-lifecycle phase a milestone was recognised as.
type Stage string

const (
	StageInProgress Stage = "IN_PROGRESS"
	StageDelay      Stage = "DELAY"
	StageCleared    Stage = "CLEARED"
)

// Stages lists every stage in evaluation order.
var Stages = []Stage{StageInProgress, StageDelay, StageCleared}

// Priority breaks ties between events sharing a timestamp:
// progress (0) < delay (1) < cleared (2).
func (s Stage) Priority() int {
	switch s {
	case StageInProgress:
		return 0
	case StageDelay:
		return 1
	case StageCleared:
		return 2
	default:
		return 99
	}
}

// Valid reports whether s is one of the three known stages.
func (s Stage) Valid() bool {
	return s.Priority() < 99
}

// Leg distinguishes the international (import) leg of a shipment from the
// origin-side (export) leg.
type Leg string

const (
	LegUnspecified Leg = ""
	LegImport      Leg = "IMPORT"
	LegExport      Leg = "EXPORT"
)
