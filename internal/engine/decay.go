package engine

import (
	"math"
	"time"

	"github.com/mkaline/recall/internal/model"
)

// Access resistance: every recorded access discounts the effective age,
// saturating at ten accesses for a maximum discount of half the age.
// Tunable constants, pinned by the decay tests.
const (
	accessSaturation    = 10.0
	maxAgeDiscount      = 0.5
	defaultHalfLifeDays = 30.0
	importanceFloor     = 1
)

// DecayImportance applies exponential half-life decay to a memory's
// importance as of the given time. The result is floored at 1 and never
// exceeds the original importance; foundational memories are returned
// unchanged. Total for any finite input, including extreme ages.
func DecayImportance(m *model.Memory, asOf time.Time, halfLifeDays float64) int {
	if m.IsFoundational() {
		return m.Importance
	}
	importance := model.ClampImportance(m.Importance)
	if halfLifeDays <= 0 {
		halfLifeDays = defaultHalfLifeDays
	}

	ageDays := asOf.Sub(m.CreatedAt).Hours() / 24
	if ageDays <= 0 {
		return importance
	}

	accesses := float64(m.AccessCount)
	if accesses < 0 {
		accesses = 0
	}
	resistance := accesses / accessSaturation
	if resistance > 1 {
		resistance = 1
	}
	effectiveAge := ageDays * (1 - resistance*maxAgeDiscount)

	decayed := float64(importance) * math.Pow(0.5, effectiveAge/halfLifeDays)
	result := int(math.Round(decayed))
	if result < importanceFloor {
		return importanceFloor
	}
	if result > importance {
		return importance
	}
	return result
}
