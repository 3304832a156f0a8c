package engine

import (
	"testing"
	"time"

	"github.com/mkaline/recall/internal/model"
)

func agedMemory(importance, accessCount int, ageDays float64) *model.Memory {
	return &model.Memory{
		ID:          "m",
		Importance:  importance,
		AccessCount: accessCount,
		CreatedAt:   time.Now().Add(-time.Duration(ageDays*24) * time.Hour),
	}
}

func TestDecayHalfLife(t *testing.T) {
	// Importance 4, half-life 30 days, age exactly 30 days, zero accesses.
	m := agedMemory(4, 0, 30)
	if got := DecayImportance(m, time.Now(), 30); got != 2 {
		t.Errorf("decayed importance = %d, want 2", got)
	}
}

func TestDecayFoundationalExempt(t *testing.T) {
	m := agedMemory(5, 0, 10000)
	m.Type = model.TypeFoundational
	if got := DecayImportance(m, time.Now(), 30); got != 5 {
		t.Errorf("foundational decayed to %d, want unchanged 5", got)
	}
}

func TestDecayBounds(t *testing.T) {
	cases := []struct {
		name        string
		importance  int
		accessCount int
		ageDays     float64
	}{
		{"fresh", 5, 0, 0},
		{"ancient", 5, 0, 100000},
		{"negative accesses", 3, -7, 90},
		{"heavy access", 4, 500, 365},
		{"future created_at", 2, 0, -10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := agedMemory(c.importance, c.accessCount, c.ageDays)
			got := DecayImportance(m, time.Now(), 30)
			if got < 1 || got > c.importance {
				t.Errorf("decay(%+v) = %d, outside [1, %d]", c, got, c.importance)
			}
		})
	}
}

func TestDecayAccessResistance(t *testing.T) {
	// Same age, more accesses must never decay further.
	cold := agedMemory(5, 0, 60)
	warm := agedMemory(5, 5, 60)
	hot := agedMemory(5, 20, 60)
	capped := agedMemory(5, 10, 60)
	capped.CreatedAt = hot.CreatedAt

	now := time.Now()
	dCold := DecayImportance(cold, now, 30)
	dWarm := DecayImportance(warm, now, 30)
	dHot := DecayImportance(hot, now, 30)

	if dWarm < dCold || dHot < dWarm {
		t.Errorf("resistance not monotone: cold=%d warm=%d hot=%d", dCold, dWarm, dHot)
	}
	// 20 accesses saturate at the same discount as 10.
	if DecayImportance(capped, now, 30) != dHot {
		t.Error("resistance must saturate at 10 accesses")
	}
}

func TestDecayNeverIncreases(t *testing.T) {
	m := agedMemory(3, 1000, 1)
	if got := DecayImportance(m, time.Now(), 30); got > 3 {
		t.Errorf("decay increased importance: %d", got)
	}
}

func TestDecayZeroHalfLifeFallsBack(t *testing.T) {
	m := agedMemory(4, 0, 30)
	if got := DecayImportance(m, time.Now(), 0); got != 2 {
		t.Errorf("decay with zero half-life = %d, want default 30d behavior (2)", got)
	}
}
