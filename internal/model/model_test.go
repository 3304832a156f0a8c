package model

import "testing"

func TestClampImportance(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {3, 3}, {5, 5}, {9, 5},
	}
	for _, c := range cases {
		if got := ClampImportance(c.in); got != c.want {
			t.Errorf("ClampImportance(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestWeightsNormalized(t *testing.T) {
	w := Weights{Semantic: 3, Lexical: 1, Graph: 1}.Normalized()
	total := w.Semantic + w.Lexical + w.Graph
	if total < 0.999 || total > 1.001 {
		t.Errorf("normalized weights sum = %f, want 1", total)
	}
	if w.Semantic != 0.6 {
		t.Errorf("Semantic = %f, want 0.6", w.Semantic)
	}
}

func TestWeightsNormalizedZeroTotal(t *testing.T) {
	w := Weights{}.Normalized()
	if w != DefaultWeights {
		t.Errorf("zero weights normalized to %+v, want defaults", w)
	}
}

func TestParamsClamped(t *testing.T) {
	p := Params{
		SimilarityThreshold: 0.1,
		HalfLifeDays:        -5,
		MinConfidence:       2,
		MaxHops:             0,
		MaxGraphBoost:       -1,
	}.Clamped()

	if p.SimilarityThreshold != 0.5 {
		t.Errorf("SimilarityThreshold = %f, want 0.5", p.SimilarityThreshold)
	}
	if p.HalfLifeDays != 30 {
		t.Errorf("HalfLifeDays = %f, want 30", p.HalfLifeDays)
	}
	if p.MinConfidence != 1 {
		t.Errorf("MinConfidence = %f, want 1", p.MinConfidence)
	}
	if p.MaxHops != 1 {
		t.Errorf("MaxHops = %d, want 1", p.MaxHops)
	}
	if p.MaxGraphBoost != 0 {
		t.Errorf("MaxGraphBoost = %f, want 0", p.MaxGraphBoost)
	}
	if p.MaxCandidates != 500 {
		t.Errorf("MaxCandidates = %d, want 500", p.MaxCandidates)
	}

	high := Params{SimilarityThreshold: 1.5}.Clamped()
	if high.SimilarityThreshold != 0.99 {
		t.Errorf("SimilarityThreshold = %f, want 0.99", high.SimilarityThreshold)
	}
}

func TestSharedTags(t *testing.T) {
	a := &Memory{Tags: []string{"frontend", "react", "build"}}
	b := &Memory{Tags: []string{"frontend", "build", "deploy"}}
	shared := a.SharedTags(b)
	if len(shared) != 2 {
		t.Fatalf("SharedTags = %v, want 2 entries", shared)
	}
}

func TestIsLive(t *testing.T) {
	m := &Memory{}
	if m.IsLive() {
		t.Error("memory with no valid_from must not be live")
	}
	now := m.CreatedAt
	m.ValidFrom = &now
	if !m.IsLive() {
		t.Error("memory with valid_from and no valid_until must be live")
	}
	m.ValidUntil = &now
	if m.IsLive() {
		t.Error("memory with valid_until must not be live")
	}
}
