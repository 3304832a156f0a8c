package model

// Weights blend the three retrieval signals. They are renormalized to sum
// to 1 before use, so callers may pass any non-negative values.
type Weights struct {
	Semantic float64 `json:"semantic"`
	Lexical  float64 `json:"lexical"`
	Graph    float64 `json:"graph"`
}

// Normalized returns the weights scaled to sum to 1. A zero or negative
// total falls back to the defaults.
func (w Weights) Normalized() Weights {
	if w.Semantic < 0 {
		w.Semantic = 0
	}
	if w.Lexical < 0 {
		w.Lexical = 0
	}
	if w.Graph < 0 {
		w.Graph = 0
	}
	total := w.Semantic + w.Lexical + w.Graph
	if total <= 0 {
		return DefaultWeights
	}
	return Weights{
		Semantic: w.Semantic / total,
		Lexical:  w.Lexical / total,
		Graph:    w.Graph / total,
	}
}

// DefaultWeights is the stock semantic/lexical/graph blend.
var DefaultWeights = Weights{Semantic: 0.6, Lexical: 0.3, Graph: 0.1}

// Params holds the per-call tuning knobs consumed by the engine. Out of
// range values are clamped to the nearest valid bound, never rejected.
type Params struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	HalfLifeDays        float64 `json:"half_life_days"`
	MinConfidence       float64 `json:"min_confidence"`
	Weights             Weights `json:"weights"`
	MaxHops             int     `json:"max_hops"`
	MaxGraphBoost       float64 `json:"max_graph_boost"`
	MaxCandidates       int     `json:"max_candidates"`
}

// DefaultParams returns the stock engine parameters.
func DefaultParams() Params {
	return Params{
		SimilarityThreshold: 0.85,
		HalfLifeDays:        30,
		MinConfidence:       0.6,
		Weights:             DefaultWeights,
		MaxHops:             2,
		MaxGraphBoost:       1.0,
		MaxCandidates:       500,
	}
}

// Clamped returns a copy with every field forced into its valid range.
func (p Params) Clamped() Params {
	if p.SimilarityThreshold < 0.5 {
		p.SimilarityThreshold = 0.5
	}
	if p.SimilarityThreshold > 0.99 {
		p.SimilarityThreshold = 0.99
	}
	if p.HalfLifeDays <= 0 {
		p.HalfLifeDays = 30
	}
	if p.MinConfidence < 0 {
		p.MinConfidence = 0
	}
	if p.MinConfidence > 1 {
		p.MinConfidence = 1
	}
	p.Weights = p.Weights.Normalized()
	if p.MaxHops < 1 {
		p.MaxHops = 1
	}
	if p.MaxGraphBoost < 0 {
		p.MaxGraphBoost = 0
	}
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = 500
	}
	return p
}
