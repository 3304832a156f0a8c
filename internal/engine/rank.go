package engine

import (
	"sort"

	"github.com/mkaline/recall/internal/model"
)

// ScoredMemory is one ranked result with its per-signal sub-scores retained
// for transparency.
type ScoredMemory struct {
	Memory     *model.Memory `json:"memory"`
	Score      float64       `json:"score"`
	Semantic   float64       `json:"semantic"`
	Lexical    float64       `json:"lexical"`
	GraphBoost float64       `json:"graph_boost"`
}

// GraphBoost converts a hop distance into a score boost. Distance 0 earns
// nothing (no reward for being the seed itself); within the bound the boost
// decays linearly with hop count; beyond it the boost is 0.
func GraphBoost(distance, maxHops int, maxBoost float64) float64 {
	if distance < 1 || distance > maxHops {
		return 0
	}
	return maxBoost / float64(distance)
}

// Rank blends semantic similarity, BM25 lexical score, and graph proximity
// into a combined score per candidate, sorted strictly descending. The sort
// is stable, so ties preserve input order. Semantic scores are supplied by
// the similarity collaborator; seeds anchor the graph traversal.
func Rank(candidates []*model.Memory, semantic map[string]float64, query string, seeds []string, p model.Params) []ScoredMemory {
	if len(candidates) == 0 {
		return nil
	}
	p = p.Clamped()

	docs := make(map[string]string, len(candidates))
	for _, m := range candidates {
		docs[m.ID] = m.Content
	}
	lexical := NewBM25().Scores(query, docs)

	maxLex := 0.0
	for _, s := range lexical {
		if s > maxLex {
			maxLex = s
		}
	}

	dist := BuildGraph(candidates).Distances(seeds, p.MaxHops)

	w := p.Weights
	results := make([]ScoredMemory, 0, len(candidates))
	for _, m := range candidates {
		sem := semantic[m.ID]
		lex := 0.0
		if maxLex > 0 {
			lex = lexical[m.ID] / maxLex
		}
		boost := 0.0
		if d, ok := dist[m.ID]; ok {
			boost = GraphBoost(d, p.MaxHops, p.MaxGraphBoost)
		}

		results = append(results, ScoredMemory{
			Memory:     m,
			Score:      w.Semantic*sem + w.Lexical*lex + w.Graph*boost,
			Semantic:   sem,
			Lexical:    lex,
			GraphBoost: boost,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
