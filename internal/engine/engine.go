// Package engine implements the memory retrieval and maintenance core:
// hybrid ranking, contradiction detection, consolidation clustering, and
// importance decay.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkaline/recall/internal/model"
)

// seedCount is how many top semantic matches anchor the graph traversal
// when the caller supplies no explicit seed set.
const seedCount = 5

// Mutator is the mutation half of the persistence collaborator. The
// maintenance executor only ever touches the store through it, so tests can
// prove dry-run performs no mutation.
type Mutator interface {
	SaveMemory(m *model.Memory) (string, error)
	UpdateImportance(id string, importance int) error
	DeleteMemory(id string) error
	Supersede(oldID, newID string) error
}

// Repository is the full persistence collaborator contract.
type Repository interface {
	ListMemories(limit int) ([]*model.Memory, error)
	AllVectors() (map[string][]float64, error)
	TouchMemory(id string) error
	Mutator
}

// Engine ties the ranking math and maintenance logic to its collaborators.
// Execution is single-threaded and cooperative; callers serialize access.
type Engine struct {
	Repo     Repository
	Embedder Embedder
	Judge    ConflictJudge
	Merger   MergeSynthesizer
	Params   model.Params
	stopCh   chan struct{}
}

// New creates an Engine with the heuristic judge and merger as defaults.
func New(repo Repository, params model.Params) *Engine {
	return &Engine{
		Repo:   repo,
		Judge:  HeuristicJudge{},
		Merger: HeuristicMerger{},
		Params: params.Clamped(),
		stopCh: make(chan struct{}),
	}
}

// SetEmbedder configures the semantic-similarity collaborator.
func (e *Engine) SetEmbedder(emb Embedder) {
	e.Embedder = emb
}

// SetMerger swaps in a higher-quality merge synthesizer.
func (e *Engine) SetMerger(m MergeSynthesizer) {
	if m != nil {
		e.Merger = m
	}
}

// SetJudge swaps in a higher-quality conflict judge.
func (e *Engine) SetJudge(j ConflictJudge) {
	if j != nil {
		e.Judge = j
	}
}

// SearchOpts controls search behavior.
type SearchOpts struct {
	Limit   int      // max results (default 10)
	Project string   // filter by project (empty = all)
	Type    string   // filter by memory type (empty = all)
	SeedIDs []string // graph traversal seeds (default: top semantic matches)
}

func (o SearchOpts) limit() int {
	if o.Limit <= 0 {
		return 10
	}
	return o.Limit
}

// Search ranks stored memories against the query by blending semantic
// similarity, BM25 lexical score, and graph proximity. An empty query
// returns an empty result, not an error.
func (e *Engine) Search(ctx context.Context, query string, opts SearchOpts) ([]ScoredMemory, error) {
	if query == "" {
		return nil, nil
	}
	if e.Embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	memories, err := e.Repo.ListMemories(e.Params.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	candidates := memories[:0:0]
	for _, m := range memories {
		if opts.Project != "" && m.Project != opts.Project {
			continue
		}
		if opts.Type != "" && string(m.Type) != opts.Type {
			continue
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	queryVec, err := e.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vectors, err := e.Repo.AllVectors()
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}

	semantic := make(map[string]float64, len(candidates))
	for _, m := range candidates {
		if vec, ok := vectors[m.ID]; ok {
			sim := CosineSimilarity(queryVec, vec)
			if sim < 0 {
				sim = 0
			}
			semantic[m.ID] = sim
		}
	}

	seeds := opts.SeedIDs
	if len(seeds) == 0 {
		seeds = topSemanticSeeds(candidates, semantic, seedCount)
	}

	results := Rank(candidates, semantic, query, seeds, e.Params)
	if limit := opts.limit(); len(results) > limit {
		results = results[:limit]
	}

	// Retrieval boost: touch accessed memories.
	for _, r := range results {
		if err := e.Repo.TouchMemory(r.Memory.ID); err != nil {
			log.Warn("touch memory", "id", r.Memory.ID, "err", err)
		}
	}
	return results, nil
}

// topSemanticSeeds picks the n best semantic matches, preserving candidate
// order among ties.
func topSemanticSeeds(candidates []*model.Memory, semantic map[string]float64, n int) []string {
	ranked := Rank(candidates, semantic, "", nil, model.Params{
		Weights: model.Weights{Semantic: 1},
	})
	var seeds []string
	for _, r := range ranked {
		if r.Semantic <= 0 {
			break
		}
		seeds = append(seeds, r.Memory.ID)
		if len(seeds) == n {
			break
		}
	}
	return seeds
}

// StartMaintenanceTimer runs the given operations once at startup and then
// at the configured interval, in apply mode.
func (e *Engine) StartMaintenanceTimer(interval time.Duration, ops []Operation) {
	run := func() {
		report, err := e.RunMaintenance(context.Background(), ops, true)
		if err != nil {
			log.Error("maintenance cycle", "err", err)
			return
		}
		log.Info("maintenance cycle",
			"state", report.State,
			"contradictions", report.ContradictionsFound,
			"consolidations", report.Consolidations,
			"decayed", report.MemoriesDecayed,
			"pruned", report.MemoriesPruned)
	}

	run()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				run()
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the engine's background goroutines.
func (e *Engine) Stop() {
	close(e.stopCh)
}
