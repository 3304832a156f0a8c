package engine

import (
	"context"
	"testing"

	"github.com/mkaline/recall/internal/model"
)

func searchCorpus() []*model.Memory {
	return []*model.Memory{
		{ID: "db", Content: "sqlite requires wal mode for concurrent readers", Type: model.TypeDecision, Project: "recall", Tags: []string{"db"}},
		{ID: "db2", Content: "database migrations run at startup in order", Type: model.TypeLearning, Project: "recall", RelatedIDs: []string{"db"}},
		{ID: "ui", Content: "the terminal interface uses a spinner while loading", Type: model.TypeLearning, Project: "dash"},
		{ID: "ops", Content: "deploys happen from the main branch only", Type: model.TypeDecision, Project: "recall"},
	}
}

func searchEngine(t *testing.T, memories []*model.Memory) (*Engine, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo(memories)
	eng := New(repo, model.DefaultParams())
	emb := NewTFIDFEmbedder(memories, 256)
	eng.SetEmbedder(emb)
	for _, m := range memories {
		vec, err := emb.Embed(context.Background(), m.Content)
		if err != nil {
			t.Fatalf("embed %s: %v", m.ID, err)
		}
		repo.vectors[m.ID] = vec
	}
	return eng, repo
}

func TestSearchEmptyQuery(t *testing.T) {
	eng, repo := searchEngine(t, searchCorpus())
	results, err := eng.Search(context.Background(), "", SearchOpts{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty query returned %d results, want 0", len(results))
	}
	if len(repo.touched) != 0 {
		t.Errorf("empty query touched %v", repo.touched)
	}
}

func TestSearchRequiresEmbedder(t *testing.T) {
	eng := New(newFakeRepo(searchCorpus()), model.DefaultParams())
	if _, err := eng.Search(context.Background(), "sqlite", SearchOpts{}); err == nil {
		t.Fatal("expected an error without an embedder")
	}
}

func TestSearchRanksRelevantFirst(t *testing.T) {
	eng, repo := searchEngine(t, searchCorpus())
	results, err := eng.Search(context.Background(), "sqlite wal concurrent", SearchOpts{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].Memory.ID != "db" {
		t.Errorf("top result = %s, want db", results[0].Memory.ID)
	}
	// Retrieval boosts access stats for everything returned.
	if len(repo.touched) != len(results) {
		t.Errorf("touched %d memories, want %d", len(repo.touched), len(results))
	}
}

func TestSearchGraphLiftsRelatedMemory(t *testing.T) {
	eng, _ := searchEngine(t, searchCorpus())
	results, err := eng.Search(context.Background(), "sqlite wal concurrent", SearchOpts{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var db2, ui *ScoredMemory
	for i := range results {
		switch results[i].Memory.ID {
		case "db2":
			db2 = &results[i]
		case "ui":
			ui = &results[i]
		}
	}
	if db2 == nil {
		t.Fatal("db2 missing from results")
	}
	if db2.GraphBoost <= 0 {
		t.Errorf("db2 graph boost = %f, want > 0 (one hop from the top match)", db2.GraphBoost)
	}
	if ui != nil && ui.GraphBoost != 0 {
		t.Errorf("ui graph boost = %f, want 0 (unconnected)", ui.GraphBoost)
	}
}

func TestSearchFilters(t *testing.T) {
	eng, _ := searchEngine(t, searchCorpus())

	results, err := eng.Search(context.Background(), "recall project knowledge", SearchOpts{Project: "dash"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.Memory.Project != "dash" {
			t.Errorf("project filter leaked %s", r.Memory.ID)
		}
	}

	results, err = eng.Search(context.Background(), "deploys branch", SearchOpts{Type: string(model.TypeDecision)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("type filter returned nothing")
	}
	for _, r := range results {
		if r.Memory.Type != model.TypeDecision {
			t.Errorf("type filter leaked %s (%s)", r.Memory.ID, r.Memory.Type)
		}
	}
}

func TestSearchLimit(t *testing.T) {
	eng, _ := searchEngine(t, searchCorpus())
	results, err := eng.Search(context.Background(), "the mode branch interface migrations", SearchOpts{Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) > 2 {
		t.Errorf("limit 2 returned %d results", len(results))
	}
}

func TestSearchExplicitSeeds(t *testing.T) {
	eng, _ := searchEngine(t, searchCorpus())
	results, err := eng.Search(context.Background(), "startup", SearchOpts{SeedIDs: []string{"db"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.Memory.ID == "db" && r.GraphBoost != 0 {
			t.Errorf("seed got graph boost %f, want 0", r.GraphBoost)
		}
		if r.Memory.ID == "db2" && r.GraphBoost <= 0 {
			t.Errorf("neighbor of seed got graph boost %f, want > 0", r.GraphBoost)
		}
	}
}
