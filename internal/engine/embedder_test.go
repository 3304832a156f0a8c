package engine

import (
	"context"
	"math"
	"testing"

	"github.com/mkaline/recall/internal/model"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"mismatched lengths", []float64{1, 2}, []float64{1}, 0.0},
		{"empty", nil, nil, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CosineSimilarity(c.a, c.b)
			if math.Abs(got-c.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %f, want %f", got, c.want)
			}
		})
	}
}

func TestTFIDFEmbedderSimilarTextsScoreHigher(t *testing.T) {
	memories := []*model.Memory{
		{ID: "1", Content: "Go developer who prefers minimal dependencies"},
		{ID: "2", Content: "Uses SQLite with WAL mode for concurrent reads"},
		{ID: "3", Content: "Deploys with a single static binary"},
	}
	emb := NewTFIDFEmbedder(memories, 512)

	ctx := context.Background()
	query, _ := emb.Embed(ctx, "minimal dependencies in Go")
	v1, _ := emb.Embed(ctx, memories[0].Content)
	v2, _ := emb.Embed(ctx, memories[1].Content)

	if CosineSimilarity(query, v1) <= CosineSimilarity(query, v2) {
		t.Error("query about dependencies should be closer to the dependencies memory")
	}
}

func TestTFIDFEmbedderEmptyCorpus(t *testing.T) {
	emb := NewTFIDFEmbedder(nil, 512)
	if emb.Dimensions() < 1 {
		t.Errorf("Dimensions = %d, want >= 1", emb.Dimensions())
	}
	vec, err := emb.Embed(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != emb.Dimensions() {
		t.Errorf("vector length = %d, want %d", len(vec), emb.Dimensions())
	}
}

func TestTFIDFEmbedderNormalized(t *testing.T) {
	emb := NewTFIDFEmbedder([]*model.Memory{
		{ID: "1", Content: "alpha beta gamma delta"},
		{ID: "2", Content: "alpha beta something else"},
	}, 512)
	vec, _ := emb.Embed(context.Background(), "alpha beta gamma")

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-9 {
		t.Errorf("vector norm = %f, want 1", math.Sqrt(sum))
	}
}
