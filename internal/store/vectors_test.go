package store

import (
	"math"
	"testing"

	"github.com/mkaline/recall/internal/model"
)

func TestVectorRoundTrip(t *testing.T) {
	db := testDB(t)
	id := seedMemory(t, db, &model.Memory{Content: "x"})

	vec := []float64{0.1, -0.5, 3.14159, 0}
	if err := db.SaveVector(id, vec, "tfidf"); err != nil {
		t.Fatalf("SaveVector: %v", err)
	}

	got, err := db.GetVector(id)
	if err != nil {
		t.Fatalf("GetVector: %v", err)
	}
	if got == nil {
		t.Fatal("vector not found")
	}
	if got.Model != "tfidf" || got.Dimensions != 4 {
		t.Errorf("Model = %s, Dimensions = %d", got.Model, got.Dimensions)
	}
	for i := range vec {
		if math.Abs(got.Embedding[i]-vec[i]) > 1e-12 {
			t.Errorf("embedding[%d] = %f, want %f", i, got.Embedding[i], vec[i])
		}
	}
}

func TestSaveVectorReplaces(t *testing.T) {
	db := testDB(t)
	id := seedMemory(t, db, &model.Memory{Content: "x"})

	if err := db.SaveVector(id, []float64{1, 2}, "tfidf"); err != nil {
		t.Fatalf("SaveVector: %v", err)
	}
	if err := db.SaveVector(id, []float64{3, 4, 5}, "ollama:nomic"); err != nil {
		t.Fatalf("SaveVector replace: %v", err)
	}

	got, _ := db.GetVector(id)
	if got.Dimensions != 3 || got.Model != "ollama:nomic" {
		t.Errorf("replace not applied: %+v", got)
	}
}

func TestAllVectors(t *testing.T) {
	db := testDB(t)
	a := seedMemory(t, db, &model.Memory{Content: "a"})
	b := seedMemory(t, db, &model.Memory{Content: "b"})
	db.SaveVector(a, []float64{1, 0}, "tfidf")
	db.SaveVector(b, []float64{0, 1}, "tfidf")

	vectors, err := db.AllVectors()
	if err != nil {
		t.Fatalf("AllVectors: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("AllVectors = %d entries, want 2", len(vectors))
	}
	if vectors[a][0] != 1 || vectors[b][1] != 1 {
		t.Errorf("vectors = %v", vectors)
	}
}

func TestGetVectorNotFound(t *testing.T) {
	db := testDB(t)
	got, err := db.GetVector("nope")
	if err != nil {
		t.Fatalf("GetVector: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestDeleteVector(t *testing.T) {
	db := testDB(t)
	id := seedMemory(t, db, &model.Memory{Content: "x"})
	db.SaveVector(id, []float64{1}, "tfidf")

	if err := db.DeleteVector(id); err != nil {
		t.Fatalf("DeleteVector: %v", err)
	}
	got, _ := db.GetVector(id)
	if got != nil {
		t.Error("vector still present after delete")
	}
}
