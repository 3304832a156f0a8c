package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkaline/recall/internal/engine"
	"github.com/mkaline/recall/internal/model"
	"github.com/mkaline/recall/internal/store"
)

// testServer builds a server over an in-memory database, seeded with the
// given memories and a TF-IDF embedder trained on them.
func testServer(t *testing.T, seed ...*model.Memory) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng := engine.New(db, model.DefaultParams())
	emb := engine.NewTFIDFEmbedder(seed, 256)
	eng.SetEmbedder(emb)

	for _, m := range seed {
		if _, err := db.SaveMemory(m); err != nil {
			t.Fatalf("SaveMemory: %v", err)
		}
		vec, err := emb.Embed(context.Background(), m.Content)
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if err := db.SaveVector(m.ID, vec, emb.Model()); err != nil {
			t.Fatalf("SaveVector: %v", err)
		}
	}

	return New(db, eng, "test"), db
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, jsonReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	w, resp := doJSON(t, srv, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v", resp["version"])
	}
	if resp["db"] != true {
		t.Errorf("db = %v, want true", resp["db"])
	}
	if resp["embedder"] != "tfidf" {
		t.Errorf("embedder = %v", resp["embedder"])
	}
}
