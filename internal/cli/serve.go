package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mkaline/recall/internal/engine"
	"github.com/mkaline/recall/internal/judge"
	"github.com/mkaline/recall/internal/server"
	"github.com/mkaline/recall/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db, cfg.Params())
	defer eng.Stop()

	// Judge is optional: configured, it upgrades consolidation merges and
	// screens contradiction findings.
	if cfg.Judge.Provider != "" {
		client, err := judge.NewClient(cfg.Judge)
		if err != nil {
			log.Warn("judge not configured, using heuristics", "err", err)
		} else {
			eng.SetMerger(judge.NewMerger(client))
			eng.SetJudge(judge.NewReviewer(client, engine.HeuristicJudge{}))
			log.Info("judge configured", "provider", cfg.Judge.Provider)
		}
	}

	configureEmbedder(eng, db, cfg.Embedding.OllamaURL, cfg.Embedding.Model, cfg.Embedding.Dimensions)

	// Embed any memories missing vectors before search traffic arrives.
	if eng.Embedder != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if n, err := embedMissing(ctx, db, eng.Embedder); err != nil {
				log.Warn("embed missing", "err", err)
			} else if n > 0 {
				log.Info("embedded missing memories", "count", n)
			}
		}()
	}

	if cfg.Maintenance.IntervalMinutes > 0 {
		ops := engine.ParseOperations(cfg.Maintenance.Operations)
		interval := time.Duration(cfg.Maintenance.IntervalMinutes) * time.Minute
		eng.StartMaintenanceTimer(interval, ops)
		log.Info("maintenance timer started", "interval", interval, "operations", cfg.Maintenance.Operations)
	}

	srv := server.New(db, eng, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("recall serving", "addr", addr, "db", db.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}

// configureEmbedder picks Ollama when it answers the probe, otherwise a
// TF-IDF embedder built from the stored corpus.
func configureEmbedder(eng *engine.Engine, db *store.DB, ollamaURL, model string, dims int) {
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}

	if engine.ProbeOllama(ollamaURL, model) {
		eng.SetEmbedder(engine.NewOllamaEmbedder(ollamaURL, model, dims))
		log.Info("embedder configured", "kind", "ollama", "model", model)
		return
	}

	memories, err := db.ListMemories(0)
	if err != nil {
		log.Warn("tfidf embedder init failed", "err", err)
		return
	}
	eng.SetEmbedder(engine.NewTFIDFEmbedder(memories, 512))
	log.Info("embedder configured", "kind", "tfidf fallback", "corpus", len(memories))
}

// embedMissing backfills vectors for memories saved while no embedder was
// available. Returns how many vectors were written.
func embedMissing(ctx context.Context, db *store.DB, emb engine.Embedder) (int, error) {
	memories, err := db.ListMemories(0)
	if err != nil {
		return 0, fmt.Errorf("list memories: %w", err)
	}
	vectors, err := db.AllVectors()
	if err != nil {
		return 0, fmt.Errorf("load vectors: %w", err)
	}

	count := 0
	for _, m := range memories {
		if _, ok := vectors[m.ID]; ok {
			continue
		}
		vec, err := emb.Embed(ctx, m.Content)
		if err != nil {
			return count, fmt.Errorf("embed %s: %w", m.ID, err)
		}
		if err := db.SaveVector(m.ID, vec, emb.Model()); err != nil {
			return count, fmt.Errorf("save vector %s: %w", m.ID, err)
		}
		count++
	}
	return count, nil
}
