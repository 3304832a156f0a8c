// Package cli wires the recall commands: the API server, direct store
// access for saving and searching memories, and manual maintenance runs.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkaline/recall/internal/config"
	"github.com/mkaline/recall/internal/store"
)

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Long-term memory store with hybrid retrieval",
	Long: `Recall stores structured memories in SQLite and retrieves them by
blending semantic similarity, lexical match, and relation-graph proximity.
Background maintenance consolidates near-duplicates, surfaces
contradictions, and decays stale importance.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.recall/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default ~/.recall/recall.db)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(maintainCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig resolves configuration and the database path from flags, the
// environment, and the config file.
func loadConfig() (config.Config, string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, "", err
	}

	path := dbPath
	if path == "" {
		path = cfg.Database.Path
	}
	if path == "" {
		path, err = store.DefaultDBPath()
		if err != nil {
			return cfg, "", fmt.Errorf("resolve db path: %w", err)
		}
	}
	return cfg, path, nil
}

func openStore() (config.Config, *store.DB, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	db, err := store.Open(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}
