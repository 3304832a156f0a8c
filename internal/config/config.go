// Package config loads recall configuration from file, environment, and
// defaults, in that order of increasing precedence for the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mkaline/recall/internal/model"
)

// Config holds all recall configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	Retrieval   RetrievalConfig   `mapstructure:"retrieval"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Judge       JudgeConfig       `mapstructure:"judge"`
}

type ServerConfig struct {
	Bind string `mapstructure:"bind"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type EmbeddingConfig struct {
	OllamaURL  string `mapstructure:"ollama_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

type RetrievalConfig struct {
	SemanticWeight float64 `mapstructure:"semantic_weight"`
	LexicalWeight  float64 `mapstructure:"lexical_weight"`
	GraphWeight    float64 `mapstructure:"graph_weight"`
	MaxHops        int     `mapstructure:"max_hops"`
	MaxGraphBoost  float64 `mapstructure:"max_graph_boost"`
	MaxCandidates  int     `mapstructure:"max_candidates"`
}

type MaintenanceConfig struct {
	IntervalMinutes     int     `mapstructure:"interval_minutes"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	HalfLifeDays        float64 `mapstructure:"half_life_days"`
	MinConfidence       float64 `mapstructure:"min_confidence"`
	Operations          []string `mapstructure:"operations"`
}

type JudgeConfig struct {
	Provider     string `mapstructure:"provider"` // "anthropic", "ollama", or "" for heuristics only
	Model        string `mapstructure:"model"`
	OllamaURL    string `mapstructure:"ollama_url"`
	OllamaModel  string `mapstructure:"ollama_model"`
	AnthropicKey string `mapstructure:"anthropic_key"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	p := model.DefaultParams()
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38080,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Embedding: EmbeddingConfig{
			OllamaURL:  "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		Retrieval: RetrievalConfig{
			SemanticWeight: p.Weights.Semantic,
			LexicalWeight:  p.Weights.Lexical,
			GraphWeight:    p.Weights.Graph,
			MaxHops:        p.MaxHops,
			MaxGraphBoost:  p.MaxGraphBoost,
			MaxCandidates:  p.MaxCandidates,
		},
		Maintenance: MaintenanceConfig{
			IntervalMinutes:     60,
			SimilarityThreshold: p.SimilarityThreshold,
			HalfLifeDays:        p.HalfLifeDays,
			MinConfidence:       p.MinConfidence,
			Operations:          []string{"consolidate", "contradiction", "decay"},
		},
		Judge: JudgeConfig{
			Provider: "",
			Model:    "claude-haiku-4-5-20251001",
		},
	}
}

// DefaultConfigPath returns ~/.recall/config.toml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".recall", "config.toml"), nil
}

// Load reads configuration from the given TOML file (missing file is fine)
// and the RECALL_ environment, layered over defaults. An empty path uses
// the default location.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, err
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.Judge.AnthropicKey == "" {
		cfg.Judge.AnthropicKey = key
	}
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can see it and Unmarshal
// fills unset fields from the defaults.
func bindDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.bind", cfg.Server.Bind)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("embedding.ollama_url", cfg.Embedding.OllamaURL)
	v.SetDefault("embedding.model", cfg.Embedding.Model)
	v.SetDefault("embedding.dimensions", cfg.Embedding.Dimensions)
	v.SetDefault("retrieval.semantic_weight", cfg.Retrieval.SemanticWeight)
	v.SetDefault("retrieval.lexical_weight", cfg.Retrieval.LexicalWeight)
	v.SetDefault("retrieval.graph_weight", cfg.Retrieval.GraphWeight)
	v.SetDefault("retrieval.max_hops", cfg.Retrieval.MaxHops)
	v.SetDefault("retrieval.max_graph_boost", cfg.Retrieval.MaxGraphBoost)
	v.SetDefault("retrieval.max_candidates", cfg.Retrieval.MaxCandidates)
	v.SetDefault("maintenance.interval_minutes", cfg.Maintenance.IntervalMinutes)
	v.SetDefault("maintenance.similarity_threshold", cfg.Maintenance.SimilarityThreshold)
	v.SetDefault("maintenance.half_life_days", cfg.Maintenance.HalfLifeDays)
	v.SetDefault("maintenance.min_confidence", cfg.Maintenance.MinConfidence)
	v.SetDefault("maintenance.operations", cfg.Maintenance.Operations)
	v.SetDefault("judge.provider", cfg.Judge.Provider)
	v.SetDefault("judge.model", cfg.Judge.Model)
	v.SetDefault("judge.ollama_url", cfg.Judge.OllamaURL)
	v.SetDefault("judge.ollama_model", cfg.Judge.OllamaModel)
	v.SetDefault("judge.anthropic_key", cfg.Judge.AnthropicKey)
}

// Params maps the tunables onto the engine parameter set.
func (c *Config) Params() model.Params {
	p := model.Params{
		SimilarityThreshold: c.Maintenance.SimilarityThreshold,
		HalfLifeDays:        c.Maintenance.HalfLifeDays,
		MinConfidence:       c.Maintenance.MinConfidence,
		Weights: model.Weights{
			Semantic: c.Retrieval.SemanticWeight,
			Lexical:  c.Retrieval.LexicalWeight,
			Graph:    c.Retrieval.GraphWeight,
		},
		MaxHops:       c.Retrieval.MaxHops,
		MaxGraphBoost: c.Retrieval.MaxGraphBoost,
		MaxCandidates: c.Retrieval.MaxCandidates,
	}
	return p.Clamped()
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
