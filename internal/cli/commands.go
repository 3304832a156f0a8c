package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkaline/recall/internal/engine"
	"github.com/mkaline/recall/internal/model"
	"github.com/mkaline/recall/internal/store"
)

var (
	saveType       string
	saveTags       []string
	saveImportance int
	saveProject    string
	saveSession    string
	saveRelated    []string
	saveSupersedes string

	searchLimit   int
	searchProject string
	searchType    string

	listProject string
	listType    string
	listTag     string
	listLimit   int

	maintainOps   []string
	maintainApply bool
	maintainPrune bool
)

func init() {
	saveCmd.Flags().StringVar(&saveType, "type", "context", "memory type")
	saveCmd.Flags().StringSliceVar(&saveTags, "tag", nil, "tags (repeatable)")
	saveCmd.Flags().IntVar(&saveImportance, "importance", 3, "importance 1-5")
	saveCmd.Flags().StringVar(&saveProject, "project", "", "project this memory belongs to")
	saveCmd.Flags().StringVar(&saveSession, "session", "", "session this memory was captured in")
	saveCmd.Flags().StringSliceVar(&saveRelated, "related", nil, "related memory ids (repeatable)")
	saveCmd.Flags().StringVar(&saveSupersedes, "supersedes", "", "id of the memory this one replaces")

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "max results")
	searchCmd.Flags().StringVar(&searchProject, "project", "", "filter by project")
	searchCmd.Flags().StringVar(&searchType, "type", "", "filter by memory type")

	listCmd.Flags().StringVar(&listProject, "project", "", "filter by project")
	listCmd.Flags().StringVar(&listType, "type", "", "filter by memory type")
	listCmd.Flags().StringVar(&listTag, "tag", "", "filter by tag")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "max results")

	maintainCmd.Flags().StringSliceVar(&maintainOps, "ops", nil, "operations: consolidate, contradiction, decay, prune (default all but prune)")
	maintainCmd.Flags().BoolVar(&maintainApply, "apply", false, "apply changes instead of dry-run")
	maintainCmd.Flags().BoolVar(&maintainPrune, "prune", false, "include the prune operation")
}

var saveCmd = &cobra.Command{
	Use:   "save <content>",
	Short: "Save a memory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		m := &model.Memory{
			Content:    strings.Join(args, " "),
			Type:       model.Type(saveType),
			Tags:       saveTags,
			Importance: saveImportance,
			Project:    saveProject,
			Session:    saveSession,
			RelatedIDs: saveRelated,
			Supersedes: saveSupersedes,
		}
		id, err := db.SaveMemory(m)
		if err != nil {
			return err
		}

		if saveSupersedes != "" {
			if err := db.Supersede(saveSupersedes, id); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
		if saveSession != "" {
			db.IncrementMemoryCount(saveSession)
		}

		// Best-effort embedding so the memory is searchable right away.
		eng := engine.New(db, cfg.Params())
		configureEmbedder(eng, db, cfg.Embedding.OllamaURL, cfg.Embedding.Model, cfg.Embedding.Dimensions)
		if eng.Embedder != nil {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if vec, err := eng.Embedder.Embed(ctx, m.Content); err == nil {
				db.SaveVector(id, vec, eng.Embedder.Model())
			}
		}

		fmt.Println(id)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search memories by hybrid ranking",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		eng := engine.New(db, cfg.Params())
		configureEmbedder(eng, db, cfg.Embedding.OllamaURL, cfg.Embedding.Model, cfg.Embedding.Dimensions)
		if eng.Embedder == nil {
			return fmt.Errorf("no embedder available")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		results, err := eng.Search(ctx, strings.Join(args, " "), engine.SearchOpts{
			Limit:   searchLimit,
			Project: searchProject,
			Type:    searchType,
		})
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}

		for _, r := range results {
			fmt.Printf("%.3f  [%s] %s\n", r.Score, r.Memory.Type, r.Memory.ID)
			fmt.Printf("       %s\n", r.Memory.Content)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List memories, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		memories, err := db.ListFiltered(store.ListOpts{
			Project: listProject,
			Type:    listType,
			Tag:     listTag,
			Limit:   listLimit,
		})
		if err != nil {
			return err
		}

		for _, m := range memories {
			status := ""
			if m.ValidUntil != nil {
				status = " (superseded)"
			}
			fmt.Printf("%s  [%s] imp=%d%s\n", m.ID, m.Type, m.Importance, status)
			fmt.Printf("  %s\n", m.Content)
		}
		return nil
	},
}

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run a maintenance cycle (dry-run by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ops := engine.ParseOperations(maintainOps)
		if len(maintainOps) > 0 && len(ops) == 0 {
			return fmt.Errorf("no valid operations in %v", maintainOps)
		}
		if maintainPrune {
			if len(ops) == 0 {
				ops = append(ops, engine.DefaultOperations...)
			}
			ops = append(ops, engine.OpPrune)
		}

		eng := engine.New(db, cfg.Params())
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		report, runErr := eng.RunMaintenance(ctx, ops, maintainApply)
		if err := db.SaveRun(report); err != nil {
			fmt.Fprintf(os.Stderr, "warning: save run: %v\n", err)
		}

		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
		return runErr
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		count, err := db.CountMemories()
		if err != nil {
			return err
		}
		vectors, err := db.AllVectors()
		if err != nil {
			return err
		}
		version, err := db.SchemaVersion()
		if err != nil {
			return err
		}
		runs, err := db.RecentRuns(1)
		if err != nil {
			return err
		}

		fmt.Printf("db:        %s (schema v%d)\n", db.Path, version)
		fmt.Printf("memories:  %d\n", count)
		fmt.Printf("vectors:   %d\n", len(vectors))
		if len(runs) > 0 {
			fmt.Printf("last run:  %s (%s)\n", runs[0].StartedAt.Format(time.RFC3339), runs[0].State)
		}
		return nil
	},
}
