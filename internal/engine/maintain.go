package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkaline/recall/internal/model"
)

// Operation is one maintenance pass over the memory set.
type Operation string

const (
	OpConsolidate   Operation = "consolidate"
	OpContradiction Operation = "contradiction"
	OpDecay         Operation = "decay"
	OpPrune         Operation = "prune"
)

// DefaultOperations excludes prune, which is destructive and opt-in.
var DefaultOperations = []Operation{OpConsolidate, OpContradiction, OpDecay}

// ParseOperations converts operation names, dropping unknown ones.
func ParseOperations(names []string) []Operation {
	var ops []Operation
	for _, n := range names {
		switch Operation(n) {
		case OpConsolidate, OpContradiction, OpDecay, OpPrune:
			ops = append(ops, Operation(n))
		}
	}
	return ops
}

// DecayChange is one planned importance update.
type DecayChange struct {
	ID   string `json:"id"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// Plan is the set of proposed changes computed by a maintenance cycle.
// Planning is pure with respect to the store: it reads, never writes.
type Plan struct {
	Contradictions []model.ContradictionCandidate `json:"contradictions,omitempty"`
	Consolidations []model.ConsolidationCandidate `json:"consolidations,omitempty"`
	Decays         []DecayChange                  `json:"decays,omitempty"`
	Prunes         []string                       `json:"prunes,omitempty"`
}

// PlanMaintenance computes the proposed changes for the selected operations.
// A collaborator failure here aborts the cycle, since nothing has mutated.
func (e *Engine) PlanMaintenance(ctx context.Context, ops []Operation) (*Plan, error) {
	p := e.Params.Clamped()
	selected := make(map[Operation]bool, len(ops))
	for _, op := range ops {
		selected[op] = true
	}

	memories, err := e.Repo.ListMemories(p.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}

	plan := &Plan{}

	if selected[OpConsolidate] {
		vectors, err := e.Repo.AllVectors()
		if err != nil {
			return nil, fmt.Errorf("load vectors: %w", err)
		}
		plan.Consolidations = FindConsolidationCandidates(memories, vectors, p.SimilarityThreshold)
	}

	if selected[OpContradiction] {
		judge := e.Judge
		if judge == nil {
			judge = HeuristicJudge{}
		}
		for i := 0; i < len(memories); i++ {
			for j := i + 1; j < len(memories); j++ {
				c := judge.EvaluateConflict(memories[i], memories[j])
				if c != nil && c.Confidence >= p.MinConfidence {
					plan.Contradictions = append(plan.Contradictions, *c)
				}
			}
		}
	}

	if selected[OpDecay] || selected[OpPrune] {
		now := time.Now()
		for _, m := range memories {
			if m.IsFoundational() {
				continue
			}
			to := DecayImportance(m, now, p.HalfLifeDays)
			if selected[OpPrune] && to <= importanceFloor {
				plan.Prunes = append(plan.Prunes, m.ID)
				continue
			}
			if selected[OpDecay] && to < m.Importance {
				plan.Decays = append(plan.Decays, DecayChange{ID: m.ID, From: m.Importance, To: to})
			}
		}
	}

	return plan, nil
}

// RunMaintenance executes a maintenance cycle. In dry-run mode (apply
// false) it only computes and returns the report; no mutation is invoked.
// In apply mode each planned change is applied against the persistence
// collaborator, and a failure on any single mutation is logged and skipped,
// not fatal to the batch: the report's counts reflect only what succeeded.
func (e *Engine) RunMaintenance(ctx context.Context, ops []Operation, apply bool) (*model.MaintenanceReport, error) {
	if len(ops) == 0 {
		ops = DefaultOperations
	}
	report := &model.MaintenanceReport{StartedAt: time.Now()}
	for _, op := range ops {
		report.Operations = append(report.Operations, string(op))
	}

	plan, err := e.PlanMaintenance(ctx, ops)
	if err != nil {
		report.State = model.CycleFailed
		report.Errors = append(report.Errors, err.Error())
		report.FinishedAt = time.Now()
		return report, err
	}

	report.ContradictionsFound = len(plan.Contradictions)

	if !apply {
		report.Consolidations = len(plan.Consolidations)
		report.MemoriesDecayed = len(plan.Decays)
		report.MemoriesPruned = len(plan.Prunes)
		report.State = model.CycleDryRunComplete
		report.FinishedAt = time.Now()
		return report, nil
	}

	e.applyPlan(ctx, plan, report)
	report.State = model.CycleApplied
	report.FinishedAt = time.Now()
	return report, nil
}

// applyPlan pushes the planned changes through the Mutator, recording
// per-item failures and counting only successes.
func (e *Engine) applyPlan(ctx context.Context, plan *Plan, report *model.MaintenanceReport) {
	fail := func(what, id string, err error) {
		log.Warn("maintenance mutation failed", "op", what, "id", id, "err", err)
		report.Errors = append(report.Errors, fmt.Sprintf("%s %s: %v", what, id, err))
	}

	for _, d := range plan.Decays {
		if err := e.Repo.UpdateImportance(d.ID, d.To); err != nil {
			fail("decay", d.ID, err)
			continue
		}
		report.MemoriesDecayed++
	}

	for _, id := range plan.Prunes {
		if err := e.Repo.DeleteMemory(id); err != nil {
			fail("prune", id, err)
			continue
		}
		report.MemoriesPruned++
	}

	for _, c := range plan.Consolidations {
		merged, err := e.mergedMemory(ctx, c)
		if err != nil {
			fail("consolidate", c.MemberIDs()[0], err)
			continue
		}
		id, err := e.Repo.SaveMemory(merged)
		if err != nil {
			fail("consolidate", merged.ID, err)
			continue
		}
		for _, member := range c.Members {
			if err := e.Repo.Supersede(member.ID, id); err != nil {
				fail("supersede", member.ID, err)
			}
		}
		report.Consolidations++
		report.MergedIDs = append(report.MergedIDs, id)
	}

	// Contradictions are surfaced only: their resolution goes through the
	// external review flow, which records a supersede link if accepted.
}

// mergedMemory builds the replacement memory for a consolidation cluster.
// The suggested content is upgraded by the configured synthesizer when one
// is available; synthesis failure falls back to the heuristic suggestion.
func (e *Engine) mergedMemory(ctx context.Context, c model.ConsolidationCandidate) (*model.Memory, error) {
	if len(c.Members) < 2 {
		return nil, fmt.Errorf("cluster has %d members", len(c.Members))
	}

	content := c.SuggestedContent
	if e.Merger != nil {
		if synthesized, err := e.Merger.SynthesizeMerge(ctx, c.Members); err != nil {
			log.Warn("merge synthesis failed, keeping heuristic suggestion", "err", err)
		} else if synthesized != "" {
			content = synthesized
		}
	}

	tagSet := make(map[string]bool)
	importance := 0
	memType := c.Members[0].Type
	for _, m := range c.Members {
		for _, t := range m.Tags {
			tagSet[t] = true
		}
		if m.Importance > importance {
			importance = m.Importance
		}
		if m.Type != memType {
			memType = model.TypeSummary
		}
	}
	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}

	now := time.Now()
	return &model.Memory{
		ID:         model.NewID(),
		Content:    content,
		Type:       memType,
		Tags:       tags,
		Importance: model.ClampImportance(importance),
		CreatedAt:  now,
		ValidFrom:  &now,
		Project:    c.Members[0].Project,
		Source:     "consolidation",
		Confidence: c.Similarity,
		Layer:      model.LayerLongTerm,
	}, nil
}
