package judge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkaline/recall/internal/model"
)

// verdictTimeout bounds each second-opinion call so a slow model cannot
// stall a maintenance cycle.
const verdictTimeout = 30 * time.Second

// detector is the heuristic conflict judge the reviewer second-guesses.
// It matches the engine's ConflictJudge contract.
type detector interface {
	EvaluateConflict(a, b *model.Memory) *model.ContradictionCandidate
}

// Reviewer screens heuristic conflict findings through an LLM client. It
// satisfies the engine's ConflictJudge contract: candidates the model
// rejects are dropped; verdicts that fail or cannot be parsed keep the
// heuristic finding, so the reviewer only ever narrows results.
type Reviewer struct {
	client Client
	inner  detector
}

// NewReviewer wraps a client around the given heuristic detector.
func NewReviewer(client Client, inner detector) *Reviewer {
	return &Reviewer{client: client, inner: inner}
}

// EvaluateConflict runs the heuristic detector and, when it flags a
// conflict, asks the model for a second opinion.
func (r *Reviewer) EvaluateConflict(a, b *model.Memory) *model.ContradictionCandidate {
	c := r.inner.EvaluateConflict(a, b)
	if c == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), verdictTimeout)
	defer cancel()

	confirmed, err := VerifyConflict(ctx, r.client, c)
	if err != nil {
		log.Warn("conflict verdict failed, keeping heuristic finding", "err", err)
		return c
	}
	if !confirmed {
		return nil
	}
	return c
}
