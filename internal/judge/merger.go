package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkaline/recall/internal/model"
)

// Merger synthesizes consolidation merges through an LLM client. It
// satisfies the engine's MergeSynthesizer contract.
type Merger struct {
	client Client
}

// NewMerger wraps a client as a merge synthesizer.
func NewMerger(client Client) *Merger {
	return &Merger{client: client}
}

// SynthesizeMerge asks the model for a replacement memory covering every
// member of the cluster.
func (m *Merger) SynthesizeMerge(ctx context.Context, members []*model.Memory) (string, error) {
	resp, err := m.client.Complete(ctx, MergePrompt(members))
	if err != nil {
		return "", fmt.Errorf("merge synthesis: %w", err)
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", fmt.Errorf("merge synthesis returned empty content")
	}
	return content, nil
}

// VerifyConflict asks the model whether a flagged contradiction is real.
// Unparseable answers count as confirmation so heuristic findings are
// never silently discarded.
func VerifyConflict(ctx context.Context, client Client, c *model.ContradictionCandidate) (bool, error) {
	resp, err := client.Complete(ctx, ConflictPrompt(c.A, c.B))
	if err != nil {
		return false, fmt.Errorf("conflict verdict: %w", err)
	}
	verdict := strings.ToUpper(strings.TrimSpace(resp.Content))
	return !strings.HasPrefix(verdict, "REJECT"), nil
}
