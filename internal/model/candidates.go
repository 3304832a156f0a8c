package model

import "time"

// ConflictType classifies how two memories contradict each other.
type ConflictType string

const (
	// ConflictTemporal means a newer memory supersedes an older one.
	ConflictTemporal ConflictType = "temporal"
	// ConflictDirect means the contents directly oppose each other.
	ConflictDirect ConflictType = "direct"
)

// ContradictionCandidate is a detected conflict between two memories.
// It is computed on demand and never persisted; an accepted resolution is
// recorded as a supersede link on the underlying memories.
type ContradictionCandidate struct {
	A            *Memory      `json:"a"`
	B            *Memory      `json:"b"`
	ConflictType ConflictType `json:"conflict_type"`
	Confidence   float64      `json:"confidence"`
	Explanation  string       `json:"explanation"`
}

// ConsolidationCandidate is a cluster of near-duplicate memories with a
// suggested merge. Ephemeral; a caller may turn it into a new persisted
// memory plus supersede links on the originals.
type ConsolidationCandidate struct {
	Members          []*Memory `json:"members"`
	Similarity       float64   `json:"similarity"`
	SuggestedContent string    `json:"suggested_content"`
	Rationale        string    `json:"rationale"`
}

// MemberIDs returns the ids of the clustered memories.
func (c *ConsolidationCandidate) MemberIDs() []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

// CycleState is the terminal state of a maintenance cycle.
type CycleState string

const (
	CycleDryRunComplete CycleState = "dry_run_complete"
	CycleApplied        CycleState = "applied"
	CycleFailed         CycleState = "failed"
)

// MaintenanceReport summarizes one maintenance cycle. Immutable once
// produced; counts reflect only mutations that actually succeeded.
type MaintenanceReport struct {
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          time.Time  `json:"finished_at"`
	State               CycleState `json:"state"`
	Operations          []string   `json:"operations"`
	ContradictionsFound int        `json:"contradictions_found"`
	Consolidations      int        `json:"consolidations"`
	MergedIDs           []string   `json:"merged_ids,omitempty"`
	MemoriesDecayed     int        `json:"memories_decayed"`
	MemoriesPruned      int        `json:"memories_pruned"`
	Errors              []string   `json:"errors,omitempty"`
}
