// Package model defines the core memory data types shared by the engine,
// store, and server.
package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Type classifies what kind of knowledge a memory holds.
type Type string

const (
	TypeDecision     Type = "decision"
	TypePattern      Type = "pattern"
	TypeLearning     Type = "learning"
	TypeContext      Type = "context"
	TypePreference   Type = "preference"
	TypeTodo         Type = "todo"
	TypeReference    Type = "reference"
	TypeSummary      Type = "summary"
	TypeFoundational Type = "foundational"
	TypeShadow       Type = "shadow"
)

// ValidTypes are the allowed memory types.
var ValidTypes = map[Type]bool{
	TypeDecision:     true,
	TypePattern:      true,
	TypeLearning:     true,
	TypeContext:      true,
	TypePreference:   true,
	TypeTodo:         true,
	TypeReference:    true,
	TypeSummary:      true,
	TypeFoundational: true,
	TypeShadow:       true,
}

// Layer is the storage tier a memory lives in.
type Layer string

const (
	LayerFoundational Layer = "foundational"
	LayerLongTerm     Layer = "longterm"
	LayerWorking      Layer = "working"
)

// ValidLayers are the allowed memory layers.
var ValidLayers = map[Layer]bool{
	LayerFoundational: true,
	LayerLongTerm:     true,
	LayerWorking:      true,
}

// Memory is a persisted, typed unit of stored knowledge.
type Memory struct {
	ID             string     `json:"id"`
	Content        string     `json:"content"`
	Type           Type       `json:"type"`
	Tags           []string   `json:"tags,omitempty"`
	Importance     int        `json:"importance"`
	CreatedAt      time.Time  `json:"created_at"`
	ValidFrom      *time.Time `json:"valid_from,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	Supersedes     string     `json:"supersedes,omitempty"`
	RelatedIDs     []string   `json:"related_memories,omitempty"`
	AccessCount    int        `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	Project        string     `json:"project,omitempty"`
	Session        string     `json:"session,omitempty"`
	Source         string     `json:"source,omitempty"`
	Confidence     float64    `json:"confidence"`
	Layer          Layer      `json:"layer"`
}

// NewID returns a fresh ULID string for a memory.
func NewID() string {
	return ulid.Make().String()
}

// IsFoundational reports whether the memory is exempt from decay and
// contradiction detection.
func (m *Memory) IsFoundational() bool {
	return m.Type == TypeFoundational
}

// IsLive reports whether the memory is currently valid: its valid_from is
// set and it has not been closed out by a valid_until.
func (m *Memory) IsLive() bool {
	return m.ValidFrom != nil && m.ValidUntil == nil
}

// SharedTags returns the tags the two memories have in common.
func (m *Memory) SharedTags(other *Memory) []string {
	if len(m.Tags) == 0 || len(other.Tags) == 0 {
		return nil
	}
	set := make(map[string]bool, len(m.Tags))
	for _, t := range m.Tags {
		set[t] = true
	}
	var shared []string
	for _, t := range other.Tags {
		if set[t] {
			shared = append(shared, t)
		}
	}
	return shared
}

// ClampImportance forces an importance value into the valid 1..5 range.
func ClampImportance(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
