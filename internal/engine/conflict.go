package engine

import (
	"fmt"
	"strings"

	"github.com/mkaline/recall/internal/model"
)

// ConflictJudge evaluates whether two memories contradict each other.
// The built-in heuristics are the default implementation; a higher-quality
// judge (human-in-the-loop or model-assisted) can be substituted without
// touching the orchestrator.
type ConflictJudge interface {
	EvaluateConflict(a, b *model.Memory) *model.ContradictionCandidate
}

// antonymPairs trigger the opposite-keyword rule. Each matched pair adds
// 0.3 confidence, capped at 0.9.
var antonymPairs = [][2]string{
	{"never", "always"},
	{"not", "is"},
	{"false", "true"},
	{"incorrect", "correct"},
	{"bug", "feature"},
}

const (
	supersedeConfidence = 0.8
	keywordConfidence   = 0.3
	keywordCap          = 0.9
	minSharedTags       = 2
)

// HeuristicJudge is the rule-based ConflictJudge.
type HeuristicJudge struct{}

// EvaluateConflict applies the detection rules in order and stops at the
// first match. Returns nil when the memories do not conflict.
func (HeuristicJudge) EvaluateConflict(a, b *model.Memory) *model.ContradictionCandidate {
	if a == nil || b == nil || a.ID == b.ID {
		return nil
	}
	if a.IsFoundational() && b.IsFoundational() {
		return nil
	}

	if c := supersedeConflict(a, b); c != nil {
		return c
	}
	return keywordConflict(a, b)
}

// supersedeConflict fires when one memory names the other in its supersedes
// field and the two were recorded by different creators. Same-creator
// supersession is ordinary revision, not a conflict.
func supersedeConflict(a, b *model.Memory) *model.ContradictionCandidate {
	var newer, older *model.Memory
	switch {
	case a.Supersedes == b.ID:
		newer, older = a, b
	case b.Supersedes == a.ID:
		newer, older = b, a
	default:
		return nil
	}
	if newer.Source == older.Source {
		return nil
	}
	return &model.ContradictionCandidate{
		A:            a,
		B:            b,
		ConflictType: model.ConflictTemporal,
		Confidence:   supersedeConfidence,
		Explanation:  fmt.Sprintf("memory %s supersedes %s, recorded by a different source", newer.ID, older.ID),
	}
}

// keywordConflict applies only when both memories are live and share at
// least two tags: any antonym pair appearing across the two contents flags
// a direct contradiction.
func keywordConflict(a, b *model.Memory) *model.ContradictionCandidate {
	if !a.IsLive() || !b.IsLive() {
		return nil
	}
	if len(a.SharedTags(b)) < minSharedTags {
		return nil
	}

	wordsA := wordSet(a.Content)
	wordsB := wordSet(b.Content)

	confidence := 0.0
	var matched []string
	for _, pair := range antonymPairs {
		hit := (wordsA[pair[0]] && wordsB[pair[1]]) || (wordsA[pair[1]] && wordsB[pair[0]])
		if !hit {
			continue
		}
		confidence += keywordConfidence
		matched = append(matched, pair[0]+"/"+pair[1])
	}
	if len(matched) == 0 {
		return nil
	}
	if confidence > keywordCap {
		confidence = keywordCap
	}
	return &model.ContradictionCandidate{
		A:            a,
		B:            b,
		ConflictType: model.ConflictDirect,
		Confidence:   confidence,
		Explanation:  fmt.Sprintf("contents oppose on %s", strings.Join(matched, ", ")),
	}
}

// wordSet lowercases content into a bare word-membership set. Unlike
// Tokenize it keeps stop words and single characters, since the antonym
// list includes words like "is" and "not".
func wordSet(content string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(content)) {
		f = strings.Trim(f, ".,;:!?'\"()[]")
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// FindConflicts evaluates the target against every other candidate and
// keeps results at or above minConfidence.
func FindConflicts(j ConflictJudge, target *model.Memory, candidates []*model.Memory, minConfidence float64) []model.ContradictionCandidate {
	if j == nil {
		j = HeuristicJudge{}
	}
	var found []model.ContradictionCandidate
	for _, other := range candidates {
		if other.ID == target.ID {
			continue
		}
		if c := j.EvaluateConflict(target, other); c != nil && c.Confidence >= minConfidence {
			found = append(found, *c)
		}
	}
	return found
}
