package judge

import (
	"fmt"
	"testing"

	"github.com/mkaline/recall/internal/model"
)

// stubDetector flags a fixed conflict for every pair, or nothing.
type stubDetector struct {
	candidate *model.ContradictionCandidate
}

func (s stubDetector) EvaluateConflict(a, b *model.Memory) *model.ContradictionCandidate {
	return s.candidate
}

func flaggedPair() (*model.Memory, *model.Memory, *model.ContradictionCandidate) {
	a := &model.Memory{ID: "a", Content: "deploys are never safe"}
	b := &model.Memory{ID: "b", Content: "deploys are always safe"}
	return a, b, &model.ContradictionCandidate{
		A:            a,
		B:            b,
		ConflictType: model.ConflictDirect,
		Confidence:   0.3,
	}
}

func TestReviewerConfirmKeepsFinding(t *testing.T) {
	a, b, candidate := flaggedPair()
	mock := &MockClient{Response: &Response{Content: "CONFIRM"}}
	r := NewReviewer(mock, stubDetector{candidate})

	got := r.EvaluateConflict(a, b)
	if got == nil {
		t.Fatal("confirmed finding was dropped")
	}
	if got.Confidence != candidate.Confidence || got.ConflictType != candidate.ConflictType {
		t.Errorf("finding altered by review: %+v", got)
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("Calls = %d, want 1", len(mock.Calls))
	}
}

func TestReviewerRejectDropsFinding(t *testing.T) {
	a, b, candidate := flaggedPair()
	mock := &MockClient{Response: &Response{Content: "REJECT"}}
	r := NewReviewer(mock, stubDetector{candidate})

	if got := r.EvaluateConflict(a, b); got != nil {
		t.Errorf("rejected finding survived: %+v", got)
	}
}

func TestReviewerClientErrorKeepsFinding(t *testing.T) {
	a, b, candidate := flaggedPair()
	mock := &MockClient{Err: fmt.Errorf("model unavailable")}
	r := NewReviewer(mock, stubDetector{candidate})

	if got := r.EvaluateConflict(a, b); got == nil {
		t.Fatal("client failure discarded a heuristic finding")
	}
}

func TestReviewerSkipsUnflaggedPairs(t *testing.T) {
	a, b, _ := flaggedPair()
	mock := &MockClient{Response: &Response{Content: "CONFIRM"}}
	r := NewReviewer(mock, stubDetector{nil})

	if got := r.EvaluateConflict(a, b); got != nil {
		t.Errorf("got %+v for an unflagged pair, want nil", got)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("model consulted for an unflagged pair: %d calls", len(mock.Calls))
	}
}
