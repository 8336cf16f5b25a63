package search

import (
	"math"
	"testing"
)

func TestCosineIdenticalVectors(t *testing.T) {
	v := []float64{0.3, -0.7, 0.64, 0.11}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected 1.0 for identical vectors, got %v", got)
	}
}

func TestCosineSymmetricAndBounded(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{-4, 5, -6}

	ab, ba := Cosine(a, b), Cosine(b, a)
	if ab != ba {
		t.Fatalf("cosine not symmetric: %v vs %v", ab, ba)
	}
	if ab < -1-1e-9 || ab > 1+1e-9 {
		t.Fatalf("cosine out of [-1,1]: %v", ab)
	}
}

func TestCosineMismatchedLengthsScoreZero(t *testing.T) {
	if got := Cosine([]float64{1, 2}, []float64{1, 2, 3}); got != 0 {
		t.Fatalf("expected 0 for mismatched lengths, got %v", got)
	}
}

func TestCosineZeroVector(t *testing.T) {
	if got := Cosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Fatalf("expected 0 for zero vector, got %v", got)
	}
}

func TestRankThresholdIsExclusive(t *testing.T) {
	r := Ranker{Threshold: 1.0, Limit: 10}
	query := []float64{1, 0}

	// Identical vector scores exactly 1.0, which is not strictly greater.
	matches := r.Rank(query, []Candidate{{ID: "exact", Embedding: []float64{1, 0}}})
	if len(matches) != 0 {
		t.Fatalf("score equal to threshold must be excluded, got %d matches", len(matches))
	}
}

func TestRankOrdersAndTruncates(t *testing.T) {
	r := Ranker{Threshold: 0.5, Limit: 2}
	query := []float64{1, 0}

	candidates := []Candidate{
		{ID: "low", Embedding: []float64{1, 1}},            // ~0.707
		{ID: "exact", Embedding: []float64{2, 0}},          // 1.0
		{ID: "negative", Embedding: []float64{-1, 0}},      // -1.0, filtered
		{ID: "mid", Embedding: []float64{3, 1}},            // ~0.949
		{ID: "short", Embedding: []float64{1}},             // length mismatch, 0
		{ID: "missing", Embedding: nil},                    // no embedding
	}

	matches := r.Rank(query, candidates)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches after truncation, got %d", len(matches))
	}
	if matches[0].ID != "exact" || matches[1].ID != "mid" {
		t.Fatalf("unexpected order: %v", matches)
	}
}

func TestRankStableTieBreak(t *testing.T) {
	r := Ranker{Threshold: 0.0, Limit: 10}
	query := []float64{1, 0}

	// Parallel vectors of different magnitude all score exactly 1.0.
	candidates := []Candidate{
		{ID: "first", Embedding: []float64{1, 0}},
		{ID: "second", Embedding: []float64{5, 0}},
		{ID: "third", Embedding: []float64{0.2, 0}},
	}

	matches := r.Rank(query, candidates)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	for i, want := range []string{"first", "second", "third"} {
		if matches[i].ID != want {
			t.Fatalf("tie not broken by candidate order: %v", matches)
		}
	}
}

func TestRankNeverExceedsLimit(t *testing.T) {
	r := Ranker{Threshold: -2, Limit: 3}
	query := []float64{1, 1}

	var candidates []Candidate
	for i := 0; i < 50; i++ {
		candidates = append(candidates, Candidate{ID: "c", Embedding: []float64{1, 1}})
	}

	if got := len(r.Rank(query, candidates)); got != 3 {
		t.Fatalf("expected limit of 3, got %d", got)
	}
}
