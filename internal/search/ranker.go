// Package search ranks embedded documents against a query vector by cosine
// similarity.
package search

import (
	"math"
	"sort"
)

// Candidate pairs an identifier with its embedding vector.
type Candidate struct {
	ID        string
	Embedding []float64
}

// Match is a ranked result.
type Match struct {
	ID    string
	Score float64
}

// Ranker filters by threshold and truncates to a result limit. Both values
// are deployment tuning parameters, not contracts.
type Ranker struct {
	Threshold float64
	Limit     int
}

// Cosine returns dot(a,b) / (|a|*|b|). Vectors of different lengths score 0
// rather than erroring; the threshold filter excludes them downstream. A zero
// vector also scores 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores candidates against the query, keeps those strictly above the
// threshold, orders them by descending score (stable, so candidate order
// breaks ties) and truncates to the limit.
func (r Ranker) Rank(query []float64, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		score := Cosine(query, c.Embedding)
		if score > r.Threshold {
			matches = append(matches, Match{ID: c.ID, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if r.Limit > 0 && len(matches) > r.Limit {
		matches = matches[:r.Limit]
	}
	return matches
}
