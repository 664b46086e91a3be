package usecase

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/servconnect/mlservices/internal/domain"
)

const (
	// DefaultMatchThreshold is the minimum boosted similarity kept by RankMatches
	DefaultMatchThreshold = 0.5

	// DefaultTopK is the number of matches returned when a request does not set one
	DefaultTopK = 5

	// CategoryBoost is added when query and candidate share a category
	CategoryBoost = 0.15
)

// ComposeItemText joins the descriptive fields of an item into one string for embedding.
func ComposeItemText(item domain.Item) string {
	parts := make([]string, 0, 4)
	if item.Title != "" {
		parts = append(parts, item.Title)
	}
	if item.Category != "" {
		parts = append(parts, "Category: "+item.Category)
	}
	if item.Description != "" {
		parts = append(parts, item.Description)
	}
	if item.Location != "" {
		parts = append(parts, "Location: "+item.Location)
	}
	return strings.Join(parts, " ")
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Zero vectors and mismatched lengths score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// SameCategory reports whether both categories are set and equal under Unicode case folding.
func SameCategory(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// BoostedSimilarity applies the category boost to a raw similarity, capped at 1.0.
func BoostedSimilarity(similarity float64, a, b domain.Item) float64 {
	if SameCategory(a.Category, b.Category) {
		similarity = math.Min(1.0, similarity+CategoryBoost)
	}
	return similarity
}

// RankMatches scores every candidate against the query, keeps those at or above
// threshold and returns at most topK of them, best first. Ties keep input order.
func RankMatches(query domain.Item, queryVec []float32, candidates []domain.Item, candidateVecs [][]float32, threshold float64, topK int) []domain.ItemMatch {
	matches := make([]domain.ItemMatch, 0, len(candidates))
	for i, candidate := range candidates {
		if i >= len(candidateVecs) {
			break
		}
		similarity := BoostedSimilarity(CosineSimilarity(queryVec, candidateVecs[i]), query, candidate)
		if similarity < threshold {
			continue
		}
		matches = append(matches, domain.ItemMatch{
			Item:            candidate,
			Similarity:      similarity,
			MatchPercentage: roundTo(similarity*100, 1),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
