package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servconnect/mlservices/internal/domain"
)

func frag(text string, conf float64) domain.TextFragment {
	return domain.TextFragment{Text: text, Confidence: conf}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "lowercase and trim", input: "  Rahul SHARMA ", want: "rahul sharma"},
		{name: "punctuation dropped", input: "O'Brien-Smith", want: "obriensmith"},
		{name: "digits dropped", input: "Rahul 2nd", want: "rahul nd"},
		{name: "accents folded", input: "José Müller", want: "jose muller"},
		{name: "whitespace collapsed", input: "a \t\n b", want: "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical after normalization", a: "Rahul Sharma", b: "RAHUL  sharma.", want: 1.0},
		{name: "empty side", a: "", b: "Rahul", want: 0.0},
		{name: "only punctuation", a: "123", b: "Rahul", want: 0.0},
		{name: "one word differs", a: "Rahul Verma", b: "Rahul Sharma", want: 0.782608695652174},
		{name: "different people", a: "Priya Singh", b: "Rahul Sharma", want: 0.43478260869565216},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NameSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNameSimilarity_SymmetricAndBounded(t *testing.T) {
	names := []string{"Rahul Sharma", "Sharma Rahul", "abcd", "dcba", "Priya", "P. R. Iyer", "José", "Jose"}
	for _, a := range names {
		for _, b := range names {
			ab := NameSimilarity(a, b)
			ba := NameSimilarity(b, a)
			assert.Equal(t, ab, ba, "%q vs %q", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
	assert.Equal(t, 1.0, NameSimilarity("José", "Jose"))
}

func TestNameResolver_ExtractCandidates(t *testing.T) {
	r := NewNameResolver(nil)

	fragments := []domain.TextFragment{
		frag("GOVERNMENT OF INDIA", 0.95),
		frag("Name: Rahul Sharma", 0.9),
		frag("Father's Name", 0.85),
		frag("Suresh Sharma", 0.8),
		frag("DOB: 01/01/1990", 0.9),
		frag("Ab", 0.99),
		frag("lowercase words", 0.5),
		frag("lowercase confident", 0.9),
		frag("Male", 0.9),
	}

	candidates, lines := r.ExtractCandidates(fragments)
	assert.Len(t, lines, 8, "fragments of two characters or fewer are dropped")

	want := []domain.NameCandidate{
		{Name: "Rahul Sharma", Confidence: 0.9, Source: domain.SourceSameLine},
		{Name: "Suresh Sharma", Confidence: 0.8, Source: domain.SourceNextLine},
		{Name: "Suresh Sharma", Confidence: 0.8, Source: domain.SourceStandalone},
		{Name: "lowercase confident", Confidence: 0.9, Source: domain.SourceStandalone},
	}
	assert.Equal(t, want, candidates)
}

func TestNameResolver_ExtractCandidates_SameLineRejectsNonAlpha(t *testing.T) {
	r := NewNameResolver(nil)
	candidates, _ := r.ExtractCandidates([]domain.TextFragment{
		frag("Name: R4hul", 0.9),
		frag("Holder - AB", 0.9),
	})
	assert.Empty(t, candidates)
}

func TestNameResolver_ExtractCandidates_OneIndicatorPerLine(t *testing.T) {
	r := NewNameResolver(nil)
	candidates, _ := r.ExtractCandidates([]domain.TextFragment{
		frag("Father Name: Ravi Kumar", 0.9),
	})
	require.Len(t, candidates, 1)
	assert.Equal(t, "Ravi Kumar", candidates[0].Name)
}

func TestNameResolver_ExtractCandidates_CountsCharacters(t *testing.T) {
	r := NewNameResolver(nil)
	candidates, lines := r.ExtractCandidates([]domain.TextFragment{
		frag("Jé", 0.9),
		frag("Name: Zoë", 0.8),
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "Name: Zoë", lines[0].Text)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Zoë", candidates[0].Name)
	assert.Equal(t, domain.SourceSameLine, candidates[0].Source)
}

func TestNameResolver_ExtractCandidates_TooManyWords(t *testing.T) {
	r := NewNameResolver(nil)
	candidates, _ := r.ExtractCandidates([]domain.TextFragment{
		frag("One Two Three Four Five Six", 0.99),
		frag("One Two Three Four Five", 0.99),
	})
	require.Len(t, candidates, 1)
	assert.Equal(t, "One Two Three Four Five", candidates[0].Name)
}

func TestNameResolver_FindBestMatch(t *testing.T) {
	r := NewNameResolver(nil)
	ctx := context.Background()

	candidates := []domain.NameCandidate{
		{Name: "Suresh Sharma", Confidence: 0.8, Source: domain.SourceNextLine},
		{Name: "Rahul Sharma", Confidence: 0.9, Source: domain.SourceSameLine},
		{Name: "RAHUL SHARMA", Confidence: 0.7, Source: domain.SourceStandalone},
	}

	best, score, err := r.FindBestMatch(ctx, "rahul sharma", candidates)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, "Rahul Sharma", best.ExtractedName, "ties keep the earliest candidate")
	assert.Equal(t, domain.SourceSameLine, best.Source)
	assert.Equal(t, 0.9, best.OCRConfidence)

	best, score, err = r.FindBestMatch(ctx, "rahul sharma", nil)
	require.NoError(t, err)
	assert.Nil(t, best)
	assert.Zero(t, score)

	best, _, err = r.FindBestMatch(ctx, "!!!", candidates)
	require.NoError(t, err)
	assert.Nil(t, best, "zero similarity never selects a candidate")
}

func TestNameResolver_FindBestMatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewNameResolver(nil).FindBestMatch(ctx, "a", []domain.NameCandidate{{Name: "abc"}})
	assert.ErrorIs(t, err, context.Canceled)
}
