package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servconnect/mlservices/internal/domain"
)

// tableEncoder returns a fixed vector per text and [0 0 1] for anything unknown.
type tableEncoder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (e *tableEncoder) ModelName() string { return "table" }

func (e *tableEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := e.vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{0, 0, 1}
	}
	return out, nil
}

func mustItem(t *testing.T, raw string) domain.Item {
	t.Helper()
	var item domain.Item
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	return item
}

func newWalletEncoder() *tableEncoder {
	return &tableEncoder{vectors: map[string][]float32{
		"Black Wallet Category: Wallet": {1, 0, 0},
		"Lost Wallet Category: wallet":  {0.8, 0.6, 0},
		"Keys Category: Keys":           {0.6, 0.8, 0},
		"Phone Category: Phone":         {0, 1, 0},
		"Purse Category: WALLET":        {1, 0, 0},
	}}
}

func TestComposeItemText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "all fields", raw: `{"title":"Wallet","category":"Accessories","description":"Brown leather","location":"Park"}`, want: "Wallet Category: Accessories Brown leather Location: Park"},
		{name: "missing fields skipped", raw: `{"title":"Keys","location":"Gym"}`, want: "Keys Location: Gym"},
		{name: "empty", raw: `{}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeItemText(mustItem(t, tt.raw)))
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestSameCategory(t *testing.T) {
	assert.True(t, SameCategory("Wallet", "wALLET"))
	assert.True(t, SameCategory("Straße", "STRASSE"))
	assert.False(t, SameCategory("", ""))
	assert.False(t, SameCategory("Wallet", ""))
	assert.False(t, SameCategory("Wallet", "Keys"))
}

func TestBoostedSimilarity_NeverExceedsOne(t *testing.T) {
	a := domain.Item{Category: "Wallet"}
	b := domain.Item{Category: "wallet"}
	for _, sim := range []float64{0, 0.3, 0.85, 0.9, 1.0} {
		boosted := BoostedSimilarity(sim, a, b)
		assert.LessOrEqual(t, boosted, 1.0)
		assert.GreaterOrEqual(t, boosted, sim)
	}
	assert.InDelta(t, 0.65, BoostedSimilarity(0.5, a, b), 1e-9)
	assert.Equal(t, 0.5, BoostedSimilarity(0.5, a, domain.Item{Category: "Keys"}))
}

func TestRankMatches(t *testing.T) {
	query := domain.Item{Title: "q", Category: "Wallet"}
	candidates := []domain.Item{
		{ID: "a", Category: "Keys"},
		{ID: "b", Category: "Keys"},
		{ID: "c", Category: "wallet"},
		{ID: "d", Category: "Phone"},
	}
	vecs := [][]float32{{0.6, 0.8}, {0.6, 0.8}, {0.6, 0.8}, {0, 1}}

	matches := RankMatches(query, []float32{1, 0}, candidates, vecs, 0.5, 10)
	require.Len(t, matches, 3)
	assert.Equal(t, "c", matches[0].Item.ID)
	assert.InDelta(t, 0.75, matches[0].Similarity, 1e-6)
	assert.Equal(t, 75.0, matches[0].MatchPercentage)
	// equal scores keep input order
	assert.Equal(t, "a", matches[1].Item.ID)
	assert.Equal(t, "b", matches[2].Item.ID)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
	}

	assert.Len(t, RankMatches(query, []float32{1, 0}, candidates, vecs, 0.5, 2), 2)
	assert.Empty(t, RankMatches(query, []float32{1, 0}, nil, nil, 0.5, 5))
	assert.Empty(t, RankMatches(query, []float32{1, 0}, candidates, vecs, 0.9, 5))
}

func TestRankMatches_ThresholdIsInclusive(t *testing.T) {
	query := domain.Item{Category: "Wallet"}
	candidates := []domain.Item{
		{ID: "same", Category: "Keys"},
		{ID: "boosted", Category: "wallet"},
		{ID: "below", Category: "Phone"},
	}
	vecs := [][]float32{{1, 0}, {0, 1}, {0, 1}}

	// cosine 1.0 against threshold 1.0
	matches := RankMatches(query, []float32{1, 0}, candidates, vecs, 1.0, 5)
	require.Len(t, matches, 1)
	assert.Equal(t, "same", matches[0].Item.ID)

	// orthogonal vectors plus the category boost land exactly on the threshold
	matches = RankMatches(query, []float32{1, 0}, candidates[1:], vecs[1:], CategoryBoost, 5)
	require.Len(t, matches, 1)
	assert.Equal(t, "boosted", matches[0].Item.ID)
	assert.Equal(t, CategoryBoost, matches[0].Similarity)

	assert.Empty(t, RankMatches(query, []float32{1, 0}, candidates[1:], vecs[1:], CategoryBoost+1e-9, 5))
}

func TestItemMatchingService_Match(t *testing.T) {
	svc := NewItemMatchingService(newWalletEncoder(), ItemMatchingServiceConfig{}, nil)
	query := mustItem(t, `{"id":"q1","title":"Black Wallet","category":"Wallet"}`)

	result, err := svc.Match(context.Background(), domain.MatchRequest{
		QueryItem: &query,
		CandidateItems: []domain.Item{
			mustItem(t, `{"id":"c1","user_id":"u1","title":"Lost Wallet","category":"wallet"}`),
			mustItem(t, `{"id":"c2","title":"Keys","category":"Keys"}`),
			mustItem(t, `{"id":"c3","title":"Phone","category":"Phone"}`),
			mustItem(t, `{"id":"c4","title":"Purse","category":"WALLET"}`),
		},
		TopK: ptr(2),
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.JSONEq(t, `"q1"`, string(result.QueryItemID))
	assert.Equal(t, 4, *result.TotalCandidates)
	assert.Equal(t, 2, *result.MatchesFound)
	require.Len(t, result.Matches, 2)

	assert.Equal(t, "c4", result.Matches[0].Item.ID)
	assert.Equal(t, 1.0, result.Matches[0].Similarity)
	assert.Equal(t, 100.0, result.Matches[0].MatchPercentage)

	assert.Equal(t, "c1", result.Matches[1].Item.ID)
	assert.InDelta(t, 0.95, result.Matches[1].Similarity, 1e-6)
	assert.Equal(t, 95.0, result.Matches[1].MatchPercentage)

	echoed, err := json.Marshal(result.Matches[1].Item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","user_id":"u1","title":"Lost Wallet","category":"wallet"}`, string(echoed))
}

func TestItemMatchingService_Match_NoCandidates(t *testing.T) {
	enc := newWalletEncoder()
	svc := NewItemMatchingService(enc, ItemMatchingServiceConfig{}, nil)
	query := mustItem(t, `{"id":7,"title":"Black Wallet"}`)

	result, err := svc.Match(context.Background(), domain.MatchRequest{QueryItem: &query})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Matches)
	assert.NotNil(t, result.Matches)
	assert.JSONEq(t, `7`, string(result.QueryItemID))
	assert.Equal(t, "No candidate items to match against", result.Message)
	assert.Nil(t, result.TotalCandidates)
	assert.Zero(t, enc.calls)
}

func TestItemMatchingService_Match_Errors(t *testing.T) {
	query := mustItem(t, `{"title":"Black Wallet"}`)
	empty := mustItem(t, `{}`)
	candidates := []domain.Item{mustItem(t, `{"title":"Keys"}`)}
	boom := errors.New("connection refused")

	tests := []struct {
		name    string
		encoder domain.Encoder
		req     domain.MatchRequest
		wantErr error
	}{
		{name: "model not loaded", encoder: nil, req: domain.MatchRequest{QueryItem: &query}, wantErr: domain.ErrModelNotLoaded},
		{name: "missing query item", encoder: newWalletEncoder(), req: domain.MatchRequest{}, wantErr: domain.ErrInvalidRequest},
		{name: "empty query item", encoder: newWalletEncoder(), req: domain.MatchRequest{QueryItem: &empty}, wantErr: domain.ErrInvalidRequest},
		{name: "threshold out of range", encoder: newWalletEncoder(), req: domain.MatchRequest{QueryItem: &query, Threshold: ptr(1.5)}, wantErr: domain.ErrInvalidRequest},
		{name: "top_k zero", encoder: newWalletEncoder(), req: domain.MatchRequest{QueryItem: &query, TopK: ptr(0)}, wantErr: domain.ErrInvalidRequest},
		{name: "encoder failure", encoder: &tableEncoder{err: boom}, req: domain.MatchRequest{QueryItem: &query, CandidateItems: candidates}, wantErr: domain.ErrEncoderFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItemMatchingService(tt.encoder, ItemMatchingServiceConfig{}, nil).Match(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestItemMatchingService_Similarity(t *testing.T) {
	svc := NewItemMatchingService(newWalletEncoder(), ItemMatchingServiceConfig{}, nil)
	a := mustItem(t, `{"title":"Black Wallet","category":"Wallet"}`)
	b := mustItem(t, `{"title":"Keys","category":"Keys"}`)
	c := mustItem(t, `{"title":"Lost Wallet","category":"wallet"}`)

	unboosted, err := svc.Similarity(context.Background(), domain.SimilarityRequest{Item1: &a, Item2: &b})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, unboosted.Similarity, 1e-6)
	assert.Equal(t, 60.0, unboosted.MatchPercentage)

	boosted, err := svc.Similarity(context.Background(), domain.SimilarityRequest{Item1: &a, Item2: &c})
	require.NoError(t, err)
	assert.InDelta(t, 0.95, boosted.Similarity, 1e-6)

	reversed, err := svc.Similarity(context.Background(), domain.SimilarityRequest{Item1: &c, Item2: &a})
	require.NoError(t, err)
	assert.InDelta(t, boosted.Similarity, reversed.Similarity, 1e-12)

	_, err = svc.Similarity(context.Background(), domain.SimilarityRequest{Item1: &a})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestItemMatchingService_Embed(t *testing.T) {
	svc := NewItemMatchingService(newWalletEncoder(), ItemMatchingServiceConfig{}, nil)
	assert.Equal(t, "table", svc.ModelName())

	item := mustItem(t, `{"title":"Keys","category":"Keys"}`)
	result, err := svc.Embed(context.Background(), domain.EmbedRequest{Item: &item})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []float32{0.6, 0.8, 0}, result.Embedding)
	assert.Equal(t, 3, result.Dimension)

	_, err = svc.Embed(context.Background(), domain.EmbedRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = NewItemMatchingService(nil, ItemMatchingServiceConfig{}, nil).Embed(context.Background(), domain.EmbedRequest{Item: &item})
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
	assert.Empty(t, NewItemMatchingService(nil, ItemMatchingServiceConfig{}, nil).ModelName())
}
