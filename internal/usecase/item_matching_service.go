package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/metrics"
)

// ItemMatchingServiceConfig holds defaults for match requests
type ItemMatchingServiceConfig struct {
	Threshold float64
	TopK      int
}

// ItemMatchingService ranks lost and found items by embedding similarity.
type ItemMatchingService struct {
	encoder domain.Encoder
	config  ItemMatchingServiceConfig
	logger  *zap.Logger
}

// NewItemMatchingService creates an item matching service. A nil encoder makes
// every request fail with ErrModelNotLoaded.
func NewItemMatchingService(encoder domain.Encoder, config ItemMatchingServiceConfig, logger *zap.Logger) *ItemMatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Threshold <= 0 || config.Threshold > 1 {
		config.Threshold = DefaultMatchThreshold
	}
	if config.TopK <= 0 {
		config.TopK = DefaultTopK
	}
	return &ItemMatchingService{encoder: encoder, config: config, logger: logger}
}

// Ready reports whether an encoder is configured.
func (s *ItemMatchingService) Ready() bool {
	return s.encoder != nil
}

// ModelName returns the encoder's model name, empty when none is loaded.
func (s *ItemMatchingService) ModelName() string {
	if s.encoder == nil {
		return ""
	}
	return s.encoder.ModelName()
}

// Match ranks the candidate items against the query item.
func (s *ItemMatchingService) Match(ctx context.Context, req domain.MatchRequest) (*domain.ItemMatchResult, error) {
	if !s.Ready() {
		return nil, domain.ErrModelNotLoaded
	}
	if req.QueryItem.Empty() {
		return nil, fmt.Errorf("%w: Missing query_item", domain.ErrInvalidRequest)
	}

	threshold := s.config.Threshold
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			return nil, fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidRequest)
		}
		threshold = *req.Threshold
	}
	topK := s.config.TopK
	if req.TopK != nil {
		if *req.TopK < 1 {
			return nil, fmt.Errorf("%w: top_k must be at least 1", domain.ErrInvalidRequest)
		}
		topK = *req.TopK
	}

	if len(req.CandidateItems) == 0 {
		return &domain.ItemMatchResult{
			Success:     true,
			Matches:     []domain.ItemMatch{},
			QueryItemID: req.QueryItem.IDJSON(),
			Message:     "No candidate items to match against",
		}, nil
	}

	texts := make([]string, 0, len(req.CandidateItems)+1)
	texts = append(texts, ComposeItemText(*req.QueryItem))
	for _, c := range req.CandidateItems {
		texts = append(texts, ComposeItemText(c))
	}

	vectors, err := s.encode(ctx, texts)
	if err != nil {
		return nil, err
	}

	matches := RankMatches(*req.QueryItem, vectors[0], req.CandidateItems, vectors[1:], threshold, topK)

	outcome := "no_match"
	if len(matches) > 0 {
		outcome = "matched"
	}
	metrics.PredictionsTotal.WithLabelValues("itemmatch", outcome).Inc()

	s.logger.Debug("ranked candidates",
		zap.Int("candidates", len(req.CandidateItems)),
		zap.Int("matches", len(matches)),
		zap.Float64("threshold", threshold))

	total, found := len(req.CandidateItems), len(matches)
	return &domain.ItemMatchResult{
		Success:         true,
		Matches:         matches,
		QueryItemID:     req.QueryItem.IDJSON(),
		TotalCandidates: &total,
		MatchesFound:    &found,
	}, nil
}

// Similarity scores two items against each other, category boost included.
func (s *ItemMatchingService) Similarity(ctx context.Context, req domain.SimilarityRequest) (*domain.SimilarityResult, error) {
	if !s.Ready() {
		return nil, domain.ErrModelNotLoaded
	}
	if req.Item1 == nil || req.Item2 == nil {
		return nil, fmt.Errorf("%w: Missing item1 or item2", domain.ErrInvalidRequest)
	}

	vectors, err := s.encode(ctx, []string{ComposeItemText(*req.Item1), ComposeItemText(*req.Item2)})
	if err != nil {
		return nil, err
	}

	similarity := BoostedSimilarity(CosineSimilarity(vectors[0], vectors[1]), *req.Item1, *req.Item2)
	return &domain.SimilarityResult{
		Success:         true,
		Similarity:      similarity,
		MatchPercentage: roundTo(similarity*100, 1),
	}, nil
}

// Embed returns the embedding vector of a single item.
func (s *ItemMatchingService) Embed(ctx context.Context, req domain.EmbedRequest) (*domain.EmbeddingResult, error) {
	if !s.Ready() {
		return nil, domain.ErrModelNotLoaded
	}
	if req.Item == nil {
		return nil, fmt.Errorf("%w: Missing item", domain.ErrInvalidRequest)
	}

	vectors, err := s.encode(ctx, []string{ComposeItemText(*req.Item)})
	if err != nil {
		return nil, err
	}
	return &domain.EmbeddingResult{
		Success:   true,
		Embedding: vectors[0],
		Dimension: len(vectors[0]),
	}, nil
}

func (s *ItemMatchingService) encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.encoder.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoderFailure, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEncoderFailure, len(vectors), len(texts))
	}
	return vectors, nil
}
