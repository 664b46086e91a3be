package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/servconnect/mlservices/internal/domain"
)

// DefaultGeminiModel is used when no model name is configured
const DefaultGeminiModel = "gemini-embedding-001"

// GeminiEncoder embeds text with the Google GenAI embedding API.
type GeminiEncoder struct {
	client    *genai.Client
	model     string
	dimension int
	logger    *zap.Logger
}

// NewGeminiEncoder creates an encoder. dimension <= 0 keeps the model's native width.
func NewGeminiEncoder(ctx context.Context, apiKey, model string, dimension int, logger *zap.Logger) (*GeminiEncoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google API key is required for the gemini encoder (set MLSERVE_MATCHING_API_KEY)")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiEncoder{
		client:    client,
		model:     model,
		dimension: dimension,
		logger:    logger.With(zap.String("encoder", "gemini"), zap.String("model", model)),
	}, nil
}

// ModelName returns the embedding model name.
func (e *GeminiEncoder) ModelName() string {
	return e.model
}

// Encode embeds all texts in a single API call.
func (e *GeminiEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"}
	if e.dimension > 0 {
		dim := int32(e.dimension)
		cfg.OutputDimensionality = &dim
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoderFailure, err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings from API", domain.ErrEncoderFailure, len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", domain.ErrEncoderFailure, i)
		}
		out[i] = emb.Values
	}

	e.logger.Debug("embedded batch", zap.Int("inputs", len(texts)))
	return out, nil
}
