package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/metrics"
)

// DefaultModerationThreshold is the probability at which text is flagged harmful.
const DefaultModerationThreshold = 0.5

// batchEchoLimit is how many characters of each text a batch result echoes back
const batchEchoLimit = 100

var (
	urlRegex       = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	htmlTagRegex   = regexp.MustCompile(`<.*?>`)
	nonAlphaRegex  = regexp.MustCompile(`[^a-zA-Z\s]`)
	moderationTrim = regexp.MustCompile(`\s+`)
)

// ModerationServiceConfig holds configuration for the moderation service
type ModerationServiceConfig struct {
	Threshold float64
}

// ModerationService flags harmful user-generated content.
type ModerationService struct {
	classifier domain.TextClassifier
	threshold  float64
	logger     *zap.Logger
}

// NewModerationService creates a moderation service. A nil classifier makes
// every prediction fail with ErrModelNotLoaded.
func NewModerationService(classifier domain.TextClassifier, config ModerationServiceConfig, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := config.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultModerationThreshold
	}
	return &ModerationService{classifier: classifier, threshold: threshold, logger: logger}
}

// Ready reports whether a classifier is loaded.
func (s *ModerationService) Ready() bool {
	return s.classifier != nil
}

// DefaultThreshold returns the threshold used when a request does not set one.
func (s *ModerationService) DefaultThreshold() float64 {
	return s.threshold
}

// CleanText lowercases text and strips URLs, HTML tags and non-letters.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = urlRegex.ReplaceAllString(text, "")
	text = htmlTagRegex.ReplaceAllString(text, "")
	text = nonAlphaRegex.ReplaceAllString(text, " ")
	text = moderationTrim.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Predict scores a single text.
func (s *ModerationService) Predict(ctx context.Context, req domain.ModerationRequest) (*domain.ModerationResult, error) {
	if !s.Ready() {
		return nil, domain.ErrModelNotLoaded
	}
	if req.Text == nil {
		return nil, fmt.Errorf("%w: Missing text field", domain.ErrInvalidRequest)
	}
	threshold, err := s.resolveThreshold(req.Threshold)
	if err != nil {
		return nil, err
	}

	confidence, err := s.score(*req.Text)
	if err != nil {
		return nil, err
	}

	result := &domain.ModerationResult{
		IsHarmful:  strings.TrimSpace(*req.Text) != "" && confidence >= threshold,
		Confidence: confidence,
		Threshold:  threshold,
	}
	s.record(result.IsHarmful)
	return result, nil
}

// PredictBatch scores every text in order.
func (s *ModerationService) PredictBatch(ctx context.Context, req domain.BatchModerationRequest) (*domain.BatchModerationResult, error) {
	if !s.Ready() {
		return nil, domain.ErrModelNotLoaded
	}
	if req.Texts == nil {
		return nil, fmt.Errorf("%w: Missing texts field", domain.ErrInvalidRequest)
	}
	threshold, err := s.resolveThreshold(req.Threshold)
	if err != nil {
		return nil, err
	}

	results := make([]domain.BatchItemResult, 0, len(req.Texts))
	for _, text := range req.Texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			results = append(results, domain.BatchItemResult{Text: text})
			s.record(false)
			continue
		}

		confidence, err := s.score(text)
		if err != nil {
			return nil, err
		}
		harmful := confidence >= threshold
		results = append(results, domain.BatchItemResult{
			Text:       truncateEcho(text),
			IsHarmful:  harmful,
			Confidence: confidence,
		})
		s.record(harmful)
	}

	s.logger.Debug("moderated batch", zap.Int("texts", len(req.Texts)))
	return &domain.BatchModerationResult{Results: results, Threshold: threshold}, nil
}

func (s *ModerationService) score(text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	p, err := s.classifier.PredictProba(CleanText(text))
	if err != nil {
		return 0, fmt.Errorf("classifier failed: %w", err)
	}
	return p, nil
}

func (s *ModerationService) resolveThreshold(t *float64) (float64, error) {
	if t == nil {
		return s.threshold, nil
	}
	if *t < 0 || *t > 1 {
		return 0, fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidRequest)
	}
	return *t, nil
}

func (s *ModerationService) record(harmful bool) {
	outcome := "clean"
	if harmful {
		outcome = "harmful"
	}
	metrics.PredictionsTotal.WithLabelValues("moderation", outcome).Inc()
}

// truncateEcho shortens text longer than batchEchoLimit characters and marks the cut.
func truncateEcho(text string) string {
	runes := []rune(text)
	if len(runes) <= batchEchoLimit {
		return text
	}
	return string(runes[:batchEchoLimit]) + "..."
}
