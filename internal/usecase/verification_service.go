package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/metrics"
)

// maxDetectedText caps all_text_detected in verification responses
const maxDetectedText = 20

// ImageStager turns an uploaded base64 image into a file the OCR engine can read.
type ImageStager interface {
	StageBase64(encoded string) (path string, cleanup func(), err error)
}

// VerificationServiceConfig tunes the identity verification flow.
type VerificationServiceConfig struct {
	Threshold      float64
	AllowImagePath bool
}

// VerificationService compares the name printed on an ID card with the name a user registered.
type VerificationService struct {
	reader   domain.TextReader
	stager   ImageStager
	resolver *NameResolver
	config   VerificationServiceConfig
	logger   *zap.Logger
}

// NewVerificationService creates a verification service. A nil reader makes
// every request fail with ErrModelNotLoaded.
func NewVerificationService(reader domain.TextReader, stager ImageStager, config VerificationServiceConfig, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Threshold <= 0 || config.Threshold > 1 {
		config.Threshold = DefaultNameThreshold
	}
	return &VerificationService{
		reader:   reader,
		stager:   stager,
		resolver: NewNameResolver(logger),
		config:   config,
		logger:   logger,
	}
}

// Ready reports whether an OCR engine is configured.
func (s *VerificationService) Ready() bool {
	return s.reader != nil
}

// Verify runs OCR on the card and decides whether the user can be auto-approved.
// Request validation errors wrap ErrInvalidRequest, ErrImageNotFound or ErrImagePathDisabled;
// any other error means the card could not be processed.
func (s *VerificationService) Verify(ctx context.Context, req domain.VerifyRequest) (*domain.VerificationResult, error) {
	if !s.Ready() {
		return nil, domain.ErrModelNotLoaded
	}
	if strings.TrimSpace(req.UserName) == "" {
		return nil, fmt.Errorf("%w: Missing user_name field", domain.ErrInvalidRequest)
	}

	threshold := s.config.Threshold
	if req.Threshold != nil {
		if *req.Threshold <= 0 || *req.Threshold > 1 {
			return nil, fmt.Errorf("%w: threshold must be in (0, 1]", domain.ErrInvalidRequest)
		}
		threshold = *req.Threshold
	}

	fragments, err := s.readImage(ctx, req.ImageBase64, req.ImagePath)
	if err != nil {
		if !isClientError(err) {
			metrics.VerificationDecisions.WithLabelValues(metrics.DecisionError).Inc()
		}
		return nil, err
	}

	candidates, lines := s.resolver.ExtractCandidates(fragments)
	best, similarity, err := s.resolver.FindBestMatch(ctx, req.UserName, candidates)
	if err != nil {
		return nil, err
	}

	autoApproved := similarity >= threshold

	result := &domain.VerificationResult{
		Verified:        autoApproved,
		AutoApproved:    autoApproved,
		SimilarityScore: roundTo(similarity, 4),
		Threshold:       threshold,
		UserName:        req.UserName,
		ExtractedNames:  make([]string, 0, len(candidates)),
		BestMatch:       best,
		AllTextDetected: make([]string, 0, min(len(lines), maxDetectedText)),
	}
	for _, c := range candidates {
		result.ExtractedNames = append(result.ExtractedNames, c.Name)
	}
	for i, l := range lines {
		if i == maxDetectedText {
			break
		}
		result.AllTextDetected = append(result.AllTextDetected, l.Text)
	}

	percent := roundTo(similarity*100, 1)
	decision := metrics.DecisionApproved
	switch {
	case autoApproved:
		result.Message = fmt.Sprintf("ID verified successfully! Name match: %.1f%%", percent)
	case len(candidates) > 0:
		decision = metrics.DecisionMismatch
		result.Message = fmt.Sprintf("Name mismatch detected. Best match: %.1f%%. Requires admin approval.", percent)
	default:
		decision = metrics.DecisionNoCandidate
		result.Message = "Could not extract name from ID card. Requires admin approval."
	}
	metrics.VerificationDecisions.WithLabelValues(decision).Inc()

	s.logger.Info("identity verification finished",
		zap.Bool("auto_approved", autoApproved),
		zap.Float64("similarity", result.SimilarityScore),
		zap.Int("candidates", len(candidates)))

	return result, nil
}

// ExtractText returns every line the OCR engine found, confidences rounded to 4 places.
func (s *VerificationService) ExtractText(ctx context.Context, req domain.ExtractTextRequest) ([]domain.TextFragment, error) {
	if !s.Ready() {
		return nil, domain.ErrModelNotLoaded
	}

	fragments, err := s.readImage(ctx, req.ImageBase64, req.ImagePath)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TextFragment, len(fragments))
	for i, f := range fragments {
		f.Confidence = roundTo(f.Confidence, 4)
		if f.BBox == nil {
			f.BBox = []domain.Point{}
		}
		out[i] = f
	}
	return out, nil
}

// readImage stages the image, runs OCR and always removes the staged file.
func (s *VerificationService) readImage(ctx context.Context, encoded, path string) ([]domain.TextFragment, error) {
	var imagePath string
	cleanup := func() {}

	switch {
	case encoded != "":
		staged, done, err := s.stager.StageBase64(encoded)
		cleanup = done
		if err != nil {
			cleanup()
			return nil, err
		}
		imagePath = staged
	case path != "":
		if !s.config.AllowImagePath {
			return nil, domain.ErrImagePathDisabled
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrImageNotFound, path)
		}
		imagePath = path
	default:
		return nil, fmt.Errorf("%w: Missing image_base64 or image_path", domain.ErrInvalidRequest)
	}
	defer cleanup()

	fragments, err := s.reader.ReadText(ctx, imagePath)
	if err != nil {
		s.logger.Error("OCR failed", zap.Error(err))
		if !errors.Is(err, domain.ErrOCRFailure) {
			err = fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
		}
		return nil, err
	}
	return fragments, nil
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidRequest) ||
		errors.Is(err, domain.ErrImageNotFound) ||
		errors.Is(err, domain.ErrImagePathDisabled)
}

// roundTo rounds halves to even, so 81.25 becomes 81.2.
func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(x*p) / p
}
