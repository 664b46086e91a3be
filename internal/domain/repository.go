package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque byte slices so every backend stores the same encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TextClassifier scores cleaned text and returns the probability that it is harmful.
type TextClassifier interface {
	PredictProba(text string) (float64, error)
}

// WellnessModel predicts the three wellness targets from an encoded feature row.
type WellnessModel interface {
	FeatureNames() []string
	Encode(column, value string) float64
	Predict(target string, features []float64) (string, error)
}

// TextReader runs OCR over an image file on disk.
type TextReader interface {
	ReadText(ctx context.Context, imagePath string) ([]TextFragment, error)
}

// Encoder turns text into a fixed-length embedding vector.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}
