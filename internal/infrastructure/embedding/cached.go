package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/metrics"
)

// CachedEncoder wraps an Encoder and stores vectors in a CacheRepository.
// Cache failures are logged and never fail an encode.
type CachedEncoder struct {
	inner  domain.Encoder
	cache  domain.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedEncoder creates a caching decorator.
func NewCachedEncoder(inner domain.Encoder, cache domain.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEncoder{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

// ModelName returns the wrapped encoder's model name.
func (e *CachedEncoder) ModelName() string {
	return e.inner.ModelName()
}

// Encode serves cached vectors and encodes the misses in one batch.
func (e *CachedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = CacheKey(e.inner.ModelName(), text)
		data, err := e.cache.Get(ctx, keys[i])
		if err == nil {
			if vec, decErr := decodeVector(data); decErr == nil {
				out[i] = vec
				metrics.EmbeddingCache.WithLabelValues("hit").Inc()
				continue
			}
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			e.logger.Warn("embedding cache read failed", zap.Error(err))
		}
		metrics.EmbeddingCache.WithLabelValues("miss").Inc()
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := e.inner.Encode(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", domain.ErrEncoderFailure, len(vectors), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = vectors[j]
		if err := e.cache.Set(ctx, keys[i], encodeVector(vectors[j]), e.ttl); err != nil {
			e.logger.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// CacheKey is the cache key of text embedded by model.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + model + ":" + hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("corrupt cached vector of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
