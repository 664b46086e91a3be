// Package embedding provides the sentence encoders used by the item matcher.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/servconnect/mlservices/internal/domain"
)

const (
	// DefaultTEIModel is the sentence-transformers model served by default
	DefaultTEIModel = "all-MiniLM-L6-v2"

	maxAttempts = 3
)

// TEIClient talks to a text-embeddings-inference compatible server.
type TEIClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

type teiRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
	Truncate  bool     `json:"truncate"`
}

// NewTEIClient creates a client for the server at baseURL.
func NewTEIClient(baseURL, model string, timeout time.Duration, logger *zap.Logger) *TEIClient {
	if model == "" {
		model = DefaultTEIModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// 50 requests/sec with a burst of 10 keeps a single CPU inference server responsive
	limiter := rate.NewLimiter(rate.Limit(50), 10)

	return &TEIClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		rateLimiter: limiter,
		logger:      logger.With(zap.String("encoder", "tei"), zap.String("model", model)),
	}
}

// ModelName returns the served model name.
func (c *TEIClient) ModelName() string {
	return c.model
}

// Encode embeds texts in one request, retrying transient failures.
func (c *TEIClient) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(teiRequest{Inputs: texts, Normalize: true, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		vectors, retry, err := c.embed(ctx, body)
		if err == nil {
			if len(vectors) != len(texts) {
				return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", domain.ErrEncoderFailure, len(vectors), len(texts))
			}
			c.logger.Debug("embedded batch", zap.Int("inputs", len(texts)), zap.Int("attempt", attempt))
			return vectors, nil
		}

		lastErr = err
		if !retry {
			return nil, err
		}
		c.logger.Warn("embedding request failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
		}
	}

	c.logger.Error("all embedding attempts failed", zap.Error(lastErr))
	return nil, lastErr
}

// embed performs a single request. The bool result reports whether the failure is retryable.
func (c *TEIClient) embed(ctx context.Context, body []byte) ([][]float32, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mlserve/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%w: %v", domain.ErrEncoderFailure, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading response: %v", domain.ErrEncoderFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("%w: status %d: %s", domain.ErrEncoderFailure, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var vectors [][]float32
	if err := json.Unmarshal(payload, &vectors); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrEncoderFailure, err)
	}
	return vectors, false, nil
}

// exponentialBackoff returns the wait before retrying after attempt (500ms, 1s, 2s, ...).
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
}
