package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/servconnect/mlservices/config"
	httpDelivery "github.com/servconnect/mlservices/internal/delivery/http"
	"github.com/servconnect/mlservices/internal/domain"
	"github.com/servconnect/mlservices/internal/infrastructure/cache"
	"github.com/servconnect/mlservices/internal/infrastructure/classifier"
	"github.com/servconnect/mlservices/internal/infrastructure/embedding"
	"github.com/servconnect/mlservices/internal/infrastructure/forest"
	"github.com/servconnect/mlservices/internal/infrastructure/imaging"
	"github.com/servconnect/mlservices/internal/infrastructure/ocr"
	"github.com/servconnect/mlservices/internal/usecase"
)

func noop() {}

// buildModeration loads the classifier. A load failure leaves the service
// running with health reporting the model as not loaded.
func buildModeration(_ context.Context, cfg *config.Config, log *zap.Logger) (httpDelivery.ServiceHandler, func(), error) {
	var model domain.TextClassifier
	if m, err := classifier.Load(cfg.Moderation.ModelPath); err != nil {
		log.Error("Failed to load moderation model", zap.String("path", cfg.Moderation.ModelPath), zap.Error(err))
	} else {
		model = m
		log.Info("Moderation model loaded", zap.String("path", cfg.Moderation.ModelPath))
	}

	service := usecase.NewModerationService(model, usecase.ModerationServiceConfig{
		Threshold: cfg.Moderation.Threshold,
	}, log)
	return httpDelivery.NewModerationHandler(service), noop, nil
}

func buildWellness(_ context.Context, cfg *config.Config, log *zap.Logger) (httpDelivery.ServiceHandler, func(), error) {
	var model domain.WellnessModel
	if m, err := forest.Load(cfg.Wellness.ModelPath); err != nil {
		log.Error("Failed to load wellness models", zap.String("path", cfg.Wellness.ModelPath), zap.Error(err))
	} else {
		model = m
		log.Info("Wellness models loaded", zap.String("path", cfg.Wellness.ModelPath))
	}

	service := usecase.NewWellnessService(model, log)
	return httpDelivery.NewWellnessHandler(service), noop, nil
}

func buildVerification(_ context.Context, cfg *config.Config, log *zap.Logger) (httpDelivery.ServiceHandler, func(), error) {
	var reader domain.TextReader
	tess := ocr.NewTesseract(cfg.Verification.TesseractBinary, cfg.Verification.Languages, log)
	if tess.Available() {
		reader = tess
		log.Info("OCR engine ready",
			zap.String("binary", cfg.Verification.TesseractBinary),
			zap.String("languages", cfg.Verification.Languages),
		)
	} else {
		log.Error("OCR engine not found", zap.String("binary", cfg.Verification.TesseractBinary))
	}

	service := usecase.NewVerificationService(
		reader,
		imaging.NewStager(cfg.Verification.TempDir, cfg.Verification.MaxPixels),
		usecase.VerificationServiceConfig{
			Threshold:      cfg.Verification.Threshold,
			AllowImagePath: cfg.Verification.AllowImagePath,
		},
		log,
	)
	return httpDelivery.NewVerificationHandler(service), noop, nil
}

func buildItemMatch(ctx context.Context, cfg *config.Config, log *zap.Logger) (httpDelivery.ServiceHandler, func(), error) {
	cacheRepo, closeCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Embedding cache ready", zap.String("type", cfg.Cache.Type), zap.Duration("ttl", cfg.Cache.TTL))

	var encoder domain.Encoder
	if inner, err := newEncoder(ctx, cfg.Matching, log); err != nil {
		log.Error("Failed to initialize encoder", zap.String("encoder", cfg.Matching.Encoder), zap.Error(err))
	} else {
		encoder = embedding.NewCachedEncoder(inner, cacheRepo, cfg.Cache.TTL, log)
		log.Info("Encoder ready", zap.String("encoder", cfg.Matching.Encoder), zap.String("model", inner.ModelName()))
	}

	service := usecase.NewItemMatchingService(encoder, usecase.ItemMatchingServiceConfig{
		Threshold: cfg.Matching.Threshold,
		TopK:      cfg.Matching.TopK,
	}, log)

	cleanup := func() {
		if err := closeCache(); err != nil {
			log.Warn("Failed to close embedding cache", zap.Error(err))
		}
	}
	return httpDelivery.NewItemMatchHandler(service), cleanup, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, func() error, error) {
	switch cfg.Type {
	case "redis":
		c, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return c, c.Close, nil
	default:
		c := cache.NewMemoryCache()
		return c, c.Close, nil
	}
}

func newEncoder(ctx context.Context, cfg config.MatchingConfig, log *zap.Logger) (domain.Encoder, error) {
	switch cfg.Encoder {
	case "tei":
		return embedding.NewTEIClient(cfg.Endpoint, cfg.ModelName, cfg.Timeout, log), nil
	case "gemini":
		return embedding.NewGeminiEncoder(ctx, cfg.APIKey, cfg.ModelName, cfg.Dimension, log)
	default:
		return embedding.NewHashingEncoder(cfg.Dimension), nil
	}
}
