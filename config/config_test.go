package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cfg, err := Load(ServiceItemMatch)
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Service != ServiceItemMatch {
			t.Errorf("Service = %s, want %s", cfg.Service, ServiceItemMatch)
		}
		if cfg.Server.Port != "5003" {
			t.Errorf("Server.Port = %s, want 5003", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Server.BodyLimit != 10<<20 {
			t.Errorf("Server.BodyLimit = %d, want %d", cfg.Server.BodyLimit, 10<<20)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 168*time.Hour {
			t.Errorf("Cache.TTL = %v, want 168h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 120 {
			t.Errorf("RateLimit.PerIP = %d, want 120", cfg.RateLimit.PerIP)
		}
		if cfg.Matching.Encoder != "hashing" {
			t.Errorf("Matching.Encoder = %s, want hashing", cfg.Matching.Encoder)
		}
		if cfg.Matching.Timeout != 30*time.Second {
			t.Errorf("Matching.Timeout = %v, want 30s", cfg.Matching.Timeout)
		}
		if cfg.Matching.TopK != 5 {
			t.Errorf("Matching.TopK = %d, want 5", cfg.Matching.TopK)
		}
		if cfg.Verification.MaxPixels != 40_000_000 {
			t.Errorf("Verification.MaxPixels = %d, want 40000000", cfg.Verification.MaxPixels)
		}
	})

	t.Run("uses a default port per service", func(t *testing.T) {
		want := map[string]string{
			ServiceModeration:   "5050",
			ServiceWellness:     "5002",
			ServiceVerification: "5004",
			ServiceItemMatch:    "5003",
		}
		for service, port := range want {
			cfg, err := Load(service)
			if err != nil {
				t.Fatalf("Load(%s) error = %v, want nil", service, err)
			}
			if cfg.Server.Port != port {
				t.Errorf("Load(%s).Server.Port = %s, want %s", service, cfg.Server.Port, port)
			}
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Setenv("MLSERVE_SERVER_PORT", "9090")
		t.Setenv("MLSERVE_SERVER_ENVIRONMENT", "production")
		t.Setenv("MLSERVE_CACHE_TYPE", "redis")
		t.Setenv("MLSERVE_CACHE_REDIS_URL", "redis://localhost:6379")
		t.Setenv("MLSERVE_CACHE_TTL", "24h")
		t.Setenv("MLSERVE_RATELIMIT_PER_IP", "200")
		t.Setenv("MLSERVE_VERIFICATION_THRESHOLD", "0.8")
		t.Setenv("MLSERVE_VERIFICATION_ALLOW_IMAGE_PATH", "true")
		t.Setenv("MLSERVE_LOG_FORMAT", "json")

		cfg, err := Load(ServiceVerification)
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Verification.Threshold != 0.8 {
			t.Errorf("Verification.Threshold = %v, want 0.8", cfg.Verification.Threshold)
		}
		if !cfg.Verification.AllowImagePath {
			t.Errorf("Verification.AllowImagePath = false, want true")
		}
		if cfg.Log.Format != "json" {
			t.Errorf("Log.Format = %s, want json", cfg.Log.Format)
		}
	})

	t.Run("rejects unknown service", func(t *testing.T) {
		if _, err := Load("scheduler"); err == nil {
			t.Error("Load() error = nil, want error for unknown service")
		}
	})

	t.Run("fails validation with invalid cache type", func(t *testing.T) {
		t.Setenv("MLSERVE_CACHE_TYPE", "invalid")

		if _, err := Load(ServiceModeration); err == nil {
			t.Error("Load() error = nil, want validation error")
		}
	})

	t.Run("fails validation when gemini has no api key", func(t *testing.T) {
		t.Setenv("MLSERVE_MATCHING_ENCODER", "gemini")

		if _, err := Load(ServiceItemMatch); err == nil {
			t.Error("Load() error = nil, want validation error")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Service:      ServiceItemMatch,
			Server:       ServerConfig{Port: "5003", BodyLimit: 1024},
			Cache:        CacheConfig{Type: "memory"},
			Moderation:   ModerationConfig{ModelPath: "m.json", Threshold: 0.5},
			Wellness:     WellnessConfig{ModelPath: "w.json"},
			Verification: VerificationConfig{Threshold: 0.75, MaxPixels: 1000},
			Matching:     MatchingConfig{Encoder: "hashing", Threshold: 0.5, TopK: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "zero body limit", mutate: func(c *Config) { c.Server.BodyLimit = 0 }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit.PerIP = -1 }, wantErr: true},
		{name: "redis without url", mutate: func(c *Config) { c.Cache.Type = "redis" }, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) { c.Cache.Type = "redis"; c.Cache.RedisURL = "redis://x:6379" }, wantErr: false},
		{name: "unknown encoder", mutate: func(c *Config) { c.Matching.Encoder = "word2vec" }, wantErr: true},
		{name: "tei without endpoint", mutate: func(c *Config) { c.Matching.Encoder = "tei" }, wantErr: true},
		{name: "gemini with key", mutate: func(c *Config) { c.Matching.Encoder = "gemini"; c.Matching.APIKey = "k" }, wantErr: false},
		{name: "matching threshold above one", mutate: func(c *Config) { c.Matching.Threshold = 1.5 }, wantErr: true},
		{name: "matching top_k zero", mutate: func(c *Config) { c.Matching.TopK = 0 }, wantErr: true},
		{name: "verification threshold zero", mutate: func(c *Config) { c.Service = ServiceVerification; c.Verification.Threshold = 0 }, wantErr: true},
		{name: "verification max_pixels zero", mutate: func(c *Config) { c.Service = ServiceVerification; c.Verification.MaxPixels = 0 }, wantErr: true},
		{name: "moderation without model", mutate: func(c *Config) { c.Service = ServiceModeration; c.Moderation.ModelPath = "" }, wantErr: true},
		{name: "wellness without model", mutate: func(c *Config) { c.Service = ServiceWellness; c.Wellness.ModelPath = "" }, wantErr: true},
		{name: "other service ignores matching section", mutate: func(c *Config) { c.Service = ServiceWellness; c.Matching.Encoder = "" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
