package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Service names, one per subcommand.
const (
	ServiceModeration   = "moderation"
	ServiceWellness     = "wellness"
	ServiceVerification = "idverify"
	ServiceItemMatch    = "itemmatch"
)

var defaultPorts = map[string]string{
	ServiceModeration:   "5050",
	ServiceWellness:     "5002",
	ServiceVerification: "5004",
	ServiceItemMatch:    "5003",
}

// Config holds all configuration for one service process
type Config struct {
	Service      string             `mapstructure:"-"`
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Moderation   ModerationConfig   `mapstructure:"moderation"`
	Wellness     WellnessConfig     `mapstructure:"wellness"`
	Verification VerificationConfig `mapstructure:"verification"`
	Matching     MatchingConfig     `mapstructure:"matching"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	BodyLimit       int64         `mapstructure:"body_limit"` // bytes
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// CacheConfig holds embedding cache configuration
type CacheConfig struct {
	Type      string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL  string        `mapstructure:"redis_url"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// ModerationConfig holds content moderation configuration
type ModerationConfig struct {
	ModelPath string  `mapstructure:"model_path"`
	Threshold float64 `mapstructure:"threshold"`
}

// WellnessConfig holds wellness prediction configuration
type WellnessConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

// VerificationConfig holds identity verification configuration
type VerificationConfig struct {
	TesseractBinary string  `mapstructure:"tesseract_binary"`
	Languages       string  `mapstructure:"languages"`
	Threshold       float64 `mapstructure:"threshold"`
	AllowImagePath  bool    `mapstructure:"allow_image_path"`
	TempDir         string  `mapstructure:"temp_dir"`
	MaxPixels       int     `mapstructure:"max_pixels"` // decoded image size cap
}

// MatchingConfig holds item matching configuration
type MatchingConfig struct {
	Encoder   string        `mapstructure:"encoder"` // "hashing", "tei" or "gemini"
	ModelName string        `mapstructure:"model_name"`
	Endpoint  string        `mapstructure:"endpoint"`
	APIKey    string        `mapstructure:"api_key"`
	Dimension int           `mapstructure:"dimension"`
	Threshold float64       `mapstructure:"threshold"`
	TopK      int           `mapstructure:"top_k"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Load loads configuration for service from environment variables and config files
func Load(service string) (*Config, error) {
	port, ok := defaultPorts[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mlserve/")

	// MLSERVE_SERVER_PORT -> server.port
	v.SetEnvPrefix("MLSERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, port)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	config.Service = service

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper, port string) {
	// Server defaults
	v.SetDefault("server.port", port)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.body_limit", 10<<20)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("ratelimit.per_ip", 120)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.key_prefix", "mlserve:")
	v.SetDefault("cache.ttl", "168h") // 7 days

	v.SetDefault("moderation.model_path", "models/moderation.json")
	v.SetDefault("moderation.threshold", 0.5)

	v.SetDefault("wellness.model_path", "models/wellness.json")

	v.SetDefault("verification.tesseract_binary", "tesseract")
	v.SetDefault("verification.languages", "eng")
	v.SetDefault("verification.threshold", 0.75)
	v.SetDefault("verification.allow_image_path", false)
	v.SetDefault("verification.temp_dir", "")
	v.SetDefault("verification.max_pixels", 40_000_000)

	v.SetDefault("matching.encoder", "hashing")
	v.SetDefault("matching.model_name", "")
	v.SetDefault("matching.endpoint", "http://localhost:8080")
	v.SetDefault("matching.api_key", "")
	v.SetDefault("matching.dimension", 384)
	v.SetDefault("matching.threshold", 0.5)
	v.SetDefault("matching.top_k", 5)
	v.SetDefault("matching.timeout", "30s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if config.Server.BodyLimit <= 0 {
		return fmt.Errorf("server body_limit must be positive, got: %d", config.Server.BodyLimit)
	}
	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}
	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	switch config.Service {
	case ServiceModeration:
		if err := validateThreshold("moderation", config.Moderation.Threshold); err != nil {
			return err
		}
		if config.Moderation.ModelPath == "" {
			return fmt.Errorf("moderation model_path is required")
		}
	case ServiceWellness:
		if config.Wellness.ModelPath == "" {
			return fmt.Errorf("wellness model_path is required")
		}
	case ServiceVerification:
		if err := validateThreshold("verification", config.Verification.Threshold); err != nil {
			return err
		}
		if config.Verification.MaxPixels <= 0 {
			return fmt.Errorf("verification max_pixels must be positive, got: %d", config.Verification.MaxPixels)
		}
	case ServiceItemMatch:
		if err := validateThreshold("matching", config.Matching.Threshold); err != nil {
			return err
		}
		if config.Matching.TopK < 1 {
			return fmt.Errorf("matching top_k must be at least 1, got: %d", config.Matching.TopK)
		}
		switch config.Matching.Encoder {
		case "hashing":
		case "tei":
			if config.Matching.Endpoint == "" {
				return fmt.Errorf("matching endpoint is required when encoder is 'tei'")
			}
		case "gemini":
			if config.Matching.APIKey == "" {
				return fmt.Errorf("matching api_key is required when encoder is 'gemini' (set MLSERVE_MATCHING_API_KEY)")
			}
		default:
			return fmt.Errorf("matching encoder must be 'hashing', 'tei' or 'gemini', got: %s", config.Matching.Encoder)
		}
	}

	return nil
}

func validateThreshold(section string, t float64) error {
	if t <= 0 || t > 1 {
		return fmt.Errorf("%s threshold must be in (0, 1], got: %v", section, t)
	}
	return nil
}
