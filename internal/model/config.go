package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrMissingCredential is returned when a required API credential is absent
var ErrMissingCredential = errors.New("missing credential")

// Config is the complete runtime configuration.
// Field tags serve viper (mapstructure), yaml rendering and validation.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Knowledge KnowledgeConfig `yaml:"knowledge" mapstructure:"knowledge"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Archive   ArchiveConfig   `yaml:"archive" mapstructure:"archive"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LLMConfig configures the completion provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider" validate:"oneof=openai anthropic claude ollama"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// KnowledgeConfig configures the WolframAlpha verifier
type KnowledgeConfig struct {
	AppID    string        `yaml:"app_id,omitempty" mapstructure:"app_id"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Fallback bool          `yaml:"fallback" mapstructure:"fallback"` // Short Answers API when the full query fails
}

// PipelineConfig tunes the orchestrator
type PipelineConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=1,lte=32"` // 1 = strictly sequential
}

// ArchiveConfig controls the on-disk audit trail
type ArchiveConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir" validate:"required_if=Enabled true"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"` // recent-run index lifetime
}

// HTTPConfig is used when fetching pages to fact-check by URL
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gt=0"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ServerConfig configures the HTTP ingress
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr" validate:"required"`
	RateLimit    float64       `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"` // requests/second per client, 0 disables
	RateBurst    int           `yaml:"rate_burst" mapstructure:"rate_burst" validate:"gte=0"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gt=0"`
	RunTimeout   time.Duration `yaml:"run_timeout" mapstructure:"run_timeout"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Timeout:     60,
			MaxTokens:   1000,
			Temperature: 0,
		},
		Knowledge: KnowledgeConfig{
			BaseURL:  "https://api.wolframalpha.com",
			Timeout:  10 * time.Second,
			Fallback: true,
		},
		Pipeline: PipelineConfig{
			Concurrency: 1,
		},
		Archive: ArchiveConfig{
			Enabled:   true,
			Dir:       "results",
			MemoryTTL: time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:       15 * time.Second,
			UserAgent:     "factcheck/0.1 (+https://github.com/ppiankov/factcheck)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Server: ServerConfig{
			Addr:         ":5000",
			RateLimit:    2,
			RateBurst:    5,
			MaxBodyBytes: 1 << 20,
			RunTimeout:   5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and required credentials.
// Missing credentials wrap ErrMissingCredential.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	switch strings.ToLower(c.LLM.Provider) {
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY not set", ErrMissingCredential)
		}
	case "anthropic", "claude":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrMissingCredential)
		}
	}

	if c.Knowledge.AppID == "" {
		return fmt.Errorf("%w: WOLFRAM_APPID not set", ErrMissingCredential)
	}

	return nil
}
