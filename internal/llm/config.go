// Package llm wraps the generative model that proposes quote drafts.
// The pipeline never trusts its output; drafts are hints that are merged, validated and recomputed.
package llm

import (
	"maps"
	"os"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short single-trade jobs
	TierLite ModelTier = "lite"
	// TierStandard produces most drafts
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long multi-trade conversations
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

const (
	// defaultTemperature keeps drafts close to deterministic
	defaultTemperature = 0.1

	// defaultMaxOutputTokens fits a draft of a few dozen lines
	defaultMaxOutputTokens = 4096
)

// fallbackOrder is tried when a tier has no model of its own
var fallbackOrder = []ModelTier{TierStandard, TierLite}

// Config holds the model configuration for draft generation
type Config struct {
	Provider        Provider             `json:"provider" yaml:"provider"`
	Models          map[ModelTier]string `json:"models" yaml:"models"`
	Temperature     float32              `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxOutputTokens int32                `json:"max_output_tokens,omitempty" yaml:"max_output_tokens,omitempty"`
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		MaxOutputTokens: defaultMaxOutputTokens,
	}
}

// ConfigFromEnv returns the default configuration with GEMINI_MODEL, when set,
// replacing the standard tier model
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		return cfg.WithModel(TierStandard, model)
	}
	return cfg
}

// GetModel returns the model name for a tier, falling back to standard then lite.
// Empty means no model is configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	for _, t := range fallbackOrder {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with model assigned to tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = map[ModelTier]string{}
	}
	out.Models[tier] = model
	return &out
}

func (c *Config) temperature() float32 {
	if c.Temperature <= 0 {
		return defaultTemperature
	}
	return c.Temperature
}

func (c *Config) maxOutputTokens() int32 {
	if c.MaxOutputTokens <= 0 {
		return defaultMaxOutputTokens
	}
	return c.MaxOutputTokens
}
