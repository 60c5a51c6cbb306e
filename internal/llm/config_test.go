package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetModel(t *testing.T) {
	tests := []struct {
		name     string
		models   map[ModelTier]string
		tier     ModelTier
		expected string
	}{
		{name: "default lite", models: DefaultConfig().Models, tier: TierLite, expected: "gemini-2.5-flash-lite"},
		{name: "default standard", models: DefaultConfig().Models, tier: TierStandard, expected: "gemini-2.5-flash"},
		{name: "default advanced", models: DefaultConfig().Models, tier: TierAdvanced, expected: "gemini-2.5-pro"},
		{name: "advanced falls back to standard", models: map[ModelTier]string{TierStandard: "std", TierLite: "lite"}, tier: TierAdvanced, expected: "std"},
		{name: "unknown falls back to lite", models: map[ModelTier]string{TierLite: "lite"}, tier: "unknown", expected: "lite"},
		{name: "nothing configured", models: map[ModelTier]string{}, tier: TierAdvanced, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Provider: ProviderGemini, Models: tt.models}
			assert.Equal(t, tt.expected, cfg.GetModel(tt.tier))
		})
	}
}

func TestWithModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Temperature = 0.4
	custom := cfg.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", custom.GetModel(TierLite))
	assert.Equal(t, float32(0.4), custom.temperature())

	empty := (&Config{}).WithModel(TierLite, "x")
	assert.Equal(t, "x", empty.GetModel(TierStandard))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")
	assert.Equal(t, "gemini-2.5-flash", ConfigFromEnv().GetModel(TierStandard))

	t.Setenv("GEMINI_MODEL", "gemini-exp")
	cfg := ConfigFromEnv()
	assert.Equal(t, "gemini-exp", cfg.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced))
}

func TestGenerationDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, float32(defaultTemperature), cfg.temperature())
	assert.Equal(t, int32(defaultMaxOutputTokens), cfg.maxOutputTokens())

	cfg.Temperature = 0.3
	cfg.MaxOutputTokens = 1024
	assert.Equal(t, float32(0.3), cfg.temperature())
	assert.Equal(t, int32(1024), cfg.maxOutputTokens())
}
