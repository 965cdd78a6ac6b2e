package config

import (
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequiresOracle(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.Oracle = jsoniter.RawMessage(`[{"type":"openai","models":["gpt-4o-mini"]}]`)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, "Spring", cfg.SelfName)
	assert.Equal(t, "User", cfg.UserName)
	assert.Equal(t, "data", cfg.DataDir)
	assert.NotEmpty(t, cfg.SystemPrompt)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{SelfName: "Jarvis", DataDir: "/var/lib/spring"}
	cfg.applyDefaults()

	assert.Equal(t, "Jarvis", cfg.SelfName)
	assert.Equal(t, "/var/lib/spring", cfg.DataDir)
}

func TestLoadSystemConfigFallsBackToDefaults(t *testing.T) {
	cfg := LoadSystemConfig(filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, DefaultSystemConfig(), cfg)
}

func TestLoadSystemConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_resolution_rounds":5,"voice_replies":true}`), 0644))

	cfg := LoadSystemConfig(path)

	assert.Equal(t, 5, cfg.MaxResolutionRounds)
	assert.True(t, cfg.VoiceReplies)
	// Untouched fields keep their defaults.
	assert.Equal(t, 100, cfg.MaxHistorySize)
}

func TestLoadSystemConfigIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0644))

	cfg := LoadSystemConfig(path)

	assert.Equal(t, DefaultSystemConfig().MaxHistorySize, cfg.MaxHistorySize)
}
