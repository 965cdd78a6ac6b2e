package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Config defines the global application configuration structure.
// This structure maps directly to the config.json file and holds
// business-level settings like channel credentials and oracle provider choices.
type Config struct {
	// Channels contains a map of channel identifiers (e.g., "telegram", "web")
	// to their specific configuration payloads in raw JSON format.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
	// Oracle holds the configuration for the LLM oracle providers in raw JSON.
	Oracle jsoniter.RawMessage `json:"oracle"`
	// SystemPrompt is the assistant persona string used as the system message
	// for free-form completions (the "respond" action and identification text).
	SystemPrompt string `json:"system_prompt"`
	// SelfName and UserName are the labels used when the conversation history
	// is rendered as a display string for the oracle or the /history command.
	SelfName string `json:"self_name"`
	UserName string `json:"user_name"`
	// DataDir is the root directory for persisted state: conversation history,
	// the contact directory, generated agreements and signature records.
	DataDir string `json:"data_dir"`
}

// Validate ensures the configuration structure contains all mandatory fields.
// It acts as a primary guard before the system proceeds to initialization.
func (c *Config) Validate() error {
	if len(c.Oracle) == 0 {
		return fmt.Errorf("mandatory 'oracle' configuration is missing or empty")
	}
	return nil
}

// SystemConfig defines engine-level technical parameters.
// These settings are stored in system.json and control the performance,
// reliability, and technical behavior of the Spring engine.
type SystemConfig struct {
	// MaxHistorySize bounds the conversation history. When an append exceeds
	// the bound, the oldest messages are evicted silently (FIFO).
	MaxHistorySize int `json:"max_history_size"`
	// MaxResolutionRounds caps how many follow-up questions the argument
	// resolver may ask the user before giving up on the action.
	MaxResolutionRounds int `json:"max_resolution_rounds"`
	// OracleTimeoutMs is the hard cutoff time (in milliseconds) for a single
	// oracle request. The context will be cancelled if exceeded.
	OracleTimeoutMs int `json:"oracle_timeout_ms"`
	// MaxRetries is the number of times the fallback oracle will attempt to
	// recover from a transient provider error before moving on.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the duration to wait (in milliseconds) between
	// consecutive retry attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
	// TelegramMessageLimit is the maximum character count for a single
	// Telegram message. Longer responses are split into multiple chunks.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// DownloadTimeoutMs is the timeout (in milliseconds) applied when
	// fetching external media (e.g., photos and voice notes from Telegram).
	DownloadTimeoutMs int `json:"download_timeout_ms"`
	// VoiceReplies converts final text responses to audio before sending.
	// The text form is still what enters the conversation history.
	VoiceReplies bool `json:"voice_replies"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with hardcoded
// safe default values. This is used as a fallback when the system.json file
// is missing or corrupt, ensuring the engine can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxHistorySize:       100,
		MaxResolutionRounds:  3,
		OracleTimeoutMs:      60000,
		MaxRetries:           3,
		RetryDelayMs:         500,
		TelegramMessageLimit: 4000,
		DownloadTimeoutMs:    10000,
		VoiceReplies:         false,
		LogLevel:             "info",
	}
}

// Load reads and parses the JSON configuration files from the current working directory.
// It first attempts to load 'config.json' (app config). If this file is missing, it
// returns an error. Then it calls LoadSystemConfig to load 'system.json'.
// Returns pointers to the loaded Config and SystemConfig, or an error if the
// mandatory app config fails.
func Load() (*Config, *SystemConfig, error) {
	appPath := "config.json"
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("config file '%s' not found. please create one", appPath)
	}

	appFile, err := os.ReadFile(appPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(appFile, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	cfg.applyDefaults()

	sysCfg := LoadSystemConfig("system.json")

	return &cfg, sysCfg, nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails.
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg // File not found, use defaults
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
		return cfg // Parse failed, use defaults
	}

	return cfg
}

func (c *Config) applyDefaults() {
	if c.SelfName == "" {
		c.SelfName = "Spring"
	}
	if c.UserName == "" {
		c.UserName = "User"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = "You are a helpful assistant replying in short concise messages."
	}
}
