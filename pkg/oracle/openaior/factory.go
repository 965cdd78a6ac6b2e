package openaior

import (
	"fmt"
	"log/slog"
	"os"

	"spring/pkg/config"
	"spring/pkg/oracle"
)

type Factory struct{}

func (f *Factory) Create(group oracle.ProviderGroupConfig, system *config.SystemConfig) ([]oracle.Oracle, error) {
	keys := group.APIKeys
	if len(keys) == 0 {
		if envKey := os.Getenv("OPENAI_API_KEY"); envKey != "" {
			keys = []string{envKey}
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("openai provider requires an API key (config or OPENAI_API_KEY)")
	}
	if len(group.Models) == 0 {
		return nil, fmt.Errorf("openai provider requires at least one model")
	}

	var oracles []oracle.Oracle
	for _, key := range keys {
		for _, model := range group.Models {
			client, err := NewClient(key, model, group.BaseURL, group.Options)
			if err != nil {
				return nil, fmt.Errorf("failed to create openai client for %s: %w", model, err)
			}
			oracles = append(oracles, client)
			slog.Info("✅ Registered OpenAI oracle", "model", model)
		}
	}

	return oracles, nil
}

func init() {
	oracle.RegisterProvider("openai", &Factory{})
}
