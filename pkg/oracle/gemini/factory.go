package gemini

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
		if envKey := os.Getenv("GEMINI_API_KEY"); envKey != "" {
			keys = []string{envKey}
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("gemini provider requires an API key (config or GEMINI_API_KEY)")
	}
	if len(group.Models) == 0 {
		return nil, fmt.Errorf("gemini provider requires at least one model")
	}

	var oracles []oracle.Oracle
	for _, key := range keys {
		for _, model := range group.Models {
			client, err := NewClient(key, model)
			if err != nil {
				return nil, fmt.Errorf("failed to create gemini client for %s: %w", model, err)
			}
			oracles = append(oracles, client)
			slog.Info("✅ Registered Gemini oracle", "model", model)
		}
	}

	return oracles, nil
}

func init() {
	oracle.RegisterProvider("gemini", &Factory{})
}
