package ollamaor

import (
	"fmt"
	"log/slog"

	"spring/pkg/config"
	"spring/pkg/oracle"
)

type Factory struct{}

func (f *Factory) Create(group oracle.ProviderGroupConfig, system *config.SystemConfig) ([]oracle.Oracle, error) {
	if len(group.Models) == 0 {
		return nil, fmt.Errorf("ollama provider requires at least one model")
	}

	var oracles []oracle.Oracle
	for _, model := range group.Models {
		client, err := NewClient(model, group.BaseURL, group.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client for %s: %w", model, err)
		}
		oracles = append(oracles, client)
		slog.Info("✅ Registered Ollama oracle", "model", model)
	}

	return oracles, nil
}

func init() {
	oracle.RegisterProvider("ollama", &Factory{})
}
