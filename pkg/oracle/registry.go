package oracle

import (
	"spring/pkg/config"
)

// ProviderGroupConfig defines the configuration for one group of models
// belonging to a single provider type.
type ProviderGroupConfig struct {
	Type    string         `json:"type"`
	APIKeys []string       `json:"api_keys,omitempty"`
	Models  []string       `json:"models"`
	BaseURL string         `json:"base_url,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// ProviderFactory defines the factory interface for creating oracle clients.
type ProviderFactory interface {
	// Create builds one atomic oracle per configured model.
	Create(groupConfig ProviderGroupConfig, systemConfig *config.SystemConfig) ([]Oracle, error)
}

// Global provider registry, populated by provider packages during init().
var providerRegistry = make(map[string]ProviderFactory)

// RegisterProvider registers a ProviderFactory under a provider type name.
func RegisterProvider(name string, factory ProviderFactory) {
	providerRegistry[name] = factory
}

// GetProviderFactory retrieves the factory registered for a provider type.
func GetProviderFactory(name string) (ProviderFactory, bool) {
	f, ok := providerRegistry[name]
	return f, ok
}
