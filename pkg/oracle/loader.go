package oracle

import (
	"fmt"
	"log"
	"time"

	"spring/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewFromConfig builds the oracle from the raw 'oracle' config section.
// Multiple providers are wrapped in a Fallback; a single provider is
// returned directly. Every returned oracle enforces the configured
// per-call timeout.
func NewFromConfig(rawOracle jsoniter.RawMessage, system *config.SystemConfig) (Oracle, error) {
	if rawOracle == nil {
		return nil, fmt.Errorf("missing 'oracle' config")
	}

	var groups []ProviderGroupConfig
	if err := json.Unmarshal(rawOracle, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse 'oracle' config: %v", err)
	}

	var atomic []Oracle
	for _, group := range groups {
		log.Printf("Loading oracle group: %s (%d models)", group.Type, len(group.Models))

		factory, ok := GetProviderFactory(group.Type)
		if !ok {
			log.Printf("⚠️ Unknown provider type: %s", group.Type)
			continue
		}

		oracles, err := factory.Create(group, system)
		if err != nil {
			log.Printf("⚠️ Failed to create oracles for %s: %v", group.Type, err)
			continue
		}

		atomic = append(atomic, oracles...)
	}

	if len(atomic) == 0 {
		return nil, fmt.Errorf("no oracle providers could be initialized")
	}

	log.Printf("✅ Total atomic oracle clients initialized: %d", len(atomic))

	timeout := time.Duration(system.OracleTimeoutMs) * time.Millisecond

	if len(atomic) == 1 {
		return WithTimeout(atomic[0], timeout), nil
	}

	fb := NewFallback(atomic, system.MaxRetries, time.Duration(system.RetryDelayMs)*time.Millisecond)
	return WithTimeout(fb, timeout), nil
}
