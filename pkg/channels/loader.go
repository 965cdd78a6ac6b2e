package channels

import (
	"log/slog"

	"spring/pkg/api"
	"spring/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

// LoadFromConfig resolves a factory for every configured channel and builds
// the channel instances. Unknown or failing channels are logged and skipped
// so one broken platform does not block the rest.
func LoadFromConfig(configs map[string]jsoniter.RawMessage, system *config.SystemConfig) []api.Channel {
	var built []api.Channel

	for name, rawConfig := range configs {
		factory, ok := GetChannelFactory(name)
		if !ok {
			slog.Warn("Unknown channel type", "name", name)
			continue
		}

		channel, err := factory.Create(rawConfig, system)
		if err != nil {
			slog.Error("Failed to create channel", "name", name, "error", err)
			continue
		}
		if channel == nil {
			continue
		}

		built = append(built, channel)
		slog.Info("Channel created", "name", name)
	}

	return built
}
