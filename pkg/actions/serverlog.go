package actions

import (
	"context"
	"log/slog"

	"spring/pkg/action"
	"spring/pkg/api"
)

// ServerLog writes a user-supplied note to the server log.
func ServerLog() *action.Descriptor {
	return &action.Descriptor{
		Name:   "serverlog",
		Intent: "Write a message to the server log",
		Args: map[string]action.FieldSpec{
			"message": {
				Type:        action.FieldString,
				Required:    true,
				Description: "Message to write to the server log",
			},
		},
		Run: func(ctx context.Context, inv *action.Invocation) error {
			slog.Info("💬 User log entry", "message", inv.Args["message"])
			return inv.Reply(api.Response{Text: "Logged: " + inv.Args["message"]})
		},
	}
}
