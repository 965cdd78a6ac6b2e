package actions

import (
	"context"
	"fmt"

	"spring/pkg/action"
	"spring/pkg/api"
	"spring/pkg/oracle"
)

// Respond is the fallback action: a plain conversational reply generated
// over the chat history. It takes no arguments.
func Respond(systemPrompt string) *action.Descriptor {
	return &action.Descriptor{
		Name:   "respond",
		Intent: "Simple response to user in case no other action is reasonable",
		Args:   map[string]action.FieldSpec{},
		Run: func(ctx context.Context, inv *action.Invocation) error {
			text, err := inv.Oracle.Complete(ctx, oracle.Request{
				System:  systemPrompt,
				History: inv.History,
			})
			if err != nil {
				return fmt.Errorf("failed to generate response: %w", err)
			}
			return inv.Reply(api.Response{Text: text})
		},
	}
}
