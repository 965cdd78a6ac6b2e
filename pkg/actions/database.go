package actions

import (
	"context"
	"fmt"

	"spring/pkg/action"
	"spring/pkg/api"
)

// Database selects a database and an operation to perform on it.
func Database() *action.Descriptor {
	return &action.Descriptor{
		Name:   "database",
		Intent: "Perform some action on some of our Databases",
		Args: map[string]action.FieldSpec{
			"database": {
				Type:        action.FieldEnum,
				Required:    true,
				Description: "Database to use for the action",
				Enum:        []string{"People", "Finances", "Other"},
			},
			"action": {
				Type:        action.FieldEnum,
				Required:    true,
				Description: "Action to perform",
				Enum:        []string{"Add", "Update", "Remove"},
			},
		},
		Run: func(ctx context.Context, inv *action.Invocation) error {
			return inv.Reply(api.Response{
				Text: fmt.Sprintf("You have selected action: %s on database: %s", inv.Args["action"], inv.Args["database"]),
			})
		},
	}
}
