package actions

import (
	"context"
	"fmt"
	"strings"

	"spring/pkg/action"
	"spring/pkg/api"
	"spring/pkg/providers"
)

// ListPeople renders the contact directory.
func ListPeople(contacts providers.ContactDirectory) *action.Descriptor {
	return &action.Descriptor{
		Name:   "listPeople",
		Intent: "List currently stored people and their data",
		Args:   map[string]action.FieldSpec{},
		Run: func(ctx context.Context, inv *action.Invocation) error {
			people, err := contacts.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list people: %w", err)
			}

			if len(people) == 0 {
				return inv.Reply(api.Response{Text: "No people stored yet."})
			}

			var b strings.Builder
			for i, person := range people {
				fmt.Fprintf(&b, "%d. %s - %s", i, person.Name, person.Email)
				if person.Position != "" {
					fmt.Fprintf(&b, " - %s", person.Position)
				}
				b.WriteString("\n")
			}

			return inv.Reply(api.Response{Text: strings.TrimRight(b.String(), "\n")})
		},
	}
}
