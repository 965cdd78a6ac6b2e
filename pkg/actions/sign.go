package actions

import (
	"context"
	"fmt"
	"log/slog"

	"spring/pkg/action"
	"spring/pkg/api"
	"spring/pkg/providers"
)

// SignAgreement looks a person up in the contact directory and sends their
// agreement out for signature.
func SignAgreement(contacts providers.ContactDirectory, signatures providers.SignatureService) *action.Descriptor {
	return &action.Descriptor{
		Name:   "signAgreement",
		Intent: "Send an agreement for signing",
		Args: map[string]action.FieldSpec{
			"agreementType": {
				Type:     action.FieldEnum,
				Required: true,
				Enum:     agreementTypes,
			},
			"personName": {
				Type:        action.FieldString,
				Required:    true,
				Description: "Full name of the person to send the agreement to",
			},
		},
		Run: func(ctx context.Context, inv *action.Invocation) error {
			agreementType := inv.Args["agreementType"]
			name := inv.Args["personName"]

			slog.Info("🔄 Sending agreement for signing", "type", agreementType, "name", name)

			person, err := contacts.FindByName(ctx, name)
			if err != nil {
				slog.Warn("⚠️ Contact lookup failed", "name", name, "error", err)
				return inv.Reply(api.Response{Text: fmt.Sprintf("No %s found for %s", agreementType, name)})
			}

			if person.Email == "" {
				slog.Warn("⚠️ Contact has no email", "name", person.Name)
				return inv.Reply(api.Response{Text: fmt.Sprintf("No email found for %s", person.Name)})
			}

			link, err := signatures.RequestSignature(ctx, agreementType, *person)
			if err != nil {
				return fmt.Errorf("failed to request signature: %w", err)
			}

			return inv.Reply(api.Response{
				Text: fmt.Sprintf("File sent for signing to %s at %s:\n\n%s", person.Name, person.Email, link),
			})
		},
	}
}
