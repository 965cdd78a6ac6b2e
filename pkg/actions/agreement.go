package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"spring/pkg/action"
	"spring/pkg/api"
	"spring/pkg/oracle"
	"spring/pkg/providers"
)

var agreementTypes = []string{"NDA", "contract"}

// CreateAgreement builds an agreement document for a person and sends it
// back as a file.
func CreateAgreement(store providers.DocumentStore) *action.Descriptor {
	return &action.Descriptor{
		Name:   "createAgreement",
		Intent: "Create a new agreement for the person",
		Args: map[string]action.FieldSpec{
			"agreementType": {
				Type:     action.FieldEnum,
				Required: true,
				Enum:     agreementTypes,
			},
			"Position": {
				Type:     action.FieldString,
				Required: true,
				Description: "Role of the person to create the agreement for. " +
					"If the agreement type is NDA, the role is automatically set to 'Recipient'",
			},
			"name": {
				Type:        action.FieldString,
				Required:    true,
				Description: "Full name of the person to create the agreement for",
			},
			"Email": {
				Type:     action.FieldString,
				Required: true,
			},
			"Id Type": {
				Type:        action.FieldString,
				Required:    true,
				Description: "Type of ID. For example, passport or residence permit",
			},
			"Id Number": {
				Type:        action.FieldString,
				Required:    true,
				Description: "The number of ID",
			},
			"Issue Authority": {
				Type:        action.FieldString,
				Required:    true,
				Description: "The authority that issued the ID. For example, 8032, or USA",
			},
			"Issue Date": {
				Type:     action.FieldDate,
				Required: false,
				Description: "The date when the ID was issued. The format is DD/MM/YYYY. " +
					"For example, 20/03/2023. It can be missing - in such cases put null.",
			},
			"expirationDate": {
				Type:        action.FieldDate,
				Required:    false,
				Description: "The expiration date of the agreement",
			},
		},
		Run: func(ctx context.Context, inv *action.Invocation) error {
			agreementType := inv.Args["agreementType"]
			position := inv.Args["Position"]
			name := inv.Args["name"]

			if strings.EqualFold(agreementType, "NDA") {
				position = "Recipient"
			}

			slog.Info("🔄 Creating agreement", "type", agreementType, "position", position, "name", name)

			issueDate := formatIssueDate(inv.Args["Issue Date"])
			identification, err := generateIdentification(ctx, inv.Oracle, inv.Args, issueDate)
			if err != nil {
				return err
			}
			slog.Info("✅ Generated identification", "identification", identification)

			agreement, err := store.CreateAgreement(ctx, providers.AgreementRequest{
				Type:           agreementType,
				Position:       position,
				Name:           name,
				Email:          inv.Args["Email"],
				IDType:         inv.Args["Id Type"],
				IDNumber:       inv.Args["Id Number"],
				IssueAuthority: inv.Args["Issue Authority"],
				IssueDate:      issueDate,
				ExpirationDate: inv.Args["expirationDate"],
				Identification: identification,
			})
			if err != nil {
				return fmt.Errorf("failed to create agreement: %w", err)
			}

			if err := inv.Reply(api.Response{
				Text: fmt.Sprintf("%s created (id %s)\n\nI will now send the %s as a file", agreementType, agreement.ID, agreementType),
			}); err != nil {
				return err
			}

			return inv.Reply(api.Response{
				Text: fmt.Sprintf("%s - %s", agreementType, name),
				File: &api.OutgoingFile{
					Name:    agreement.FileName,
					Data:    agreement.Content,
					Caption: fmt.Sprintf("%s - %s", agreementType, name),
				},
			})
		},
	}
}

// formatIssueDate converts DD/MM/YYYY to a spelled-out date, passing through
// anything it cannot parse.
func formatIssueDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse("02/01/2006", raw)
	if err != nil {
		return raw
	}
	return t.Format("2 January, 2006")
}

func generateIdentification(ctx context.Context, o oracle.Oracle, args action.ArgumentSet, issueDate string) (string, error) {
	prompt := fmt.Sprintf(`Create an identification for the person:
Name: %s
Document type: %s
Document number: %s
Authority: %s
Issue date: %s
Expiration date: %s

The identification should ideally be in the following format:
"[DOCUMENT_TYPE] [DOCUMENT_NUMBER], issued on [ISSUE_DATE] by authority [AUTHORITY]"
Example: "passport 123456789, issued on 1 January, 2000 by authority 1234"

Make sure the identification is formatted correctly and has no spelling or grammar errors.

If some data is missing, create an identification without it as best as possible.
However, do not put non-existent data - do not guess.`,
		args["name"], args["Id Type"], args["Id Number"], args["Issue Authority"], issueDate, args["expirationDate"])

	identification, err := o.Complete(ctx, oracle.Request{Input: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to generate identification: %w", err)
	}

	identification = strings.TrimSpace(identification)
	identification = strings.TrimSuffix(identification, ".")
	identification = strings.Trim(identification, "\"")
	if identification != "" {
		runes := []rune(identification)
		runes[0] = unicode.ToLower(runes[0])
		identification = string(runes)
	}

	return identification, nil
}
