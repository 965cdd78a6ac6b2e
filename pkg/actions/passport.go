package actions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"spring/pkg/action"
	"spring/pkg/api"
	"spring/pkg/providers"
)

// ParsePassport handles a passport photo attached to the message.
func ParsePassport(parser providers.DocumentParser) *action.Descriptor {
	return &action.Descriptor{
		Name:   "passport",
		Intent: "Parse passport data from the attached image",
		Args:   map[string]action.FieldSpec{},
		Run: func(ctx context.Context, inv *action.Invocation) error {
			photo := inv.Message.Photo
			if photo == nil {
				return inv.Reply(api.Response{Text: "Please attach the file"})
			}

			slog.Info("🔄 Processing passport photo", "filename", photo.Filename, "bytes", len(photo.Data))

			scan, err := parser.ParsePassport(ctx, photo.Data, photo.Filename)
			if err != nil {
				return fmt.Errorf("failed to process passport: %w", err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Passport received (id %s).\n", scan.ID)
			if len(scan.Fields) == 0 {
				b.WriteString("No fields were extracted; the document was stored for manual processing.")
			} else {
				b.WriteString("Extracted Data:\n")
				keys := make([]string, 0, len(scan.Fields))
				for key := range scan.Fields {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					fmt.Fprintf(&b, "  %s: %s\n", key, scan.Fields[key])
				}
			}

			return inv.Reply(api.Response{Text: strings.TrimRight(b.String(), "\n")})
		},
	}
}
