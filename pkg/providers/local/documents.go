package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spring/pkg/providers"

	"github.com/google/uuid"
)

// DocumentStore renders agreements from built-in templates and keeps a copy
// under dataDir/agreements.
type DocumentStore struct {
	dir string
}

func NewDocumentStore(dataDir string) (*DocumentStore, error) {
	dir := filepath.Join(dataDir, "agreements")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create agreements directory: %w", err)
	}
	return &DocumentStore{dir: dir}, nil
}

func (s *DocumentStore) CreateAgreement(ctx context.Context, req providers.AgreementRequest) (*providers.Agreement, error) {
	id := uuid.NewString()

	var b strings.Builder
	switch strings.ToLower(req.Type) {
	case "nda":
		b.WriteString("NON-DISCLOSURE AGREEMENT\n")
	default:
		b.WriteString("EMPLOYMENT CONTRACT\n")
	}
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	fmt.Fprintf(&b, "Agreement ID: %s\n", id)
	fmt.Fprintf(&b, "Date: %s\n\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "This agreement is entered into with:\n\n")
	fmt.Fprintf(&b, "  Name:     %s\n", req.Name)
	if req.Position != "" {
		fmt.Fprintf(&b, "  Position: %s\n", req.Position)
	}
	fmt.Fprintf(&b, "  Email:    %s\n\n", req.Email)
	if req.Identification != "" {
		fmt.Fprintf(&b, "Identification:\n  %s\n\n", req.Identification)
	} else {
		fmt.Fprintf(&b, "Identification:\n  %s %s, issued by %s\n\n", req.IDType, req.IDNumber, req.IssueAuthority)
	}
	if req.IssueDate != "" {
		fmt.Fprintf(&b, "Document issue date: %s\n", req.IssueDate)
	}
	if req.ExpirationDate != "" {
		fmt.Fprintf(&b, "Document expiration date: %s\n", req.ExpirationDate)
	}
	b.WriteString("\n\nSignature: ______________________\n")

	content := []byte(b.String())
	fileName := fmt.Sprintf("%s_%s.txt", strings.ToLower(req.Type), id[:8])

	if err := os.WriteFile(filepath.Join(s.dir, fileName), content, 0644); err != nil {
		return nil, fmt.Errorf("failed to store agreement: %w", err)
	}

	return &providers.Agreement{
		ID:       id,
		Type:     req.Type,
		FileName: fileName,
		Content:  content,
	}, nil
}
