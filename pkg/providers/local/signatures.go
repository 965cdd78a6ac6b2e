package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"spring/pkg/providers"

	"github.com/google/uuid"
)

type signatureRecord struct {
	ID            string    `json:"id"`
	AgreementType string    `json:"agreement_type"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Link          string    `json:"link"`
	RequestedAt   time.Time `json:"requested_at"`
}

// SignatureService records signature requests in a JSON file and hands out
// local signing links. It stands in for a real e-signature integration.
type SignatureService struct {
	mu      sync.Mutex
	path    string
	baseURL string
}

func NewSignatureService(dataDir string, baseURL string) (*SignatureService, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if baseURL == "" {
		baseURL = "https://sign.example.com"
	}
	return &SignatureService{
		path:    filepath.Join(dataDir, "signatures.json"),
		baseURL: baseURL,
	}, nil
}

func (s *SignatureService) RequestSignature(ctx context.Context, agreementType string, person providers.Person) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := signatureRecord{
		ID:            uuid.NewString(),
		AgreementType: agreementType,
		Name:          person.Name,
		Email:         person.Email,
		RequestedAt:   time.Now(),
	}
	record.Link = fmt.Sprintf("%s/sign/%s", s.baseURL, record.ID)

	var records []signatureRecord
	if data, err := os.ReadFile(s.path); err == nil {
		if err := json.Unmarshal(data, &records); err != nil {
			return "", fmt.Errorf("failed to parse signature records: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read signature records: %w", err)
	}

	records = append(records, record)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode signature records: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write signature records: %w", err)
	}

	return record.Link, nil
}
