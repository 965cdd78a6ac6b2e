package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"spring/pkg/providers"

	"github.com/google/uuid"
)

// DocumentParser stores uploaded passport photos under dataDir/passports.
// It performs no field extraction; Fields is left empty so callers can tell
// the user the document was received but not parsed.
type DocumentParser struct {
	dir string
}

func NewDocumentParser(dataDir string) (*DocumentParser, error) {
	dir := filepath.Join(dataDir, "passports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create passports directory: %w", err)
	}
	return &DocumentParser{dir: dir}, nil
}

func (p *DocumentParser) ParsePassport(ctx context.Context, image []byte, filename string) (*providers.PassportScan, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("passport image is empty")
	}

	id := uuid.NewString()
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	stored := filepath.Join(p.dir, id+ext)

	if err := os.WriteFile(stored, image, 0644); err != nil {
		return nil, fmt.Errorf("failed to store passport image: %w", err)
	}

	return &providers.PassportScan{
		ID:         id,
		StoredPath: stored,
		Fields:     map[string]string{},
	}, nil
}
