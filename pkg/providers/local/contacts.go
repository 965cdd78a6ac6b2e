package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"spring/pkg/providers"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ContactDirectory is a file-backed contact list. The file is read once at
// construction; a missing file means an empty directory.
type ContactDirectory struct {
	mu     sync.RWMutex
	path   string
	people []providers.Person
}

func NewContactDirectory(dataDir string) (*ContactDirectory, error) {
	d := &ContactDirectory{
		path: filepath.Join(dataDir, "contacts.json"),
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, fmt.Errorf("failed to read contacts: %w", err)
	}

	if err := json.Unmarshal(data, &d.people); err != nil {
		return nil, fmt.Errorf("failed to parse contacts: %w", err)
	}

	return d, nil
}

func (d *ContactDirectory) List(ctx context.Context) ([]providers.Person, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	people := make([]providers.Person, len(d.people))
	copy(people, d.people)
	return people, nil
}

// FindByName matches case-insensitively, first on the full name, then on
// any name part.
func (d *ContactDirectory) FindByName(ctx context.Context, name string) (*providers.Person, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, fmt.Errorf("contact name must not be empty")
	}

	for i := range d.people {
		if strings.ToLower(d.people[i].Name) == needle {
			p := d.people[i]
			return &p, nil
		}
	}

	for i := range d.people {
		for _, part := range strings.Fields(strings.ToLower(d.people[i].Name)) {
			if part == needle {
				p := d.people[i]
				return &p, nil
			}
		}
	}

	return nil, fmt.Errorf("no contact named %q", name)
}
