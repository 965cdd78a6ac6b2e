// Package providers defines the external service boundaries actions depend
// on. Implementations live in subpackages; actions only see these interfaces.
package providers

import "context"

// Person is a known contact.
type Person struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Position string `json:"position,omitempty"`
}

// AgreementRequest carries the data a generated agreement is built from.
type AgreementRequest struct {
	Type           string
	Position       string
	Name           string
	Email          string
	IDType         string
	IDNumber       string
	IssueAuthority string
	IssueDate      string
	ExpirationDate string
	Identification string
}

// Agreement is a generated agreement document.
type Agreement struct {
	ID       string
	Type     string
	FileName string
	Content  []byte
}

// PassportScan is the result of handling a passport photo.
type PassportScan struct {
	ID         string
	StoredPath string
	Fields     map[string]string
}

// ContactDirectory resolves people by name.
type ContactDirectory interface {
	List(ctx context.Context) ([]Person, error)
	FindByName(ctx context.Context, name string) (*Person, error)
}

// DocumentStore generates and keeps agreement documents.
type DocumentStore interface {
	CreateAgreement(ctx context.Context, req AgreementRequest) (*Agreement, error)
}

// SignatureService sends an agreement out for signature and returns the
// signing link.
type SignatureService interface {
	RequestSignature(ctx context.Context, agreementType string, person Person) (string, error)
}

// DocumentParser handles uploaded identity documents.
type DocumentParser interface {
	ParsePassport(ctx context.Context, image []byte, filename string) (*PassportScan, error)
}
