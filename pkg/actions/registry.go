package actions

import (
	"spring/pkg/action"
	"spring/pkg/providers"
)

// Dependencies holds the external services the action set is wired with.
type Dependencies struct {
	Contacts     providers.ContactDirectory
	Documents    providers.DocumentStore
	Signatures   providers.SignatureService
	Parser       providers.DocumentParser
	SystemPrompt string
}

// BuildRegistry assembles the full action set. Registration order matters
// only for prompt rendering; respond comes first as the default.
func BuildRegistry(deps Dependencies) (*action.Registry, error) {
	registry := action.NewRegistry()

	descriptors := []*action.Descriptor{
		Respond(deps.SystemPrompt),
		ServerLog(),
		CreateAgreement(deps.Documents),
		SignAgreement(deps.Contacts, deps.Signatures),
		ListPeople(deps.Contacts),
		Database(),
		ParsePassport(deps.Parser),
	}

	for _, desc := range descriptors {
		if err := registry.Register(desc); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
