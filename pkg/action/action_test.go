package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor() *Descriptor {
	return &Descriptor{
		Name:   "createAgreement",
		Intent: "Create a new agreement",
		Args: map[string]FieldSpec{
			"name":          {Type: FieldString, Required: true},
			"Email":         {Type: FieldString, Required: true},
			"agreementType": {Type: FieldEnum, Required: true, Enum: []string{"NDA", "contract"}},
			"Issue Date":    {Type: FieldDate, Required: false},
		},
	}
}

func TestOptionalitySplitsAndSorts(t *testing.T) {
	required, optional := testDescriptor().Optionality()

	assert.Equal(t, []string{"Email", "agreementType", "name"}, required)
	assert.Equal(t, []string{"Issue Date"}, optional)
}

func TestExtractionSchemaRequiresEveryKey(t *testing.T) {
	schema := testDescriptor().ExtractionSchema([]string{"name", "agreementType"})

	assert.Equal(t, "createAgreement_arguments", schema.Name)
	assert.Equal(t, "object", schema.Definition["type"])
	assert.Equal(t, []string{"name", "agreementType"}, schema.Definition["required"])

	props, ok := schema.Definition["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, props, 2)

	enumProp := props["agreementType"].(map[string]any)
	assert.Contains(t, enumProp["description"], "NDA, contract")
}

func TestValidateCanonicalizesEnumCase(t *testing.T) {
	desc := testDescriptor()
	args := ArgumentSet{"agreementType": "nda"}

	bad := desc.Validate(args)

	assert.Empty(t, bad)
	assert.Equal(t, "NDA", args["agreementType"])
}

func TestValidateUnsetsOutOfEnumValues(t *testing.T) {
	desc := testDescriptor()
	args := ArgumentSet{"agreementType": "lease", "name": "John"}

	bad := desc.Validate(args)

	assert.Equal(t, []string{"agreementType"}, bad)
	_, present := args["agreementType"]
	assert.False(t, present)
	assert.Equal(t, "John", args["name"])
}
