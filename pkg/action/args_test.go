package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		want  string
		isSet bool
	}{
		{"plain string", "hello", "hello", true},
		{"trimmed string", "  hello  ", "hello", true},
		{"empty string", "", "", false},
		{"whitespace only", "   ", "", false},
		{"null literal", "null", "", false},
		{"null literal uppercase", "NULL", "", false},
		{"nil value", nil, "", false},
		{"number", float64(42), "42", true},
		{"fractional number", 2.5, "2.5", true},
		{"boolean", true, "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeValue(tt.raw)
			assert.Equal(t, tt.isSet, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeArgumentsDropsNullLike(t *testing.T) {
	args, err := DecodeArguments([]byte(`{"name":"John","email":"","id":null,"note":"null","count":3}`))
	require.NoError(t, err)

	assert.Equal(t, ArgumentSet{"name": "John", "count": "3"}, args)
}

func TestDecodeArgumentsRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeArguments([]byte(`not json`))
	require.Error(t, err)
}

func TestMergeDoesNotOverwrite(t *testing.T) {
	args := ArgumentSet{"name": "John"}
	args.Merge(ArgumentSet{"name": "Jane", "email": "jane@example.com"})

	assert.Equal(t, "John", args["name"])
	assert.Equal(t, "jane@example.com", args["email"])
}

func TestMissingPreservesOrder(t *testing.T) {
	args := ArgumentSet{"b": "set"}
	missing := args.Missing([]string{"a", "b", "c"})

	assert.Equal(t, []string{"a", "c"}, missing)
}

func TestCloneIsIndependent(t *testing.T) {
	args := ArgumentSet{"name": "John"}
	clone := args.Clone()
	clone["name"] = "Jane"

	assert.Equal(t, "John", args["name"])
}
