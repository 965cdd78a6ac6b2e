package action

import (
	"context"
	"errors"
	"testing"

	"spring/pkg/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Descriptor{Name: "respond", Intent: "Reply to the user"}))
	require.NoError(t, reg.Register(&Descriptor{Name: "createAgreement", Intent: "Create a new agreement"}))
	return reg
}

func TestClassifyReturnsMatchingAction(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{{data: `{"action":"createAgreement"}`}}}
	c := NewClassifier(o, testRegistry(t))

	desc, err := c.Classify(context.Background(), nil, "make an NDA for John")

	require.NoError(t, err)
	assert.Equal(t, "createAgreement", desc.Name)

	// The choice schema is a closed enumeration over all names plus "none".
	require.Len(t, o.schemas, 1)
	props := o.schemas[0].Definition["properties"].(map[string]any)
	choice := props["action"].(map[string]any)
	assert.Equal(t, []string{"respond", "createAgreement", "none"}, choice["enum"])
}

func TestClassifyReturnsErrNoActionOnNone(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{{data: `{"action":"none"}`}}}
	c := NewClassifier(o, testRegistry(t))

	_, err := c.Classify(context.Background(), nil, "how are you?")

	assert.ErrorIs(t, err, ErrNoAction)
}

func TestClassifyRejectsUnknownAction(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{{data: `{"action":"launchMissiles"}`}}}
	c := NewClassifier(o, testRegistry(t))

	_, err := c.Classify(context.Background(), nil, "hello")

	assert.ErrorIs(t, err, ErrUndetermined)
	assert.NotErrorIs(t, err, ErrNoAction)
}

func TestClassifyTreatsRefusalAsUndetermined(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{{err: oracle.Refusal("no")}}}
	c := NewClassifier(o, testRegistry(t))

	_, err := c.Classify(context.Background(), nil, "hello")

	assert.ErrorIs(t, err, ErrUndetermined)
	assert.NotErrorIs(t, err, ErrNoAction)
}

func TestClassifyTreatsMalformedAnswerAsUndetermined(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{{data: `not json at all`}}}
	c := NewClassifier(o, testRegistry(t))

	_, err := c.Classify(context.Background(), nil, "hello")

	assert.ErrorIs(t, err, ErrUndetermined)
}

func TestClassifyPropagatesTransportErrors(t *testing.T) {
	transportErr := errors.New("timeout")
	o := &fakeOracle{t: t, parses: []parseResult{{err: transportErr}}}
	c := NewClassifier(o, testRegistry(t))

	_, err := c.Classify(context.Background(), nil, "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.NotErrorIs(t, err, ErrNoAction)
}
