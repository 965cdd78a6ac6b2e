package action

import (
	"context"
	"errors"
	"testing"

	"spring/pkg/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parseResult struct {
	data string
	err  error
}

// fakeOracle serves scripted Parse results in order and records the
// schemas it was asked for.
type fakeOracle struct {
	t       *testing.T
	parses  []parseResult
	idx     int
	schemas []oracle.Schema
}

func (f *fakeOracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	return "ok", nil
}

func (f *fakeOracle) Parse(ctx context.Context, req oracle.Request, schema oracle.Schema) ([]byte, error) {
	require.Less(f.t, f.idx, len(f.parses), "unexpected extra Parse call for schema %s", schema.Name)
	res := f.parses[f.idx]
	f.idx++
	f.schemas = append(f.schemas, schema)
	if res.err != nil {
		return nil, res.err
	}
	return []byte(res.data), nil
}

func (f *fakeOracle) IsTransientError(err error) bool { return false }
func (f *fakeOracle) Provider() string                { return "fake" }

// fakePrompter answers scripted replies and records the questions asked.
type fakePrompter struct {
	t         *testing.T
	replies   []string
	idx       int
	questions []string
}

func (f *fakePrompter) AskUser(ctx context.Context, question string) (string, error) {
	require.Less(f.t, f.idx, len(f.replies), "unexpected extra question: %s", question)
	f.questions = append(f.questions, question)
	reply := f.replies[f.idx]
	f.idx++
	return reply, nil
}

func TestResolveExtractsEverythingFromHistory(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{
		{data: `{"name":"John Doe","Email":"john@example.com","agreementType":"NDA","Issue Date":"20/03/2023"}`},
	}}
	prompter := &fakePrompter{t: t}

	r := NewResolver(o, prompter, 3)
	outcome, err := r.Resolve(context.Background(), testDescriptor(), ArgumentSet{}, nil)

	require.NoError(t, err)
	assert.False(t, outcome.Aborted)
	assert.Empty(t, prompter.questions)
	assert.Equal(t, "John Doe", outcome.Args["name"])
	assert.Equal(t, "20/03/2023", outcome.Args["Issue Date"])
}

func TestResolveAsksForMissingRequired(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{
		// First extraction finds nothing usable.
		{data: `{"name":"","Email":"","agreementType":"","Issue Date":""}`},
		// Abort check after the user's reply.
		{data: `{"abort":false,"reason":""}`},
		// Second extraction succeeds for everything asked.
		{data: `{"name":"John","Email":"john@example.com","agreementType":"contract","Issue Date":"null"}`},
		// Final best-effort pass for the still-missing optional.
		{data: `{"Issue Date":""}`},
	}}
	prompter := &fakePrompter{t: t, replies: []string{"John, john@example.com, a contract please"}}

	r := NewResolver(o, prompter, 3)
	outcome, err := r.Resolve(context.Background(), testDescriptor(), ArgumentSet{}, nil)

	require.NoError(t, err)
	assert.False(t, outcome.Aborted)
	require.Len(t, prompter.questions, 1)
	assert.Contains(t, prompter.questions[0], "Please provide the following arguments: ")
	assert.Contains(t, prompter.questions[0], "name")
	assert.Contains(t, prompter.questions[0], "Issue Date") // optionals ride along
	assert.Equal(t, "contract", outcome.Args["agreementType"])
	_, hasIssueDate := outcome.Args["Issue Date"]
	assert.False(t, hasIssueDate)
}

func TestResolveOptionalGapsNeverTriggerQuestions(t *testing.T) {
	seed := ArgumentSet{"name": "John", "Email": "j@e.com", "agreementType": "NDA"}
	o := &fakeOracle{t: t, parses: []parseResult{
		// Only the best-effort optional pass runs.
		{data: `{"Issue Date":"01/01/2020"}`},
	}}
	prompter := &fakePrompter{t: t}

	r := NewResolver(o, prompter, 3)
	outcome, err := r.Resolve(context.Background(), testDescriptor(), seed, nil)

	require.NoError(t, err)
	assert.Empty(t, prompter.questions)
	assert.Equal(t, "01/01/2020", outcome.Args["Issue Date"])
}

func TestResolveAbortsOnUserRequest(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{
		{data: `{"name":"","Email":"","agreementType":"","Issue Date":""}`},
		{data: `{"abort":true,"reason":"changed their mind"}`},
	}}
	prompter := &fakePrompter{t: t, replies: []string{"actually, forget it"}}

	r := NewResolver(o, prompter, 3)
	outcome, err := r.Resolve(context.Background(), testDescriptor(), ArgumentSet{}, nil)

	require.NoError(t, err)
	assert.True(t, outcome.Aborted)
	assert.Equal(t, "changed their mind", outcome.Reason)
}

func TestResolveAbortsAfterRoundLimit(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{
		{data: `{"name":"","Email":"","agreementType":"","Issue Date":""}`},
		{data: `{"abort":false,"reason":""}`},
		{data: `{"name":"","Email":"","agreementType":"","Issue Date":""}`},
	}}
	prompter := &fakePrompter{t: t, replies: []string{"what?"}}

	r := NewResolver(o, prompter, 1)
	outcome, err := r.Resolve(context.Background(), testDescriptor(), ArgumentSet{}, nil)

	require.NoError(t, err)
	assert.True(t, outcome.Aborted)
	assert.Equal(t, "max rounds exceeded", outcome.Reason)
	assert.Len(t, prompter.questions, 1)
}

func TestResolveTreatsExtractionRefusalAsEmpty(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{
		{err: oracle.Refusal("cannot comply")},
		{data: `{"abort":false,"reason":""}`},
		{data: `{"name":"John","Email":"j@e.com","agreementType":"NDA","Issue Date":""}`},
		{data: `{"Issue Date":""}`},
	}}
	prompter := &fakePrompter{t: t, replies: []string{"John, j@e.com, NDA"}}

	r := NewResolver(o, prompter, 3)
	outcome, err := r.Resolve(context.Background(), testDescriptor(), ArgumentSet{}, nil)

	require.NoError(t, err)
	assert.False(t, outcome.Aborted)
	assert.Equal(t, "John", outcome.Args["name"])
}

func TestResolvePropagatesTransportErrors(t *testing.T) {
	transportErr := errors.New("connection refused")
	o := &fakeOracle{t: t, parses: []parseResult{{err: transportErr}}}
	prompter := &fakePrompter{t: t}

	r := NewResolver(o, prompter, 3)
	_, err := r.Resolve(context.Background(), testDescriptor(), ArgumentSet{}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.Empty(t, prompter.questions)
}

func TestResolveTreatsAbortCheckRefusalAsAbort(t *testing.T) {
	o := &fakeOracle{t: t, parses: []parseResult{
		{data: `{"name":"","Email":"","agreementType":"","Issue Date":""}`},
		{err: oracle.Refusal("unsure")},
	}}
	prompter := &fakePrompter{t: t, replies: []string{"hmm"}}

	r := NewResolver(o, prompter, 3)
	outcome, err := r.Resolve(context.Background(), testDescriptor(), ArgumentSet{}, nil)

	require.NoError(t, err)
	assert.True(t, outcome.Aborted)
	assert.Equal(t, "could not determine abortion", outcome.Reason)
}
