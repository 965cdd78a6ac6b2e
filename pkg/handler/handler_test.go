package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"spring/pkg/actions"
	"spring/pkg/api"
	"spring/pkg/config"
	"spring/pkg/history"
	"spring/pkg/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures everything the handler pushes out.
type recordingSender struct {
	texts   []string
	files   []api.OutgoingFile
	voices  [][]byte
	signals []string
}

func (s *recordingSender) SendText(session api.SessionContext, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSender) SendFile(session api.SessionContext, file api.OutgoingFile) error {
	s.files = append(s.files, file)
	return nil
}

func (s *recordingSender) SendVoice(session api.SessionContext, audio []byte) error {
	s.voices = append(s.voices, audio)
	return nil
}

func (s *recordingSender) SendSignal(session api.SessionContext, signal string) error {
	s.signals = append(s.signals, signal)
	return nil
}

// scriptedOracle serves Parse results in order; Complete always answers
// with a fixed string.
type scriptedOracle struct {
	t      *testing.T
	parses []scriptedParse
	idx    int
	reply  string
}

type scriptedParse struct {
	data string
	err  error
}

func (o *scriptedOracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	return o.reply, nil
}

func (o *scriptedOracle) Parse(ctx context.Context, req oracle.Request, schema oracle.Schema) ([]byte, error) {
	require.Less(o.t, o.idx, len(o.parses), "unexpected extra Parse call")
	res := o.parses[o.idx]
	o.idx++
	if res.err != nil {
		return nil, res.err
	}
	return []byte(res.data), nil
}

func (o *scriptedOracle) IsTransientError(err error) bool { return false }
func (o *scriptedOracle) Provider() string                { return "scripted" }

func newTestHandler(t *testing.T, o oracle.Oracle) (*SpringHandler, *recordingSender, *history.History) {
	t.Helper()

	cfg := &config.Config{
		SelfName:     "Spring",
		UserName:     "User",
		SystemPrompt: "You are Spring.",
	}
	sysCfg := config.DefaultSystemConfig()
	hist := history.New("", sysCfg.MaxHistorySize)

	registry, err := actions.BuildRegistry(actions.Dependencies{SystemPrompt: cfg.SystemPrompt})
	require.NoError(t, err)

	h := New(o, registry, hist, cfg, sysCfg, nil)
	sender := &recordingSender{}
	h.SetSender(sender)
	return h, sender, hist
}

func testMessage(content string) *api.UnifiedMessage {
	return &api.UnifiedMessage{
		Session: api.SessionContext{ChannelID: "test", UserID: "1", ChatID: "1", Username: "tester"},
		Content: content,
		CycleID: "test",
	}
}

func TestPingCommand(t *testing.T) {
	h, sender, hist := newTestHandler(t, &scriptedOracle{t: t})

	h.OnMessage(testMessage("/ping"))

	assert.Equal(t, []string{"Pong!"}, sender.texts)
	assert.Equal(t, 0, hist.Len(), "commands must not enter history")
}

func TestHistoryCommand(t *testing.T) {
	h, sender, hist := newTestHandler(t, &scriptedOracle{t: t})

	h.OnMessage(testMessage("/history"))
	assert.Equal(t, []string{"History is empty."}, sender.texts)

	hist.Append(history.RoleUser, "hello")
	hist.Append(history.RoleAssistant, "hi")
	h.OnMessage(testMessage("/history"))

	require.Len(t, sender.texts, 2)
	assert.Equal(t, "User: hello\n\nSpring: hi", sender.texts[1])
}

func TestResetCommandClearsHistory(t *testing.T) {
	h, sender, hist := newTestHandler(t, &scriptedOracle{t: t})
	hist.Append(history.RoleUser, "hello")

	h.OnMessage(testMessage("/reset"))

	assert.Equal(t, 0, hist.Len())
	assert.Equal(t, []string{"History cleared."}, sender.texts)
}

func TestSystemMessageCommand(t *testing.T) {
	h, sender, _ := newTestHandler(t, &scriptedOracle{t: t})

	h.OnMessage(testMessage("/systemMessage"))

	assert.Equal(t, []string{"You are Spring."}, sender.texts)
}

func TestUnknownCommand(t *testing.T) {
	h, sender, _ := newTestHandler(t, &scriptedOracle{t: t})

	h.OnMessage(testMessage("/frobnicate"))

	assert.Equal(t, []string{"(unknown command)"}, sender.texts)
}

func TestShutdownCommandInvokesCallback(t *testing.T) {
	called := false
	o := &scriptedOracle{t: t}
	h, sender, _ := newTestHandler(t, o)
	h.shutdown = func() { called = true }

	h.OnMessage(testMessage("/shutdown"))

	assert.True(t, called)
	assert.Equal(t, []string{"Shutting down."}, sender.texts)
}

func TestSlashSentenceIsNotACommand(t *testing.T) {
	h, sender, hist := newTestHandler(t, &scriptedOracle{t: t})

	// Route the message into a waiting resolver so no cycle goroutine is
	// needed to observe where it went.
	ch := make(chan string, 1)
	h.awaitMu.Lock()
	h.awaiting = ch
	h.awaitMu.Unlock()

	content := "/reset of the contract was discussed, remember?"
	h.OnMessage(testMessage(content))

	assert.Equal(t, content, <-ch, "a sentence starting with a slash-word is regular input")
	assert.Equal(t, 1, hist.Len())
	assert.Empty(t, sender.texts)
}

func TestCycleReportsUndeterminedOnClassifierRefusal(t *testing.T) {
	o := &scriptedOracle{t: t, parses: []scriptedParse{
		{err: oracle.Refusal("cannot pick")},
	}}
	h, sender, hist := newTestHandler(t, o)

	msg := testMessage("do the thing")
	hist.Append(history.RoleUser, msg.Content)
	h.runCycle(msg)

	require.Len(t, sender.texts, 1)
	assert.Equal(t, undeterminedText, sender.texts[0])

	messages := hist.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, history.RoleAssistant, messages[1].Role)
	assert.Equal(t, undeterminedText, messages[1].Content)
}

func TestCycleReportsUndeterminedOnUnknownAction(t *testing.T) {
	o := &scriptedOracle{t: t, parses: []scriptedParse{
		{data: `{"action":"launchMissiles"}`},
	}}
	h, sender, hist := newTestHandler(t, o)

	msg := testMessage("do the thing")
	hist.Append(history.RoleUser, msg.Content)
	h.runCycle(msg)

	require.Len(t, sender.texts, 1)
	assert.Equal(t, undeterminedText, sender.texts[0])
}

func TestReplyIsDeliveredToWaitingCycle(t *testing.T) {
	h, _, hist := newTestHandler(t, &scriptedOracle{t: t})

	ch := make(chan string, 1)
	h.awaitMu.Lock()
	h.awaiting = ch
	h.awaitMu.Unlock()

	h.OnMessage(testMessage("John Doe"))

	assert.Equal(t, "John Doe", <-ch)
	assert.Equal(t, 1, hist.Len(), "reply still enters history")
}

func TestCycleExecutesClassifiedAction(t *testing.T) {
	o := &scriptedOracle{t: t, parses: []scriptedParse{
		{data: `{"action":"database"}`},
		{data: `{"database":"People","action":"Add"}`},
	}}
	h, sender, hist := newTestHandler(t, o)

	msg := testMessage("add John to the people database")
	hist.Append(history.RoleUser, msg.Content)
	h.runCycle(msg)

	require.Len(t, sender.texts, 1)
	assert.Equal(t, "You have selected action: Add on database: People", sender.texts[0])
	assert.Equal(t, []string{"typing"}, sender.signals)

	// The action's reply is recorded as an assistant turn.
	messages := hist.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, history.RoleAssistant, messages[1].Role)
}

func TestCycleFallsBackToRespondOnNone(t *testing.T) {
	o := &scriptedOracle{t: t, reply: "Doing fine, thanks!", parses: []scriptedParse{
		{data: `{"action":"none"}`},
	}}
	h, sender, hist := newTestHandler(t, o)

	msg := testMessage("how are you?")
	hist.Append(history.RoleUser, msg.Content)
	h.runCycle(msg)

	require.Len(t, sender.texts, 1)
	assert.Equal(t, "Doing fine, thanks!", sender.texts[0])
}

func TestCycleApologizesOnTransportError(t *testing.T) {
	o := &scriptedOracle{t: t, parses: []scriptedParse{
		{err: errors.New("connection refused")},
	}}
	h, sender, hist := newTestHandler(t, o)

	msg := testMessage("hello")
	hist.Append(history.RoleUser, msg.Content)
	h.runCycle(msg)

	require.Len(t, sender.texts, 1)
	assert.Equal(t, apologyText, sender.texts[0])
	// Apologies are diagnostics and stay out of history.
	assert.Equal(t, 1, hist.Len())
}

func TestCycleReportsAbort(t *testing.T) {
	o := &scriptedOracle{t: t, parses: []scriptedParse{
		{data: `{"action":"signAgreement"}`},
		// Extraction finds nothing.
		{data: `{"agreementType":"","personName":""}`},
		// Abort check confirms the user gave up.
		{data: `{"abort":true,"reason":"changed their mind"}`},
	}}
	h, sender, hist := newTestHandler(t, o)
	h.systemConfig.MaxResolutionRounds = 3

	// The question is answered from a second goroutine, the way a real
	// reply would arrive through OnMessage.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			h.awaitMu.Lock()
			ch := h.awaiting
			h.awaitMu.Unlock()
			if ch != nil {
				ch <- "never mind"
				return
			}
		}
	}()

	msg := testMessage("send the NDA")
	hist.Append(history.RoleUser, msg.Content)
	h.runCycle(msg)
	<-done

	require.NotEmpty(t, sender.texts)
	assert.Contains(t, sender.texts[0], "Please provide the following arguments: ")
	assert.Equal(t, "Operation cancelled: changed their mind", sender.texts[len(sender.texts)-1])
}

func TestVoiceUnsupportedBehindTimeoutWrapper(t *testing.T) {
	o := oracle.WithTimeout(&scriptedOracle{t: t}, time.Second)
	h, sender, hist := newTestHandler(t, o)

	msg := testMessage("")
	msg.Voice = &api.FileAttachment{Filename: "note.ogg", MimeType: "audio/ogg", Data: []byte{1}}
	h.OnMessage(msg)

	assert.Equal(t, []string{"Voice messages are not supported with the current provider."}, sender.texts)
	assert.Equal(t, 0, hist.Len())
}

func TestVoiceRepliesFallBackWithoutSpeechSupport(t *testing.T) {
	o := &scriptedOracle{t: t, reply: "Hello!", parses: []scriptedParse{
		{data: `{"action":"none"}`},
	}}
	h, sender, hist := newTestHandler(t, o)
	h.systemConfig.VoiceReplies = true

	msg := testMessage("hi")
	hist.Append(history.RoleUser, msg.Content)
	h.runCycle(msg)

	// scriptedOracle has no Synthesize, so the reply arrives as text.
	assert.Empty(t, sender.voices)
	assert.Equal(t, []string{"Hello!"}, sender.texts)
}
