package handler

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spring/pkg/action"
	"spring/pkg/api"
	"spring/pkg/config"
	"spring/pkg/history"
	"spring/pkg/monitor"
	"spring/pkg/oracle"
)

const (
	apologyText      = "Something went wrong on my side. Please try again."
	undeterminedText = "I could not determine the action you want to perform."
)

// SpringHandler orchestrates one message cycle: classify the message into an
// action, resolve the action's arguments (asking the user when needed) and
// execute the action body exactly once.
//
// Cycles are serialized: a second message that arrives while a cycle is
// waiting on the oracle queues behind it. The exception is a reply to a
// pending question, which is delivered straight into the waiting cycle.
type SpringHandler struct {
	oracle       oracle.Oracle
	sender       api.MessageSender
	history      *history.History
	registry     *action.Registry
	classifier   *action.Classifier
	config       *config.Config
	systemConfig *config.SystemConfig
	shutdown     func()

	cycleMu sync.Mutex

	awaitMu  sync.Mutex
	awaiting chan string
}

func New(o oracle.Oracle, registry *action.Registry, hist *history.History, cfg *config.Config, sysCfg *config.SystemConfig, shutdown func()) *SpringHandler {
	return &SpringHandler{
		oracle:       o,
		history:      hist,
		registry:     registry,
		classifier:   action.NewClassifier(o, registry),
		config:       cfg,
		systemConfig: sysCfg,
		shutdown:     shutdown,
	}
}

// SetSender implements api.SenderAware; the gateway injects itself here
// during assembly.
func (h *SpringHandler) SetSender(sender api.MessageSender) {
	h.sender = sender
}

// OnMessage is the entry point for incoming messages. It transcribes voice
// notes, intercepts commands, routes replies to a pending question, and
// otherwise starts a new message cycle.
func (h *SpringHandler) OnMessage(msg *api.UnifiedMessage) {
	if msg.CycleID == "" {
		b := make([]byte, 2)
		rand.Read(b)
		msg.CycleID = fmt.Sprintf("%x", b)
	}

	slog.Info("Message received",
		"channel", msg.Session.ChannelID,
		"user", msg.Session.Username,
		"content", msg.Content,
		"cycle_id", msg.CycleID,
	)

	if msg.Voice != nil {
		if !h.transcribeVoice(msg) {
			return
		}
	}

	if commandPattern.MatchString(msg.Content) {
		h.handleCommand(msg)
		return
	}

	if msg.Content == "" && msg.Photo == nil {
		return
	}

	if msg.Content != "" {
		h.history.Append(history.RoleUser, msg.Content)
	}

	// A pending question consumes the message; no new cycle starts.
	if h.deliverToWaiting(msg.Content) {
		return
	}

	go h.runCycle(msg)
}

// transcribeVoice converts a voice note to text in place. Returns false if
// the message cannot be processed further.
func (h *SpringHandler) transcribeVoice(msg *api.UnifiedMessage) bool {
	sp, ok := h.oracle.(oracle.Speech)
	if !ok {
		h.sendText(msg, "Voice messages are not supported with the current provider.")
		return false
	}

	text, err := sp.Transcribe(context.Background(), msg.Voice.Data, msg.Voice.Filename)
	if err != nil {
		slog.Error("❌ Voice transcription failed", "error", err, "cycle_id", msg.CycleID)
		h.sendText(msg, "I could not understand the voice message, sorry.")
		return false
	}

	slog.Info("💬 Voice transcribed", "text", text, "cycle_id", msg.CycleID)
	msg.Content = text
	return true
}

// deliverToWaiting hands the message to a resolver blocked on AskUser.
func (h *SpringHandler) deliverToWaiting(content string) bool {
	h.awaitMu.Lock()
	defer h.awaitMu.Unlock()

	if h.awaiting == nil {
		return false
	}
	select {
	case h.awaiting <- content:
	default:
	}
	return true
}

// runCycle performs classification, argument resolution and execution for
// one user message. Cycles run one at a time.
func (h *SpringHandler) runCycle(msg *api.UnifiedMessage) {
	h.cycleMu.Lock()
	defer h.cycleMu.Unlock()

	start := time.Now()
	ctx := context.WithValue(context.Background(), monitor.CycleIDContextKey, msg.CycleID)

	h.sender.SendSignal(msg.Session, "typing")

	desc, err := h.classifier.Classify(ctx, h.turns(), "")
	switch {
	case err == nil:

	case errors.Is(err, action.ErrNoAction):
		desc = h.registry.Find("respond")
		if desc == nil {
			slog.Error("❌ No fallback action registered", "cycle_id", msg.CycleID)
			h.sendText(msg, apologyText)
			return
		}

	case errors.Is(err, action.ErrUndetermined):
		h.respond(msg, api.Response{Text: undeterminedText})
		return

	default:
		slog.Error("❌ Classification failed", "error", err, "cycle_id", msg.CycleID)
		h.sendText(msg, apologyText)
		return
	}

	resolver := action.NewResolver(h.oracle, &awaitPrompter{handler: h, msg: msg}, h.systemConfig.MaxResolutionRounds)
	outcome, err := resolver.Resolve(ctx, desc, action.ArgumentSet{}, h.turns())
	if err != nil {
		slog.Error("❌ Argument resolution failed", "action", desc.Name, "error", err, "cycle_id", msg.CycleID)
		h.sendText(msg, apologyText)
		return
	}

	if outcome.Aborted {
		h.respond(msg, api.Response{Text: "Operation cancelled: " + outcome.Reason})
		return
	}

	inv := &action.Invocation{
		Args:    outcome.Args,
		Message: *msg,
		History: h.turns(),
		Oracle:  h.oracle,
		Reply: func(r api.Response) error {
			return h.respond(msg, r)
		},
	}

	if err := action.Execute(ctx, desc, inv); err != nil {
		slog.Error("❌ Action failed", "action", desc.Name, "error", err, "cycle_id", msg.CycleID)
		h.sendText(msg, apologyText)
		return
	}

	slog.Info("✅ Cycle finished", "action", desc.Name, "duration", time.Since(start).String(), "cycle_id", msg.CycleID)
}

// turns renders the conversation history for the oracle.
func (h *SpringHandler) turns() []oracle.Turn {
	messages := h.history.Messages()
	turns := make([]oracle.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, oracle.Turn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}

// respond emits a response through the gateway, bookkeeping the history and
// applying the voice-reply preference. The text form is what enters history
// regardless of how the response is presented.
func (h *SpringHandler) respond(msg *api.UnifiedMessage, r api.Response) error {
	if r.Text != "" && !r.SuppressHistory {
		h.history.Append(history.RoleAssistant, r.Text)
	}

	if r.File != nil {
		return h.sender.SendFile(msg.Session, *r.File)
	}

	if r.Text == "" {
		return nil
	}

	if h.systemConfig.VoiceReplies {
		if sp, ok := h.oracle.(oracle.Speech); ok {
			audio, err := sp.Synthesize(context.Background(), r.Text)
			if err == nil {
				return h.sender.SendVoice(msg.Session, audio)
			}
			slog.Warn("⚠️ Voice synthesis failed, falling back to text", "error", err, "cycle_id", msg.CycleID)
		}
	}

	return h.sender.SendText(msg.Session, r.Text)
}

// sendText sends a diagnostic message without touching the history.
func (h *SpringHandler) sendText(msg *api.UnifiedMessage, text string) {
	if err := h.sender.SendText(msg.Session, text); err != nil {
		slog.Error("❌ Failed to send message", "error", err, "cycle_id", msg.CycleID)
	}
}

// awaitPrompter implements action.UserPrompter by sending the question
// through the normal response path and blocking until OnMessage delivers
// the user's next message.
type awaitPrompter struct {
	handler *SpringHandler
	msg     *api.UnifiedMessage
}

func (p *awaitPrompter) AskUser(ctx context.Context, question string) (string, error) {
	h := p.handler

	ch := make(chan string, 1)
	h.awaitMu.Lock()
	h.awaiting = ch
	h.awaitMu.Unlock()

	defer func() {
		h.awaitMu.Lock()
		h.awaiting = nil
		h.awaitMu.Unlock()
	}()

	if err := h.respond(p.msg, api.Response{Text: question}); err != nil {
		return "", err
	}

	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
