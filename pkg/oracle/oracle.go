package oracle

import (
	"context"
	"errors"
	"fmt"
)

// Turn is one conversation message presented to the oracle as context.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request is the provider-independent payload for an oracle call.
// System carries the instruction, History the conversation context and
// Input an optional final user turn.
type Request struct {
	System  string
	History []Turn
	Input   string
}

// Schema describes the JSON object a Parse call must return.
// Definition is a plain JSON-schema object (type/properties/required/...).
type Schema struct {
	Name       string
	Definition map[string]any
}

// ErrRefused marks an oracle answer that cannot be used: an explicit refusal,
// a null parse, or structured output that does not match the requested schema.
// Callers distinguish it from transport errors, which are anything else.
var ErrRefused = errors.New("oracle refused the request")

// Refusal wraps ErrRefused with the provider's stated reason.
func Refusal(reason string) error {
	if reason == "" {
		return ErrRefused
	}
	return fmt.Errorf("%w: %s", ErrRefused, reason)
}

// IsRefusal reports whether err is a refusal rather than a transport failure.
func IsRefusal(err error) bool {
	return errors.Is(err, ErrRefused)
}

// Oracle is the LLM backend seen by the core. It exposes exactly two
// primitives: free-form completion and structured extraction. Classification
// is a Parse call with a closed-enum schema; the core owns all prompts.
type Oracle interface {
	// Complete returns a free-form text completion for the request.
	Complete(ctx context.Context, req Request) (string, error)

	// Parse returns a JSON object conforming to the schema, or an error
	// wrapping ErrRefused when the oracle declines or returns garbage.
	Parse(ctx context.Context, req Request, schema Schema) ([]byte, error)

	// IsTransientError reports whether an error is worth retrying
	// (rate limits, 5xx, network timeouts).
	IsTransientError(err error) bool

	// Provider returns the backend name (e.g., "openai").
	Provider() string
}

// Speech is an optional extension for providers that support audio:
// transcribing inbound voice notes and synthesizing voice replies.
type Speech interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
