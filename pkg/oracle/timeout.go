package oracle

import (
	"context"
	"time"
)

// WithTimeout wraps an oracle so that every call carries a hard deadline.
// Transport-level defaults are not trusted: a stuck provider request would
// otherwise suspend the whole message cycle indefinitely.
//
// The wrapper satisfies Speech only when the wrapped oracle does, so
// callers can keep probing for speech support with a type assertion.
func WithTimeout(inner Oracle, d time.Duration) Oracle {
	if d <= 0 {
		return inner
	}
	t := &timeoutOracle{inner: inner, timeout: d}
	if sp, ok := inner.(Speech); ok {
		return &timeoutSpeechOracle{timeoutOracle: t, speech: sp}
	}
	return t
}

type timeoutOracle struct {
	inner   Oracle
	timeout time.Duration
}

func (t *timeoutOracle) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Complete(ctx, req)
}

func (t *timeoutOracle) Parse(ctx context.Context, req Request, schema Schema) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Parse(ctx, req, schema)
}

func (t *timeoutOracle) IsTransientError(err error) bool {
	return t.inner.IsTransientError(err)
}

func (t *timeoutOracle) Provider() string {
	return t.inner.Provider()
}

// timeoutSpeechOracle adds deadline-wrapped speech calls on top of
// timeoutOracle for speech-capable providers.
type timeoutSpeechOracle struct {
	*timeoutOracle
	speech Speech
}

func (t *timeoutSpeechOracle) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.speech.Transcribe(ctx, audio, filename)
}

func (t *timeoutSpeechOracle) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.speech.Synthesize(ctx, text)
}
