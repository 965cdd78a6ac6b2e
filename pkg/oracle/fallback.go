package oracle

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Fallback tries multiple oracles in order, retrying each on transient errors.
// Refusals are returned immediately: a refusal is an answer, not an outage.
type Fallback struct {
	Oracles    []Oracle
	MaxRetries int
	RetryDelay time.Duration
}

// NewFallback assembles the fallback chain. The result satisfies Speech
// only when at least one provider does; speech calls go to the first such
// provider without the retry walk.
func NewFallback(oracles []Oracle, maxRetries int, retryDelay time.Duration) Oracle {
	f := &Fallback{
		Oracles:    oracles,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	}
	for _, o := range oracles {
		if sp, ok := o.(Speech); ok {
			return &speechFallback{Fallback: f, speech: sp}
		}
	}
	return f
}

func (f *Fallback) Complete(ctx context.Context, req Request) (string, error) {
	var result string
	err := f.attempt(ctx, func(o Oracle) error {
		var err error
		result, err = o.Complete(ctx, req)
		return err
	})
	return result, err
}

func (f *Fallback) Parse(ctx context.Context, req Request, schema Schema) ([]byte, error) {
	var result []byte
	err := f.attempt(ctx, func(o Oracle) error {
		var err error
		result, err = o.Parse(ctx, req, schema)
		return err
	})
	return result, err
}

// attempt walks the provider list, applying the per-provider retry policy.
func (f *Fallback) attempt(ctx context.Context, call func(Oracle) error) error {
	var lastErr error

	for i, o := range f.Oracles {
		if i > 0 {
			log.Printf("⚠️ Previous provider failed. Trying fallback provider #%d...", i+1)
		}

		maxRetries := f.MaxRetries
		if maxRetries <= 0 {
			maxRetries = 1
		}

		for retry := 1; retry <= maxRetries; retry++ {
			if retry > 1 {
				log.Printf("🔄 Retrying provider #%d (attempt %d/%d)...", i+1, retry, maxRetries)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(retry-1) * f.RetryDelay):
				}
			}

			err := call(o)
			if err == nil {
				return nil
			}

			// A refusal is a definitive answer; do not burn retries on it.
			if IsRefusal(err) {
				return err
			}

			lastErr = err

			if o.IsTransientError(err) && retry < maxRetries {
				log.Printf("❌ Provider #%d failed with transient error: %v. Retrying...", i+1, err)
				continue
			}

			log.Printf("❌ Provider #%d failed: %v", i+1, err)
			break
		}
	}

	return fmt.Errorf("all fallback providers failed. Last error: %v", lastErr)
}

// IsTransientError implements the Oracle interface. A Fallback error means
// every child already failed, so it is treated as non-transient.
func (f *Fallback) IsTransientError(err error) bool {
	return false
}

func (f *Fallback) Provider() string {
	return "fallback"
}

// speechFallback routes speech calls to the first speech-capable provider.
type speechFallback struct {
	*Fallback
	speech Speech
}

func (f *speechFallback) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return f.speech.Transcribe(ctx, audio, filename)
}

func (f *speechFallback) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return f.speech.Synthesize(ctx, text)
}
