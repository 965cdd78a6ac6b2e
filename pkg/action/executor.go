package action

import (
	"context"
	"fmt"
	"log/slog"
)

// Execute runs an action body exactly once, converting panics into errors so
// a misbehaving action cannot take down the message loop.
func Execute(ctx context.Context, desc *Descriptor, inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("❌ Action panicked", "action", desc.Name, "panic", r)
			err = fmt.Errorf("action %s panicked: %v", desc.Name, r)
		}
	}()

	slog.Info("💬 Executing action", "action", desc.Name, "args", len(inv.Args))
	return desc.Run(ctx, inv)
}
