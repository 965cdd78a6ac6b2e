package handler

import (
	"log/slog"
	"regexp"
	"strings"

	"spring/pkg/api"
)

// commandPattern matches messages that consist of a slash command and
// nothing else. A sentence that merely starts with a slash-word is regular
// input for the action engine.
var commandPattern = regexp.MustCompile(`^/[a-zA-Z]+$`)

// handleCommand executes slash commands. Commands bypass the action engine
// entirely and never enter the conversation history.
func (h *SpringHandler) handleCommand(msg *api.UnifiedMessage) {
	command := strings.ToLower(strings.TrimPrefix(commandPattern.FindString(msg.Content), "/"))
	slog.Info("💬 Command received", "command", command, "cycle_id", msg.CycleID)

	switch command {
	case "ping":
		h.sendText(msg, "Pong!")

	case "history":
		rendered := h.history.DisplayString(h.config.SelfName, h.config.UserName)
		if strings.TrimSpace(rendered) == "" {
			h.sendText(msg, "History is empty.")
			return
		}
		h.sendText(msg, rendered)

	case "reset", "clearhistory":
		h.history.Clear()
		h.sendText(msg, "History cleared.")

	case "systemmessage":
		h.sendText(msg, h.config.SystemPrompt)

	case "shutdown":
		h.sendText(msg, "Shutting down.")
		if h.shutdown != nil {
			h.shutdown()
		}

	default:
		h.sendText(msg, "(unknown command)")
	}
}
