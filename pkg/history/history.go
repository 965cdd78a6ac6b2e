package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Role tags a conversation message with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Messages are immutable once appended;
// their order is chronological and is used verbatim as oracle context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History manages the conversation log with a sliding window bound.
// The in-memory view is always authoritative for the current process;
// persistence is a best-effort side effect handled by a single writer
// goroutine so that file writes are never interleaved.
type History struct {
	mu       sync.RWMutex
	messages []Message
	maxSize  int
	path     string

	pending   chan []Message
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a history bound to maxSize messages. If path is non-empty the
// history is persisted there as a JSON array, rewritten in full on every
// append (total-overwrite semantics).
func New(path string, maxSize int) *History {
	h := &History{
		messages: make([]Message, 0),
		maxSize:  maxSize,
		path:     path,
	}

	if path != "" {
		h.pending = make(chan []Message, 1)
		h.done = make(chan struct{})
		go h.persistLoop()
	}

	return h
}

// Load reads the persisted history file if it exists. Missing files are not
// an error; the history simply starts empty.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read history file: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("failed to parse history file: %w", err)
	}

	h.mu.Lock()
	h.messages = messages
	h.truncateLocked()
	h.mu.Unlock()

	return nil
}

// Append adds a message to the log, evicting the oldest entries when the
// configured bound is exceeded. Eviction is silent: old context is simply
// lost. Any role other than RoleUser is stored as RoleAssistant.
func (h *History) Append(role Role, content string) {
	if role != RoleUser {
		role = RoleAssistant
	}

	h.mu.Lock()
	h.messages = append(h.messages, Message{Role: role, Content: content})
	h.truncateLocked()
	snapshot := h.copyLocked()
	h.mu.Unlock()

	h.schedulePersist(snapshot)
}

// Messages returns a copy of the current conversation log.
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.copyLocked()
}

// Len returns the number of stored messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Clear empties the log and persists the empty state.
func (h *History) Clear() {
	h.mu.Lock()
	h.messages = h.messages[:0]
	h.mu.Unlock()

	h.schedulePersist([]Message{})
}

// DisplayString renders the log as "{label}: {content}" pairs separated by
// blank lines. This form is what the oracle sees as conversation context.
func (h *History) DisplayString(selfLabel, userLabel string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	parts := make([]string, 0, len(h.messages))
	for _, m := range h.messages {
		label := selfLabel
		if m.Role == RoleUser {
			label = userLabel
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, m.Content))
	}

	return strings.Join(parts, "\n\n")
}

// Close flushes any pending persistence write and stops the writer goroutine.
// The history must not be appended to after Close.
func (h *History) Close() {
	if h.pending == nil {
		return
	}
	h.closeOnce.Do(func() {
		close(h.pending)
		<-h.done
	})
}

func (h *History) truncateLocked() {
	if h.maxSize > 0 && len(h.messages) > h.maxSize {
		h.messages = h.messages[len(h.messages)-h.maxSize:]
	}
}

func (h *History) copyLocked() []Message {
	cp := make([]Message, len(h.messages))
	copy(cp, h.messages)
	return cp
}

// schedulePersist hands the latest snapshot to the writer goroutine.
// At most one write is in flight and at most one is queued; a newer snapshot
// replaces an unwritten older one, since each write rewrites the whole file.
func (h *History) schedulePersist(snapshot []Message) {
	if h.pending == nil {
		return
	}
	for {
		select {
		case h.pending <- snapshot:
			return
		default:
		}
		select {
		case <-h.pending: // drop the stale queued snapshot
		default:
		}
	}
}

func (h *History) persistLoop() {
	defer close(h.done)
	for snapshot := range h.pending {
		if err := h.writeFile(snapshot); err != nil {
			slog.Error("Failed to persist history", "path", h.path, "error", err)
		}
	}
}

func (h *History) writeFile(snapshot []Message) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(h.path, data, 0644)
}
