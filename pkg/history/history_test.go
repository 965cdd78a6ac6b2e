package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendEvictsOldestBeyondBound(t *testing.T) {
	h := New("", 3)
	h.Append(RoleUser, "one")
	h.Append(RoleAssistant, "two")
	h.Append(RoleUser, "three")
	h.Append(RoleAssistant, "four")

	messages := h.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "two", messages[0].Content)
	assert.Equal(t, "four", messages[2].Content)
}

func TestAppendNormalizesUnknownRoles(t *testing.T) {
	h := New("", 10)
	h.Append(Role("system"), "odd")

	messages := h.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, RoleAssistant, messages[0].Role)
}

func TestDisplayString(t *testing.T) {
	h := New("", 10)
	h.Append(RoleUser, "hello")
	h.Append(RoleAssistant, "hi there")

	assert.Equal(t, "User: hello\n\nSpring: hi there", h.DisplayString("Spring", "User"))
}

func TestDisplayStringEmpty(t *testing.T) {
	h := New("", 10)
	assert.Equal(t, "", h.DisplayString("Spring", "User"))
}

func TestClearEmptiesLog(t *testing.T) {
	h := New("", 10)
	h.Append(RoleUser, "hello")
	h.Clear()

	assert.Equal(t, 0, h.Len())
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h := New(path, 10)
	h.Append(RoleUser, "hello")
	h.Append(RoleAssistant, "hi")
	h.Close()

	reloaded := New(path, 10)
	defer reloaded.Close()
	require.NoError(t, reloaded.Load())

	messages := reloaded.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, RoleUser, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, RoleAssistant, messages[1].Role)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	h := New(filepath.Join(t.TempDir(), "nope.json"), 10)
	defer h.Close()

	require.NoError(t, h.Load())
	assert.Equal(t, 0, h.Len())
}

func TestLoadTruncatesOverBound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h := New(path, 10)
	for _, word := range []string{"a", "b", "c", "d"} {
		h.Append(RoleUser, word)
	}
	h.Close()

	reloaded := New(path, 2)
	defer reloaded.Close()
	require.NoError(t, reloaded.Load())

	messages := reloaded.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "c", messages[0].Content)
}
