package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spring/pkg/oracle"
)

// noneChoice is the classifier escape hatch for messages that map to no action.
const noneChoice = "none"

// ErrNoAction is returned when the oracle explicitly decides no registered
// action applies to the message.
var ErrNoAction = errors.New("no action matches the message")

// ErrUndetermined is returned when no usable choice came back at all: the
// oracle refused, produced malformed JSON, or named an action that is not
// registered. Unlike ErrNoAction this is not a decision, and callers should
// tell the user the action could not be determined.
var ErrUndetermined = errors.New("could not determine the action")

// Classifier selects the action a message asks for, by name only.
type Classifier struct {
	oracle   oracle.Oracle
	registry *Registry
}

func NewClassifier(o oracle.Oracle, registry *Registry) *Classifier {
	return &Classifier{oracle: o, registry: registry}
}

type classification struct {
	Action string `json:"action"`
}

// Classify picks an action for the latest user message given the chat
// history. It returns ErrNoAction when the oracle selects none, and
// ErrUndetermined when the answer is a refusal, malformed, or outside the
// registered set. Transport errors are returned as-is.
func (c *Classifier) Classify(ctx context.Context, turns []oracle.Turn, input string) (*Descriptor, error) {
	names := c.registry.Names()
	choices := make([]string, 0, len(names)+1)
	choices = append(choices, names...)
	choices = append(choices, noneChoice)

	schema := oracle.Schema{
		Name: "action_choice",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type": "string",
					"enum": choices,
				},
			},
			"required":             []string{"action"},
			"additionalProperties": false,
		},
	}

	system := "Given the chat history, determine which action the user wants to perform with their latest message.\n" +
		"Available actions:\n" + c.registry.DescribeAll() +
		"If no action applies, answer \"" + noneChoice + "\"."

	raw, err := c.oracle.Parse(ctx, oracle.Request{
		System:  system,
		History: turns,
		Input:   input,
	}, schema)
	if err != nil {
		if oracle.IsRefusal(err) {
			slog.Warn("⚠️ Classifier refused", "error", err)
			return nil, ErrUndetermined
		}
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	var choice classification
	if err := json.Unmarshal(raw, &choice); err != nil {
		slog.Warn("⚠️ Classifier returned malformed JSON", "raw", string(raw))
		return nil, ErrUndetermined
	}

	if choice.Action == noneChoice {
		return nil, ErrNoAction
	}

	desc := c.registry.Find(choice.Action)
	if desc == nil {
		// The schema constrains the choice, but never trust it blindly.
		slog.Warn("⚠️ Classifier chose unknown action", "action", choice.Action)
		return nil, ErrUndetermined
	}

	slog.Info("🔄 Action classified", "action", desc.Name)
	return desc, nil
}
