package action

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spring/pkg/oracle"
)

const (
	extractionPrompt = "Given the chat history, determine if the following arguments are available. " +
		"For arguments which are not clearly available, return an empty string ''. Do not guess."

	abortPrompt = "Determine if the user has decided to abort the current operation. " +
		"Reply true only if the user has clearly expressed the intention to abort."
)

// UserPrompter asks the user a question and blocks until they reply.
type UserPrompter interface {
	AskUser(ctx context.Context, question string) (string, error)
}

// Outcome is the result of argument resolution. Exactly one of the two shapes
// holds: Aborted with a Reason, or a complete set of required Args.
type Outcome struct {
	Aborted bool
	Reason  string
	Args    ArgumentSet
}

// Resolver fills an action's arguments from the conversation, asking the
// user for anything it cannot extract.
type Resolver struct {
	oracle    oracle.Oracle
	prompter  UserPrompter
	maxRounds int
}

func NewResolver(o oracle.Oracle, prompter UserPrompter, maxRounds int) *Resolver {
	if maxRounds < 1 {
		maxRounds = 1
	}
	return &Resolver{oracle: o, prompter: prompter, maxRounds: maxRounds}
}

// Resolve fills desc's arguments starting from seed. Required arguments are
// resolved first; when extraction from the history is not enough, the user is
// asked, up to the round limit. Optional arguments ride along in questions and
// get one final best-effort extraction pass, but never trigger a question on
// their own.
func (r *Resolver) Resolve(ctx context.Context, desc *Descriptor, seed ArgumentSet, turns []oracle.Turn) (Outcome, error) {
	args := seed.Clone()
	desc.Validate(args)
	required, optional := desc.Optionality()

	round := 0
	for len(args.Missing(required)) > 0 {
		missing := append(args.Missing(required), args.Missing(optional)...)
		extracted, err := r.extract(ctx, desc, missing, turns)
		if err != nil {
			return Outcome{}, err
		}
		args.Merge(extracted)
		desc.Validate(args)

		stillRequired := args.Missing(required)
		if len(stillRequired) == 0 {
			break
		}

		if round >= r.maxRounds {
			slog.Warn("⚠️ Argument resolution hit round limit", "action", desc.Name, "missing", stillRequired)
			return Outcome{Aborted: true, Reason: "max rounds exceeded", Args: args}, nil
		}
		round++

		askFor := append(stillRequired, args.Missing(optional)...)
		question := "Please provide the following arguments: " + strings.Join(askFor, ", ")
		reply, err := r.prompter.AskUser(ctx, question)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to ask for arguments: %w", err)
		}

		turns = append(turns,
			oracle.Turn{Role: "assistant", Content: question},
			oracle.Turn{Role: "user", Content: reply},
		)

		aborted, reason, err := r.checkAbort(ctx, turns)
		if err != nil {
			return Outcome{}, err
		}
		if aborted {
			slog.Info("🔄 Operation aborted by user", "action", desc.Name, "reason", reason)
			return Outcome{Aborted: true, Reason: reason, Args: args}, nil
		}
	}

	// One best-effort pass for optionals still missing. No questions.
	if missingOpt := args.Missing(optional); len(missingOpt) > 0 {
		extracted, err := r.extract(ctx, desc, missingOpt, turns)
		if err != nil {
			return Outcome{}, err
		}
		args.Merge(extracted)
		desc.Validate(args)
	}

	return Outcome{Args: args}, nil
}

// extract asks the oracle for the given keys over the chat history. Refusals
// and malformed output yield an empty set; transport errors propagate.
func (r *Resolver) extract(ctx context.Context, desc *Descriptor, keys []string, turns []oracle.Turn) (ArgumentSet, error) {
	raw, err := r.oracle.Parse(ctx, oracle.Request{
		System:  extractionPrompt,
		History: turns,
	}, desc.ExtractionSchema(keys))
	if err != nil {
		if oracle.IsRefusal(err) {
			slog.Warn("⚠️ Argument extraction refused", "action", desc.Name, "error", err)
			return ArgumentSet{}, nil
		}
		return nil, fmt.Errorf("argument extraction failed: %w", err)
	}

	extracted, err := DecodeArguments(raw)
	if err != nil {
		slog.Warn("⚠️ Argument extraction returned malformed JSON", "action", desc.Name, "raw", string(raw))
		return ArgumentSet{}, nil
	}
	return extracted, nil
}

type abortCheck struct {
	Abort  bool   `json:"abort"`
	Reason string `json:"reason"`
}

// checkAbort decides whether the user's last reply ends the operation.
// A refusal counts as an abort, since resolution cannot safely continue.
func (r *Resolver) checkAbort(ctx context.Context, turns []oracle.Turn) (bool, string, error) {
	schema := oracle.Schema{
		Name: "abort_check",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"abort":  map[string]any{"type": "boolean"},
				"reason": map[string]any{"type": "string"},
			},
			"required":             []string{"abort", "reason"},
			"additionalProperties": false,
		},
	}

	raw, err := r.oracle.Parse(ctx, oracle.Request{
		System:  abortPrompt,
		History: turns,
	}, schema)
	if err != nil {
		if oracle.IsRefusal(err) {
			return true, "could not determine abortion", nil
		}
		return false, "", fmt.Errorf("abort check failed: %w", err)
	}

	var check abortCheck
	if err := json.Unmarshal(raw, &check); err != nil {
		return true, "could not determine abortion", nil
	}
	if check.Abort {
		reason := check.Reason
		if reason == "" {
			reason = "user aborted the operation"
		}
		return true, reason, nil
	}
	return false, "", nil
}
