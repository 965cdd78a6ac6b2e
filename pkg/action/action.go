package action

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"spring/pkg/api"
	"spring/pkg/oracle"
)

// FieldType describes the value kind of a single argument field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldEnum    FieldType = "enum"
)

// FieldSpec describes one argument of an action.
type FieldSpec struct {
	Type        FieldType
	Required    bool
	Description string
	Enum        []string
}

// Invocation carries everything an action body needs at execution time.
type Invocation struct {
	Args    ArgumentSet
	Message api.UnifiedMessage
	History []oracle.Turn
	Oracle  oracle.Oracle
	Reply   func(api.Response) error
}

// Descriptor defines a dispatchable action: its identity, its argument
// schema, and its body.
type Descriptor struct {
	Name   string
	Intent string
	Args   map[string]FieldSpec
	Run    func(ctx context.Context, inv *Invocation) error
}

// Optionality splits the argument keys into required and optional sets,
// each sorted for deterministic prompts.
func (d *Descriptor) Optionality() (required, optional []string) {
	for key, spec := range d.Args {
		if spec.Required {
			required = append(required, key)
		} else {
			optional = append(optional, key)
		}
	}
	sort.Strings(required)
	sort.Strings(optional)
	return required, optional
}

// ExtractionSchema builds a JSON schema asking for the given argument keys.
// Every value is a string so that missing fields can be signaled with "".
func (d *Descriptor) ExtractionSchema(keys []string) oracle.Schema {
	properties := make(map[string]any, len(keys))
	for _, key := range keys {
		desc := ""
		if spec, ok := d.Args[key]; ok {
			desc = spec.Description
			if len(spec.Enum) > 0 {
				if desc != "" {
					desc += ". "
				}
				desc += fmt.Sprintf("Allowed values: %s", strings.Join(spec.Enum, ", "))
			}
		}
		properties[key] = map[string]any{
			"type":        "string",
			"description": desc,
		}
	}

	required := make([]string, len(keys))
	copy(required, keys)

	return oracle.Schema{
		Name: d.Name + "_arguments",
		Definition: map[string]any{
			"type":                 "object",
			"properties":           properties,
			"required":             required,
			"additionalProperties": false,
		},
	}
}

// Validate checks enum fields against their allowed values.
// Out-of-enum values are reported so the caller can unset them.
func (d *Descriptor) Validate(args ArgumentSet) []string {
	var bad []string
	for key, spec := range d.Args {
		if len(spec.Enum) == 0 {
			continue
		}
		value, ok := args[key]
		if !ok {
			continue
		}
		valid := false
		for _, allowed := range spec.Enum {
			if strings.EqualFold(value, allowed) {
				args[key] = allowed
				valid = true
				break
			}
		}
		if !valid {
			delete(args, key)
			bad = append(bad, key)
		}
	}
	sort.Strings(bad)
	return bad
}
