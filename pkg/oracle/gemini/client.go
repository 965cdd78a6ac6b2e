package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"spring/pkg/oracle"

	"google.golang.org/genai"
)

// Client is a Google Gemini oracle built on the official GenAI SDK.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client with a single model and API key.
func NewClient(apiKey string, model string) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (g *Client) Provider() string {
	return "gemini"
}

// Complete implements oracle.Oracle.
func (g *Client) Complete(ctx context.Context, req oracle.Request) (string, error) {
	contents, system := g.convertRequest(req)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: system,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", oracle.Refusal("empty gemini response")
	}

	return text, nil
}

// Parse implements oracle.Oracle with a JSON response schema.
func (g *Client) Parse(ctx context.Context, req oracle.Request, schema oracle.Schema) ([]byte, error) {
	contents, system := g.convertRequest(req)

	genaiSchema, err := convertSchema(schema.Definition)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: system,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    genaiSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini structured request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, oracle.Refusal("empty gemini response")
	}

	return []byte(text), nil
}

// convertSchema rebuilds a JSON-schema map as a genai.Schema via a JSON round trip.
func convertSchema(definition map[string]any) (*genai.Schema, error) {
	raw, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response schema: %w", err)
	}
	var schema genai.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("response schema is not gemini-compatible: %w", err)
	}
	return &schema, nil
}

// convertRequest converts the request to GenAI contents plus a system instruction.
func (g *Client) convertRequest(req oracle.Request) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var system *genai.Content

	if req.System != "" {
		system = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	for _, turn := range req.History {
		role := "user"
		if turn.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}

	if req.Input != "" {
		contents = append(contents, &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.Input}},
		})
	}

	return contents, system
}

// IsTransientError implements the oracle.Oracle interface.
func (g *Client) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()

	// 1. Google API common 503 Service Unavailable / Overloaded
	if strings.Contains(errMsg, "503") || strings.Contains(strings.ToLower(errMsg), "overloaded") {
		return true
	}

	// 2. 429 Too Many Requests (Rate Limit)
	if strings.Contains(errMsg, "429") || strings.Contains(strings.ToLower(errMsg), "resource exhausted") {
		return true
	}

	// 3. 500 Internal Error
	if strings.Contains(errMsg, "500") || strings.Contains(strings.ToLower(errMsg), "internal error") {
		return true
	}

	return false
}
