package openaior

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"spring/pkg/oracle"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// Client is a wrapper around the official OpenAI Go SDK.
// It is the only provider that also implements oracle.Speech.
type Client struct {
	client  *openai.Client
	model   string
	options map[string]any
}

// NewClient creates a new OpenAI oracle client.
func NewClient(apiKey string, model string, baseURL string, options map[string]any) (*Client, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	return &Client{
		client:  &client,
		model:   model,
		options: options,
	}, nil
}

func (c *Client) Provider() string {
	return "openai"
}

func (c *Client) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	// Transient: network-level issues
	if strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") {
		return true
	}

	// Transient: server-side temporary failures
	if strings.Contains(msg, "500 internal") ||
		strings.Contains(msg, "502 bad gateway") ||
		strings.Contains(msg, "503 service unavailable") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "overloaded") {
		return true
	}

	// Everything else (400 Bad Request, 401 Unauthorized, etc.) is non-transient
	return false
}

// Complete implements oracle.Oracle.
func (c *Client) Complete(ctx context.Context, req oracle.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: c.convertRequest(req),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, c.requestOptions()...)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", oracle.Refusal("no choices returned")
	}

	choice := resp.Choices[0].Message
	if choice.Refusal != "" {
		return "", oracle.Refusal(choice.Refusal)
	}

	return choice.Content, nil
}

// Parse implements oracle.Oracle using OpenAI structured outputs.
func (c *Client) Parse(ctx context.Context, req oracle.Request, schema oracle.Schema) ([]byte, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: c.convertRequest(req),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schema.Name,
					Schema: schema.Definition,
					Strict: openai.Bool(true),
				},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, c.requestOptions()...)
	if err != nil {
		return nil, fmt.Errorf("openai structured request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, oracle.Refusal("no choices returned")
	}

	choice := resp.Choices[0].Message
	if choice.Refusal != "" {
		return nil, oracle.Refusal(choice.Refusal)
	}
	if choice.Content == "" {
		return nil, oracle.Refusal("empty structured response")
	}

	return []byte(choice.Content), nil
}

// Transcribe implements oracle.Speech via Whisper.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.ogg"
	}

	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(bytes.NewReader(audio), filename, "application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription failed: %w", err)
	}

	return resp.Text, nil
}

// Synthesize implements oracle.Speech via the TTS endpoint, returning Opus audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoiceAlloy,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatOpus,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
	}

	return data, nil
}

// convertRequest maps the provider-independent request to OpenAI chat messages.
func (c *Client) convertRequest(req oracle.Request) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)

	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}

	for _, turn := range req.History {
		if turn.Role == "assistant" {
			msgs = append(msgs, openai.AssistantMessage(turn.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(turn.Content))
		}
	}

	if req.Input != "" {
		msgs = append(msgs, openai.UserMessage(req.Input))
	}

	return msgs
}

// requestOptions maps the unified options map onto raw request parameters.
func (c *Client) requestOptions() []option.RequestOption {
	var opts []option.RequestOption

	if t, ok := c.options["temperature"].(float64); ok {
		opts = append(opts, option.WithJSONSet("temperature", t))
	}
	if p, ok := c.options["top_p"].(float64); ok {
		opts = append(opts, option.WithJSONSet("top_p", p))
	}
	if maxTok, ok := c.options["max_tokens"].(float64); ok {
		opts = append(opts, option.WithJSONSet("max_completion_tokens", int(maxTok)))
	}

	return opts
}
