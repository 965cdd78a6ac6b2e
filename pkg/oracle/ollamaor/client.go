package ollamaor

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"spring/pkg/oracle"

	jsoniter "github.com/json-iterator/go"
	"github.com/ollama/ollama/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is a local Ollama oracle.
type Client struct {
	client  *api.Client
	model   string
	options map[string]any
}

// NewClient creates an Ollama client.
func NewClient(model string, baseURL string, options map[string]any) (*Client, error) {
	var client *api.Client
	var err error

	// Custom Transport to ensure no timeouts are imposed by the client
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 0,
	}

	customClient := &http.Client{
		Transport: &JSONFixingRoundTripper{Proxied: transport},
		Timeout:   0,
	}

	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		client = api.NewClient(u, customClient)
	} else {
		client, err = api.ClientFromEnvironment()
	}

	if err != nil {
		return nil, err
	}

	slog.Info("Ollama client initialized", "model", model, "base_url", baseURL)

	return &Client{
		client:  client,
		model:   model,
		options: options,
	}, nil
}

func (o *Client) Provider() string {
	return "ollama"
}

// Complete implements oracle.Oracle.
func (o *Client) Complete(ctx context.Context, req oracle.Request) (string, error) {
	resp, err := o.chat(ctx, req, nil)
	if err != nil {
		return "", err
	}
	if resp == "" {
		return "", oracle.Refusal("empty ollama response")
	}
	return resp, nil
}

// Parse implements oracle.Oracle by passing the schema as the response format.
func (o *Client) Parse(ctx context.Context, req oracle.Request, schema oracle.Schema) ([]byte, error) {
	formatB, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response schema: %w", err)
	}

	resp, err := o.chat(ctx, req, stdjson.RawMessage(formatB))
	if err != nil {
		return nil, err
	}
	if resp == "" {
		return nil, oracle.Refusal("empty ollama response")
	}
	return []byte(resp), nil
}

func (o *Client) chat(ctx context.Context, req oracle.Request, format stdjson.RawMessage) (string, error) {
	streamVal := false
	chatReq := &api.ChatRequest{
		Model:    o.model,
		Messages: o.convertRequest(req),
		Options:  o.options,
		Format:   format,
		Stream:   &streamVal,
	}

	var content strings.Builder
	err := o.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	return content.String(), nil
}

// convertRequest converts the request to Ollama API format.
func (o *Client) convertRequest(req oracle.Request) []api.Message {
	msgs := make([]api.Message, 0, len(req.History)+2)

	if req.System != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: req.System})
	}

	for _, turn := range req.History {
		role := "user"
		if turn.Role == "assistant" {
			role = "assistant"
		}
		msgs = append(msgs, api.Message{Role: role, Content: turn.Content})
	}

	if req.Input != "" {
		msgs = append(msgs, api.Message{Role: "user", Content: req.Input})
	}

	return msgs
}

// IsTransientError implements the oracle.Oracle interface.
func (o *Client) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()

	// 1. Connection related errors (Connection refused, reset)
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "connection reset") {
		return true
	}

	// 2. High load
	if strings.Contains(strings.ToLower(errMsg), "overloaded") {
		return true
	}

	return false
}

//----------------------------------------------------------------
// JSONFixingRoundTripper - Interceptor that fixes illegal JSON escapes
//----------------------------------------------------------------

// JSONFixingRoundTripper intercepts response and fixes illegal escapes (e.g., \$)
type JSONFixingRoundTripper struct {
	Proxied http.RoundTripper
}

func (j *JSONFixingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := j.Proxied.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(resp.Header.Get("Content-Type"), "application/x-ndjson") {
		resp.Body = &jsonFixingReadCloser{body: resp.Body}
	}
	return resp, nil
}

type jsonFixingReadCloser struct {
	body io.ReadCloser
}

var illegalEscapeRegex = regexp.MustCompile(`\\([^\/\\bfnrtu"])`)

func (j *jsonFixingReadCloser) Read(p []byte) (n int, err error) {
	n, err = j.body.Read(p)
	if n > 0 {
		// Convert e.g. \$ to $ to avoid JSON parsing failures from small local models
		content := string(p[:n])
		fixed := illegalEscapeRegex.ReplaceAllString(content, "$1")
		if len(fixed) < len(content) {
			copy(p, []byte(fixed))
			n = len(fixed)
		}
	}
	return n, err
}

func (j *jsonFixingReadCloser) Close() error {
	return j.body.Close()
}
