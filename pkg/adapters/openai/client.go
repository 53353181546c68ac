// Package openai adapts an OpenAI-compatible chat-completions endpoint to the
// ports.Reasoner contract. Any server speaking the same wire format works
// through WithBaseURL.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/switchyard-ai/switchyard/internal/logging"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

const (
	// DefaultBaseURL targets the hosted API; point it elsewhere for proxies
	// and compatible local servers.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is deliberately small; routing decisions are short.
	DefaultModel = "gpt-4o-mini"

	defaultTimeout = 30 * time.Second
	defaultRetries = 2
	defaultBackoff = 500 * time.Millisecond
)

// Client calls the chat-completions endpoint and parses replies into
// inferences. Transient upstream failures (5xx, 429, network) are retried a
// bounded number of times; every failure surfaces as *domain.ExternalError.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

var _ ports.Reasoner = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel selects the model name sent upstream.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient swaps the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries caps retry attempts for transient failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay between retries.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a client. The key may be empty for local endpoints that skip auth.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultRetries,
		backoff:    defaultBackoff,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire types for the chat-completions endpoint.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// decision is the JSON contract the supervisor prompt asks for.
type decision struct {
	NextAgent     string `json:"next_agent"`
	Task          string `json:"task"`
	Justification string `json:"justification"`
	AskUser       string `json:"ask_user"`
}

// Infer sends one prompt and parses the reply. Decision calls request JSON
// output and tolerate sloppy formatting around it; prose calls return the
// content as-is.
func (c *Client) Infer(ctx context.Context, req ports.InferenceRequest) (*ports.Inference, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: userContent(req)},
		},
	}
	if req.WantDecision {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	content, err := c.complete(ctx, payload)
	if err != nil {
		return nil, &domain.ExternalError{Service: "reasoner", Err: err}
	}
	if !req.WantDecision {
		return &ports.Inference{Text: content}, nil
	}
	return parseDecision(content), nil
}

// userContent prefixes the prompt with the known entities so the model treats
// them as ground truth. Keys are sorted for stable prompts.
func userContent(req ports.InferenceRequest) string {
	if len(req.Context) == 0 {
		return req.Prompt
	}
	keys := make([]string, 0, len(req.Context))
	for k := range req.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("Known context:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %s\n", k, req.Context[k])
	}
	sb.WriteString("\n")
	sb.WriteString(req.Prompt)
	return sb.String()
}

// complete runs the request with bounded retries on transient failures.
func (c *Client) complete(ctx context.Context, payload chatRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying chat completion", "attempt", attempt, "err", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		content, retryable, err := c.once(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) once(ctx context.Context, payload chatRequest) (content string, retryable bool, err error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", false, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", buf)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("chat completions: %s: %s", resp.Status, bytes.TrimSpace(data))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", false, errors.New("empty choices in response")
	}
	return cr.Choices[0].Message.Content, false, nil
}

// parseDecision extracts the routing decision. Models wrap JSON in fences or
// prose often enough that we scan for the outermost object instead of
// trusting the whole body; content with no parseable object degrades to prose
// and the routing layer applies its own fail-safe.
func parseDecision(content string) *ports.Inference {
	raw := extractJSON(content)
	var d decision
	if raw == nil || json.Unmarshal(raw, &d) != nil {
		return &ports.Inference{Text: content}
	}
	if q := strings.TrimSpace(d.AskUser); q != "" {
		return &ports.Inference{Question: q}
	}
	return &ports.Inference{
		Text:      content,
		NextAgent: strings.TrimSpace(d.NextAgent),
		Task:      strings.TrimSpace(d.Task),
		Reason:    strings.TrimSpace(d.Justification),
	}
}

func extractJSON(s string) []byte {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil
	}
	return []byte(s[start : end+1])
}
