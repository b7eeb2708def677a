// Package llm provides the generation engine client: an OpenAI-compatible
// chat-completions API consumed over HTTP.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/autostream/internal/convo"
)

const (
	// Groq exposes the OpenAI chat-completions surface.
	DefaultAPIBase = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	defaultTemperature = 0.4
	defaultMaxTokens   = 1024
	requestTimeout     = 30 * time.Second
)

// Options configures the client. Zero values fall back to defaults.
type Options struct {
	APIKey      string
	APIBase     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client calls a chat-completions endpoint once per turn.
type Client struct {
	apiKey      string
	apiBase     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient creates a generation engine client.
func NewClient(opts Options) *Client {
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return &Client{
		apiKey:      opts.APIKey,
		apiBase:     strings.TrimRight(opts.APIBase, "/"),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends the system prompt (record fields, phase and retrieved
// context embedded) plus the current user message and returns the raw
// reply text, tags included.
func (c *Client) Generate(ctx context.Context, req convo.GenerationRequest) (string, error) {
	body := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: buildSystemPrompt(req.Record, req.Context)},
			{Role: "user", Content: req.Message},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions request failed: status %d, body %s", resp.StatusCode, string(respBody))
	}

	return parseReply(respBody)
}

func parseReply(body []byte) (string, error) {
	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return apiResponse.Choices[0].Message.Content, nil
}
