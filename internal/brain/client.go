// Package brain is the decision trigger engine: it decides when each
// agent consults the external decision service, assembles the
// situation, parses the response, and hands the decision to the
// execution pipeline.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service is the external decision oracle: given a textual situation
// it returns the raw response text containing a structured decision.
type Service interface {
	Decide(ctx context.Context, situation string) (string, error)
}

// ErrEmptyResponse is returned when the service answers with no
// content.
var ErrEmptyResponse = errors.New("empty decision response")

const (
	defaultAPIURL  = "https://api.anthropic.com/v1/messages"
	apiVersion     = "2023-06-01"
	defaultModel   = "claude-haiku-4-5-20251001"
	decisionTokens = 400
)

// Client calls an Anthropic-style messages API as the decision
// service.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	system     string
	httpClient *http.Client
}

// NewClient creates a decision client. Returns nil if apiKey is empty
// (decision features disabled; agents fall back to their idle loop).
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		model:  defaultModel,
		system: decisionSystemPrompt,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether the client can make calls.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type apiResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Decide sends the situation to the service and returns the raw
// response text. Service, transport, and status failures are returned
// to the caller; nothing is swallowed here.
func (c *Client) Decide(ctx context.Context, situation string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("decision client not configured")
	}

	req := apiRequest{
		Model:     c.model,
		MaxTokens: decisionTokens,
		System:    c.system,
		Messages: []message{
			{Role: "user", Content: situation},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("decision call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("decision API error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return "", ErrEmptyResponse
	}
	return parsed.Content[0].Text, nil
}

const decisionSystemPrompt = `You control one creature in a small simulated wilderness. ` +
	`You receive its current situation and a menu of legal actions. ` +
	`Respond ONLY with a single JSON object of the form ` +
	`{"intent": string, "plan": [string], "next_action": {"name": string, "args": object}, ` +
	`"bubble": {"text": string, "emoji": string}}. ` +
	`Pick next_action from the menu exactly as named. Keep bubble.text under 40 characters.`
