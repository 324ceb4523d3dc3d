// internal/service/ai/client.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	xerrors "lumen-service/internal/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// Client is a thin HTTP client over a chat-completion provider. Every call
// carries a hard timeout via the configured http.Client; a slow provider
// fails the request instead of stalling it.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  httpClient,
	}
}

// Configured reports whether the provider can be called at all.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a system/user prompt pair and returns the raw completion
// text. All failure modes map to ErrProviderUnavailable so the caller can
// switch to the fallback path with a single errors.Is check.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: provider not configured", xerrors.ErrProviderUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", xerrors.ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp providerErrorResponse
		if jsonErr := json.Unmarshal(raw, &errResp); jsonErr == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("%w: %s", xerrors.ErrProviderUnavailable, errResp.Error.Message)
		}
		return "", fmt.Errorf("%w: provider returned status %d", xerrors.ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", xerrors.ErrProviderUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", xerrors.ErrProviderUnavailable)
	}

	return parsed.Choices[0].Message.Content, nil
}

// jsonObjectPattern matches the first {...} block in a completion. Providers
// wrap JSON in prose and code fences often enough that strict unmarshalling
// of the whole text is useless.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON unmarshals the first JSON object found in noisy completion
// text into v.
func ExtractJSON(text string, v interface{}) error {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return fmt.Errorf("%w: no JSON object in completion", xerrors.ErrProviderUnavailable)
	}
	if err := json.Unmarshal([]byte(match), v); err != nil {
		return fmt.Errorf("%w: malformed JSON in completion: %v", xerrors.ErrProviderUnavailable, err)
	}
	return nil
}
