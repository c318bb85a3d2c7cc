package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/omriShneor/donna/internal/conversation"
	"github.com/omriShneor/donna/internal/intent"
)

const (
	defaultAPIURL    = "https://api.anthropic.com/v1/messages"
	defaultModel     = "claude-3-5-haiku-20241022"
	defaultMaxTokens = 1024
	anthropicVersion = "2023-06-01"

	maxHistoryTurns = conversation.DefaultWindow
)

// Client is a Claude API client for intent extraction
type Client struct {
	apiKey      string
	model       string
	apiURL      string
	httpClient  *http.Client
	temperature float64
	logger      *zap.Logger
}

// NewClient creates a new Claude API client
func NewClient(apiKey, model string, temperature float64, logger *zap.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if temperature <= 0 {
		temperature = 0.1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:      apiKey,
		model:       model,
		apiURL:      defaultAPIURL,
		temperature: temperature,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// anthropicRequest represents the API request structure
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse represents the API response structure
type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ExtractIntent reads one user message against the recent turn window and
// returns its structured intent. Model output that cannot be decoded
// degrades to a fallback NoneIntent; errors are reserved for transport and
// API failures.
func (c *Client) ExtractIntent(ctx context.Context, userText string, turns []conversation.Turn, now time.Time) (intent.Intent, error) {
	userPrompt := c.buildUserPrompt(userText, turns, now)

	req := anthropicRequest{
		Model:       c.model,
		MaxTokens:   defaultMaxTokens,
		Temperature: c.temperature,
		System:      SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: userPrompt},
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return intent.Intent{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return intent.Intent{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return intent.Intent{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return intent.Intent{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return intent.Intent{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return intent.Intent{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return intent.Intent{}, fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return intent.Intent{}, fmt.Errorf("empty response from API")
	}

	responseText := apiResp.Content[0].Text

	parsed, err := intent.DecodeResponse(responseText)
	if err != nil {
		// Bad model output is recovered locally, never surfaced as a failure.
		c.logger.Warn("model response did not decode, substituting none intent",
			zap.Error(err),
			zap.String("response", truncateForLog(responseText, 200)),
		)
		return intent.FallbackNone(), nil
	}

	return parsed, nil
}

// buildUserPrompt constructs the prompt with the turn window and date context
func (c *Client) buildUserPrompt(userText string, turns []conversation.Turn, now time.Time) string {
	var prompt bytes.Buffer

	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}

	prompt.WriteString("## Conversation History (most recent turns)\n\n")
	if len(turns) == 0 {
		prompt.WriteString("No earlier turns.\n")
	}
	for _, turn := range turns {
		prompt.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
	}

	prompt.WriteString("\n## New Message\n\n")
	prompt.WriteString(userText)
	prompt.WriteString("\n")

	prompt.WriteString("\n## Current Date/Time Reference\n\n")
	prompt.WriteString(fmt.Sprintf("Current time: %s\n", now.Format("2006-01-02 15:04 (Monday)")))

	prompt.WriteString("\nExtract the intent and respond with your JSON object.")

	return prompt.String()
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}
