package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIURL = "https://api.openai.com/v1/audio/speech"
	defaultModel  = "tts-1"
	defaultVoice  = "nova"
	defaultSpeed  = 1.0

	// Speed bounds accepted by the synthesis API.
	minSpeed = 0.25
	maxSpeed = 4.0
)

// Client synthesizes spoken audio from text via the OpenAI speech API.
type Client struct {
	apiKey     string
	model      string
	voice      string
	speed      float64
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new text-to-speech client. Voice and speed are
// defaults; individual requests may override them.
func NewClient(apiKey, model, voice string, speed float64, logger *zap.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if voice == "" {
		voice = defaultVoice
	}
	if speed == 0 {
		speed = defaultSpeed
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey: apiKey,
		model:  model,
		voice:  voice,
		speed:  clampSpeed(speed),
		apiURL: defaultAPIURL,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SynthesisRequest describes one synthesis call. Zero values fall back
// to the client defaults.
type SynthesisRequest struct {
	Text  string
	Voice string
	Speed float64
}

// speechRequest represents the OpenAI speech API request structure
type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed"`
	ResponseFormat string  `json:"response_format"`
}

// Synthesize converts text to MP3 audio. The text is sanitized for
// speech first; markup and emoji never reach the synthesizer.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	text := Sanitize(req.Text)
	if text == "" {
		return nil, fmt.Errorf("no speakable text")
	}

	voice := req.Voice
	if voice == "" {
		voice = c.voice
	}
	speed := req.Speed
	if speed == 0 {
		speed = c.speed
	}

	apiReq := speechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          voice,
		Speed:          clampSpeed(speed),
		ResponseFormat: "mp3",
	}

	jsonData, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("speech API returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("speech API returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}

	return audio, nil
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

func clampSpeed(speed float64) float64 {
	if speed < minSpeed {
		return minSpeed
	}
	if speed > maxSpeed {
		return maxSpeed
	}
	return speed
}
