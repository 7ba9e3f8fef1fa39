package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/resumescore/backend/internal/domain/scoring"
)

// maxResponseSize is the maximum allowed response size from the model API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var (
	ErrMissingAPIKey  = errors.New("gemini: API key is required")
	ErrMissingModel   = errors.New("gemini: model name is required")
	ErrRequestFailed  = errors.New("gemini: request failed")
	ErrEmptyResponse  = errors.New("gemini: model returned no candidates")
	ErrPromptBlocked  = errors.New("gemini: prompt was blocked by safety filters")
	ErrInvalidPayload = errors.New("gemini: failed to parse response")
)

// GeminiConfig holds the connection settings for the Gemini API
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

// Validate checks that the configuration is usable
func (c *GeminiConfig) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return ErrMissingModel
	}
	return nil
}

// GeminiClient calls the Gemini generateContent REST API
type GeminiClient struct {
	config     *GeminiConfig
	httpClient *http.Client
}

// NewGeminiClient creates a new Gemini client with the given configuration
func NewGeminiClient(config *GeminiConfig) (*GeminiClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &GeminiClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Model returns the configured model name
func (c *GeminiClient) Model() string {
	return c.config.Model
}

// Generate sends a prompt to the model and returns the raw completion text
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}
	if c.config.Temperature > 0 {
		temp := c.config.Temperature
		reqBody.GenerationConfig = &generationConfig{Temperature: &temp}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.config.BaseURL, c.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to read response: %w", err)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if resp.StatusCode >= 400 {
		if parsed.Error != nil {
			return "", fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrPromptBlocked, parsed.PromptFeedback.BlockReason)
	}

	text := parsed.text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// Ensure GeminiClient implements the TextGenerator interface
var _ scoring.TextGenerator = (*GeminiClient)(nil)
