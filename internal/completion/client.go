package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vytor/brainyflash/internal/logger"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	log        *logger.Logger
}

type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := opts.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		model:      model,
		log:        logger.Default().WithPrefix("completion"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("completion").WithField("model", c.model)

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.temperature(),
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/chat/completions"
	log.Debug("requesting completion: prompt_chars=%d, max_tokens=%d", len(req.Prompt), req.MaxTokens)
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("completion request failed: %v", err)
		return "", err
	}
	defer resp.Body.Close()

	log.Debug("completion response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("completion request failed: status=%d, body=%s", resp.StatusCode, string(snippet))
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, string(snippet))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Error("failed to decode completion response: %v", err)
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("completion error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	log.Info("completion returned %d chars", len(text))
	return text, nil
}
