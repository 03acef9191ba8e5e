package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	deepSeekDefaultBaseURL = "https://api.deepseek.com/v1"
	openAIDefaultBaseURL   = "https://api.openai.com/v1"

	// systemPrompt is the fixed persona sent as the leading system
	// message on every chat-completions call.
	systemPrompt = "You are an experienced first aid and emergency medicine expert. " +
		"Give clear, practical and accurate guidance, and always advise seeking " +
		"professional medical help for serious conditions."
)

// ChatCompletionsCaller implements Caller for OpenAI-compatible
// chat-completions APIs. DeepSeek and OpenAI share this shape and differ
// only in base URL and default model.
type ChatCompletionsCaller struct {
	config  Config
	client  *http.Client
	baseURL string
}

// NewDeepSeekCaller creates a DeepSeek caller. A nil client gets the
// default transport configuration.
func NewDeepSeekCaller(client *http.Client) *ChatCompletionsCaller {
	cfg, _ := Lookup(ProviderDeepSeek)
	return newChatCompletionsCaller(cfg, client, deepSeekDefaultBaseURL)
}

// NewOpenAICaller creates an OpenAI caller. A nil client gets the default
// transport configuration.
func NewOpenAICaller(client *http.Client) *ChatCompletionsCaller {
	cfg, _ := Lookup(ProviderOpenAI)
	return newChatCompletionsCaller(cfg, client, openAIDefaultBaseURL)
}

func newChatCompletionsCaller(cfg Config, client *http.Client, baseURL string) *ChatCompletionsCaller {
	if client == nil {
		client = newHTTPClient()
	}
	return &ChatCompletionsCaller{
		config:  cfg,
		client:  client,
		baseURL: baseURL,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate issues a single chat-completions request with bearer auth. There
// is no model fallback: the explicit model or the provider default is used.
func (c *ChatCompletionsCaller) Generate(ctx context.Context, prompt, credential, model string) (string, error) {
	if model == "" {
		model = c.config.DefaultModel()
	}

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", httpError(c.config.DisplayName, resp.StatusCode, vendorMessage(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", malformedResponseError(c.config.DisplayName)
	}
	if len(parsed.Choices) == 0 {
		return "", malformedResponseError(c.config.DisplayName)
	}

	return parsed.Choices[0].Message.Content, nil
}

// vendorMessage extracts the human-readable message from an error body,
// returning "" when the body is not in the expected {error:{message}} shape.
func vendorMessage(body []byte) string {
	var parsed chatErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Message
}
