package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiCaller implements Caller for the Google Gemini generateContent API.
// Unlike the chat-completions providers it walks an ordered candidate model
// list, falling through to the next model when the current one is rejected
// with a recoverable status (model unknown or quota exhausted).
type GeminiCaller struct {
	config  Config
	client  *http.Client
	baseURL string
}

// NewGeminiCaller creates a Gemini caller. A nil client gets the default
// transport configuration.
func NewGeminiCaller(client *http.Client) *GeminiCaller {
	if client == nil {
		client = newHTTPClient()
	}
	cfg, _ := Lookup(ProviderGemini)
	return &GeminiCaller{
		config:  cfg,
		client:  client,
		baseURL: geminiDefaultBaseURL,
	}
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig geminiGeneration `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGeneration struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate tries each candidate model in order, strictly one request at a
// time, and returns the first successfully extracted text. A 404 or 429 on
// a candidate moves on to the next one; any other failure is fatal
// immediately. If every candidate is rejected recoverably the call fails
// with KindAllCandidatesExhausted.
func (c *GeminiCaller) Generate(ctx context.Context, prompt, credential, model string) (string, error) {
	candidates := c.config.CandidateModels
	if model != "" {
		candidates = []string{model}
	}

	for _, candidate := range candidates {
		text, err := c.generateOnce(ctx, prompt, credential, candidate)
		if err == nil {
			return text, nil
		}
		if isRecoverable(err) {
			continue
		}
		return "", err
	}

	return "", allCandidatesExhaustedError(c.config.DisplayName)
}

func (c *GeminiCaller) generateOnce(ctx context.Context, prompt, credential, model string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGeneration{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, model, url.QueryEscape(credential))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
		return "", httpError(c.config.DisplayName, resp.StatusCode, "")
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", malformedResponseError(c.config.DisplayName)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", malformedResponseError(c.config.DisplayName)
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// isRecoverable decides whether a per-model failure should fall through to
// the next candidate. The HTTP status code is authoritative when present;
// the substring check only covers transport-level errors that carry a
// status in their text rather than a structured code.
func isRecoverable(err error) bool {
	if provErr, ok := err.(*Error); ok {
		if provErr.Status != 0 {
			return IsRecoverableStatus(provErr.Status)
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "429")
}
