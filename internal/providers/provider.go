package providers

import (
	"context"
	"net/http"
	"time"
)

// ProviderID enumerates supported providers.
type ProviderID string

const (
	ProviderGemini   ProviderID = "gemini"
	ProviderDeepSeek ProviderID = "deepseek"
	ProviderOpenAI   ProviderID = "openai"
)

// DefaultProvider is used whenever no valid selection is persisted.
const DefaultProvider = ProviderGemini

// ParseProviderID returns the ProviderID matching s, or false if s is
// outside the closed set.
func ParseProviderID(s string) (ProviderID, bool) {
	switch ProviderID(s) {
	case ProviderGemini, ProviderDeepSeek, ProviderOpenAI:
		return ProviderID(s), true
	}
	return "", false
}

// Config holds the static per-provider record: display name, the key the
// credential is stored under, and the ordered candidate model list
// (first entry is the default model).
type Config struct {
	ID              ProviderID
	DisplayName     string
	CredentialKey   string
	CandidateModels []string
}

// DefaultModel returns the preferred model for this provider.
func (c Config) DefaultModel() string {
	return c.CandidateModels[0]
}

var registry = map[ProviderID]Config{
	ProviderGemini: {
		ID:            ProviderGemini,
		DisplayName:   "Gemini",
		CredentialKey: "gemini_api_key",
		CandidateModels: []string{
			"gemini-2.0-flash",
			"gemini-1.5-flash",
			"gemini-1.5-pro",
			"gemini-pro",
		},
	},
	ProviderDeepSeek: {
		ID:              ProviderDeepSeek,
		DisplayName:     "DeepSeek",
		CredentialKey:   "deepseek_api_key",
		CandidateModels: []string{"deepseek-chat"},
	},
	ProviderOpenAI: {
		ID:              ProviderOpenAI,
		DisplayName:     "OpenAI",
		CredentialKey:   "openai_api_key",
		CandidateModels: []string{"gpt-3.5-turbo"},
	},
}

// Lookup returns the Config for id. The mapping is total over the closed
// enumeration; the second return is false only for values outside it.
func Lookup(id ProviderID) (Config, bool) {
	cfg, ok := registry[id]
	return cfg, ok
}

// All returns the configs of every known provider, in registry order.
func All() []Config {
	configs := make([]Config, 0, len(registry))
	for _, id := range []ProviderID{ProviderGemini, ProviderDeepSeek, ProviderOpenAI} {
		configs = append(configs, registry[id])
	}
	return configs
}

// Caller is implemented by each concrete provider client. Generate sends
// prompt to the provider using credential and returns the generated text.
// An empty model lets the caller pick its own default/candidate list.
type Caller interface {
	Generate(ctx context.Context, prompt, credential, model string) (string, error)
}

const defaultTimeout = 60 * time.Second

// newHTTPClient returns the shared transport configuration used by all
// callers when no client is injected.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
