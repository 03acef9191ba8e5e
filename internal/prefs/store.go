// Package prefs adapts the external key-value storage collaborator into
// the two pieces of user preference the dispatcher needs: the selected
// provider and per-provider API keys. Storage failures never propagate;
// both reads degrade to an absent/default value with the underlying cause
// logged as a diagnostic.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"llm_dispatch/internal/providers"
	"llm_dispatch/internal/storage"
	"llm_dispatch/internal/utils"
)

// SelectedProviderKey is the storage key holding the user's provider
// choice.
const SelectedProviderKey = "selected_ai_model"

// envPrefix matches the build-time environment injection convention of
// the settings surface.
const envPrefix = "VITE_"

// KV is the external persistent key-value collaborator. Get returns
// storage.ErrNotFound when the key has no value.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// EnvFunc looks up a build-time environment value; os.Getenv in
// production.
type EnvFunc func(key string) string

// Store resolves preferences against a KV backend with an environment
// fallback for credentials.
type Store struct {
	kv     KV
	env    EnvFunc
	logger *utils.Logger
}

// NewStore creates a preference store. A nil env falls back to os.Getenv;
// a nil logger gets a default one.
func NewStore(kv KV, env EnvFunc, logger *utils.Logger) *Store {
	if env == nil {
		env = os.Getenv
	}
	if logger == nil {
		logger = utils.NewLogger("prefs")
	}
	return &Store{kv: kv, env: env, logger: logger}
}

// EnvKeyFor returns the environment fallback name for a credential key,
// e.g. "gemini_api_key" -> "VITE_GEMINI_API_KEY".
func EnvKeyFor(credentialKey string) string {
	return envPrefix + strings.ToUpper(credentialKey)
}

// Credential resolves the API key for id: persistent storage first, then
// the environment fallback. The second return is false when neither
// source has a value. Storage failures are logged and treated as absent.
func (s *Store) Credential(ctx context.Context, id providers.ProviderID) (string, bool) {
	cfg, ok := providers.Lookup(id)
	if !ok {
		return "", false
	}

	value, err := s.kv.Get(ctx, cfg.CredentialKey)
	if err == nil && value != "" {
		return value, true
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("credential lookup failed, falling back to environment",
			"provider", id, "error", err)
	}

	if envValue := s.env(EnvKeyFor(cfg.CredentialKey)); envValue != "" {
		return envValue, true
	}
	return "", false
}

// SelectedProvider returns the persisted provider choice, or the default
// when the stored value is absent, unrecognized, or unreadable. This
// never fails.
func (s *Store) SelectedProvider(ctx context.Context) providers.ProviderID {
	value, err := s.kv.Get(ctx, SelectedProviderKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to read selected provider, using default",
				"default", providers.DefaultProvider, "error", err)
		}
		return providers.DefaultProvider
	}

	id, ok := providers.ParseProviderID(value)
	if !ok {
		s.logger.Warn("unrecognized selected provider, using default",
			"value", value, "default", providers.DefaultProvider)
		return providers.DefaultProvider
	}
	return id
}

// SetSelectedProvider persists the provider choice. Best-effort: a
// storage failure is logged, never returned.
func (s *Store) SetSelectedProvider(ctx context.Context, id providers.ProviderID) {
	if err := s.kv.Set(ctx, SelectedProviderKey, string(id)); err != nil {
		s.logger.Warn("failed to persist selected provider",
			"provider", id, "error", err)
	}
}

// SetCredential persists an API key for id. Unlike the provider
// selection this reports failure, since silently dropping a key the user
// just entered would be worse than surfacing the error.
func (s *Store) SetCredential(ctx context.Context, id providers.ProviderID, value string) error {
	cfg, ok := providers.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown provider %q", id)
	}
	return s.kv.Set(ctx, cfg.CredentialKey, value)
}
