// Package llmdispatch routes a text prompt to one of several third-party
// LLM HTTP APIs, selected by user preference, and returns the generated
// text. It resolves which provider and model to use, resolves the
// credential, performs the provider-specific HTTP exchange, and
// normalizes failures into a single error type.
//
// Basic usage:
//
//	client, err := llmdispatch.New(config.Load())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	text, err := client.CallAI(ctx, "How do I treat a minor burn?")
package llmdispatch

import (
	"fmt"
	"net/http"

	"llm_dispatch/internal/config"
	"llm_dispatch/internal/dispatch"
	"llm_dispatch/internal/prefs"
	"llm_dispatch/internal/providers"
	"llm_dispatch/internal/storage"
	"llm_dispatch/internal/utils"
)

// Client bundles the preference store and dispatcher behind one handle.
type Client struct {
	*dispatch.Dispatcher

	store  *prefs.Store
	closer interface{ Close() error }
}

// New wires a Client from configuration. The credential/preference
// backend is picked in order: Postgres when DATABASE_URL is set, Redis
// when REDIS_ADDR is set, otherwise an in-process store.
func New(cfg *config.Config) (*Client, error) {
	logLevel := parseLogLevel(cfg.LogLevel)
	logger := utils.NewLogger("llmdispatch", logLevel)

	kv, closer, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	store := prefs.NewStore(kv, nil, logger)
	httpClient := &http.Client{Timeout: cfg.Provider.RequestTimeout}

	dispatcher := dispatch.NewWithCallers(store, map[providers.ProviderID]providers.Caller{
		providers.ProviderGemini:   providers.NewGeminiCaller(httpClient),
		providers.ProviderDeepSeek: providers.NewDeepSeekCaller(httpClient),
		providers.ProviderOpenAI:   providers.NewOpenAICaller(httpClient),
	}, logger)

	return &Client{Dispatcher: dispatcher, store: store, closer: closer}, nil
}

// Store exposes the preference store for settings surfaces that let the
// user pick a provider or enter API keys.
func (c *Client) Store() *prefs.Store {
	return c.store
}

// Close releases the storage backend, if it holds connections.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func newBackend(cfg *config.Config) (prefs.KV, interface{ Close() error }, error) {
	switch {
	case cfg.Database.URL != "":
		enc, err := storage.NewEncryptionFromBase64(cfg.Database.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid credential encryption key: %w", err)
		}
		repo, err := storage.NewCredentialRepository(cfg.Database.URL, enc)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	case cfg.Redis.Address != "":
		kv, err := storage.NewRedisKV(storage.RedisKVConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil
	default:
		return storage.NewMemoryKV(), nil, nil
	}
}

func parseLogLevel(level string) utils.LogLevel {
	switch level {
	case "debug":
		return utils.Debug
	case "info":
		return utils.Info
	case "error":
		return utils.Error
	default:
		return utils.Warning
	}
}
