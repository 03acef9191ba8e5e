// Package dispatch routes a prompt to the provider the user selected,
// after resolving its credential from the preference store.
package dispatch

import (
	"context"

	"github.com/google/uuid"

	"llm_dispatch/internal/prefs"
	"llm_dispatch/internal/providers"
	"llm_dispatch/internal/utils"
)

// Dispatcher resolves provider and credential, then delegates to the
// matching caller. Callers pick their own default/candidate models; the
// dispatcher never overrides the model.
type Dispatcher struct {
	store   *prefs.Store
	callers map[providers.ProviderID]providers.Caller
	logger  *utils.Logger
}

// New creates a dispatcher with the standard caller set. A nil logger
// gets a default one.
func New(store *prefs.Store, logger *utils.Logger) *Dispatcher {
	return NewWithCallers(store, map[providers.ProviderID]providers.Caller{
		providers.ProviderGemini:   providers.NewGeminiCaller(nil),
		providers.ProviderDeepSeek: providers.NewDeepSeekCaller(nil),
		providers.ProviderOpenAI:   providers.NewOpenAICaller(nil),
	}, logger)
}

// NewWithCallers creates a dispatcher with an explicit caller set; tests
// use this to substitute fakes.
func NewWithCallers(store *prefs.Store, callers map[providers.ProviderID]providers.Caller, logger *utils.Logger) *Dispatcher {
	if logger == nil {
		logger = utils.NewLogger("dispatch")
	}
	return &Dispatcher{store: store, callers: callers, logger: logger}
}

// CallAI sends prompt to the explicitly given provider, or to the
// persisted selection when none is given, and returns the generated
// text. A missing credential fails before any network call; caller
// failures propagate unchanged.
func (d *Dispatcher) CallAI(ctx context.Context, prompt string, provider ...providers.ProviderID) (string, error) {
	var id providers.ProviderID
	if len(provider) > 0 {
		id = provider[0]
	} else {
		id = d.store.SelectedProvider(ctx)
	}

	cfg, ok := providers.Lookup(id)
	if !ok {
		return "", providers.NewUnsupportedProviderError(id)
	}

	caller, ok := d.callers[id]
	if !ok {
		return "", providers.NewUnsupportedProviderError(id)
	}

	credential, ok := d.store.Credential(ctx, id)
	if !ok {
		return "", providers.NewMissingCredentialError(cfg.DisplayName)
	}

	requestID := uuid.New().String()
	d.logger.Info("dispatching prompt", "request_id", requestID, "provider", id)

	text, err := caller.Generate(ctx, prompt, credential, "")
	if err != nil {
		d.logger.Warn("provider call failed", "request_id", requestID, "provider", id, "error", err)
		return "", err
	}

	d.logger.Debug("provider call succeeded", "request_id", requestID, "provider", id)
	return text, nil
}
