package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// geminiServer routes requests by model name and records the order in
// which models were tried.
type geminiServer struct {
	statusByModel map[string]int
	textByModel   map[string]string
	calls         []string
}

func (g *geminiServer) handler(w http.ResponseWriter, r *http.Request) {
	// Path shape: /models/{model}:generateContent
	path := strings.TrimPrefix(r.URL.Path, "/models/")
	model := strings.TrimSuffix(path, ":generateContent")
	g.calls = append(g.calls, model)

	status, ok := g.statusByModel[model]
	if !ok {
		status = http.StatusNotFound
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, g.textByModel[model])
}

func newGeminiTestCaller(t *testing.T, srv *geminiServer) *GeminiCaller {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(server.Close)

	caller := NewGeminiCaller(server.Client())
	caller.baseURL = server.URL
	return caller
}

func TestGeminiCaller_FallsThroughRecoverableModels(t *testing.T) {
	cfg, _ := Lookup(ProviderGemini)
	candidates := cfg.CandidateModels

	srv := &geminiServer{
		statusByModel: map[string]int{
			candidates[0]: http.StatusNotFound,
			candidates[1]: http.StatusTooManyRequests,
			candidates[2]: http.StatusOK,
		},
		textByModel: map[string]string{
			candidates[2]: "apply a cold compress",
		},
	}
	caller := newGeminiTestCaller(t, srv)

	text, err := caller.Generate(context.Background(), "minor burn?", "test-key", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "apply a cold compress" {
		t.Errorf("Generate = %q, want text from third candidate", text)
	}
	if len(srv.calls) != 3 {
		t.Fatalf("made %d HTTP calls, want 3: %v", len(srv.calls), srv.calls)
	}
	for i, model := range candidates[:3] {
		if srv.calls[i] != model {
			t.Errorf("call %d hit %q, want %q", i, srv.calls[i], model)
		}
	}
}

func TestGeminiCaller_AllCandidatesExhausted(t *testing.T) {
	cfg, _ := Lookup(ProviderGemini)
	candidates := cfg.CandidateModels

	statusByModel := make(map[string]int, len(candidates))
	for _, model := range candidates {
		statusByModel[model] = http.StatusTooManyRequests
	}
	srv := &geminiServer{statusByModel: statusByModel}
	caller := newGeminiTestCaller(t, srv)

	_, err := caller.Generate(context.Background(), "prompt", "test-key", "")
	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("Generate error = %v, want *Error", err)
	}
	if provErr.Kind != KindAllCandidatesExhausted {
		t.Errorf("Kind = %v, want KindAllCandidatesExhausted", provErr.Kind)
	}
	if len(srv.calls) != len(candidates) {
		t.Errorf("made %d HTTP calls, want %d", len(srv.calls), len(candidates))
	}
}

func TestGeminiCaller_FatalStatusStopsImmediately(t *testing.T) {
	srv := &geminiServer{
		statusByModel: map[string]int{"gemini-pro": http.StatusInternalServerError},
	}
	caller := newGeminiTestCaller(t, srv)

	// Explicit model narrows the candidate list to one.
	_, err := caller.Generate(context.Background(), "prompt", "test-key", "gemini-pro")
	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("Generate error = %v, want *Error", err)
	}
	if provErr.Kind != KindHTTPError {
		t.Errorf("Kind = %v, want KindHTTPError", provErr.Kind)
	}
	if provErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", provErr.Status)
	}
	if len(srv.calls) != 1 {
		t.Errorf("made %d HTTP calls, want exactly 1", len(srv.calls))
	}
}

func TestGeminiCaller_FatalOnFirstOfManyCandidates(t *testing.T) {
	cfg, _ := Lookup(ProviderGemini)
	candidates := cfg.CandidateModels

	srv := &geminiServer{
		statusByModel: map[string]int{candidates[0]: http.StatusForbidden},
	}
	caller := newGeminiTestCaller(t, srv)

	_, err := caller.Generate(context.Background(), "prompt", "test-key", "")
	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("Generate error = %v, want *Error", err)
	}
	if provErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", provErr.Status)
	}
	if len(srv.calls) != 1 {
		t.Errorf("made %d HTTP calls, want 1 (no fallback on fatal status)", len(srv.calls))
	}
}

func TestGeminiCaller_MalformedBodyIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	t.Cleanup(server.Close)

	caller := NewGeminiCaller(server.Client())
	caller.baseURL = server.URL

	_, err := caller.Generate(context.Background(), "prompt", "test-key", "gemini-pro")
	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("Generate error = %v, want *Error", err)
	}
	if provErr.Kind != KindMalformedResponse {
		t.Errorf("Kind = %v, want KindMalformedResponse", provErr.Kind)
	}
}

func TestGeminiCaller_RequestShape(t *testing.T) {
	var captured geminiRequest
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	t.Cleanup(server.Close)

	caller := NewGeminiCaller(server.Client())
	caller.baseURL = server.URL

	if _, err := caller.Generate(context.Background(), "hello", "secret-key", "gemini-pro"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if query != "key=secret-key" {
		t.Errorf("credential query = %q, want key=secret-key", query)
	}
	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 1 ||
		captured.Contents[0].Parts[0].Text != "hello" {
		t.Errorf("prompt not wrapped in contents/parts: %+v", captured.Contents)
	}
	gen := captured.GenerationConfig
	if gen.Temperature != 0.7 || gen.TopK != 40 || gen.TopP != 0.95 || gen.MaxOutputTokens != 2048 {
		t.Errorf("generation config = %+v", gen)
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "structured 404", err: httpError("Gemini", 404, ""), want: true},
		{name: "structured 429", err: httpError("Gemini", 429, ""), want: true},
		{name: "structured 500", err: httpError("Gemini", 500, ""), want: false},
		{name: "malformed response", err: malformedResponseError("Gemini"), want: false},
		{name: "transport error mentioning 429", err: errors.New("request failed: upstream said 429"), want: true},
		{name: "plain transport error", err: errors.New("request failed: connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRecoverable(tt.err); got != tt.want {
				t.Errorf("isRecoverable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
