package providers

import "fmt"

// ErrorKind classifies dispatcher failures.
type ErrorKind int

const (
	// KindMissingCredential means no API key is configured for the
	// selected provider; no network call was attempted.
	KindMissingCredential ErrorKind = iota

	// KindUnsupportedProvider means the provider id is outside the
	// closed enumeration.
	KindUnsupportedProvider

	// KindHTTPError means the provider returned a non-2xx status.
	KindHTTPError

	// KindMalformedResponse means the provider returned 2xx but the
	// body did not have the expected shape.
	KindMalformedResponse

	// KindAllCandidatesExhausted means every model in the fallback
	// list was recoverably rejected (Gemini only).
	KindAllCandidatesExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindUnsupportedProvider:
		return "unsupported_provider"
	case KindHTTPError:
		return "http_error"
	case KindMalformedResponse:
		return "malformed_response"
	case KindAllCandidatesExhausted:
		return "all_candidates_exhausted"
	}
	return "unknown"
}

// Error is the single error type surfaced by callers and the dispatcher.
// Status is the HTTP status code when Kind is KindHTTPError, 0 otherwise.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsRecoverableStatus reports whether an HTTP status is recoverable for
// per-model fallback: 404 (model not found/unsupported) and 429
// (quota/rate limit).
func IsRecoverableStatus(status int) bool {
	return status == 404 || status == 429
}

// NewMissingCredentialError reports that no API key is configured for
// the provider named displayName.
func NewMissingCredentialError(displayName string) *Error {
	return &Error{
		Kind:    KindMissingCredential,
		Message: fmt.Sprintf("Please configure your %s API key in settings", displayName),
	}
}

// NewUnsupportedProviderError reports a provider id outside the closed
// set.
func NewUnsupportedProviderError(id ProviderID) *Error {
	return &Error{
		Kind:    KindUnsupportedProvider,
		Message: fmt.Sprintf("unsupported provider: %s", id),
	}
}

func httpError(displayName string, status int, vendorMessage string) *Error {
	msg := vendorMessage
	if msg == "" {
		msg = fmt.Sprintf("%s API error: %d", displayName, status)
	}
	return &Error{
		Kind:    KindHTTPError,
		Status:  status,
		Message: msg,
	}
}

func malformedResponseError(displayName string) *Error {
	return &Error{
		Kind:    KindMalformedResponse,
		Message: fmt.Sprintf("unexpected response from %s API", displayName),
	}
}

func allCandidatesExhaustedError(displayName string) *Error {
	return &Error{
		Kind:    KindAllCandidatesExhausted,
		Message: fmt.Sprintf("all %s models are currently unavailable, please try again later", displayName),
	}
}
