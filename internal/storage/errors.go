package storage

import "errors"

var (
	// ErrNotFound is returned by KV backends when a key has no value.
	ErrNotFound = errors.New("key not found")

	// ErrCredentialNotFound is returned when a credential row is absent.
	ErrCredentialNotFound = errors.New("credential not found")
)
