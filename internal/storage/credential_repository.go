package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// CredentialRecord is a stored per-provider API key. The value column is
// AES-GCM encrypted; Name is the provider's credential key
// (e.g. "gemini_api_key").
type CredentialRecord struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	EncryptedValue string    `db:"encrypted_value"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// CredentialRepository stores provider API keys in Postgres, encrypted at
// rest. It satisfies the same KV contract as RedisKV, so the preference
// store can run against either backend.
type CredentialRepository struct {
	db  *sqlx.DB
	enc *Encryption
}

// NewCredentialRepository opens a Postgres connection and verifies it.
func NewCredentialRepository(databaseURL string, enc *Encryption) (*CredentialRepository, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &CredentialRepository{db: db, enc: enc}, nil
}

// NewCredentialRepositoryFromDB wraps an existing connection.
func NewCredentialRepositoryFromDB(db *sqlx.DB, enc *Encryption) *CredentialRepository {
	return &CredentialRepository{db: db, enc: enc}
}

// Get retrieves and decrypts the credential stored under name, or
// ErrNotFound.
func (r *CredentialRepository) Get(ctx context.Context, name string) (string, error) {
	var record CredentialRecord
	query := `
		SELECT id, name, encrypted_value, created_at, updated_at
		FROM credentials
		WHERE name = $1
	`

	err := r.db.GetContext(ctx, &record, query, name)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credential: %w", err)
	}

	value, err := r.enc.DecryptString(record.EncryptedValue)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential %q: %w", name, err)
	}
	return value, nil
}

// Set encrypts value and upserts it under name.
func (r *CredentialRepository) Set(ctx context.Context, name, value string) error {
	encrypted, err := r.enc.EncryptString(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential %q: %w", name, err)
	}

	query := `
		INSERT INTO credentials (id, name, encrypted_value, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE
		SET encrypted_value = EXCLUDED.encrypted_value, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), name, encrypted); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Delete removes the credential stored under name.
func (r *CredentialRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// Close releases the database connection.
func (r *CredentialRepository) Close() error {
	return r.db.Close()
}
