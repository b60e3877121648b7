package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// sqlStorageRepository implements local storage on top of a SQL table.
// The same queries run on sqlite3 and mysql.
type sqlStorageRepository struct {
	db *sql.DB
}

// NewSQLStorageRepository creates a new SQL backed local storage repository
func NewSQLStorageRepository(db *sql.DB) *sqlStorageRepository {
	return &sqlStorageRepository{
		db: db,
	}
}

// Get retrieves the value stored under key
func (r *sqlStorageRepository) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT storage_value
		FROM local_storage
		WHERE storage_key = ?
		LIMIT 1
	`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get storage value: %w", err)
	}

	return value, nil
}

// Set stores value under key, replacing any previous value
func (r *sqlStorageRepository) Set(ctx context.Context, key, value string) error {
	query := `
		REPLACE INTO local_storage (storage_key, storage_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set storage value: %w", err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (r *sqlStorageRepository) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM local_storage WHERE storage_key = ?`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to remove storage value: %w", err)
	}
	return nil
}
