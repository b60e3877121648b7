package services

import "context"

// LocalStorage is the interface that wraps the persistent client-side key/value mirror.
type LocalStorage interface {
	// Method Get retrieves the value stored under key.
	//
	// If the key is absent, repositories.ErrKeyNotFound will be returned.
	// If some other error occurs during data retrieve, the error will be returned together with empty value.
	Get(ctx context.Context, key string) (string, error)
	// Method Set stores value under key, replacing any previous value.
	//
	// If some error occurs during data write, the error will be returned.
	Set(ctx context.Context, key, value string) error
	// Method Remove deletes key. Removing an absent key is not an error.
	//
	// If some error occurs during data removal, the error will be returned.
	Remove(ctx context.Context, key string) error
}
