package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/learnsphere/client/internal/repositories"
	"go.uber.org/zap"
)

// defaultAutoplay is used until a valid stored preference is loaded
const defaultAutoplay = true

// PreferenceStore keeps the autoplay preference in memory and writes it through to local storage
type PreferenceStore struct {
	mu       sync.RWMutex
	storage  LocalStorage
	logger   *zap.Logger
	autoplay bool
}

// NewPreferenceStore creates a preference store with the default preference
func NewPreferenceStore(storage LocalStorage, logger *zap.Logger) *PreferenceStore {
	return &PreferenceStore{
		storage:  storage,
		logger:   logger,
		autoplay: defaultAutoplay,
	}
}

// Load reads the stored autoplay preference.
// A missing or malformed value keeps the default; only storage failures are returned.
func (p *PreferenceStore) Load(ctx context.Context) error {
	raw, err := p.storage.Get(ctx, repositories.KeyAutoPlayEnabled)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		p.set(defaultAutoplay)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load autoplay preference: %w", err)
	}

	var enabled bool
	if err := json.Unmarshal([]byte(raw), &enabled); err != nil {
		p.logger.Warn("malformed autoplay preference, using default",
			zap.String("value", raw),
			zap.Error(err),
		)
		p.set(defaultAutoplay)
		return nil
	}

	p.set(enabled)
	return nil
}

// Autoplay returns the current autoplay preference
func (p *PreferenceStore) Autoplay() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.autoplay
}

// SetAutoplay persists the autoplay preference as a JSON boolean.
// The in-memory value only changes once the write succeeded.
func (p *PreferenceStore) SetAutoplay(ctx context.Context, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	value, _ := json.Marshal(enabled)
	if err := p.storage.Set(ctx, repositories.KeyAutoPlayEnabled, string(value)); err != nil {
		return fmt.Errorf("failed to save autoplay preference: %w", err)
	}

	p.autoplay = enabled
	return nil
}

func (p *PreferenceStore) set(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.autoplay = enabled
}
