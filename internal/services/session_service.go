package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/learnsphere/client/internal/config"
	"github.com/learnsphere/client/internal/models"
	"github.com/learnsphere/client/internal/repositories"
	"go.uber.org/zap"
)

// Redirect hints returned with an AuthOutcome
const (
	RedirectHome  = "/"
	RedirectLogin = "/login"
)

// SessionAPI is the interface that wraps the backend calls of the session manager.
type SessionAPI interface {
	// Method Session returns the user bound to the session cookie.
	//
	// Any non-OK status, transport failure or malformed body is returned as an error.
	Session(ctx context.Context) (*models.User, error)
	// Method Logout ends the backend session.
	//
	// If the backend cannot be reached or refuses, the error will be returned.
	Logout(ctx context.Context) error
}

// SessionRecorder records session check results
type SessionRecorder interface {
	RecordSessionCheck(authenticated bool)
}

// SessionOptions configures a SessionManager
type SessionOptions struct {
	PlaceholderAvatar string
	// StalePolicy is config.StalePolicyLastResponse or config.StalePolicyDiscardStale
	StalePolicy string
	Recorder    SessionRecorder
}

// checkStatus tells how a session check ended
type checkStatus int

const (
	checkApplied checkStatus = iota
	checkCancelled
	checkStale
)

// SessionManager is the single authoritative in-memory view of who is logged in.
// State is only written by FetchSession, Login and Logout; every write is applied
// to memory and local storage under one lock.
type SessionManager struct {
	api      SessionAPI
	storage  LocalStorage
	logger   *zap.Logger
	avatar   string
	policy   string
	recorder SessionRecorder

	mu    sync.RWMutex
	state models.SessionState
	// seq numbers every state changing call; applied is the newest one written to state
	seq     uint64
	applied uint64
}

// NewSessionManager creates a logged-out session manager. Call Init to load the cached session.
func NewSessionManager(api SessionAPI, storage LocalStorage, logger *zap.Logger, opts SessionOptions) *SessionManager {
	avatar := opts.PlaceholderAvatar
	if avatar == "" {
		avatar = config.DefaultPlaceholderAvatar
	}
	policy := opts.StalePolicy
	if policy == "" {
		policy = config.StalePolicyLastResponse
	}

	return &SessionManager{
		api:      api,
		storage:  storage,
		logger:   logger,
		avatar:   avatar,
		policy:   policy,
		recorder: opts.Recorder,
	}
}

// Init loads the cached session from local storage.
// A corrupted cached user is logged and dropped so the session starts logged out.
func (m *SessionManager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = models.SessionState{}

	flag, err := m.storage.Get(ctx, repositories.KeyIsLoggedIn)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cached session flag: %w", err)
	}
	if flag != "true" {
		return nil
	}

	raw, err := m.storage.Get(ctx, repositories.KeyUser)
	if err != nil && !errors.Is(err, repositories.ErrKeyNotFound) {
		return fmt.Errorf("failed to read cached user: %w", err)
	}

	user, parseErr := parseCachedUser(raw)
	if err != nil || parseErr != nil {
		m.logger.Warn("discarding corrupted cached session", zap.Error(errors.Join(err, parseErr)))
		m.clearStorage(ctx)
		return nil
	}

	m.state = models.SessionState{IsAuthenticated: true, CurrentUser: user}
	return nil
}

func parseCachedUser(raw string) (*models.User, error) {
	user := &models.User{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}
	if !validUser(user) {
		return nil, fmt.Errorf("cached user has neither name nor email")
	}
	return user, nil
}

// State returns a snapshot of the session
func (m *SessionManager) State() models.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return copyState(m.state)
}

// FetchSession re-derives the session from the backend and reports whether it is authenticated.
// Any failure clears the session; no error is ever returned. A cancelled ctx leaves the state untouched.
func (m *SessionManager) FetchSession(ctx context.Context) bool {
	status, ok := m.check(ctx, nil)
	if status == checkStale {
		return m.State().IsAuthenticated
	}
	return ok
}

// Login confirms a login or signup with the backend.
// If the backend confirms the session, the outcome is authenticated. Otherwise candidate is
// stored as a degraded session and the caller is expected to route back to the login screen.
func (m *SessionManager) Login(ctx context.Context, candidate models.User) models.AuthOutcome {
	status, ok := m.check(ctx, &candidate)

	switch status {
	case checkCancelled:
		return models.AuthOutcome{Result: models.AuthResultCancelled, Session: m.State()}
	case checkStale:
		state := m.State()
		if state.IsAuthenticated {
			return models.AuthOutcome{Result: models.AuthResultAuthenticated, Redirect: RedirectHome, Session: state}
		}
		return models.AuthOutcome{Result: models.AuthResultLoggedOut, Redirect: RedirectLogin, Session: state}
	}

	if ok {
		return models.AuthOutcome{Result: models.AuthResultAuthenticated, Redirect: RedirectHome, Session: m.State()}
	}
	return models.AuthOutcome{Result: models.AuthResultDegraded, Redirect: RedirectLogin, Session: m.State()}
}

// Logout ends the backend session best-effort and always clears the local session
func (m *SessionManager) Logout(ctx context.Context) models.AuthOutcome {
	seq := m.nextSeq()

	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("backend logout failed", zap.Error(err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.markApplied(seq)
	m.state = models.SessionState{}
	m.clearStorage(context.WithoutCancel(ctx))

	return models.AuthOutcome{Result: models.AuthResultLoggedOut, Redirect: RedirectLogin, Session: copyState(m.state)}
}

// check asks the backend for the session and applies the answer.
// On failure the session is cleared, or replaced by fallback when one is given.
func (m *SessionManager) check(ctx context.Context, fallback *models.User) (checkStatus, bool) {
	seq := m.nextSeq()

	user, err := m.api.Session(ctx)
	if err == nil && !validUser(user) {
		err = fmt.Errorf("session response has neither name nor email")
	}

	if ctx.Err() != nil {
		m.logger.Debug("session check cancelled, state left untouched", zap.Error(ctx.Err()))
		return checkCancelled, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.policy == config.StalePolicyDiscardStale && seq < m.applied {
		m.logger.Debug("discarding stale session response",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", m.applied),
		)
		return checkStale, false
	}
	m.markApplied(seq)

	// Storage writes complete even if the caller goes away mid-apply
	storeCtx := context.WithoutCancel(ctx)

	if err != nil {
		m.record(false)
		m.logger.Info("session check failed", zap.Error(err))
		if fallback != nil {
			m.setUser(storeCtx, m.withAvatar(*fallback))
			return checkApplied, false
		}
		m.state = models.SessionState{}
		m.clearStorage(storeCtx)
		return checkApplied, false
	}

	m.record(true)
	m.setUser(storeCtx, m.withAvatar(*user))
	return checkApplied, true
}

// setUser marks the session authenticated as user and writes the cache. Caller holds m.mu.
func (m *SessionManager) setUser(ctx context.Context, user models.User) {
	m.state = models.SessionState{IsAuthenticated: true, CurrentUser: &user}

	data, err := json.Marshal(user)
	if err != nil {
		m.logger.Error("failed to encode session user", zap.Error(err))
		return
	}
	if err := m.storage.Set(ctx, repositories.KeyIsLoggedIn, "true"); err != nil {
		m.logger.Error("failed to cache session flag", zap.Error(err))
	}
	if err := m.storage.Set(ctx, repositories.KeyUser, string(data)); err != nil {
		m.logger.Error("failed to cache session user", zap.Error(err))
	}
}

// clearStorage removes the cached session. Caller holds m.mu.
func (m *SessionManager) clearStorage(ctx context.Context) {
	for _, key := range []string{repositories.KeyIsLoggedIn, repositories.KeyUser} {
		if err := m.storage.Remove(ctx, key); err != nil {
			m.logger.Error("failed to remove cached session entry", zap.String("key", key), zap.Error(err))
		}
	}
}

func (m *SessionManager) withAvatar(user models.User) models.User {
	if user.AvatarURL == "" {
		user.AvatarURL = m.avatar
	}
	return user
}

func (m *SessionManager) nextSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	return m.seq
}

// markApplied records seq as applied. Caller holds m.mu.
func (m *SessionManager) markApplied(seq uint64) {
	if seq > m.applied {
		m.applied = seq
	}
}

func (m *SessionManager) record(authenticated bool) {
	if m.recorder != nil {
		m.recorder.RecordSessionCheck(authenticated)
	}
}

func validUser(user *models.User) bool {
	return user != nil && (user.DisplayName != "" || user.Email != "")
}

func copyState(state models.SessionState) models.SessionState {
	if state.CurrentUser == nil {
		return models.SessionState{}
	}
	user := *state.CurrentUser
	return models.SessionState{IsAuthenticated: true, CurrentUser: &user}
}
