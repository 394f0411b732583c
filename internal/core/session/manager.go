// Package session owns the client-side authentication lifecycle: login,
// logout, silent token refresh, and rehydration from the credential store.
// The Manager is the single source of truth for session state and the only
// writer of the credential store.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vitacare/clinic-ops/internal/core/domain"
	"github.com/vitacare/clinic-ops/internal/core/ports"
)

// Manager drives the session state machine:
//
//	uninitialized → rehydrating → {authenticated, anonymous}
//	authenticated ↔ refreshing
//	authenticated → anonymous (logout, expired refresh)
//
// All methods are safe for concurrent use. State mutation and change
// notification happen under one lock, so a reader woken by OnChange never
// observes state older than the notification that woke it.
type Manager struct {
	api   ports.AuthAPI
	store ports.CredentialStore
	log   zerolog.Logger

	mu       sync.Mutex
	sess     domain.Session
	onChange func(domain.Session)

	// epoch invalidates in-flight refreshes: logout (or a fresh login)
	// bumps it, and a refresh that started under an older epoch discards
	// its result instead of resurrecting an ended session.
	epoch   uint64
	refresh *refreshCall
}

// refreshCall is a single-flight record: concurrent refresh callers await
// the same outcome instead of racing a second request against a
// rotating-refresh-token server.
type refreshCall struct {
	done chan struct{}
	err  error
}

// NewManager creates a Manager in the uninitialized state. The session
// reports Loading until Initialize resolves, so guards render a placeholder
// instead of flashing a login redirect during rehydration.
func NewManager(api ports.AuthAPI, store ports.CredentialStore, log zerolog.Logger) *Manager {
	return &Manager{
		api:   api,
		store: store,
		log:   log,
		sess:  domain.Session{Loading: true},
	}
}

// OnChange registers a hook invoked with a session snapshot after every
// state transition. It runs synchronously under the manager's lock and must
// not call back into the Manager. Set before first use.
func (m *Manager) OnChange(fn func(domain.Session)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Snapshot returns a copy of the current session. The embedded user record
// is copied too, so callers can hold it freely.
func (m *Manager) Snapshot() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.sess)
}

// Initialize rehydrates the session from the credential store, exactly once
// per process start. A persisted record is adopted optimistically and then
// validated against the auth service; a rejected access token gets exactly
// one refresh attempt before the session is cleared. Ending up anonymous is
// a normal outcome, not an error.
func (m *Manager) Initialize(ctx context.Context) {
	creds, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("credential store unreadable, starting anonymous")
	}
	if err != nil || creds == nil || !creds.Complete() {
		if creds != nil && creds.Partial() {
			m.log.Warn().Msg("partial credential record found, discarding")
		}
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.log.Warn().Err(cerr).Msg("clearing credential store failed")
		}
		m.update(func(s *domain.Session) { *s = domain.Session{} })
		return
	}

	// Optimistic adoption; Loading stays set until validation resolves.
	m.update(func(s *domain.Session) {
		*s = domain.Session{
			User:         creds.User,
			AccessToken:  creds.AccessToken,
			RefreshToken: creds.RefreshToken,
			Loading:      true,
		}
	})

	if err := m.FetchCurrentUser(ctx); err == nil {
		m.update(func(s *domain.Session) { s.Loading = false })
		return
	}

	if err := m.RefreshSession(ctx); err != nil {
		// The stored credentials could not be validated; never remain in an
		// authenticated-looking state with them.
		m.clearAll(ctx)
		return
	}
	m.update(func(s *domain.Session) { s.Loading = false })
}

// Login authenticates against the auth service. On success the session and
// the credential store both hold the new triple; on failure the existing
// session is left untouched and the error is generic — it never reveals
// whether the username exists.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.update(func(s *domain.Session) { s.Loading = true })

	creds, err := m.api.Login(ctx, username, password)
	if err != nil {
		m.update(func(s *domain.Session) { s.Loading = false })
		return err
	}

	m.mu.Lock()
	m.epoch++
	m.sess = domain.Session{
		User:         creds.User,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	m.notifyLocked()
	m.mu.Unlock()

	if err := m.store.Save(ctx, creds); err != nil {
		m.log.Warn().Err(err).Msg("persisting credentials failed, session will not survive restart")
	}
	return nil
}

// Logout ends the session. Local invalidation is authoritative: the
// in-memory session and the credential store are cleared unconditionally,
// then the server is informed best-effort. Safe to call repeatedly, with or
// without an active session.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	refreshToken := m.sess.RefreshToken
	m.epoch++
	m.sess = domain.Session{}
	m.notifyLocked()
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("clearing credential store failed")
	}
	if refreshToken != "" {
		if err := m.api.Logout(ctx, refreshToken); err != nil {
			m.log.Debug().Err(err).Msg("server-side logout failed, local session already cleared")
		}
	}
}

// RefreshSession exchanges the refresh token for a new token pair, leaving
// the user record untouched. Concurrent callers share a single in-flight
// request. A rejected refresh token clears the session entirely and returns
// ErrSessionExpired; a transient network failure leaves the session in
// place so the caller can retry.
func (m *Manager) RefreshSession(ctx context.Context) error {
	m.mu.Lock()
	if call := m.refresh; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	refreshToken := m.sess.RefreshToken
	if refreshToken == "" {
		m.mu.Unlock()
		return domain.ErrNoSession
	}
	call := &refreshCall{done: make(chan struct{})}
	m.refresh = call
	epoch := m.epoch
	m.mu.Unlock()

	access, refresh, err := m.api.Refresh(ctx, refreshToken)

	m.mu.Lock()
	m.refresh = nil
	stale := m.epoch != epoch
	var creds *domain.Credentials
	switch {
	case stale:
		// The session ended while the refresh was in flight. Its result,
		// success or not, must not resurrect anything.
		call.err = domain.ErrNoSession
	case err != nil:
		call.err = err
		if !isRetryable(err) {
			m.sess = domain.Session{}
			m.notifyLocked()
		}
	default:
		m.sess.AccessToken = access
		m.sess.RefreshToken = refresh
		creds = &domain.Credentials{
			AccessToken:  access,
			RefreshToken: refresh,
			User:         m.sess.User,
		}
		m.notifyLocked()
	}
	m.mu.Unlock()

	switch {
	case stale:
	case call.err != nil:
		if !isRetryable(call.err) {
			if cerr := m.store.Clear(ctx); cerr != nil {
				m.log.Warn().Err(cerr).Msg("clearing credential store failed")
			}
		}
	default:
		if serr := m.store.Save(ctx, creds); serr != nil {
			m.log.Warn().Err(serr).Msg("persisting refreshed tokens failed")
		}
	}

	close(call.done)
	return call.err
}

// FetchCurrentUser revalidates the access token and replaces the session's
// user record with the server's view, converging server-side role or name
// changes without a re-login. On failure nothing is mutated; the caller
// decides whether to attempt a refresh.
func (m *Manager) FetchCurrentUser(ctx context.Context) error {
	m.mu.Lock()
	token := m.sess.AccessToken
	m.mu.Unlock()
	if token == "" {
		return domain.ErrNoSession
	}

	user, err := m.api.CurrentUser(ctx, token)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.sess.AccessToken != token {
		// Session replaced or cleared while the call was in flight.
		m.mu.Unlock()
		return nil
	}
	m.sess.User = user
	creds := &domain.Credentials{
		AccessToken:  m.sess.AccessToken,
		RefreshToken: m.sess.RefreshToken,
		User:         user,
	}
	m.notifyLocked()
	m.mu.Unlock()

	if err := m.store.Save(ctx, creds); err != nil {
		m.log.Warn().Err(err).Msg("persisting refreshed user record failed")
	}
	return nil
}

// update applies fn to the session under the lock and notifies.
func (m *Manager) update(fn func(*domain.Session)) {
	m.mu.Lock()
	fn(&m.sess)
	m.notifyLocked()
	m.mu.Unlock()
}

// clearAll drops the in-memory session and the persisted record.
func (m *Manager) clearAll(ctx context.Context) {
	m.update(func(s *domain.Session) { *s = domain.Session{} })
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("clearing credential store failed")
	}
}

func (m *Manager) notifyLocked() {
	if m.onChange != nil {
		m.onChange(copySession(m.sess))
	}
}

func copySession(s domain.Session) domain.Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// isRetryable reports whether the failure is transient rather than an auth
// rejection. Retryable refresh failures leave the session alone.
func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrNetworkFailure)
}
