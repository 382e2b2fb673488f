package auth

import (
	"sync"

	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

// TokenStore provides thread-safe storage of the CSRF token and of the
// pending authentication that produces it.
type TokenStore struct {
	mutex sync.RWMutex
	// token is nil while absent; an empty string is a valid token.
	token *string
	// lastKnown survives Begin so headers keep the most recent token.
	lastKnown *string
	pending   *Pending
	fetched   bool
}

// NewTokenStore creates a store. With an initial token the pending
// authentication is already resolved, otherwise it is rejected with noToken.
func NewTokenStore(initial *string, noToken error) *TokenStore {
	store := &TokenStore{}

	if initial != nil {
		token := *initial
		store.token = &token
		store.lastKnown = &token
		store.pending = Resolved(token)

		return store
	}

	store.pending = Rejected(noToken)

	return store
}

// Token returns the current token and whether one is present.
func (s *TokenStore) Token() (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.token == nil {
		return "", false
	}

	return *s.token, true
}

// LastKnown returns the most recent token ever stored, even while a new
// fetch has cleared the current one.
func (s *TokenStore) LastKnown() (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.lastKnown == nil {
		return "", false
	}

	return *s.lastKnown, true
}

// Pending returns the current pending authentication. It is never nil.
func (s *TokenStore) Pending() *Pending {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.pending
}

// Begin clears the token and installs a fresh pending authentication, which
// it returns. Callers that read Pending afterwards wait on this one.
func (s *TokenStore) Begin() *Pending {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil
	s.fetched = true
	s.pending = NewPending()

	return s.pending
}

// Complete stores token when it is non-nil and settles p in one step:
// resolved with the current token if one is present, rejected with failure
// otherwise. A token stored here always resolves p, even when another fetch
// has begun meanwhile. Without a token of its own, p sees whatever a
// concurrent fetch left behind; the last write wins.
func (s *TokenStore) Complete(p *Pending, token *string, failure error) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if token != nil {
		value := *token
		s.token = &value
		s.lastKnown = &value
	}

	if s.token == nil {
		p.Reject(failure)

		return "", failure
	}

	current := *s.token
	p.Resolve(current)

	return current, nil
}

// State derives the authentication state.
func (s *TokenStore) State() superset.AuthState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	switch {
	case !s.pending.Settled():
		return superset.StatePending
	case s.token != nil:
		return superset.StateAuthenticated
	case !s.fetched:
		return superset.StateUnconfigured
	default:
		return superset.StateFailed
	}
}
