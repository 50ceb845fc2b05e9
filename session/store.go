package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-intern-portal/credentials"
	perrors "github.com/jrsteele09/go-intern-portal/internal/errors"
	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/jrsteele09/go-intern-portal/token"
	"github.com/rs/zerolog/log"
)

const DefaultCredentialKey = "token"

var ErrBootstrapStarted = perrors.ErrBootstrapStarted

// Backend is the part of the API the session needs.
type Backend interface {
	VerifyToken(ctx context.Context, accessToken string) (portalapi.Identity, error)
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, email, password string) (portalapi.SignupResult, error)
}

type State int

const (
	StateUninitialized State = iota
	StateVerifying
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateVerifying:
		return "verifying"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a copy of the session at one instant.
type Snapshot struct {
	State     State
	Identity  *portalapi.Identity
	Guest     bool
	ExpiresAt time.Time // from the token's exp claim, display only
}

// Loading is true until the bootstrap verification has resolved.
func (s Snapshot) Loading() bool {
	return s.State != StateReady
}

func (s Snapshot) Authenticated() bool {
	return !s.Loading() && s.Identity != nil
}

type Store struct {
	api   Backend
	creds credentials.Repo
	key   string

	// persistMu serialises writes to the credential slot. It is taken before mu and is the
	// only lock held across slot I/O, so Snapshot never waits on storage.
	persistMu sync.Mutex

	mu        sync.RWMutex
	state     State
	identity  *portalapi.Identity
	guest     bool
	expiresAt time.Time
	// generation counts login/logout mutations so a bootstrap result that arrives after one of
	// them does not overwrite it. It only changes while persistMu is held.
	generation uint64
	ready      chan struct{}
}

type Option func(*Store)

// WithCredentialKey changes the name of the slot that holds the bearer token.
func WithCredentialKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func New(api Backend, creds credentials.Repo, opts ...Option) *Store {
	s := &Store{
		api:   api,
		creds: creds,
		key:   DefaultCredentialKey,
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:     s.state,
		Guest:     s.guest,
		ExpiresAt: s.expiresAt,
	}
	if s.identity != nil {
		identity := *s.identity
		snap.Identity = &identity
	}
	return snap
}

// Ready is closed once the bootstrap has resolved.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until the bootstrap has resolved or ctx is done.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login exchanges the credentials for a bearer token, persists it and sets the identity to the
// identifier. On failure the session is left as it was and the error's message is the server's
// reason or "Login failed".
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	accessToken, err := s.api.Login(ctx, identifier, secret)
	if err != nil {
		return portalapi.WithMessage(err, portalapi.LoginFallbackMessage, portalapi.LoginMessageSources...)
	}
	if accessToken == "" {
		return portalapi.WithMessage(perrors.ErrMalformedReply, portalapi.LoginFallbackMessage)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if err := s.creds.Set(ctx, s.key, accessToken); err != nil {
		log.Err(err).Msg("Failed to persist access token")
		return portalapi.WithMessage(err, portalapi.LoginFallbackMessage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.identity = &portalapi.Identity{Email: identifier}
	s.expiresAt = expiryOf(accessToken)
	return nil
}

// Signup registers the account and returns the server payload. It never changes the session.
func (s *Store) Signup(ctx context.Context, identifier, secret string) (portalapi.SignupResult, error) {
	result, err := s.api.Signup(ctx, identifier, secret)
	if err != nil {
		return portalapi.SignupResult{}, portalapi.WithMessage(err, portalapi.SignupFallbackMessage, portalapi.SignupMessageSources...)
	}
	return result, nil
}

// Logout removes the persisted token and clears the identity. No request is made. The identity
// is cleared even when the slot could not be deleted.
func (s *Store) Logout(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.generation++
	s.identity = nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if err := s.creds.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("[session Logout] %w", err)
	}
	return nil
}

// EnterAsGuest only sets the guest flag. It grants no access to protected routes.
func (s *Store) EnterAsGuest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guest = true
}

func expiryOf(accessToken string) time.Time {
	claims, err := token.Peek(accessToken)
	if err != nil {
		return time.Time{}
	}
	return claims.ExpiresAt
}

func isNotFound(err error) bool {
	return errors.Is(err, credentials.ErrNotFound)
}
