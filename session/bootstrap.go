package session

import (
	"context"
	"time"

	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/rs/zerolog/log"
)

// Bootstrap runs the one-time startup verification synchronously. A second call, or a call
// after Start, returns ErrBootstrapStarted.
func (s *Store) Bootstrap(ctx context.Context) error {
	generation, err := s.begin()
	if err != nil {
		return err
	}
	s.verify(ctx, generation)
	return nil
}

// Start claims the bootstrap before returning and runs the verification in the background, so
// nothing can observe the session before the bootstrap has begun.
func (s *Store) Start(ctx context.Context) error {
	generation, err := s.begin()
	if err != nil {
		return err
	}
	go s.verify(ctx, generation)
	return nil
}

func (s *Store) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUninitialized {
		return 0, ErrBootstrapStarted
	}
	s.state = StateVerifying
	return s.generation, nil
}

func (s *Store) verify(ctx context.Context, generation uint64) {
	accessToken, err := s.creds.Get(ctx, s.key)
	if err != nil {
		if !isNotFound(err) {
			log.Err(err).Msg("Failed to read persisted token")
		}
		s.resolve(ctx, generation, nil, "", false)
		return
	}

	started := time.Now()
	identity, err := s.api.VerifyToken(ctx, accessToken)
	if err != nil {
		log.Info().Err(err).Int("status", portalapi.StatusCode(err)).Dur("took", time.Since(started)).
			Msg("Persisted token rejected, clearing it")
		s.resolve(ctx, generation, nil, "", true)
		return
	}

	log.Info().Str("identity", identity.Identifier()).Dur("took", time.Since(started)).Msg("Session restored")
	s.resolve(ctx, generation, &identity, accessToken, false)
}

// resolve publishes the bootstrap result and flips the state to ready in one step. If a login
// or logout happened meanwhile their result stands and only the state changes.
func (s *Store) resolve(ctx context.Context, generation uint64, identity *portalapi.Identity, accessToken string, clearToken bool) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	current := s.generation == generation
	s.mu.RUnlock()

	if current && clearToken {
		if err := s.creds.Delete(ctx, s.key); err != nil {
			log.Err(err).Msg("Failed to remove rejected token")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current {
		s.identity = identity
		if identity != nil {
			s.expiresAt = expiryOf(accessToken)
		}
	}
	s.state = StateReady
	close(s.ready)
}
