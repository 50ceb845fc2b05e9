package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/rs/zerolog/log"
)

type sessionResponse struct {
	State         string              `json:"state"`
	Loading       bool                `json:"loading"`
	Authenticated bool                `json:"authenticated"`
	Guest         bool                `json:"guest"`
	Identity      *portalapi.Identity `json:"identity,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
}

// SessionSnapshotHandler reports the current session as JSON (GET /api/session).
func (s *Server) SessionSnapshotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.store.Snapshot()
		resp := sessionResponse{
			State:         snap.State.String(),
			Loading:       snap.Loading(),
			Authenticated: snap.Authenticated(),
			Guest:         snap.Guest,
			Identity:      snap.Identity,
		}
		if !snap.ExpiresAt.IsZero() {
			resp.ExpiresAt = &snap.ExpiresAt
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"session": s.store.Snapshot().State.String(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}
