package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// GuestEntryHandler marks the session as a guest (POST /auth/guest). Guests are still sent to
// login by protected routes.
func (s *Server) GuestEntryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.store.EnterAsGuest()
		log.Debug().Msg("Continuing as guest")
		redirectSuccess(w, r, RouteGuest)
	}
}

func (s *Server) GuestPageHandler() http.HandlerFunc {
	guestTmpl := mustParseTemplate("guest.html")

	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, guestTmpl, http.StatusOK, s.page("Guest"))
	}
}
