package server

import (
	"net/http"

	"github.com/jrsteele09/go-intern-portal/dates"
)

// HomeHandler renders the protected home page with the résumé widget.
func (s *Server) HomeHandler() http.HandlerFunc {
	homeTmpl := mustParseTemplate("home.html")

	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		data := s.page("Home")
		data.Identity = &identity
		data.ExpiresOn = dates.FormatTime(s.store.Snapshot().ExpiresAt)
		data.Accept = s.widget.Accept()

		state := s.widget.State()
		data.Busy = state.Busy
		if state.Last != nil {
			data.Upload = newUploadView(*state.Last)
		}

		w.Header().Set("Cache-Control", "no-store")
		renderPage(w, homeTmpl, http.StatusOK, data)
	}
}

// LoadingHandler is the neutral placeholder shown until the startup verification resolves.
// It refreshes itself; htmx and non-GET requests get a 503 with Retry-After instead.
func (s *Server) LoadingHandler() http.HandlerFunc {
	loadingTmpl := mustParseTemplate("loading.html")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || isHTMXRequest(r) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Loading…", http.StatusServiceUnavailable)
			return
		}
		renderPage(w, loadingTmpl, http.StatusOK, s.page("Loading"))
	}
}
