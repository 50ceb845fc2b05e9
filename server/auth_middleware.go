package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/jrsteele09/go-intern-portal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyIdentity stores the signed-in identity on protected routes
	ContextKeyIdentity ContextKey = "identity"
	// ContextKeyRequestID stores the request id set by LoggingMiddleware
	ContextKeyRequestID ContextKey = "request_id"
)

// RequireSession guards a route with the session decision, evaluated on every request so a
// logout takes effect immediately. While the startup verification is pending the placeholder
// page is served instead of the route or a redirect.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		loading := s.LoadingHandler()

		return func(w http.ResponseWriter, r *http.Request) {
			snap := s.store.Snapshot()

			switch session.Decide(snap) {
			case session.DecisionAllow:
				ctx := context.WithValue(r.Context(), ContextKeyIdentity, *snap.Identity)
				next(w, r.WithContext(ctx))
			case session.DecisionRedirect:
				redirectSuccess(w, r, loginURL(returnPath(r)))
			default:
				loading(w, r)
			}
		}
	}
}

// IdentityFromContext returns the identity RequireSession stored on the request.
func IdentityFromContext(ctx context.Context) (portalapi.Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(portalapi.Identity)
	return identity, ok
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// returnPath is where to go after login. Only a GET can be replayed, so other methods return
// home.
func returnPath(r *http.Request) string {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return RouteHome
	}
	return r.URL.RequestURI()
}

// loginURL is the login page, remembering where to return to.
func loginURL(returnTo string) string {
	if returnTo == "" || returnTo == RouteHome {
		return RouteLogin
	}
	return RouteLogin + "?" + url.Values{"next": {returnTo}}.Encode()
}
