package server

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-intern-portal/forms"
	"github.com/rs/zerolog/log"
)

// LoginPageHandler displays the login page (GET /login). A signed-in user is sent on to the
// requested page instead.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")
	loading := s.LoadingHandler()

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		next := safeNext(query.Get("next"))

		snap := s.store.Snapshot()
		if snap.Loading() {
			loading(w, r)
			return
		}
		if snap.Authenticated() {
			redirectSuccess(w, r, next)
			return
		}

		data := s.page("Log in")
		data.Email = query.Get("email")
		data.Error = query.Get("error")
		data.Notice = query.Get("notice")
		if next != RouteHome {
			data.Next = next
		}
		renderPage(w, loginTmpl, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form (POST /auth/login). htmx submissions get
// the error swapped into the form so the inputs keep their values; plain posts are redirected
// back with the error and email.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	partials := mustParsePartial()

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		next := safeNext(r.PostFormValue("next"))
		fail := func(msg string) {
			s.formError(w, r, partials, RouteLogin, msg, url.Values{"email": {email}, "next": {r.PostFormValue("next")}})
		}

		if err := forms.ValidateLogin(forms.Credentials{Email: email, Password: password}); err != nil {
			fail(firstFieldError(err))
			return
		}

		if err := s.store.Login(r.Context(), email, password); err != nil {
			log.Info().Err(err).Str("email", email).Msg("Login rejected")
			fail(err.Error())
			return
		}

		log.Info().Str("email", email).Msg("User logged in")
		redirectSuccess(w, r, next)
	}
}

// LogoutHandler clears the session and returns to the login page. No request reaches the API.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Failed to remove persisted token on logout")
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

// formError reports a failed submission the htmx way (fragment) or the plain way (redirect).
func (s *Server) formError(w http.ResponseWriter, r *http.Request, partials *template.Template, path, msg string, extra url.Values) {
	if isHTMXRequest(r) {
		renderFragment(w, partials, "form_error", PageData{Error: msg})
		return
	}
	redirectWithError(w, r, path, msg, extra)
}

func firstFieldError(err error) string {
	if fe, ok := err.(forms.FieldErrors); ok {
		return fe.First()
	}
	return err.Error()
}
