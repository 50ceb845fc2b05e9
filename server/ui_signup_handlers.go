package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-intern-portal/forms"
	"github.com/rs/zerolog/log"
)

const signupNotice = "Account created. Please log in."

// SignupPageHandler renders the signup page (GET /signup)
func (s *Server) SignupPageHandler() http.HandlerFunc {
	signupTmpl := mustParseTemplate("signup.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page("Sign up")
		data.Email = r.URL.Query().Get("email")
		data.Error = r.URL.Query().Get("error")
		renderPage(w, signupTmpl, http.StatusOK, data)
	}
}

// SignupSubmissionHandler registers the account (POST /auth/signup). Signing up does not sign
// the user in; success goes to the login page with the email filled in.
func (s *Server) SignupSubmissionHandler() http.HandlerFunc {
	partials := mustParsePartial()

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := forms.Credentials{
			Email:           strings.TrimSpace(r.PostFormValue("email")),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
		}
		fail := func(msg string) {
			s.formError(w, r, partials, RouteSignup, msg, url.Values{"email": {creds.Email}})
		}

		if err := forms.ValidateSignup(creds); err != nil {
			fail(firstFieldError(err))
			return
		}

		result, err := s.store.Signup(r.Context(), creds.Email, creds.Password)
		if err != nil {
			log.Info().Err(err).Str("email", creds.Email).Msg("Signup rejected")
			fail(err.Error())
			return
		}

		notice := strings.TrimSpace(result.Message)
		if notice == "" {
			notice = signupNotice
		}
		log.Info().Str("email", creds.Email).Msg("User signed up")
		redirectSuccess(w, r, RouteLogin+"?"+url.Values{"email": {creds.Email}, "notice": {notice}}.Encode())
	}
}

// ValidatePasswordHandler scores a password for the signup strength meter. htmx gets a
// fragment, anything asking for JSON gets the score.
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	partials := mustParsePartial()

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		password := r.PostFormValue("password")
		score := forms.Strength(password)
		strength := struct {
			Score int    `json:"score"`
			Label string `json:"label"`
		}{score, forms.StrengthLabel(score)}

		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			writeJSON(w, http.StatusOK, strength)
			return
		}

		// Let the page react to the score via an htmx event
		trigger, _ := json.Marshal(map[string]int{"passwordStrength": score})
		w.Header().Set("HX-Trigger", string(trigger))
		renderFragment(w, partials, "password_strength", strength)
	}
}
