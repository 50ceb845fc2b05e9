package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-intern-portal/internal/config"
	"github.com/jrsteele09/go-intern-portal/resume"
	"github.com/jrsteele09/go-intern-portal/session"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	store  *session.Store
	widget *resume.Widget
}

// New builds the HTTP surface over an already constructed session store and upload widget.
// The store's bootstrap is started by the caller.
func New(config config.Config, store *session.Store, widget *resume.Widget) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("[Server New] session store is required")
	}
	if widget == nil {
		return nil, fmt.Errorf("[Server New] resume widget is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: config,
		store:  store,
		widget: widget,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func logError(method, path, errorMsg string) {
	log.Error().Msgf("[%-19s] %s %s", colouredMethod(method), path, Red+errorMsg+ResetColor)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
