package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Protected pages
	RouteHome         = "/"
	RouteResumeUpload = "/resume/upload"

	// Auth pages
	RouteLogin  = "/login"
	RouteSignup = "/signup"
	RouteGuest  = "/guest"

	// Auth form targets
	RouteAuthLogin  = "/auth/login"
	RouteAuthSignup = "/auth/signup"
	RouteAuthGuest  = "/auth/guest"
	RouteAuthLogout = "/auth/logout"

	// API Routes
	RouteAPISession          = "/api/session"
	RouteAPIValidatePassword = "/api/validate-password"
	RouteHealth              = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
