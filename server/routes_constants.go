package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// DefaultCallbackPath is where the provider redirects back to after a
	// sign-in; overridable via AD_CALLBACK_PATH.
	DefaultCallbackPath = "/connect/get_token"

	// API Routes
	RouteMe = "/me"
)
