// Package session holds the portal's belief about whether, and as whom, the user is
// authenticated.
//
// A Store is built once at startup and shared by reference. Bootstrap reconciles the
// persisted bearer token with the API exactly once (StateUninitialized → StateVerifying →
// StateReady); until it resolves the session is loading and Decide defers every protected
// render. Login, Signup, Logout and EnterAsGuest are the only other ways the state changes.
package session
