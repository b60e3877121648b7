package models

// SessionState is a snapshot of the client's belief about the current user.
// CurrentUser is non-nil iff IsAuthenticated is true.
type SessionState struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	CurrentUser     *User `json:"currentUser,omitempty"`
}

// AuthResult is the result of a session changing operation
type AuthResult string

// AuthResult constants
const (
	// AuthResultAuthenticated means the backend confirmed the session
	AuthResultAuthenticated AuthResult = "authenticated"
	// AuthResultDegraded means the backend check failed and caller supplied data was stored
	AuthResultDegraded AuthResult = "degraded"
	// AuthResultLoggedOut means the session was cleared
	AuthResultLoggedOut AuthResult = "logged_out"
	// AuthResultCancelled means the caller went away before the answer was applied
	AuthResultCancelled AuthResult = "cancelled"
)

// AuthOutcome is returned by login and logout instead of navigating.
// Redirect is the route the calling view is expected to go to.
type AuthOutcome struct {
	Result   AuthResult   `json:"result"`
	Redirect string       `json:"redirect"`
	Session  SessionState `json:"session"`
}

// Success reports whether the backend confirmed the session
func (o AuthOutcome) Success() bool {
	return o.Result == AuthResultAuthenticated
}
