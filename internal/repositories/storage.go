package repositories

import "errors"

// Local storage keys shared by the session manager and the preference store
const (
	KeyIsLoggedIn      = "isLoggedIn"
	KeyUser            = "user"
	KeyAutoPlayEnabled = "autoPlayEnabled"
)

// ErrKeyNotFound is returned when a key is absent from local storage
var ErrKeyNotFound = errors.New("key not found")
