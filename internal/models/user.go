package models

// Role represents the platform role of a user
type Role string

// Role constants
const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
)

// User is the current user record held by the session.
// JSON names match the record the backend returns from the session endpoint
// and the copy cached in local storage.
type User struct {
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	AvatarURL   string `json:"avatar"`
}

// IsTeacher reports whether the user may use instructor tooling
func (u *User) IsTeacher() bool {
	return u != nil && u.Role == RoleTeacher
}

// LoginRequest represents a password login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the backend answer to a login, signup or OAuth callback.
// Password login fills Username, OAuth fills Name and Email.
type LoginResponse struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Gender   string `json:"gender,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     Role   `json:"role"`
}

// OAuthFlow is the OAuth callback flow of the identity provider
type OAuthFlow string

// OAuthFlow constants
const (
	OAuthFlowLogin  OAuthFlow = "login"
	OAuthFlowSignup OAuthFlow = "signup"
)
