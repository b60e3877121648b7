package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/learnsphere/client/internal/config"
	"github.com/learnsphere/client/internal/models"
	"go.uber.org/zap"
)

const googleAuthURL = "https://accounts.google.com/o/oauth2/auth"

// AuthAPI is the interface that wraps the backend authentication calls.
type AuthAPI interface {
	// Method Login checks the credentials with the backend, which sets the session cookie on success.
	//
	// If the credentials are rejected or the backend cannot be reached, the error will be returned together with "nil" value.
	Login(ctx context.Context, credentials models.LoginRequest) (*models.LoginResponse, error)
	// Method Register creates an account and starts its session.
	//
	// Please reference Login method for more information about error values.
	Register(ctx context.Context, registration models.RegisterRequest) (*models.LoginResponse, error)
	// Method OAuthCallback exchanges an identity provider code for a backend session.
	//
	// "role" parameter is only sent for the signup flow.
	// Please reference Login method for more information about error values.
	OAuthCallback(ctx context.Context, flow models.OAuthFlow, code string, role models.Role) (*models.LoginResponse, error)
}

// SessionController is the interface that wraps the session manager operations.
type SessionController interface {
	// Method State returns a snapshot of the session.
	State() models.SessionState
	// Method FetchSession re-derives the session from the backend and reports whether it is authenticated.
	FetchSession(ctx context.Context) bool
	// Method Login confirms a login with the backend and falls back to "candidate" when it cannot.
	Login(ctx context.Context, candidate models.User) models.AuthOutcome
	// Method Logout always clears the session.
	Logout(ctx context.Context) models.AuthOutcome
}

// SessionHandler handles login, signup, OAuth and logout requests
type SessionHandler struct {
	BaseHandler
	api     AuthAPI
	session SessionController
	google  config.GoogleConfig
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(api AuthAPI, session SessionController, google config.GoogleConfig, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: BaseHandler{logger: logger},
		api:         api,
		session:     session,
		google:      google,
	}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/session", h.GetSession)
	r.Post("/login", h.Login)
	r.Post("/signup", h.Signup)
	r.Post("/logout", h.Logout)
	r.Route("/auth/google", func(r chi.Router) {
		r.Get("/url", h.GoogleURL)
		r.Post("/{flow}/callback", h.GoogleCallback)
	})
}

// GetSession handles GET /session
// @Summary Get the current session
// @Description Returns the session snapshot; refresh=true re-checks it with the backend first
// @Router /session [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		h.session.FetchSession(r.Context())
	}

	h.respondJSON(w, http.StatusOK, h.session.State())
}

// Login handles POST /login
// @Summary Login with username and password
// @Router /login [post]
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateLogin(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.api.Login(r.Context(), req)
	if err != nil {
		h.respondBackendError(w, err, "login failed")
		return
	}

	outcome := h.session.Login(r.Context(), models.User{
		DisplayName: resp.Username,
		AvatarURL:   resp.Avatar,
	})
	h.respondJSON(w, http.StatusOK, outcome)
}

// Signup handles POST /signup
// @Summary Create an account and log in
// @Router /signup [post]
func (h *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateRegistration(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.api.Register(r.Context(), req)
	if err != nil {
		h.respondBackendError(w, err, "signup failed")
		return
	}

	name := resp.Username
	if name == "" {
		name = req.Username
	}
	outcome := h.session.Login(r.Context(), models.User{
		DisplayName: name,
		Email:       req.Email,
		AvatarURL:   resp.Avatar,
	})
	h.respondJSON(w, http.StatusCreated, outcome)
}

// Logout handles POST /logout
// @Summary Logout
// @Description The local session is cleared even if the backend cannot be reached
// @Router /logout [post]
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.session.Logout(r.Context()))
}

// GoogleURL handles GET /auth/google/url
// @Summary Build the Google consent URL
// @Param flow query string false "login or signup, default: login"
// @Param role query string false "STUDENT or TEACHER, signup only"
// @Router /auth/google/url [get]
func (h *SessionHandler) GoogleURL(w http.ResponseWriter, r *http.Request) {
	if h.google.ClientID == "" || h.google.RedirectURI == "" {
		h.respondError(w, http.StatusServiceUnavailable, "google sign-in is not configured")
		return
	}

	flow, err := parseFlow(r.URL.Query().Get("flow"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var role models.Role
	if flow == models.OAuthFlowSignup {
		role, err = parseRole(r.URL.Query().Get("role"))
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"url": h.consentURL(flow, role)})
}

// GoogleCallback handles POST /auth/google/{flow}/callback
// @Summary Finish a Google login or signup
// @Param code query string true "Authorization code"
// @Param state query string false "Role carried through the consent screen (signup only)"
// @Router /auth/google/{flow}/callback [post]
func (h *SessionHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	flow, err := parseFlow(chi.URLParam(r, "flow"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.respondError(w, http.StatusBadRequest, "code parameter is required")
		return
	}

	var role models.Role
	if flow == models.OAuthFlowSignup {
		rawRole := r.URL.Query().Get("role")
		if rawRole == "" {
			rawRole = r.URL.Query().Get("state")
		}
		role, err = parseRole(rawRole)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	resp, err := h.api.OAuthCallback(r.Context(), flow, code, role)
	if err != nil {
		h.respondBackendError(w, err, "google authentication failed")
		return
	}

	name := resp.Name
	if name == "" {
		name = resp.Username
	}
	outcome := h.session.Login(r.Context(), models.User{
		DisplayName: name,
		Email:       resp.Email,
		AvatarURL:   resp.Avatar,
	})
	h.respondJSON(w, http.StatusOK, outcome)
}

func (h *SessionHandler) consentURL(flow models.OAuthFlow, role models.Role) string {
	var b strings.Builder
	b.WriteString(googleAuthURL)
	b.WriteString("?client_id=")
	b.WriteString(url.QueryEscape(h.google.ClientID))
	b.WriteString("&redirect_uri=")
	b.WriteString(url.QueryEscape(h.google.RedirectURI + "/" + string(flow)))
	b.WriteString("&response_type=code&scope=email%20profile&access_type=offline&prompt=consent")
	if role != "" {
		b.WriteString("&state=")
		b.WriteString(url.QueryEscape(string(role)))
	}
	return b.String()
}

func parseFlow(raw string) (models.OAuthFlow, error) {
	switch models.OAuthFlow(raw) {
	case "", models.OAuthFlowLogin:
		return models.OAuthFlowLogin, nil
	case models.OAuthFlowSignup:
		return models.OAuthFlowSignup, nil
	}
	return "", errInvalidFlow
}
