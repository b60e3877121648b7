package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/learnsphere/client/internal/models"
)

// Session returns the user bound to the session cookie
func (c *Client) Session(ctx context.Context) (*models.User, error) {
	user := &models.User{}
	err := c.do(ctx, request{
		endpoint: "session",
		method:   http.MethodGet,
		path:     "/Public/session",
	}, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login posts password credentials; the backend sets the session cookie on success
func (c *Client) Login(ctx context.Context, credentials models.LoginRequest) (*models.LoginResponse, error) {
	req, err := jsonRequest("login", http.MethodPost, "/Public/login", credentials)
	if err != nil {
		return nil, err
	}

	resp := &models.LoginResponse{}
	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Register creates a new account; the backend sets the session cookie on success
func (c *Client) Register(ctx context.Context, registration models.RegisterRequest) (*models.LoginResponse, error) {
	req, err := jsonRequest("register", http.MethodPost, "/Public/register", registration)
	if err != nil {
		return nil, err
	}

	resp := &models.LoginResponse{}
	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout ends the backend session
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{
		endpoint: "logout",
		method:   http.MethodPost,
		path:     "/Public/logout",
	}, nil)
}

// OAuthCallback forwards the identity provider code to the backend.
// role is only sent for the signup flow.
func (c *Client) OAuthCallback(ctx context.Context, flow models.OAuthFlow, code string, role models.Role) (*models.LoginResponse, error) {
	if flow != models.OAuthFlowLogin && flow != models.OAuthFlowSignup {
		return nil, fmt.Errorf("unknown oauth flow: %s", flow)
	}

	query := url.Values{"code": {code}}
	if flow == models.OAuthFlowSignup && role != "" {
		query.Set("role", string(role))
	}

	resp := &models.LoginResponse{}
	err := c.do(ctx, request{
		endpoint: "oauth_" + string(flow),
		method:   http.MethodPost,
		path:     fmt.Sprintf("/auth/google/%s/callback", flow),
		query:    query,
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
