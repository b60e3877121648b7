package backend

import (
	"context"
	"net/http"

	"github.com/learnsphere/client/internal/models"
)

// Profile returns the profile of the current user
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	profile := &models.Profile{}
	err := c.do(ctx, request{
		endpoint: "profile",
		method:   http.MethodGet,
		path:     "/User/userdata",
	}, profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile sends the non-empty profile fields
func (c *Client) UpdateProfile(ctx context.Context, update models.UpdateProfileRequest) error {
	fields := map[string]string{}
	if update.Name != "" {
		fields["name"] = update.Name
	}
	if update.Email != "" {
		fields["email"] = update.Email
	}
	if update.Phone != "" {
		fields["phone"] = update.Phone
	}
	if update.Address != "" {
		fields["address"] = update.Address
	}

	body, contentType, err := multipartBody(fields, "", "", nil)
	if err != nil {
		return err
	}

	return c.do(ctx, request{
		endpoint:    "update_profile",
		method:      http.MethodPut,
		path:        "/User/profileupdate",
		body:        body,
		contentType: contentType,
	}, nil)
}

// UpdatePassword changes the password of the current user
func (c *Client) UpdatePassword(ctx context.Context, update models.UpdatePasswordRequest) error {
	body, contentType, err := multipartBody(map[string]string{
		"currentPassword": update.CurrentPassword,
		"newPassword":     update.NewPassword,
	}, "", "", nil)
	if err != nil {
		return err
	}

	return c.do(ctx, request{
		endpoint:    "update_password",
		method:      http.MethodPut,
		path:        "/User/password",
		body:        body,
		contentType: contentType,
	}, nil)
}
