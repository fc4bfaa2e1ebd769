package api

import (
	"context"

	"boardeasy/internal/models"
)

// AuthResponse is what login and register return on success.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var out AuthResponse
	if err := c.post(ctx, "auth_login", "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account; the backend signs the user in on success.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, "auth_register", "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile updates the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req models.ProfileUpdate) (*models.User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var out models.User
	if err := c.put(ctx, "profile_update", "/api/users/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.put(ctx, "password_change", "/api/users/change-password", body, nil)
}
