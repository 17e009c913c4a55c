package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/postkeeper/internal/client/models"
)

// Register creates an account and returns its id.
func (c *Client) Register(ctx context.Context, name, email string, password []byte) (int64, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": name,
		"email":    email,
		"password": string(password),
	})
	if err != nil {
		return 0, err
	}

	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(req, false, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email string, password []byte) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": string(password),
	})
	if err != nil {
		return err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(req, false, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return ErrUnexpected
	}

	c.SetToken(out.Token)
	return nil
}

// Profile returns the logged in user.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := c.do(req, true, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateName renames the logged in user.
func (c *Client) UpdateName(ctx context.Context, name string) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/user/update", map[string]string{"name": name})
	if err != nil {
		return err
	}
	return c.do(req, true, nil)
}
