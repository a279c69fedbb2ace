package api

import (
	"context"
	"net/http"

	"github.com/tnslabs/waconsole/internal/models"
)

type rawUser struct {
	ID    flexString `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  string     `json:"role"`
	// Some deployments report the role under user_type.
	UserType string `json:"user_type"`
}

func (r rawUser) toModel() models.User {
	return models.User{
		ID:    r.ID.String(),
		Name:  r.Name,
		Email: r.Email,
		Role:  firstNonEmpty(r.Role, r.UserType),
	}
}

// Login authenticates against login.php and returns the user profile the
// backend asserts, including its role claim.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	var out struct {
		envelope
		User rawUser `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "login.php", nil, body, &out); err != nil {
		return models.User{}, err
	}
	if !out.OK {
		return models.User{}, envelopeError("login.php", out.envelope)
	}
	return out.User.toModel(), nil
}

// CurrentUser fetches the profile tied to the active backend session.
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var out struct {
		envelope
		User rawUser `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "getCurrentUser.php", nil, nil, &out); err != nil {
		return models.User{}, err
	}
	if !out.OK {
		return models.User{}, envelopeError("getCurrentUser.php", out.envelope)
	}
	return out.User.toModel(), nil
}
