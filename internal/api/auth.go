package api

import (
	"context"
	"net/http"
	"strings"

	"brokerops/client/internal/session"
	userdomain "brokerops/client/internal/user/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

// Login exchanges credentials for a session. The session cookie lands in the
// client's jar; the returned identity is what the server vouched for.
func (c *Client) Login(ctx context.Context, email, password string) (session.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return session.Identity{}, &Error{Kind: KindValidation, Message: "email and password are required"}
	}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return session.Identity{}, err
	}
	c.ResetSessionEpoch()
	return session.Identity{
		ID:    resp.User.ID,
		Email: resp.User.Email,
		Name:  resp.User.Name,
		Role:  userdomain.Role(resp.User.Role),
	}, nil
}

// Logout invalidates the server session. The caller clears the local store
// regardless of the result; a dead server must not pin a local session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}
