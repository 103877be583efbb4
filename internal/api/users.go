package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	userdomain "brokerops/client/internal/user/domain"
)

type userPayload struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *userPayload) toDomain() userdomain.User {
	return userdomain.User{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      userdomain.Role(p.Role),
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// UserQuery filters the admin user listing.
type UserQuery struct {
	Search string
	Role   userdomain.Role
	Page   int
}

// UserPage is one page of users plus the server-reported total.
type UserPage struct {
	Data  []userdomain.User
	Total int
}

type userListResponse struct {
	Data  []userPayload `json:"data"`
	Total int           `json:"total"`
}

// ListUsers fetches one page of user accounts. Admin-only on the server.
func (c *Client) ListUsers(ctx context.Context, q UserQuery) (*UserPage, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Role != "" {
		query.Set("role", string(q.Role))
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))

	var resp userListResponse
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &resp); err != nil {
		return nil, err
	}
	out := &UserPage{Total: resp.Total, Data: make([]userdomain.User, 0, len(resp.Data))}
	for i := range resp.Data {
		out.Data = append(out.Data, resp.Data[i].toDomain())
	}
	return out, nil
}

// NewUser is the admin create/edit payload.
type NewUser struct {
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Role     userdomain.Role `json:"role"`
	Password string          `json:"password,omitempty"`
}

type userResponse struct {
	Data userPayload `json:"data"`
}

// CreateUser creates a user account. Admin-only.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (*userdomain.User, error) {
	if u.Email == "" || u.Name == "" || !u.Role.Known() {
		return nil, &Error{Kind: KindValidation, Message: "email, name, and a known role are required"}
	}
	var resp userResponse
	if err := c.do(ctx, http.MethodPost, "/users", nil, u, &resp); err != nil {
		return nil, err
	}
	out := resp.Data.toDomain()
	return &out, nil
}

// UpdateUser edits a user account. Admin-only.
func (c *Client) UpdateUser(ctx context.Context, id int, u NewUser) (*userdomain.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d", id), nil, u, &resp); err != nil {
		return nil, err
	}
	out := resp.Data.toDomain()
	return &out, nil
}

// SetUserActive activates or deactivates a user account. Accounts are never
// hard-deleted, only deactivated.
func (c *Client) SetUserActive(ctx context.Context, id int, active bool) error {
	verb := "deactivate"
	if active {
		verb = "activate"
	}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/%s", id, verb), nil, nil, nil)
}
