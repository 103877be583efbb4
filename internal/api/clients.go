package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	clientdomain "brokerops/client/internal/client/domain"
)

// ClientQuery filters the client (shipper/importer party) listing.
type ClientQuery struct {
	Search string
	Type   clientdomain.PartyType
	Page   int
}

// ClientPage is one page of client parties plus the server-reported total.
type ClientPage struct {
	Data  []clientdomain.Client
	Total int
}

type clientPayload struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Country       string    `json:"country"`
	ContactPerson string    `json:"contact_person"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

type clientListResponse struct {
	Data  []clientPayload `json:"data"`
	Total int             `json:"total"`
}

// ListClients fetches one page of client parties.
func (c *Client) ListClients(ctx context.Context, q ClientQuery) (*ClientPage, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Type != "" {
		query.Set("type", string(q.Type))
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))

	var resp clientListResponse
	if err := c.do(ctx, http.MethodGet, "/clients", query, nil, &resp); err != nil {
		return nil, err
	}
	out := &ClientPage{Total: resp.Total, Data: make([]clientdomain.Client, 0, len(resp.Data))}
	for _, p := range resp.Data {
		out.Data = append(out.Data, clientdomain.Client{
			ID:            p.ID,
			Name:          p.Name,
			Type:          clientdomain.PartyType(p.Type),
			Country:       p.Country,
			ContactPerson: p.ContactPerson,
			ContactEmail:  p.ContactEmail,
			ContactPhone:  p.ContactPhone,
			Active:        p.Active,
			CreatedAt:     p.CreatedAt,
		})
	}
	return out, nil
}
