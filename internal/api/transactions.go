package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	txdomain "brokerops/client/internal/transaction/domain"
	userdomain "brokerops/client/internal/user/domain"
)

// TransactionQuery narrows a transaction listing. Zero values mean "no filter"
// (Page 0 is treated as page 1).
type TransactionQuery struct {
	Type   txdomain.Type
	Status txdomain.Status
	Search string
	Page   int
}

// TransactionPage is one page of transactions plus the server-reported
// totals. Counts shown to the user must come from here, never from a locally
// filtered subset.
type TransactionPage struct {
	Data         []txdomain.Transaction
	Total        int
	ImportsCount int
	ExportsCount int
}

type transactionPayload struct {
	ID              int        `json:"id"`
	Type            string     `json:"type"`
	ReferenceNumber string     `json:"reference_number"`
	BLNumber        string     `json:"bl_number"`
	ClientID        int        `json:"client_id"`
	ClientName      string     `json:"client_name"`
	Status          string     `json:"status"`
	AssignedUserID  int        `json:"assigned_user_id"`
	AssignedTo      string     `json:"assigned_to"`
	SelectiveColor  string     `json:"selective_color,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ArrivalDate     *time.Time `json:"arrival_date,omitempty"`
	Importer        string     `json:"importer,omitempty"`
	Vessel          string     `json:"vessel,omitempty"`
	Destination     string     `json:"destination,omitempty"`
}

func (p *transactionPayload) toDomain() txdomain.Transaction {
	tx := txdomain.Transaction{
		ID:              p.ID,
		Type:            txdomain.Type(p.Type),
		ReferenceNumber: p.ReferenceNumber,
		BLNumber:        p.BLNumber,
		ClientID:        p.ClientID,
		ClientName:      p.ClientName,
		Status:          txdomain.Status(p.Status),
		AssignedUserID:  p.AssignedUserID,
		AssignedTo:      p.AssignedTo,
		SelectiveColor:  p.SelectiveColor,
		CreatedAt:       p.CreatedAt,
		Importer:        p.Importer,
		Vessel:          p.Vessel,
		Destination:     p.Destination,
	}
	if p.ArrivalDate != nil {
		tx.ArrivalDate = *p.ArrivalDate
	}
	return tx
}

type transactionListResponse struct {
	Data         []transactionPayload `json:"data"`
	Total        int                  `json:"total"`
	ImportsCount int                  `json:"imports_count"`
	ExportsCount int                  `json:"exports_count"`
}

// ListTransactions fetches one page of transactions matching q.
func (c *Client) ListTransactions(ctx context.Context, q TransactionQuery) (*TransactionPage, error) {
	query := url.Values{}
	if q.Type != "" {
		query.Set("type", string(q.Type))
	}
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))

	var resp transactionListResponse
	if err := c.do(ctx, http.MethodGet, "/transactions", query, nil, &resp); err != nil {
		return nil, err
	}
	out := &TransactionPage{
		Data:         make([]txdomain.Transaction, 0, len(resp.Data)),
		Total:        resp.Total,
		ImportsCount: resp.ImportsCount,
		ExportsCount: resp.ExportsCount,
	}
	for i := range resp.Data {
		out.Data = append(out.Data, resp.Data[i].toDomain())
	}
	return out, nil
}

// typeSegment maps the type discriminator onto the REST path segment.
func typeSegment(t txdomain.Type) string {
	if t == txdomain.TypeExport {
		return "exports"
	}
	return "imports"
}

// AssignResult is the server's echo after a reassignment. AssignedTo is the
// canonical display name; the client must store this, not the locally
// selected option.
type AssignResult struct {
	Message        string `json:"message"`
	AssignedTo     string `json:"assigned_to"`
	AssignedUserID int    `json:"assigned_user_id"`
}

// AssignTransaction sets the assigned user of the transaction.
func (c *Client) AssignTransaction(ctx context.Context, t txdomain.Type, id, assignedUserID int) (*AssignResult, error) {
	path := fmt.Sprintf("/transactions/%s/%d/assign", typeSegment(t), id)
	body := map[string]int{"assigned_user_id": assignedUserID}
	var out AssignResult
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatusResult is the server's echo after a status change.
type StatusResult struct {
	Message string          `json:"message"`
	Status  txdomain.Status `json:"status"`
}

// SetTransactionStatus sets the lifecycle status of the transaction.
func (c *Client) SetTransactionStatus(ctx context.Context, t txdomain.Type, id int, status txdomain.Status) (*StatusResult, error) {
	path := fmt.Sprintf("/transactions/%s/%d/status", typeSegment(t), id)
	body := map[string]string{"status": string(status)}
	var out StatusResult
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelTransaction cancels the transaction with the given reason. The reason
// is transmitted verbatim; callers validate it first.
func (c *Client) CancelTransaction(ctx context.Context, t txdomain.Type, id int, reason string) (*StatusResult, error) {
	path := fmt.Sprintf("/transactions/%s/%d/cancel", typeSegment(t), id)
	body := map[string]string{"reason": reason}
	var out StatusResult
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type encoderListResponse struct {
	Data []struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"data"`
}

// ListEncoders fetches the currently assignable users: active accounts with
// an operational role. Never cached; assigning to a deactivated account must
// be impossible even right after a deactivation.
func (c *Client) ListEncoders(ctx context.Context) ([]userdomain.User, error) {
	var resp encoderListResponse
	if err := c.do(ctx, http.MethodGet, "/transactions/encoders", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]userdomain.User, 0, len(resp.Data))
	for _, u := range resp.Data {
		out = append(out, userdomain.User{
			ID:     u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Role:   userdomain.Role(u.Role),
			Active: true, // endpoint contract: only active operational users are listed
		})
	}
	return out, nil
}
