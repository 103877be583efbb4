package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	auditdomain "brokerops/client/internal/audit/domain"
)

// AuditQuery filters the audit log listing.
type AuditQuery struct {
	Search  string
	Action  string
	From    time.Time
	To      time.Time
	Page    int
	PerPage int
}

// PageMeta is the server's pagination envelope for audit listings.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Entries []auditdomain.Entry
	Meta    PageMeta
}

type auditEntryPayload struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	UserName    string    `json:"user_name"`
	Action      string    `json:"action"`
	SubjectType string    `json:"subject_type"`
	SubjectID   int       `json:"subject_id"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}

type auditListResponse struct {
	Data []auditEntryPayload `json:"data"`
	Meta PageMeta            `json:"meta"`
}

// ListAuditLogs fetches one page of the audit trail.
func (c *Client) ListAuditLogs(ctx context.Context, q AuditQuery) (*AuditPage, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Action != "" {
		query.Set("action", q.Action)
	}
	if !q.From.IsZero() {
		query.Set("date_from", q.From.Format("2006-01-02"))
	}
	if !q.To.IsZero() {
		query.Set("date_to", q.To.Format("2006-01-02"))
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))
	if q.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(q.PerPage))
	}

	var resp auditListResponse
	if err := c.do(ctx, http.MethodGet, "/audit-logs", query, nil, &resp); err != nil {
		return nil, err
	}
	out := &AuditPage{Meta: resp.Meta, Entries: make([]auditdomain.Entry, 0, len(resp.Data))}
	for _, e := range resp.Data {
		out.Entries = append(out.Entries, auditdomain.Entry{
			ID:          e.ID,
			UserID:      e.UserID,
			UserName:    e.UserName,
			Action:      e.Action,
			SubjectType: e.SubjectType,
			SubjectID:   e.SubjectID,
			Description: e.Description,
			IP:          e.IPAddress,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}
