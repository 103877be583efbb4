package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"brokerops/client/internal/api"
	"brokerops/client/internal/policy"
	"brokerops/client/internal/session"
)

// ErrNotPermitted is returned when the caller's role has no admin capability.
var ErrNotPermitted = errors.New("audit: not permitted")

// ErrNotAuthenticated is returned when no identity is established.
var ErrNotAuthenticated = errors.New("audit: not authenticated")

// Lister fetches pages of the audit trail from the server.
type Lister interface {
	ListAuditLogs(ctx context.Context, q api.AuditQuery) (*api.AuditPage, error)
}

// Reader is a read-only paginated view over the server-recorded audit trail.
// It never writes entries; it exists so an administrator can verify that the
// actions taken elsewhere in the application were actually recorded.
//
// Changing any filter resets the reader to page 1, so a narrowed result set
// can never be viewed at a page number it no longer has.
type Reader struct {
	api      Lister
	sessions *session.Store
	policy   policy.Evaluator

	mu    sync.Mutex
	query api.AuditQuery
	last  *api.AuditPage
}

// NewReader returns a Reader positioned at page 1 with no filters.
func NewReader(apiClient Lister, sessions *session.Store, p policy.Evaluator) *Reader {
	return &Reader{
		api:      apiClient,
		sessions: sessions,
		policy:   p,
		query:    api.AuditQuery{Page: 1},
	}
}

// SetSearch replaces the free-text filter and resets to page 1.
func (r *Reader) SetSearch(search string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.query.Search == search {
		return
	}
	r.query.Search = search
	r.query.Page = 1
}

// SetAction replaces the action-kind filter and resets to page 1. An empty
// kind clears the filter.
func (r *Reader) SetAction(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.query.Action == kind {
		return
	}
	r.query.Action = kind
	r.query.Page = 1
}

// SetDateRange replaces the date-range filter and resets to page 1. Zero
// times clear the corresponding bound.
func (r *Reader) SetDateRange(from, to time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.query.From.Equal(from) && r.query.To.Equal(to) {
		return
	}
	r.query.From, r.query.To = from, to
	r.query.Page = 1
}

// SetPerPage sets the page size. Changing it re-shapes the pagination, so it
// resets to page 1 like a filter change.
func (r *Reader) SetPerPage(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || r.query.PerPage == n {
		return
	}
	r.query.PerPage = n
	r.query.Page = 1
}

// SetPage moves to the given page. Pages below 1 clamp to 1; pages beyond
// the last known page clamp to it.
func (r *Reader) SetPage(page int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if r.last != nil && r.last.Meta.LastPage > 0 && page > r.last.Meta.LastPage {
		page = r.last.Meta.LastPage
	}
	r.query.Page = page
}

// NextPage advances one page, bounded by the last fetched page count.
func (r *Reader) NextPage() { r.SetPage(r.page() + 1) }

// PrevPage moves back one page, bounded at 1.
func (r *Reader) PrevPage() { r.SetPage(r.page() - 1) }

func (r *Reader) page() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query.Page
}

// Query returns the filters and page the next Load will use.
func (r *Reader) Query() api.AuditQuery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.query
}

// Load fetches the current page. Admin capability is required; the audit
// trail is part of the oversight area. On success the page is retained for
// pagination bounds, so a failed load keeps the previous rows available.
func (r *Reader) Load(ctx context.Context) (*api.AuditPage, error) {
	status, ident := r.sessions.Snapshot()
	if status != session.StatusAuthenticated {
		return nil, ErrNotAuthenticated
	}
	if !r.policy.Capabilities(ctx, ident.Role).ViewAdminScreens {
		return nil, ErrNotPermitted
	}

	q := r.Query()
	page, err := r.api.ListAuditLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.last = page
	// The server may report fewer pages than requested when rows were
	// deleted upstream; snap to its answer.
	if page.Meta.CurrentPage > 0 {
		r.query.Page = page.Meta.CurrentPage
	}
	r.mu.Unlock()
	return page, nil
}
