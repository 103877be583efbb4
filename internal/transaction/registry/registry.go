// Package registry is the client-side cache of transaction listings, keyed by
// query. It never patches cached pages after a mutation; it invalidates them
// and re-fetches, which tolerates any arrival order of stale responses.
package registry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"brokerops/client/internal/api"
	txdomain "brokerops/client/internal/transaction/domain"
)

// Key identifies one cached listing.
type Key struct {
	Type   txdomain.Type // empty means both variants
	Status txdomain.Status
	Search string
	Page   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%d", k.Type, k.Status, k.Search, k.Page)
}

// Fetcher is the listing surface the registry needs from the API client.
type Fetcher interface {
	ListTransactions(ctx context.Context, q api.TransactionQuery) (*api.TransactionPage, error)
}

type cachedPage struct {
	page *api.TransactionPage
	gen  uint64
}

// Registry caches listing pages. A fetch for a given key is in flight at most
// once; concurrent readers share its result. Invalidation is per transaction
// type and generation-based, so a response to a superseded fetch is never
// stored.
type Registry struct {
	fetcher Fetcher

	mu      sync.Mutex
	entries map[Key]cachedPage
	genImp  uint64
	genExp  uint64

	sf singleflight.Group
}

// New returns an empty registry reading through fetcher.
func New(fetcher Fetcher) *Registry {
	return &Registry{fetcher: fetcher, entries: map[Key]cachedPage{}}
}

// genFor snapshots the generation a key depends on. Keys without a type
// filter depend on both variants and go stale when either does.
func (r *Registry) genFor(t txdomain.Type) uint64 {
	switch t {
	case txdomain.TypeImport:
		return r.genImp
	case txdomain.TypeExport:
		return r.genExp
	default:
		return r.genImp + r.genExp
	}
}

// Get returns the cached page for key, fetching it if absent or invalidated.
// Concurrent Gets for the same key are coalesced into one request.
func (r *Registry) Get(ctx context.Context, key Key) (*api.TransactionPage, error) {
	r.mu.Lock()
	gen := r.genFor(key.Type)
	if ent, ok := r.entries[key]; ok && ent.gen == gen {
		r.mu.Unlock()
		return ent.page, nil
	}
	r.mu.Unlock()

	flightKey := fmt.Sprintf("%s@%d", key, gen)
	v, err, _ := r.sf.Do(flightKey, func() (interface{}, error) {
		page, err := r.fetcher.ListTransactions(ctx, api.TransactionQuery{
			Type:   key.Type,
			Status: key.Status,
			Search: key.Search,
			Page:   key.Page,
		})
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		// Only cache if no invalidation raced the fetch; the data itself is
		// still fresh enough to hand to this caller either way.
		if r.genFor(key.Type) == gen {
			r.entries[key] = cachedPage{page: page, gen: gen}
		}
		r.mu.Unlock()
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*api.TransactionPage), nil
}

// Invalidate marks every cached listing that can contain transactions of
// type t as stale. The next Get re-fetches instead of serving the stale page.
func (r *Registry) Invalidate(t txdomain.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch t {
	case txdomain.TypeExport:
		r.genExp++
	default:
		r.genImp++
	}
}

// Narrow applies the client-side search/status predicate to an already
// loaded page, for when the server did not narrow the listing itself. The
// page's server-reported totals are intentionally not recomputed.
func Narrow(page *api.TransactionPage, status txdomain.Status, search string) []txdomain.Transaction {
	out := make([]txdomain.Transaction, 0, len(page.Data))
	for i := range page.Data {
		tx := &page.Data[i]
		if status != "" && tx.Status != status {
			continue
		}
		if !tx.MatchesSearch(search) {
			continue
		}
		out = append(out, *tx)
	}
	return out
}
