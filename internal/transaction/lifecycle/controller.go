// Package lifecycle mediates every mutating action on a transaction: status
// override, reassignment, and cancellation. It mirrors the server's rules so
// an illegal action is refused before a request is made, applies optimistic
// updates using only server-echoed fields, and rolls back on failure.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"brokerops/client/internal/api"
	"brokerops/client/internal/policy"
	"brokerops/client/internal/session"
	"brokerops/client/internal/telemetry"
	txdomain "brokerops/client/internal/transaction/domain"
	"brokerops/client/internal/transaction/registry"
	userdomain "brokerops/client/internal/user/domain"
)

// Sentinel errors; the CLI boundary maps them to user-facing messages.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrNotPermitted        = errors.New("action not permitted for this role")
	ErrActionInFlight      = errors.New("a prior action on this record is still in flight")
	ErrSameStatus          = errors.New("transaction already has that status")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrAssigneeUnavailable = errors.New("selected assignee is not an active operational user")
	ErrCannotCancel        = errors.New("only pending or in-progress transactions can be cancelled")
)

// APIClient is the mutation and directory surface the controller needs.
type APIClient interface {
	AssignTransaction(ctx context.Context, t txdomain.Type, id, assignedUserID int) (*api.AssignResult, error)
	SetTransactionStatus(ctx context.Context, t txdomain.Type, id int, status txdomain.Status) (*api.StatusResult, error)
	CancelTransaction(ctx context.Context, t txdomain.Type, id int, reason string) (*api.StatusResult, error)
	ListEncoders(ctx context.Context) ([]userdomain.User, error)
}

// Cache is the registry surface the controller reads through and invalidates.
type Cache interface {
	Get(ctx context.Context, key registry.Key) (*api.TransactionPage, error)
	Invalidate(t txdomain.Type)
}

// Controller drives the lifecycle of transaction records.
type Controller struct {
	api      APIClient
	cache    Cache
	sessions *session.Store
	policy   policy.Evaluator
	emitter  telemetry.EventEmitter

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New returns a Controller. emitter may be nil.
func New(apiClient APIClient, cache Cache, sessions *session.Store, p policy.Evaluator, emitter telemetry.EventEmitter) *Controller {
	return &Controller{
		api:      apiClient,
		cache:    cache,
		sessions: sessions,
		policy:   p,
		emitter:  emitter,
		inFlight: map[string]struct{}{},
	}
}

func recordKey(t txdomain.Type, id int) string {
	return fmt.Sprintf("%s/%d", t, id)
}

// begin marks the record as having a mutation in flight. A second mutation
// on the same record is refused until the first resolves; mutations on other
// records proceed independently.
func (c *Controller) begin(t txdomain.Type, id int) (func(), error) {
	key := recordKey(t, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[key]; busy {
		return nil, ErrActionInFlight
	}
	c.inFlight[key] = struct{}{}
	return func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}, nil
}

func (c *Controller) identity() (session.Identity, error) {
	status, ident := c.sessions.Snapshot()
	if status != session.StatusAuthenticated {
		return session.Identity{}, ErrNotAuthenticated
	}
	return ident, nil
}

func (c *Controller) emit(ident session.Identity, action, subject, outcome, detail string) {
	if c.emitter == nil {
		return
	}
	telemetry.EmitAsync(c.emitter, &telemetry.ActionEvent{
		UserID:    ident.ID,
		Action:    action,
		Subject:   subject,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	})
}

// Reassign changes the transaction's assigned encoder. Admin-only. The set
// of valid assignees is fetched fresh so a just-deactivated account can never
// be chosen. On success the record carries the server's canonical assignee
// name, never the locally selected one.
func (c *Controller) Reassign(ctx context.Context, tx *txdomain.Transaction, newAssigneeID int) error {
	ident, err := c.identity()
	if err != nil {
		return err
	}
	if !c.policy.Capabilities(ctx, ident.Role).ViewAdminScreens {
		return ErrNotPermitted
	}
	release, err := c.begin(tx.Type, tx.ID)
	if err != nil {
		return err
	}
	defer release()

	assignees, err := c.api.ListEncoders(ctx)
	if err != nil {
		return err
	}
	found := false
	for i := range assignees {
		if assignees[i].ID == newAssigneeID && assignees[i].Assignable() {
			found = true
			break
		}
	}
	if !found {
		return ErrAssigneeUnavailable
	}

	// Optimistic update of the id only; the display name belongs to the
	// server and is filled in from its echo.
	prevID, prevName := tx.AssignedUserID, tx.AssignedTo
	tx.AssignedUserID = newAssigneeID

	res, err := c.api.AssignTransaction(ctx, tx.Type, tx.ID, newAssigneeID)
	if err != nil {
		tx.AssignedUserID, tx.AssignedTo = prevID, prevName
		c.emit(ident, "encoder_reassign", recordKey(tx.Type, tx.ID), "error", api.Message(err))
		return err
	}
	tx.AssignedUserID = res.AssignedUserID
	tx.AssignedTo = res.AssignedTo
	c.cache.Invalidate(tx.Type)
	c.emit(ident, "encoder_reassign", recordKey(tx.Type, tx.ID), "ok", res.AssignedTo)
	return nil
}

// OverrideStatus force-sets the transaction's status, bypassing the normal
// forward-only flow. Admin-only. Setting the current status is a client-side
// no-op: no request is made.
func (c *Controller) OverrideStatus(ctx context.Context, tx *txdomain.Transaction, newStatus txdomain.Status) error {
	ident, err := c.identity()
	if err != nil {
		return err
	}
	if !c.policy.Capabilities(ctx, ident.Role).ViewAdminScreens {
		return ErrNotPermitted
	}
	if !newStatus.Valid() {
		return ErrInvalidStatus
	}
	if newStatus == tx.Status {
		return ErrSameStatus
	}
	release, err := c.begin(tx.Type, tx.ID)
	if err != nil {
		return err
	}
	defer release()

	prev := tx.Status
	tx.Status = newStatus

	res, err := c.api.SetTransactionStatus(ctx, tx.Type, tx.ID, newStatus)
	if err != nil {
		tx.Status = prev
		c.emit(ident, "status_override", recordKey(tx.Type, tx.ID), "error", api.Message(err))
		return err
	}
	tx.Status = res.Status
	c.cache.Invalidate(tx.Type)
	c.emit(ident, "status_override", recordKey(tx.Type, tx.ID), "ok", string(res.Status))
	return nil
}

// Cancel moves the transaction to cancelled with a reason. Unlike override,
// cancellation is available to the record's own operational owner as well as
// admins. The reason is validated before any request is made and transmitted
// verbatim; the server records it in the audit description.
func (c *Controller) Cancel(ctx context.Context, tx *txdomain.Transaction, reason string) error {
	ident, err := c.identity()
	if err != nil {
		return err
	}
	trimmed, err := txdomain.ValidateCancelReason(reason)
	if err != nil {
		return err
	}
	caps := c.policy.Capabilities(ctx, ident.Role)
	owner := ident.Role.Operational() && tx.AssignedUserID == ident.ID
	if !caps.ViewAdminScreens && !owner {
		return ErrNotPermitted
	}
	if !tx.Status.CanCancel() {
		return ErrCannotCancel
	}
	release, err := c.begin(tx.Type, tx.ID)
	if err != nil {
		return err
	}
	defer release()

	prev := tx.Status
	tx.Status = txdomain.StatusCancelled

	res, err := c.api.CancelTransaction(ctx, tx.Type, tx.ID, trimmed)
	if err != nil {
		tx.Status = prev
		c.emit(ident, "cancel", recordKey(tx.Type, tx.ID), "error", api.Message(err))
		return err
	}
	tx.Status = res.Status
	c.cache.Invalidate(tx.Type)
	c.emit(ident, "cancel", recordKey(tx.Type, tx.ID), "ok", trimmed)
	return nil
}

// ListAll reads one unfiltered page through the cache.
func (c *Controller) ListAll(ctx context.Context, page int) (*api.TransactionPage, error) {
	return c.ListFiltered(ctx, "", "", "", page)
}

// ListFiltered reads one filtered page through the cache. Any authenticated
// role with a screen capability may read; the server enforces row scoping.
func (c *Controller) ListFiltered(ctx context.Context, t txdomain.Type, status txdomain.Status, search string, page int) (*api.TransactionPage, error) {
	ident, err := c.identity()
	if err != nil {
		return nil, err
	}
	if c.policy.Capabilities(ctx, ident.Role).None() {
		return nil, ErrNotPermitted
	}
	return c.cache.Get(ctx, registry.Key{Type: t, Status: status, Search: search, Page: page})
}

// Assignees returns the current set of valid assignees, always fetched fresh.
func (c *Controller) Assignees(ctx context.Context) ([]userdomain.User, error) {
	ident, err := c.identity()
	if err != nil {
		return nil, err
	}
	if !c.policy.Capabilities(ctx, ident.Role).ViewAdminScreens {
		return nil, ErrNotPermitted
	}
	return c.api.ListEncoders(ctx)
}
