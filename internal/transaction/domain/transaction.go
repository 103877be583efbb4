package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Type discriminates the two transaction variants.
type Type string

const (
	TypeImport Type = "import"
	TypeExport Type = "export"
)

// ParseType parses a type filter value. Empty means "both" for list filters.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeImport:
		return TypeImport, nil
	case TypeExport:
		return TypeExport, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Status is the lifecycle status of a transaction.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists the four lifecycle statuses in forward order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// ParseStatus parses a status string from user input or a server response.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Valid reports whether s is one of the four lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s ends the normal lifecycle. Only an admin
// override can move a transaction out of a terminal status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanCancel reports whether a transaction in status s may be cancelled
// through the normal (non-override) path.
func (s Status) CanCancel() bool {
	return s == StatusPending || s == StatusInProgress
}

// MaxCancelReasonLen bounds the cancellation reason after trimming.
const MaxCancelReasonLen = 500

var (
	// ErrEmptyCancelReason is returned when a cancellation reason is empty
	// after trimming. The request must not be sent in that case.
	ErrEmptyCancelReason = errors.New("cancellation reason is required")
	// ErrCancelReasonTooLong is returned when the trimmed reason exceeds
	// MaxCancelReasonLen characters.
	ErrCancelReasonTooLong = fmt.Errorf("cancellation reason exceeds %d characters", MaxCancelReasonLen)
)

// ValidateCancelReason trims reason and validates it. Returns the trimmed
// reason, which is what must be transmitted verbatim.
func ValidateCancelReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", ErrEmptyCancelReason
	}
	if utf8.RuneCountInString(trimmed) > MaxCancelReasonLen {
		return "", ErrCancelReasonTooLong
	}
	return trimmed, nil
}

// Transaction is one import or export shipment record. The server owns every
// field; the client mutates its copy only with values the server echoed back.
type Transaction struct {
	ID              int
	Type            Type
	ReferenceNumber string
	BLNumber        string
	ClientID        int
	ClientName      string
	Status          Status
	AssignedUserID  int // 0 means unassigned
	AssignedTo      string
	CreatedAt       time.Time

	// Import-only fields.
	ArrivalDate    time.Time
	Importer       string
	SelectiveColor string // informational risk-tier marker, not a workflow state

	// Export-only fields.
	Vessel      string
	Destination string
}

// Assigned reports whether the record has an assignee.
func (t *Transaction) Assigned() bool { return t.AssignedUserID != 0 }

// MatchesSearch reports whether the record matches a free-text search term,
// case-insensitively, against reference number, BL number, client name, and
// assignee name. An empty term matches everything.
func (t *Transaction) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range []string{t.ReferenceNumber, t.BLNumber, t.ClientName, t.AssignedTo} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
