package domain

import "time"

// Entry is one server-recorded audit action. Entries are append-only and
// immutable; the client never constructs them, it only reads them back to
// verify that triggered actions were recorded.
type Entry struct {
	ID          int
	UserID      int // 0 for system actions
	UserName    string
	Action      string // open-ended kind: login, status_changed, encoder_reassigned, ...
	SubjectType string
	SubjectID   int
	Description string
	IP          string
	CreatedAt   time.Time
}

// System reports whether the entry was recorded without an acting user.
func (e *Entry) System() bool { return e.UserID == 0 }
