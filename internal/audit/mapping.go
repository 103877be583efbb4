package audit

import "strings"

// Well-known action kinds the server records. The set is open-ended; kinds
// not listed here are still displayed, via a generic label.
const (
	ActionLogin             = "login"
	ActionLogout            = "logout"
	ActionStatusChanged     = "status_changed"
	ActionEncoderReassigned = "encoder_reassigned"
	ActionCancelled         = "transaction_cancelled"
	ActionUserCreated       = "user_created"
	ActionUserUpdated       = "user_updated"
	ActionUserDeactivated   = "user_deactivated"
)

var actionLabels = map[string]string{
	ActionLogin:             "Logged in",
	ActionLogout:            "Logged out",
	ActionStatusChanged:     "Status changed",
	ActionEncoderReassigned: "Encoder reassigned",
	ActionCancelled:         "Transaction cancelled",
	ActionUserCreated:       "User created",
	ActionUserUpdated:       "User updated",
	ActionUserDeactivated:   "User deactivated",
}

// ActionLabel returns a display label for an action kind. Unknown kinds are
// humanized from their snake_case form rather than rejected, because the set
// of kinds is owned by the server and open-ended.
func ActionLabel(action string) string {
	if l, ok := actionLabels[action]; ok {
		return l
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return "Unknown action"
	}
	// Leading or doubled underscores split into empty words; drop them so
	// any server-supplied kind renders without panicking.
	var words []string
	for _, w := range strings.Split(action, "_") {
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "Unknown action"
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}
