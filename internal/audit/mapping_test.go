package audit

import "testing"

func TestActionLabel_Known(t *testing.T) {
	cases := map[string]string{
		ActionStatusChanged:     "Status changed",
		ActionEncoderReassigned: "Encoder reassigned",
		ActionLogin:             "Logged in",
	}
	for action, want := range cases {
		if got := ActionLabel(action); got != want {
			t.Errorf("ActionLabel(%q) = %q, want %q", action, got, want)
		}
	}
}

func TestActionLabel_OpenEnded(t *testing.T) {
	if got := ActionLabel("document_uploaded"); got != "Document uploaded" {
		t.Errorf("ActionLabel(document_uploaded) = %q", got)
	}
	if got := ActionLabel(""); got != "Unknown action" {
		t.Errorf("ActionLabel(\"\") = %q", got)
	}
}

func TestActionLabel_EmptyWords(t *testing.T) {
	// Kinds are server-owned strings; underscore runs must not crash the
	// audit list rendering.
	cases := map[string]string{
		"_import":        "Import",
		"import__failed": "Import failed",
		"_":              "Unknown action",
		"__":             "Unknown action",
	}
	for action, want := range cases {
		if got := ActionLabel(action); got != want {
			t.Errorf("ActionLabel(%q) = %q, want %q", action, got, want)
		}
	}
}
