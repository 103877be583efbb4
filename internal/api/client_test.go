package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"brokerops/client/internal/session"
	txdomain "brokerops/client/internal/transaction/domain"
	userdomain "brokerops/client/internal/user/domain"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 5*time.Second, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestLogin_ReturnsServerIdentity(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ana@example.com" {
			t.Errorf("email = %q", body["email"])
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]interface{}{"id": 3, "email": "ana@example.com", "name": "Ana Cruz", "role": "admin"},
		})
	}))
	ident, err := c.Login(context.Background(), "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := session.Identity{ID: 3, Email: "ana@example.com", Name: "Ana Cruz", Role: userdomain.RoleAdmin}
	if diff := cmp.Diff(want, ident); diff != "" {
		t.Errorf("identity mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin_EmptyCredentialsNoRequest(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	if _, err := c.Login(context.Background(), "", ""); !IsKind(err, KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if hits.Load() != 0 {
		t.Error("validation failure must not reach the network")
	}
}

func TestUnauthorizedHook_FiresOncePerEpoch(t *testing.T) {
	var fired atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), WithUnauthorizedHook(func() { fired.Add(1) }))

	for i := 0; i < 3; i++ {
		err := c.do(context.Background(), http.MethodGet, "/transactions", nil, nil, nil)
		if !IsKind(err, KindUnauthorized) {
			t.Fatalf("err = %v, want unauthorized", err)
		}
	}
	if got := fired.Load(); got != 1 {
		t.Fatalf("hook fired %d times, want 1", got)
	}

	c.ResetSessionEpoch()
	_ = c.do(context.Background(), http.MethodGet, "/transactions", nil, nil, nil)
	if got := fired.Load(); got != 2 {
		t.Fatalf("hook after reset fired %d times total, want 2", got)
	}
}

func TestUnauthorizedHook_NotFiredForAuthEndpoints(t *testing.T) {
	var fired atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), WithUnauthorizedHook(func() { fired.Add(1) }))

	if _, err := c.Login(context.Background(), "a@example.com", "bad"); !IsKind(err, KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if fired.Load() != 0 {
		t.Error("401 on /auth/login must not fire the global hook")
	}
}

func TestRejection_MessageVerbatim(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Assignee is no longer active."})
	}))
	_, err := c.AssignTransaction(context.Background(), txdomain.TypeImport, 12, 5)
	if !IsKind(err, KindRejected) {
		t.Fatalf("err = %v, want rejected", err)
	}
	if Message(err) != "Assignee is no longer active." {
		t.Errorf("message = %q, want server text verbatim", Message(err))
	}
}

func TestServerError_Unavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	_, err := c.ListTransactions(context.Background(), TransactionQuery{})
	if !IsKind(err, KindUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestListTransactions_ParsesTotals(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "import" {
			t.Errorf("type query = %q", got)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page query = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{
				"id": 12, "type": "import", "reference_number": "IMP-1",
				"bl_number": "BL-1", "client_name": "Pacific Traders",
				"status": "pending", "assigned_user_id": 7, "assigned_to": "Maria Santos",
			}},
			"total": 41, "imports_count": 30, "exports_count": 11,
		})
	}))
	page, err := c.ListTransactions(context.Background(), TransactionQuery{Type: txdomain.TypeImport, Page: 2})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if page.Total != 41 || page.ImportsCount != 30 || page.ExportsCount != 11 {
		t.Errorf("totals = %d/%d/%d", page.Total, page.ImportsCount, page.ExportsCount)
	}
	if len(page.Data) != 1 || page.Data[0].Status != txdomain.StatusPending {
		t.Errorf("data = %+v", page.Data)
	}
}

func TestCancelTransaction_SendsExactReason(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/exports/9/cancel" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["reason"] != "Duplicate entry" {
			t.Errorf("reason = %q, want %q", body["reason"], "Duplicate entry")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Cancelled.", "status": "cancelled"})
	}))
	res, err := c.CancelTransaction(context.Background(), txdomain.TypeExport, 9, "Duplicate entry")
	if err != nil {
		t.Fatalf("CancelTransaction: %v", err)
	}
	if res.Status != txdomain.StatusCancelled {
		t.Errorf("status = %s", res.Status)
	}
}

func TestListEncoders(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/encoders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": 7, "name": "Maria Santos", "email": "maria@example.com", "role": "encoder"},
			},
		})
	}))
	users, err := c.ListEncoders(context.Background())
	if err != nil {
		t.Fatalf("ListEncoders: %v", err)
	}
	if len(users) != 1 || !users[0].Assignable() {
		t.Errorf("users = %+v", users)
	}
}

func TestSessionCookiePersistsAcrossRequests(t *testing.T) {
	var sawCookie atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok-1"})
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]interface{}{"id": 1, "email": "e@example.com", "name": "E", "role": "encoder"},
		})
	})
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("session"); err == nil && ck.Value == "tok-1" {
			sawCookie.Store(true)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}, "total": 0})
	})
	c := newTestClient(t, mux)
	if _, err := c.Login(context.Background(), "e@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := c.ListTransactions(context.Background(), TransactionQuery{}); err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if !sawCookie.Load() {
		t.Error("session cookie was not replayed on the next request")
	}
}
