package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	userdomain "brokerops/client/internal/user/domain"
)

func testIdentity() Identity {
	return Identity{ID: 7, Email: "maria@example.com", Name: "Maria Santos", Role: userdomain.RoleEncoder}
}

func TestStore_StartsLoading(t *testing.T) {
	s := NewStore(nil)
	st, _ := s.Snapshot()
	if st != StatusLoading {
		t.Errorf("fresh store status = %v, want Loading", st)
	}
}

func TestStore_RestoreWithoutMirror(t *testing.T) {
	s := NewStore(nil)
	s.Restore()
	st, ident := s.Snapshot()
	if st != StatusUnauthenticated {
		t.Errorf("status = %v, want Unauthenticated", st)
	}
	if ident != (Identity{}) {
		t.Errorf("identity = %+v, want zero", ident)
	}
}

func TestStore_LoginLogout(t *testing.T) {
	s := NewStore(nil)
	s.Restore()
	s.SetAuthenticated(testIdentity())
	st, ident := s.Snapshot()
	if st != StatusAuthenticated || ident.ID != 7 {
		t.Fatalf("after login: status=%v identity=%+v", st, ident)
	}
	s.Clear()
	st, ident = s.Snapshot()
	if st != StatusUnauthenticated || ident != (Identity{}) {
		t.Errorf("after logout: status=%v identity=%+v", st, ident)
	}
}

func TestStore_NoTornReads(t *testing.T) {
	s := NewStore(nil)
	s.Restore()
	a := Identity{ID: 1, Email: "a@example.com", Name: "A", Role: userdomain.RoleBroker}
	b := Identity{ID: 2, Email: "b@example.com", Name: "B", Role: userdomain.RoleManager}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			s.SetAuthenticated(a)
			s.SetAuthenticated(b)
		}
	}()
	for i := 0; i < 1000; i++ {
		st, ident := s.Snapshot()
		if st != StatusAuthenticated && st != StatusUnauthenticated && st != StatusLoading {
			t.Fatalf("impossible status %v", st)
		}
		if st == StatusAuthenticated && ident != a && ident != b {
			t.Fatalf("torn identity read: %+v", ident)
		}
	}
	close(stop)
	wg.Wait()
}

func TestMirror_SaveLoadClear(t *testing.T) {
	dir := t.TempDir()
	m := NewMirror(dir, time.Hour)
	if err := m.Save(testIdentity()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || *got != testIdentity() {
		t.Fatalf("Load = %+v, want %+v", got, testIdentity())
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err = m.Load()
	if err != nil || got != nil {
		t.Fatalf("Load after Clear = (%+v, %v), want (nil, nil)", got, err)
	}
	// Clearing twice must not fail.
	if err := m.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestMirror_ExpiredDiscarded(t *testing.T) {
	dir := t.TempDir()
	m := NewMirror(dir, -time.Minute)
	if err := m.Save(testIdentity()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("expired mirror should be discarded, got %+v", got)
	}
}

func TestMirror_TamperedDiscarded(t *testing.T) {
	dir := t.TempDir()
	m := NewMirror(dir, time.Hour)
	if err := m.Save(testIdentity()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	path := filepath.Join(dir, "identity.jwt")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write tampered mirror: %v", err)
	}
	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("tampered mirror should be discarded, got %+v", got)
	}
}

func TestStore_RestoreFromMirror(t *testing.T) {
	dir := t.TempDir()
	m := NewMirror(dir, time.Hour)
	first := NewStore(m)
	first.Restore()
	first.SetAuthenticated(testIdentity())

	second := NewStore(NewMirror(dir, time.Hour))
	second.Restore()
	st, ident := second.Snapshot()
	if st != StatusAuthenticated {
		t.Fatalf("restored status = %v, want Authenticated", st)
	}
	if ident != testIdentity() {
		t.Errorf("restored identity = %+v, want %+v", ident, testIdentity())
	}
}
