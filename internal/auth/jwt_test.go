package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, claims, err := m.Generate(models.User{ID: 7, Username: "alice", IsStaff: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parsed, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.ID != claims.ID || parsed.Username != "alice" || !parsed.Staff {
		t.Errorf("unexpected claims %+v", parsed)
	}
	if id, _ := parsed.UserID(); id != 7 {
		t.Errorf("expected subject 7, got %d", id)
	}
}

func TestTokenRejections(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, _ := m.Generate(models.User{ID: 1, Username: "alice"})

	other := NewTokenManager("other-secret", time.Hour)
	if _, err := other.Parse(token); err == nil {
		t.Error("expected signature mismatch to fail")
	}

	expired := NewTokenManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Generate(models.User{ID: 1, Username: "alice"})
	if _, err := m.Parse(old); err == nil {
		t.Error("expected expired token to fail")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMemorySessionExpiry(t *testing.T) {
	s := NewMemorySessionStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	_ = s.Save(context.Background(), "a", 1, time.Minute)
	if ok, _ := s.Exists(context.Background(), "a"); !ok {
		t.Fatal("expected live session")
	}
	now = now.Add(2 * time.Minute)
	if ok, _ := s.Exists(context.Background(), "a"); ok {
		t.Fatal("expected session to expire")
	}
	if revoked, _ := s.Revoke(context.Background(), "a"); revoked {
		t.Fatal("expired session should not count as revoked")
	}
}
