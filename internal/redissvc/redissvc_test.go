package redissvc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := Connect(context.Background(), addr, "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	if err := s.Save(ctx, id, 42, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	ok, err := s.Exists(ctx, id)
	if err != nil || !ok {
		t.Fatalf("expected live session, got %v %v", ok, err)
	}
	if ttl := s.rdb.TTL(ctx, key(id)).Val(); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected the session to expire within a minute, ttl %v", ttl)
	}

	revoked, err := s.Revoke(ctx, id)
	if err != nil || !revoked {
		t.Fatalf("expected revoke to succeed, got %v %v", revoked, err)
	}
	revoked, err = s.Revoke(ctx, id)
	if err != nil || revoked {
		t.Fatalf("second revoke should report absent, got %v %v", revoked, err)
	}
	if ok, _ := s.Exists(ctx, id); ok {
		t.Fatal("session still present after revoke")
	}
}
