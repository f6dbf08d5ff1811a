package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

func TestClientStorage_SetGetDelete(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()
	s := NewClientStorage(client, "sid-1", time.Hour)

	if _, ok, err := s.Get(ctx, "auth_token"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.SetMany(ctx, map[string]string{"auth_token": "t1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := s.Get(ctx, "auth_token")
	if err != nil || !ok || val != "t1" {
		t.Fatalf("unexpected get: %q %v %v", val, ok, err)
	}

	if err := s.Delete(ctx, "auth_token", "user"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "auth_token"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestClientStorage_IsolatedPerSession(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	a := NewClientStorage(client, "sid-a", time.Hour)
	b := NewClientStorage(client, "sid-b", time.Hour)

	if err := a.SetMany(ctx, map[string]string{"user": `{"id":"1"}`}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "user"); ok {
		t.Fatalf("storage leaked across browser sessions")
	}
}

func TestClientStorage_Expires(t *testing.T) {
	mini, client := newTestClient(t)
	ctx := context.Background()
	s := NewClientStorage(client, "sid-1", time.Minute)

	if err := s.SetMany(ctx, map[string]string{"auth_token": "t1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	mini.FastForward(2 * time.Minute)

	if _, ok, _ := s.Get(ctx, "auth_token"); ok {
		t.Fatalf("expected storage to expire")
	}
}

func TestClientStorage_SetManyWritesAllFields(t *testing.T) {
	mini, client := newTestClient(t)
	ctx := context.Background()
	s := NewClientStorage(client, "sid-1", time.Hour)

	if err := s.SetMany(ctx, map[string]string{"auth_token": "t1", "user": `{"id":"u1"}`}); err != nil {
		t.Fatalf("set many: %v", err)
	}
	if got := mini.HGet("storage:sid-1", "auth_token"); got != "t1" {
		t.Fatalf("unexpected token %q", got)
	}
	if got := mini.HGet("storage:sid-1", "user"); got != `{"id":"u1"}` {
		t.Fatalf("unexpected user %q", got)
	}
	if ttl := mini.TTL("storage:sid-1"); ttl != time.Hour {
		t.Fatalf("expected sliding ttl, got %s", ttl)
	}
}

func TestClientStorage_SetIfEquals(t *testing.T) {
	mini, client := newTestClient(t)
	ctx := context.Background()
	s := NewClientStorage(client, "sid-1", time.Hour)

	if err := s.SetMany(ctx, map[string]string{"auth_token": "t1", "user": "old"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ok, err := s.SetIfEquals(ctx, "auth_token", "t1", map[string]string{"user": "new"})
	if err != nil || !ok {
		t.Fatalf("expected write with matching token, got ok=%v err=%v", ok, err)
	}
	if got := mini.HGet("storage:sid-1", "user"); got != "new" {
		t.Fatalf("unexpected user %q", got)
	}

	ok, err = s.SetIfEquals(ctx, "auth_token", "stale", map[string]string{"user": "stale"})
	if err != nil || ok {
		t.Fatalf("expected no write with stale token, got ok=%v err=%v", ok, err)
	}
	if got := mini.HGet("storage:sid-1", "user"); got != "new" {
		t.Fatalf("stale write went through: %q", got)
	}
}

func TestClientStorage_SetIfEqualsAfterDelete(t *testing.T) {
	mini, client := newTestClient(t)
	ctx := context.Background()
	s := NewClientStorage(client, "sid-1", time.Hour)

	if err := s.SetMany(ctx, map[string]string{"auth_token": "t1", "user": "u1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Delete(ctx, "auth_token", "user"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ok, err := s.SetIfEquals(ctx, "auth_token", "t1", map[string]string{"user": "u1"})
	if err != nil || ok {
		t.Fatalf("expected no write once the token is gone, got ok=%v err=%v", ok, err)
	}
	if got := mini.HGet("storage:sid-1", "user"); got != "" {
		t.Fatalf("deleted user came back: %q", got)
	}
}

func TestClientStorage_DeleteIfEquals(t *testing.T) {
	mini, client := newTestClient(t)
	ctx := context.Background()
	s := NewClientStorage(client, "sid-1", time.Hour)

	if err := s.SetMany(ctx, map[string]string{"auth_token": "t2", "user": "u2", "company_auth_token": "c"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ok, err := s.DeleteIfEquals(ctx, "auth_token", "t1", "auth_token", "user")
	if err != nil || ok {
		t.Fatalf("expected no delete with stale token, got ok=%v err=%v", ok, err)
	}
	if got := mini.HGet("storage:sid-1", "auth_token"); got != "t2" {
		t.Fatalf("newer token removed: %q", got)
	}

	ok, err = s.DeleteIfEquals(ctx, "auth_token", "t2", "auth_token", "user")
	if err != nil || !ok {
		t.Fatalf("expected delete with matching token, got ok=%v err=%v", ok, err)
	}
	if got := mini.HGet("storage:sid-1", "auth_token"); got != "" {
		t.Fatalf("expected token removed, got %q", got)
	}
	if got := mini.HGet("storage:sid-1", "company_auth_token"); got != "c" {
		t.Fatalf("unrelated field removed: %q", got)
	}
}

func TestTokenDenylist(t *testing.T) {
	mini, client := newTestClient(t)
	ctx := context.Background()
	d := NewTokenDenylist(client)

	revoked, err := d.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("expected not revoked, got %v %v", revoked, err)
	}

	if err := d.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := d.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected revoked")
	}

	mini.FastForward(2 * time.Minute)
	if revoked, _ := d.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("expected revocation to lapse with the token")
	}
}

func TestTokenDenylist_AlreadyExpired(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()
	d := NewTokenDenylist(client)

	if err := d.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := d.IsRevoked(ctx, "jti-old"); revoked {
		t.Fatalf("expired tokens need no denylist entry")
	}
}
