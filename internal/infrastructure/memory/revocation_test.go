package memory

import (
	"context"
	"testing"
	"time"
)

func TestRevocationRegistry_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRevocationRegistry()
	r.now = func() time.Time { return now }

	if err := r.Revoke(ctx, "tok-a", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := r.Revoke(ctx, "tok-b", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if ok, _ := r.IsRevoked(ctx, "tok-a"); !ok {
		t.Fatal("tok-a should be revoked")
	}
	if ok, _ := r.IsRevoked(ctx, "tok-c"); ok {
		t.Fatal("tok-c was never revoked")
	}

	now = now.Add(90 * time.Minute)
	if ok, _ := r.IsRevoked(ctx, "tok-a"); ok {
		t.Fatal("tok-a entry should be purged after its expiry")
	}
	if ok, _ := r.IsRevoked(ctx, "tok-b"); !ok {
		t.Fatal("tok-b should still be revoked")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	now = now.Add(time.Hour)
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}

func TestRevocationRegistry_Idempotent(t *testing.T) {
	ctx := context.Background()
	r := NewRevocationRegistry()
	exp := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		if err := r.Revoke(ctx, "tok", exp); err != nil {
			t.Fatalf("Revoke #%d: %v", i, err)
		}
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestRevocationRegistry_AlreadyExpiredIsNotStored(t *testing.T) {
	r := NewRevocationRegistry()
	if err := r.Revoke(context.Background(), "tok", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}
