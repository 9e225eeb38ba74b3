package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flakyStore simulates a primary whose backend can be taken down mid-test.
type flakyStore struct {
	inner Store
	down  bool
}

func (f *flakyStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if f.down {
		return ErrRedisUnavailable
	}
	return f.inner.Save(ctx, sess, ttl)
}

func (f *flakyStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	if f.down {
		return nil, ErrRedisUnavailable
	}
	return f.inner.Get(ctx, sessionID)
}

func (f *flakyStore) Delete(ctx context.Context, sessionID string) error {
	if f.down {
		return ErrRedisUnavailable
	}
	return f.inner.Delete(ctx, sessionID)
}

func newDualUnderTest(t *testing.T) (*Dual, *flakyStore, *MemoryStore) {
	t.Helper()

	primary := &flakyStore{inner: NewMemoryStore()}
	fallback := NewMemoryStore()
	d := NewDual(primary, fallback, 0)
	t.Cleanup(d.Close)

	return d, primary, fallback
}

func TestDualSaveMirrorsToFallback(t *testing.T) {
	ctx := context.Background()
	d, _, fallback := newDualUnderTest(t)

	if err := d.Save(ctx, memSession("dual-1", time.Hour), time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := fallback.Get(ctx, "dual-1"); err != nil {
		t.Fatalf("fallback miss after healthy Save: %v", err)
	}
	if _, err := d.Get(ctx, "dual-1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestDualSurvivesPrimaryOutage(t *testing.T) {
	ctx := context.Background()
	d, primary, _ := newDualUnderTest(t)
	primary.down = true

	// create still succeeds and the session is usable on this instance
	if err := d.Save(ctx, memSession("dual-out", time.Hour), time.Hour); err != nil {
		t.Fatalf("Save during outage: %v", err)
	}
	got, err := d.Get(ctx, "dual-out")
	if err != nil {
		t.Fatalf("Get during outage: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("username = %q", got.Username)
	}

	stats := d.Stats()
	if stats.FallbackWrites == 0 || stats.FallbackReads == 0 || stats.PrimaryErrors == 0 {
		t.Errorf("degradation not counted: %+v", stats)
	}
}

func TestDualGetPrefersPrimary(t *testing.T) {
	ctx := context.Background()
	d, primary, fallback := newDualUnderTest(t)

	// same ID, different usernames, to observe which backend answered
	primarySess := memSession("dual-pref", time.Hour)
	primarySess.Username = "from-primary"
	if err := primary.inner.Save(ctx, primarySess, time.Hour); err != nil {
		t.Fatalf("seed primary: %v", err)
	}
	fallbackSess := memSession("dual-pref", time.Hour)
	fallbackSess.Username = "from-fallback"
	if err := fallback.Save(ctx, fallbackSess, time.Hour); err != nil {
		t.Fatalf("seed fallback: %v", err)
	}

	got, err := d.Get(ctx, "dual-pref")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Username != "from-primary" {
		t.Errorf("answered from %q, want primary", got.Username)
	}
}

func TestDualDeleteSwallowsPrimaryError(t *testing.T) {
	ctx := context.Background()
	d, primary, fallback := newDualUnderTest(t)

	if err := d.Save(ctx, memSession("dual-del", time.Hour), time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	primary.down = true
	if err := d.Delete(ctx, "dual-del"); err != nil {
		t.Fatalf("Delete during outage: %v", err)
	}
	if _, err := fallback.Get(ctx, "dual-del"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("fallback record survived a revoke")
	}

	// revoked session unusable locally even though primary never saw the delete
	if _, err := d.Get(ctx, "dual-del"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after revoke = %v, want ErrSessionNotFound", err)
	}

	// idempotent
	if err := d.Delete(ctx, "dual-del"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestDualExpiryEnforcedOnFallbackPath(t *testing.T) {
	ctx := context.Background()
	d, primary, _ := newDualUnderTest(t)
	primary.down = true

	if err := d.Save(ctx, memSession("dual-exp", -time.Second), time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := d.Get(ctx, "dual-exp"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired fallback Get = %v, want ErrSessionNotFound", err)
	}
}

func TestDualPurgeLoop(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: NewMemoryStore()}
	fallback := NewMemoryStore()
	d := NewDual(primary, fallback, 10*time.Millisecond)
	defer d.Close()

	if err := d.Save(ctx, memSession("dual-purge", -time.Minute), time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fallback.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fallback.Len() != 0 {
		t.Fatal("purge loop never removed the expired record")
	}
}
