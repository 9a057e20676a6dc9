package cache

import (
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New(Options{Dir: t.TempDir(), TTL: ttl, Enabled: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSetGetOutput(t *testing.T) {
	c := newTestCache(t, 0)

	if _, ok := c.GetOutput("hash1", "scopes"); ok {
		t.Fatal("hit on empty cache")
	}

	if err := c.SetOutput("hash1", "scopes", "rendered tree"); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}

	out, ok := c.GetOutput("hash1", "scopes")
	if !ok {
		t.Fatal("miss after SetOutput")
	}
	if out != "rendered tree" {
		t.Errorf("output = %q, want %q", out, "rendered tree")
	}

	// Same hash, different operation: separate entry.
	if _, ok := c.GetOutput("hash1", "types"); ok {
		t.Error("hit for a different operation")
	}
	// Different hash (binary rebuilt): separate entry.
	if _, ok := c.GetOutput("hash2", "scopes"); ok {
		t.Error("hit for a different binary hash")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Writes != 1 || stats.Misses != 3 {
		t.Errorf("stats = %+v, want 1 hit, 1 write, 3 misses", stats)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t, 10*time.Millisecond)

	if err := c.SetOutput("hash1", "scopes", "old"); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.GetOutput("hash1", "scopes"); ok {
		t.Error("expired entry still served")
	}
}

func TestClear(t *testing.T) {
	c := newTestCache(t, 0)

	c.SetOutput("hash1", "scopes", "a")
	c.SetOutput("hash2", "scopes", "b")
	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c.Size() != 0 {
		t.Errorf("Size after Clear = %d, want 0", c.Size())
	}
}

func TestDisabledCache(t *testing.T) {
	c, err := New(Options{Enabled: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Enabled() {
		t.Error("disabled cache reports enabled")
	}
	if err := c.SetOutput("hash", "scopes", "x"); err != nil {
		t.Errorf("SetOutput on disabled cache: %v", err)
	}
	if _, ok := c.GetOutput("hash", "scopes"); ok {
		t.Error("disabled cache served an entry")
	}
	if c.Size() != 0 {
		t.Errorf("disabled cache Size = %d, want 0", c.Size())
	}
}

func TestHitRate(t *testing.T) {
	c := newTestCache(t, 0)
	if c.HitRate() != 0 {
		t.Errorf("HitRate on empty cache = %f, want 0", c.HitRate())
	}

	c.SetOutput("hash1", "scopes", "a")
	c.GetOutput("hash1", "scopes") // hit
	c.GetOutput("hash1", "types")  // miss

	if got := c.HitRate(); got != 0.5 {
		t.Errorf("HitRate = %f, want 0.5", got)
	}
}
