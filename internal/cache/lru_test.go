package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCacheGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	// "b" is now least recently used
	c.Set("c", "3")
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Size())

	c.Set("a", "updated")
	v, _ = c.Get("a")
	assert.Equal(t, "updated", v)
}

func TestLRUCacheExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("a", "1")
	clock.Advance(30 * time.Second)
	c.Set("b", "2")
	clock.Advance(45 * time.Second)

	_, ok := c.Get("a")
	assert.False(t, ok, "a should have expired")
	_, ok = c.Get("b")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Zero(t, c.Size())
}

func TestLRUCacheDeleteAndPurge(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Purge()
	assert.Zero(t, c.Size())
	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestLRUCacheStats(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, 1, s.Size)
}

func TestManagerSweep(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	m := NewManager()
	m.Register(c)
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 2, m.Sweep())

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
