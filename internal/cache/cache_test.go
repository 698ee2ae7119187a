package cache

import (
	"fmt"
	"testing"
	"time"
)

func entryOfFrames(n int) Entry {
	return Entry{Samples: make([]float32, n), SampleRate: 22050}
}

func TestPutGet(t *testing.T) {
	c := New(1024)

	e := entryOfFrames(10)
	e.Samples[3] = 0.5
	if err := c.Put("k1", e); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get("k1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.SampleRate != 22050 || got.Samples[3] != 0.5 {
		t.Error("entry came back mangled")
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestLRUEviction(t *testing.T) {
	// Capacity fits exactly two 25-frame entries (100 bytes each).
	c := New(200)

	c.Put("a", entryOfFrames(25))
	c.Put("b", entryOfFrames(25))

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")

	c.Put("c", entryOfFrames(25))

	if !c.Contains("a") {
		t.Error("recently used entry was evicted")
	}
	if c.Contains("b") {
		t.Error("least recently used entry survived")
	}
	if !c.Contains("c") {
		t.Error("new entry missing")
	}

	if s := c.Stats(); s.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", s.Evictions)
	}
}

func TestItemTooLarge(t *testing.T) {
	c := New(100)
	if err := c.Put("big", entryOfFrames(50)); err != ErrItemTooLarge {
		t.Errorf("got %v, want ErrItemTooLarge", err)
	}
}

func TestUpdateExisting(t *testing.T) {
	c := New(1024)
	c.Put("k", entryOfFrames(10))
	c.Put("k", entryOfFrames(20))

	if s := c.Stats(); s.ItemCount != 1 || s.Size != 80 {
		t.Errorf("items=%d size=%d, want 1 and 80", s.ItemCount, s.Size)
	}
}

func TestKeyStability(t *testing.T) {
	k1 := Key("You can't go that way.", "en-gb", 1.0, 1.0)
	k2 := Key("You can't go that way.", "en-gb", 1.0, 1.0)
	if k1 != k2 {
		t.Error("identical inputs must produce identical keys")
	}

	variants := []string{
		Key("You can't go that way.", "en-gb", 1.1, 1.0),
		Key("You can't go that way.", "en-us", 1.0, 1.0),
		Key("You can go that way.", "en-gb", 1.0, 1.0),
		Key("You can't go that way.", "en-gb", 1.0, 1.5),
	}
	seen := map[string]bool{k1: true}
	for i, v := range variants {
		if seen[v] {
			t.Errorf("variant %d collided", i)
		}
		seen[v] = true
	}
}

func TestClearAndStats(t *testing.T) {
	c := New(1024)
	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("k%d", i), entryOfFrames(4))
	}
	c.Get("k0")
	c.Get("nope")

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("hits=%d misses=%d, want 1 and 1", s.Hits, s.Misses)
	}
	if s.HitRate != 0.5 {
		t.Errorf("hit rate = %f, want 0.5", s.HitRate)
	}

	c.Clear()
	if s := c.Stats(); s.ItemCount != 0 || s.Size != 0 {
		t.Error("clear left entries behind")
	}
}

func TestLargeClipCompressedTransparently(t *testing.T) {
	c := New(DefaultCapacity)

	// Mostly-silent clip well above the compression threshold.
	e := entryOfFrames(64 << 10)
	e.Samples[100] = 0.25
	e.Samples[len(e.Samples)-1] = -0.75
	if err := c.Put("long", e); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if s := c.Stats(); s.Size >= e.byteSize() {
		t.Errorf("stored size = %d, want less than raw %d", s.Size, e.byteSize())
	}

	got, ok := c.Get("long")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.SampleRate != e.SampleRate || len(got.Samples) != len(e.Samples) {
		t.Fatalf("shape changed: rate=%d frames=%d", got.SampleRate, len(got.Samples))
	}
	if got.Samples[100] != 0.25 || got.Samples[len(got.Samples)-1] != -0.75 {
		t.Error("samples came back mangled")
	}
}

func TestPrune(t *testing.T) {
	c := New(1024)
	c.Put("old", entryOfFrames(4))
	time.Sleep(20 * time.Millisecond)
	c.Put("new", entryOfFrames(4))

	if n := c.Prune(10 * time.Millisecond); n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	if c.Contains("old") || !c.Contains("new") {
		t.Error("prune removed the wrong entry")
	}
}
