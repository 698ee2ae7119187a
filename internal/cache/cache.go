// Package cache holds rendered speech audio in memory so repeated narration
// lines ("You can't go that way.") skip synthesis. Eviction is LRU by byte
// size. Nothing is persisted; the cache lives and dies with the process.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DefaultCapacity bounds the cache at 32 MiB of PCM, roughly three minutes
// of mono speech at 44.1 kHz.
const DefaultCapacity = 32 << 20

// ErrItemTooLarge is returned when a single clip exceeds the whole capacity.
var ErrItemTooLarge = fmt.Errorf("item larger than cache capacity")

// Entry is one cached utterance.
type Entry struct {
	Samples    []float32
	SampleRate int
}

func (e Entry) byteSize() int64 {
	return int64(len(e.Samples)) * 4
}

// Stats is a point-in-time snapshot of cache behavior.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64
	Capacity  int64
	ItemCount int64
	HitRate   float64
}

// UtteranceCache is a byte-bounded LRU of synthesized utterances. Clips above
// compressThreshold are held zstd-compressed so the budget stretches further.
type UtteranceCache struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	enc *zstd.Encoder
	dec *zstd.Decoder

	mu    sync.Mutex
	stats Stats
}

type cacheItem struct {
	key   string
	entry Entry

	// packed replaces entry.Samples while the clip sits compressed.
	packed []byte
	frames int
	rate   int

	size  int64
	added time.Time
	hits  int64
}

// New creates an utterance cache bounded to capacity bytes of sample data.
// A non-positive capacity uses DefaultCapacity.
func New(capacity int64) *UtteranceCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &UtteranceCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
	// A failed codec just means clips stay raw.
	if enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest)); err == nil {
		if dec, err := zstd.NewReader(nil); err == nil {
			c.enc = enc
			c.dec = dec
		}
	}
	return c
}

// Key derives a stable cache key from the utterance text and the voice
// parameters that shape its rendering. Position does not participate since
// spatial gain is applied at playback, not at synthesis.
func Key(text, voiceID string, pitch, rate float64) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.3f|%.3f", text, voiceID, pitch, rate)))
	return hex.EncodeToString(h[:16])
}

// Get returns the cached entry and promotes it to most recently used.
func (c *UtteranceCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return Entry{}, false
	}

	item := elem.Value.(*cacheItem)
	entry := item.entry
	if item.packed != nil {
		samples, err := unpackSamples(c.dec, item.packed, item.frames)
		if err != nil {
			// Corrupt frame, treat as a miss and drop it.
			c.removeElement(elem)
			c.stats.Misses++
			return Entry{}, false
		}
		entry = Entry{Samples: samples, SampleRate: item.rate}
	}

	c.eviction.MoveToFront(elem)
	item.hits++
	c.stats.Hits++
	return entry, true
}

// Put stores an entry, evicting least recently used clips until it fits.
func (c *UtteranceCache) Put(key string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sz := entry.byteSize()
	if sz > c.capacity {
		return ErrItemTooLarge
	}

	var packed []byte
	if c.enc != nil && sz >= compressThreshold {
		packed = packSamples(c.enc, entry.Samples)
	}
	stored := cacheItem{
		key:   key,
		entry: entry,
		size:  sz,
		added: time.Now(),
	}
	if packed != nil {
		stored.entry = Entry{}
		stored.packed = packed
		stored.frames = len(entry.Samples)
		stored.rate = entry.SampleRate
		stored.size = int64(len(packed))
	}

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		item := elem.Value.(*cacheItem)
		c.size += stored.size - item.size
		*item = stored
		return nil
	}

	for c.size+stored.size > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}

	elem := c.eviction.PushFront(&stored)
	c.items[key] = elem
	c.size += stored.size
	return nil
}

// Contains reports presence without touching LRU order.
func (c *UtteranceCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Clear drops everything.
func (c *UtteranceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
}

// Prune removes entries older than maxAge and returns how many were dropped.
func (c *UtteranceCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	elem := c.eviction.Back()
	for elem != nil {
		prev := elem.Prev()
		if item := elem.Value.(*cacheItem); item.added.Before(cutoff) {
			c.removeElement(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// Stats returns a snapshot of counters and occupancy.
func (c *UtteranceCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.size
	s.Capacity = c.capacity
	s.ItemCount = int64(len(c.items))
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *UtteranceCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
		c.stats.Evictions++
	}
}

func (c *UtteranceCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	item := elem.Value.(*cacheItem)
	delete(c.items, item.key)
	c.size -= item.size
}
