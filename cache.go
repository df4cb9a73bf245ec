package bsql

import (
	"bytes"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Fingerprint identifies a statement by its SQL text and arguments.
type Fingerprint uint64

// String returns the fingerprint in hex.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// NewFingerprint hashes a statement. Arguments are encoded with msgpack,
// so values of different types never collide (1 and "1" differ).
func NewFingerprint(query string, args []any) (Fingerprint, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.EncodeString(query); err != nil {
		return 0, fmt.Errorf("bsql: fingerprint: %w", err)
	}
	if err := enc.EncodeArrayLen(len(args)); err != nil {
		return 0, fmt.Errorf("bsql: fingerprint: %w", err)
	}
	for _, a := range args {
		if err := enc.Encode(a); err != nil {
			return 0, fmt.Errorf("bsql: fingerprint: %w", err)
		}
	}
	return Fingerprint(xxhash.Sum64(buf.Bytes())), nil
}

// ResultSet is a cached query result. It is shared between readers and
// must not be modified.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// copyRows returns rows that the caller may modify.
func (rs *ResultSet) copyRows() [][]any {
	rows := make([][]any, len(rs.Rows))
	for i, r := range rs.Rows {
		rows[i] = slices.Clone(r)
	}
	return rows
}

type cacheEntry struct {
	at     time.Time
	result *ResultSet
	// tables read by the statement, nil when unknown.
	tables []string
}

// Default cache settings.
const (
	DefaultCacheTTL        = 5 * time.Second
	DefaultCachePurgeEvery = 10
)

// QueryCache is a time-boxed cache of query results keyed by fingerprint.
// Expired entries are swept on every purgeEvery-th access instead of on a
// timer, so an expired entry of another key may survive up to
// purgeEvery-1 accesses; Get never returns an expired entry.
//
// QueryCache is safe for concurrent use.
type QueryCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	purgeEvery int
	accesses   int
	now        func() time.Time
	entries    map[Fingerprint]*cacheEntry
}

// NewQueryCache returns a cache with the given time-to-live and purge
// period. Non-positive values select the defaults. A nil clock uses
// time.Now.
func NewQueryCache(ttl time.Duration, purgeEvery int, now func() time.Time) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if purgeEvery <= 0 {
		purgeEvery = DefaultCachePurgeEvery
	}
	if now == nil {
		now = time.Now
	}
	return &QueryCache{
		ttl:        ttl,
		purgeEvery: purgeEvery,
		now:        now,
		entries:    make(map[Fingerprint]*cacheEntry),
	}
}

// TTL returns the time-to-live of entries.
func (c *QueryCache) TTL() time.Duration { return c.ttl }

// Get returns the result stored under fp if it is younger than the TTL.
func (c *QueryCache) Get(fp Fingerprint) (*ResultSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.access()
	e, ok := c.entries[fp]
	if !ok {
		return nil, false
	}
	if now.Sub(e.at) >= c.ttl {
		delete(c.entries, fp)
		return nil, false
	}
	return e.result, true
}

// Put stores a result read from the given tables. A nil tables list marks
// the entry as reading unknown tables; it is evicted by any invalidation.
func (c *QueryCache) Put(fp Fingerprint, rs *ResultSet, tables []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.access()
	c.entries[fp] = &cacheEntry{at: now, result: rs, tables: tables}
}

// Invalidate evicts every entry that read one of the tables and returns the
// number of evicted entries.
func (c *QueryCache) Invalidate(tables ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for fp, e := range c.entries {
		if e.tables == nil || slices.ContainsFunc(e.tables, func(t string) bool {
			return slices.Contains(tables, t)
		}) {
			delete(c.entries, fp)
			n++
		}
	}
	return n
}

// Clear evicts all entries.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of stored entries, expired ones included.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// access counts an access, sweeps expired entries when due and returns the
// current time. c.mu must be held.
func (c *QueryCache) access() time.Time {
	now := c.now()
	c.accesses++
	if c.accesses%c.purgeEvery == 0 {
		for fp, e := range c.entries {
			if now.Sub(e.at) >= c.ttl {
				delete(c.entries, fp)
			}
		}
	}
	return now
}
