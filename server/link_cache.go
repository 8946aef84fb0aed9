package main

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/plugin"

	"github.com/relaybot/mattermost-plugin-link-relay/server/store/kvstore"
)

const (
	// RecentLinkMaxAge is the window within which a link counts as recently posted.
	RecentLinkMaxAge = 72 * time.Hour
	// SelfRepostGrace is the window within which an author reposting their own
	// link is still treated as a duplicate.
	SelfRepostGrace = 48 * time.Hour
)

// NormalizeLink produces the cache key form of a URL.
func NormalizeLink(link string) string {
	return strings.ToLower(strings.TrimSpace(link))
}

// LinkCache is the TTL-bounded mapping from normalized URL to the last poster
// of that link. The in-memory map is the working set; every mutation is also
// persisted through the KV store, which is loaded once at startup.
//
// Lookup-then-record runs under a single mutex so two near-simultaneous posts
// of the same link cannot both pass the duplicate check, and the durable
// insert is an atomic compare-and-swap as a cross-instance safety net.
type LinkCache struct {
	api   plugin.API
	store kvstore.KVStore

	mu      sync.Mutex
	entries map[string]*kvstore.LinkRecord

	maxAge    time.Duration
	selfGrace time.Duration
	now       func() time.Time
}

// NewLinkCache creates a cache and loads the persisted records. A malformed or
// unreadable store yields an empty cache, never an error.
func NewLinkCache(api plugin.API, store kvstore.KVStore) *LinkCache {
	c := &LinkCache{
		api:       api,
		store:     store,
		entries:   make(map[string]*kvstore.LinkRecord),
		maxAge:    RecentLinkMaxAge,
		selfGrace: SelfRepostGrace,
		now:       time.Now,
	}

	records, err := store.ListLinkRecords()
	if err != nil {
		api.LogWarn("Failed to load persisted link records, starting empty", "error", err.Error())
		return c
	}
	c.entries = records
	api.LogInfo("Loaded link records", "count", len(records))

	return c
}

// Lookup returns the non-expired record for a normalized URL. Entries outside
// the max-age window behave as absent even if not yet swept.
func (c *LinkCache) Lookup(normURL string) (*kvstore.LinkRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(normURL)
}

func (c *LinkCache) lookupLocked(normURL string) (*kvstore.LinkRecord, bool) {
	record, ok := c.entries[normURL]
	if !ok {
		return nil, false
	}
	if c.now().Sub(record.Timestamp) > c.maxAge {
		return nil, false
	}
	return record, true
}

// CheckAndRecord evaluates the duplicate policy for a link under both its
// original and transformed normalized forms, and, when the link is not a
// duplicate, records it under both forms before returning. The whole operation
// holds the cache lock so concurrent posts of the same link serialize here.
func (c *LinkCache) CheckAndRecord(origNorm, transNorm, messageID, authorID string) (bool, *kvstore.LinkRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()

	for _, norm := range normForms(origNorm, transNorm) {
		if record, ok := c.lookupLocked(norm); ok && c.isDuplicate(record, authorID) {
			return true, record
		}
	}

	record := &kvstore.LinkRecord{
		Timestamp: c.now(),
		MessageID: messageID,
		AuthorID:  authorID,
	}

	for _, norm := range normForms(origNorm, transNorm) {
		entry := *record
		entry.URL = norm

		if _, existed := c.entries[norm]; !existed {
			inserted, err := c.store.InsertLinkRecord(norm, &entry)
			if err != nil {
				c.api.LogWarn("Failed to persist link record", "url", norm, "error", err.Error())
			} else if !inserted {
				// Another instance recorded this link between our load and now.
				if stored, err := c.store.GetLinkRecord(norm); err == nil && stored != nil {
					c.entries[norm] = stored
					if c.isDuplicate(stored, authorID) {
						return true, stored
					}
				}
				continue
			}
		} else if err := c.store.SetLinkRecord(norm, &entry); err != nil {
			c.api.LogWarn("Failed to persist link record", "url", norm, "error", err.Error())
		}

		c.entries[norm] = &entry
	}

	return false, nil
}

// isDuplicate applies the duplicate policy to a non-expired record.
func (c *LinkCache) isDuplicate(record *kvstore.LinkRecord, authorID string) bool {
	if c.now().Sub(record.Timestamp) > c.maxAge {
		return false
	}
	// Legacy records without an author are duplicates for everyone.
	if record.AuthorID == "" || authorID == "" {
		return true
	}
	if record.AuthorID == authorID {
		return c.now().Sub(record.Timestamp) < c.selfGrace
	}
	return true
}

// Record unconditionally stores the link under both normalized forms,
// overwriting any existing record. Used for a message's secondary links, which
// are tracked for duplicate detection without the primary's duplicate check.
func (c *LinkCache) Record(origNorm, transNorm, messageID, authorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record := &kvstore.LinkRecord{
		Timestamp: c.now(),
		MessageID: messageID,
		AuthorID:  authorID,
	}

	for _, norm := range normForms(origNorm, transNorm) {
		entry := *record
		entry.URL = norm
		if err := c.store.SetLinkRecord(norm, &entry); err != nil {
			c.api.LogWarn("Failed to persist link record", "url", norm, "error", err.Error())
		}
		c.entries[norm] = &entry
	}
}

// Rebind points the records for the given normalized forms at a new message,
// once the relayed copy exists and the source message is about to go away.
func (c *LinkCache) Rebind(messageID string, norms ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, norm := range norms {
		record, ok := c.entries[norm]
		if !ok {
			continue
		}
		record.MessageID = messageID
		if err := c.store.SetLinkRecord(norm, record); err != nil {
			c.api.LogWarn("Failed to persist link record", "url", norm, "error", err.Error())
		}
	}
}

// Forget removes the given normalized forms, both from memory and the store.
// Used to roll back a record when the relay post itself fails.
func (c *LinkCache) Forget(norms ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, norm := range norms {
		if norm == "" {
			continue
		}
		delete(c.entries, norm)
		if err := c.store.DeleteLinkRecord(norm); err != nil {
			c.api.LogWarn("Failed to delete link record", "url", norm, "error", err.Error())
		}
	}
}

// Cleanup physically removes every entry older than the max-age window and
// returns how many were removed.
func (c *LinkCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleanupLocked()
}

func (c *LinkCache) cleanupLocked() int {
	now := c.now()
	removed := 0
	for norm, record := range c.entries {
		if now.Sub(record.Timestamp) > c.maxAge {
			delete(c.entries, norm)
			if err := c.store.DeleteLinkRecord(norm); err != nil {
				c.api.LogWarn("Failed to delete expired link record", "url", norm, "error", err.Error())
			}
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries, expired or not.
func (c *LinkCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Recent returns up to n non-expired records, newest first.
func (c *LinkCache) Recent(n int) []*kvstore.LinkRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]*kvstore.LinkRecord, 0, len(c.entries))
	for _, record := range c.entries {
		if c.now().Sub(record.Timestamp) <= c.maxAge {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records
}

// normForms returns the distinct, non-empty normalized forms of a link.
func normForms(origNorm, transNorm string) []string {
	if transNorm == "" || transNorm == origNorm {
		return []string{origNorm}
	}
	return []string{origNorm, transNorm}
}
