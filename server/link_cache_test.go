package main

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/relaybot/mattermost-plugin-link-relay/server/mocks"
	"github.com/relaybot/mattermost-plugin-link-relay/server/store/kvstore"
)

// newTestCache builds a cache over a permissive mock store, preloaded with the
// given records and pinned to the given clock.
func newTestCache(t *testing.T, records map[string]*kvstore.LinkRecord, now time.Time) *LinkCache {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockKVStore(ctrl)
	store.EXPECT().ListLinkRecords().Return(records, nil)
	store.EXPECT().SetLinkRecord(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().InsertLinkRecord(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
	store.EXPECT().DeleteLinkRecord(gomock.Any()).Return(nil).AnyTimes()

	cache := NewLinkCache(setupAPI(), store)
	cache.now = func() time.Time { return now }
	return cache
}

func TestNormalizeLink(t *testing.T) {
	assert.Equal(t, "https://x.com/u/status/123", NormalizeLink("  https://X.com/u/Status/123 "))
}

func TestCheckAndRecordDuplicatePolicy(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	const link = "https://fxtwitter.com/u/status/123"

	tests := []struct {
		name          string
		recordAge     time.Duration
		recordAuthor  string
		posterID      string
		wantDuplicate bool
	}{
		{
			name:          "different author one minute later",
			recordAge:     time.Minute,
			recordAuthor:  "userA",
			posterID:      "userB",
			wantDuplicate: true,
		},
		{
			name:          "different author just inside the window",
			recordAge:     71*time.Hour + 59*time.Minute,
			recordAuthor:  "userA",
			posterID:      "userB",
			wantDuplicate: true,
		},
		{
			name:          "different author after expiry",
			recordAge:     72*time.Hour + time.Second,
			recordAuthor:  "userA",
			posterID:      "userB",
			wantDuplicate: false,
		},
		{
			name:          "same author inside the grace window",
			recordAge:     47*time.Hour + 59*time.Minute,
			recordAuthor:  "userA",
			posterID:      "userA",
			wantDuplicate: true,
		},
		{
			name:          "same author at the grace boundary",
			recordAge:     48 * time.Hour,
			recordAuthor:  "userA",
			posterID:      "userA",
			wantDuplicate: false,
		},
		{
			name:          "legacy record without author is duplicate for everyone",
			recordAge:     time.Hour,
			recordAuthor:  "",
			posterID:      "userB",
			wantDuplicate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &kvstore.LinkRecord{
				URL:       link,
				Timestamp: now.Add(-tt.recordAge),
				MessageID: "original",
				AuthorID:  tt.recordAuthor,
			}
			cache := newTestCache(t, map[string]*kvstore.LinkRecord{link: existing}, now)

			isDuplicate, record := cache.CheckAndRecord(link, link, "repost", tt.posterID)

			assert.Equal(t, tt.wantDuplicate, isDuplicate)
			if tt.wantDuplicate {
				assert.Equal(t, "original", record.MessageID)
			} else {
				assert.Nil(t, record)
				// Not a duplicate, so the new post owns the record now.
				stored, ok := cache.Lookup(link)
				assert.True(t, ok)
				assert.Equal(t, "repost", stored.MessageID)
				assert.Equal(t, tt.posterID, stored.AuthorID)
			}
		})
	}
}

func TestCheckAndRecordCoversBothForms(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	orig := "https://x.com/u/status/123"
	trans := "https://fxtwitter.com/u/status/123"

	cache := newTestCache(t, map[string]*kvstore.LinkRecord{}, now)

	isDuplicate, _ := cache.CheckAndRecord(orig, trans, "first", "userA")
	assert.False(t, isDuplicate)

	// Posting the already-transformed form is a repost of the original.
	isDuplicate, record := cache.CheckAndRecord(trans, trans, "second", "userB")
	assert.True(t, isDuplicate)
	assert.Equal(t, "first", record.MessageID)
}

func TestLookupExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	records := map[string]*kvstore.LinkRecord{
		"https://fresh.example":   {URL: "https://fresh.example", Timestamp: now.Add(-(71*time.Hour + 59*time.Minute))},
		"https://expired.example": {URL: "https://expired.example", Timestamp: now.Add(-(72*time.Hour + time.Second))},
	}
	cache := newTestCache(t, records, now)

	_, ok := cache.Lookup("https://fresh.example")
	assert.True(t, ok)

	_, ok = cache.Lookup("https://expired.example")
	assert.False(t, ok)
}

func TestCleanupRemovesOnlyExpiredEntries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	records := map[string]*kvstore.LinkRecord{
		"https://fresh.example":   {URL: "https://fresh.example", Timestamp: now.Add(-time.Hour)},
		"https://expired.example": {URL: "https://expired.example", Timestamp: now.Add(-73 * time.Hour)},
	}
	cache := newTestCache(t, records, now)

	removed := cache.Cleanup()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, cache.Size())
	_, ok := cache.Lookup("https://fresh.example")
	assert.True(t, ok)
}

func TestForgetRollsBackRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := newTestCache(t, map[string]*kvstore.LinkRecord{}, now)

	orig := "https://x.com/u/status/123"
	trans := "https://fxtwitter.com/u/status/123"
	isDuplicate, _ := cache.CheckAndRecord(orig, trans, "msg", "userA")
	assert.False(t, isDuplicate)

	cache.Forget(orig, trans)

	isDuplicate, _ = cache.CheckAndRecord(orig, trans, "msg2", "userB")
	assert.False(t, isDuplicate)
}

func TestRecordOverwritesWithoutDuplicateCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	const link = "https://fxtwitter.com/u/status/123"

	existing := &kvstore.LinkRecord{URL: link, Timestamp: now.Add(-time.Minute), MessageID: "first", AuthorID: "userA"}
	cache := newTestCache(t, map[string]*kvstore.LinkRecord{link: existing}, now)

	// Record skips the duplicate policy entirely and just overwrites.
	cache.Record(link, link, "second", "userB")

	record, ok := cache.Lookup(link)
	assert.True(t, ok)
	assert.Equal(t, "second", record.MessageID)
	assert.Equal(t, "userB", record.AuthorID)
}

func TestRebindPointsRecordsAtRelayedMessage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := newTestCache(t, map[string]*kvstore.LinkRecord{}, now)

	orig := "https://x.com/u/status/123"
	trans := "https://fxtwitter.com/u/status/123"
	cache.CheckAndRecord(orig, trans, "source-post", "userA")

	cache.Rebind("relayed-post", orig, trans)

	record, ok := cache.Lookup(trans)
	assert.True(t, ok)
	assert.Equal(t, "relayed-post", record.MessageID)
}

func TestCheckAndRecordLostInsertRace(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	const link = "https://fxtwitter.com/u/status/123"

	ctrl := gomock.NewController(t)
	store := mocks.NewMockKVStore(ctrl)
	store.EXPECT().ListLinkRecords().Return(map[string]*kvstore.LinkRecord{}, nil)

	// Another instance wins the atomic insert; the stored record belongs to a
	// different author, so the post is a duplicate after all.
	winner := &kvstore.LinkRecord{URL: link, Timestamp: now.Add(-time.Minute), MessageID: "winner", AuthorID: "userA"}
	store.EXPECT().InsertLinkRecord(link, gomock.Any()).Return(false, nil)
	store.EXPECT().GetLinkRecord(link).Return(winner, nil)

	cache := NewLinkCache(setupAPI(), store)
	cache.now = func() time.Time { return now }

	isDuplicate, record := cache.CheckAndRecord(link, link, "loser", "userB")

	assert.True(t, isDuplicate)
	assert.Equal(t, "winner", record.MessageID)
}
