package kvstore

import "time"

// LinkRecord is the durable form of one relayed link, keyed by its normalized
// URL. AuthorID is optional for backward compatibility with records written
// before authors were tracked.
type LinkRecord struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	MessageID string    `json:"message_id"`
	AuthorID  string    `json:"author_id,omitempty"`
}

// KVStore persists link records. We expose our calls to the KVStore pluginapi
// methods through this interface for testability and stability.
type KVStore interface {
	// GetLinkRecord returns the record for a normalized URL, or nil when absent.
	GetLinkRecord(normURL string) (*LinkRecord, error)

	// SetLinkRecord writes (or overwrites) the record for a normalized URL.
	SetLinkRecord(normURL string, record *LinkRecord) error

	// InsertLinkRecord writes the record only if no record exists for the
	// normalized URL, atomically. It returns false when an existing record won
	// the race.
	InsertLinkRecord(normURL string, record *LinkRecord) (bool, error)

	// ListLinkRecords returns every stored record keyed by normalized URL.
	// Unreadable records are skipped, never fatal.
	ListLinkRecords() (map[string]*LinkRecord, error)

	// DeleteLinkRecord removes the record for a normalized URL.
	DeleteLinkRecord(normURL string) error
}
