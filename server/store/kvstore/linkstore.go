package kvstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mattermost/mattermost/server/public/pluginapi"
	"github.com/pkg/errors"
)

const (
	linkKeyPrefix   = "link_"
	listKeysPerPage = 100
)

// Client implements KVStore on top of the pluginapi KV service.
type Client struct {
	client *pluginapi.Client
}

// NewKVStore wraps the pluginapi client in the KVStore interface.
func NewKVStore(client *pluginapi.Client) KVStore {
	return &Client{
		client: client,
	}
}

// linkKey hashes the normalized URL to keep the key within the KV store's
// length limit. The URL itself is recoverable from the stored record.
func linkKey(normURL string) string {
	hash := sha256.Sum256([]byte(normURL))
	return linkKeyPrefix + hex.EncodeToString(hash[:])
}

func (kv *Client) GetLinkRecord(normURL string) (*LinkRecord, error) {
	var data []byte
	if err := kv.client.KV.Get(linkKey(normURL), &data); err != nil {
		return nil, errors.Wrap(err, "failed to get link record")
	}
	if data == nil {
		return nil, nil
	}

	var record LinkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal link record")
	}
	return &record, nil
}

func (kv *Client) SetLinkRecord(normURL string, record *LinkRecord) error {
	if _, err := kv.client.KV.Set(linkKey(normURL), record); err != nil {
		return errors.Wrap(err, "failed to set link record")
	}
	return nil
}

func (kv *Client) InsertLinkRecord(normURL string, record *LinkRecord) (bool, error) {
	inserted, err := kv.client.KV.Set(linkKey(normURL), record, pluginapi.SetAtomic(nil))
	if err != nil {
		return false, errors.Wrap(err, "failed to insert link record")
	}
	return inserted, nil
}

func (kv *Client) ListLinkRecords() (map[string]*LinkRecord, error) {
	records := make(map[string]*LinkRecord)

	for page := 0; ; page++ {
		keys, err := kv.client.KV.ListKeys(page, listKeysPerPage)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list link record keys")
		}
		if len(keys) == 0 {
			break
		}

		for _, key := range keys {
			if len(key) <= len(linkKeyPrefix) || key[:len(linkKeyPrefix)] != linkKeyPrefix {
				continue
			}

			var data []byte
			if err := kv.client.KV.Get(key, &data); err != nil || data == nil {
				continue
			}
			var record LinkRecord
			if err := json.Unmarshal(data, &record); err != nil || record.URL == "" {
				// Malformed record: skip it rather than fail the load.
				continue
			}
			records[record.URL] = &record
		}

		if len(keys) < listKeysPerPage {
			break
		}
	}

	return records, nil
}

func (kv *Client) DeleteLinkRecord(normURL string) error {
	if err := kv.client.KV.Delete(linkKey(normURL)); err != nil {
		return errors.Wrap(err, "failed to delete link record")
	}
	return nil
}
