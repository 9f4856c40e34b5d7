// Package outbox keeps reservation events on local disk until the broker
// acknowledges them.
package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBucket = "events"

// ErrEmptyRoutingKey is returned when an entry has nowhere to go.
var ErrEmptyRoutingKey = errors.New("outbox: routing key is required")

// Store is a FIFO of entries backed by a BoltDB file. Keys sort by enqueue
// time, so a cursor walk yields the oldest entries first.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open creates the BoltDB file at path if needed and ensures the bucket exists.
func Open(path, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("outbox dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, bucket: []byte(bucket)}, nil
}

// Append persists entry at the tail of the queue.
func (s *Store) Append(entry Entry) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if entry.RoutingKey == "" {
		return ErrEmptyRoutingKey
	}
	entry.normalize()
	entry.key = entryKey(entry)

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(entry.key, payload)
	})
}

// Peek returns up to limit of the oldest entries without removing them.
// Undecodable records are skipped.
func (s *Store) Peek(limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(entries) < limit; k, v = c.Next() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entry.key = append([]byte(nil), k...)
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

// Ack removes a published entry.
func (s *Store) Ack(entry Entry) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	key := entry.key
	if len(key) == 0 {
		key = entryKey(entry)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(key)
	})
}

// Retry records a failed attempt in place. The entry keeps its position so
// ordering across events of one reservation is preserved.
func (s *Store) Retry(entry Entry, cause error) (Entry, error) {
	if s == nil || s.db == nil {
		return entry, bolt.ErrDatabaseNotOpen
	}
	entry.Attempts++
	if cause != nil {
		entry.LastError = cause.Error()
	}
	if len(entry.key) == 0 {
		entry.key = entryKey(entry)
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return entry, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(entry.key, payload)
	})
	return entry, err
}

// Len returns the number of pending entries.
func (s *Store) Len() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Prune drops entries enqueued before cutoff and reports how many were removed.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			if !entry.EnqueuedAt.Before(cutoff) {
				// keys are time ordered
				break
			}
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for the health endpoint.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

func entryKey(entry Entry) []byte {
	return []byte(fmt.Sprintf("%020d_%s", entry.EnqueuedAt.UnixNano(), entry.ID))
}
