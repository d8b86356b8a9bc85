// Package feedback persists delivery-outcome reports per domain. The store
// is append-only from the engine's point of view; retention is an external
// concern.
package feedback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketOutcomes = []byte("outcomes")

// Record is one reported delivery outcome for a domain.
type Record struct {
	Domain    string    `json:"domain"`
	Delivered bool      `json:"delivered"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a bbolt-backed outcome log. Many analyses may read while
// submissions append; bbolt's single-writer/multi-reader transactions give
// the eventual-consistency contract the engine needs without any locking
// here.
type Store struct {
	db *bbolt.DB
}

// Open creates or opens the store at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open feedback db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketOutcomes)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record appends one outcome. Keys are domain-prefixed and time-ordered so
// a domain's records form one contiguous, chronologically sorted range.
func (s *Store) Record(domain string, delivered bool, reference string) error {
	rec := Record{
		Domain:    domain,
		Delivered: delivered,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := keyFor(domain, rec.CreatedAt)

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketOutcomes)
		// Nanosecond keys can still collide under concurrent appends for
		// the same domain; bump with the bucket sequence until free.
		for b.Get(key) != nil {
			seq, _ := b.NextSequence()
			key = append(key, byte(seq))
		}
		return b.Put(key, val)
	})
}

// Recent returns up to n newest records for the domain, newest first.
func (s *Store) Recent(domain string, n int) ([]Record, error) {
	var out []Record
	prefix := append([]byte(domain), 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketOutcomes).Cursor()
		var all []Record
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			all = append(all, rec)
		}
		if len(all) > n {
			all = all[len(all)-n:]
		}
		for i := len(all) - 1; i >= 0; i-- {
			out = append(out, all[i])
		}
		return nil
	})
	return out, err
}

// Summarize implements the engine's FeedbackSource contract: outcome counts
// over the newest window records for the domain.
func (s *Store) Summarize(domain string, window int) (total int, delivered int, err error) {
	recs, err := s.Recent(domain, window)
	if err != nil {
		return 0, 0, err
	}
	for _, r := range recs {
		total++
		if r.Delivered {
			delivered++
		}
	}
	return total, delivered, nil
}

func keyFor(domain string, t time.Time) []byte {
	key := append([]byte(domain), 0)
	return append(key, []byte(t.Format(time.RFC3339Nano))...)
}
