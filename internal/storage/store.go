// Package storage keeps the dashboard session in a bbolt file.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	prefsBucket      = []byte("prefs")
	transcriptBucket = []byte("transcript")

	sessionKey = []byte("session")
)

// ErrNoPrefs is returned by GetPrefs before the first SavePrefs.
var ErrNoPrefs = errors.New("no saved preferences")

type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the database at dbPath, creating its directory.
// A zero timeout means one second.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{prefsBucket, transcriptBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.db.Path()
}

func (s *Store) SavePrefs(p *Prefs) error {
	p.UpdatedAt = time.Now()
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(prefsBucket).Put(sessionKey, data)
	})
}

func (s *Store) GetPrefs() (*Prefs, error) {
	var p Prefs
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(prefsBucket).Get(sessionKey)
		if data == nil {
			return ErrNoPrefs
		}
		return json.Unmarshal(data, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func seqKey(n uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, n)
	return key
}

// SaveTranscript replaces the stored transcript with the last limit entries.
// A limit of zero or less keeps everything.
func (s *Store) SaveTranscript(entries []ChatEntry, limit int) error {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(transcriptBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(transcriptBucket)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.At.IsZero() {
				e.At = time.Now()
			}
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			if err := b.Put(seqKey(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTranscript returns up to limit of the newest entries, oldest first.
// A limit of zero or less returns everything.
func (s *Store) GetTranscript(limit int) ([]ChatEntry, error) {
	var entries []ChatEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(transcriptBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var e ChatEntry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, err
}

func (s *Store) ClearTranscript() error {
	return s.SaveTranscript(nil, 0)
}
