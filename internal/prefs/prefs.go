// ABOUTME: Small key-value preference store kept beside the database.
// ABOUTME: Backed by badger; holds flags such as catalog import completion.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/sirupsen/logrus"
)

// Store is a thread-safe preference store.
type Store struct {
	db *badger.DB
	mu sync.RWMutex
}

// Open opens or creates the preference store in dir.
func Open(dir string, log *logrus.Entry) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create prefs directory: %w", err)
	}
	return open(badger.DefaultOptions(dir).WithLogger(badgerLogger{log}))
}

// OpenInMemory opens a store that is discarded on Close.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Bool returns the flag stored under key, or false when unset.
func (s *Store) Bool(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v = len(val) == 1 && val[0] == 1
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

// SetBool stores a flag under key.
func (s *Store) SetBool(key string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	val := []byte{0}
	if v {
		val[0] = 1
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	}); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// badgerLogger routes badger's chatter through logrus, demoting info to debug.
type badgerLogger struct {
	log *logrus.Entry
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Tracef(format, args...)
}
