// internal/infrastructure/storage/leveldb/store.go
package leveldb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Store is a durable local key-value store on disk
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the database at path
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Get returns the value for key and whether it exists
func (s *Store) Get(key string) ([]byte, bool, error) {
	value, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Put overwrites the value for key, syncing it to disk before returning
func (s *Store) Put(key string, value []byte) error {
	return s.db.Put([]byte(key), value, &opt.WriteOptions{Sync: true})
}

// Delete removes key
func (s *Store) Delete(key string) error {
	return s.db.Delete([]byte(key), nil)
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
