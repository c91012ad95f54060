// Package storage provides reference hostport.KVStore adapters: an
// in-memory store for tests and the demo harness, and a LevelDB-backed
// store for anything wanting persistence across restarts. Neither
// implementation is part of the deterministic core; both exist purely to
// exercise native/rosca's Engine end to end.
package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// --- In-Memory DB (for testing and the demo harness) ---

type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{
		data: make(map[string][]byte),
	}
}

func (db *MemDB) Get(key []byte) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	cloned := append([]byte(nil), value...)
	return cloned, true, nil
}

func (db *MemDB) Set(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.data, string(key))
	return nil
}

// Close satisfies Close for callers that treat every store uniformly.
func (db *MemDB) Close() error { return nil }

// --- Persistent DB (LevelDB-backed) ---

// LevelDB is a persistent hostport.KVStore implementation.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// Get retrieves a value for a given key, reporting (nil, false, nil) when
// the key is absent rather than treating a miss as an error.
func (ldb *LevelDB) Get(key []byte) ([]byte, bool, error) {
	value, err := ldb.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set inserts or updates a key-value pair.
func (ldb *LevelDB) Set(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

// Delete removes a key-value pair.
func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

// Close closes the database connection.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}
