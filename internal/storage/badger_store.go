// Package storage is a small JSON-over-badger entity store. Keys are
// "<prefix>:<id>" so several stores can share one database.
package storage

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"svc/internal/errors"

	"github.com/dgraph-io/badger/v4"
)

// Entity is anything storable under a string id.
type Entity interface {
	GetID() string
}

// Open opens a badger database at path. An empty path opens an in-memory
// database.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
		opts.Dir = ""
		opts.ValueDir = ""
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", path, err)
	}
	return db, nil
}

// BadgerStore provides create, read and list operations for one prefix.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	return &BadgerStore{
		db:     db,
		prefix: prefix,
	}
}

func (s *BadgerStore) makeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", s.prefix, id))
}

// Create stores entity. An existing id is an errors.ErrConflict error.
func (s *BadgerStore) Create(entity Entity) error {
	if entity.GetID() == "" {
		return errors.InvalidArgument("entity ID cannot be empty")
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshaling entity: %w", err)
	}

	key := s.makeKey(entity.GetID())
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return errors.Conflict("%s %s already exists", s.prefix, entity.GetID())
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
}

// Get decodes the entity stored under id into entity.
func (s *BadgerStore) Get(id string, entity Entity) error {
	key := s.makeKey(id)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, entity)
		})
	})

	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.NotFound("%s %s not found", s.prefix, id)
	}
	return err
}

// Put stores entity, replacing any previous value.
func (s *BadgerStore) Put(entity Entity) error {
	if entity.GetID() == "" {
		return errors.InvalidArgument("entity ID cannot be empty")
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshaling entity: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.makeKey(entity.GetID()), data)
	})
}

// Delete removes id. A missing id is an errors.ErrNotFound error.
func (s *BadgerStore) Delete(id string) error {
	key := s.makeKey(id)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.NotFound("%s %s not found", s.prefix, id)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// List decodes every value under the prefix, in key order, into results,
// which must point to a slice.
func (s *BadgerStore) List(results interface{}) error {
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(s.prefix + ":")
		values := []json.RawMessage{}

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				values = append(values, append([]byte(nil), val...))
				return nil
			})
			if err != nil {
				return err
			}
		}

		data, err := json.Marshal(values)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, results)
	})

	if err != nil {
		return fmt.Errorf("listing %s: %w", s.prefix, err)
	}
	return nil
}

// Count returns the number of keys under the prefix.
func (s *BadgerStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(s.prefix + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
