package store

import (
	"context"
	"encoding/json"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// Data Type       Prefix   Key Format      Value Type
// ====================================================
// Session Header  "s:"     s:<uploadID>    Header (JSON)

const prefixSession = "s:"

// keySession generates a key for a session header: "s:<uploadID>"
func keySession(id string) []byte {
	return []byte(prefixSession + id)
}

// BadgerStore persists session headers in a BadgerDB database.
type BadgerStore struct {
	db *badgerdb.DB
}

// NewBadgerStore opens (creating if necessary) the database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badgerdb.DefaultOptions(path)
	opts.Logger = nil

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// Put stores or replaces the header under its upload id.
func (s *BadgerStore) Put(ctx context.Context, header Header) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode session header: %w", err)
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Set(keySession(header.ID), data); err != nil {
			return fmt.Errorf("failed to store session header: %w", err)
		}
		return nil
	})
}

// Get returns the header for id, or ErrNotFound.
func (s *BadgerStore) Get(ctx context.Context, id string) (Header, error) {
	if err := ctx.Err(); err != nil {
		return Header{}, err
	}

	var header Header

	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keySession(id))
		if err == badgerdb.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &header)
		})
	})
	if err != nil {
		return Header{}, err
	}

	return header, nil
}

// Delete removes the header for id. Deleting an unknown id is a no-op.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(keySession(id))
	})
}

// List returns all stored headers in unspecified order.
func (s *BadgerStore) List(ctx context.Context) ([]Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var headers []Header

	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixSession)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var h Header
				if err := json.Unmarshal(val, &h); err != nil {
					return fmt.Errorf("failed to decode session header: %w", err)
				}
				headers = append(headers, h)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return headers, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
