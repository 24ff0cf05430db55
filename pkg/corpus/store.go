package corpus

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes for the prebuilt corpus database. Single-byte prefixes keep
// keys short and iteration cheap.
const (
	prefixClause = byte(0x01) // clause:id -> JSON(ExportNode)
	prefixMeta   = byte(0x02) // meta:name -> value
)

var metaCountKey = append([]byte{prefixMeta}, []byte("count")...)

// Store is a prebuilt, read-mostly corpus database backed by BadgerDB.
//
// The import command writes a loaded Snapshot into it once; serve opens it
// read-only and reconstructs the Snapshot at startup, which is much faster
// than re-decoding a large JSON export. The store holds corpus data only;
// user edits (the overlay) are deliberately memory-only and never written
// here or anywhere else.
type Store struct {
	db *badger.DB
}

// StoreOptions configures OpenStore.
type StoreOptions struct {
	// Dir is the badger database directory. Ignored when InMemory is set.
	Dir string
	// ReadOnly opens the database without write access (serve path).
	ReadOnly bool
	// InMemory runs badger without disk files. Used in tests.
	InMemory bool
}

// OpenStore opens (or creates) a prebuilt corpus database.
func OpenStore(opts StoreOptions) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Dir).
		WithLogger(nil).
		WithReadOnly(opts.ReadOnly)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").
			WithLogger(nil).
			WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("opening corpus store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteSnapshot persists every clause of the snapshot. Existing clause
// entries are replaced wholesale; the store always reflects exactly one
// corpus version.
func (s *Store) WriteSnapshot(snap *Snapshot) error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("clearing corpus store: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, n := range snap.Nodes() {
		data, err := json.Marshal(exportNode(n))
		if err != nil {
			return fmt.Errorf("encoding clause %d: %w", n.ID, err)
		}
		if err := wb.Set(clauseKey(n.ID), data); err != nil {
			return fmt.Errorf("writing clause %d: %w", n.ID, err)
		}
	}

	count := make([]byte, 8)
	binary.BigEndian.PutUint64(count, uint64(snap.Len()))
	if err := wb.Set(metaCountKey, count); err != nil {
		return fmt.Errorf("writing corpus metadata: %w", err)
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flushing corpus store: %w", err)
	}
	return nil
}

// ReadSnapshot reconstructs the Snapshot from the store. Returns an error
// if the store is empty.
func (s *Store) ReadSnapshot() (*Snapshot, error) {
	var nodes []*ClauseNode

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixClause}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var en ExportNode
				if err := json.Unmarshal(val, &en); err != nil {
					return fmt.Errorf("decoding stored clause: %w", err)
				}
				nodes = append(nodes, en.clause())
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

	if len(nodes) == 0 {
		return nil, fmt.Errorf("corpus store is empty (run import first): %w", ErrEmptyCorpus)
	}
	return NewSnapshot(nodes)
}

// Count returns the stored clause count without loading the corpus.
func (s *Store) Count() (int64, error) {
	var count int64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaCountKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			count = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// clauseKey builds the key for a clause id. Big-endian ids keep iteration
// in id order, which is also document order.
func clauseKey(id NodeID) []byte {
	key := make([]byte, 9)
	key[0] = prefixClause
	binary.BigEndian.PutUint64(key[1:], uint64(id))
	return key
}
