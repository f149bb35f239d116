package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "points"

var (
	// ErrNotFound is returned when no record exists for an ID
	ErrNotFound = errors.New("no receipt found")

	// ErrDuplicateID is returned when a record already exists for an ID
	ErrDuplicateID = errors.New("receipt id already exists")
)

// Store defines the interface for points storage. Implementations must be
// safe for concurrent use.
type Store interface {
	// Insert saves a new record. It fails with ErrDuplicateID if the ID is taken.
	Insert(record *Record) error

	// Get retrieves a record by ID. It fails with ErrNotFound if absent.
	Get(id string) (*Record, error)

	// Close releases the store
	Close() error
}

// BoltStore implements the Store interface using BoltDB
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) a BoltDB file at path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Insert saves a record unless its ID is already present
func (b *BoltStore) Insert(record *Record) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(record.ID)) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		return bucket.Put([]byte(record.ID), data)
	})
}

// Get retrieves a record by ID
func (b *BoltStore) Get(id string) (*Record, error) {
	var record *Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Close closes the database
func (b *BoltStore) Close() error {
	return b.db.Close()
}
