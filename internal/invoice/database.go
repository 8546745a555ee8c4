package invoice

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const exportBucketName = "exports"

// DB defines the interface for export-history operations. Only artifact
// metadata is stored; invoice records are never persisted.
type DB interface {
	// SaveExport saves an export record
	SaveExport(record *ExportRecord) error

	// GetExport retrieves an export record by ID
	GetExport(id string) (*ExportRecord, error)

	// ListExports returns all export records, newest first
	ListExports() ([]*ExportRecord, error)

	// DeleteExport removes an export record
	DeleteExport(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(exportBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveExport saves an export record to the database
func (b *BoltDB) SaveExport(record *ExportRecord) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(exportBucketName))
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling export record: %w", err)
		}
		return bucket.Put([]byte(record.ID), data)
	})
}

// GetExport retrieves an export record by ID
func (b *BoltDB) GetExport(id string) (*ExportRecord, error) {
	var record *ExportRecord
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(exportBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("export not found: %s", id)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListExports returns all export records, newest first
func (b *BoltDB) ListExports() ([]*ExportRecord, error) {
	records := make([]*ExportRecord, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(exportBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var record ExportRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshaling export record: %w", err)
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// DeleteExport removes an export record from the database
func (b *BoltDB) DeleteExport(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(exportBucketName))
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
