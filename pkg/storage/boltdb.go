package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cuemby/cloudio/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketMigrations = []byte("migrations")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the history database in dataDir
func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "cloudio.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMigrations); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketMigrations, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// SaveRecord inserts or replaces a record by ID
func (s *BoltStore) SaveRecord(record *types.MigrationRecord) error {
	if record.ID == "" {
		return fmt.Errorf("migration record has no ID")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMigrations)
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put([]byte(record.ID), data)
	})
}

func (s *BoltStore) GetRecord(id string) (*types.MigrationRecord, error) {
	var record types.MigrationRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMigrations)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("migration record %s: %w", id, types.ErrNotFound)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *BoltStore) ListRecords() ([]*types.MigrationRecord, error) {
	var records []*types.MigrationRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMigrations)
		return b.ForEach(func(k, v []byte) error {
			var record types.MigrationRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}
