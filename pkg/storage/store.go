package storage

import (
	"github.com/cuemby/cloudio/pkg/types"
)

// Store defines the interface for migration history storage
type Store interface {
	SaveRecord(record *types.MigrationRecord) error
	GetRecord(id string) (*types.MigrationRecord, error)
	// ListRecords returns records newest first
	ListRecords() ([]*types.MigrationRecord, error)

	Close() error
}
