package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sankalpiq/voice-agent/internal/models"
)

// DatabaseStore mirrors registrations into Postgres
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) Name() string { return "postgres:registrations" }

func (d *DatabaseStore) Append(ctx context.Context, rec models.Record) error {
	if d.db == nil {
		return fmt.Errorf("database not connected")
	}
	if err := d.db.WithContext(ctx).Create(models.NewRegistration(rec)).Error; err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}
