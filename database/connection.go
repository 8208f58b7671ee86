package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sankalpiq/voice-agent/internal/models"
)

// Connect opens the Postgres mirror database and migrates its tables
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Println("✅ Database connected successfully!")

	if err := db.AutoMigrate(&models.Registration{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Println("✅ Database migrations completed!")
	return db, nil
}

// Ping reports whether the database answers
func Ping(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
