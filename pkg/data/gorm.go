package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spencer-p/xbtdash/pkg/log"
)

// sampleBatch bounds the rows per insert, keeping long casts under the
// postgres parameter limit.
const sampleBatch = 1000

// GormStore archives records in postgres.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects to the database at dsn, logging through the package
// logger.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(logWriter{}, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewGormStore migrates the schema and returns a store over db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&CastRecord{}, &Sample{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Save(ctx context.Context, rec *CastRecord) error {
	if err := rec.prepare(time.Now()); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Samples").Create(rec).Error; err != nil {
			return fmt.Errorf("failed to save cast %s: %w", rec.ID, err)
		}
		if len(rec.Samples) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rec.Samples, sampleBatch).Error; err != nil {
			return fmt.Errorf("failed to save samples of cast %s: %w", rec.ID, err)
		}
		return nil
	})
}

func (s *GormStore) Get(ctx context.Context, id string) (*CastRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var rec CastRecord
	err := s.db.WithContext(ctx).
		Preload("Samples", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq")
		}).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cast %s: %w", id, err)
	}
	return &rec, nil
}

type logWriter struct{}

func (logWriter) Printf(format string, args ...any) {
	log.Printf(format, args...)
}
