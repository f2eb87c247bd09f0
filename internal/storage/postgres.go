package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/wnt/pollhub/internal/models"
)

// StateSnapshot is the single-row table holding the serialized state.
// StoreKey carries the schema version, so a version bump starts from an
// empty snapshot instead of misreading an old payload.
type StateSnapshot struct {
	ID        uint   `gorm:"primarykey"`
	StoreKey  string `gorm:"size:64;uniqueIndex;not null"`
	Payload   []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// Connect opens the Postgres connection, configures pooling and migrates
// the snapshot table.
func Connect(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&StateSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// PostgresPersister stores the serialized state as a single snapshot row.
type PostgresPersister struct {
	db  *gorm.DB
	key string
}

// NewPostgresPersister wraps an open gorm connection.
func NewPostgresPersister(db *gorm.DB) *PostgresPersister {
	return &PostgresPersister{db: db, key: StoreKey()}
}

// Load reads the snapshot row for the current schema version.
func (p *PostgresPersister) Load(ctx context.Context) (models.AppState, bool, error) {
	var snapshot StateSnapshot
	err := p.db.WithContext(ctx).Where("store_key = ?", p.key).First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AppState{}, false, nil
		}
		return models.AppState{}, false, fmt.Errorf("failed to load state snapshot: %w", err)
	}

	state, err := Decode(snapshot.Payload)
	if err != nil {
		return models.AppState{}, false, err
	}
	return state, true, nil
}

// Save upserts the snapshot row keyed by the versioned store key.
func (p *PostgresPersister) Save(ctx context.Context, state models.AppState) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}

	snapshot := StateSnapshot{StoreKey: p.key, Payload: payload}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
	if err != nil {
		return fmt.Errorf("failed to save state snapshot: %w", err)
	}

	return nil
}
