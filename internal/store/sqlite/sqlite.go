package sqlite

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"aminashop/backend/internal/store"
)

type documentRow struct {
	Key       string `gorm:"primaryKey"`
	Body      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (documentRow) TableName() string {
	return "app_documents"
}

// Store keeps the document in a single-file SQLite database, for shops
// running without a database server.
type Store struct {
	db  *gorm.DB
	key string
}

func New(dsn string, key string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, err
	}
	if key == "" {
		key = "appState"
	}
	return &Store{db: db, key: key}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var row documentRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", s.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Body, nil
}

func (s *Store) Save(ctx context.Context, body []byte) error {
	row := documentRow{Key: s.key, Body: body, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
}
