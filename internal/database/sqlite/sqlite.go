// Package sqlite provides an embedded template store backed by SQLite through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite" // Pure Go
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlog "gorm.io/gorm/logger"

	"github.com/kozaktomas/faceid/internal/config"
	"github.com/kozaktomas/faceid/internal/database"
	"github.com/kozaktomas/faceid/internal/embedding"
)

// BackendName identifies this backend in the database registry.
const BackendName = "sqlite"

// templateRecord is the row layout. Embeddings are stored as little-endian float32 blobs.
type templateRecord struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	NameKey   string    `gorm:"index;not null"`
	Embedding []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (templateRecord) TableName() string {
	return "templates"
}

// Store is a database.TemplateWriter on top of a SQLite file.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database file and migrates the schema.
func Open(cfg *config.SQLiteConfig) (*Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	gormLogger := gormlog.New(
		log.StandardLogger(),
		gormlog.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlog.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.Path, err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY under concurrent requests.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&templateRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	log.WithField("path", cfg.Path).Debug("SQLite template store ready")
	return &Store{db: db}, nil
}

// Initialize opens the store and registers it as the active template store.
func Initialize(cfg *config.SQLiteConfig) (*Store, error) {
	store, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	database.RegisterBackend(BackendName, func() database.TemplateWriter { return store })
	return store, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("closing sqlite database: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("closing sqlite database: %w", err)
	}
	return nil
}

// Get retrieves a template by ID.
func (s *Store) Get(ctx context.Context, id string) (*database.EnrolledTemplate, error) {
	var rec templateRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("template %s: %w", id, database.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}

	tpl, err := rec.toTemplate()
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// FindByName returns templates whose normalized name matches.
func (s *Store) FindByName(ctx context.Context, name string) ([]database.EnrolledTemplate, error) {
	var records []templateRecord
	err := s.db.WithContext(ctx).
		Where("name_key = ?", database.NameKey(name)).
		Order("created_at, id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query templates by name: %w", err)
	}
	return toTemplates(records)
}

// List returns every template ordered by creation time.
func (s *Store) List(ctx context.Context) ([]database.EnrolledTemplate, error) {
	var records []templateRecord
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	return toTemplates(records)
}

// Count returns the number of enrolled templates.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&templateRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return int(count), nil
}

// Save inserts the template or replaces the one with the same ID.
func (s *Store) Save(ctx context.Context, tpl *database.EnrolledTemplate) error {
	if err := tpl.Validate(); err != nil {
		return err
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}

	blob, err := embedding.Embedding(tpl.Embedding).MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode template %s: %w", tpl.ID, err)
	}

	rec := templateRecord{
		ID:        tpl.ID,
		Name:      tpl.Name,
		NameKey:   tpl.NameKey(),
		Embedding: blob,
		CreatedAt: tpl.CreatedAt,
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save template %s: %w", tpl.ID, err)
	}
	return nil
}

// Delete removes a template by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&templateRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete template %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("template %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// DeleteAll removes every template.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	result := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&templateRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete templates: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *templateRecord) toTemplate() (database.EnrolledTemplate, error) {
	var emb embedding.Embedding
	if err := emb.UnmarshalBinary(r.Embedding); err != nil {
		return database.EnrolledTemplate{}, fmt.Errorf("decode template %s: %w", r.ID, err)
	}

	return database.EnrolledTemplate{
		ID:        r.ID,
		Name:      r.Name,
		Embedding: emb,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

func toTemplates(records []templateRecord) ([]database.EnrolledTemplate, error) {
	templates := make([]database.EnrolledTemplate, 0, len(records))
	for i := range records {
		tpl, err := records[i].toTemplate()
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}
