package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"indigo/internal/domain"
	"indigo/internal/events"
	"indigo/internal/metrics"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// ErrItemNotFound is returned by partial updates of a missing record.
var ErrItemNotFound = errors.New("menu item not found")

// DB is the SQLite catalog store.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
	events domain.EventPublisher
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Один writer: SQLite не любит конкурентные записи
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return &DB{DB: sqlDB, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            price TEXT NOT NULL,
            category TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            available BOOLEAN NOT NULL DEFAULT 1,
            image TEXT NOT NULL DEFAULT '',
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_menu_items_category ON menu_items(category)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// SetEventPublisher wires the bus that hears about successful writes.
func (db *DB) SetEventPublisher(publisher domain.EventPublisher) {
	db.events = publisher
}

func (db *DB) written(op, eventType string, payload events.CatalogEventPayload, err error) error {
	return afterWrite(db.events, db.logger, op, eventType, payload, err)
}

func afterWrite(
	publisher domain.EventPublisher,
	logger *zerolog.Logger,
	op, eventType string,
	payload events.CatalogEventPayload,
	err error,
) error {
	metrics.ObserveWrite(op, err)
	if err != nil {
		return err
	}
	if publisher == nil {
		return nil
	}
	if perr := publisher.PublishJSON(eventType, payload); perr != nil {
		logger.Warn().Err(perr).Str("event", eventType).Msg("publish catalog event")
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func now() time.Time {
	return time.Now().UTC()
}
