package database

import (
	"context"
	"fmt"

	"indigo/internal/domain"
	"indigo/internal/events"
	"indigo/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const pgUpsertItemSQL = `INSERT INTO menu_items (id, name, price, category, description, available, image, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, now())
              ON CONFLICT (id) DO UPDATE SET
                name = EXCLUDED.name,
                price = EXCLUDED.price,
                category = EXCLUDED.category,
                description = EXCLUDED.description,
                available = EXCLUDED.available,
                image = EXCLUDED.image,
                updated_at = EXCLUDED.updated_at`

// PGStore is the PostgreSQL catalog store.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *zerolog.Logger
	events domain.EventPublisher
}

func NewPGStore(ctx context.Context, dsn string, logger *zerolog.Logger) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS menu_items (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            price TEXT NOT NULL,
            category TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            available BOOLEAN NOT NULL DEFAULT TRUE,
            image TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Msg("Postgres catalog store initialized")
	return &PGStore{pool: pool, logger: logger}, nil
}

func (s *PGStore) SetEventPublisher(publisher domain.EventPublisher) {
	s.events = publisher
}

func (s *PGStore) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, price, category, description, available, image FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		var category string
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &category, &item.Description, &item.Available, &item.Image); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		item.Category = models.CategoryKey(category)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w", err)
	}
	return items, nil
}

func (s *PGStore) SetItem(ctx context.Context, item models.MenuItem) error {
	_, err := s.pool.Exec(ctx, pgUpsertItemSQL, upsertArgs(item)...)
	if err != nil {
		err = fmt.Errorf("failed to save menu item %s: %w", item.ID, err)
	}
	return afterWrite(s.events, s.logger, "set", events.EventItemSaved, events.CatalogEventPayload{ItemID: item.ID}, err)
}

func (s *PGStore) UpdateAvailability(ctx context.Context, id string, available bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE menu_items SET available = $1, updated_at = now() WHERE id = $2`, available, id)
	switch {
	case err != nil:
		err = fmt.Errorf("failed to update availability of %s: %w", id, err)
	case tag.RowsAffected() == 0:
		err = fmt.Errorf("update availability of %s: %w", id, ErrItemNotFound)
	}
	return afterWrite(s.events, s.logger, "availability", events.EventItemAvailabilityChanged,
		events.CatalogEventPayload{ItemID: id, Available: &available}, err)
}

func (s *PGStore) DeleteItem(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		err = fmt.Errorf("failed to delete menu item %s: %w", id, err)
	}
	return afterWrite(s.events, s.logger, "delete", events.EventItemDeleted, events.CatalogEventPayload{ItemID: id}, err)
}

func (s *PGStore) SeedItems(ctx context.Context, items []models.MenuItem) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, item := range items {
			batch.Queue(pgUpsertItemSQL, upsertArgs(item)...)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		err = fmt.Errorf("failed to seed menu items: %w", err)
	}
	return afterWrite(s.events, s.logger, "seed", events.EventCatalogSeeded, events.CatalogEventPayload{ItemIDs: itemIDs(items)}, err)
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func upsertArgs(item models.MenuItem) []any {
	return []any{item.ID, item.Name, item.Price, string(item.Category), item.Description, item.Available, item.Image}
}
