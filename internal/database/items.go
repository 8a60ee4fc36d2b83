package database

import (
	"context"
	"fmt"

	"indigo/internal/events"
	"indigo/internal/models"
)

const upsertItemSQL = `INSERT INTO menu_items (id, name, price, category, description, available, image, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                name = excluded.name,
                price = excluded.price,
                category = excluded.category,
                description = excluded.description,
                available = excluded.available,
                image = excluded.image,
                updated_at = excluded.updated_at`

// ListItems returns the whole collection ordered by id.
func (db *DB) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	query := `SELECT id, name, price, category, description, available, image FROM menu_items ORDER BY id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Category, &item.Description, &item.Available, &item.Image); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w", err)
	}
	return items, nil
}

func (db *DB) SetItem(ctx context.Context, item models.MenuItem) error {
	_, err := db.ExecContext(ctx, upsertItemSQL,
		item.ID, item.Name, item.Price, item.Category, item.Description, item.Available, item.Image, now(),
	)
	if err != nil {
		err = fmt.Errorf("failed to save menu item %s: %w", item.ID, err)
	}
	return db.written("set", events.EventItemSaved, events.CatalogEventPayload{ItemID: item.ID}, err)
}

func (db *DB) UpdateAvailability(ctx context.Context, id string, available bool) error {
	err := db.updateAvailability(ctx, id, available)
	return db.written("availability", events.EventItemAvailabilityChanged,
		events.CatalogEventPayload{ItemID: id, Available: &available}, err)
}

func (db *DB) updateAvailability(ctx context.Context, id string, available bool) error {
	query := `UPDATE menu_items SET available = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, available, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update availability of %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update availability of %s: %w", id, ErrItemNotFound)
	}
	return nil
}

// DeleteItem removes the record; a missing id is not an error.
func (db *DB) DeleteItem(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		err = fmt.Errorf("failed to delete menu item %s: %w", id, err)
	}
	return db.written("delete", events.EventItemDeleted, events.CatalogEventPayload{ItemID: id}, err)
}

// SeedItems writes all items inside one transaction.
func (db *DB) SeedItems(ctx context.Context, items []models.MenuItem) error {
	err := db.seedItems(ctx, items)
	return db.written("seed", events.EventCatalogSeeded, events.CatalogEventPayload{ItemIDs: itemIDs(items)}, err)
}

func (db *DB) seedItems(ctx context.Context, items []models.MenuItem) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertItemSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare seed statement: %w", err)
	}
	defer stmt.Close()

	ts := now()
	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.Name, item.Price, item.Category, item.Description, item.Available, item.Image, ts,
		); err != nil {
			return fmt.Errorf("failed to seed menu item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}

func itemIDs(items []models.MenuItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
