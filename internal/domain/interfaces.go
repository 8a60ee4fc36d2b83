package domain

import (
	"context"

	"indigo/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Snapshot is the full catalog as delivered by a subscription.
type Snapshot struct {
	Items     []models.MenuItem
	FromCache bool
}

// SnapshotUpdate carries either a snapshot or the error that ended the feed.
type SnapshotUpdate struct {
	Snapshot Snapshot
	Err      error
}

type Subscription interface {
	Updates() <-chan SnapshotUpdate
	// Close is idempotent.
	Close() error
}

type CatalogReader interface {
	ListItems(ctx context.Context) ([]models.MenuItem, error)
}

type CatalogWriter interface {
	// SetItem replaces (or creates) the record keyed by item.ID.
	SetItem(ctx context.Context, item models.MenuItem) error
	// UpdateAvailability touches only the available flag and fails on an unknown id.
	UpdateAvailability(ctx context.Context, id string, available bool) error
	DeleteItem(ctx context.Context, id string) error
	// SeedItems writes all items in a single batch.
	SeedItems(ctx context.Context, items []models.MenuItem) error
}

type CatalogStore interface {
	CatalogReader
	CatalogWriter
	Close() error
}

type CatalogFeed interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Catalog is what a view controller talks to.
type Catalog interface {
	CatalogFeed
	CatalogWriter
}

type Recommender interface {
	// Recommend always yields display text; failures become an apology.
	Recommend(ctx context.Context, mood string, items []models.MenuItem) string
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type MenuMirror interface {
	ReplaceMenu(ctx context.Context, items []models.MenuItem) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// SnapshotCache keeps the last catalog read so new subscribers can be served
// before the store answers.
type SnapshotCache interface {
	LoadSnapshot(ctx context.Context) ([]models.MenuItem, bool, error)
	SaveSnapshot(ctx context.Context, items []models.MenuItem) error
}
