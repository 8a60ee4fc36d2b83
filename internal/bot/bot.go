package bot

import (
	"context"
	"time"

	"indigo/internal/domain"
	"indigo/internal/metrics"
	"indigo/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MenuView is the live customer view the bot reads items from.
type MenuView interface {
	State() view.State
}

// Bot is a read-only customer channel over the menu: browsing by category
// and mood recommendations. It has no admin commands.
type Bot struct {
	tgService   domain.TelegramService
	menu        MenuView
	recommender domain.Recommender
	logger      *zerolog.Logger
}

func NewBot(tgService domain.TelegramService, menu MenuView, recommender domain.Recommender, logger *zerolog.Logger) *Bot {
	return &Bot{
		tgService:   tgService,
		menu:        menu,
		recommender: recommender,
		logger:      logger,
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

// Stop stops receiving Telegram updates.
func (b *Bot) Stop() {
	if b == nil || b.tgService == nil {
		return
	}
	b.tgService.StopReceivingUpdates()
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	l := b.logger.With().Str("request_id", uuid.New().String()).Logger()

	b.withRecovery(&l, func() {
		switch {
		case update.CallbackQuery != nil:
			metrics.IncBotUpdate("callback")
			b.handleCallback(&l, update.CallbackQuery)
		case update.Message != nil && update.Message.IsCommand():
			metrics.IncBotUpdate("command")
			b.handleCommand(updateCtx, &l, update.Message)
		case update.Message != nil && update.Message.Text != "":
			metrics.IncBotUpdate("text")
			b.handleMood(updateCtx, &l, update.Message.Chat.ID, update.Message.Text)
		}
	})
}

func (b *Bot) withRecovery(logger *zerolog.Logger, handler func()) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncBotUpdate("panic")
			logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}
