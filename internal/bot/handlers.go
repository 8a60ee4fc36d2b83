package bot

import (
	"context"
	"fmt"
	"strings"

	"indigo/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	callbackCategoryPrefix = "cat:"

	welcomeText    = "ברוכים הבאים לאינדיגו קפה ☕\nבחרו קטגוריה, שלחו /menu לתפריט המלא, או ספרו לנו איך אתם מרגישים ונמליץ לכם."
	emptyMenuText  = "התפריט אינו זמין כרגע. נסו שוב עוד מעט."
	askMoodText    = "ספרו לי איך אתם מרגישים ואמליץ לכם על הזיווג המושלם.\nלדוגמה: /mood עייף/ה"
	unknownCmdText = "לא הכרתי את הפקודה. נסו /start או /menu."
)

func (b *Bot) handleCommand(ctx context.Context, logger *zerolog.Logger, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.send(logger, chatID, welcomeText, b.categoryKeyboard())
	case "menu":
		b.send(logger, chatID, b.fullMenuText(), nil)
	case "mood":
		b.handleMood(ctx, logger, chatID, msg.CommandArguments())
	default:
		b.send(logger, chatID, unknownCmdText, nil)
	}
}

func (b *Bot) handleCallback(logger *zerolog.Logger, cq *tgbotapi.CallbackQuery) {
	if err := b.tgService.AnswerCallback(cq.ID, ""); err != nil {
		logger.Warn().Err(err).Msg("failed to answer callback")
	}
	if cq.Message == nil {
		return
	}

	key, ok := strings.CutPrefix(cq.Data, callbackCategoryPrefix)
	if !ok || !models.IsValidCategory(models.CategoryKey(key)) {
		logger.Debug().Str("data", cq.Data).Msg("ignoring unknown callback")
		return
	}
	b.send(logger, cq.Message.Chat.ID, b.categoryText(models.CategoryKey(key)), b.categoryKeyboard())
}

// handleMood asks the recommender about the available items. An empty mood
// makes no call.
func (b *Bot) handleMood(ctx context.Context, logger *zerolog.Logger, chatID int64, mood string) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		b.send(logger, chatID, askMoodText, nil)
		return
	}
	items := models.AvailableOnly(b.menu.State().Items)
	b.send(logger, chatID, b.recommender.Recommend(ctx, mood, items), nil)
}

func (b *Bot) send(logger *zerolog.Logger, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	var err error
	if keyboard != nil {
		_, err = b.tgService.SendWithInlineKeyboard(chatID, text, *keyboard)
	} else {
		_, err = b.tgService.SendMessage(chatID, text)
	}
	if err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

// categoryKeyboard lists the categories that currently have something to
// order, two per row. Nil when nothing is available.
func (b *Bot) categoryKeyboard() *tgbotapi.InlineKeyboardMarkup {
	items := models.AvailableOnly(b.menu.State().Items)

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, category := range models.Categories {
		if !hasCategory(items, category.Key) {
			continue
		}
		label := category.Icon + " " + category.Label
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackCategoryPrefix+string(category.Key)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

func (b *Bot) fullMenuText() string {
	items := models.AvailableOnly(b.menu.State().Items)

	var sections []string
	for _, category := range models.Categories {
		if text := formatCategory(category, items); text != "" {
			sections = append(sections, text)
		}
	}
	if len(sections) == 0 {
		return emptyMenuText
	}
	return strings.Join(sections, "\n\n")
}

func (b *Bot) categoryText(key models.CategoryKey) string {
	items := models.AvailableOnly(b.menu.State().Items)
	for _, category := range models.Categories {
		if category.Key == key {
			if text := formatCategory(category, items); text != "" {
				return text
			}
		}
	}
	return emptyMenuText
}

func formatCategory(category models.Category, items []models.MenuItem) string {
	var b strings.Builder
	for _, item := range items {
		if item.Category != category.Key {
			continue
		}
		if b.Len() == 0 {
			fmt.Fprintf(&b, "%s %s", category.Icon, category.Label)
		}
		fmt.Fprintf(&b, "\n%s %s ₪%s", item.Image, item.Name, item.Price)
		if item.Description != "" {
			fmt.Fprintf(&b, "\n   %s", item.Description)
		}
	}
	return b.String()
}

func hasCategory(items []models.MenuItem, key models.CategoryKey) bool {
	for _, item := range items {
		if item.Category == key {
			return true
		}
	}
	return false
}
