package handler

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/set-night/reviewcash/internal/middleware"
	"github.com/set-night/reviewcash/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	var rows [][]models.InlineKeyboardButton
	if h.cfg.WebAppURL != "" {
		params := url.Values{}
		params.Set("user_id", strconv.FormatInt(user.TelegramID, 10))
		params.Set("role", string(user.Role))
		webAppURL := h.cfg.WebAppURL + "?" + params.Encode()
		rows = append(rows, telegram.ButtonRow(telegram.WebAppButton("Открыть ReviewCash", webAppURL)))
	}
	if user.Role == domain.RoleUnset {
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton("💼 Я работодатель", "role_employer"),
			telegram.InlineButton("👷 Я исполнитель", "role_worker"),
		))
	}

	text := "👋 Привет!\n\n" +
		"ReviewCash — биржа отзывов: работодатели публикуют задания, исполнители выполняют их за вознаграждение.\n\n" +
		"📋 *Команды:*\n" +
		"/newtask — Создать задание (работодатель)\n" +
		"/tasks — Доступные задания (исполнитель)\n" +
		"/mytasks — Мои задания (работодатель)\n" +
		"/balance — Баланс\n" +
		"/history — История операций\n" +
		"/topup — Пополнить баланс (работодатель)\n" +
		"/withdraw — Вывести средства (исполнитель)"
	if user.Role != domain.RoleUnset {
		text += fmt.Sprintf("\n\nТекущая роль: *%s*", roleLabel(user.Role))
	}

	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	}
	if len(rows) > 0 {
		params.ReplyMarkup = telegram.InlineKeyboard(rows...)
	}
	b.SendMessage(ctx, params)
}

func (h *Handler) handleRoleSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	role := domain.Role(strings.TrimPrefix(update.CallbackQuery.Data, "role_"))
	if err := h.accounts.SetRole(ctx, user.ID, role); err != nil {
		h.answerCallback(ctx, b, update, "Неизвестная роль", true)
		return
	}

	h.answerCallback(ctx, b, update, "Роль сохранена!", false)
	if update.CallbackQuery.Message.Message != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.CallbackQuery.Message.Message.Chat.ID,
			Text:   fmt.Sprintf("Роль сохранена: %s", roleLabel(role)),
		})
	}
}

func roleLabel(role domain.Role) string {
	switch role {
	case domain.RoleEmployer:
		return "работодатель"
	case domain.RoleWorker:
		return "исполнитель"
	default:
		return "не выбрана"
	}
}

func (h *Handler) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update, text string, alert bool) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
		ShowAlert:       alert,
	})
}
