package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/set-night/reviewcash/internal/flow"
	"github.com/set-night/reviewcash/internal/middleware"
	"github.com/set-night/reviewcash/internal/telegram"
)

func (h *Handler) handleNewTask(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.IsEmployer() {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Только работодатели!"})
		return
	}

	h.flows.Start(user.ID, flow.KindNewTask, flow.StepPlatform)

	var rows [][]models.InlineKeyboardButton
	for _, p := range config.Platforms {
		rows = append(rows, telegram.ButtonRow(telegram.InlineButton(p, "plat_"+p)))
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Выбери платформу:",
		ReplyMarkup: telegram.InlineKeyboard(rows...),
	})
}

func (h *Handler) handlePlatformSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	st := h.flows.Get(user.ID)
	if st == nil || st.Kind != flow.KindNewTask || st.Step != flow.StepPlatform {
		h.answerCallback(ctx, b, update, "Начни с /newtask", true)
		return
	}

	platform := strings.TrimPrefix(update.CallbackQuery.Data, "plat_")
	h.flows.Advance(user.ID, "platform", platform, flow.StepName)
	h.answerCallback(ctx, b, update, "", false)

	if update.CallbackQuery.Message.Message != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.CallbackQuery.Message.Message.Chat.ID,
			Text:   "Название объекта (компания, канал, товар):",
		})
	}
}

func (h *Handler) handleTasks(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.IsWorker() {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Только исполнители!"})
		return
	}

	tasks, err := h.tasks.ListActive(ctx)
	if err != nil {
		slog.Error("list active tasks", "error", err)
		return
	}
	if len(tasks) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Нет заданий"})
		return
	}
	if len(tasks) > config.TasksPerPage {
		tasks = tasks[:config.TasksPerPage]
	}

	var rows [][]models.InlineKeyboardButton
	for _, t := range tasks {
		name := t.ObjectName
		if len([]rune(name)) > config.TaskButtonNameLen {
			name = string([]rune(name)[:config.TaskButtonNameLen]) + "..."
		}
		label := fmt.Sprintf("%s — %s ₽ (%s, осталось %d)", name, t.Price.StringFixed(2), t.Platform, t.RemainingSlots)
		rows = append(rows, telegram.ButtonRow(telegram.InlineButton(label, fmt.Sprintf("take_%d", t.ID))))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "Доступные задания:",
		ReplyMarkup: telegram.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleTakeTask(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	if !user.IsWorker() {
		h.answerCallback(ctx, b, update, "Только исполнители!", true)
		return
	}

	taskID, err := strconv.ParseInt(strings.TrimPrefix(update.CallbackQuery.Data, "take_"), 10, 64)
	if err != nil {
		return
	}

	_, ev, err := h.tasks.ClaimSlot(ctx, taskID, user.ID)
	switch {
	case errors.Is(err, domain.ErrAlreadyClaimed):
		h.answerCallback(ctx, b, update, "Ты уже взял это задание!", true)
		return
	case errors.Is(err, domain.ErrTaskUnavailable):
		h.answerCallback(ctx, b, update, "Задание уже разобрано!", true)
		return
	case err != nil:
		slog.Error("claim slot", "task_id", taskID, "error", err)
		h.notifier.LogError(err, fmt.Sprintf("claim slot, task #%d", taskID))
		h.answerCallback(ctx, b, update, "Ошибка, попробуй позже", true)
		return
	}

	h.answerCallback(ctx, b, update, "", false)
	if ev != nil {
		h.notifier.TaskClaimed(ctx, ev)
	}
}

func (h *Handler) handleMyTasks(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.IsEmployer() {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Только работодатели!"})
		return
	}

	tasks, err := h.tasks.ListByEmployer(ctx, user.ID)
	if err != nil {
		slog.Error("list employer tasks", "error", err)
		return
	}
	if len(tasks) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "У тебя нет заданий. Создай через /newtask"})
		return
	}

	var sb strings.Builder
	var rows [][]models.InlineKeyboardButton
	sb.WriteString("Твои задания:\n\n")
	for _, t := range tasks {
		sb.WriteString(fmt.Sprintf("#%d [%s] %s — %s ₽, осталось %d/%d (%s)\n",
			t.ID, t.Platform, t.ObjectName, t.Price.StringFixed(2), t.RemainingSlots, t.TotalSlots, t.Status))
		if t.Status == domain.TaskStatusActive {
			rows = append(rows, telegram.ButtonRow(
				telegram.InlineButton(fmt.Sprintf("Закрыть #%d", t.ID), fmt.Sprintf("close_%d", t.ID)),
			))
		}
	}

	params := &bot.SendMessageParams{ChatID: chatID, Text: sb.String()}
	if len(rows) > 0 {
		params.ReplyMarkup = telegram.InlineKeyboard(rows...)
	}
	b.SendMessage(ctx, params)
}

func (h *Handler) handleCloseTask(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	taskID, err := strconv.ParseInt(strings.TrimPrefix(update.CallbackQuery.Data, "close_"), 10, 64)
	if err != nil {
		return
	}

	task, err := h.tasks.Get(ctx, taskID)
	if err != nil {
		h.answerCallback(ctx, b, update, "Задание не найдено", true)
		return
	}
	if task.EmployerID != user.ID && !h.cfg.IsAdmin(user.TelegramID) {
		h.answerCallback(ctx, b, update, "Это не твоё задание", true)
		return
	}

	if err := h.tasks.Close(ctx, taskID); err != nil {
		slog.Error("close task", "task_id", taskID, "error", err)
		h.answerCallback(ctx, b, update, "Ошибка, попробуй позже", true)
		return
	}
	h.answerCallback(ctx, b, update, fmt.Sprintf("Задание #%d закрыто", taskID), false)
}
