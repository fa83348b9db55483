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
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/set-night/reviewcash/internal/flow"
	"github.com/set-night/reviewcash/internal/middleware"
	"github.com/shopspring/decimal"
)

// HandleText advances whatever dialog the user is in the middle of. Messages
// outside a dialog are ignored.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}

	st := h.flows.Get(user.ID)
	if st == nil {
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	chatID := update.Message.Chat.ID

	switch st.Kind {
	case flow.KindNewTask:
		h.advanceNewTask(ctx, b, chatID, user, st, text)
	case flow.KindWithdraw:
		h.advanceWithdraw(ctx, b, chatID, user, st, text)
	case flow.KindTopUp:
		h.advanceTopUp(ctx, b, chatID, user, st, text)
	}
}

func (h *Handler) advanceNewTask(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, st *flow.State, text string) {
	switch st.Step {
	case flow.StepPlatform:
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Выбери платформу кнопкой выше"})

	case flow.StepName:
		h.flows.Advance(user.ID, "name", text, flow.StepLink)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Ссылка на объект:"})

	case flow.StepLink:
		h.flows.Advance(user.ID, "link", text, flow.StepPrice)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Цена за выполнение (в рублях):"})

	case flow.StepPrice:
		price, err := decimal.NewFromString(text)
		if err != nil || price.LessThan(decimal.NewFromInt(1)) {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Цена должна быть числом не меньше 1"})
			return
		}
		h.flows.Advance(user.ID, "price", price.String(), flow.StepSlots)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Сколько исполнителей нужно?"})

	case flow.StepSlots:
		slots, err := strconv.Atoi(text)
		if err != nil || slots < 1 {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Нужно целое число не меньше 1"})
			return
		}
		price, _ := decimal.NewFromString(st.Data["price"])

		task, err := h.tasks.Create(ctx, user.ID, st.Data["platform"], st.Data["name"], st.Data["link"], price, slots)
		if err != nil {
			slog.Error("create task", "employer_id", user.ID, "error", err)
			h.notifier.LogError(err, "create task")
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Не получилось создать задание, проверь данные"})
			return
		}
		h.flows.Clear(user.ID)

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: fmt.Sprintf("Задание #%d создано!\nЦена: %s ₽, мест: %d",
				task.ID, task.Price.StringFixed(2), task.TotalSlots),
		})
		h.notifier.Log(fmt.Sprintf("🆕 *Task posted*\n\n*Task:* #%d\n*Employer:* `%d`\n*Platform:* %s\n*Price:* %s\n*Slots:* %d",
			task.ID, user.TelegramID, task.Platform, task.Price.StringFixed(2), task.TotalSlots))
	}
}

func (h *Handler) advanceWithdraw(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, st *flow.State, text string) {
	switch st.Step {
	case flow.StepWallet:
		h.flows.Advance(user.ID, "wallet", text, flow.StepAmount)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Сумма:"})

	case flow.StepAmount:
		amount, err := decimal.NewFromString(text)
		if err != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Только число"})
			return
		}

		w, ev, err := h.withdrawals.Request(ctx, user.ID, amount, st.Data["wallet"])
		switch {
		case errors.Is(err, domain.ErrBelowMinimum):
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   fmt.Sprintf("Минимум для вывода: %.0f ₽", h.cfg.MinWithdrawal),
			})
			return
		case errors.Is(err, domain.ErrInsufficientBalance):
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Недостаточно средств"})
			return
		case err != nil:
			slog.Error("request withdrawal", "user_id", user.ID, "error", err)
			h.notifier.LogError(err, "request withdrawal")
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Ошибка, попробуй позже"})
			return
		}
		h.flows.Clear(user.ID)

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("Заявка #%d: %s ₽ → %s\nСредства списаны, жди выплату.", w.ID, w.Amount.StringFixed(2), w.Wallet),
		})
		h.notifier.WithdrawalRequested(ctx, ev)
	}
}

func (h *Handler) advanceTopUp(ctx context.Context, b *bot.Bot, chatID int64, user *domain.User, st *flow.State, text string) {
	switch st.Step {
	case flow.StepTopUpAmount:
		amount, err := decimal.NewFromString(text)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Сумма должна быть положительным числом"})
			return
		}
		h.flows.Advance(user.ID, "amount", amount.String(), flow.StepTopUpPhone)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Телефон для перевода:"})

	case flow.StepTopUpPhone:
		amount, _ := decimal.NewFromString(st.Data["amount"])

		inv, err := h.invoices.Create(ctx, user.ID, amount, text)
		if err != nil {
			slog.Error("create invoice", "employer_id", user.ID, "error", err)
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Ошибка, попробуй позже"})
			return
		}
		h.flows.Clear(user.ID)

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: fmt.Sprintf("Счёт %s на %s ₽ создан.\nПереведи сумму и жди подтверждения админа.",
				inv.Code, inv.Amount.StringFixed(2)),
		})
		h.notifier.NotifyAdmins(ctx, fmt.Sprintf("Счёт %s: %s ₽\nРаботодатель: %d\nТелефон: %s\n\nПодтвердить: /markpaid %s",
			inv.Code, inv.Amount.StringFixed(2), user.TelegramID, inv.Phone, inv.Code), nil)
	}
}
