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
	"github.com/set-night/reviewcash/internal/middleware"
	"github.com/set-night/reviewcash/internal/telegram"
)

func (h *Handler) handleDecision(ctx context.Context, b *bot.Bot, update *models.Update) {
	adminTID := update.CallbackQuery.From.ID

	data := update.CallbackQuery.Data
	outcome := domain.OutcomeApprove
	idStr := strings.TrimPrefix(data, "approve_")
	if strings.HasPrefix(data, "reject_") {
		outcome = domain.OutcomeReject
		idStr = strings.TrimPrefix(data, "reject_")
	}
	subID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	ev, err := h.reviews.Decide(ctx, subID, adminTID, outcome)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		h.answerCallback(ctx, b, update, "Только для админов", true)
		return
	case errors.Is(err, domain.ErrAlreadyDecided):
		h.answerCallback(ctx, b, update, "Заявка уже обработана", true)
		return
	case errors.Is(err, domain.ErrSubmissionNotFound):
		h.answerCallback(ctx, b, update, "Заявка не найдена", true)
		return
	case err != nil:
		slog.Error("decide submission", "submission_id", subID, "error", err)
		h.answerCallback(ctx, b, update, "Ошибка, попробуй позже", true)
		return
	}

	if outcome == domain.OutcomeApprove {
		h.answerCallback(ctx, b, update, fmt.Sprintf("Одобрено! +%s ₽ исполнителю", ev.Reward.StringFixed(2)), false)
	} else {
		h.answerCallback(ctx, b, update, "Отклонено", false)
	}
	h.notifier.SubmissionDecided(ctx, ev)
}

func (h *Handler) handlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.TelegramID) {
		return
	}
	chatID := update.Message.Chat.ID

	subs, err := h.reviews.ListPending(ctx)
	if err != nil {
		slog.Error("list pending submissions", "error", err)
		return
	}
	if len(subs) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Заявок на проверку нет"})
		return
	}

	for _, sub := range subs {
		worker, err := h.accounts.GetByID(ctx, sub.WorkerID)
		if err != nil {
			slog.Error("load worker for submission", "submission_id", sub.ID, "error", err)
			continue
		}
		caption := fmt.Sprintf("Заявка #%d\nЗадание #%d\nИсполнитель: %d", sub.ID, sub.TaskID, worker.TelegramID)
		markup := telegram.InlineKeyboard(telegram.ButtonRow(
			telegram.InlineButton("✅ Одобрить", fmt.Sprintf("approve_%d", sub.ID)),
			telegram.InlineButton("❌ Отклонить", fmt.Sprintf("reject_%d", sub.ID)),
		))
		b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:      chatID,
			Photo:       &models.InputFileString{Data: sub.Proof},
			Caption:     caption,
			ReplyMarkup: markup,
		})
	}
}

func (h *Handler) handleWithdrawals(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.TelegramID) {
		return
	}
	chatID := update.Message.Chat.ID

	pending, err := h.withdrawals.ListPending(ctx)
	if err != nil {
		slog.Error("list pending withdrawals", "error", err)
		return
	}
	if len(pending) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Заявок на вывод нет"})
		return
	}

	for _, w := range pending {
		markup := telegram.InlineKeyboard(telegram.ButtonRow(
			telegram.InlineButton("✅ Выплачено", fmt.Sprintf("wd_done_%d", w.ID)),
			telegram.InlineButton("❌ Отклонить", fmt.Sprintf("wd_reject_%d", w.ID)),
		))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        fmt.Sprintf("Вывод #%d: %s ₽\nКошелёк: %s", w.ID, w.Amount.StringFixed(2), w.Wallet),
			ReplyMarkup: markup,
		})
	}
}

func (h *Handler) handleWithdrawalSettle(ctx context.Context, b *bot.Bot, update *models.Update) {
	adminTID := update.CallbackQuery.From.ID

	data := update.CallbackQuery.Data
	status := domain.WithdrawalStatusCompleted
	idStr := strings.TrimPrefix(data, "wd_done_")
	if strings.HasPrefix(data, "wd_reject_") {
		status = domain.WithdrawalStatusRejected
		idStr = strings.TrimPrefix(data, "wd_reject_")
	}
	wdID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	w, err := h.withdrawals.Settle(ctx, wdID, adminTID, status)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		h.answerCallback(ctx, b, update, "Только для админов", true)
		return
	case errors.Is(err, domain.ErrAlreadyProcessed):
		h.answerCallback(ctx, b, update, "Заявка уже обработана", true)
		return
	case errors.Is(err, domain.ErrWithdrawalNotFound):
		h.answerCallback(ctx, b, update, "Заявка не найдена", true)
		return
	case err != nil:
		slog.Error("settle withdrawal", "withdrawal_id", wdID, "error", err)
		h.answerCallback(ctx, b, update, "Ошибка, попробуй позже", true)
		return
	}

	h.answerCallback(ctx, b, update, "Готово", false)

	worker, err := h.accounts.GetByID(ctx, w.UserID)
	if err != nil {
		slog.Error("load user for withdrawal", "withdrawal_id", w.ID, "error", err)
		return
	}
	var text string
	if status == domain.WithdrawalStatusCompleted {
		text = fmt.Sprintf("✅ Вывод #%d на %s ₽ выполнен", w.ID, w.Amount.StringFixed(2))
	} else {
		text = fmt.Sprintf("❌ Вывод #%d отклонён, %s ₽ возвращены на баланс", w.ID, w.Amount.StringFixed(2))
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: worker.TelegramID, Text: text})
	h.notifier.Log(fmt.Sprintf("💸 *Withdrawal settled*\n\n*ID:* #%d\n*User:* `%d`\n*Amount:* %s\n*Status:* %s",
		w.ID, worker.TelegramID, w.Amount.StringFixed(2), status))
}

func (h *Handler) handleMarkPaid(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || !h.cfg.IsAdmin(user.TelegramID) {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) != 2 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Формат: /markpaid <код счёта>"})
		return
	}

	inv, fresh, err := h.invoices.MarkPaid(ctx, parts[1])
	if errors.Is(err, domain.ErrInvoiceNotFound) {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Счёт не найден"})
		return
	}
	if err != nil {
		slog.Error("mark invoice paid", "code", parts[1], "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Ошибка, попробуй позже"})
		return
	}
	if !fresh {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: fmt.Sprintf("Счёт %s уже оплачен", inv.Code)})
		return
	}

	desc := fmt.Sprintf("Top-up, invoice %s", inv.Code)
	if _, err := h.accounts.Credit(ctx, inv.EmployerID, inv.Amount, desc); err != nil {
		slog.Error("credit employer for invoice", "code", inv.Code, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Счёт отмечен, но зачисление не прошло"})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("Счёт %s оплачен, %s ₽ зачислены", inv.Code, inv.Amount.StringFixed(2)),
	})

	employer, err := h.accounts.GetByID(ctx, inv.EmployerID)
	if err != nil {
		slog.Error("load employer for invoice", "code", inv.Code, "error", err)
		return
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: employer.TelegramID,
		Text:   fmt.Sprintf("✅ Баланс пополнен на %s ₽ (счёт %s)", inv.Amount.StringFixed(2), inv.Code),
	})
	h.notifier.Log(fmt.Sprintf("💰 *Invoice paid*\n\n*Code:* `%s`\n*Employer:* `%d`\n*Amount:* %s",
		inv.Code, employer.TelegramID, inv.Amount.StringFixed(2)))
}

func (h *Handler) handleCommission(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	balance, err := h.reviews.CommissionBalance(ctx, user.TelegramID)
	if errors.Is(err, domain.ErrForbidden) {
		return
	}
	if err != nil {
		slog.Error("commission balance", "error", err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      fmt.Sprintf("Комиссия платформы: *%s ₽*", balance.StringFixed(2)),
		ParseMode: models.ParseModeMarkdown,
	})
}
