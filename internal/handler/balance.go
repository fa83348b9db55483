package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/set-night/reviewcash/internal/flow"
	"github.com/set-night/reviewcash/internal/middleware"
)

const historyLimit = 15

func (h *Handler) handleBalance(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      fmt.Sprintf("Баланс: *%s ₽*", user.Balance.StringFixed(2)),
		ParseMode: models.ParseModeMarkdown,
	})
}

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	entries, err := h.accounts.History(ctx, user.ID, historyLimit)
	if err != nil {
		slog.Error("load history", "user_id", user.ID, "error", err)
		return
	}
	if len(entries) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Операций пока нет"})
		return
	}

	var sb strings.Builder
	sb.WriteString("История операций:\n\n")
	for _, e := range entries {
		sign := "+"
		if e.TxType == domain.TxTypeDebit {
			sign = "-"
		}
		sb.WriteString(fmt.Sprintf("%s%s ₽ — %s\n", sign, e.Amount.StringFixed(2), e.Description))
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: sb.String()})
}

func (h *Handler) handleWithdraw(ctx context.Context, b *bot.Bot, update *models.Update) {
	// Prefix match also catches /withdrawals
	if strings.HasPrefix(update.Message.Text, "/withdrawals") {
		h.handleWithdrawals(ctx, b, update)
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.IsWorker() {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Только исполнители!"})
		return
	}
	if user.Balance.InexactFloat64() < h.cfg.MinWithdrawal {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("Минимум для вывода: %.0f ₽", h.cfg.MinWithdrawal),
		})
		return
	}

	h.flows.Start(user.ID, flow.KindWithdraw, flow.StepWallet)
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Кошелёк для выплаты:"})
}

func (h *Handler) handleTopUp(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.IsEmployer() {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Только работодатели!"})
		return
	}

	h.flows.Start(user.ID, flow.KindTopUp, flow.StepTopUpAmount)
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Сумма пополнения (в рублях):"})
}

func (h *Handler) handleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	h.flows.Clear(user.ID)
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: "Ок, отменено"})
}
