package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/set-night/reviewcash/internal/middleware"
	"github.com/set-night/reviewcash/internal/telegram"
)

// HandlePhoto treats an incoming photo as proof for the worker's latest open
// claim and queues it for review.
func (h *Handler) HandlePhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil || len(update.Message.Photo) == 0 {
		return
	}
	chatID := update.Message.Chat.ID

	claim, err := h.tasks.OpenClaim(ctx, user.ID)
	if errors.Is(err, domain.ErrNoActiveClaim) {
		return
	}
	if err != nil {
		slog.Error("find open claim", "worker_id", user.ID, "error", err)
		return
	}

	// Largest size comes last
	fileID := update.Message.Photo[len(update.Message.Photo)-1].FileID

	sub, err := h.reviews.SubmitProof(ctx, claim.TaskID, user.ID, fileID)
	switch {
	case errors.Is(err, domain.ErrProofAlreadySent):
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Доказательство уже отправлено, жди проверку"})
		return
	case err != nil:
		slog.Error("submit proof", "task_id", claim.TaskID, "worker_id", user.ID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Ошибка, попробуй позже"})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Доказательство отправлено!"})

	caption := fmt.Sprintf("Заявка #%d\nЗадание #%d\nИсполнитель: %d", sub.ID, sub.TaskID, user.TelegramID)
	markup := telegram.InlineKeyboard(telegram.ButtonRow(
		telegram.InlineButton("✅ Одобрить", fmt.Sprintf("approve_%d", sub.ID)),
		telegram.InlineButton("❌ Отклонить", fmt.Sprintf("reject_%d", sub.ID)),
	))
	h.notifier.SendPhotoToAdmins(ctx, fileID, caption, markup)
}
