package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/domain"
)

// Notifier delivers marketplace events to workers and admins, and mirrors
// notable ones into the operator log channel.
type Notifier struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewNotifier(b *bot.Bot, cfg *config.Config) *Notifier {
	return &Notifier{bot: b, cfg: cfg}
}

// Log sends a message to the operator log channel, if configured.
func (n *Notifier) Log(message string) {
	if n.cfg.LogTelegramChatID == 0 {
		return
	}

	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.cfg.LogTelegramChatID,
		Text:      message,
		ParseMode: "Markdown",
	})
	if err != nil {
		slog.Error("failed to send telegram log", "error", err)
	}
}

// LogError mirrors an error into the operator log channel.
func (n *Notifier) LogError(err error, where string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		where, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	n.Log(msg)
}

// NotifyAdmins sends the same message to every admin account.
func (n *Notifier) NotifyAdmins(ctx context.Context, text string, markup models.ReplyMarkup) {
	for _, adminID := range n.cfg.AdminIDs {
		params := &bot.SendMessageParams{
			ChatID: adminID,
			Text:   text,
		}
		if markup != nil {
			params.ReplyMarkup = markup
		}
		if _, err := n.bot.SendMessage(ctx, params); err != nil {
			slog.Error("failed to notify admin", "admin_id", adminID, "error", err)
		}
	}
}

// SendPhotoToAdmins forwards a proof photo by file id to every admin.
func (n *Notifier) SendPhotoToAdmins(ctx context.Context, fileID, caption string, markup models.ReplyMarkup) {
	for _, adminID := range n.cfg.AdminIDs {
		params := &bot.SendPhotoParams{
			ChatID:  adminID,
			Photo:   &models.InputFileString{Data: fileID},
			Caption: caption,
		}
		if markup != nil {
			params.ReplyMarkup = markup
		}
		if _, err := n.bot.SendPhoto(ctx, params); err != nil {
			slog.Error("failed to send proof to admin", "admin_id", adminID, "error", err)
		}
	}
}

// TaskClaimed tells a worker their claim went through and mirrors the claim
// into the operator log.
func (n *Notifier) TaskClaimed(ctx context.Context, ev *domain.TaskClaimed) {
	text := fmt.Sprintf("Ты взял задание #%d\n%s: %s\n\nВыполни его и пришли фото-доказательство:",
		ev.TaskID, ev.Platform, ev.ObjectName)
	params := &bot.SendMessageParams{ChatID: ev.WorkerTelegramID, Text: text}
	if ev.ObjectLink != "" {
		params.ReplyMarkup = InlineKeyboard(ButtonRow(URLButton("Открыть объект", ev.ObjectLink)))
	}
	if _, err := n.bot.SendMessage(ctx, params); err != nil {
		slog.Error("failed to notify worker about claim", "task_id", ev.TaskID, "error", err)
	}
	n.Log(fmt.Sprintf("🎯 *Task claimed*\n\n*Task:* #%d\n*Worker:* `%d`", ev.TaskID, ev.WorkerTelegramID))
}

// SubmissionDecided tells a worker the review outcome.
func (n *Notifier) SubmissionDecided(ctx context.Context, ev *domain.SubmissionDecided) {
	var text string
	if ev.Outcome == domain.OutcomeApprove {
		text = fmt.Sprintf("✅ Задание #%d одобрено!\n+%s ₽", ev.TaskID, ev.Reward.StringFixed(2))
	} else {
		text = fmt.Sprintf("❌ Задание #%d отклонено.", ev.TaskID)
	}
	if _, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: ev.WorkerTelegramID, Text: text}); err != nil {
		slog.Error("failed to notify worker about decision", "task_id", ev.TaskID, "error", err)
	}
	n.Log(fmt.Sprintf("📋 *Review*\n\n*Task:* #%d\n*Worker:* `%d`\n*Outcome:* %s\n*Reward:* %s",
		ev.TaskID, ev.WorkerTelegramID, ev.Outcome, ev.Reward.StringFixed(2)))
}

// WithdrawalRequested tells the admins a cash-out is waiting for settlement.
func (n *Notifier) WithdrawalRequested(ctx context.Context, ev *domain.WithdrawalRequested) {
	text := fmt.Sprintf("Вывод #%d: %s ₽\nКошелёк: %s\nID: %d",
		ev.WithdrawalID, ev.Amount.StringFixed(2), ev.Wallet, ev.UserTelegramID)
	markup := InlineKeyboard(ButtonRow(
		InlineButton("✅ Выплачено", fmt.Sprintf("wd_done_%d", ev.WithdrawalID)),
		InlineButton("❌ Отклонить", fmt.Sprintf("wd_reject_%d", ev.WithdrawalID)),
	))
	n.NotifyAdmins(ctx, text, markup)
	n.Log(fmt.Sprintf("💸 *Withdrawal requested*\n\n*ID:* #%d\n*User:* `%d`\n*Amount:* %s\n*Wallet:* %s",
		ev.WithdrawalID, ev.UserTelegramID, ev.Amount.StringFixed(2), ev.Wallet))
}
