package handler

import (
	"github.com/go-telegram/bot"
)

// Register attaches all command and callback handlers to the bot.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newtask", bot.MatchTypePrefix, h.handleNewTask)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/tasks", bot.MatchTypePrefix, h.handleTasks)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mytasks", bot.MatchTypePrefix, h.handleMyTasks)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/balance", bot.MatchTypePrefix, h.handleBalance)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, h.handleHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/withdraw", bot.MatchTypePrefix, h.handleWithdraw)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/topup", bot.MatchTypePrefix, h.handleTopUp)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypePrefix, h.handleCancel)

	// Admin commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/pending", bot.MatchTypePrefix, h.handlePending)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/withdrawals", bot.MatchTypePrefix, h.handleWithdrawals)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/markpaid", bot.MatchTypePrefix, h.handleMarkPaid)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/commission", bot.MatchTypePrefix, h.handleCommission)

	// Role and task creation callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "role_", bot.MatchTypePrefix, h.handleRoleSelect)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "plat_", bot.MatchTypePrefix, h.handlePlatformSelect)

	// Worker callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "take_", bot.MatchTypePrefix, h.handleTakeTask)

	// Employer callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "close_", bot.MatchTypePrefix, h.handleCloseTask)

	// Admin callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "approve_", bot.MatchTypePrefix, h.handleDecision)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "reject_", bot.MatchTypePrefix, h.handleDecision)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "wd_done_", bot.MatchTypePrefix, h.handleWithdrawalSettle)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "wd_reject_", bot.MatchTypePrefix, h.handleWithdrawalSettle)
}
