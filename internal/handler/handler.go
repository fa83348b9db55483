package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/flow"
	"github.com/set-night/reviewcash/internal/service"
	"github.com/set-night/reviewcash/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot         *bot.Bot
	cfg         *config.Config
	accounts    *service.AccountService
	tasks       *service.TaskService
	reviews     *service.ReviewService
	withdrawals *service.WithdrawalService
	invoices    *service.InvoiceService
	flows       *flow.Store
	notifier    *telegram.Notifier
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot         *bot.Bot
	Cfg         *config.Config
	Accounts    *service.AccountService
	Tasks       *service.TaskService
	Reviews     *service.ReviewService
	Withdrawals *service.WithdrawalService
	Invoices    *service.InvoiceService
	Flows       *flow.Store
	Notifier    *telegram.Notifier
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:         deps.Bot,
		cfg:         deps.Cfg,
		accounts:    deps.Accounts,
		tasks:       deps.Tasks,
		reviews:     deps.Reviews,
		withdrawals: deps.Withdrawals,
		invoices:    deps.Invoices,
		flows:       deps.Flows,
		notifier:    deps.Notifier,
	}
}
