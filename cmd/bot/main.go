package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	reviewcash "github.com/set-night/reviewcash"
	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/flow"
	"github.com/set-night/reviewcash/internal/handler"
	"github.com/set-night/reviewcash/internal/middleware"
	"github.com/set-night/reviewcash/internal/repository"
	"github.com/set-night/reviewcash/internal/service"
	"github.com/set-night/reviewcash/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(reviewcash.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo(pool)
	taskRepo := repository.NewTaskRepo(pool)
	claimRepo := repository.NewClaimRepo(pool)
	submissionRepo := repository.NewSubmissionRepo(pool)
	withdrawalRepo := repository.NewWithdrawalRepo(pool)
	invoiceRepo := repository.NewInvoiceRepo(pool)
	commissionRepo := repository.NewCommissionRepo(pool)
	journalRepo := repository.NewJournalRepo(pool)

	// Initialize services
	accounts := service.NewAccountService(pool, userRepo, journalRepo)
	tasks := service.NewTaskService(pool, taskRepo, claimRepo, userRepo)
	reviews := service.NewReviewService(pool, cfg, cfg.CommissionRate, submissionRepo, claimRepo, tasks, accounts, commissionRepo)
	withdrawals := service.NewWithdrawalService(pool, cfg, cfg.MinWithdrawal, withdrawalRepo, accounts)
	invoices := service.NewInvoiceService(invoiceRepo)

	flows := flow.NewStore()

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.UserLoader(accounts),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil || update.Message == nil {
				return
			}
			if len(update.Message.Photo) > 0 {
				h.HandlePhoto(ctx, b, update)
			}
		}),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	// Initialize notifier
	notifier := telegram.NewNotifier(b, cfg)

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:         b,
		Cfg:         cfg,
		Accounts:    accounts,
		Tasks:       tasks,
		Reviews:     reviews,
		Withdrawals: withdrawals,
		Invoices:    invoices,
		Flows:       flows,
		Notifier:    notifier,
	})

	// Register all handlers
	h.Register()

	// Register default text handler for dialog steps
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		// Skip commands
		if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
			return
		}
		h.HandleText(ctx, b, update)
	})

	// Start bot
	slog.Info("starting bot", "admins", len(cfg.AdminIDs))
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}
