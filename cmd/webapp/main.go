package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	reviewcash "github.com/set-night/reviewcash"
	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/repository"
	"github.com/set-night/reviewcash/internal/service"
	"github.com/set-night/reviewcash/internal/webapp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	migrationsFS, err := fs.Sub(reviewcash.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepo(pool)
	taskRepo := repository.NewTaskRepo(pool)
	claimRepo := repository.NewClaimRepo(pool)
	withdrawalRepo := repository.NewWithdrawalRepo(pool)
	journalRepo := repository.NewJournalRepo(pool)

	accounts := service.NewAccountService(pool, userRepo, journalRepo)
	tasks := service.NewTaskService(pool, taskRepo, claimRepo, userRepo)
	withdrawals := service.NewWithdrawalService(pool, cfg, cfg.MinWithdrawal, withdrawalRepo, accounts)

	srv := webapp.NewServer(cfg, accounts, tasks, withdrawals)

	go func() {
		slog.Info("starting webapp backend", "port", cfg.Port)
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("webapp backend stopped gracefully")
}
