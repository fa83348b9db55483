// Package webapp is the JSON backend behind the Telegram mini-app. It exposes
// the same marketplace operations as the bot, keyed by the Telegram user id
// the mini-app receives in its launch URL.
package webapp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

// Accounts is the account surface the mini-app needs.
type Accounts interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	SetRole(ctx context.Context, userID int64, role domain.Role) error
}

// Tasks is the task-engine surface the mini-app needs.
type Tasks interface {
	Create(ctx context.Context, employerID int64, platform, objectName, objectLink string, price decimal.Decimal, totalSlots int) (*domain.Task, error)
	ListActive(ctx context.Context) ([]domain.Task, error)
	ClaimSlot(ctx context.Context, taskID, workerID int64) (*domain.Task, *domain.TaskClaimed, error)
}

// Withdrawals is the cash-out surface the mini-app needs.
type Withdrawals interface {
	Request(ctx context.Context, userID int64, amount decimal.Decimal, wallet string) (*domain.Withdrawal, *domain.WithdrawalRequested, error)
}

type Server struct {
	cfg         *config.Config
	accounts    Accounts
	tasks       Tasks
	withdrawals Withdrawals
	httpServer  *http.Server
}

func NewServer(cfg *config.Config, accounts Accounts, tasks Tasks, withdrawals Withdrawals) *Server {
	return &Server{
		cfg:         cfg,
		accounts:    accounts,
		tasks:       tasks,
		withdrawals: withdrawals,
	}
}

// Router builds the full handler chain, CORS included. The mini-app is served
// from a Telegram webview origin, so the API answers cross-origin requests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Post("/user", s.handleGetUser)
		r.Post("/role", s.handleSetRole)
		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Post("/tasks/{id}/claim", s.handleClaimTask)
		r.Post("/withdraw", s.handleWithdraw)
	})

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler(r)
}

func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Router(),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
