package webapp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

type userRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type userResponse struct {
	Role    domain.Role     `json:"role"`
	Balance decimal.Decimal `json:"balance"`
}

type roleRequest struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

type taskResponse struct {
	ID         int64           `json:"id"`
	Platform   string          `json:"platform"`
	ObjectName string          `json:"object_name"`
	ObjectLink string          `json:"object_link"`
	Price      decimal.Decimal `json:"price"`
	Remaining  int             `json:"remaining"`
	Total      int             `json:"total"`
}

type createTaskRequest struct {
	UserID     int64           `json:"user_id"`
	Platform   string          `json:"platform"`
	ObjectName string          `json:"object_name"`
	ObjectLink string          `json:"object_link"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

type claimRequest struct {
	UserID int64 `json:"user_id"`
}

type withdrawRequest struct {
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Wallet string          `json:"wallet"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := s.accounts.GetOrCreate(r.Context(), req.UserID, req.Username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, userResponse{Role: user.Role, Balance: user.Balance})
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := s.accounts.GetByTelegramID(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.accounts.SetRole(r.Context(), user.ID, req.Role); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListActive(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse{
			ID:         t.ID,
			Platform:   t.Platform,
			ObjectName: t.ObjectName,
			ObjectLink: t.ObjectLink,
			Price:      t.Price,
			Remaining:  t.RemainingSlots,
			Total:      t.TotalSlots,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := s.accounts.GetByTelegramID(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !user.IsEmployer() {
		http.Error(w, "employers only", http.StatusForbidden)
		return
	}

	task, err := s.tasks.Create(r.Context(), user.ID, req.Platform, req.ObjectName, req.ObjectLink, req.Price, req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, taskResponse{
		ID:         task.ID,
		Platform:   task.Platform,
		ObjectName: task.ObjectName,
		ObjectLink: task.ObjectLink,
		Price:      task.Price,
		Remaining:  task.RemainingSlots,
		Total:      task.TotalSlots,
	})
}

func (s *Server) handleClaimTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := s.accounts.GetByTelegramID(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !user.IsWorker() {
		http.Error(w, "workers only", http.StatusForbidden)
		return
	}

	task, _, err := s.tasks.ClaimSlot(r.Context(), taskID, user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "remaining": task.RemainingSlots})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := s.accounts.GetByTelegramID(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !user.IsWorker() {
		http.Error(w, "workers only", http.StatusForbidden)
		return
	}

	wd, _, err := s.withdrawals.Request(r.Context(), user.ID, req.Amount, req.Wallet)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": wd.ID})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps domain sentinels to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRole):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrWithdrawalNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound),
		errors.Is(err, domain.ErrSubmissionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrTaskUnavailable),
		errors.Is(err, domain.ErrAlreadyClaimed),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrBelowMinimum):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
