package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

type stubAccounts struct {
	users  map[int64]*domain.User
	nextID int64
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{users: make(map[int64]*domain.User), nextID: 1}
}

func (s *stubAccounts) GetOrCreate(_ context.Context, telegramID int64, username string) (*domain.User, error) {
	if u, ok := s.users[telegramID]; ok {
		return u, nil
	}
	u := &domain.User{ID: s.nextID, TelegramID: telegramID, Username: username, Role: domain.RoleUnset, Balance: decimal.Zero}
	s.users[telegramID] = u
	s.nextID++
	return u, nil
}

func (s *stubAccounts) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	u, ok := s.users[telegramID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubAccounts) SetRole(_ context.Context, userID int64, role domain.Role) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}
	for _, u := range s.users {
		if u.ID == userID {
			u.Role = role
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type stubTasks struct {
	tasks   map[int64]*domain.Task
	claimed map[int64]map[int64]bool
	nextID  int64
}

func newStubTasks() *stubTasks {
	return &stubTasks{tasks: make(map[int64]*domain.Task), claimed: make(map[int64]map[int64]bool), nextID: 1}
}

func (s *stubTasks) Create(_ context.Context, employerID int64, platform, objectName, objectLink string, price decimal.Decimal, totalSlots int) (*domain.Task, error) {
	if platform == "" || objectName == "" || totalSlots < 1 || price.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	t := &domain.Task{
		ID: s.nextID, EmployerID: employerID, Platform: platform, ObjectName: objectName,
		ObjectLink: objectLink, Price: price, TotalSlots: totalSlots, RemainingSlots: totalSlots,
		Status: domain.TaskStatusActive,
	}
	s.tasks[t.ID] = t
	s.nextID++
	return t, nil
}

func (s *stubTasks) ListActive(_ context.Context) ([]domain.Task, error) {
	var out []domain.Task
	for id := int64(1); id < s.nextID; id++ {
		if t, ok := s.tasks[id]; ok && t.Status == domain.TaskStatusActive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *stubTasks) ClaimSlot(_ context.Context, taskID, workerID int64) (*domain.Task, *domain.TaskClaimed, error) {
	t, ok := s.tasks[taskID]
	if !ok || t.Status != domain.TaskStatusActive || t.RemainingSlots <= 0 {
		return nil, nil, domain.ErrTaskUnavailable
	}
	if s.claimed[taskID][workerID] {
		return nil, nil, domain.ErrAlreadyClaimed
	}
	if s.claimed[taskID] == nil {
		s.claimed[taskID] = make(map[int64]bool)
	}
	s.claimed[taskID][workerID] = true
	t.RemainingSlots--
	if t.RemainingSlots == 0 {
		t.Status = domain.TaskStatusExhausted
	}
	return t, &domain.TaskClaimed{TaskID: taskID}, nil
}

type stubWithdrawals struct {
	minimum decimal.Decimal
	nextID  int64
}

func (s *stubWithdrawals) Request(_ context.Context, userID int64, amount decimal.Decimal, wallet string) (*domain.Withdrawal, *domain.WithdrawalRequested, error) {
	if wallet == "" || amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, domain.ErrInvalidInput
	}
	if amount.LessThan(s.minimum) {
		return nil, nil, domain.ErrBelowMinimum
	}
	s.nextID++
	w := &domain.Withdrawal{ID: s.nextID, UserID: userID, Amount: amount, Wallet: wallet, Status: domain.WithdrawalStatusPending}
	return w, &domain.WithdrawalRequested{WithdrawalID: w.ID, Amount: amount, Wallet: wallet}, nil
}

func newTestServer() (*Server, *stubAccounts, *stubTasks) {
	accounts := newStubAccounts()
	tasks := newStubTasks()
	cfg := &config.Config{Port: 5000, CommissionRate: 0.15, MinWithdrawal: 50}
	srv := NewServer(cfg, accounts, tasks, &stubWithdrawals{minimum: decimal.NewFromInt(50)})
	return srv, accounts, tasks
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGetUserCreatesAccount(t *testing.T) {
	srv, _, _ := newTestServer()
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/user", map[string]any{"user_id": 42, "username": "alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var resp userResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Role != domain.RoleUnset {
		t.Errorf("role: got %q, want unset", resp.Role)
	}
	if !resp.Balance.IsZero() {
		t.Errorf("balance: got %s, want 0", resp.Balance)
	}

	if rec := doJSON(t, router, http.MethodPost, "/api/user", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing user_id: got %d, want 400", rec.Code)
	}
}

func TestCreateTaskRequiresEmployer(t *testing.T) {
	srv, accounts, _ := newTestServer()
	router := srv.Router()

	worker, _ := accounts.GetOrCreate(context.Background(), 42, "bob")
	accounts.SetRole(context.Background(), worker.ID, domain.RoleWorker)

	payload := map[string]any{
		"user_id": 42, "platform": "google", "object_name": "Cafe", "object_link": "https://maps.example/1",
		"price": 10, "quantity": 3,
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/tasks", payload); rec.Code != http.StatusForbidden {
		t.Errorf("worker posting task: got %d, want 403", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/role", map[string]any{"user_id": 42, "role": "employer"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set role: got %d, want 200", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/tasks", payload); rec.Code != http.StatusCreated {
		t.Errorf("employer posting task: got %d, want 201", rec.Code)
	}

	listRec := doJSON(t, router, http.MethodGet, "/api/tasks", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list tasks: got %d, want 200", listRec.Code)
	}
	var tasks []taskResponse
	if err := json.NewDecoder(listRec.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Remaining != 3 {
		t.Errorf("listing: got %+v, want one task with 3 remaining", tasks)
	}
}

func TestClaimConflicts(t *testing.T) {
	srv, accounts, tasks := newTestServer()
	router := srv.Router()

	employer, _ := accounts.GetOrCreate(context.Background(), 1, "boss")
	accounts.SetRole(context.Background(), employer.ID, domain.RoleEmployer)
	worker, _ := accounts.GetOrCreate(context.Background(), 42, "bob")
	accounts.SetRole(context.Background(), worker.ID, domain.RoleWorker)

	task, err := tasks.Create(context.Background(), employer.ID, "yandex", "Shop", "https://maps.example/2", decimal.NewFromInt(20), 1)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if rec := doJSON(t, router, http.MethodPost, "/api/tasks/1/claim", map[string]any{"user_id": 42}); rec.Code != http.StatusOK {
		t.Fatalf("first claim: got %d, want 200", rec.Code)
	}
	// Slot count hit zero, so a repeat claim conflicts either way.
	if rec := doJSON(t, router, http.MethodPost, "/api/tasks/1/claim", map[string]any{"user_id": 42}); rec.Code != http.StatusConflict {
		t.Errorf("repeat claim: got %d, want 409", rec.Code)
	}
	if got := tasks.tasks[task.ID].RemainingSlots; got != 0 {
		t.Errorf("remaining slots: got %d, want 0", got)
	}
}

func TestWithdrawValidation(t *testing.T) {
	srv, accounts, _ := newTestServer()
	router := srv.Router()

	worker, _ := accounts.GetOrCreate(context.Background(), 42, "bob")
	accounts.SetRole(context.Background(), worker.ID, domain.RoleWorker)

	rec := doJSON(t, router, http.MethodPost, "/api/withdraw", map[string]any{"user_id": 42, "amount": 10, "wallet": "qiwi-1"})
	if rec.Code != http.StatusConflict {
		t.Errorf("below minimum: got %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/withdraw", map[string]any{"user_id": 42, "amount": 60, "wallet": "qiwi-1"})
	if rec.Code != http.StatusCreated {
		t.Errorf("valid request: got %d, want 201", rec.Code)
	}
}
