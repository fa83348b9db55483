package service

// In-memory fakes for the repo interfaces, mirroring the SQL guards
// (conditional decrement, partial unique index, FOR UPDATE overdraft check)
// so the real service logic is exercised without a database.

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct{}

func (fakeDB) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

type adminList []int64

func (a adminList) IsAdmin(id int64) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// ---

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *memUsers) seed(telegramID int64, role domain.Role, balance decimal.Decimal) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &domain.User{ID: m.nextID, TelegramID: telegramID, Role: role, Balance: balance}
	m.users[u.ID] = u
	m.nextID++
	cp := *u
	return &cp
}

func (m *memUsers) GetOrCreate(_ context.Context, telegramID int64, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TelegramID == telegramID {
			u.Username = username
			cp := *u
			return &cp, nil
		}
	}
	u := &domain.User{ID: m.nextID, TelegramID: telegramID, Username: username, Role: domain.RoleUnset, Balance: decimal.Zero}
	m.users[u.ID] = u
	m.nextID++
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) SetRole(_ context.Context, id int64, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *memUsers) GetForUpdate(_ context.Context, _ pgx.Tx, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) AddBalance(_ context.Context, _ pgx.Tx, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return decimal.Zero, domain.ErrUserNotFound
	}
	u.Balance = u.Balance.Add(delta)
	return u.Balance, nil
}

func (m *memUsers) balance(id int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Balance
}

// ---

type memJournal struct {
	mu      sync.Mutex
	entries []domain.Transaction
}

func (m *memJournal) Insert(_ context.Context, _ pgx.Tx, userID int64, amount decimal.Decimal, txType domain.TxType, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, domain.Transaction{
		ID: int64(len(m.entries) + 1), UserID: userID, Amount: amount, TxType: txType, Description: description,
	})
	return nil
}

func (m *memJournal) ListByUser(_ context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memJournal) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// ---

type memTasks struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
}

func newMemTasks() *memTasks {
	return &memTasks{nextID: 1, tasks: make(map[int64]*domain.Task)}
}

func (m *memTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	cp.ID = m.nextID
	cp.RemainingSlots = cp.TotalSlots
	cp.Status = domain.TaskStatusActive
	m.tasks[cp.ID] = &cp
	m.nextID++
	out := cp
	return &out, nil
}

func (m *memTasks) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) ListActive(_ context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for id := int64(1); id < m.nextID; id++ {
		t, ok := m.tasks[id]
		if ok && t.Status == domain.TaskStatusActive && t.RemainingSlots > 0 {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTasks) ListByEmployer(_ context.Context, employerID int64) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for id := int64(1); id < m.nextID; id++ {
		t, ok := m.tasks[id]
		if ok && t.EmployerID == employerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTasks) DecrementSlot(_ context.Context, _ pgx.Tx, taskID int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.Status != domain.TaskStatusActive || t.RemainingSlots <= 0 {
		return nil, domain.ErrTaskUnavailable
	}
	t.RemainingSlots--
	if t.RemainingSlots == 0 {
		t.Status = domain.TaskStatusExhausted
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) IncrementSlot(_ context.Context, _ pgx.Tx, taskID int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if t.RemainingSlots < t.TotalSlots {
		t.RemainingSlots++
	}
	if t.Status == domain.TaskStatusExhausted {
		t.Status = domain.TaskStatusActive
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Close(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	t.Status = domain.TaskStatusClosed
	return nil
}

// ---

type memClaims struct {
	mu     sync.Mutex
	nextID int64
	claims map[int64]*domain.Claim
}

func newMemClaims() *memClaims {
	return &memClaims{nextID: 1, claims: make(map[int64]*domain.Claim)}
}

func (m *memClaims) Create(_ context.Context, _ pgx.Tx, taskID, workerID int64) (*domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.TaskID == taskID && c.WorkerID == workerID && c.Status != domain.ClaimStatusSettled {
			return nil, domain.ErrAlreadyClaimed
		}
	}
	c := &domain.Claim{ID: m.nextID, TaskID: taskID, WorkerID: workerID, Status: domain.ClaimStatusOpen}
	m.claims[c.ID] = c
	m.nextID++
	cp := *c
	return &cp, nil
}

func (m *memClaims) findUnsettled(taskID, workerID int64) *domain.Claim {
	for _, c := range m.claims {
		if c.TaskID == taskID && c.WorkerID == workerID && c.Status != domain.ClaimStatusSettled {
			return c
		}
	}
	return nil
}

func (m *memClaims) GetUnsettled(_ context.Context, taskID, workerID int64) (*domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.findUnsettled(taskID, workerID)
	if c == nil {
		return nil, domain.ErrNoActiveClaim
	}
	cp := *c
	return &cp, nil
}

func (m *memClaims) GetUnsettledForUpdate(_ context.Context, _ pgx.Tx, taskID, workerID int64) (*domain.Claim, error) {
	return m.GetUnsettled(context.Background(), taskID, workerID)
}

func (m *memClaims) LatestOpenByWorker(_ context.Context, workerID int64) (*domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.Claim
	for _, c := range m.claims {
		if c.WorkerID == workerID && c.Status == domain.ClaimStatusOpen {
			if latest == nil || c.ID > latest.ID {
				latest = c
			}
		}
	}
	if latest == nil {
		return nil, domain.ErrNoActiveClaim
	}
	cp := *latest
	return &cp, nil
}

func (m *memClaims) SetStatus(_ context.Context, _ pgx.Tx, id int64, status domain.ClaimStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return domain.ErrNoActiveClaim
	}
	c.Status = status
	return nil
}

// ---

type memSubs struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]*domain.Submission
}

func newMemSubs() *memSubs {
	return &memSubs{nextID: 1, subs: make(map[int64]*domain.Submission)}
}

func (m *memSubs) Create(_ context.Context, _ pgx.Tx, taskID, workerID int64, proof string) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &domain.Submission{
		ID: m.nextID, TaskID: taskID, WorkerID: workerID, Proof: proof,
		Status: domain.SubmissionStatusPending, CreatedAt: time.Now(),
	}
	m.subs[s.ID] = s
	m.nextID++
	cp := *s
	return &cp, nil
}

func (m *memSubs) GetByID(_ context.Context, id int64) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubs) GetForUpdate(_ context.Context, _ pgx.Tx, id int64) (*domain.Submission, error) {
	return m.GetByID(context.Background(), id)
}

func (m *memSubs) SetStatus(_ context.Context, _ pgx.Tx, id int64, status domain.SubmissionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	now := time.Now()
	s.Status = status
	s.ReviewedAt = &now
	return nil
}

func (m *memSubs) ListPending(_ context.Context) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Submission
	for id := int64(1); id < m.nextID; id++ {
		s, ok := m.subs[id]
		if ok && s.Status == domain.SubmissionStatusPending {
			out = append(out, *s)
		}
	}
	return out, nil
}

// ---

type memWithdrawals struct {
	mu     sync.Mutex
	nextID int64
	ws     map[int64]*domain.Withdrawal
}

func newMemWithdrawals() *memWithdrawals {
	return &memWithdrawals{nextID: 1, ws: make(map[int64]*domain.Withdrawal)}
}

func (m *memWithdrawals) Create(_ context.Context, _ pgx.Tx, userID int64, amount decimal.Decimal, wallet string) (*domain.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := &domain.Withdrawal{
		ID: m.nextID, UserID: userID, Amount: amount, Wallet: wallet,
		Status: domain.WithdrawalStatusPending, CreatedAt: time.Now(),
	}
	m.ws[w.ID] = w
	m.nextID++
	cp := *w
	return &cp, nil
}

func (m *memWithdrawals) GetForUpdate(_ context.Context, _ pgx.Tx, id int64) (*domain.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.ws[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memWithdrawals) SetStatus(_ context.Context, _ pgx.Tx, id int64, status domain.WithdrawalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.ws[id]
	if !ok {
		return domain.ErrWithdrawalNotFound
	}
	now := time.Now()
	w.Status = status
	w.ProcessedAt = &now
	return nil
}

func (m *memWithdrawals) ListPending(_ context.Context) ([]domain.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Withdrawal
	for id := int64(1); id < m.nextID; id++ {
		w, ok := m.ws[id]
		if ok && w.Status == domain.WithdrawalStatusPending {
			out = append(out, *w)
		}
	}
	return out, nil
}

// ---

type memInvoices struct {
	mu     sync.Mutex
	nextID int64
	invs   map[string]*domain.Invoice
}

func newMemInvoices() *memInvoices {
	return &memInvoices{nextID: 1, invs: make(map[string]*domain.Invoice)}
}

func (m *memInvoices) Create(_ context.Context, code string, employerID int64, amount decimal.Decimal, phone string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := &domain.Invoice{
		ID: m.nextID, Code: code, EmployerID: employerID, Amount: amount, Phone: phone,
		Status: domain.InvoiceStatusWaiting, CreatedAt: time.Now(),
	}
	m.invs[code] = inv
	m.nextID++
	cp := *inv
	return &cp, nil
}

func (m *memInvoices) GetByCode(_ context.Context, code string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invs[code]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memInvoices) MarkPaid(_ context.Context, code string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invs[code]
	if !ok || inv.Status != domain.InvoiceStatusWaiting {
		return nil, domain.ErrInvoiceNotFound
	}
	now := time.Now()
	inv.Status = domain.InvoiceStatusPaid
	inv.PaidAt = &now
	cp := *inv
	return &cp, nil
}

// ---

type memCommission struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

func (m *memCommission) Add(_ context.Context, _ pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = m.balance.Add(amount)
	return m.balance, nil
}

func (m *memCommission) Balance(_ context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance, nil
}

func (m *memCommission) total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance
}
