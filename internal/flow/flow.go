// Package flow holds the transient multi-step conversation state driving
// task creation, withdrawal, and top-up dialogs. The state is session-scoped:
// it lives in memory, keyed by user, and is never persisted.
package flow

import (
	"maps"
	"sync"
)

type Kind string

const (
	KindNewTask  Kind = "new_task"
	KindWithdraw Kind = "withdraw"
	KindTopUp    Kind = "top_up"
)

type Step string

const (
	// New-task flow
	StepPlatform Step = "awaiting_platform"
	StepName     Step = "awaiting_name"
	StepLink     Step = "awaiting_link"
	StepPrice    Step = "awaiting_price"
	StepSlots    Step = "awaiting_slots"

	// Withdraw flow
	StepWallet Step = "awaiting_wallet"
	StepAmount Step = "awaiting_amount"

	// Top-up flow
	StepTopUpAmount Step = "awaiting_topup_amount"
	StepTopUpPhone  Step = "awaiting_topup_phone"
)

// State is one user's position inside a dialog plus the answers collected so
// far. Each incoming message consumes exactly one step.
type State struct {
	Kind Kind
	Step Step
	Data map[string]string
}

// Store keeps at most one active flow per user.
type Store struct {
	mu    sync.Mutex
	flows map[int64]*State
}

func NewStore() *Store {
	return &Store{flows: make(map[int64]*State)}
}

// Start begins a flow for the user, replacing any unfinished one.
func (s *Store) Start(userID int64, kind Kind, step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[userID] = &State{Kind: kind, Step: step, Data: make(map[string]string)}
}

// Get returns a snapshot of the user's active flow state, or nil. Callers
// read the snapshot without holding the store lock, so later Advance calls
// never show through it.
func (s *Store) Get(userID int64) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.flows[userID]
	if !ok {
		return nil
	}
	cp := *st
	cp.Data = maps.Clone(st.Data)
	return &cp
}

// Advance stores one collected answer and moves the flow to the next step.
func (s *Store) Advance(userID int64, key, value string, next Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.flows[userID]
	if !ok {
		return
	}
	st.Data[key] = value
	st.Step = next
}

// Clear terminates the user's flow, finished or abandoned.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, userID)
}
