// Package memory is a single-process store for local runs and tests.
// Transactions are serialized by one mutex and roll back by restoring a
// copy of the state taken when the transaction began.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"bank/internal/domain"
)

type txKey struct{}

type Store struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	order    []string
	outbox   []domain.OutboxMessage
}

func NewStore() *Store {
	return &Store{accounts: make(map[string]domain.Account)}
}

func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{s: s}
}

func (s *Store) Outbox() *OutboxRepository {
	return &OutboxRepository{s: s}
}

func (s *Store) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := maps.Clone(s.accounts)
	order := slices.Clone(s.order)
	outbox := slices.Clone(s.outbox)

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.accounts = accounts
		s.order = order
		s.outbox = outbox
		return err
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock acquires the store mutex unless ctx already holds it through Transact.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type AccountRepository struct {
	s *Store
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.accounts[account.AccountNo]; ok {
		return domain.ErrAccountAlreadyExists
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.accounts[account.AccountNo] = *account
	r.s.order = append(r.s.order, account.AccountNo)
	return nil
}

func (r *AccountRepository) FindByAccountNo(ctx context.Context, accountNo string) (*domain.Account, error) {
	defer r.s.lock(ctx)()
	a, ok := r.s.accounts[accountNo]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

// FindByAccountNoForUpdate is FindByAccountNo: the transaction already holds the store.
func (r *AccountRepository) FindByAccountNoForUpdate(ctx context.Context, accountNo string) (*domain.Account, error) {
	return r.FindByAccountNo(ctx, accountNo)
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.accounts[account.AccountNo]
	if !ok {
		return domain.ErrAccountNotFound
	}
	stored.Balance = account.Balance
	stored.UpdatedAt = time.Now()
	r.s.accounts[account.AccountNo] = stored
	account.UpdatedAt = stored.UpdatedAt
	return nil
}

// List returns accounts newest first.
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	defer r.s.lock(ctx)()
	out := make([]domain.Account, 0, len(r.s.order))
	for i := len(r.s.order) - 1; i >= 0; i-- {
		out = append(out, r.s.accounts[r.s.order[i]])
	}
	return out, nil
}

type OutboxRepository struct {
	s *Store
}

func (r *OutboxRepository) CreateMessage(ctx context.Context, msg *domain.OutboxMessage) error {
	defer r.s.lock(ctx)()
	r.s.outbox = append(r.s.outbox, *msg)
	return nil
}

func (r *OutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	defer r.s.lock(ctx)()
	var out []domain.OutboxMessage
	for _, m := range r.s.outbox {
		if len(out) == limit {
			break
		}
		if m.Status == domain.OutboxStatusPending {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkMessagesAsSent(ctx context.Context, ids []string) error {
	defer r.s.lock(ctx)()
	now := time.Now()
	for i := range r.s.outbox {
		if slices.Contains(ids, r.s.outbox[i].ID) {
			r.s.outbox[i].Status = domain.OutboxStatusSent
			r.s.outbox[i].SentAt = &now
		}
	}
	return nil
}
