package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank/internal/domain"
)

func newAccount(no string, balance string) *domain.Account {
	return &domain.Account{
		ID:         "id-" + no,
		AccountNo:  no,
		HolderName: "Holder " + no,
		Balance:    decimal.RequireFromString(balance),
	}
}

func TestAccountRepository_CreateFindList(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Accounts()

	require.NoError(t, repo.Create(ctx, newAccount("1000000001", "10")))
	require.NoError(t, repo.Create(ctx, newAccount("1000000002", "20")))

	err := repo.Create(ctx, newAccount("1000000001", "0"))
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	got, err := repo.FindByAccountNo(ctx, "1000000002")
	require.NoError(t, err)
	assert.Equal(t, "20", got.Balance.String())
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.FindByAccountNo(ctx, "1999999999")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1000000002", list[0].AccountNo)
	assert.Equal(t, "1000000001", list[1].AccountNo)
}

func TestAccountRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Accounts()
	require.NoError(t, repo.Create(ctx, newAccount("1000000001", "10")))

	a, err := repo.FindByAccountNo(ctx, "1000000001")
	require.NoError(t, err)
	a.Balance = decimal.NewFromInt(999)

	b, err := repo.FindByAccountNo(ctx, "1000000001")
	require.NoError(t, err)
	assert.Equal(t, "10", b.Balance.String())
}

func TestStore_TransactRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	accounts := store.Accounts()
	outbox := store.Outbox()
	require.NoError(t, accounts.Create(ctx, newAccount("1000000001", "10")))

	boom := errors.New("boom")
	err := store.Transact(ctx, func(ctx context.Context) error {
		a, err := accounts.FindByAccountNoForUpdate(ctx, "1000000001")
		require.NoError(t, err)
		a.Credit(decimal.NewFromInt(5))
		require.NoError(t, accounts.Save(ctx, a))
		require.NoError(t, accounts.Create(ctx, newAccount("1000000002", "1")))
		require.NoError(t, outbox.CreateMessage(ctx, &domain.OutboxMessage{ID: "m1", Status: domain.OutboxStatusPending}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, err := accounts.FindByAccountNo(ctx, "1000000001")
	require.NoError(t, err)
	assert.Equal(t, "10", a.Balance.String())

	_, err = accounts.FindByAccountNo(ctx, "1000000002")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	pending, err := outbox.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRepository_PendingAndSent(t *testing.T) {
	ctx := context.Background()
	outbox := NewStore().Outbox()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, outbox.CreateMessage(ctx, &domain.OutboxMessage{ID: id, Status: domain.OutboxStatusPending}))
	}

	pending, err := outbox.GetPendingMessages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)

	require.NoError(t, outbox.MarkMessagesAsSent(ctx, []string{"a", "b"}))

	pending, err = outbox.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c", pending[0].ID)
}
