package accounts_repo

import (
	"context"

	"bank/internal/domain"
)

// AccountRepository looks accounts up by account number only.
// Implementations return domain.ErrAccountNotFound and
// domain.ErrAccountAlreadyExists for the corresponding conditions.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByAccountNo(ctx context.Context, accountNo string) (*domain.Account, error)
	// FindByAccountNoForUpdate locks the row until the surrounding transaction ends.
	FindByAccountNoForUpdate(ctx context.Context, accountNo string) (*domain.Account, error)
	Save(ctx context.Context, account *domain.Account) error
	List(ctx context.Context) ([]domain.Account, error)
}
