package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"bank/internal/domain"
	"bank/internal/infrastructure/database"
)

const uniqueViolation = "23505"

const accountColumns = `id, account_no, holder_name, balance, is_kyc_verified, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, account_no, holder_name, balance, is_kyc_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := database.QuerierFrom(ctx, r.db).QueryRowContext(ctx, query,
		account.ID,
		account.AccountNo,
		account.HolderName,
		account.Balance,
		account.IsKYCVerified,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to create account %s: %w", account.AccountNo, err)
	}
	return nil
}

func (r *AccountRepository) FindByAccountNo(ctx context.Context, accountNo string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_no = $1`
	return r.findOne(ctx, query, accountNo)
}

func (r *AccountRepository) FindByAccountNoForUpdate(ctx context.Context, accountNo string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_no = $1 FOR UPDATE`
	return r.findOne(ctx, query, accountNo)
}

func (r *AccountRepository) findOne(ctx context.Context, query, accountNo string) (*domain.Account, error) {
	account := &domain.Account{}
	err := database.QuerierFrom(ctx, r.db).QueryRowContext(ctx, query, accountNo).Scan(
		&account.ID,
		&account.AccountNo,
		&account.HolderName,
		&account.Balance,
		&account.IsKYCVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %s: %w", accountNo, err)
	}
	return account, nil
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE account_no = $2
		RETURNING updated_at
	`
	err := database.QuerierFrom(ctx, r.db).QueryRowContext(ctx, query, account.Balance, account.AccountNo).
		Scan(&account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("failed to update account balance for %s: %w", account.AccountNo, err)
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`
	rows, err := database.QuerierFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID,
			&a.AccountNo,
			&a.HolderName,
			&a.Balance,
			&a.IsKYCVerified,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}
