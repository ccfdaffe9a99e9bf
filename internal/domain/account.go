package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrAccountAlreadyExists = errors.New("account already exists")

type Account struct {
	ID            string
	AccountNo     string
	HolderName    string
	Balance       decimal.Decimal
	IsKYCVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Credit adds amount to the balance, keeping cents precision.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount).Round(2)
	a.UpdatedAt = time.Now()
}

// Debit subtracts amount from the balance. Callers check funds first.
func (a *Account) Debit(amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount).Round(2)
	a.UpdatedAt = time.Now()
}

func (a *Account) HasFunds(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
