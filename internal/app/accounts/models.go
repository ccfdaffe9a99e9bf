package accounts

import (
	"github.com/shopspring/decimal"

	"bank/internal/domain"
)

// CreateAccountInput carries raw, not yet normalized fields.
type CreateAccountInput struct {
	AccountNo     string
	HolderName    string
	Balance       string
	IsKYCVerified bool
}

type TransferResult struct {
	Sender            *domain.Account
	Receiver          *domain.Account
	TransferredAmount decimal.Decimal
}
