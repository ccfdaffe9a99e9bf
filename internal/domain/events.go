package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventAccountCreated     EventType = "account.created"
	EventAccountDeposited   EventType = "account.deposited"
	EventAccountWithdrawn   EventType = "account.withdrawn"
	EventAccountTransferred EventType = "account.transferred"
)

// AccountEvent is the payload published for every balance-affecting operation.
type AccountEvent struct {
	Type            EventType        `json:"type"`
	AccountNo       string           `json:"account_no"`
	Balance         decimal.Decimal  `json:"balance"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	CounterpartyNo  string           `json:"counterparty_no,omitempty"`
	CounterpartyBal *decimal.Decimal `json:"counterparty_balance,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}
