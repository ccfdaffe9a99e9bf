package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bank/internal/domain"
	"bank/internal/repository/accounts_repo"
	"bank/internal/repository/outbox_repo"
	"bank/internal/util"
	"bank/internal/validation"
)

type AccountService interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	DepositMoney(ctx context.Context, accountNo, amount string) (*domain.Account, error)
	WithdrawMoney(ctx context.Context, accountNo, amount string) (*domain.Account, error)
	TransferMoney(ctx context.Context, senderAccount, receiverAccount, amount string) (*TransferResult, error)
}

// Transactor runs fn so that every repository call made with the ctx it
// receives commits together or not at all.
type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

type accountService struct {
	tx          Transactor
	accountRepo accounts_repo.AccountRepository
	outboxRepo  outbox_repo.OutboxRepository
	logger      *zap.Logger
}

func NewAccountService(
	tx Transactor,
	accountRepo accounts_repo.AccountRepository,
	outboxRepo outbox_repo.OutboxRepository,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		tx:          tx,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

func (s *accountService) CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.Account, error) {
	balance, err := validation.ParseNonNegativeMoney(in.Balance, "Initial balance")
	if err != nil {
		return nil, err
	}
	accountNo, err := validation.NormalizeAccountNo(in.AccountNo, "accountNo")
	if err != nil {
		return nil, err
	}
	holderName, err := validation.NormalizeHolderName(in.HolderName)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:            util.GenerateUUID(),
		AccountNo:     accountNo,
		HolderName:    holderName,
		Balance:       balance,
		IsKYCVerified: in.IsKYCVerified,
	}

	err = s.tx.Transact(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return err
		}
		return s.recordEvent(ctx, accountNo, domain.AccountEvent{
			Type:      domain.EventAccountCreated,
			AccountNo: accountNo,
			Balance:   account.Balance,
			Timestamp: account.CreatedAt,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountAlreadyExists) {
			s.logger.Warn("Account number already exists", zap.String("account_no", accountNo))
			return nil, domain.ConflictError(err, "Account number already exists")
		}
		s.logger.Error("Failed to create account", zap.String("account_no", accountNo), zap.Error(err))
		return nil, fmt.Errorf("failed to create account %s: %w", accountNo, err)
	}

	s.logger.Info("Account created",
		zap.String("account_no", accountNo),
		zap.String("balance", account.Balance.StringFixed(2)),
		zap.Bool("kyc_verified", account.IsKYCVerified))
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) DepositMoney(ctx context.Context, accountNo, amount string) (*domain.Account, error) {
	parsed, err := validation.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	no, err := validation.NormalizeAccountNo(accountNo, "accountNo")
	if err != nil {
		return nil, err
	}

	var account *domain.Account
	err = s.tx.Transact(ctx, func(ctx context.Context) error {
		account, err = s.lockAccount(ctx, no, "accountNo")
		if err != nil {
			return err
		}
		account.Credit(parsed)
		if err := s.accountRepo.Save(ctx, account); err != nil {
			return err
		}
		return s.recordEvent(ctx, no, domain.AccountEvent{
			Type:      domain.EventAccountDeposited,
			AccountNo: no,
			Balance:   account.Balance,
			Amount:    &parsed,
			Timestamp: account.UpdatedAt,
		})
	})
	if err != nil {
		return nil, s.fail("Deposit failed", no, parsed, err)
	}

	s.logger.Info("Deposit successful",
		zap.String("account_no", no),
		zap.String("amount", parsed.StringFixed(2)),
		zap.String("new_balance", account.Balance.StringFixed(2)))
	return account, nil
}

func (s *accountService) WithdrawMoney(ctx context.Context, accountNo, amount string) (*domain.Account, error) {
	parsed, err := validation.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	no, err := validation.NormalizeAccountNo(accountNo, "accountNo")
	if err != nil {
		return nil, err
	}

	var account *domain.Account
	err = s.tx.Transact(ctx, func(ctx context.Context) error {
		account, err = s.lockAccount(ctx, no, "accountNo")
		if err != nil {
			return err
		}
		if !account.HasFunds(parsed) {
			return domain.ValidationError("Insufficient balance")
		}
		account.Debit(parsed)
		if err := s.accountRepo.Save(ctx, account); err != nil {
			return err
		}
		return s.recordEvent(ctx, no, domain.AccountEvent{
			Type:      domain.EventAccountWithdrawn,
			AccountNo: no,
			Balance:   account.Balance,
			Amount:    &parsed,
			Timestamp: account.UpdatedAt,
		})
	})
	if err != nil {
		return nil, s.fail("Withdrawal failed", no, parsed, err)
	}

	s.logger.Info("Withdrawal successful",
		zap.String("account_no", no),
		zap.String("amount", parsed.StringFixed(2)),
		zap.String("new_balance", account.Balance.StringFixed(2)))
	return account, nil
}

func (s *accountService) TransferMoney(ctx context.Context, senderAccount, receiverAccount, amount string) (*TransferResult, error) {
	parsed, err := validation.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	senderNo, err := validation.NormalizeAccountNo(senderAccount, "senderAccount")
	if err != nil {
		return nil, err
	}
	receiverNo, err := validation.NormalizeAccountNo(receiverAccount, "receiverAccount")
	if err != nil {
		return nil, err
	}
	if senderNo == receiverNo {
		return nil, domain.ValidationError("Sender and receiver accounts must be different")
	}

	var sender, receiver *domain.Account
	err = s.tx.Transact(ctx, func(ctx context.Context) error {
		sender, receiver, err = s.lockPair(ctx, senderNo, receiverNo)
		if err != nil {
			return err
		}
		if !sender.IsKYCVerified {
			return domain.ValidationError("Transfer failed: sender KYC is not verified")
		}
		if !sender.HasFunds(parsed) {
			return domain.ValidationError("Transfer failed: insufficient sender balance")
		}

		sender.Debit(parsed)
		receiver.Credit(parsed)

		if err := s.accountRepo.Save(ctx, sender); err != nil {
			return err
		}
		if err := s.accountRepo.Save(ctx, receiver); err != nil {
			return err
		}
		return s.recordEvent(ctx, senderNo, domain.AccountEvent{
			Type:            domain.EventAccountTransferred,
			AccountNo:       senderNo,
			Balance:         sender.Balance,
			Amount:          &parsed,
			CounterpartyNo:  receiverNo,
			CounterpartyBal: &receiver.Balance,
			Timestamp:       sender.UpdatedAt,
		})
	})
	if err != nil {
		return nil, s.fail("Transfer failed", senderNo, parsed, err, zap.String("receiver_no", receiverNo))
	}

	s.logger.Info("Transfer successful",
		zap.String("sender_no", senderNo),
		zap.String("receiver_no", receiverNo),
		zap.String("amount", parsed.StringFixed(2)))
	return &TransferResult{Sender: sender, Receiver: receiver, TransferredAmount: parsed}, nil
}

func (s *accountService) lockAccount(ctx context.Context, accountNo, field string) (*domain.Account, error) {
	account, err := s.accountRepo.FindByAccountNoForUpdate(ctx, accountNo)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.NotFoundError(err, "Account not found for %s: %s", field, accountNo)
		}
		return nil, err
	}
	return account, nil
}

// lockPair locks both accounts in account-number order so that opposing
// transfers cannot deadlock. A missing sender is reported before a missing receiver.
func (s *accountService) lockPair(ctx context.Context, senderNo, receiverNo string) (*domain.Account, *domain.Account, error) {
	type lookup struct {
		account *domain.Account
		err     error
	}
	var first, second lookup
	if senderNo < receiverNo {
		first.account, first.err = s.lockAccount(ctx, senderNo, "senderAccount")
		second.account, second.err = s.lockAccount(ctx, receiverNo, "receiverAccount")
	} else {
		second.account, second.err = s.lockAccount(ctx, receiverNo, "receiverAccount")
		first.account, first.err = s.lockAccount(ctx, senderNo, "senderAccount")
	}
	if first.err != nil {
		return nil, nil, first.err
	}
	if second.err != nil {
		return nil, nil, second.err
	}
	return first.account, second.account, nil
}

func (s *accountService) recordEvent(ctx context.Context, aggregateID string, event domain.AccountEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	return s.outboxRepo.CreateMessage(ctx, &domain.OutboxMessage{
		ID:          util.GenerateUUID(),
		AggregateID: aggregateID,
		EventType:   event.Type,
		Payload:     payload,
		Status:      domain.OutboxStatusPending,
		CreatedAt:   time.Now(),
	})
}

// fail logs a failed money movement and passes client errors through untouched.
func (s *accountService) fail(msg, accountNo string, amount decimal.Decimal, err error, fields ...zap.Field) error {
	fields = append(fields,
		zap.String("account_no", accountNo),
		zap.String("amount", amount.StringFixed(2)),
		zap.Error(err))
	if domain.KindOf(err) != 0 {
		s.logger.Warn(msg, fields...)
		return err
	}
	s.logger.Error(msg, fields...)
	return fmt.Errorf("%s for account %s: %w", msg, accountNo, err)
}
