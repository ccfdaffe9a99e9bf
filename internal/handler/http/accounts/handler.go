package accounts_http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bank/internal/app/accounts"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type AccountHandler struct {
	service accounts.AccountService
	store   Pinger
	logger  *zap.Logger
}

func NewAccountHandler(s accounts.AccountService, store Pinger, l *zap.Logger) *AccountHandler {
	return &AccountHandler{service: s, store: store, logger: l}
}

// scalar accepts a JSON string or any other JSON value as its literal text,
// so account numbers and amounts may be sent as numbers or strings.
type scalar json.RawMessage

func (m *scalar) UnmarshalJSON(b []byte) error {
	*m = append((*m)[:0], b...)
	return nil
}

func (m scalar) String() string {
	raw := strings.TrimSpace(string(m))
	if raw == "" || raw == "null" {
		return ""
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return raw
		}
		return s
	}
	return raw
}

type CreateAccountRequest struct {
	AccountNo     scalar `json:"accountNo"`
	HolderName    scalar `json:"holderName"`
	Balance       scalar `json:"balance"`
	IsKYCVerified bool   `json:"isKYCVerified"`
}

type MoneyRequest struct {
	AccountNo scalar `json:"accountNo"`
	Amount    scalar `json:"amount"`
}

type TransferRequest struct {
	SenderAccount   scalar `json:"senderAccount"`
	ReceiverAccount scalar `json:"receiverAccount"`
	Amount          scalar `json:"amount"`
}

func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, h.logger, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return false
	}
	return true
}

func (h *AccountHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !h.decode(w, r, &req) {
		return
	}

	account, err := h.service.CreateAccount(r.Context(), accounts.CreateAccountInput{
		AccountNo:     req.AccountNo.String(),
		HolderName:    req.HolderName.String(),
		Balance:       req.Balance.String(),
		IsKYCVerified: req.IsKYCVerified,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, envelope{
		Success: true,
		Message: "Account created successfully",
		Data:    toAccountResponse(account),
	})
}

func (h *AccountHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAccounts(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	data := make([]AccountResponse, 0, len(list))
	for i := range list {
		data = append(data, toAccountResponse(&list[i]))
	}
	writeJSON(w, h.logger, http.StatusOK, envelope{Success: true, Data: data})
}

func (h *AccountHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req MoneyRequest
	if !h.decode(w, r, &req) {
		return
	}

	account, err := h.service.DepositMoney(r.Context(), req.AccountNo.String(), req.Amount.String())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, envelope{
		Success: true,
		Message: "Deposit successful",
		Data:    toAccountResponse(account),
	})
}

func (h *AccountHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req MoneyRequest
	if !h.decode(w, r, &req) {
		return
	}

	account, err := h.service.WithdrawMoney(r.Context(), req.AccountNo.String(), req.Amount.String())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, envelope{
		Success: true,
		Message: "Withdrawal successful",
		Data:    toAccountResponse(account),
	})
}

func (h *AccountHandler) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.TransferMoney(r.Context(), req.SenderAccount.String(), req.ReceiverAccount.String(), req.Amount.String())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, envelope{
		Success: true,
		Message: "Transfer successful",
		Data:    toTransferResponse(result),
	})
}

func (h *AccountHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		writeJSON(w, h.logger, http.StatusServiceUnavailable, envelope{Success: false, Message: "Store unavailable"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, envelope{Success: true, Message: "Server is healthy"})
}
