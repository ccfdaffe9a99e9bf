package accounts_http

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bank/internal/app/accounts"
	"bank/internal/domain"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type AccountResponse struct {
	ID            string      `json:"id"`
	AccountNo     string      `json:"accountNo"`
	HolderName    string      `json:"holderName"`
	Balance       json.Number `json:"balance"`
	IsKYCVerified bool        `json:"isKYCVerified"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type TransferResponse struct {
	Sender            AccountResponse `json:"sender"`
	Receiver          AccountResponse `json:"receiver"`
	TransferredAmount json.Number     `json:"transferredAmount"`
}

func toAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:            a.ID,
		AccountNo:     a.AccountNo,
		HolderName:    a.HolderName,
		Balance:       json.Number(a.Balance.StringFixed(2)),
		IsKYCVerified: a.IsKYCVerified,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toTransferResponse(r *accounts.TransferResult) TransferResponse {
	return TransferResponse{
		Sender:            toAccountResponse(r.Sender),
		Receiver:          toAccountResponse(r.Receiver),
		TransferredAmount: json.Number(r.TransferredAmount.StringFixed(2)),
	}
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		message = "Internal server error"
	}
	writeJSON(w, logger, status, envelope{Success: false, Message: message})
}
