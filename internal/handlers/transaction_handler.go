package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/models"
	"fxvest/internal/pagination"
	"fxvest/internal/services"
)

// TransactionHandler handles deposit and withdrawal requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for a deposit or
// withdrawal. Both start in pending status awaiting operator approval.
type CreateTransactionRequest struct {
	Type   models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount int64                  `json:"amount" binding:"required,gt=0"`
}

// CreateTransaction handles submitting a pending deposit or withdrawal.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var transaction *models.Transaction
	switch req.Type {
	case models.TransactionTypeDeposit:
		transaction, err = h.transactionService.CreateDeposit(userID, req.Amount)
	case models.TransactionTypeWithdrawal:
		transaction, err = h.transactionService.CreateWithdrawal(userID, req.Amount)
	default:
		err = apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown transaction type")
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetUserTransactions handles listing a user's transactions.
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetWithdrawable handles computing the amount a user may withdraw. An
// optional exclude_transaction_id query parameter excludes one pending
// withdrawal from the reserved total, for re-evaluating an existing request.
func (h *TransactionHandler) GetWithdrawable(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var exclude *uint
	if raw := c.Query("exclude_transaction_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid exclude_transaction_id"))
			return
		}
		id := uint(parsed)
		exclude = &id
	}

	amount, err := h.transactionService.Withdrawable(userID, exclude)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawable": amount})
}
