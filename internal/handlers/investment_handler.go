package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/pagination"
	"fxvest/internal/services"
)

// InvestmentHandler handles investment-related requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService}
}

// CreateInvestmentRequest represents the request payload for opening an investment.
type CreateInvestmentRequest struct {
	ForexPair string  `json:"forex_pair" binding:"required,forex_pair"`
	Amount    int64   `json:"amount" binding:"required,gt=0"`
	DailyROI  float64 `json:"daily_roi" binding:"required,gt=0,lte=100"`
}

// CreateInvestment handles opening a new investment for a user.
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.CreateInvestment(userID, req.ForexPair, req.Amount, req.DailyROI)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"investment": investment})
}

// GetUserInvestments handles listing a user's investments.
func (h *InvestmentHandler) GetUserInvestments(c *gin.Context) {
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

	result, err := h.investmentService.GetUserInvestments(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetInvestment handles retrieving a specific investment.
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "investment_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.GetInvestmentByID(userID, investmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// CloseInvestment handles closing an active investment and returning its
// principal plus accrued profit to the user's balance.
func (h *InvestmentHandler) CloseInvestment(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "investment_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.CloseInvestment(userID, investmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// GetInvestmentHistory handles listing a user's accrued earnings ledger.
func (h *InvestmentHandler) GetInvestmentHistory(c *gin.Context) {
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

	result, err := h.investmentService.GetInvestmentHistory(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
