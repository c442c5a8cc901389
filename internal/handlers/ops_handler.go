package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fxvest/internal/errors"
	"fxvest/internal/models"
	"fxvest/internal/pagination"
	"fxvest/internal/services"
)

// OpsHandler exposes the operator surface: manual cycle triggers and the run
// log. Routes using it sit behind the ops API key middleware.
type OpsHandler struct {
	cycleService services.CycleServicer
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cycleService services.CycleServicer) *OpsHandler {
	return &OpsHandler{cycleService: cycleService}
}

// RunCycleRequest represents the request payload for a manual cycle run. Date
// is optional; when empty the cycle runs for the current date. Running a date
// twice is safe: already-recorded entries are skipped, not duplicated.
type RunCycleRequest struct {
	Date string `json:"date" binding:"omitempty,ledger_date"`
}

// RunCycle handles triggering a daily cycle manually.
func (h *OpsHandler) RunCycle(c *gin.Context) {
	var req RunCycleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	asOf := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(models.DayFormat, req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date"))
			return
		}
		asOf = parsed
	}

	report, err := h.cycleService.RunDailyCycle(asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetCycleRuns handles listing recorded cycle runs, newest first.
func (h *OpsHandler) GetCycleRuns(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.cycleService.GetCycleRuns(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
