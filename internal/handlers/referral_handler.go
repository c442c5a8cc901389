package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fxvest/internal/services"
)

// ReferralHandler handles referral network queries.
type ReferralHandler struct {
	referralService services.ReferralServicer
	userService     services.UserServicer
}

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(referralService services.ReferralServicer, userService services.UserServicer) *ReferralHandler {
	return &ReferralHandler{referralService: referralService, userService: userService}
}

// ResolveReferralCode handles looking up the user who owns a referral code, so
// signup flows can attach the referrer before creating the new account.
func (h *ReferralHandler) ResolveReferralCode(c *gin.Context) {
	user, err := h.userService.GetUserByReferralCode(c.Param("code"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetReferralStats handles retrieving per-level referral counts and total
// referral earnings for a user.
func (h *ReferralHandler) GetReferralStats(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.referralService.GetReferralStats(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetReferralHistory handles listing each referred user with the earnings they
// generated for the referrer.
func (h *ReferralHandler) GetReferralHistory(c *gin.Context) {
	userID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.referralService.GetReferralHistory(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"referrals": entries})
}
