package handler

import (
	"net/http"

	"adledger-server/internal/apierrors"
	"adledger-server/internal/ledger/processor"
	"adledger-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handler struct {
	processor *processor.LedgerProcessor
	logger    *observability.Logger
}

func New(processor *processor.LedgerProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// CreateUserRequest represents the HTTP request for creating or fetching a user
type CreateUserRequest struct {
	ExternalID   string `json:"external_id" binding:"required,max=64"`
	DisplayName  string `json:"display_name" binding:"max=255"`
	ReferralCode string `json:"referral_code,omitempty" binding:"max=32"`
}

// UserActionRequest identifies the user a ledger action applies to
type UserActionRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// WithdrawalRequest represents the HTTP request for a payout
type WithdrawalRequest struct {
	UserID      string           `json:"user_id" binding:"required,uuid"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Method      string           `json:"method"`
	Destination string           `json:"destination"`
}

// AdCallbackRequest is the ad network's completion notice
type AdCallbackRequest struct {
	UserID string `json:"user_id" form:"user_id" binding:"required,uuid"`
	Status string `json:"status" form:"status" binding:"required"`
}

// HandleCreateUser returns the user for an external identity, creating it on first sight
func (h *Handler) HandleCreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "external_id", Value: req.ExternalID})

	user, created, err := h.processor.GetOrCreateUser(ctx, processor.GetOrCreateUserRequest{
		ExternalID:   req.ExternalID,
		DisplayName:  req.DisplayName,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, user)
}

// HandleGetUser returns the current snapshot of a user
func (h *Handler) HandleGetUser(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.userIDParam(c)
	if !ok {
		return
	}

	user, err := h.processor.GetUser(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// HandleWatchAd credits one ad watch
func (h *Handler) HandleWatchAd(c *gin.Context) {
	ctx := c.Request.Context()

	var req UserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	result, err := h.processor.RecordAdWatch(ctx, uuid.MustParse(req.UserID))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"earnings": result.Earned.StringFixed(processor.AmountPlaces),
		"user":     result.User,
	})
}

// HandleAdCallback accepts completion notices from the ad network as JSON or query parameters
func (h *Handler) HandleAdCallback(c *gin.Context) {
	ctx := c.Request.Context()

	var req AdCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	result, err := h.processor.HandleAdCallback(ctx, processor.AdCallbackRequest{
		UserID: uuid.MustParse(req.UserID),
		Status: req.Status,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	response := gin.H{
		"success":  true,
		"credited": result.Credited,
	}
	if result.Credited {
		response["earnings"] = result.Earned.StringFixed(processor.AmountPlaces)
	}
	c.JSON(http.StatusOK, response)
}

// HandleClaimEarnings moves today's earnings into the withdrawable balance
func (h *Handler) HandleClaimEarnings(c *gin.Context) {
	ctx := c.Request.Context()

	var req UserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	result, err := h.processor.ClaimEarnings(ctx, uuid.MustParse(req.UserID))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"claimed": result.ClaimedString(),
		"user":    result.User,
	})
}

// HandleWithdrawalRequest records a pending payout
func (h *Handler) HandleWithdrawalRequest(c *gin.Context) {
	ctx := c.Request.Context()

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	withdrawal, err := h.processor.RequestWithdrawal(ctx, processor.RequestWithdrawalRequest{
		UserID:      uuid.MustParse(req.UserID),
		Amount:      *req.Amount,
		Method:      req.Method,
		Destination: req.Destination,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"request": withdrawal,
	})
}

// HandleListWithdrawals returns a user's withdrawal history
func (h *Handler) HandleListWithdrawals(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.userIDParam(c)
	if !ok {
		return
	}

	withdrawals, err := h.processor.ListUserWithdrawals(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, withdrawals)
}

// HandleListReferrals returns the users referred by a user
func (h *Handler) HandleListReferrals(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.userIDParam(c)
	if !ok {
		return
	}

	referrals, err := h.processor.ListUserReferrals(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, referrals)
}

func (h *Handler) userIDParam(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		apierrors.BadRequest(c, "INVALID_USER_ID", "Invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}
