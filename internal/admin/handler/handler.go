package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"adledger-server/internal/admin/processor"
	"adledger-server/internal/apierrors"
	"adledger-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	adminIDQuery  = "admin_id"
	adminIDHeader = "X-Admin-Id"

	defaultListLimit = 500
	maxListLimit     = 5000
)

type Handler struct {
	processor *processor.AdminProcessor
	logger    *observability.Logger
}

func New(processor *processor.AdminProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// BanUserRequest represents the HTTP request for banning or unbanning a user
type BanUserRequest struct {
	AdminID string `json:"admin_id"`
	UserID  string `json:"user_id" binding:"required,uuid"`
	Banned  *bool  `json:"banned" binding:"required"`
	Reason  string `json:"reason" binding:"max=500"`
}

// FlagUserRequest represents the HTTP request for flagging or unflagging a user
type FlagUserRequest struct {
	AdminID string `json:"admin_id"`
	UserID  string `json:"user_id" binding:"required,uuid"`
	Flagged *bool  `json:"flagged" binding:"required"`
	Reason  string `json:"reason" binding:"max=500"`
}

// ClaimRequest represents the HTTP request for approving or rejecting a claim
type ClaimRequest struct {
	AdminID string `json:"admin_id"`
	UserID  string `json:"user_id" binding:"required,uuid"`
	Reason  string `json:"reason" binding:"max=500"`
}

// ProcessWithdrawalRequest represents the HTTP request for settling a withdrawal
type ProcessWithdrawalRequest struct {
	AdminID    string `json:"admin_id"`
	RequestID  string `json:"request_id" binding:"required,uuid"`
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes" binding:"max=1000"`
}

// UpdateSettingsRequest represents the HTTP request for changing the economics
type UpdateSettingsRequest struct {
	AdminID       string           `json:"admin_id"`
	EarningsPerAd *decimal.Decimal `json:"earnings_per_ad,omitempty"`
	DailyAdLimit  *decimal.Decimal `json:"daily_ad_limit,omitempty"`
}

// HandleStats returns the dashboard counters
func (h *Handler) HandleStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.processor.Stats(ctx, adminIDFrom(c, ""))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleListUsers lists users by filter and search
func (h *Handler) HandleListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	limit := defaultListLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= maxListLimit {
			limit = n
		}
	}

	users, err := h.processor.ListUsers(ctx, adminIDFrom(c, ""), processor.ListUsersRequest{
		Filter: c.Query("filter"),
		Search: c.Query("search"),
		Limit:  limit,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// HandleListPendingWithdrawals lists withdrawals waiting for review
func (h *Handler) HandleListPendingWithdrawals(c *gin.Context) {
	ctx := c.Request.Context()

	pending, err := h.processor.ListPendingWithdrawals(ctx, adminIDFrom(c, ""))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pending)
}

// HandleExportUsersCSV streams every user as a CSV attachment
func (h *Handler) HandleExportUsersCSV(c *gin.Context) {
	ctx := c.Request.Context()

	var buf bytes.Buffer
	count, err := h.processor.ExportUsersCSV(ctx, adminIDFrom(c, ""), &buf)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	h.logger.Info(ctx, "exported users", observability.Field{Key: "count", Value: count})
	c.Header("Content-Disposition", `attachment; filename="users.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// HandleBanUser bans or unbans a user
func (h *Handler) HandleBanUser(c *gin.Context) {
	ctx := c.Request.Context()

	var req BanUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	user, err := h.processor.BanUser(ctx, adminIDFrom(c, req.AdminID), processor.BanUserRequest{
		UserID: uuid.MustParse(req.UserID),
		Banned: *req.Banned,
		Reason: req.Reason,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// HandleFlagUser flags or unflags a user
func (h *Handler) HandleFlagUser(c *gin.Context) {
	ctx := c.Request.Context()

	var req FlagUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	user, err := h.processor.FlagUser(ctx, adminIDFrom(c, req.AdminID), processor.FlagUserRequest{
		UserID:  uuid.MustParse(req.UserID),
		Flagged: *req.Flagged,
		Reason:  req.Reason,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// HandleApproveClaim claims a user's earnings on their behalf
func (h *Handler) HandleApproveClaim(c *gin.Context) {
	ctx := c.Request.Context()

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	result, err := h.processor.ApproveClaim(ctx, adminIDFrom(c, req.AdminID), uuid.MustParse(req.UserID))
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

// HandleRejectClaim discards a user's unclaimed earnings
func (h *Handler) HandleRejectClaim(c *gin.Context) {
	ctx := c.Request.Context()

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	result, err := h.processor.RejectClaim(ctx, adminIDFrom(c, req.AdminID), processor.RejectClaimRequest{
		UserID: uuid.MustParse(req.UserID),
		Reason: req.Reason,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"rejected": result.Rejected.String(),
		"user":     result.User,
	})
}

// HandleProcessWithdrawal approves or rejects a pending withdrawal
func (h *Handler) HandleProcessWithdrawal(c *gin.Context) {
	ctx := c.Request.Context()

	var req ProcessWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	result, err := h.processor.ProcessWithdrawal(ctx, adminIDFrom(c, req.AdminID), processor.ProcessWithdrawalRequest{
		WithdrawalID: uuid.MustParse(req.RequestID),
		Status:       req.Status,
		Notes:        req.AdminNotes,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"request": result.Withdrawal,
		"user":    result.User,
	})
}

// HandleUpdateSettings changes earnings per ad and the daily cap
func (h *Handler) HandleUpdateSettings(c *gin.Context) {
	ctx := c.Request.Context()

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	settings, err := h.processor.UpdateSettings(ctx, adminIDFrom(c, req.AdminID), processor.UpdateSettingsRequest{
		EarningsPerAd: req.EarningsPerAd,
		DailyAdLimit:  req.DailyAdLimit,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

// adminIDFrom prefers the body value, then the query string, then the header
func adminIDFrom(c *gin.Context, bodyID string) string {
	if id := strings.TrimSpace(bodyID); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.Query(adminIDQuery)); id != "" {
		return id
	}
	return strings.TrimSpace(c.GetHeader(adminIDHeader))
}
