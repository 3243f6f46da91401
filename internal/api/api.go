package api

import (
	adminHandler "adledger-server/internal/admin/handler"
	ledgerHandler "adledger-server/internal/ledger/handler"
	pricingHandler "adledger-server/internal/pricing/handler"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	router         *gin.RouterGroup
	ledgerHandler  ledgerHandler.Handler
	adminHandler   adminHandler.Handler
	pricingHandler pricingHandler.Handler
	rateLimit      gin.HandlerFunc
}

func New(
	router *gin.RouterGroup,
	ledgerHandler ledgerHandler.Handler,
	adminHandler adminHandler.Handler,
	pricingHandler pricingHandler.Handler,
	rateLimit gin.HandlerFunc,
) API {
	if rateLimit == nil {
		rateLimit = func(c *gin.Context) { c.Next() }
	}
	return API{
		router:         router,
		ledgerHandler:  ledgerHandler,
		adminHandler:   adminHandler,
		pricingHandler: pricingHandler,
		rateLimit:      rateLimit,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	a.Metrics()

	apiGroup := a.router.Group("/api", a.rateLimit)
	{
		apiGroup.POST("/user", a.ledgerHandler.HandleCreateUser)
		apiGroup.GET("/user/:userId", a.ledgerHandler.HandleGetUser)
		apiGroup.GET("/user/:userId/withdrawals", a.ledgerHandler.HandleListWithdrawals)
		apiGroup.GET("/user/:userId/referrals", a.ledgerHandler.HandleListReferrals)
		apiGroup.POST("/watch-ad", a.ledgerHandler.HandleWatchAd)
		apiGroup.POST("/claim-earnings", a.ledgerHandler.HandleClaimEarnings)
		apiGroup.POST("/withdrawal-request", a.ledgerHandler.HandleWithdrawalRequest)
		apiGroup.GET("/ton-price", a.pricingHandler.HandleGetTONPrice)
	}

	adminGroup := apiGroup.Group("/admin")
	{
		adminGroup.GET("/stats", a.adminHandler.HandleStats)
		adminGroup.GET("/users", a.adminHandler.HandleListUsers)
		adminGroup.GET("/pending-withdrawals", a.adminHandler.HandleListPendingWithdrawals)
		adminGroup.GET("/export/csv", a.adminHandler.HandleExportUsersCSV)
		adminGroup.POST("/user/ban", a.adminHandler.HandleBanUser)
		adminGroup.POST("/user/flag", a.adminHandler.HandleFlagUser)
		adminGroup.POST("/claim/approve", a.adminHandler.HandleApproveClaim)
		adminGroup.POST("/claim/reject", a.adminHandler.HandleRejectClaim)
		adminGroup.POST("/process-withdrawal", a.adminHandler.HandleProcessWithdrawal)
		adminGroup.POST("/update-settings", a.adminHandler.HandleUpdateSettings)
	}

	adsGroup := a.router.Group("/ads", a.rateLimit)
	{
		adsGroup.POST("/callback", a.ledgerHandler.HandleAdCallback)
		adsGroup.GET("/callback", a.ledgerHandler.HandleAdCallback)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}

func (a *API) Metrics() {
	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
