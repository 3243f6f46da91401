package handler

import (
	"net/http"

	"adledger-server/internal/observability"
	"adledger-server/internal/pricing/processor"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	processor *processor.PriceProcessor
	logger    *observability.Logger
}

func New(processor *processor.PriceProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// HandleGetTONPrice returns the display price for TON in USD
func (h *Handler) HandleGetTONPrice(c *gin.Context) {
	quote := h.processor.GetTONPrice(c.Request.Context())
	c.Header("Cache-Control", "public, max-age=30")
	c.JSON(http.StatusOK, quote)
}
