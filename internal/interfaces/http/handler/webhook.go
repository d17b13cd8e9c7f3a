package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/webhook-bridge/internal/domain/enrichment"
	"github.com/erp/webhook-bridge/internal/infrastructure/logger"
	"github.com/erp/webhook-bridge/internal/interfaces/http/dto"
)

// Enricher runs the enrichment chain for one inbound event.
type Enricher interface {
	Enrich(ctx context.Context, event enrichment.InboundEvent) (*enrichment.Result, error)
}

// WebhookHandler handles inbound invoice-created webhook deliveries.
type WebhookHandler struct {
	pipeline Enricher
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(pipeline Enricher) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline}
}

// RegisterRoutes registers the webhook routes on the given group.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook", h.HandleInvoiceCreated)
}

// HandleInvoiceCreated receives the invoice-created event, runs the
// enrichment chain and answers with the combined record. Malformed payloads
// get 400; any stage failure gets 500 with a stable error code and no
// upstream internals.
func (h *WebhookHandler) HandleInvoiceCreated(c *gin.Context) {
	log := logger.GetGinLogger(c)

	var req dto.InvoiceCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("rejecting malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeMalformedEvent, "invalid webhook payload"))
		return
	}

	result, err := h.pipeline.Enrich(c.Request.Context(), req.ToEvent())
	if err != nil {
		h.writeError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// writeError maps pipeline errors onto the response contract.
func (h *WebhookHandler) writeError(c *gin.Context, log *zap.Logger, err error) {
	var upstream *enrichment.UpstreamError

	switch {
	case errors.Is(err, enrichment.ErrMalformedEvent):
		log.Warn("rejecting malformed event", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeMalformedEvent, "invalid webhook payload"))

	case errors.Is(err, enrichment.ErrAuthFailed):
		log.Error("upstream authentication failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeAuthFailed, "failed to authenticate against the ERP"))

	case errors.Is(err, enrichment.ErrCustomerNotFound):
		log.Error("customer lookup returned no record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeCustomerNotFound, "customer record not found"))

	case errors.As(err, &upstream):
		log.Error("enrichment stage failed",
			zap.String("stage", upstream.Stage),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeUpstreamFailed, "failed to fetch "+upstream.Stage))

	default:
		log.Error("enrichment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, "internal error"))
	}
}
