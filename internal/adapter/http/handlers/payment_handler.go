package handlers

import (
	"log/slog"
	"net/http"

	request "mechmarket/internal/adapter/http/dto/request"
	response "mechmarket/internal/adapter/http/dto/response"
	"mechmarket/internal/domain/entities"
	"mechmarket/internal/usecase"
	"mechmarket/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidPaymentPayload = apperrors.Validation("INVALID_PAYMENT_PAYLOAD", "invalid payment payload")
	errInvalidWebhookStatus  = apperrors.Validation("INVALID_WEBHOOK_STATUS", "webhook status must be confirmed or failed")
)

// PaymentHandler handles HTTP requests for escrow payments, including the
// asynchronous hold-resolution webhook from the processor.
type PaymentHandler struct {
	usecase *usecase.PaymentUseCase
	logger  *slog.Logger
}

func NewPaymentHandler(uc *usecase.PaymentUseCase, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{usecase: uc, logger: logger}
}

// AuthorizePayment godoc
// @Summary  Place an escrow hold for a job or change order
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    payment body request.AuthorizePaymentRequest true "what to hold"
// @Success  201 {object} response.PaymentResponse
// @Router   /payments/authorize [post]
func (h *PaymentHandler) AuthorizePayment(c *gin.Context) {
	var payload request.AuthorizePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	record, err := h.usecase.Authorize(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.FromPayment(record))
}

// GetPayment godoc
// @Summary  Fetch a payment by id
// @Tags     payments
// @Produce  json
// @Param    payment_id path string true "payment id"
// @Success  200 {object} response.PaymentResponse
// @Router   /payments/{payment_id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	record, err := h.usecase.GetByID(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(record))
}

// ListJobPayments godoc
// @Summary  List payments for a job
// @Tags     payments
// @Produce  json
// @Param    job_id path string true "job id"
// @Success  200 {array} response.PaymentResponse
// @Router   /jobs/{job_id}/payments [get]
func (h *PaymentHandler) ListJobPayments(c *gin.Context) {
	records, err := h.usecase.ListByJobID(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromPayments(records))
}

// CapturePayment godoc
// @Summary  Capture an authorized hold
// @Tags     payments
// @Produce  json
// @Param    payment_id path string true "payment id"
// @Success  200 {object} response.PaymentResponse
// @Router   /payments/{payment_id}/capture [post]
func (h *PaymentHandler) CapturePayment(c *gin.Context) {
	record, err := h.usecase.Capture(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(record))
}

// RefundPayment godoc
// @Summary  Release a hold or refund captured funds
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    payment_id path string true "payment id"
// @Param    refund body request.RefundPaymentRequest false "amount, omit for full refund"
// @Success  200 {object} response.PaymentResponse
// @Router   /payments/{payment_id}/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var payload request.RefundPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
			return
		}
	}

	record, err := h.usecase.Refund(c.Request.Context(), c.Param("payment_id"), payload.AmountCents)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(record))
}

// ProcessorWebhook godoc
// @Summary  Resolve a pending hold from a processor callback
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    webhook body request.ProcessorWebhookRequest true "hold resolution"
// @Success  200 {object} response.PaymentResponse
// @Router   /webhooks/payments [post]
func (h *PaymentHandler) ProcessorWebhook(c *gin.Context) {
	var payload request.ProcessorWebhookRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	h.logger.Info("processor webhook received",
		slog.String("payment_id", payload.PaymentID),
		slog.String("status", payload.Status),
	)

	var (
		record entities.PaymentRecord
		err    error
	)
	switch payload.Status {
	case "confirmed":
		record, err = h.usecase.ConfirmHold(c.Request.Context(), payload.PaymentID, payload.ProcessorRef)
	case "failed":
		record, err = h.usecase.FailHold(c.Request.Context(), payload.PaymentID, payload.Reason)
	default:
		c.JSON(errInvalidWebhookStatus.HTTPStatus, errInvalidWebhookStatus.ToHTTPError())
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(record))
}
