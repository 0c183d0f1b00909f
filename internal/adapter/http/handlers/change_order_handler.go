package handlers

import (
	"context"
	"net/http"

	request "mechmarket/internal/adapter/http/dto/request"
	response "mechmarket/internal/adapter/http/dto/response"
	"mechmarket/internal/domain/entities"
	"mechmarket/internal/usecase"
	"mechmarket/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

var errInvalidChangeOrderPayload = apperrors.Validation("INVALID_CHANGE_ORDER_PAYLOAD", "invalid change order payload")

// ChangeOrderHandler handles HTTP requests for mid-job scope changes.
type ChangeOrderHandler struct {
	usecase *usecase.ChangeOrderUseCase
}

func NewChangeOrderHandler(uc *usecase.ChangeOrderUseCase) *ChangeOrderHandler {
	return &ChangeOrderHandler{usecase: uc}
}

// CreateChangeOrder godoc
// @Summary  Propose additional work on an in-progress job
// @Tags     change-orders
// @Accept   json
// @Produce  json
// @Param    job_id path string true "job id"
// @Param    change_order body request.CreateChangeOrderRequest true "proposal"
// @Success  201 {object} response.ChangeOrderResponse
// @Router   /jobs/{job_id}/change-orders [post]
func (h *ChangeOrderHandler) CreateChangeOrder(c *gin.Context) {
	var payload request.CreateChangeOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidChangeOrderPayload.HTTPStatus, errInvalidChangeOrderPayload.ToHTTPError())
		return
	}

	order, err := h.usecase.Create(
		c.Request.Context(),
		c.Param("job_id"),
		actorFrom(c),
		payload.AmountCents,
		payload.Description,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.FromChangeOrder(order))
}

// ListChangeOrders godoc
// @Summary  List change orders on a job
// @Tags     change-orders
// @Produce  json
// @Param    job_id path string true "job id"
// @Success  200 {array} response.ChangeOrderResponse
// @Router   /jobs/{job_id}/change-orders [get]
func (h *ChangeOrderHandler) ListChangeOrders(c *gin.Context) {
	orders, err := h.usecase.ListByJobID(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromChangeOrders(orders))
}

// GetChangeOrder godoc
// @Summary  Fetch a change order by id
// @Tags     change-orders
// @Produce  json
// @Param    order_id path string true "change order id"
// @Success  200 {object} response.ChangeOrderResponse
// @Router   /change-orders/{order_id} [get]
func (h *ChangeOrderHandler) GetChangeOrder(c *gin.Context) {
	order, err := h.usecase.GetByID(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromChangeOrder(order))
}

// ApproveChangeOrder godoc
// @Summary  Approve a pending change order
// @Tags     change-orders
// @Accept   json
// @Produce  json
// @Param    order_id path string true "change order id"
// @Param    decision body request.DecideChangeOrderRequest true "last-seen version"
// @Success  200 {object} response.ChangeOrderResponse
// @Router   /change-orders/{order_id}/approve [patch]
func (h *ChangeOrderHandler) ApproveChangeOrder(c *gin.Context) {
	h.decide(c, h.usecase.Approve)
}

// RejectChangeOrder godoc
// @Summary  Reject a pending change order
// @Tags     change-orders
// @Accept   json
// @Produce  json
// @Param    order_id path string true "change order id"
// @Param    decision body request.DecideChangeOrderRequest true "last-seen version"
// @Success  200 {object} response.ChangeOrderResponse
// @Router   /change-orders/{order_id}/reject [patch]
func (h *ChangeOrderHandler) RejectChangeOrder(c *gin.Context) {
	h.decide(c, h.usecase.Reject)
}

type changeOrderDecision func(ctx context.Context, orderID string, actor entities.Actor, version int64) (entities.ChangeOrder, error)

func (h *ChangeOrderHandler) decide(c *gin.Context, decision changeOrderDecision) {
	var payload request.DecideChangeOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidChangeOrderPayload.HTTPStatus, errInvalidChangeOrderPayload.ToHTTPError())
		return
	}

	order, err := decision(c.Request.Context(), c.Param("order_id"), actorFrom(c), payload.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromChangeOrder(order))
}
