package handlers

import (
	"net/http"

	request "mechmarket/internal/adapter/http/dto/request"
	response "mechmarket/internal/adapter/http/dto/response"
	"mechmarket/internal/usecase"
	"mechmarket/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

var errInvalidBidPayload = apperrors.Validation("INVALID_BID_PAYLOAD", "invalid bid payload")

// BidHandler handles HTTP requests for competitive bidding.
type BidHandler struct {
	usecase *usecase.BidUseCase
}

func NewBidHandler(uc *usecase.BidUseCase) *BidHandler {
	return &BidHandler{usecase: uc}
}

// SubmitBid godoc
// @Summary  Submit a bid on a job
// @Tags     bids
// @Accept   json
// @Produce  json
// @Param    job_id path string true "job id"
// @Param    bid body request.SubmitBidRequest true "offer"
// @Success  201 {object} response.BidResponse
// @Router   /jobs/{job_id}/bids [post]
func (h *BidHandler) SubmitBid(c *gin.Context) {
	var payload request.SubmitBidRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidBidPayload.HTTPStatus, errInvalidBidPayload.ToHTTPError())
		return
	}

	bid, err := h.usecase.SubmitBid(
		c.Request.Context(),
		c.Param("job_id"),
		actorFrom(c),
		payload.PriceCents,
		payload.Message,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.FromBid(bid))
}

// ListBids godoc
// @Summary  List bids on a job
// @Tags     bids
// @Produce  json
// @Param    job_id path string true "job id"
// @Success  200 {array} response.BidResponse
// @Router   /jobs/{job_id}/bids [get]
func (h *BidHandler) ListBids(c *gin.Context) {
	bids, err := h.usecase.ListByJobID(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromBids(bids))
}

// AcceptBid godoc
// @Summary  Accept a bid, committing the job to its mechanic
// @Tags     bids
// @Accept   json
// @Produce  json
// @Param    job_id path string true "job id"
// @Param    bid_id path string true "bid id"
// @Param    accept body request.AcceptBidRequest true "last-seen job version"
// @Success  200 {object} response.AcceptBidResponse
// @Router   /jobs/{job_id}/bids/{bid_id}/accept [post]
func (h *BidHandler) AcceptBid(c *gin.Context) {
	var payload request.AcceptBidRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidBidPayload.HTTPStatus, errInvalidBidPayload.ToHTTPError())
		return
	}

	job, bid, err := h.usecase.AcceptBid(
		c.Request.Context(),
		c.Param("job_id"),
		c.Param("bid_id"),
		actorFrom(c),
		payload.JobVersion,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.AcceptBidResponse{
		Job: response.FromJob(job),
		Bid: response.FromBid(bid),
	})
}

// RejectBid godoc
// @Summary  Reject a single bid
// @Tags     bids
// @Produce  json
// @Param    job_id path string true "job id"
// @Param    bid_id path string true "bid id"
// @Success  200 {object} response.BidResponse
// @Router   /jobs/{job_id}/bids/{bid_id}/reject [post]
func (h *BidHandler) RejectBid(c *gin.Context) {
	bid, err := h.usecase.RejectBid(
		c.Request.Context(),
		c.Param("job_id"),
		c.Param("bid_id"),
		actorFrom(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromBid(bid))
}
