package routes

import (
	"mechmarket/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathJobs         = "/jobs"
	PathChangeOrders = "/change-orders"
	PathPayments     = "/payments"
	PathWebhooks     = "/webhooks"
)

func addMarketplaceRoutes(rg *gin.RouterGroup, h Handlers) {
	actor := handlers.ActorMiddleware()

	jobs := rg.Group(PathJobs)
	{
		jobs.POST("", actor, h.Jobs.CreateJob)
		jobs.GET("/:job_id", h.Jobs.GetJob)
		jobs.PATCH("/:job_id/status", actor, h.Jobs.TransitionJob)

		jobs.GET("/:job_id/bids", h.Bids.ListBids)
		jobs.POST("/:job_id/bids", actor, h.Bids.SubmitBid)
		jobs.POST("/:job_id/bids/:bid_id/accept", actor, h.Bids.AcceptBid)
		jobs.POST("/:job_id/bids/:bid_id/reject", actor, h.Bids.RejectBid)

		jobs.GET("/:job_id/change-orders", h.ChangeOrders.ListChangeOrders)
		jobs.POST("/:job_id/change-orders", actor, h.ChangeOrders.CreateChangeOrder)

		jobs.GET("/:job_id/payments", h.Payments.ListJobPayments)
	}

	orders := rg.Group(PathChangeOrders)
	{
		orders.GET("/:order_id", h.ChangeOrders.GetChangeOrder)
		orders.PATCH("/:order_id/approve", actor, h.ChangeOrders.ApproveChangeOrder)
		orders.PATCH("/:order_id/reject", actor, h.ChangeOrders.RejectChangeOrder)
	}

	payments := rg.Group(PathPayments)
	{
		payments.POST("/authorize", actor, h.Payments.AuthorizePayment)
		payments.GET("/:payment_id", h.Payments.GetPayment)
		payments.POST("/:payment_id/capture", actor, h.Payments.CapturePayment)
		payments.POST("/:payment_id/refund", actor, h.Payments.RefundPayment)
	}

	// The processor calls back without actor headers.
	webhooks := rg.Group(PathWebhooks)
	{
		webhooks.POST("/payments", h.Payments.ProcessorWebhook)
	}
}
