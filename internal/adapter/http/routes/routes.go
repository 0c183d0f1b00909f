// Package routes assembles the gin engine and binds the versioned API.
package routes

import (
	"net/http"

	_ "mechmarket/docs" // swagger definitions
	"mechmarket/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Jobs         *handlers.JobHandler
	Bids         *handlers.BidHandler
	ChangeOrders *handlers.ChangeOrderHandler
	Payments     *handlers.PaymentHandler
	Metrics      http.Handler
}

// NewRouter builds the engine with recovery, the supplied middlewares and
// all API routes registered.
func NewRouter(h Handlers, middlewares ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares...)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	addMarketplaceRoutes(v1, h)

	return router
}
