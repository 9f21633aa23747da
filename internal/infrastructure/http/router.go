package httptransport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rd "github.com/redis/go-redis/v9"

	"storefront/internal/observability"
)

// RouterOptions carries the optional pieces of the HTTP surface.
type RouterOptions struct {
	// Rate limiting for the checkout endpoint; nil client disables it.
	Redis         *rd.Client
	PayRateLimit  int
	PayRateWindow time.Duration

	// Handler for GET /metrics, typically promhttp wrapped around the
	// process registry. Nil falls back to the default prometheus handler.
	Metrics http.Handler
}

// NewRouter wires all routes onto a gin engine.
func NewRouter(h *Handler, tel observability.Telemetry, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), Telemetry(tel))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metrics))

	api := r.Group("/api")
	{
		if opts.Redis != nil && opts.PayRateLimit > 0 {
			api.POST("/pay", RateLimit(opts.Redis, opts.PayRateLimit, opts.PayRateWindow), h.handlePay)
		} else {
			api.POST("/pay", h.handlePay)
		}
		api.GET("/payment/status", h.handlePaymentStatus)
		api.GET("/payment/succeed", h.handlePaymentSucceed)
		api.POST("/payment/refund", h.handleRefund)

		api.GET("/products", h.handleListProducts)
		api.POST("/products", h.handleCreateProduct)
		api.GET("/products/:id", h.handleGetProduct)
		api.PUT("/products/:id", h.handleUpdateProduct)
		api.DELETE("/products/:id", h.handleDeleteProduct)

		api.POST("/forms", h.handleCreateForm)
		api.GET("/forms/:id", h.handleGetForm)
		api.DELETE("/forms/:id", h.handleDeleteForm)
	}

	return r
}
