package router

import (
	"net/http"

	"github.com/b2bmarket/backend/internal/infrastructure/auth"
	"github.com/b2bmarket/backend/internal/infrastructure/config"
	"github.com/b2bmarket/backend/internal/infrastructure/logger"
	"github.com/b2bmarket/backend/internal/interfaces/http/handler"
	"github.com/b2bmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers the router mounts
type Handlers struct {
	Quotes   *handler.QuoteHandler
	Orders   *handler.OrderHandler
	Invoices *handler.InvoiceHandler
	Ratings  *handler.RatingHandler
}

// New builds the gin engine with middleware and all routes mounted.
// Everything under /api/v1 requires a valid bearer token; health stays open.
func New(cfg *config.Config, tokens *auth.TokenService, handlers Handlers, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(cfg.HTTP),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	api.Use(middleware.Identity(tokens, log))

	rfqs := api.Group("/rfqs")
	{
		rfqs.POST("", handlers.Quotes.CreateRFQ)
		rfqs.GET("", handlers.Quotes.ListRFQs)
		rfqs.GET("/:id", handlers.Quotes.GetRFQ)
		rfqs.GET("/:id/quotes", handlers.Quotes.GetRFQQuotes)
	}

	quotes := api.Group("/quotes")
	{
		quotes.POST("", handlers.Quotes.CreateQuote)
		quotes.GET("", handlers.Quotes.ListQuotes)
		quotes.GET("/:id", handlers.Quotes.GetQuote)
		quotes.PUT("/:id", handlers.Quotes.UpdateQuote)
		quotes.POST("/:id/send", handlers.Quotes.SendQuote)
		quotes.POST("/:id/reject", handlers.Quotes.RejectQuote)
		quotes.GET("/:id/history", handlers.Quotes.GetQuoteHistory)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", handlers.Orders.AcceptQuote)
		orders.GET("", handlers.Orders.ListOrders)
		orders.GET("/stats", handlers.Orders.GetOrderStats)
		orders.GET("/:id", handlers.Orders.GetOrder)
		orders.GET("/:id/audit", handlers.Orders.GetOrderAudit)
		orders.GET("/:id/invoice", handlers.Invoices.GetInvoiceForOrder)
		orders.POST("/:id/confirm", handlers.Orders.ConfirmOrder)
		orders.POST("/:id/reject", handlers.Orders.RejectOrder)
		orders.POST("/:id/start", handlers.Orders.StartProcessing)
		orders.POST("/:id/ship", handlers.Orders.ShipOrder)
		orders.POST("/:id/deliver", handlers.Orders.MarkDelivered)
		orders.POST("/:id/close", handlers.Orders.CloseOrder)
		orders.POST("/:id/cancel", handlers.Orders.CancelOrder)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", handlers.Invoices.ListInvoices)
		invoices.GET("/:id", handlers.Invoices.GetInvoice)
		invoices.GET("/:id/history", handlers.Invoices.GetInvoiceHistory)
		invoices.POST("/:id/cancel", handlers.Invoices.CancelInvoice)
	}

	api.POST("/payments", handlers.Invoices.RecordPayment)

	sellers := api.Group("/sellers")
	{
		sellers.GET("/:id/rating", handlers.Ratings.GetSellerSummary)
		sellers.GET("/:id/rating/records", handlers.Ratings.ListSellerRecords)
	}

	return engine
}
