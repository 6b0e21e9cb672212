package handler

import (
	"context"

	apptrade "github.com/b2bmarket/backend/internal/application/trade"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/infrastructure/auth"
	"github.com/b2bmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler exposes the order lifecycle over HTTP
type OrderHandler struct {
	BaseHandler
	service *apptrade.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// AcceptQuote handles POST /orders. Accepting a quote is what creates an
// order, so order creation and quote acceptance are the same endpoint.
func (h *OrderHandler) AcceptQuote(c *gin.Context) {
	var req apptrade.AcceptQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.service.AcceptQuote(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ConfirmOrder handles POST /orders/:id/confirm
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	h.transition(c, h.service.ConfirmOrder)
}

// RejectOrder handles POST /orders/:id/reject
func (h *OrderHandler) RejectOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req apptrade.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.service.RejectOrder(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// StartProcessing handles POST /orders/:id/start
func (h *OrderHandler) StartProcessing(c *gin.Context) {
	h.transition(c, h.service.StartProcessing)
}

// ShipOrder handles POST /orders/:id/ship
func (h *OrderHandler) ShipOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req apptrade.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.service.ShipOrder(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// MarkDelivered handles POST /orders/:id/deliver
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	h.transition(c, h.service.MarkDelivered)
}

// CloseOrder handles POST /orders/:id/close
func (h *OrderHandler) CloseOrder(c *gin.Context) {
	h.transition(c, h.service.CloseOrder)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req apptrade.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.service.CancelOrder(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetOrderAudit handles GET /orders/:id/audit
func (h *OrderHandler) GetOrderAudit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	trail, err := h.service.GetOrderAudit(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trail)
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(c)
	ctx := c.Request.Context()

	var (
		page *shared.Paginated[apptrade.OrderResponse]
		err  error
	)
	if middleware.GetRole(c) == auth.RoleSeller {
		page, err = h.service.ListOrdersForSeller(ctx, identity, filter)
	} else {
		page, err = h.service.ListOrdersForBuyer(ctx, identity.Primary(), filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetOrderStats handles GET /orders/stats
func (h *OrderHandler) GetOrderStats(c *gin.Context) {
	stats, err := h.service.GetOrderStats(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

func (h *OrderHandler) transition(c *gin.Context, op func(ctx context.Context, identity shared.IdentitySet, orderID uuid.UUID) (*apptrade.OrderResponse, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := op(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
