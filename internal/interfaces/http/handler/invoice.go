package handler

import (
	appbilling "github.com/b2bmarket/backend/internal/application/billing"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/infrastructure/auth"
	"github.com/b2bmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler exposes invoice reads, cancellation and payment recording
// over HTTP. Invoices are created by the order lifecycle, not by callers.
type InvoiceHandler struct {
	BaseHandler
	service *appbilling.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(service *appbilling.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	invoice, err := h.service.GetInvoice(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// GetInvoiceForOrder handles GET /orders/:id/invoice
func (h *InvoiceHandler) GetInvoiceForOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	invoice, err := h.service.GetInvoiceForOrder(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// GetInvoiceHistory handles GET /invoices/:id/history
func (h *InvoiceHandler) GetInvoiceHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	history, err := h.service.GetInvoiceHistory(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// ListInvoices handles GET /invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(c)
	ctx := c.Request.Context()

	var (
		page *shared.Paginated[appbilling.InvoiceResponse]
		err  error
	)
	if middleware.GetRole(c) == auth.RoleSeller {
		page, err = h.service.ListInvoicesForSeller(ctx, identity, filter)
	} else {
		page, err = h.service.ListInvoicesForBuyer(ctx, identity.Primary(), filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CancelInvoice handles POST /invoices/:id/cancel
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req appbilling.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	invoice, err := h.service.CancelInvoice(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RecordPayment handles POST /payments. Payments arrive from the platform's
// payment collaborator; the invoice they settle is resolved from the order.
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req appbilling.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	payment, err := h.service.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
