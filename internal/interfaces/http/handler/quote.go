package handler

import (
	appquoting "github.com/b2bmarket/backend/internal/application/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/infrastructure/auth"
	"github.com/b2bmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// QuoteHandler exposes the RFQ and quote lifecycle over HTTP
type QuoteHandler struct {
	BaseHandler
	service *appquoting.QuoteService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(service *appquoting.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// CreateRFQ handles POST /rfqs
func (h *QuoteHandler) CreateRFQ(c *gin.Context) {
	var req appquoting.CreateRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	buyerID := middleware.GetIdentity(c).Primary()
	rfq, err := h.service.CreateRFQ(c.Request.Context(), buyerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rfq)
}

// GetRFQ handles GET /rfqs/:id
func (h *QuoteHandler) GetRFQ(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rfq, err := h.service.GetRFQ(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rfq)
}

// ListRFQs handles GET /rfqs. Buyers see their own RFQs; sellers see the
// RFQs they may quote on.
func (h *QuoteHandler) ListRFQs(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(c)
	ctx := c.Request.Context()

	if middleware.GetRole(c) == auth.RoleSeller {
		page, err := h.service.ListOpenRFQsForSeller(ctx, identity, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Page(c, page.Items, page.Total, page.Page, page.PageSize)
		return
	}

	page, err := h.service.ListRFQsForBuyer(ctx, identity.Primary(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetRFQQuotes handles GET /rfqs/:id/quotes
func (h *QuoteHandler) GetRFQQuotes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	quotes, err := h.service.ListQuotesForRFQ(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotes)
}

// CreateQuote handles POST /quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req appquoting.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	quote, err := h.service.CreateDraft(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quote)
}

// UpdateQuote handles PUT /quotes/:id
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req appquoting.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	quote, err := h.service.UpdateQuote(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// SendQuote handles POST /quotes/:id/send
func (h *QuoteHandler) SendQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	quote, err := h.service.SendQuote(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// RejectQuote handles POST /quotes/:id/reject
func (h *QuoteHandler) RejectQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req appquoting.RejectQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	quote, err := h.service.RejectQuote(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// GetQuote handles GET /quotes/:id
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// GetQuoteHistory handles GET /quotes/:id/history
func (h *QuoteHandler) GetQuoteHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	history, err := h.service.GetQuoteHistory(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// ListQuotes handles GET /quotes. Sellers see their quotes including drafts;
// buyers see quotes sent to them.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(c)
	ctx := c.Request.Context()

	var (
		page *shared.Paginated[appquoting.QuoteResponse]
		err  error
	)
	if middleware.GetRole(c) == auth.RoleSeller {
		page, err = h.service.ListQuotesForSeller(ctx, identity, filter)
	} else {
		page, err = h.service.ListQuotesForBuyer(ctx, identity.Primary(), filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, page.Items, page.Total, page.Page, page.PageSize)
}
