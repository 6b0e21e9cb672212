package handler

import (
	"net/http"

	apprating "github.com/b2bmarket/backend/internal/application/rating"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RatingHandler exposes seller performance reads over HTTP
type RatingHandler struct {
	BaseHandler
	service *apprating.RatingService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(service *apprating.RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

func sellerParam(c *gin.Context) (shared.PartyID, bool) {
	id := shared.PartyID(c.Param("id"))
	if id.IsZero() {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrCodeBadRequest, "Seller ID is required", requestID(c)))
		return "", false
	}
	return id, true
}

// GetSellerSummary handles GET /sellers/:id/rating
func (h *RatingHandler) GetSellerSummary(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}

	summary, err := h.service.GetSellerSummary(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListSellerRecords handles GET /sellers/:id/rating/records
func (h *RatingHandler) ListSellerRecords(c *gin.Context) {
	sellerID, ok := sellerParam(c)
	if !ok {
		return
	}

	filter, ok := listFilter(c)
	if !ok {
		return
	}

	page, err := h.service.ListSellerRecords(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Page(c, page.Items, page.Total, page.Page, page.PageSize)
}
