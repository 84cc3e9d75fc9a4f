package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/shiprelay/backend/internal/interfaces/http/dto"
)

// RateLister lists the rate quotes of a shipment
type RateLister interface {
	ListRates(ctx context.Context, reference string) (*shipping.Shipment, error)
}

// ShippingHandler serves rate inquiries
type ShippingHandler struct {
	BaseHandler
	rates RateLister
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(rates RateLister) *ShippingHandler {
	return &ShippingHandler{rates: rates}
}

// GetRates answers GET /api/shipping/:reference
func (h *ShippingHandler) GetRates(c *gin.Context) {
	shipment, err := h.rates.ListRates(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRatesResponse(shipment))
}
