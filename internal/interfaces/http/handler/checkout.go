package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appshipping "github.com/shiprelay/backend/internal/application/shipping"
	"github.com/shiprelay/backend/internal/domain/payment"
	"github.com/shiprelay/backend/internal/interfaces/http/dto"
)

// CheckoutStarter opens a payment session for a selected rate
type CheckoutStarter interface {
	StartCheckout(ctx context.Context, in appshipping.CheckoutInput) (*payment.Session, error)
}

// CheckoutHandler serves checkout initiation
type CheckoutHandler struct {
	BaseHandler
	checkout CheckoutStarter
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout CheckoutStarter) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// CreateCheckout answers POST /api/checkout with the hosted checkout URL.
// Any client-supplied amount is advisory; the session is priced from the
// provider's rate.
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.checkout.StartCheckout(c.Request.Context(), appshipping.CheckoutInput{
		ShipmentID:   req.ShipmentReference(),
		RateID:       req.RateID,
		ClientAmount: req.Amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{URL: session.URL})
}
