// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/checkout"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// OpenCheckout handles POST /checkout
func (h *CheckoutHandler) OpenCheckout(c *gin.Context) {
	session, err := h.checkoutService.Open(c.Request.Context(), middleware.GetSessionID(c), middleware.GetIdentity(c))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Checkout started",
		"data":    session,
	})
}

// GetCheckout handles GET /checkout/:id
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	session, err := h.checkoutService.Get(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout retrieved successfully",
		"data":    session,
	})
}

// SubmitCheckout handles POST /checkout/:id/submit. On success the response
// carries the widget options the browser opens the payment widget with.
func (h *CheckoutHandler) SubmitCheckout(c *gin.Context) {
	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.checkoutService.Submit(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"), form)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout ready for payment",
		"data":    session,
	})
}

// ConfirmPayment handles POST /checkout/:id/payment, the widget's success
// callback
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	var cb checkout.PaymentCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.checkoutService.Confirm(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"), middleware.GetIdentity(c), cb)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": result.Message,
		"data":    result,
	})
}

// CloseCheckout handles DELETE /checkout/:id
func (h *CheckoutHandler) CloseCheckout(c *gin.Context) {
	session, err := h.checkoutService.Close(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout closed",
		"data":    session,
	})
}

func respondCheckoutError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  checkout.ValidationMessage,
			"fields": verr.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "Checkout failed. Please try again."
	switch {
	case errors.Is(err, checkout.ErrSignInRequired), errors.Is(err, checkout.ErrSignInToSave):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, checkout.ErrWrongUser):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, checkout.ErrSessionNotFound):
		status, message = http.StatusNotFound, "Checkout not found"
	case errors.Is(err, checkout.ErrEmptyCart):
		status, message = http.StatusBadRequest, "Your cart is empty"
	case errors.Is(err, checkout.ErrSignatureMismatch):
		status, message = http.StatusBadRequest, "Payment could not be verified"
	case errors.Is(err, checkout.ErrSessionClosed):
		status, message = http.StatusGone, "Checkout was closed"
	case errors.Is(err, checkout.ErrInvalidTransition), errors.Is(err, checkout.ErrBusy):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, checkout.ErrGateway):
		status, message = http.StatusBadGateway, "Unable to start payment. Please try again."
	default:
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{
		"error": message,
	})
}
