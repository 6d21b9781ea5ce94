// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/middleware"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order history endpoints
type OrderHandler struct {
	orderService *order.Service
	metrics      *metrics.Business
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, m *metrics.Business) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		metrics:      m,
	}
}

// GetOrders handles GET /orders. Orders come back in the order they were
// placed; documents that fail to decode are left out and counted.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	history, err := h.orderService.History(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	if history.Skipped > 0 {
		h.metrics.OrdersSkipped.Add(float64(history.Skipped))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    history,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	rec, err := h.orderService.Get(c.Request.Context(), middleware.GetIdentity(c), c.Param("id"))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    rec,
	})
}

func respondOrderError(c *gin.Context, err error) {
	var decodeErr *order.DecodeError
	switch {
	case errors.Is(err, order.ErrSignInRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.As(err, &decodeErr):
		_ = c.Error(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Order could not be read"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve orders"})
	}
}
