// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// GetReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	orderID := c.Param("id")

	pdfBytes, err := h.orderService.Receipt(c.Request.Context(), middleware.GetIdentity(c), orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", orderID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
