// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/wishlist"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/middleware"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
	metrics         *metrics.Business
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service, m *metrics.Business) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		metrics:         m,
	}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	ids, err := h.wishlistService.Get(c.Request.Context(), sessionID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve wishlist",
		})
		return
	}
	products, err := h.wishlistService.Products(c.Request.Context(), sessionID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve wishlist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data": gin.H{
			"items":    ids,
			"products": products,
		},
	})
}

// ToggleWishlist handles POST /wishlist/:product_id/toggle. Guests keep a
// local wishlist; signed-in users also get the remote copy updated.
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	var userID string
	if ident := middleware.GetIdentity(c); ident != nil {
		userID = ident.UID
	}

	result, err := h.wishlistService.Toggle(c.Request.Context(), middleware.GetSessionID(c), userID, c.Param("product_id"))
	if err != nil {
		if errors.Is(err, wishlist.ErrUnknownProduct) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update wishlist",
		})
		return
	}

	h.metrics.WishlistToggles.WithLabelValues(strconv.FormatBool(result.Wishlisted)).Inc()

	message := "Removed from wishlist"
	if result.Wishlisted {
		message = "Added to wishlist"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    result,
	})
}
