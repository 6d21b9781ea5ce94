// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler serves the read-only catalog
type ProductHandler struct {
	catalog *catalog.Catalog
	store   config.StoreConfig
}

// NewProductHandler creates a new product handler
func NewProductHandler(cat *catalog.Catalog, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		catalog: cat,
		store:   cfg.Store,
	}
}

// GetProducts handles GET /products?q=&category=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	category := c.DefaultQuery("category", catalog.AllCategories)
	products := h.catalog.Search(c.Query("q"), category)

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data": gin.H{
			"products": products,
			"total":    len(products),
		},
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, err := h.catalog.Find(id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve product",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    product,
	})
}

// GetCategories handles GET /categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    h.catalog.Categories(),
	})
}

// GetStorefront handles GET /storefront. It carries the banner copy and the
// pricing rules the browser shows next to the cart.
func (h *ProductHandler) GetStorefront(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Storefront retrieved successfully",
		"data": gin.H{
			"banner":                  fmt.Sprintf("Order above ₹%d for FREE delivery", h.store.FreeShippingThreshold),
			"free_shipping_threshold": h.store.FreeShippingThreshold,
			"shipping_fee":            h.store.ShippingFee,
			"currency":                h.store.Currency,
			"merchant":                h.store.MerchantName,
		},
	})
}
