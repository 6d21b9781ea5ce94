// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/identity"
	"github.com/Lizasatasiya/Zelie-web/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	identityService *identity.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identityService *identity.Service) *AuthHandler {
	return &AuthHandler{identityService: identityService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.identityService.Register(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		respondIdentityError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    session,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.identityService.SignIn(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		respondIdentityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    session,
	})
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req identity.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.identityService.Refresh(c.Request.Context(), middleware.GetSessionID(c), req.RefreshToken)
	if err != nil {
		respondIdentityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"data":    session,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.identityService.SignOut(c.Request.Context(), middleware.GetSessionID(c), middleware.GetAccessToken(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to logout",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser handles GET /auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "User retrieved successfully",
		"data":    middleware.GetIdentity(c),
	})
}

func respondIdentityError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var authErr *identity.Error
	if errors.As(err, &authErr) {
		switch authErr.Code {
		case identity.CodeInvalidEmail, identity.CodeWeakPassword:
			status = http.StatusBadRequest
		case identity.CodeEmailInUse:
			status = http.StatusConflict
		default:
			status = http.StatusUnauthorized
		}
	} else {
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{
		"error": identity.UserMessage(err),
	})
}
