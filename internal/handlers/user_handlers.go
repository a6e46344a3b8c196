package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/middleware"
	"github.com/01moynul/wholesale-shop/internal/models"
)

// Register is the handler for POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var input models.CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	user, err := h.Users.Register(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

// Login is the handler for POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var input models.CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// 1. Check the credentials
	user, err := h.Users.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// 2. Issue the token
	token, err := h.Tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    gin.H{"id": user.ID, "email": user.Email},
	})
}

// Me is the handler for GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		_ = c.Error(apperr.Unauthorized("Authorization header required"))
		return
	}

	user, err := h.Users.User(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
