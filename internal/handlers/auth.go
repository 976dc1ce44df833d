package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, asvc services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: asvc,
	}
}

type loginRequest struct {
	Token string `json:"token" binding:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("token is required"))
		return
	}

	signed, err := h.authService.Login(req.Token)
	if err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, gin.H{"token": signed})
}
