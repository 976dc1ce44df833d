package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/services"
)

type PlaceholderHandler struct {
	log         *logger.Logger
	placeholder services.PlaceholderService
}

func NewPlaceholderHandler(log *logger.Logger, psvc services.PlaceholderService) *PlaceholderHandler {
	return &PlaceholderHandler{
		log:         log.With("handler", "PlaceholderHandler"),
		placeholder: psvc,
	}
}

// GET /api/elephants/placeholder?symbol=
func (h *PlaceholderHandler) Render(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	if symbol == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("symbol is required"))
		return
	}

	png, err := h.placeholder.Render(symbol)
	if err != nil {
		RespondAPIErr(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
