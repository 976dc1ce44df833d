package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/services"
)

type ElephantHandler struct {
	log             *logger.Logger
	elephantService services.ElephantService
}

func NewElephantHandler(log *logger.Logger, esvc services.ElephantService) *ElephantHandler {
	return &ElephantHandler{
		log:             log.With("handler", "ElephantHandler"),
		elephantService: esvc,
	}
}

// GET /api/elephants
// List all elephants, or only those for ?element=<symbol>. Newest first.
func (h *ElephantHandler) List(c *gin.Context) {
	elephants, err := h.elephantService.List(c.Request.Context(), c.Query("element"))
	if err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, elephants)
}

// POST /api/elephants/upload
// Multipart create: file, elementSymbol, caption.
func (h *ElephantHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("file is required"))
		return
	}
	elementSymbol := c.PostForm("elementSymbol")
	caption := c.PostForm("caption")

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("could not read uploaded file"))
		return
	}
	defer file.Close()

	created, err := h.elephantService.Create(c.Request.Context(), elementSymbol, fileHeader.Filename, caption, file)
	if err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, created)
}

// DELETE /api/elephants/delete?id=
func (h *ElephantHandler) Delete(c *gin.Context) {
	rawID := c.Query("id")
	if rawID == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("elephant id is required"))
		return
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("malformed elephant id"))
		return
	}

	if err := h.elephantService.Delete(c.Request.Context(), id); err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

// GET /api/elephants/usage
// Storage usage grouped by element symbol prefix.
func (h *ElephantHandler) Usage(c *gin.Context) {
	usage, err := h.elephantService.Usage(c.Request.Context())
	if err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, gin.H{"blobsByElement": usage})
}
