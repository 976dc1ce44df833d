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

type GenerationHandler struct {
	log        *logger.Logger
	generation services.GenerationService
}

func NewGenerationHandler(log *logger.Logger, gsvc services.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		log:        log.With("handler", "GenerationHandler"),
		generation: gsvc,
	}
}

type generateImageRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	Quality string `json:"quality"`
}

// POST /api/elephants/generate
//
// Returns a short-lived provider URL; the client downloads the image and
// persists it through the upload endpoint.
func (h *GenerationHandler) GenerateImage(c *gin.Context) {
	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("prompt is required"))
		return
	}

	url, err := h.generation.GenerateImage(c.Request.Context(), req.Prompt, services.QualityTier(req.Quality))
	if err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, gin.H{"imageUrl": url})
}

type generateStoryRequest struct {
	ElephantID    uuid.UUID `json:"elephantId" binding:"required"`
	ElementSymbol string    `json:"elementSymbol" binding:"required"`
	ElementName   string    `json:"elementName" binding:"required"`
	Caption       string    `json:"caption"`
	ImageURL      string    `json:"imageUrl" binding:"required"`
}

// POST /api/elephants/stories/generate
//
// Generates narrative content only. Persisting it is a separate call to the
// story create endpoint, so a failed save never loses the generated text.
func (h *GenerationHandler) GenerateStory(c *gin.Context) {
	var req generateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("elephantId, elementSymbol, elementName and imageUrl are required"))
		return
	}

	content, err := h.generation.GenerateStory(c.Request.Context(), services.StoryRequest{
		ElephantID:    req.ElephantID,
		ElementSymbol: req.ElementSymbol,
		ElementName:   req.ElementName,
		Caption:       req.Caption,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, gin.H{"content": content, "elephantId": req.ElephantID})
}
