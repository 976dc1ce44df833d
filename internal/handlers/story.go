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

type StoryHandler struct {
	log          *logger.Logger
	storyService services.StoryService
}

func NewStoryHandler(log *logger.Logger, ssvc services.StoryService) *StoryHandler {
	return &StoryHandler{
		log:          log.With("handler", "StoryHandler"),
		storyService: ssvc,
	}
}

// GET /api/elephants/stories?elephantId=
func (h *StoryHandler) List(c *gin.Context) {
	rawID := c.Query("elephantId")
	elephantID, err := uuid.Parse(rawID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("valid elephantId is required"))
		return
	}

	stories, err := h.storyService.List(c.Request.Context(), elephantID)
	if err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, stories)
}

type createStoryRequest struct {
	Content    string    `json:"content" binding:"required"`
	ElephantID uuid.UUID `json:"elephantId" binding:"required"`
}

// POST /api/elephants/stories
func (h *StoryHandler) Create(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("content and elephantId are required"))
		return
	}

	story, err := h.storyService.Create(c.Request.Context(), req.ElephantID, req.Content, nil)
	if err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, story)
}

// DELETE /api/elephants/stories?id=
func (h *StoryHandler) Delete(c *gin.Context) {
	rawID := c.Query("id")
	id, err := uuid.Parse(rawID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationError, fmt.Errorf("valid story id is required"))
		return
	}

	if err := h.storyService.Delete(c.Request.Context(), id); err != nil {
		RespondAPIErr(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
