package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
	"github.com/elemephant/backend/internal/platform/openai"
)

// QualityTier selects the image generation backend model.
type QualityTier string

const (
	TierFast QualityTier = "fast"
	TierHigh QualityTier = "high"
)

const imageStylePrefix = "a hyperrealistic photograph of an elephant, "

const storySystemPrompt = "You are a storyteller who specializes in educational yet entertaining stories about chemistry for children."

const storyPromptTemplate = `Create a short, fun story (3 paragraphs) about an elephant with a connection to the element %s (%s).

Importantly, the elephant is described as: %q. This description is key to the story.

Include some scientific and historical facts about the element %s like its discoverer, discovery, properties, and industrial uses.
Make the story educational but suitable for children around 12 years old. The tone should be humorous and/or adventurous.
Use accessible language but don't shy away from introducing educational terms with clear explanations.

Format the story in 3 paragraphs with appropriate spacing between paragraphs.

Attached is an image of the elephant to help inspire the story. Ensure details of the image are prominently featured in the story.`

// StoryRequest carries everything the narrative prompt embeds. The caller is
// responsible for persisting the returned content separately.
type StoryRequest struct {
	ElephantID    uuid.UUID
	ElementSymbol string
	ElementName   string
	Caption       string
	ImageURL      string
}

type GenerationService interface {
	GenerateImage(ctx context.Context, prompt string, tier QualityTier) (string, error)
	GenerateStory(ctx context.Context, req StoryRequest) (string, error)
}

type generationService struct {
	log    *logger.Logger
	client openai.Client
}

func NewGenerationService(baseLog *logger.Logger, client openai.Client) GenerationService {
	serviceLog := baseLog.With("service", "GenerationService")
	return &generationService{log: serviceLog, client: client}
}

func (gs *generationService) GenerateImage(ctx context.Context, prompt string, tier QualityTier) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apierr.Validationf("prompt is required")
	}

	model, err := modelForTier(tier)
	if err != nil {
		return "", err
	}

	gs.log.Info("Generating elephant image", "model", model)
	url, genErr := gs.client.GenerateImage(ctx, imageStylePrefix+prompt, model)
	if genErr != nil {
		gs.log.Error("image generation failed", "error", genErr, "model", model)
		return "", apierr.Upstream(fmt.Errorf("generate image: %w", genErr))
	}
	// The returned URL is hosted by the gateway provider and expires; it must
	// be fetched and re-uploaded through the upload path to persist.
	return url, nil
}

func (gs *generationService) GenerateStory(ctx context.Context, req StoryRequest) (string, error) {
	if req.ElephantID == uuid.Nil {
		return "", apierr.Validationf("elephantId is required")
	}
	if strings.TrimSpace(req.ElementSymbol) == "" || strings.TrimSpace(req.ElementName) == "" {
		return "", apierr.Validationf("element symbol and name are required")
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return "", apierr.Validationf("imageUrl is required")
	}

	prompt := fmt.Sprintf(storyPromptTemplate,
		req.ElementName, req.ElementSymbol, req.Caption, req.ElementName)

	gs.log.Info("Generating elephant story", "elephant_id", req.ElephantID, "element_symbol", req.ElementSymbol)
	content, err := gs.client.GenerateStory(ctx, storySystemPrompt, prompt, req.ImageURL)
	if err != nil {
		gs.log.Error("story generation failed", "error", err, "elephant_id", req.ElephantID)
		return "", apierr.Upstream(fmt.Errorf("generate story: %w", err))
	}
	return strings.TrimSpace(content), nil
}

func modelForTier(tier QualityTier) (string, error) {
	switch tier {
	case TierFast:
		return "dall-e-2", nil
	case TierHigh, "":
		return "dall-e-3", nil
	default:
		return "", apierr.Validationf("unknown quality tier %q", tier)
	}
}
