package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
)

type fakeGatewayClient struct {
	imageCalls  int
	storyCalls  int
	lastPrompt  string
	lastModel   string
	lastUserMsg string
	lastImage   string

	imageURL string
	story    string
	err      error
}

func (f *fakeGatewayClient) GenerateImage(ctx context.Context, prompt string, model string) (string, error) {
	f.imageCalls++
	f.lastPrompt = prompt
	f.lastModel = model
	if f.err != nil {
		return "", f.err
	}
	return f.imageURL, nil
}

func (f *fakeGatewayClient) GenerateStory(ctx context.Context, system string, user string, imageURL string) (string, error) {
	f.storyCalls++
	f.lastUserMsg = user
	f.lastImage = imageURL
	if f.err != nil {
		return "", f.err
	}
	return f.story, nil
}

func TestGenerateImageEmptyPromptNoGatewayCall(t *testing.T) {
	gw := &fakeGatewayClient{}
	svc := NewGenerationService(logger.NewNop(), gw)

	_, err := svc.GenerateImage(context.Background(), "   ", TierHigh)
	if !apierr.IsCode(err, apierr.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.imageCalls != 0 {
		t.Fatalf("gateway must not be called for an empty prompt")
	}
}

func TestGenerateImageAppliesStylePrefixAndTierModel(t *testing.T) {
	gw := &fakeGatewayClient{imageURL: "https://img.test/e.png"}
	svc := NewGenerationService(logger.NewNop(), gw)

	url, err := svc.GenerateImage(context.Background(), "wearing a lab coat", TierFast)
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if url != "https://img.test/e.png" {
		t.Fatalf("url: got %q", url)
	}
	if !strings.HasPrefix(gw.lastPrompt, "a hyperrealistic photograph of an elephant, ") {
		t.Fatalf("style prefix missing: %q", gw.lastPrompt)
	}
	if gw.lastModel != "dall-e-2" {
		t.Fatalf("fast tier model: got %q", gw.lastModel)
	}

	if _, err := svc.GenerateImage(context.Background(), "x", TierHigh); err != nil {
		t.Fatalf("high tier: %v", err)
	}
	if gw.lastModel != "dall-e-3" {
		t.Fatalf("high tier model: got %q", gw.lastModel)
	}
}

func TestGenerateImageDefaultTierIsHigh(t *testing.T) {
	gw := &fakeGatewayClient{imageURL: "u"}
	svc := NewGenerationService(logger.NewNop(), gw)

	if _, err := svc.GenerateImage(context.Background(), "x", ""); err != nil {
		t.Fatalf("default tier: %v", err)
	}
	if gw.lastModel != "dall-e-3" {
		t.Fatalf("default model: got %q", gw.lastModel)
	}
}

func TestGenerateImageUnknownTierIsValidationError(t *testing.T) {
	gw := &fakeGatewayClient{}
	svc := NewGenerationService(logger.NewNop(), gw)

	_, err := svc.GenerateImage(context.Background(), "x", QualityTier("ultra"))
	if !apierr.IsCode(err, apierr.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateImageUpstreamErrorMapped(t *testing.T) {
	gw := &fakeGatewayClient{err: errors.New("gateway melted")}
	svc := NewGenerationService(logger.NewNop(), gw)

	_, err := svc.GenerateImage(context.Background(), "x", TierHigh)
	if !apierr.IsCode(err, apierr.CodeUpstreamFailure) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}

func TestGenerateStoryEmbedsElementAndCaption(t *testing.T) {
	gw := &fakeGatewayClient{story: "  A story about trunks.  "}
	svc := NewGenerationService(logger.NewNop(), gw)

	content, err := svc.GenerateStory(context.Background(), StoryRequest{
		ElephantID:    uuid.New(),
		ElementSymbol: "He",
		ElementName:   "Helium",
		Caption:       "the floaty one",
		ImageURL:      "https://media.test/he.png",
	})
	if err != nil {
		t.Fatalf("generate story: %v", err)
	}
	if content != "A story about trunks." {
		t.Fatalf("content not trimmed: %q", content)
	}
	if !strings.Contains(gw.lastUserMsg, "Helium (He)") {
		t.Fatalf("prompt missing element: %q", gw.lastUserMsg)
	}
	if !strings.Contains(gw.lastUserMsg, "the floaty one") {
		t.Fatalf("prompt missing caption: %q", gw.lastUserMsg)
	}
	if gw.lastImage != "https://media.test/he.png" {
		t.Fatalf("image url not attached: %q", gw.lastImage)
	}
}

func TestGenerateStoryValidation(t *testing.T) {
	gw := &fakeGatewayClient{}
	svc := NewGenerationService(logger.NewNop(), gw)

	cases := []StoryRequest{
		{ElementSymbol: "He", ElementName: "Helium", ImageURL: "u"},                       // no elephant id
		{ElephantID: uuid.New(), ElementName: "Helium", ImageURL: "u"},                   // no symbol
		{ElephantID: uuid.New(), ElementSymbol: "He", ImageURL: "u"},                     // no name
		{ElephantID: uuid.New(), ElementSymbol: "He", ElementName: "Helium"},             // no image
	}
	for i, req := range cases {
		if _, err := svc.GenerateStory(context.Background(), req); !apierr.IsCode(err, apierr.CodeValidationError) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
	if gw.storyCalls != 0 {
		t.Fatalf("gateway must not be called for invalid requests")
	}
}
