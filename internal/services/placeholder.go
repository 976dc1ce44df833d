package services

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/internal/elements"
	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
)

const placeholderSize = 512

// PlaceholderService renders the PNG tile shown for grid cells that have no
// elephant yet: category background, element symbol, atomic number.
type PlaceholderService interface {
	Render(symbol string) ([]byte, error)
}

type placeholderService struct {
	log     *logger.Logger
	dataset *elements.Dataset

	mu       sync.Mutex
	rendered map[string][]byte

	symbolFace font.Face
	numberFace font.Face
}

var categoryColors = map[domain.Category]color.NRGBA{
	domain.CategoryAlkaliMetal:         {R: 0xD9, G: 0x4A, B: 0x3D, A: 0xFF},
	domain.CategoryAlkalineEarthMetal:  {R: 0xE8, G: 0x8A, B: 0x36, A: 0xFF},
	domain.CategoryTransitionMetal:     {R: 0x4A, G: 0x72, B: 0xB8, A: 0xFF},
	domain.CategoryPostTransitionMetal: {R: 0x57, G: 0x9E, B: 0x8E, A: 0xFF},
	domain.CategoryMetalloid:           {R: 0x8A, G: 0x6F, B: 0xB3, A: 0xFF},
	domain.CategoryNonmetal:            {R: 0x3F, G: 0xA6, B: 0x55, A: 0xFF},
	domain.CategoryHalogen:             {R: 0xC9, G: 0xA2, B: 0x27, A: 0xFF},
	domain.CategoryNobleGas:            {R: 0x9C, G: 0x45, B: 0x7E, A: 0xFF},
	domain.CategoryLanthanide:          {R: 0x3B, G: 0x8E, B: 0xA5, A: 0xFF},
	domain.CategoryActinide:            {R: 0xB0, G: 0x56, B: 0x42, A: 0xFF},
}

func NewPlaceholderService(baseLog *logger.Logger, dataset *elements.Dataset) PlaceholderService {
	serviceLog := baseLog.With("service", "PlaceholderService")

	symbolFace := font.Face(basicfont.Face7x13)
	numberFace := font.Face(basicfont.Face7x13)
	if fontPath := strings.TrimSpace(os.Getenv("PLACEHOLDER_FONT")); fontPath != "" {
		if sf, nf, err := loadFontFaces(fontPath); err != nil {
			serviceLog.Warn("could not load placeholder font, using builtin face", "error", err, "font", fontPath)
		} else {
			symbolFace, numberFace = sf, nf
		}
	} else {
		serviceLog.Warn("PLACEHOLDER_FONT not set; tiles will use the builtin bitmap face")
	}

	return &placeholderService{
		log:        serviceLog,
		dataset:    dataset,
		rendered:   make(map[string][]byte),
		symbolFace: symbolFace,
		numberFace: numberFace,
	}
}

func loadFontFaces(path string) (font.Face, font.Face, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read font: %w", err)
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse font: %w", err)
	}
	symbolFace := truetype.NewFace(parsed, &truetype.Options{Size: 220})
	numberFace := truetype.NewFace(parsed, &truetype.Options{Size: 64})
	return symbolFace, numberFace, nil
}

func (ps *placeholderService) Render(symbol string) ([]byte, error) {
	element, ok := ps.dataset.BySymbol(symbol)
	if !ok {
		return nil, apierr.NotFoundf("unknown element symbol %q", symbol)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if png, ok := ps.rendered[element.Symbol]; ok {
		return png, nil
	}

	bg, ok := categoryColors[element.Category]
	if !ok {
		bg = color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}
	}

	dc := gg.NewContext(placeholderSize, placeholderSize)
	dc.SetColor(bg)
	dc.Clear()

	dc.SetRGBA(1, 1, 1, 0.12)
	dc.DrawRoundedRectangle(16, 16, placeholderSize-32, placeholderSize-32, 24)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(ps.symbolFace)
	dc.DrawStringAnchored(element.Symbol, placeholderSize/2, placeholderSize/2, 0.5, 0.5)

	dc.SetFontFace(ps.numberFace)
	dc.DrawStringAnchored(fmt.Sprintf("%d", element.AtomicNumber), 48, 56, 0, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		ps.log.Error("failed to encode placeholder tile", "error", err, "symbol", element.Symbol)
		return nil, apierr.Internal(fmt.Errorf("encode placeholder: %w", err))
	}

	png := buf.Bytes()
	ps.rendered[element.Symbol] = png
	return png, nil
}
