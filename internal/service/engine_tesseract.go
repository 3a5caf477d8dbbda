package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// TesseractEngine recognizes field crops with a local Tesseract install via
// gosseract. A fresh client per call keeps recognitions independent; the
// per-field whitelist and segmentation mode narrow the character space for
// the short numeric fields.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	language      string
}

func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "ind"
	}
	return &TesseractEngine{clientFactory: gosseract.NewClient, language: language}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, field models.FieldType) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := e.configureForField(c, field); err != nil {
		return "", err
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *TesseractEngine) configureForField(c *gosseract.Client, field models.FieldType) error {
	switch field {
	case models.FieldNIK, models.FieldRTRW:
		if err := c.SetWhitelist("0123456789/"); err != nil {
			return fmt.Errorf("set whitelist: %w", err)
		}
		return c.SetPageSegMode(gosseract.PSM_SINGLE_WORD)

	case models.FieldBloodType:
		if err := c.SetWhitelist("ABO+-"); err != nil {
			return fmt.Errorf("set whitelist: %w", err)
		}
		return c.SetPageSegMode(gosseract.PSM_SINGLE_WORD)

	default:
		if err := c.SetLanguage(e.language); err != nil {
			return fmt.Errorf("set language: %w", err)
		}
		return c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	}
}
