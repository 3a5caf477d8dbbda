package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// EasyOCREngine calls an EasyOCR sidecar over HTTP. The sidecar exposes a
// single /readtext endpoint taking a base64 image and returning per-line
// results with confidences.
type EasyOCREngine struct {
	baseURL    string
	httpClient *http.Client
}

type easyOCRRequest struct {
	Image     string `json:"image"`
	Allowlist string `json:"allowlist,omitempty"`
}

type easyOCRResponse struct {
	Results []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

func NewEasyOCREngine(baseURL string, timeout time.Duration) *EasyOCREngine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EasyOCREngine{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (e *EasyOCREngine) Name() string { return "easyocr" }

func (e *EasyOCREngine) Recognize(ctx context.Context, image []byte, field models.FieldType) (string, error) {
	payload := easyOCRRequest{
		Image:     base64.StdEncoding.EncodeToString(image),
		Allowlist: allowlistForField(field),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/readtext", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call easyocr sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("easyocr sidecar returned status %d", resp.StatusCode)
	}

	var result easyOCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	parts := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		if text := strings.TrimSpace(r.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// allowlistForField mirrors the Tesseract whitelists so both engines see
// the same character space on the short numeric fields.
func allowlistForField(field models.FieldType) string {
	switch field {
	case models.FieldNIK, models.FieldRTRW:
		return "0123456789/"
	case models.FieldBloodType:
		return "ABO+-"
	default:
		return ""
	}
}
