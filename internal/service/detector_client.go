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

// DetectorClient calls the field-detection sidecar, which locates labeled
// field regions on a document photo and returns their bounding boxes.
type DetectorClient struct {
	baseURL       string
	httpClient    *http.Client
	minConfidence float64
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Detections []struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
		Box        struct {
			X1 int `json:"x1"`
			Y1 int `json:"y1"`
			X2 int `json:"x2"`
			Y2 int `json:"y2"`
		} `json:"box"`
	} `json:"detections"`
}

func NewDetectorClient(baseURL string, minConfidence float64, timeout time.Duration) *DetectorClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DetectorClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		minConfidence: minConfidence,
	}
}

// Detect submits the full document image and returns the detections at or
// above the configured confidence floor, in the sidecar's order.
func (c *DetectorClient) Detect(ctx context.Context, image []byte) ([]models.Detection, error) {
	body, err := json.Marshal(detectRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call detector sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector sidecar returned status %d", resp.StatusCode)
	}

	var result detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	detections := make([]models.Detection, 0, len(result.Detections))
	for _, d := range result.Detections {
		if d.Confidence < c.minConfidence {
			continue
		}
		detections = append(detections, models.Detection{
			Label:      d.Label,
			Confidence: d.Confidence,
			Box: models.BoundingBox{
				X1: d.Box.X1, Y1: d.Box.Y1,
				X2: d.Box.X2, Y2: d.Box.Y2,
			},
		})
	}
	return detections, nil
}
