package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// RekognitionEngine recognizes field crops with AWS Rekognition DetectText.
// Registered only when AWS credentials are configured.
type RekognitionEngine struct {
	client *rekognition.Client
}

// NewRekognitionEngine loads the default AWS config for the given region.
// Credentials come from the environment or the shared config chain.
func NewRekognitionEngine(ctx context.Context, region string) (*RekognitionEngine, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}
	return &RekognitionEngine{client: rekognition.NewFromConfig(awsCfg)}, nil
}

func (e *RekognitionEngine) Name() string { return "rekognition" }

func (e *RekognitionEngine) Recognize(ctx context.Context, image []byte, _ models.FieldType) (string, error) {
	out, err := e.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return "", fmt.Errorf("detect text: %w", err)
	}

	// LINE detections carry the assembled reading order; WORD entries
	// duplicate them.
	lines := make([]string, 0, len(out.TextDetections))
	for _, d := range out.TextDetections {
		if d.Type != types.TextTypesLine {
			continue
		}
		if text := strings.TrimSpace(aws.ToString(d.DetectedText)); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, " "), nil
}
