package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	_ "image/jpeg"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"

	"github.com/El-Ikhsan/ktp-extractor/internal/dataset"
	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// MaxImageSize bounds the accepted document photo payload.
const MaxImageSize = 10 << 20

var (
	ErrImageTooLarge    = errors.New("image exceeds the maximum allowed size")
	ErrUnsupportedImage = errors.New("image must be JPEG, PNG or WebP")
	ErrUnknownEngine    = errors.New("unknown OCR engine")
	ErrRecordNotFound   = errors.New("extraction record not found")
)

// Detector locates labeled field regions on a document photo.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]models.Detection, error)
}

// ExtractionRepository persists and retrieves extraction audit records.
type ExtractionRepository interface {
	Create(ctx context.Context, rec *models.ExtractionRecord) error
	GetByIDAndClientID(ctx context.Context, id string, clientID int) (*models.ExtractionRecord, error)
}

// ResultCache stores completed extraction results keyed by image digest and
// engine. Get returns (nil, nil) on a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.ExtractionRecord, error)
	Set(ctx context.Context, key string, rec *models.ExtractionRecord) error
}

// DocumentUploader archives the source document photo. Optional; a nil
// uploader disables archival.
type DocumentUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ExtractionService runs the full document pipeline: detection, per-field
// OCR with arbitration, cross-field reconciliation, persistence and
// caching.
type ExtractionService struct {
	detector   Detector
	router     *EngineRouter
	arbitrator *Arbitrator
	datasets   *dataset.Index
	repo       ExtractionRepository
	cache      ResultCache
	uploader   DocumentUploader
	clock      func() time.Time
}

func NewExtractionService(
	detector Detector,
	router *EngineRouter,
	arbitrator *Arbitrator,
	datasets *dataset.Index,
	repo ExtractionRepository,
	cache ResultCache,
	uploader DocumentUploader,
) *ExtractionService {
	return &ExtractionService{
		detector:   detector,
		router:     router,
		arbitrator: arbitrator,
		datasets:   datasets,
		repo:       repo,
		cache:      cache,
		uploader:   uploader,
		clock:      time.Now,
	}
}

// Extract processes one document image with the selected engine. The second
// return value reports whether the result came from the cache.
func (s *ExtractionService) Extract(ctx context.Context, clientID int, imageData []byte, engineName string) (*models.ExtractionRecord, bool, error) {
	if len(imageData) > MaxImageSize {
		return nil, false, ErrImageTooLarge
	}
	contentType := http.DetectContentType(imageData)
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return nil, false, ErrUnsupportedImage
	}

	engine, ok := s.router.Get(engineName)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownEngine, engineName)
	}

	digest := sha256.Sum256(imageData)
	cacheKey := hex.EncodeToString(digest[:]) + ":" + engine.Name()

	if s.cache != nil {
		if rec, err := s.cache.Get(ctx, cacheKey); err != nil {
			log.Warn().Err(err).Msg("result cache lookup failed")
		} else if rec != nil {
			return rec, true, nil
		}
	}

	started := s.clock()

	detections, err := s.detector.Detect(ctx, imageData)
	if err != nil {
		return nil, false, fmt.Errorf("field detection: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}

	fields := make(models.FieldMap, len(models.DetectedFieldTypes))
	for _, ft := range models.DetectedFieldTypes {
		fields[string(ft)] = ""
	}

	fallback := s.router.Fallback(engine)
	for ft, det := range bestDetections(detections) {
		cf := s.recognizeField(ctx, engine, fallback, img, ft, det)
		fields[string(cf.Type)] = cf.Value
	}

	Reconcile(fields, s.clock())

	nik := fields[string(models.FieldNIK)]
	rec := &models.ExtractionRecord{
		ID:               uuid.NewString(),
		ClientID:         clientID,
		Engine:           engine.Name(),
		NIK:              nik,
		Fields:           fields,
		NIKValid:         ValidateNIK(s.datasets, nik, s.clock()),
		ImageSHA256:      hex.EncodeToString(digest[:]),
		ProcessingTimeMs: s.clock().Sub(started).Milliseconds(),
		CreatedAt:        s.clock(),
	}

	if s.uploader != nil {
		key := fmt.Sprintf("documents/%s/%s", rec.CreatedAt.Format("2006/01/02"), rec.ID)
		if url, err := s.uploader.Upload(ctx, key, imageData, contentType); err != nil {
			log.Warn().Err(err).Str("extraction_id", rec.ID).Msg("document archive upload failed")
		} else {
			rec.DocumentURL = url
		}
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, rec); err != nil {
			log.Error().Err(err).Str("extraction_id", rec.ID).Msg("failed to persist extraction record")
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rec); err != nil {
			log.Warn().Err(err).Msg("result cache store failed")
		}
	}

	return rec, false, nil
}

// GetExtraction loads a stored record scoped to the requesting client.
func (s *ExtractionService) GetExtraction(ctx context.Context, id string, clientID int) (*models.ExtractionRecord, error) {
	rec, err := s.repo.GetByIDAndClientID(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// Engines lists the registered OCR engine names.
func (s *ExtractionService) Engines() []string {
	return s.router.Available()
}

// bestDetections keeps the highest-confidence detection per field and drops
// labels the pipeline does not recognize.
func bestDetections(detections []models.Detection) map[models.FieldType]models.Detection {
	best := make(map[models.FieldType]models.Detection)
	for _, det := range detections {
		ft, ok := models.FieldTypeForLabel(det.Label)
		if !ok {
			continue
		}
		if cur, exists := best[ft]; !exists || det.Confidence > cur.Confidence {
			best[ft] = det
		}
	}
	return best
}

// recognizeField crops the detected region and runs OCR arbitration on it,
// carrying the detection confidence alongside the cleaned value. Any
// failure, including a panic inside an engine binding, is contained to
// this field and yields an empty value.
func (s *ExtractionService) recognizeField(ctx context.Context, primary, fallback Engine, img image.Image, ft models.FieldType, det models.Detection) (cf models.CleanedField) {
	cf = models.CleanedField{Type: ft, Confidence: det.Confidence}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("field", string(ft)).Msg("field pipeline panicked, recording empty value")
			cf.Value = ""
		}
	}()

	crop, err := cropRegion(img, det.Box)
	if err != nil {
		log.Warn().Err(err).Str("field", string(ft)).Msg("crop failed, recording empty value")
		return cf
	}
	cf.Value = s.arbitrator.RecognizeField(ctx, primary, fallback, crop, ft)
	return cf
}

// cropRegion cuts the bounding box out of the decoded image and re-encodes
// it as PNG for the OCR engines.
func cropRegion(img image.Image, box models.BoundingBox) ([]byte, error) {
	rect := image.Rect(box.X1, box.Y1, box.X2, box.Y2).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region outside image bounds")
	}

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image does not support sub-image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("encode cropped region: %w", err)
	}
	return buf.Bytes(), nil
}
