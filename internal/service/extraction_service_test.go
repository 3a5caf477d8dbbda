package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

type fakeDetector struct {
	detections []models.Detection
	err        error
	calls      int
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte) ([]models.Detection, error) {
	f.calls++
	return f.detections, f.err
}

type fakeRepo struct {
	created []*models.ExtractionRecord
	stored  map[string]*models.ExtractionRecord
}

func (f *fakeRepo) Create(_ context.Context, rec *models.ExtractionRecord) error {
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeRepo) GetByIDAndClientID(_ context.Context, id string, clientID int) (*models.ExtractionRecord, error) {
	rec, ok := f.stored[id]
	if !ok || rec.ClientID != clientID {
		return nil, nil
	}
	return rec, nil
}

type fakeCache struct {
	entries map[string]*models.ExtractionRecord
	sets    int
}

func (f *fakeCache) Get(_ context.Context, key string) (*models.ExtractionRecord, error) {
	return f.entries[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, rec *models.ExtractionRecord) error {
	if f.entries == nil {
		f.entries = make(map[string]*models.ExtractionRecord)
	}
	f.entries[key] = rec
	f.sets++
	return nil
}

// fieldStubEngine answers with a fixed text per field type.
type fieldStubEngine struct {
	name    string
	byField map[models.FieldType]string
}

func (f *fieldStubEngine) Name() string { return f.name }

func (f *fieldStubEngine) Recognize(_ context.Context, _ []byte, field models.FieldType) (string, error) {
	return f.byField[field], nil
}

func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTestService(detector Detector, engine Engine, repo ExtractionRepository, cache ResultCache) *ExtractionService {
	idx := testIndex()
	router := NewEngineRouter(engine.Name())
	router.Register(engine)
	arb := NewArbitrator(NewNormalizer(idx, 0.7), idx)
	return NewExtractionService(detector, router, arb, idx, repo, cache, nil)
}

func TestExtractHappyPath(t *testing.T) {
	detector := &fakeDetector{detections: []models.Detection{
		{Label: "nik", Confidence: 0.95, Box: models.BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 20}},
		{Label: "nama", Confidence: 0.5, Box: models.BoundingBox{X1: 0, Y1: 20, X2: 50, Y2: 40}},
		{Label: "nama", Confidence: 0.9, Box: models.BoundingBox{X1: 0, Y1: 20, X2: 100, Y2: 40}},
		{Label: "not_a_field", Confidence: 0.99, Box: models.BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}},
	}}
	engine := &fieldStubEngine{name: "stub", byField: map[models.FieldType]string{
		models.FieldNIK:  "3171014705030001",
		models.FieldName: "BUD1 SANTOSO",
	}}
	repo := &fakeRepo{}
	cache := &fakeCache{}
	svc := newTestService(detector, engine, repo, cache)

	rec, cached, err := svc.Extract(context.Background(), 7, testImagePNG(t), "")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if cached {
		t.Error("first extraction should not be cached")
	}

	if got := rec.Fields["nik"]; got != "3171014705030001" {
		t.Errorf("nik = %q", got)
	}
	if got := rec.Fields["nama"]; got != "BUDI SANTOSO" {
		t.Errorf("nama = %q, want BUDI SANTOSO", got)
	}
	if got := rec.Fields["jenis_kelamin"]; got != GenderFemale {
		t.Errorf("jenis_kelamin = %q, want %q", got, GenderFemale)
	}
	if got := rec.Fields["tgl_lahir"]; got != "07-05-2003" {
		t.Errorf("tgl_lahir = %q, want 07-05-2003", got)
	}
	if !rec.NIKValid {
		t.Error("NIK should validate against the reference index")
	}
	if rec.ClientID != 7 || rec.Engine != "stub" || rec.ID == "" {
		t.Errorf("record metadata incomplete: %+v", rec)
	}
	if len(repo.created) != 1 {
		t.Errorf("expected one persisted record, got %d", len(repo.created))
	}
	if cache.sets != 1 {
		t.Errorf("expected one cache store, got %d", cache.sets)
	}
}

func TestExtractCacheHit(t *testing.T) {
	detector := &fakeDetector{}
	engine := &fieldStubEngine{name: "stub"}
	repo := &fakeRepo{}
	cache := &fakeCache{}
	svc := newTestService(detector, engine, repo, cache)

	img := testImagePNG(t)
	first, _, err := svc.Extract(context.Background(), 1, img, "")
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}

	second, cached, err := svc.Extract(context.Background(), 1, img, "")
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if !cached {
		t.Error("identical image and engine should hit the cache")
	}
	if second.ID != first.ID {
		t.Error("cache hit should return the stored record")
	}
	if detector.calls != 1 {
		t.Errorf("detector called %d times, want 1", detector.calls)
	}
}

func TestExtractRejectsOversizedImage(t *testing.T) {
	svc := newTestService(&fakeDetector{}, &fieldStubEngine{name: "stub"}, &fakeRepo{}, nil)

	big := make([]byte, MaxImageSize+1)
	if _, _, err := svc.Extract(context.Background(), 1, big, ""); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("err = %v, want ErrImageTooLarge", err)
	}
}

func TestExtractRejectsUnsupportedImage(t *testing.T) {
	svc := newTestService(&fakeDetector{}, &fieldStubEngine{name: "stub"}, &fakeRepo{}, nil)

	if _, _, err := svc.Extract(context.Background(), 1, []byte("plain text payload"), ""); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("err = %v, want ErrUnsupportedImage", err)
	}
}

func TestExtractRejectsUnknownEngine(t *testing.T) {
	svc := newTestService(&fakeDetector{}, &fieldStubEngine{name: "stub"}, &fakeRepo{}, nil)

	if _, _, err := svc.Extract(context.Background(), 1, testImagePNG(t), "no-such-engine"); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("err = %v, want ErrUnknownEngine", err)
	}
}

func TestExtractDetectorErrorPropagates(t *testing.T) {
	detector := &fakeDetector{err: errors.New("sidecar down")}
	svc := newTestService(detector, &fieldStubEngine{name: "stub"}, &fakeRepo{}, nil)

	if _, _, err := svc.Extract(context.Background(), 1, testImagePNG(t), ""); err == nil {
		t.Error("detector failure should fail the request")
	}
}

func TestGetExtraction(t *testing.T) {
	rec := &models.ExtractionRecord{ID: "abc", ClientID: 3}
	repo := &fakeRepo{stored: map[string]*models.ExtractionRecord{"abc": rec}}
	svc := newTestService(&fakeDetector{}, &fieldStubEngine{name: "stub"}, repo, nil)

	got, err := svc.GetExtraction(context.Background(), "abc", 3)
	if err != nil || got.ID != "abc" {
		t.Fatalf("GetExtraction = %v, %v", got, err)
	}

	if _, err := svc.GetExtraction(context.Background(), "abc", 99); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("foreign client should not see the record, err = %v", err)
	}
}
