package service

import (
	"context"
	"errors"
	"testing"

	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

type stubEngine struct {
	name string
	text string
	err  error
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Recognize(_ context.Context, _ []byte, _ models.FieldType) (string, error) {
	return s.text, s.err
}

func TestEngineRouterResolution(t *testing.T) {
	r := NewEngineRouter("tesseract")
	tess := &stubEngine{name: "tesseract"}
	easy := &stubEngine{name: "easyocr"}
	r.Register(tess)
	r.Register(easy)

	if e, ok := r.Get(""); !ok || e.Name() != "tesseract" {
		t.Errorf("empty selector should resolve to default, got %v", e)
	}
	if e, ok := r.Get("easyocr"); !ok || e.Name() != "easyocr" {
		t.Errorf("named selector failed, got %v", e)
	}
	if _, ok := r.Get("unknown"); ok {
		t.Error("unknown selector should not resolve")
	}

	names := r.Available()
	if len(names) != 2 || names[0] != "easyocr" || names[1] != "tesseract" {
		t.Errorf("Available() = %v", names)
	}

	if fb := r.Fallback(tess); fb == nil || fb.Name() != "easyocr" {
		t.Errorf("Fallback(tesseract) = %v, want easyocr", fb)
	}
}

func TestEngineRouterFallbackWithSingleEngine(t *testing.T) {
	r := NewEngineRouter("tesseract")
	tess := &stubEngine{name: "tesseract"}
	r.Register(tess)

	if fb := r.Fallback(tess); fb != nil {
		t.Errorf("single registered engine should have no fallback, got %v", fb)
	}
}

func TestArbitrationPrimaryWins(t *testing.T) {
	a := NewArbitrator(NewNormalizer(testIndex(), 0.7), testIndex())
	primary := &stubEngine{name: "p", text: "BUDI SANTOSO"}
	fallback := &stubEngine{name: "f", text: "BUDI SANTOSO WIDODO"}

	got := a.RecognizeField(context.Background(), primary, fallback, nil, models.FieldName)
	if got != "BUDI SANTOSO" {
		t.Errorf("non-empty primary should win, got %q", got)
	}
}

func TestArbitrationFallbackOnEmptyPrimary(t *testing.T) {
	a := NewArbitrator(NewNormalizer(testIndex(), 0.7), testIndex())
	primary := &stubEngine{name: "p", text: ""}
	fallback := &stubEngine{name: "f", text: "BUDI SANTOSO"}

	got := a.RecognizeField(context.Background(), primary, fallback, nil, models.FieldName)
	if got != "BUDI SANTOSO" {
		t.Errorf("fallback should fill empty primary, got %q", got)
	}
}

func TestArbitrationNIKFallbackMustValidate(t *testing.T) {
	a := NewArbitrator(NewNormalizer(testIndex(), 0.7), testIndex())

	// Fallback has 16 digits but an unknown province code.
	primary := &stubEngine{name: "p", text: "31710125030"}
	invalid := &stubEngine{name: "f", text: "9971012503010001"}
	got := a.RecognizeField(context.Background(), primary, invalid, nil, models.FieldNIK)
	if got != "31710125030" {
		t.Errorf("invalid fallback should be rejected, got %q", got)
	}

	valid := &stubEngine{name: "f", text: "3171012503010001"}
	got = a.RecognizeField(context.Background(), primary, valid, nil, models.FieldNIK)
	if got != "3171012503010001" {
		t.Errorf("validating fallback should be accepted, got %q", got)
	}
}

func TestArbitrationFallbackMustBeStrictlyLonger(t *testing.T) {
	a := NewArbitrator(NewNormalizer(testIndex(), 0.7), testIndex())
	primary := &stubEngine{name: "p", text: ""}
	fallback := &stubEngine{name: "f", text: ""}

	got := a.RecognizeField(context.Background(), primary, fallback, nil, models.FieldName)
	if got != "" {
		t.Errorf("equal-length fallback should not replace, got %q", got)
	}
}

func TestArbitrationEngineErrorIsolated(t *testing.T) {
	a := NewArbitrator(NewNormalizer(testIndex(), 0.7), testIndex())
	primary := &stubEngine{name: "p", err: errors.New("process crashed")}
	fallback := &stubEngine{name: "f", text: "GAMBIR"}

	got := a.RecognizeField(context.Background(), primary, fallback, nil, models.FieldVillage)
	if got != "GAMBIR" {
		t.Errorf("engine error should fall through to fallback, got %q", got)
	}
}
