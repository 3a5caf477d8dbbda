package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/El-Ikhsan/ktp-extractor/internal/dataset"
	"github.com/El-Ikhsan/ktp-extractor/internal/models"
)

// Engine recognizes text from a cropped field region. Implementations
// return an empty string for unreadable input; errors cover transport or
// process failures only.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, field models.FieldType) (string, error)
}

// EngineRouter holds the OCR engines registered at startup and resolves a
// request's engine selector to one of them.
type EngineRouter struct {
	engines     map[string]Engine
	defaultName string
}

func NewEngineRouter(defaultName string) *EngineRouter {
	return &EngineRouter{
		engines:     make(map[string]Engine),
		defaultName: defaultName,
	}
}

// Register adds an engine under its own name. Later registrations with the
// same name replace earlier ones.
func (r *EngineRouter) Register(e Engine) {
	r.engines[e.Name()] = e
	log.Info().Str("engine", e.Name()).Msg("OCR engine registered")
}

// Get resolves a selector to an engine. An empty selector picks the
// configured default.
func (r *EngineRouter) Get(name string) (Engine, bool) {
	if name == "" {
		name = r.defaultName
	}
	e, ok := r.engines[name]
	return e, ok
}

// Fallback returns a registered engine different from the given one, used
// as the arbitration secondary. Returns nil when no alternative exists.
func (r *EngineRouter) Fallback(primary Engine) Engine {
	for _, name := range r.Available() {
		if name != primary.Name() {
			return r.engines[name]
		}
	}
	return nil
}

// Available lists registered engine names in stable order.
func (r *EngineRouter) Available() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Arbitrator runs the two-engine recognition policy for a single field.
type Arbitrator struct {
	normalizer *Normalizer
	datasets   *dataset.Index
	clock      func() time.Time
}

func NewArbitrator(n *Normalizer, idx *dataset.Index) *Arbitrator {
	return &Arbitrator{normalizer: n, datasets: idx, clock: time.Now}
}

// RecognizeField invokes the primary engine and cleans its output. The
// fallback engine runs only when the primary result is empty or, for the
// identity number, not exactly 16 characters after cleaning. A fallback
// identity number is accepted only if it passes structural validation;
// any other fallback value only if it is strictly longer than the primary
// result. The chosen value then receives the field-specific final pass.
func (a *Arbitrator) RecognizeField(ctx context.Context, primary, fallback Engine, image []byte, ft models.FieldType) string {
	cleaned := a.normalizer.Clean(ft, a.recognize(ctx, primary, image, ft))

	needFallback := cleaned == "" || (ft == models.FieldNIK && len(cleaned) != 16)
	if needFallback && fallback != nil {
		candidate := a.normalizer.Clean(ft, a.recognize(ctx, fallback, image, ft))
		if ft == models.FieldNIK {
			if ValidateNIK(a.datasets, candidate, a.clock()) {
				cleaned = candidate
			}
		} else if len(candidate) > len(cleaned) {
			cleaned = candidate
		}
	}

	return a.normalizer.Finalize(ft, cleaned)
}

// recognize maps engine failures to an empty string so a single field's
// OCR error never aborts the rest of the extraction.
func (a *Arbitrator) recognize(ctx context.Context, e Engine, image []byte, ft models.FieldType) string {
	if e == nil {
		return ""
	}
	text, err := e.Recognize(ctx, image, ft)
	if err != nil {
		log.Warn().Err(err).Str("engine", e.Name()).Str("field", string(ft)).Msg("OCR engine failed, treating field as empty")
		return ""
	}
	return text
}
