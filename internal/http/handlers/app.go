package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/breaker"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/preview"
)

// PreviewService is the slice of the orchestration service the gateway needs.
type PreviewService interface {
	GeneratePreview(ctx context.Context, productID, sizeName string, values map[string]string) (*preview.Result, error)
	GenerateDocument(ctx context.Context, productID, sizeName string, values map[string]string) (*preview.DocumentResult, error)
	Thumbnail(ctx context.Context, productID string) (*preview.ThumbnailResult, error)
	InvalidateThumbnail(ctx context.Context, productID string) error
	Breaker() *breaker.Breaker
}

type App struct {
	Catalog *catalog.Catalog
	Service PreviewService
	Logger  zerolog.Logger
}

func NewApp(c *catalog.Catalog, svc PreviewService, logger zerolog.Logger) *App {
	return &App{Catalog: c, Service: svc, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, msg string) {
	a.json(w, code, map[string]any{"error": slug, "message": msg})
}

// serviceError maps pipeline errors onto stable HTTP classifications. Raw
// vendor payloads are never forwarded.
func (a *App) serviceError(w http.ResponseWriter, err error) {
	var incomplete *domain.JobIncompleteError
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		a.error(w, http.StatusNotFound, "not_found", "unknown product")
	case errors.Is(err, domain.ErrSizeNotFound):
		a.error(w, http.StatusBadRequest, "bad_request", "unknown size for this product")
	case errors.Is(err, domain.ErrCircuitOpen):
		retry := int(math.Ceil(a.Service.Breaker().RetryAfter().Seconds()))
		a.json(w, http.StatusServiceUnavailable, map[string]any{
			"error":               "circuit_open",
			"message":             "composition service temporarily unavailable",
			"retry_after_seconds": retry,
		})
	case errors.Is(err, domain.ErrComposerTimeout):
		a.error(w, http.StatusGatewayTimeout, "composer_timeout", "composition service timed out")
	case errors.As(err, &incomplete):
		a.error(w, http.StatusBadGateway, "job_incomplete", "composition job finished with status "+incomplete.Status)
	case errors.Is(err, domain.ErrNoImagesInOutput), errors.Is(err, domain.ErrNoDocumentInOutput):
		a.error(w, http.StatusBadGateway, "empty_output", "composition job produced no usable output")
	default:
		a.error(w, http.StatusBadGateway, "composer_error", "composition service request failed")
	}
}
