// Package preview orchestrates the job pipeline: ticket build, circuit
// breaker gate, remote submission, bundle extraction and thumbnail caching.
package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"server/internal/breaker"
	"server/internal/bundle"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/metrics"
	"server/internal/thumbcache"
	"server/internal/ticket"
)

// Composer abstracts the remote job client.
type Composer interface {
	SubmitAndFetch(ctx context.Context, t *ticket.JobTicket) ([]byte, error)
}

// Result of a preview generation: rendered pages in spread order.
type Result struct {
	Pages []bundle.PageImage
}

// DocumentResult is the final print-ready document.
type DocumentResult struct {
	Filename string
	Data     []byte
}

// ThumbnailResult is one thumbnail image, or a static URL when the product
// configures one.
type ThumbnailResult struct {
	URL      string
	MIME     string
	Data     []byte
	CacheHit bool
	Durable  bool
}

// Service wires the pipeline components. All remote calls go through the
// circuit breaker; validation failures never touch it.
type Service struct {
	catalog  *catalog.Catalog
	builder  ticket.Builder
	breaker  *breaker.Breaker
	composer Composer
	thumbs   thumbcache.Store
	logger   zerolog.Logger
}

// NewService assembles the orchestration service.
func NewService(c *catalog.Catalog, b ticket.Builder, br *breaker.Breaker, comp Composer, thumbs thumbcache.Store, logger zerolog.Logger) *Service {
	return &Service{
		catalog:  c,
		builder:  b,
		breaker:  br,
		composer: comp,
		thumbs:   thumbs,
		logger:   logger,
	}
}

// Breaker exposes the breaker for retry-hint reporting.
func (s *Service) Breaker() *breaker.Breaker { return s.breaker }

// GeneratePreview renders the proof of one product size and returns its
// pages ordered by page number.
func (s *Service) GeneratePreview(ctx context.Context, productID, sizeName string, values map[string]string) (*Result, error) {
	p, ok := s.catalog.Lookup(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProductNotFound, productID)
	}
	t, err := s.builder.Build(p, sizeName, values, ticket.KindProof)
	if err != nil {
		return nil, err
	}
	raw, err := s.runJob(ctx, t)
	if err != nil {
		return nil, err
	}
	pages, err := bundle.ExtractImages(raw)
	if err != nil {
		return nil, err
	}
	return &Result{Pages: pages}, nil
}

// GenerateDocument renders the production PDF of one product size.
func (s *Service) GenerateDocument(ctx context.Context, productID, sizeName string, values map[string]string) (*DocumentResult, error) {
	p, ok := s.catalog.Lookup(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProductNotFound, productID)
	}
	t, err := s.builder.Build(p, sizeName, values, ticket.KindPrint)
	if err != nil {
		return nil, err
	}
	raw, err := s.runJob(ctx, t)
	if err != nil {
		return nil, err
	}
	doc, err := bundle.ExtractDocument(raw)
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Filename: doc.Filename, Data: doc.Data}, nil
}

// Thumbnail returns the product thumbnail: the statically configured URL if
// set, then the cache, then a fresh default-value proof render whose first
// page is cached for later requests.
func (s *Service) Thumbnail(ctx context.Context, productID string) (*ThumbnailResult, error) {
	p, ok := s.catalog.Lookup(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProductNotFound, productID)
	}
	if p.Thumbnail != "" {
		return &ThumbnailResult{URL: p.Thumbnail, Durable: true}, nil
	}

	cached, hit, err := s.thumbs.Get(ctx, productID)
	if err != nil {
		s.logger.Warn().Err(err).Str("product", productID).Msg("thumbnail cache read failed")
	}
	if hit {
		metrics.ThumbnailCacheHits.WithLabelValues("hit").Inc()
		return &ThumbnailResult{MIME: cached.MIME, Data: cached.Data, CacheHit: true, Durable: s.thumbs.Durable()}, nil
	}
	metrics.ThumbnailCacheHits.WithLabelValues("miss").Inc()

	res, err := s.GeneratePreview(ctx, productID, p.Sizes[0].Name, nil)
	if err != nil {
		return nil, err
	}
	first := res.Pages[0]
	asset := thumbcache.Asset{MIME: first.MIME, Data: first.Data}
	if err := s.thumbs.Set(ctx, productID, asset); err != nil {
		s.logger.Warn().Err(err).Str("product", productID).Msg("thumbnail cache write failed")
	}
	return &ThumbnailResult{MIME: first.MIME, Data: first.Data, Durable: s.thumbs.Durable()}, nil
}

// InvalidateThumbnail drops any cached thumbnail for the product. Unknown
// products still fail with ErrProductNotFound.
func (s *Service) InvalidateThumbnail(ctx context.Context, productID string) error {
	if _, ok := s.catalog.Lookup(productID); !ok {
		return fmt.Errorf("%w: %q", domain.ErrProductNotFound, productID)
	}
	return s.thumbs.Invalidate(ctx, productID)
}

// runJob guards one remote call with the breaker and reports the outcome,
// including on timeout.
func (s *Service) runJob(ctx context.Context, t *ticket.JobTicket) ([]byte, error) {
	if !s.breaker.CanRequest() {
		metrics.ComposerJobs.WithLabelValues(string(t.Kind), "circuit_open").Inc()
		return nil, domain.ErrCircuitOpen
	}

	start := time.Now()
	raw, err := s.composer.SubmitAndFetch(ctx, t)
	metrics.ComposerJobDuration.WithLabelValues(string(t.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		s.breaker.OnFailure()
		metrics.BreakerState.Set(float64(s.breaker.State()))
		metrics.ComposerJobs.WithLabelValues(string(t.Kind), outcome(err)).Inc()
		s.logger.Error().Err(err).Str("kind", string(t.Kind)).Str("document", t.DocumentRef).Msg("composer job failed")
		return nil, err
	}
	s.breaker.OnSuccess()
	metrics.BreakerState.Set(float64(s.breaker.State()))
	metrics.ComposerJobs.WithLabelValues(string(t.Kind), "success").Inc()
	return raw, nil
}

func outcome(err error) string {
	var incomplete *domain.JobIncompleteError
	switch {
	case errors.Is(err, domain.ErrComposerTimeout):
		return "timeout"
	case errors.As(err, &incomplete):
		return "incomplete"
	default:
		return "transport_error"
	}
}
