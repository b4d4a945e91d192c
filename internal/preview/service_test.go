package preview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/breaker"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/thumbcache"
	"server/internal/ticket"
	"server/pkg/zip"
)

type fakeComposer struct {
	raw     []byte
	err     error
	calls   int
	tickets []*ticket.JobTicket
}

func (f *fakeComposer) SubmitAndFetch(_ context.Context, t *ticket.JobTicket) ([]byte, error) {
	f.calls++
	f.tickets = append(f.tickets, t)
	return f.raw, f.err
}

const testCatalogJSON = `[
	{
		"id": "brochure-a",
		"title": "Tri-fold Brochure A",
		"campaign_ref": "BrochureCampaign",
		"plan_ref": "BrochurePlan",
		"sizes": [
			{"name": "A4", "document_ref": "BrochureA_A4"},
			{"name": "A5", "document_ref": "BrochureA_A5"}
		],
		"variables": [
			{
				"name": "language", "kind": "select", "default": "EN",
				"plan_object": {"name": "Language", "type": "Variable"},
				"options": [{"value": "EN"}, {"value": "NL"}]
			}
		]
	},
	{
		"id": "card-static",
		"title": "Static Card",
		"campaign_ref": "CardCampaign",
		"plan_ref": "CardPlan",
		"thumbnail": "/static/thumbs/card.jpg",
		"sizes": [{"name": "A6", "document_ref": "Card_A6"}]
	}
]`

func newTestService(t *testing.T, comp Composer) (*Service, thumbcache.Store) {
	t.Helper()
	c, err := catalog.Parse([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("catalog.Parse() error: %v", err)
	}
	thumbs := thumbcache.NewMemoryStore()
	br := breaker.New(breaker.DefaultFailureThreshold, breaker.DefaultResetTimeout)
	return NewService(c, ticket.Builder{}, br, comp, thumbs, zerolog.Nop()), thumbs
}

func previewBundle(t *testing.T) []byte {
	t.Helper()
	raw, err := zip.Archive([]zip.Entry{
		{Name: "p002.jpg", Data: []byte("page-two")},
		{Name: "p001.jpg", Data: []byte("page-one")},
	})
	if err != nil {
		t.Fatalf("zip.Archive() error: %v", err)
	}
	return raw
}

func documentBundle(t *testing.T) []byte {
	t.Helper()
	raw, err := zip.Archive([]zip.Entry{
		{Name: "brochure final.pdf", Data: []byte("%PDF")},
	})
	if err != nil {
		t.Fatalf("zip.Archive() error: %v", err)
	}
	return raw
}

func TestGeneratePreview(t *testing.T) {
	comp := &fakeComposer{raw: previewBundle(t)}
	s, _ := newTestService(t, comp)

	res, err := s.GeneratePreview(context.Background(), "brochure-a", "A4", map[string]string{"language": "NL"})
	if err != nil {
		t.Fatalf("GeneratePreview() error: %v", err)
	}
	if len(res.Pages) != 2 || res.Pages[0].Name != "p001.jpg" {
		t.Fatalf("unexpected pages: %+v", res.Pages)
	}
	if comp.tickets[0].Kind != ticket.KindProof {
		t.Fatalf("ticket kind = %v, want Proof", comp.tickets[0].Kind)
	}
	if got := comp.tickets[0].Customizations[0].Expression; got != `"NL"` {
		t.Fatalf("Language expression = %q, want %q", got, `"NL"`)
	}
}

func TestGeneratePreviewProductNotFound(t *testing.T) {
	comp := &fakeComposer{}
	s, _ := newTestService(t, comp)

	_, err := s.GeneratePreview(context.Background(), "missing", "A4", nil)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
	if comp.calls != 0 {
		t.Fatal("validation failure reached the composer")
	}
}

func TestGeneratePreviewSizeNotFoundSkipsBreaker(t *testing.T) {
	comp := &fakeComposer{}
	s, _ := newTestService(t, comp)

	_, err := s.GeneratePreview(context.Background(), "brochure-a", "Letter", nil)
	if !errors.Is(err, domain.ErrSizeNotFound) {
		t.Fatalf("error = %v, want ErrSizeNotFound", err)
	}
	if comp.calls != 0 {
		t.Fatal("validation failure reached the composer")
	}
	if s.Breaker().State() != breaker.Closed {
		t.Fatal("validation failure moved the breaker")
	}
}

func TestGenerateDocument(t *testing.T) {
	comp := &fakeComposer{raw: documentBundle(t)}
	s, _ := newTestService(t, comp)

	doc, err := s.GenerateDocument(context.Background(), "brochure-a", "A5", nil)
	if err != nil {
		t.Fatalf("GenerateDocument() error: %v", err)
	}
	if doc.Filename != "brochure_final.pdf" {
		t.Fatalf("Filename = %q", doc.Filename)
	}
	if comp.tickets[0].Kind != ticket.KindPrint {
		t.Fatalf("ticket kind = %v, want Print", comp.tickets[0].Kind)
	}
	if comp.tickets[0].DocumentRef != "BrochureA_A5" {
		t.Fatalf("DocumentRef = %q", comp.tickets[0].DocumentRef)
	}
}

func TestRemoteFailuresOpenBreaker(t *testing.T) {
	comp := &fakeComposer{err: errors.New("connection refused")}
	s, _ := newTestService(t, comp)

	for i := 0; i < breaker.DefaultFailureThreshold; i++ {
		if _, err := s.GeneratePreview(context.Background(), "brochure-a", "A4", nil); err == nil {
			t.Fatal("expected failure")
		}
	}
	_, err := s.GeneratePreview(context.Background(), "brochure-a", "A4", nil)
	if !errors.Is(err, domain.ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if comp.calls != breaker.DefaultFailureThreshold {
		t.Fatalf("composer called %d times, want %d", comp.calls, breaker.DefaultFailureThreshold)
	}
}

func TestTimeoutCountsAsBreakerFailure(t *testing.T) {
	comp := &fakeComposer{err: domain.ErrComposerTimeout}
	s, _ := newTestService(t, comp)

	_, err := s.GeneratePreview(context.Background(), "brochure-a", "A4", nil)
	if !errors.Is(err, domain.ErrComposerTimeout) {
		t.Fatalf("error = %v, want ErrComposerTimeout", err)
	}
	// The breaker saw the timeout even though it is reported distinctly.
	comp.err = nil
	comp.raw = previewBundle(t)
	if _, err := s.GeneratePreview(context.Background(), "brochure-a", "A4", nil); err != nil {
		t.Fatalf("recovery call failed: %v", err)
	}
	if s.Breaker().State() != breaker.Closed {
		t.Fatal("breaker not closed after success")
	}
}

func TestThumbnailGeneratesAndCaches(t *testing.T) {
	comp := &fakeComposer{raw: previewBundle(t)}
	s, thumbs := newTestService(t, comp)
	ctx := context.Background()

	res, err := s.Thumbnail(ctx, "brochure-a")
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if res.CacheHit {
		t.Fatal("first thumbnail request reported a cache hit")
	}
	if string(res.Data) != "page-one" {
		t.Fatalf("thumbnail is not the first page: %q", res.Data)
	}
	if _, ok, _ := thumbs.Get(ctx, "brochure-a"); !ok {
		t.Fatal("thumbnail was not cached")
	}

	again, err := s.Thumbnail(ctx, "brochure-a")
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if !again.CacheHit {
		t.Fatal("second thumbnail request missed the cache")
	}
	if comp.calls != 1 {
		t.Fatalf("composer called %d times, want 1", comp.calls)
	}
}

func TestThumbnailStaticURL(t *testing.T) {
	comp := &fakeComposer{}
	s, _ := newTestService(t, comp)

	res, err := s.Thumbnail(context.Background(), "card-static")
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if res.URL != "/static/thumbs/card.jpg" {
		t.Fatalf("URL = %q", res.URL)
	}
	if comp.calls != 0 {
		t.Fatal("static thumbnail invoked the composer")
	}
}

func TestInvalidateThumbnail(t *testing.T) {
	comp := &fakeComposer{raw: previewBundle(t)}
	s, thumbs := newTestService(t, comp)
	ctx := context.Background()

	if _, err := s.Thumbnail(ctx, "brochure-a"); err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if err := s.InvalidateThumbnail(ctx, "brochure-a"); err != nil {
		t.Fatalf("InvalidateThumbnail() error: %v", err)
	}
	if _, ok, _ := thumbs.Get(ctx, "brochure-a"); ok {
		t.Fatal("thumbnail survived invalidation")
	}
	if err := s.InvalidateThumbnail(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
}

func TestBreakerRetryAfterSurfacesHint(t *testing.T) {
	comp := &fakeComposer{err: errors.New("down")}
	s, _ := newTestService(t, comp)

	for i := 0; i < breaker.DefaultFailureThreshold; i++ {
		_, _ = s.GeneratePreview(context.Background(), "brochure-a", "A4", nil)
	}
	if got := s.Breaker().RetryAfter(); got <= 0 || got > 30*time.Second {
		t.Fatalf("RetryAfter() = %v, want within (0, 30s]", got)
	}
}
