package preview

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

// PreviewFetcher is what the enricher needs from a Fetcher.
type PreviewFetcher interface {
	Fetch(ctx context.Context, target string) (*Preview, bool)
}

// Enricher fills the preview metadata of stored links in the background.
// Requests are debounced per link; a result is applied only if the link still
// exists with the same URL and no newer request was scheduled for it.
type Enricher struct {
	fetcher   PreviewFetcher
	links     *store.LinkStore
	debouncer *Debouncer[string]
	logger    logger.Logger
	timeout   time.Duration
}

// NewEnricher creates an enricher. A zero timeout leaves the fetch bounded
// only by the HTTP client.
func NewEnricher(fetcher PreviewFetcher, links *store.LinkStore, delay, timeout time.Duration, log logger.Logger) *Enricher {
	return &Enricher{
		fetcher:   fetcher,
		links:     links,
		debouncer: NewDebouncer[string](delay),
		logger:    log,
		timeout:   timeout,
	}
}

// Schedule requests a preview for the link's current URL.
func (e *Enricher) Schedule(linkID, url string) {
	e.debouncer.Trigger(linkID, func(stillCurrent func() bool) {
		ctx := context.Background()
		if e.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}

		p, ok := e.fetcher.Fetch(ctx, url)
		if !ok {
			return
		}
		if !stillCurrent() {
			e.logger.Debug("discarding stale preview", logger.String("link_id", linkID))
			return
		}
		e.apply(linkID, url, p)
	})
}

// Forget drops any pending request for a link (e.g. after deletion).
func (e *Enricher) Forget(linkID string) {
	e.debouncer.Cancel(linkID)
}

// Stop cancels every pending request and waits for fetches in flight, so
// their results reach the link store before it is flushed.
func (e *Enricher) Stop() {
	e.debouncer.Stop()
}

func (e *Enricher) apply(linkID, url string, p *Preview) {
	current, ok := e.links.Link(linkID)
	if !ok || current.URL != url {
		e.logger.Debug("link changed before preview arrived, discarding",
			logger.String("link_id", linkID))
		return
	}

	patch := domain.LinkPatch{}
	if p.Image != "" {
		patch.Thumbnail = &p.Image
	}
	if p.Description != "" {
		patch.Description = &p.Description
	}
	if p.SiteName != "" {
		patch.SiteName = &p.SiteName
	}
	if current.Title == "" && p.Title != "" {
		patch.Title = &p.Title
	}

	e.links.UpdateLink(linkID, patch)
	e.logger.Debug("link preview applied",
		logger.String("link_id", linkID),
		logger.String("url", url))
}
