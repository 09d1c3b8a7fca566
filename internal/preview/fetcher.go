// Package preview extracts page metadata (title, description, image, site
// name) for links through a public content-fetch proxy.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/utils"
)

const (
	// DefaultProxyURL is the allorigins "get" endpoint. It answers with a JSON
	// object whose "contents" field holds the raw page.
	DefaultProxyURL = "https://api.allorigins.win/get"

	// maxResponseBytes caps how much of a proxy response is read.
	maxResponseBytes = 5 << 20
)

// Preview is the metadata extracted from a page.
type Preview struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// IsEmpty reports whether nothing useful was extracted.
func (p Preview) IsEmpty() bool {
	return p.Title == "" && p.Description == "" && p.Image == "" && p.SiteName == ""
}

// proxyResponse is the subset of the proxy answer we use.
type proxyResponse struct {
	Contents string `json:"contents"`
}

// Fetcher retrieves previews. It never returns an error: every failure is
// logged at debug level and reported as "no preview".
type Fetcher struct {
	client   *http.Client
	proxyURL string
	logger   logger.Logger
}

// NewFetcher creates a fetcher. A nil client means http.DefaultClient and an
// empty proxyURL means DefaultProxyURL.
func NewFetcher(proxyURL string, client *http.Client, log logger.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if proxyURL == "" {
		proxyURL = DefaultProxyURL
	}
	return &Fetcher{
		client:   client,
		proxyURL: proxyURL,
		logger:   log,
	}
}

// Fetch issues one request through the proxy for target, which must be an
// absolute http(s) URL. No retry is attempted.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Preview, bool) {
	if !domain.IsFetchableURL(target) {
		f.logger.Debug("preview skipped, url not fetchable", logger.String("url", target))
		return nil, false
	}

	contents, err := f.fetchContents(ctx, target)
	if err != nil {
		f.logger.Debug("preview fetch failed",
			logger.String("url", target),
			logger.Error(err))
		return nil, false
	}
	if strings.TrimSpace(contents) == "" {
		f.logger.Debug("preview proxy returned no contents", logger.String("url", target))
		return nil, false
	}

	p := Parse(contents, target)
	if p.IsEmpty() {
		return nil, false
	}
	return &p, true
}

func (f *Fetcher) fetchContents(ctx context.Context, target string) (string, error) {
	endpoint, err := url.Parse(f.proxyURL)
	if err != nil {
		return "", fmt.Errorf("invalid proxy url: %w", err)
	}
	q := endpoint.Query()
	q.Set("url", target)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach proxy: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("proxy answered %d", resp.StatusCode)
	}

	var body proxyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode proxy response: %w", err)
	}
	return body.Contents, nil
}
