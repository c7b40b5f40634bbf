package firecrawlfetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mendableai/firecrawl-go"

	"joblens/internal/config"
	"joblens/internal/logging"
	"joblens/internal/logging/types"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

const resultsPerPage = 25

// FirecrawlBackend renders search result pages remotely through the
// Firecrawl API instead of a local browser.
type FirecrawlBackend struct {
	cfg    *config.Config
	app    *firecrawl.FirecrawlApp
	logger types.Logger
}

// NewFirecrawlBackend creates the backend from the firecrawl config.
func NewFirecrawlBackend(cfg *config.Config) (*FirecrawlBackend, error) {
	logger := logging.GetGlobalLogger()

	app, err := firecrawl.NewFirecrawlApp(cfg.Firecrawl.APIKey, cfg.Firecrawl.APIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firecrawl: %w", err)
	}

	logger.Info("Firecrawl backend initialized", map[string]interface{}{
		"api_url": cfg.Firecrawl.APIURL,
	})

	return &FirecrawlBackend{
		cfg:    cfg,
		app:    app,
		logger: logger,
	}, nil
}

func (f *FirecrawlBackend) Name() string { return "firecrawl" }

// FetchPage renders the search results page for the query remotely and
// returns its HTML.
func (f *FirecrawlBackend) FetchPage(ctx context.Context, q models.Query, page int) (*models.RawPayload, bool, error) {
	if f.cfg.Firecrawl.APIKey == "" {
		return nil, false, utils.NewAuthError(f.Name(), "firecrawl API key not configured", nil)
	}
	if q.Role == "" {
		return nil, false, utils.NewFatalError(f.Name(), "query has no role", nil)
	}

	url := utils.BuildJobSearchURL(q.Role, q.Location, page*resultsPerPage)

	doc, err := f.app.ScrapeURL(url, &firecrawl.ScrapeParams{
		Formats: []string{"html"},
	})
	if err != nil {
		return nil, false, f.classifyError(err)
	}
	if doc == nil || doc.HTML == "" {
		return nil, false, utils.NewTransientError(f.Name(), "empty document returned", nil)
	}

	html := doc.HTML

	if utils.IsCaptchaPage(html) {
		return nil, false, utils.NewBlockedError(f.Name(), "captcha challenge served", nil)
	}
	if utils.IsRateLimitPage(html) {
		return nil, false, utils.NewTransientError(f.Name(), "rate limited by upstream", nil)
	}

	payload := &models.RawPayload{
		Kind:      models.PayloadHTML,
		Body:      []byte(html),
		URL:       url,
		Query:     q,
		Backend:   f.Name(),
		Page:      page,
		FetchedAt: time.Now().UTC(),
	}

	exhausted := !strings.Contains(html, "base-card") ||
		strings.Contains(strings.ToLower(html), "no matching jobs found")

	return payload, exhausted, nil
}

func (f *FirecrawlBackend) classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "402") || strings.Contains(msg, "insufficient credits") || strings.Contains(msg, "payment required"):
		return utils.NewQuotaExceededError(f.Name(), "firecrawl credits exhausted", err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key"):
		return utils.NewAuthError(f.Name(), "firecrawl rejected credentials", err)
	case strings.Contains(msg, "403") || strings.Contains(msg, "forbidden"):
		return utils.NewBlockedError(f.Name(), "firecrawl request forbidden", err)
	default:
		return utils.NewTransientError(f.Name(), "firecrawl scrape failed", err)
	}
}

// IsHealthy reports whether the backend has credentials configured.
func (f *FirecrawlBackend) IsHealthy() bool {
	return f.cfg.Firecrawl.APIKey != ""
}

// Cleanup is a no-op; the API client holds no persistent resources.
func (f *FirecrawlBackend) Cleanup() error { return nil }
