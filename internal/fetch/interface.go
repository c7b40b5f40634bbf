package fetch

import (
	"context"
	"fmt"

	"joblens/internal/config"
	"joblens/internal/fetch/browser"
	"joblens/internal/fetch/firecrawlfetch"
	"joblens/internal/fetch/searchapi"
	"joblens/pkg/models"
)

// Backend retrieves raw search result pages for a query. Implementations
// must classify failures with the utils.FetchError taxonomy so the
// controller can decide between retrying, falling back and giving up.
type Backend interface {
	// FetchPage fetches one page of results for the query. The page index
	// is zero-based. The boolean return reports exhaustion: true means no
	// further pages exist for this query.
	FetchPage(ctx context.Context, query models.Query, page int) (*models.RawPayload, bool, error)

	// Name returns the backend identifier used in configs and outcomes.
	Name() string

	// IsHealthy reports whether the backend is ready to serve requests.
	IsHealthy() bool

	// Cleanup releases any resources held by the backend.
	Cleanup() error
}

// NewBackend creates a fetch backend by engine name.
func NewBackend(engine string, cfg *config.Config) (Backend, error) {
	switch engine {
	case "browser":
		return browser.NewBrowserBackend(cfg), nil
	case "searchapi":
		return searchapi.NewSearchAPIBackend(cfg), nil
	case "firecrawl":
		return firecrawlfetch.NewFirecrawlBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown fetch backend: %s", engine)
	}
}
