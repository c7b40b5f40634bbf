package searchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"joblens/internal/config"
	"joblens/internal/logging"
	"joblens/internal/logging/types"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// SearchAPIBackend fetches structured job results from a hosted search
// API using the google_jobs engine. Pagination uses the cursor token the
// API hands back with each page.
type SearchAPIBackend struct {
	cfg    *config.Config
	client *http.Client
	logger types.Logger

	mu     sync.Mutex
	tokens map[string]string // query key -> next page token
}

type searchResponse struct {
	Error             string            `json:"error"`
	JobsResults       []json.RawMessage `json:"jobs_results"`
	SerpapiPagination struct {
		NextPageToken string `json:"next_page_token"`
	} `json:"serpapi_pagination"`
}

// NewSearchAPIBackend creates the backend with the configured timeout.
func NewSearchAPIBackend(cfg *config.Config) *SearchAPIBackend {
	timeout := cfg.SearchAPI.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SearchAPIBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logging.GetGlobalLogger(),
		tokens: make(map[string]string),
	}
}

func (s *SearchAPIBackend) Name() string { return "searchapi" }

// FetchPage requests one page of structured results. The payload body is
// the raw jobs_results JSON array.
func (s *SearchAPIBackend) FetchPage(ctx context.Context, q models.Query, page int) (*models.RawPayload, bool, error) {
	if s.cfg.SearchAPI.APIKey == "" {
		return nil, false, utils.NewAuthError(s.Name(), "search API key not configured", nil)
	}
	if q.Role == "" {
		return nil, false, utils.NewFatalError(s.Name(), "query has no role", nil)
	}

	reqURL := s.buildRequestURL(q, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, utils.NewFatalError(s.Name(), "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, false, utils.NewTransientError(s.Name(), "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, utils.NewTransientError(s.Name(), "failed to read response body", err)
	}

	if err := s.checkStatus(resp.StatusCode, body); err != nil {
		return nil, false, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, utils.NewTransientError(s.Name(), "malformed response body", err)
	}

	if parsed.Error != "" {
		// The API reports an empty result set as an error string.
		if strings.Contains(strings.ToLower(parsed.Error), "hasn't returned any results") {
			return nil, true, nil
		}
		return nil, false, s.classifyAPIError(parsed.Error)
	}

	s.storeToken(q, parsed.SerpapiPagination.NextPageToken)

	// An empty batch means the result set ran out.
	if len(parsed.JobsResults) == 0 {
		return nil, true, nil
	}

	resultsJSON, err := json.Marshal(parsed.JobsResults)
	if err != nil {
		return nil, false, utils.NewTransientError(s.Name(), "failed to re-encode results", err)
	}

	payload := &models.RawPayload{
		Kind:      models.PayloadJSON,
		Body:      resultsJSON,
		URL:       reqURL,
		Query:     q,
		Backend:   s.Name(),
		Page:      page,
		FetchedAt: time.Now().UTC(),
	}

	exhausted := parsed.SerpapiPagination.NextPageToken == ""
	return payload, exhausted, nil
}

func (s *SearchAPIBackend) buildRequestURL(q models.Query, page int) string {
	base := s.cfg.SearchAPI.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", q.Role)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	params.Set("api_key", s.cfg.SearchAPI.APIKey)
	if n := s.cfg.SearchAPI.ResultsPerPage; n > 0 {
		params.Set("num", strconv.Itoa(n))
	}

	if page > 0 {
		if token := s.loadToken(q); token != "" {
			params.Set("next_page_token", token)
		} else {
			params.Set("start", strconv.Itoa(page*10))
		}
	}

	return base + "?" + params.Encode()
}

func (s *SearchAPIBackend) checkStatus(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return utils.NewAuthError(s.Name(), fmt.Sprintf("HTTP %d from search API", status), nil)
	case status == http.StatusTooManyRequests:
		return utils.NewQuotaExceededError(s.Name(), "HTTP 429 from search API", nil)
	case status >= 500:
		return utils.NewTransientError(s.Name(), fmt.Sprintf("HTTP %d from search API", status), nil)
	default:
		return utils.NewFatalError(s.Name(), fmt.Sprintf("HTTP %d: %s", status, utils.CleanText(string(body))), nil)
	}
}

func (s *SearchAPIBackend) classifyAPIError(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "run out of searches") || strings.Contains(lower, "quota"):
		return utils.NewQuotaExceededError(s.Name(), msg, nil)
	case strings.Contains(lower, "invalid api key") || strings.Contains(lower, "unauthorized"):
		return utils.NewAuthError(s.Name(), msg, nil)
	default:
		return utils.NewFatalError(s.Name(), msg, nil)
	}
}

func (s *SearchAPIBackend) storeToken(q models.Query, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		delete(s.tokens, q.Key())
		return
	}
	s.tokens[q.Key()] = token
}

func (s *SearchAPIBackend) loadToken(q models.Query) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[q.Key()]
}

// IsHealthy reports whether the backend has credentials configured.
func (s *SearchAPIBackend) IsHealthy() bool {
	return s.cfg.SearchAPI.APIKey != ""
}

// Cleanup releases idle connections.
func (s *SearchAPIBackend) Cleanup() error {
	s.client.CloseIdleConnections()
	return nil
}
