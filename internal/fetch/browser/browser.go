package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"joblens/internal/config"
	"joblens/internal/fetch/captcha"
	"joblens/internal/logging"
	"joblens/internal/logging/types"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

const resultsPerPage = 25

// BrowserBackend fetches search result pages by driving a headless
// Chrome instance through rod with stealth patches applied.
type BrowserBackend struct {
	cfg      *config.Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	solver   captcha.Solver
	logger   types.Logger
	mu       sync.Mutex
}

// NewBrowserBackend creates the backend. The browser process is launched
// lazily on the first fetch.
func NewBrowserBackend(cfg *config.Config) *BrowserBackend {
	logger := logging.GetGlobalLogger()

	l := launcher.New().
		Headless(cfg.Browser.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if chromePath := systemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
		logger.Info("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	}

	if cfg.Browser.UserAgent != "" {
		l = l.Set("user-agent", cfg.Browser.UserAgent)
	}

	return &BrowserBackend{
		cfg:      cfg,
		launcher: l,
		solver:   captcha.NewTwoCaptchaSolver(cfg),
		logger:   logger,
	}
}

func (b *BrowserBackend) Name() string { return "browser" }

// FetchPage navigates to the search results page for the query and
// returns its rendered HTML. An empty results page reports exhaustion.
func (b *BrowserBackend) FetchPage(ctx context.Context, q models.Query, page int) (*models.RawPayload, bool, error) {
	if q.Role == "" {
		return nil, false, utils.NewFatalError(b.Name(), "query has no role", nil)
	}

	url := utils.BuildJobSearchURL(q.Role, q.Location, page*resultsPerPage)

	html, err := b.renderPage(ctx, url)
	if err != nil {
		return nil, false, utils.NewTransientError(b.Name(), "page render failed", err)
	}

	if utils.IsRateLimitPage(html) {
		return nil, false, utils.NewTransientError(b.Name(), "rate limited by upstream", nil)
	}

	if utils.IsCaptchaPage(html) {
		solved, solvedHTML := b.trySolveChallenge(ctx, url, html)
		if !solved {
			return nil, false, utils.NewBlockedError(b.Name(), "captcha challenge served", nil)
		}
		html = solvedHTML
	}

	payload := &models.RawPayload{
		Kind:      models.PayloadHTML,
		Body:      []byte(html),
		URL:       url,
		Query:     q,
		Backend:   b.Name(),
		Page:      page,
		FetchedAt: time.Now().UTC(),
	}

	exhausted := !strings.Contains(html, "base-card") ||
		strings.Contains(strings.ToLower(html), "no matching jobs found")

	return payload, exhausted, nil
}

// renderPage loads the URL in a stealth page, simulates scroll activity
// so lazily loaded cards render, and returns the final HTML.
func (b *BrowserBackend) renderPage(ctx context.Context, url string) (string, error) {
	page, err := b.newStealthPage(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := rod.Try(func() { page.MustClose() }); closeErr != nil {
			b.logger.Debug("Failed to close page", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	timeout := b.cfg.Fetch.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := rod.Try(func() {
		page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	}); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	b.simulateScrolling(navCtx, page)

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

func (b *BrowserBackend) simulateScrolling(ctx context.Context, page *rod.Page) {
	err := rod.Try(func() {
		for i := 0; i < 3; i++ {
			page.Context(ctx).MustEval(`() => window.scrollBy(0, window.innerHeight)`)
			time.Sleep(300 * time.Millisecond)
		}
	})
	if err != nil {
		b.logger.Debug("Scroll simulation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// trySolveChallenge attempts an automatic captcha solve and reloads the
// page on success. Returns the refreshed HTML when the challenge cleared.
func (b *BrowserBackend) trySolveChallenge(ctx context.Context, url, html string) (bool, string) {
	if !b.cfg.Browser.Captcha.EnableAutoSolve || !b.solver.IsHealthy() {
		return false, ""
	}

	siteKey := utils.ExtractRecaptchaSiteKey(html)
	if siteKey == "" {
		return false, ""
	}

	if _, err := b.solver.SolveRecaptcha(ctx, siteKey, url); err != nil {
		b.logger.Warn("Captcha solve failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return false, ""
	}

	refreshed, err := b.renderPage(ctx, url)
	if err != nil || utils.IsCaptchaPage(refreshed) {
		return false, ""
	}
	return true, refreshed
}

func (b *BrowserBackend) newStealthPage(ctx context.Context) (*rod.Page, error) {
	browser, err := b.getBrowser()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		b.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if b.cfg.Browser.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: b.cfg.Browser.UserAgent,
		}); err != nil {
			b.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return page, nil
}

func (b *BrowserBackend) getBrowser() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	url, err := b.launcher.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	b.logger.Info("Browser instance launched", map[string]interface{}{})
	b.browser = browser
	return browser, nil
}

// IsHealthy reports whether the browser connection is usable.
func (b *BrowserBackend) IsHealthy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return true // not launched yet
	}
	return rod.Try(func() { b.browser.MustVersion() }) == nil
}

// Cleanup closes the browser process if one was launched.
func (b *BrowserBackend) Cleanup() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		if err := rod.Try(func() { b.browser.MustClose() }); err != nil {
			return err
		}
		b.browser = nil
	}
	b.launcher.Cleanup()
	return nil
}

func systemChromePath() string {
	candidates := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
