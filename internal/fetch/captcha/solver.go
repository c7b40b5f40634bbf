package captcha

import (
	"context"
	"fmt"

	api2captcha "github.com/2captcha/2captcha-go"

	"joblens/internal/config"
	"joblens/internal/logging"
	"joblens/internal/logging/types"
)

// Solver resolves interactive challenges encountered during browser
// fetches.
type Solver interface {
	SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error)
	IsHealthy() bool
}

// TwoCaptchaSolver solves challenges through the 2CAPTCHA service.
type TwoCaptchaSolver struct {
	cfg    *config.Config
	client *api2captcha.Client
	logger types.Logger
}

// NewTwoCaptchaSolver creates a solver from the browser captcha config.
func NewTwoCaptchaSolver(cfg *config.Config) *TwoCaptchaSolver {
	logger := logging.GetGlobalLogger()

	if cfg.Browser.Captcha.APIKey == "" {
		logger.Warn("2CAPTCHA API key not configured, challenge solving disabled", map[string]interface{}{})
	}

	client := api2captcha.NewClient(cfg.Browser.Captcha.APIKey)
	client.DefaultTimeout = int(cfg.Browser.Captcha.Timeout.Seconds())
	client.RecaptchaTimeout = int(cfg.Browser.Captcha.Timeout.Seconds())
	client.PollingInterval = 5

	return &TwoCaptchaSolver{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// SolveRecaptcha submits a reCAPTCHA v2 challenge and returns the
// response token.
func (s *TwoCaptchaSolver) SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error) {
	if !s.cfg.Browser.Captcha.EnableAutoSolve {
		return "", fmt.Errorf("captcha auto-solve is disabled")
	}
	if s.cfg.Browser.Captcha.APIKey == "" {
		return "", fmt.Errorf("2CAPTCHA API key not configured")
	}

	s.logger.Info("Solving reCAPTCHA challenge", map[string]interface{}{
		"site_key": siteKey,
		"page_url": pageURL,
	})

	challenge := api2captcha.ReCaptcha{
		SiteKey: siteKey,
		Url:     pageURL,
	}

	code, _, err := s.client.Solve(challenge.ToRequest())
	if err != nil {
		return "", fmt.Errorf("failed to solve reCAPTCHA: %w", err)
	}
	return code, nil
}

// IsHealthy reports whether the solver has credentials to work with.
func (s *TwoCaptchaSolver) IsHealthy() bool {
	return s.cfg.Browser.Captcha.APIKey != ""
}
