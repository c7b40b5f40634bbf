package utils_test

import (
	"errors"
	"fmt"
	"testing"

	"joblens/pkg/utils"
)

// ── Job identity ───────────────────────────────────────────────────────────

func TestDeriveJobIDDeterministic(t *testing.T) {
	a := utils.DeriveJobID("https://example.com/jobs/1", "Acme", "Backend Engineer")
	b := utils.DeriveJobID("https://example.com/jobs/1", "Acme", "Backend Engineer")
	if a != b {
		t.Errorf("same inputs produced different IDs: %s vs %s", a, b)
	}
}

func TestDeriveJobIDNormalizesCaseAndSpace(t *testing.T) {
	a := utils.DeriveJobID("https://example.com/jobs/1", "Acme", "Backend Engineer")
	b := utils.DeriveJobID("  https://EXAMPLE.com/jobs/1 ", "ACME", "backend engineer")
	if a != b {
		t.Errorf("case and surrounding whitespace must not change the ID: %s vs %s", a, b)
	}
}

func TestDeriveJobIDDistinguishesInputs(t *testing.T) {
	a := utils.DeriveJobID("https://example.com/jobs/1", "Acme", "Backend Engineer")
	b := utils.DeriveJobID("https://example.com/jobs/2", "Acme", "Backend Engineer")
	if a == b {
		t.Error("different source URLs must produce different IDs")
	}
}

// ── Failure taxonomy ───────────────────────────────────────────────────────

func TestFailureKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want utils.FailureKind
	}{
		{"transient", utils.NewTransientError("browser", "timeout", nil), utils.KindTransient},
		{"blocked", utils.NewBlockedError("browser", "captcha", nil), utils.KindBlocked},
		{"quota", utils.NewQuotaExceededError("searchapi", "out of searches", nil), utils.KindQuotaExceeded},
		{"auth", utils.NewAuthError("searchapi", "bad key", nil), utils.KindAuth},
		{"fatal", utils.NewFatalError("browser", "empty role", nil), utils.KindFatal},
		{"wrapped", fmt.Errorf("page 2: %w", utils.NewAuthError("searchapi", "bad key", nil)), utils.KindAuth},
		{"unclassified", errors.New("boom"), utils.KindTransient},
	}
	for _, tc := range cases {
		if got := utils.FailureKindOf(tc.err); got != tc.want {
			t.Errorf("%s: FailureKindOf = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !utils.IsRetryable(utils.NewTransientError("browser", "timeout", nil)) {
		t.Error("transient must be retryable")
	}
	if utils.IsRetryable(utils.NewBlockedError("browser", "captcha", nil)) {
		t.Error("blocked must not be retryable")
	}
	if utils.IsRetryable(utils.NewFatalError("browser", "empty role", nil)) {
		t.Error("fatal must not be retryable")
	}
}

func TestIsBackendRefusal(t *testing.T) {
	refusals := []error{
		utils.NewBlockedError("browser", "captcha", nil),
		utils.NewQuotaExceededError("searchapi", "out of searches", nil),
		utils.NewAuthError("searchapi", "bad key", nil),
	}
	for _, err := range refusals {
		if !utils.IsBackendRefusal(err) {
			t.Errorf("%v must be a backend refusal", err)
		}
	}
	if utils.IsBackendRefusal(utils.NewTransientError("browser", "timeout", nil)) {
		t.Error("transient is not a refusal")
	}
	if utils.IsBackendRefusal(utils.NewFatalError("browser", "empty role", nil)) {
		t.Error("fatal is not a refusal")
	}
}

// ── Search URLs ────────────────────────────────────────────────────────────

func TestBuildJobSearchURL(t *testing.T) {
	url := utils.BuildJobSearchURL("Backend Engineer", "United States", 25)
	if url != "https://www.linkedin.com/jobs/search/?keywords=Backend+Engineer&location=United+States&start=25" {
		t.Errorf("url = %q", url)
	}
}

func TestBuildJobSearchURLFirstPageOmitsStart(t *testing.T) {
	url := utils.BuildJobSearchURL("ML Engineer", "India", 0)
	if url != "https://www.linkedin.com/jobs/search/?keywords=ML+Engineer&location=India" {
		t.Errorf("url = %q", url)
	}
}

// ── Block detection ────────────────────────────────────────────────────────

func TestIsCaptchaPage(t *testing.T) {
	if !utils.IsCaptchaPage(`<html><div class="g-recaptcha" data-sitekey="x"></div></html>`) {
		t.Error("recaptcha widget must be detected")
	}
	if !utils.IsCaptchaPage("Please verify you are human to continue") {
		t.Error("challenge copy must be detected")
	}
	if utils.IsCaptchaPage("<html><body>Backend Engineer jobs</body></html>") {
		t.Error("ordinary listing must not be detected")
	}
}

func TestIsRateLimitPage(t *testing.T) {
	if !utils.IsRateLimitPage("HTTP 429: too many requests") {
		t.Error("rate limit copy must be detected")
	}
	if utils.IsRateLimitPage("<html><body>Backend Engineer jobs</body></html>") {
		t.Error("ordinary listing must not be detected")
	}
}

func TestExtractRecaptchaSiteKey(t *testing.T) {
	html := `<div class="g-recaptcha" data-sitekey="6LeIxAcTAAAAAJcZVRqyHh71UMIEGNQ_MXjiZKhI"></div>`
	if got := utils.ExtractRecaptchaSiteKey(html); got != "6LeIxAcTAAAAAJcZVRqyHh71UMIEGNQ_MXjiZKhI" {
		t.Errorf("site key = %q", got)
	}
	if got := utils.ExtractRecaptchaSiteKey("<html></html>"); got != "" {
		t.Errorf("site key = %q, want empty", got)
	}
}

// ── Text helpers ───────────────────────────────────────────────────────────

func TestCleanText(t *testing.T) {
	if got := utils.CleanText("  Senior \n\t Backend   Engineer "); got != "Senior Backend Engineer" {
		t.Errorf("CleanText = %q", got)
	}
	if got := utils.CleanText(""); got != "" {
		t.Errorf("CleanText(\"\") = %q", got)
	}
}
