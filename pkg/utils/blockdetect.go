package utils

import (
	"regexp"
	"strings"
)

// Content signatures that indicate the remote site served an interstitial
// challenge or a throttling page instead of search results.
var (
	captchaSignatures = []string{
		"verify you are human",
		"are you a robot",
		"unusual activity",
		"security verification",
		"g-recaptcha",
		"h-captcha",
		"cf-challenge",
		"challenge-platform",
		"press & hold",
	}

	rateLimitSignatures = []string{
		"too many requests",
		"rate limit exceeded",
		"retry after",
		"temporarily blocked",
		"http 429",
	}

	recaptchaSiteKeyRe = regexp.MustCompile(`data-sitekey=["']([0-9A-Za-z_-]{20,})["']`)
)

// IsCaptchaPage reports whether the HTML body looks like a captcha or bot
// challenge page rather than a results page.
func IsCaptchaPage(html string) bool {
	lower := strings.ToLower(html)
	for _, sig := range captchaSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// IsRateLimitPage reports whether the HTML body looks like a throttling
// response. Callers should treat these as transient and back off.
func IsRateLimitPage(html string) bool {
	lower := strings.ToLower(html)
	for _, sig := range rateLimitSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// ExtractRecaptchaSiteKey pulls the reCAPTCHA site key out of a challenge
// page, returning an empty string when none is present.
func ExtractRecaptchaSiteKey(html string) string {
	m := recaptchaSiteKeyRe.FindStringSubmatch(html)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
