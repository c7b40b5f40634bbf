package utils

import (
	"fmt"
	"net/url"
	"strings"
)

const jobSearchBaseURL = "https://www.linkedin.com/jobs/search/"

// BuildJobSearchURL builds a public job search URL for the given role and
// location. The start parameter is a zero-based result offset used for
// pagination.
func BuildJobSearchURL(role, location string, start int) string {
	params := url.Values{}
	params.Set("keywords", role)
	if location != "" {
		params.Set("location", location)
	}
	if start > 0 {
		params.Set("start", fmt.Sprintf("%d", start))
	}
	return jobSearchBaseURL + "?" + params.Encode()
}

// HostnameOf extracts the lowercase hostname from a URL, returning an empty
// string when the URL cannot be parsed.
func HostnameOf(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
