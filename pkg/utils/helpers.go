package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// jobIDNamespace is a fixed namespace so derived job IDs stay stable across
// runs and processes.
var jobIDNamespace = uuid.MustParse("9f2c1af0-5b92-45c1-8f7e-6d1a03c25c11")

var whitespaceRE = regexp.MustCompile(`\s+`)

// DeriveJobID derives a deterministic posting identity from source URL,
// company and title. Identical postings reached through overlapping queries
// collapse to the same ID.
func DeriveJobID(sourceURL, company, title string) string {
	key := strings.ToLower(strings.TrimSpace(sourceURL)) + "|" +
		strings.ToLower(strings.TrimSpace(company)) + "|" +
		strings.ToLower(strings.TrimSpace(title))
	return uuid.NewSHA1(jobIDNamespace, []byte(key)).String()
}

// GenerateRequestID generates a unique ID for tracking a run or request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// CleanText collapses whitespace runs and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// Contains checks if a string slice contains a specific string.
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetStringOrDefault returns the value if not empty, otherwise the default.
func GetStringOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
