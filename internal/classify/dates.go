package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeDateRe = regexp.MustCompile(`(\d+)\s*(second|minute|hour|day|week|month|year)s?\s*ago`)

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
}

// ParsePostingDate resolves an absolute or relative date string against
// the reference time. Unparseable input yields nil rather than an error:
// a missing date is a normal state for a posting.
func ParsePostingDate(raw string, ref time.Time) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	lower := strings.ToLower(raw)

	// Layouts match against the text as received: RFC3339 needs its
	// T/Z markers upper-case. Month names only parse capitalized, so
	// retry with each word title-cased.
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
		if t, err := time.Parse(layout, capitalizeWords(lower)); err == nil {
			t = t.UTC()
			return &t
		}
	}

	if m := relativeDateRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		var d time.Duration
		switch m[2] {
		case "second":
			d = time.Duration(n) * time.Second
		case "minute":
			d = time.Duration(n) * time.Minute
		case "hour":
			d = time.Duration(n) * time.Hour
		case "day":
			d = time.Duration(n) * 24 * time.Hour
		case "week":
			d = time.Duration(n) * 7 * 24 * time.Hour
		case "month":
			d = time.Duration(n) * 30 * 24 * time.Hour
		case "year":
			d = time.Duration(n) * 365 * 24 * time.Hour
		}
		t := ref.Add(-d)
		return &t
	}

	switch {
	case strings.Contains(lower, "today"), strings.Contains(lower, "just now"):
		t := ref
		return &t
	case strings.Contains(lower, "yesterday"):
		t := ref.Add(-24 * time.Hour)
		return &t
	}

	return nil
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
