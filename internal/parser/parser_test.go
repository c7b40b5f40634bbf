package parser_test

import (
	"errors"
	"testing"

	"joblens/internal/parser"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

var testQuery = models.Query{Role: "Backend Engineer", Location: "United States"}

func htmlPayload(body string) *models.RawPayload {
	return &models.RawPayload{
		Kind:  models.PayloadHTML,
		Body:  []byte(body),
		Query: testQuery,
	}
}

func jsonPayload(body string) *models.RawPayload {
	return &models.RawPayload{
		Kind:  models.PayloadJSON,
		Body:  []byte(body),
		Query: testQuery,
	}
}

const listingHTML = `<html><body>
<ul class="jobs-search__results-list">
  <li>
    <div class="base-card" data-entity-urn="urn:li:jobPosting:1001">
      <h3 class="base-search-card__title"> Senior Backend Engineer </h3>
      <h4 class="base-search-card__subtitle">Acme Corp</h4>
      <span class="job-search-card__location">Austin, TX</span>
      <time datetime="2026-08-01">3 days ago</time>
      <a href="/jobs/view/1001">View</a>
    </div>
  </li>
  <li>
    <div class="base-card">
      <h3 class="base-search-card__title">Frontend Engineer</h3>
      <h4 class="base-search-card__subtitle">Globex</h4>
      <span class="job-search-card__location">Remote, India</span>
      <a href="https://example.com/jobs/2002">View</a>
    </div>
  </li>
  <li>
    <div class="base-card">
      <h4 class="base-search-card__subtitle">No Title Inc</h4>
    </div>
  </li>
</ul>
</body></html>`

// ── HTML cards ─────────────────────────────────────────────────────────────

func TestParseHTML_Cards(t *testing.T) {
	records, err := parser.New().Parse(htmlPayload(listingHTML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2 (titleless card dropped)", len(records))
	}

	first := records[0]
	if first.Title != "Senior Backend Engineer" {
		t.Errorf("Title = %q (whitespace must be collapsed)", first.Title)
	}
	if first.CompanyName != "Acme Corp" {
		t.Errorf("CompanyName = %q", first.CompanyName)
	}
	if first.Location != "Austin, TX" {
		t.Errorf("Location = %q", first.Location)
	}
	if first.DatePostedRaw != "2026-08-01" {
		t.Errorf("DatePostedRaw = %q, want the datetime attribute", first.DatePostedRaw)
	}
	if first.SourceURL != "https://www.linkedin.com/jobs/view/1001" {
		t.Errorf("SourceURL = %q, want relative link made absolute", first.SourceURL)
	}
	if first.Query != testQuery {
		t.Errorf("Query = %+v, want provenance carried through", first.Query)
	}

	if records[1].SourceURL != "https://example.com/jobs/2002" {
		t.Errorf("SourceURL = %q, absolute link must pass through", records[1].SourceURL)
	}
}

func TestParseHTML_MissingFieldsAreEmpty(t *testing.T) {
	html := `<div class="base-card"><h3 class="base-search-card__title">Lone Title</h3></div>`
	records, err := parser.New().Parse(htmlPayload(html))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.CompanyName != "" || rec.Location != "" || rec.SourceURL != "" {
		t.Errorf("missing fields must stay empty: %+v", rec)
	}
}

// ── JSON-LD fallback ───────────────────────────────────────────────────────

func TestParseHTML_JSONLDFallback(t *testing.T) {
	html := `<html><body>
<script type="application/ld+json">
{
  "@type": "JobPosting",
  "title": "Platform Engineer",
  "datePosted": "2026-07-15",
  "employmentType": "FULL_TIME",
  "jobLocationType": "TELECOMMUTE",
  "hiringOrganization": {"name": "Initech"},
  "jobLocation": {"address": {"addressLocality": "Denver", "addressCountry": "US"}},
  "url": "https://example.com/jobs/3003"
}
</script>
</body></html>`

	records, err := parser.New().Parse(htmlPayload(html))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.Title != "Platform Engineer" || rec.CompanyName != "Initech" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Location != "Denver, US" {
		t.Errorf("Location = %q, want joined address parts", rec.Location)
	}
	if !rec.RemoteHint {
		t.Error("RemoteHint = false, want true for TELECOMMUTE")
	}
	if rec.EmploymentRaw != "FULL_TIME" {
		t.Errorf("EmploymentRaw = %q", rec.EmploymentRaw)
	}
}

// ── Unrecognized and empty payloads ────────────────────────────────────────

func TestParseHTML_UnrecognizedStructure(t *testing.T) {
	_, err := parser.New().Parse(htmlPayload("<html><body><p>Totally unrelated page</p></body></html>"))
	if !errors.Is(err, utils.ErrParseUnrecognized) {
		t.Errorf("err = %v, want ErrParseUnrecognized", err)
	}
}

func TestParseHTML_EmptyResultsPage(t *testing.T) {
	html := `<html><body><ul class="jobs-search__results-list"></ul><p>No matching jobs found.</p></body></html>`
	records, err := parser.New().Parse(htmlPayload(html))
	if err != nil {
		t.Errorf("empty results page must not be a parse error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestParse_EmptyPayload(t *testing.T) {
	_, err := parser.New().Parse(&models.RawPayload{Kind: models.PayloadHTML})
	if !errors.Is(err, utils.ErrParseUnrecognized) {
		t.Errorf("err = %v, want ErrParseUnrecognized", err)
	}
}

// ── JSON results ───────────────────────────────────────────────────────────

func TestParseJSON_Items(t *testing.T) {
	body := `[
  {
    "title": "ML Engineer",
    "company_name": "Acme Corp",
    "location": "Seattle, WA",
    "description": "Build model serving and training pipelines with PyTorch",
    "job_id": "abc123",
    "detected_extensions": {
      "posted_at": "2 days ago",
      "schedule_type": "Full-time",
      "work_from_home": true
    },
    "related_links": [{"link": "https://example.com/jobs/9", "text": "Apply"}]
  },
  {
    "title": "",
    "company_name": "Ghost Inc"
  }
]`

	records, err := parser.New().Parse(jsonPayload(body))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1 (titleless item dropped)", len(records))
	}

	rec := records[0]
	if rec.Title != "ML Engineer" || rec.CompanyName != "Acme Corp" {
		t.Errorf("record = %+v", rec)
	}
	if rec.DatePostedRaw != "2 days ago" {
		t.Errorf("DatePostedRaw = %q", rec.DatePostedRaw)
	}
	if rec.EmploymentRaw != "Full-time" {
		t.Errorf("EmploymentRaw = %q", rec.EmploymentRaw)
	}
	if !rec.RemoteHint {
		t.Error("RemoteHint = false, want true for work_from_home")
	}
	if rec.SourceURL != "https://example.com/jobs/9" {
		t.Errorf("SourceURL = %q", rec.SourceURL)
	}
}

func TestParseJSON_NotAnArray(t *testing.T) {
	_, err := parser.New().Parse(jsonPayload(`{"error": "nope"}`))
	if !errors.Is(err, utils.ErrParseUnrecognized) {
		t.Errorf("err = %v, want ErrParseUnrecognized", err)
	}
}
