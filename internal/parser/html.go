package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"joblens/pkg/models"
	"joblens/pkg/utils"
)

// Card selectors for the public job search listing, most specific first.
// The markup shifts over time so several generations are tried.
var cardSelectors = []string{
	"li.jobs-search__results-list > .job-search-card",
	"ul.jobs-search__results-list li",
	".base-card",
	"li[data-occludable-job-id]",
	".job-search-card",
}

func (p *Parser) parseHTML(payload *models.RawPayload) ([]models.IntermediateRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrParseUnrecognized, err)
	}

	var cards *goquery.Selection
	for _, selector := range cardSelectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			cards = sel
			break
		}
	}

	if cards == nil {
		// No card markup; try JSON-LD structured data before giving up.
		if records := p.parseJSONLD(doc, payload.Query); records != nil {
			return records, nil
		}
		if looksLikeResultsPage(doc) {
			// A genuine results page with zero cards is an empty page,
			// not a parse failure.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: no job cards or structured data found", utils.ErrParseUnrecognized)
	}

	var records []models.IntermediateRecord
	cards.Each(func(_ int, card *goquery.Selection) {
		rec, ok := p.parseCard(card, payload.Query)
		if ok {
			records = append(records, rec)
		}
	})

	return records, nil
}

// parseCard extracts one job card. A card without a title is dropped;
// every other field is optional.
func (p *Parser) parseCard(card *goquery.Selection, q models.Query) (models.IntermediateRecord, bool) {
	title := firstText(card,
		"h3.base-search-card__title",
		".job-search-card__title",
		"h3",
		"[class*='title']",
	)
	if title == "" {
		return models.IntermediateRecord{}, false
	}

	company := firstText(card,
		"h4.base-search-card__subtitle",
		".job-search-card__company-name",
		"h4",
	)

	location := firstText(card,
		".job-search-card__location",
		"span.job-result-card__location",
		"[class*='location']",
	)

	dateRaw := ""
	if timeTag := card.Find("time").First(); timeTag.Length() > 0 {
		if dt, ok := timeTag.Attr("datetime"); ok && dt != "" {
			dateRaw = dt
		} else {
			dateRaw = utils.CleanText(timeTag.Text())
		}
	} else {
		dateRaw = firstText(card, "[class*='date']", "[class*='time']")
	}

	sourceURL := ""
	link := card.Find("a[href*='/jobs/view/']").First()
	if link.Length() == 0 {
		link = card.Find("a[href]").First()
	}
	if href, ok := link.Attr("href"); ok && href != "" {
		if strings.HasPrefix(href, "http") {
			sourceURL = href
		} else {
			sourceURL = "https://www.linkedin.com" + href
		}
	}

	return models.IntermediateRecord{
		Title:         title,
		CompanyName:   company,
		Location:      location,
		DatePostedRaw: dateRaw,
		SourceURL:     sourceURL,
		Query:         q,
	}, true
}

// jsonLDPosting mirrors the schema.org JobPosting shape. jobLocation and
// hiringOrganization vary between object and array forms, so they decode
// into RawMessage and get resolved leniently.
type jsonLDPosting struct {
	Type               string          `json:"@type"`
	Title              string          `json:"title"`
	DatePosted         string          `json:"datePosted"`
	EmploymentType     string          `json:"employmentType"`
	Description        string          `json:"description"`
	JobLocationType    string          `json:"jobLocationType"`
	HiringOrganization json.RawMessage `json:"hiringOrganization"`
	JobLocation        json.RawMessage `json:"jobLocation"`
	URL                string          `json:"url"`
}

func (p *Parser) parseJSONLD(doc *goquery.Document, q models.Query) []models.IntermediateRecord {
	var records []models.IntermediateRecord

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		raw := strings.TrimSpace(script.Text())
		if raw == "" {
			return
		}

		var postings []jsonLDPosting
		var single jsonLDPosting
		if err := json.Unmarshal([]byte(raw), &postings); err != nil {
			if err := json.Unmarshal([]byte(raw), &single); err != nil {
				return
			}
			postings = []jsonLDPosting{single}
		}

		for _, posting := range postings {
			if posting.Type != "JobPosting" || posting.Title == "" {
				continue
			}
			records = append(records, models.IntermediateRecord{
				Title:         utils.CleanText(posting.Title),
				CompanyName:   organizationName(posting.HiringOrganization),
				Location:      jsonLDLocation(posting.JobLocation),
				Description:   utils.CleanText(posting.Description),
				DatePostedRaw: posting.DatePosted,
				EmploymentRaw: posting.EmploymentType,
				RemoteHint:    strings.EqualFold(posting.JobLocationType, "TELECOMMUTE"),
				SourceURL:     posting.URL,
				Query:         q,
			})
		}
	})

	return records
}

func organizationName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var org struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &org); err == nil && org.Name != "" {
		return utils.CleanText(org.Name)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return utils.CleanText(name)
	}
	return ""
}

func jsonLDLocation(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var loc struct {
		Address struct {
			StreetAddress   string `json:"streetAddress"`
			AddressLocality string `json:"addressLocality"`
			AddressRegion   string `json:"addressRegion"`
			AddressCountry  string `json:"addressCountry"`
		} `json:"address"`
	}
	if err := json.Unmarshal(raw, &loc); err != nil {
		return ""
	}
	parts := []string{
		loc.Address.StreetAddress,
		loc.Address.AddressLocality,
		loc.Address.AddressRegion,
		loc.Address.AddressCountry,
	}
	var nonEmpty []string
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

func looksLikeResultsPage(doc *goquery.Document) bool {
	if doc.Find(".jobs-search__results-list, .jobs-search-results-list").Length() > 0 {
		return true
	}
	body := strings.ToLower(doc.Find("body").Text())
	return strings.Contains(body, "no matching jobs found")
}

func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		found := sel.Find(selector).First()
		if found.Length() > 0 {
			if text := utils.CleanText(found.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}
