package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"joblens/pkg/models"
	"joblens/pkg/utils"
)

const maxDescriptionLen = 2000

// jobResult mirrors one item of a google_jobs results array.
type jobResult struct {
	Title              string `json:"title"`
	CompanyName        string `json:"company_name"`
	Location           string `json:"location"`
	Description        string `json:"description"`
	JobID              string `json:"job_id"`
	DetectedExtensions struct {
		PostedAt     string `json:"posted_at"`
		ScheduleType string `json:"schedule_type"`
		WorkFromHome bool   `json:"work_from_home"`
	} `json:"detected_extensions"`
	RelatedLinks []struct {
		Link string `json:"link"`
		Text string `json:"text"`
	} `json:"related_links"`
	JobApplyLink string `json:"job_apply_link"`
}

func (p *Parser) parseJSON(payload *models.RawPayload) ([]models.IntermediateRecord, error) {
	var items []jobResult
	if err := json.Unmarshal(payload.Body, &items); err != nil {
		return nil, fmt.Errorf("%w: not a results array: %v", utils.ErrParseUnrecognized, err)
	}

	var records []models.IntermediateRecord
	for _, item := range items {
		title := utils.CleanText(item.Title)
		if title == "" {
			continue
		}

		desc := item.Description
		if len(desc) > maxDescriptionLen {
			desc = desc[:maxDescriptionLen]
		}

		sourceURL := ""
		for _, link := range item.RelatedLinks {
			if strings.HasPrefix(link.Link, "http") {
				sourceURL = link.Link
				break
			}
		}
		if sourceURL == "" {
			sourceURL = item.JobApplyLink
		}

		records = append(records, models.IntermediateRecord{
			Title:         title,
			CompanyName:   utils.CleanText(item.CompanyName),
			Location:      utils.CleanText(item.Location),
			Description:   utils.CleanText(desc),
			DatePostedRaw: item.DetectedExtensions.PostedAt,
			EmploymentRaw: item.DetectedExtensions.ScheduleType,
			RemoteHint:    item.DetectedExtensions.WorkFromHome,
			SourceURL:     sourceURL,
			Query:         payload.Query,
		})
	}

	return records, nil
}
