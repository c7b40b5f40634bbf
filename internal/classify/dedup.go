package classify

import (
	"strings"

	"joblens/pkg/models"
)

// Deduplicate collapses postings that share a JobID, or failing that a
// normalized title+company pair, into a single record. The survivor is
// the more complete posting (fewer sentinel fields); on a tie the
// first-seen posting survives. Fields the survivor lacks are filled from
// the duplicate, so information from either copy is never lost. Output
// preserves first-seen order. The second return value is the number of
// duplicates removed.
func Deduplicate(postings []models.JobPosting) ([]models.JobPosting, int) {
	byID := make(map[string]int)
	byTitleCompany := make(map[string]int)

	var unique []models.JobPosting
	dupes := 0

	for _, posting := range postings {
		idx, seen := byID[posting.JobID]
		if !seen {
			key := titleCompanyKey(posting)
			idx, seen = byTitleCompany[key]
		}

		if seen {
			unique[idx] = merge(unique[idx], posting)
			dupes++
			continue
		}

		unique = append(unique, posting)
		pos := len(unique) - 1
		byID[posting.JobID] = pos
		byTitleCompany[titleCompanyKey(posting)] = pos
	}

	return unique, dupes
}

func titleCompanyKey(p models.JobPosting) string {
	return strings.ToLower(strings.TrimSpace(p.Title)) + "|" +
		strings.ToLower(strings.TrimSpace(p.CompanyName))
}

// merge picks the more complete of the two postings and backfills its
// sentinel fields from the other. kept arrived first.
func merge(kept, incoming models.JobPosting) models.JobPosting {
	survivor, donor := kept, incoming
	if incoming.UnknownFieldCount() < kept.UnknownFieldCount() {
		survivor, donor = incoming, kept
	}

	if survivor.RoleCategory == models.RoleOther && donor.RoleCategory != models.RoleOther {
		survivor.RoleCategory = donor.RoleCategory
	}
	if survivor.Region == models.RegionOther && donor.Region != models.RegionOther {
		survivor.Region = donor.Region
	}
	if survivor.WorkType == models.WorkNotSpecified && donor.WorkType != models.WorkNotSpecified {
		survivor.WorkType = donor.WorkType
	}
	if survivor.ExperienceLevel == models.ExperienceNotSpecified && donor.ExperienceLevel != models.ExperienceNotSpecified {
		survivor.ExperienceLevel = donor.ExperienceLevel
	}
	if survivor.EmploymentType == models.EmploymentNotSpecified && donor.EmploymentType != models.EmploymentNotSpecified {
		survivor.EmploymentType = donor.EmploymentType
	}
	if len(survivor.Skills) == 0 {
		survivor.Skills = donor.Skills
	}
	if survivor.CompanyName == "" {
		survivor.CompanyName = donor.CompanyName
	}
	if survivor.LocationRaw == "" {
		survivor.LocationRaw = donor.LocationRaw
	}
	if survivor.DatePosted == nil {
		survivor.DatePosted = donor.DatePosted
	}
	if survivor.SourceURL == "" {
		survivor.SourceURL = donor.SourceURL
	}
	if !survivor.HasAIMention && donor.HasAIMention {
		survivor.HasAIMention = true
		survivor.AIKeywords = donor.AIKeywords
	}

	return survivor
}
