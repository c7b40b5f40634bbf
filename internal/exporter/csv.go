package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"joblens/pkg/models"
)

// listSeparator joins multi-valued cells. It never appears inside the
// canonical skill and keyword vocabularies, so splitting on it is safe.
const listSeparator = "; "

var csvHeader = []string{
	"job_id",
	"title",
	"role_category",
	"company_name",
	"location_raw",
	"region",
	"work_type",
	"experience_level",
	"employment_type",
	"skills",
	"date_posted",
	"has_ai_mention",
	"ai_keywords",
	"source_url",
	"query_role",
	"query_location",
	"query_backend",
}

// WriteCSV writes the record set as a flat CSV table with a header row.
func WriteCSV(path string, records []models.JobPosting) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	for _, rec := range records {
		datePosted := ""
		if rec.DatePosted != nil {
			datePosted = rec.DatePosted.UTC().Format(time.RFC3339)
		}
		row := []string{
			rec.JobID,
			rec.Title,
			string(rec.RoleCategory),
			rec.CompanyName,
			rec.LocationRaw,
			string(rec.Region),
			string(rec.WorkType),
			string(rec.ExperienceLevel),
			string(rec.EmploymentType),
			strings.Join(rec.Skills, listSeparator),
			datePosted,
			strconv.FormatBool(rec.HasAIMention),
			strings.Join(rec.AIKeywords, listSeparator),
			rec.SourceURL,
			rec.Query.Role,
			rec.Query.Location,
			rec.Query.Backend,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadCSV loads a record set written by WriteCSV.
func ReadCSV(path string) ([]models.JobPosting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]models.JobPosting, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+2, len(csvHeader), len(row))
		}

		rec := models.JobPosting{
			JobID:           row[0],
			Title:           row[1],
			RoleCategory:    models.RoleCategory(row[2]),
			CompanyName:     row[3],
			LocationRaw:     row[4],
			Region:          models.Region(row[5]),
			WorkType:        models.WorkType(row[6]),
			ExperienceLevel: models.ExperienceLevel(row[7]),
			EmploymentType:  models.EmploymentType(row[8]),
			Skills:          splitList(row[9]),
			AIKeywords:      splitList(row[12]),
			SourceURL:       row[13],
			Query: models.Query{
				Role:     row[14],
				Location: row[15],
				Backend:  row[16],
			},
		}

		if row[10] != "" {
			t, err := time.Parse(time.RFC3339, row[10])
			if err != nil {
				return nil, fmt.Errorf("row %d: bad date: %w", i+2, err)
			}
			t = t.UTC()
			rec.DatePosted = &t
		}
		rec.HasAIMention, _ = strconv.ParseBool(row[11])

		records = append(records, rec)
	}
	return records, nil
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	return strings.Split(cell, listSeparator)
}
