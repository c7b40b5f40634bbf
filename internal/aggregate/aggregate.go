package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"joblens/pkg/models"
)

const roleTopSkills = 5

// Options bound the derived views of one aggregation pass.
type Options struct {
	TrendWindowMonths int
	TopSkills         int
	TopCompanies      int
}

// Engine computes the statistics model from a deduplicated posting set.
// Aggregation is pure: the same postings and reference time always
// produce the same model, byte for byte. Ranked views sort by count
// descending and break ties by first appearance in the input.
type Engine struct {
	opts Options
	ref  time.Time
}

// NewEngine creates an engine. The reference time anchors the trend
// window and the GeneratedAt stamp.
func NewEngine(opts Options, ref time.Time) *Engine {
	if opts.TrendWindowMonths <= 0 {
		opts.TrendWindowMonths = 24
	}
	if opts.TopSkills <= 0 {
		opts.TopSkills = 20
	}
	if opts.TopCompanies <= 0 {
		opts.TopCompanies = 20
	}
	return &Engine{opts: opts, ref: ref.UTC()}
}

// Aggregate builds the full statistics model. An empty input produces a
// valid model with zero counts and empty views.
func (e *Engine) Aggregate(postings []models.JobPosting) *models.StatisticsModel {
	stats := &models.StatisticsModel{
		TotalJobs:              len(postings),
		ExperienceDistribution: make(map[models.ExperienceLevel]int),
		WorkTypeDistribution:   make(map[models.WorkType]int),
		EmploymentDistribution: make(map[models.EmploymentType]int),
		AIMentionByRole:        make(map[models.RoleCategory]float64),
		GeneratedAt:            e.ref,
	}

	for _, p := range postings {
		switch p.Region {
		case models.RegionUS:
			stats.USJobs++
		case models.RegionIndia:
			stats.IndiaJobs++
		default:
			stats.OtherJobs++
		}
		stats.ExperienceDistribution[p.ExperienceLevel]++
		stats.WorkTypeDistribution[p.WorkType]++
		stats.EmploymentDistribution[p.EmploymentType]++
	}

	stats.RoleStats = e.roleStats(postings)
	stats.TopSkills = e.topSkills(postings)
	stats.TopCompanies = e.topCompanies(postings)
	stats.QuarterlyTrends = e.quarterlyTrends(postings)
	stats.AIMentionByRole = e.aiMentionByRole(postings)

	return stats
}

func (e *Engine) roleStats(postings []models.JobPosting) []models.RoleStats {
	type roleAccum struct {
		stats      models.RoleStats
		skillCount map[string]int
		skillOrder []string
		remote     int
		hybrid     int
		onsite     int
		unspec     int
		aiMentions int
	}

	accums := make(map[models.RoleCategory]*roleAccum)
	var order []models.RoleCategory

	for _, p := range postings {
		acc, ok := accums[p.RoleCategory]
		if !ok {
			acc = &roleAccum{
				stats:      models.RoleStats{Category: p.RoleCategory},
				skillCount: make(map[string]int),
			}
			accums[p.RoleCategory] = acc
			order = append(order, p.RoleCategory)
		}

		acc.stats.TotalCount++
		switch p.Region {
		case models.RegionUS:
			acc.stats.USCount++
		case models.RegionIndia:
			acc.stats.IndiaCount++
		default:
			acc.stats.OtherCount++
		}

		switch p.WorkType {
		case models.WorkRemote:
			acc.remote++
		case models.WorkHybrid:
			acc.hybrid++
		case models.WorkOnsite:
			acc.onsite++
		default:
			acc.unspec++
		}

		if p.HasAIMention {
			acc.aiMentions++
		}

		for _, skill := range p.Skills {
			if _, seen := acc.skillCount[skill]; !seen {
				acc.skillOrder = append(acc.skillOrder, skill)
			}
			acc.skillCount[skill]++
		}
	}

	result := make([]models.RoleStats, 0, len(order))
	for _, category := range order {
		acc := accums[category]
		total := acc.stats.TotalCount

		acc.stats.RemotePercent = percent(acc.remote, total)
		acc.stats.HybridPercent = percent(acc.hybrid, total)
		acc.stats.OnsitePercent = percent(acc.onsite, total)
		acc.stats.NotSpecifiedPct = percent(acc.unspec, total)
		acc.stats.AIMentionPercent = percent(acc.aiMentions, total)
		acc.stats.TopSkills = rankStrings(acc.skillOrder, acc.skillCount, roleTopSkills)

		result = append(result, acc.stats)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalCount > result[j].TotalCount
	})
	return result
}

func (e *Engine) topSkills(postings []models.JobPosting) []models.SkillFrequency {
	skillCount := make(map[string]int)
	var skillOrder []string
	categoryCount := make(map[string]map[models.RoleCategory]int)
	categoryOrder := make(map[string][]models.RoleCategory)

	for _, p := range postings {
		for _, skill := range p.Skills {
			if _, seen := skillCount[skill]; !seen {
				skillOrder = append(skillOrder, skill)
				categoryCount[skill] = make(map[models.RoleCategory]int)
			}
			skillCount[skill]++
			if _, seen := categoryCount[skill][p.RoleCategory]; !seen {
				categoryOrder[skill] = append(categoryOrder[skill], p.RoleCategory)
			}
			categoryCount[skill][p.RoleCategory]++
		}
	}

	ranked := rankStrings(skillOrder, skillCount, e.opts.TopSkills)

	result := make([]models.SkillFrequency, 0, len(ranked))
	for _, skill := range ranked {
		categories := make([]models.RoleCategory, len(categoryOrder[skill]))
		copy(categories, categoryOrder[skill])
		sort.SliceStable(categories, func(i, j int) bool {
			return categoryCount[skill][categories[i]] > categoryCount[skill][categories[j]]
		})
		if len(categories) > 3 {
			categories = categories[:3]
		}

		result = append(result, models.SkillFrequency{
			Skill:         skill,
			Count:         skillCount[skill],
			Percentage:    percent(skillCount[skill], len(postings)),
			TopCategories: categories,
		})
	}
	return result
}

func (e *Engine) topCompanies(postings []models.JobPosting) []models.CompanyStats {
	type companyAccum struct {
		stats      models.CompanyStats
		categories map[models.RoleCategory]bool
		locations  map[string]bool
	}

	accums := make(map[string]*companyAccum)
	var order []string

	for _, p := range postings {
		if p.CompanyName == "" {
			continue
		}
		acc, ok := accums[p.CompanyName]
		if !ok {
			acc = &companyAccum{
				stats:      models.CompanyStats{CompanyName: p.CompanyName},
				categories: make(map[models.RoleCategory]bool),
				locations:  make(map[string]bool),
			}
			accums[p.CompanyName] = acc
			order = append(order, p.CompanyName)
		}

		acc.stats.TotalOpenings++
		if !acc.categories[p.RoleCategory] {
			acc.categories[p.RoleCategory] = true
			acc.stats.Categories = append(acc.stats.Categories, p.RoleCategory)
		}
		if p.LocationRaw != "" && !acc.locations[p.LocationRaw] {
			acc.locations[p.LocationRaw] = true
			acc.stats.Locations = append(acc.stats.Locations, p.LocationRaw)
		}
		if p.WorkType == models.WorkRemote {
			acc.stats.RemoteCount++
		}
	}

	result := make([]models.CompanyStats, 0, len(order))
	for _, name := range order {
		result = append(result, accums[name].stats)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalOpenings > result[j].TotalOpenings
	})
	if len(result) > e.opts.TopCompanies {
		result = result[:e.opts.TopCompanies]
	}
	return result
}

// quarterlyTrends buckets dated postings into calendar quarters inside
// the trend window. Undated postings are excluded rather than guessed.
func (e *Engine) quarterlyTrends(postings []models.JobPosting) []models.QuarterlyTrend {
	cutoff := e.ref.AddDate(0, -e.opts.TrendWindowMonths, 0)

	counts := make(map[string]map[models.RoleCategory]int)
	for _, p := range postings {
		if p.DatePosted == nil || p.DatePosted.Before(cutoff) || p.DatePosted.After(e.ref) {
			continue
		}
		quarter := QuarterOf(*p.DatePosted)
		if counts[quarter] == nil {
			counts[quarter] = make(map[models.RoleCategory]int)
		}
		counts[quarter][p.RoleCategory]++
	}

	var result []models.QuarterlyTrend
	for quarter, byCategory := range counts {
		for category, count := range byCategory {
			result = append(result, models.QuarterlyTrend{
				Quarter:  quarter,
				Category: string(category),
				Count:    count,
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Quarter != result[j].Quarter {
			return result[i].Quarter < result[j].Quarter
		}
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	return result
}

func (e *Engine) aiMentionByRole(postings []models.JobPosting) map[models.RoleCategory]float64 {
	totals := make(map[models.RoleCategory]int)
	mentions := make(map[models.RoleCategory]int)
	for _, p := range postings {
		totals[p.RoleCategory]++
		if p.HasAIMention {
			mentions[p.RoleCategory]++
		}
	}

	result := make(map[models.RoleCategory]float64, len(totals))
	for category, total := range totals {
		result[category] = percent(mentions[category], total)
	}
	return result
}

// QuarterOf formats a time as its calendar quarter, e.g. "2026-Q3".
func QuarterOf(t time.Time) string {
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
}

// rankStrings sorts keys by count descending, first-seen order breaking
// ties, and truncates to limit.
func rankStrings(order []string, counts map[string]int, limit int) []string {
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
