package models

import "time"

// RoleStats holds the per-category cross-tab: totals, regional split, work
// mode percentages and the most requested skills within the category.
type RoleStats struct {
	Category          RoleCategory `json:"category"`
	TotalCount        int          `json:"total_count"`
	USCount           int          `json:"us_count"`
	IndiaCount        int          `json:"india_count"`
	OtherCount        int          `json:"other_count"`
	TopSkills         []string     `json:"top_skills"`
	RemotePercent     float64      `json:"remote_percentage"`
	HybridPercent     float64      `json:"hybrid_percentage"`
	OnsitePercent     float64      `json:"onsite_percentage"`
	NotSpecifiedPct   float64      `json:"not_specified_percentage"`
	AIMentionPercent  float64      `json:"ai_mention_percentage"`
}

// SkillFrequency is one row of the global skill table.
type SkillFrequency struct {
	Skill         string         `json:"skill"`
	Count         int            `json:"count"`
	Percentage    float64        `json:"percentage"`
	TopCategories []RoleCategory `json:"top_categories"`
}

// CompanyStats ranks a company by open positions across the record set.
type CompanyStats struct {
	CompanyName   string         `json:"company_name"`
	TotalOpenings int            `json:"total_openings"`
	Categories    []RoleCategory `json:"categories"`
	Locations     []string       `json:"locations"`
	RemoteCount   int            `json:"remote_count"`
}

// QuarterlyTrend is the posting count for one quarter bucket, optionally
// narrowed to a single category ("All" covers the whole set).
type QuarterlyTrend struct {
	Quarter  string `json:"quarter"` // e.g. "2025-Q3"
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// StatisticsModel is the full aggregate derived from one deduplicated
// canonical record set. It is always recomputed from scratch, never mutated
// incrementally, so identical inputs yield identical models.
type StatisticsModel struct {
	TotalJobs  int `json:"total_jobs"`
	USJobs     int `json:"us_jobs"`
	IndiaJobs  int `json:"india_jobs"`
	OtherJobs  int `json:"other_jobs"`

	RoleStats       []RoleStats      `json:"role_stats"`
	TopSkills       []SkillFrequency `json:"top_skills"`
	TopCompanies    []CompanyStats   `json:"top_companies"`
	QuarterlyTrends []QuarterlyTrend `json:"quarterly_trends"`

	ExperienceDistribution map[ExperienceLevel]int `json:"experience_distribution"`
	WorkTypeDistribution   map[WorkType]int        `json:"work_type_distribution"`
	EmploymentDistribution map[EmploymentType]int  `json:"employment_type_distribution"`

	// AIMentionByRole is the adoption signal: the share of each category's
	// postings whose text matched the AI/ML keyword set, regardless of the
	// category's own label.
	AIMentionByRole map[RoleCategory]float64 `json:"ai_mention_by_role"`

	GeneratedAt time.Time `json:"generated_at"`
}
