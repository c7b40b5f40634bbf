package models

import "time"

// RoleCategory is the closed set of normalized role categories.
type RoleCategory string

const (
	RoleBackend           RoleCategory = "Backend Engineer"
	RoleFrontend          RoleCategory = "Frontend Engineer"
	RoleFullStack         RoleCategory = "Full Stack Engineer"
	RoleMLAI              RoleCategory = "ML/AI Engineer"
	RoleDataEngineer      RoleCategory = "Data Engineer"
	RoleDataScientist     RoleCategory = "Data Scientist"
	RoleDevOps            RoleCategory = "DevOps/Platform/SRE"
	RoleEngineeringMgr    RoleCategory = "Engineering Manager/Tech Lead"
	RoleSoftwareEngineer  RoleCategory = "Software Engineer"
	RoleForwardDeployed   RoleCategory = "Forward Deployed Engineer"
	RoleProductProgramMgr RoleCategory = "Product/Program Management"
	RoleOther             RoleCategory = "Other"
)

// Region is the coarse geography bucket derived from location text.
type Region string

const (
	RegionUS    Region = "United States"
	RegionIndia Region = "India"
	RegionOther Region = "Other"
)

// WorkType describes the work arrangement of a posting.
type WorkType string

const (
	WorkRemote       WorkType = "Remote"
	WorkHybrid       WorkType = "Hybrid"
	WorkOnsite       WorkType = "Onsite"
	WorkNotSpecified WorkType = "Not Specified"
)

// ExperienceLevel describes the seniority bucket of a posting.
type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "Entry"
	ExperienceMid          ExperienceLevel = "Mid"
	ExperienceSenior       ExperienceLevel = "Senior"
	ExperienceStaff        ExperienceLevel = "Staff"
	ExperiencePrincipal    ExperienceLevel = "Principal"
	ExperienceManager      ExperienceLevel = "Manager"
	ExperienceNotSpecified ExperienceLevel = "Not Specified"
)

// EmploymentType describes the contractual form of a posting.
type EmploymentType string

const (
	EmploymentFullTime     EmploymentType = "Full-time"
	EmploymentPartTime     EmploymentType = "Part-time"
	EmploymentContract     EmploymentType = "Contract"
	EmploymentInternship   EmploymentType = "Internship"
	EmploymentNotSpecified EmploymentType = "Not Specified"
)

// PayloadKind identifies the shape of a raw backend payload.
type PayloadKind string

const (
	PayloadHTML PayloadKind = "html"
	PayloadJSON PayloadKind = "json"
)

// Query is one unit of fetch work: a (role, location) search executed on a
// specific backend. Queries are immutable once built.
type Query struct {
	Role     string `json:"role" yaml:"role"`
	Location string `json:"location" yaml:"location"`
	Backend  string `json:"backend,omitempty" yaml:"backend,omitempty"`
}

// Key returns a stable identifier for reporting per-query outcomes.
func (q Query) Key() string {
	return q.Role + "|" + q.Location
}

// RawPayload is one page of backend output plus its provenance. It lives only
// between a fetch call and the parse of that page.
type RawPayload struct {
	Kind      PayloadKind `json:"kind"`
	Body      []byte      `json:"-"`
	URL       string      `json:"url"`
	Query     Query       `json:"query"`
	Backend   string      `json:"backend"`
	Page      int         `json:"page"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// IntermediateRecord holds the loosely typed fields extracted from a payload
// before any taxonomy resolution. Missing fields stay empty; the record is
// never rejected at this stage.
type IntermediateRecord struct {
	Title         string `json:"title"`
	CompanyName   string `json:"company_name"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	DatePostedRaw string `json:"date_posted_raw"`
	EmploymentRaw string `json:"employment_raw"`
	RemoteHint    bool   `json:"remote_hint"`
	SourceURL     string `json:"source_url"`
	Query         Query  `json:"query"`
}

// JobPosting is the canonical record produced by classification. Every
// taxonomy field always carries a real value or its Not Specified/Other
// sentinel; consumers never see an absent field.
type JobPosting struct {
	JobID           string          `json:"job_id"`
	Title           string          `json:"title"`
	RoleCategory    RoleCategory    `json:"role_category"`
	CompanyName     string          `json:"company_name"`
	LocationRaw     string          `json:"location_raw"`
	Region          Region          `json:"region"`
	WorkType        WorkType        `json:"work_type"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	EmploymentType  EmploymentType  `json:"employment_type"`
	Skills          []string        `json:"skills"`
	DatePosted      *time.Time      `json:"date_posted,omitempty"`
	HasAIMention    bool            `json:"has_ai_mention"`
	AIKeywords      []string        `json:"ai_keywords,omitempty"`
	SourceURL       string          `json:"source_url"`
	Query           Query           `json:"query"`
}

// UnknownFieldCount counts taxonomy fields left at their sentinel value plus
// empty free-text identity fields. Lower is more complete; the deduplicator
// uses this to pick a survivor among records sharing a JobID.
func (j *JobPosting) UnknownFieldCount() int {
	n := 0
	if j.RoleCategory == RoleOther {
		n++
	}
	if j.Region == RegionOther {
		n++
	}
	if j.WorkType == WorkNotSpecified {
		n++
	}
	if j.ExperienceLevel == ExperienceNotSpecified {
		n++
	}
	if j.EmploymentType == EmploymentNotSpecified {
		n++
	}
	if len(j.Skills) == 0 {
		n++
	}
	if j.CompanyName == "" {
		n++
	}
	if j.DatePosted == nil {
		n++
	}
	return n
}
