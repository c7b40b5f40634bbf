package classify

import (
	"regexp"
	"strings"
	"time"

	"joblens/internal/config"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

// descriptionScanLen caps how much description text feeds the experience
// scan, keeping boilerplate at the bottom of postings from matching.
const descriptionScanLen = 500

type skillPattern struct {
	canonical string
	patterns  []*regexp.Regexp
}

type roleRule struct {
	category models.RoleCategory
	keywords []string
}

type experienceRule struct {
	level    models.ExperienceLevel
	keywords []string
}

// Classifier resolves intermediate records into canonical postings using
// vocabulary tables. All matching is case-insensitive; region and skill
// tokens match on word boundaries so short tokens like "us" or "go" do
// not fire inside longer words. A classifier is safe for concurrent use.
type Classifier struct {
	roleRules       []roleRule
	skills          []skillPattern
	usTokens        []*regexp.Regexp
	indiaTokens     []*regexp.Regexp
	remoteTokens    []string
	hybridTokens    []string
	onsiteTokens    []string
	experienceRules []experienceRule
	aiPatterns      []skillPattern
	refTime         time.Time
}

// NewClassifier compiles the vocabulary. The reference time anchors
// relative date phrases like "3 days ago" so one run classifies
// identical inputs identically.
func NewClassifier(vocab config.Vocabulary, refTime time.Time) *Classifier {
	c := &Classifier{refTime: refTime.UTC()}

	for _, rule := range vocab.RoleRules {
		c.roleRules = append(c.roleRules, roleRule{
			category: rule.Category,
			keywords: lowerAll(rule.Keywords),
		})
	}

	aliasesBySkill := make(map[string][]string)
	for _, alias := range vocab.SkillAliases {
		aliasesBySkill[alias.Skill] = append(aliasesBySkill[alias.Skill], alias.Alias)
	}
	for _, skill := range vocab.Skills {
		spellings := append([]string{skill}, aliasesBySkill[skill]...)
		c.skills = append(c.skills, skillPattern{
			canonical: skill,
			patterns:  compileTokens(spellings),
		})
	}

	c.usTokens = compileTokens(vocab.USTokens)
	c.indiaTokens = compileTokens(vocab.IndiaTokens)
	c.remoteTokens = lowerAll(vocab.RemoteTokens)
	c.hybridTokens = lowerAll(vocab.HybridTokens)
	c.onsiteTokens = lowerAll(vocab.OnsiteTokens)

	for _, rule := range vocab.ExperienceRules {
		c.experienceRules = append(c.experienceRules, experienceRule{
			level:    rule.Level,
			keywords: lowerAll(rule.Keywords),
		})
	}

	for _, kw := range vocab.AIKeywords {
		c.aiPatterns = append(c.aiPatterns, skillPattern{
			canonical: kw,
			patterns:  compileTokens([]string{kw}),
		})
	}

	return c
}

// Classify resolves one record. Every taxonomy field receives a real
// value or its sentinel; the input record is never rejected.
func (c *Classifier) Classify(rec models.IntermediateRecord) models.JobPosting {
	title := utils.CleanText(rec.Title)
	company := utils.CleanText(rec.CompanyName)

	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(rec.Description)
	combinedLower := titleLower + " " + strings.ToLower(rec.Location) + " " +
		descLower + " " + strings.ToLower(rec.EmploymentRaw)

	posting := models.JobPosting{
		JobID:           utils.DeriveJobID(rec.SourceURL, company, title),
		Title:           title,
		RoleCategory:    c.classifyRole(titleLower),
		CompanyName:     company,
		LocationRaw:     utils.CleanText(rec.Location),
		Region:          c.classifyRegion(rec.Location, rec.Query.Location),
		WorkType:        c.classifyWorkType(rec.RemoteHint, combinedLower),
		ExperienceLevel: c.classifyExperience(titleLower, descLower),
		EmploymentType:  c.classifyEmployment(combinedLower),
		Skills:          c.extractSkills(titleLower + " " + descLower),
		DatePosted:      ParsePostingDate(rec.DatePostedRaw, c.refTime),
		SourceURL:       rec.SourceURL,
		Query:           rec.Query,
	}

	posting.AIKeywords = c.matchAIKeywords(titleLower + " " + descLower)
	posting.HasAIMention = len(posting.AIKeywords) > 0

	return posting
}

// classifyRole walks the ordered rules; the first keyword hit wins.
func (c *Classifier) classifyRole(titleLower string) models.RoleCategory {
	for _, rule := range c.roleRules {
		for _, kw := range rule.keywords {
			if strings.Contains(titleLower, kw) {
				return rule.category
			}
		}
	}
	return models.RoleOther
}

// classifyRegion checks the posting location first and falls back to the
// search location only when the posting location matches nothing. US
// tokens are checked before India tokens within each text.
func (c *Classifier) classifyRegion(locationRaw, searchLocation string) models.Region {
	if region, ok := c.matchRegion(locationRaw); ok {
		return region
	}
	if region, ok := c.matchRegion(searchLocation); ok {
		return region
	}
	return models.RegionOther
}

func (c *Classifier) matchRegion(text string) (models.Region, bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return models.RegionOther, false
	}
	for _, re := range c.usTokens {
		if re.MatchString(lower) {
			return models.RegionUS, true
		}
	}
	for _, re := range c.indiaTokens {
		if re.MatchString(lower) {
			return models.RegionIndia, true
		}
	}
	return models.RegionOther, false
}

// classifyWorkType resolves the arrangement. An explicit remote flag from
// the source wins; otherwise hybrid beats remote so "hybrid (remote
// 2 days)" postings land in Hybrid.
func (c *Classifier) classifyWorkType(remoteHint bool, textLower string) models.WorkType {
	if remoteHint {
		return models.WorkRemote
	}
	for _, token := range c.hybridTokens {
		if strings.Contains(textLower, token) {
			return models.WorkHybrid
		}
	}
	for _, token := range c.remoteTokens {
		if strings.Contains(textLower, token) {
			return models.WorkRemote
		}
	}
	for _, token := range c.onsiteTokens {
		if strings.Contains(textLower, token) {
			return models.WorkOnsite
		}
	}
	return models.WorkNotSpecified
}

// classifyExperience scans the title first, then a bounded prefix of the
// description, with the ordered rule table.
func (c *Classifier) classifyExperience(titleLower, descLower string) models.ExperienceLevel {
	if len(descLower) > descriptionScanLen {
		descLower = descLower[:descriptionScanLen]
	}
	for _, rule := range c.experienceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(titleLower, kw) {
				return rule.level
			}
		}
	}
	for _, rule := range c.experienceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(descLower, kw) {
				return rule.level
			}
		}
	}
	return models.ExperienceNotSpecified
}

func (c *Classifier) classifyEmployment(textLower string) models.EmploymentType {
	switch {
	case strings.Contains(textLower, "contract"):
		return models.EmploymentContract
	case strings.Contains(textLower, "part-time") || strings.Contains(textLower, "part time"):
		return models.EmploymentPartTime
	case strings.Contains(textLower, "internship") || strings.Contains(textLower, "intern "):
		return models.EmploymentInternship
	case strings.Contains(textLower, "full-time") || strings.Contains(textLower, "full time"):
		return models.EmploymentFullTime
	}
	return models.EmploymentNotSpecified
}

// extractSkills returns canonical skill tokens found in the text, in
// vocabulary order, each at most once. Aliases fold into their canonical
// spelling.
func (c *Classifier) extractSkills(textLower string) []string {
	var found []string
	for _, skill := range c.skills {
		for _, re := range skill.patterns {
			if re.MatchString(textLower) {
				found = append(found, skill.canonical)
				break
			}
		}
	}
	return found
}

func (c *Classifier) matchAIKeywords(textLower string) []string {
	var found []string
	for _, kw := range c.aiPatterns {
		for _, re := range kw.patterns {
			if re.MatchString(textLower) {
				found = append(found, kw.canonical)
				break
			}
		}
	}
	return found
}

// compileTokens builds word-boundary matchers for lowercase tokens.
// Tokens with punctuation (C++, node.js) get explicit non-word guards
// since \b does not sit next to symbols the way it does next to letters.
func compileTokens(tokens []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(tokens))
	for _, token := range tokens {
		escaped := regexp.QuoteMeta(strings.ToLower(token))
		res = append(res, regexp.MustCompile(`(^|[^a-z0-9+#])`+escaped+`($|[^a-z0-9+#])`))
	}
	return res
}

func lowerAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, strings.ToLower(token))
	}
	return out
}
