package insights

import (
	"context"
	"fmt"

	"joblens/internal/config"
	"joblens/internal/logging"
	"joblens/internal/logging/types"
	"joblens/pkg/models"
)

// Generator produces human-readable observations about a statistics
// model.
type Generator interface {
	Generate(ctx context.Context, stats *models.StatisticsModel) ([]string, error)
	Name() string
}

// Manager selects the configured generator and falls back to the
// rule-based one when the model provider fails or is disabled. Insights
// are additive: a run result is complete without them.
type Manager struct {
	cfg     *config.Config
	primary Generator
	rules   *RuleGenerator
	logger  types.Logger
}

// NewManager builds the manager from the insights config.
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{
		cfg:    cfg,
		rules:  NewRuleGenerator(),
		logger: logging.GetGlobalLogger(),
	}

	if cfg.Insights.Enabled && cfg.Insights.Provider == "claude" && cfg.Insights.APIKey != "" {
		m.primary = NewClaudeGenerator(cfg)
	}

	return m
}

// Generate returns observations for the statistics model. The rule-based
// generator is the floor; the model provider, when configured, replaces
// its output.
func (m *Manager) Generate(ctx context.Context, stats *models.StatisticsModel) []string {
	if stats == nil || stats.TotalJobs == 0 {
		return nil
	}

	if m.primary != nil {
		observations, err := m.primary.Generate(ctx, stats)
		if err == nil && len(observations) > 0 {
			return observations
		}
		if err != nil {
			m.logger.Warn("Insights provider failed, using rule-based summaries", map[string]interface{}{
				"provider": m.primary.Name(),
				"error":    err.Error(),
			})
		}
	}

	observations, err := m.rules.Generate(ctx, stats)
	if err != nil {
		m.logger.Error("Rule-based insights failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return observations
}

// RuleGenerator derives observations directly from the aggregated
// numbers, no model calls involved.
type RuleGenerator struct{}

// NewRuleGenerator creates the generator.
func NewRuleGenerator() *RuleGenerator { return &RuleGenerator{} }

func (g *RuleGenerator) Name() string { return "rules" }

// Generate emits one observation per notable aggregate.
func (g *RuleGenerator) Generate(_ context.Context, stats *models.StatisticsModel) ([]string, error) {
	var out []string

	out = append(out, fmt.Sprintf(
		"Collected %d unique postings: %d in the United States, %d in India, %d elsewhere.",
		stats.TotalJobs, stats.USJobs, stats.IndiaJobs, stats.OtherJobs))

	if len(stats.RoleStats) > 0 {
		top := stats.RoleStats[0]
		out = append(out, fmt.Sprintf(
			"%s is the most in-demand category with %d openings (%.1f%% remote).",
			top.Category, top.TotalCount, top.RemotePercent))
	}

	if len(stats.TopSkills) > 0 {
		top := stats.TopSkills[0]
		out = append(out, fmt.Sprintf(
			"%s is the most requested skill, appearing in %.1f%% of postings.",
			top.Skill, top.Percentage))
	}

	if len(stats.TopCompanies) > 0 {
		top := stats.TopCompanies[0]
		out = append(out, fmt.Sprintf(
			"%s leads hiring volume with %d open positions.",
			top.CompanyName, top.TotalOpenings))
	}

	var maxRole models.RoleCategory
	var maxPct float64
	for category, pct := range stats.AIMentionByRole {
		if pct > maxPct || (pct == maxPct && string(category) < string(maxRole)) {
			maxRole, maxPct = category, pct
		}
	}
	if maxPct > 0 {
		out = append(out, fmt.Sprintf(
			"AI tooling shows up most in %s postings, mentioned in %.1f%% of them.",
			maxRole, maxPct))
	}

	remote := stats.WorkTypeDistribution[models.WorkRemote]
	if stats.TotalJobs > 0 && remote > 0 {
		out = append(out, fmt.Sprintf(
			"%.1f%% of postings are fully remote.",
			float64(remote)/float64(stats.TotalJobs)*100))
	}

	return out, nil
}
