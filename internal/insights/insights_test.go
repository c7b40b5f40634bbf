package insights_test

import (
	"context"
	"strings"
	"testing"

	"joblens/internal/config"
	"joblens/internal/insights"
	"joblens/pkg/models"
)

func sampleStats() *models.StatisticsModel {
	return &models.StatisticsModel{
		TotalJobs: 10,
		USJobs:    6,
		IndiaJobs: 3,
		OtherJobs: 1,
		RoleStats: []models.RoleStats{
			{Category: models.RoleBackend, TotalCount: 5, RemotePercent: 40.0},
		},
		TopSkills: []models.SkillFrequency{
			{Skill: "Go", Count: 4, Percentage: 40.0},
		},
		TopCompanies: []models.CompanyStats{
			{CompanyName: "Acme Corp", TotalOpenings: 3},
		},
		AIMentionByRole: map[models.RoleCategory]float64{
			models.RoleBackend: 20.0,
			models.RoleMLAI:    80.0,
		},
		WorkTypeDistribution: map[models.WorkType]int{
			models.WorkRemote: 4,
		},
	}
}

// ── Rule-based generator ───────────────────────────────────────────────────

func TestRuleGeneratorObservations(t *testing.T) {
	observations, err := insights.NewRuleGenerator().Generate(context.Background(), sampleStats())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(observations) == 0 {
		t.Fatal("no observations produced")
	}

	joined := strings.Join(observations, "\n")
	for _, want := range []string{"10 unique postings", "Backend Engineer", "Go", "Acme Corp", "ML/AI Engineer"} {
		if !strings.Contains(joined, want) {
			t.Errorf("observations missing %q:\n%s", want, joined)
		}
	}
}

func TestRuleGeneratorDeterministicAITieBreak(t *testing.T) {
	stats := sampleStats()
	stats.AIMentionByRole = map[models.RoleCategory]float64{
		models.RoleBackend:  50.0,
		models.RoleFrontend: 50.0,
	}

	first, _ := insights.NewRuleGenerator().Generate(context.Background(), stats)
	for i := 0; i < 10; i++ {
		again, _ := insights.NewRuleGenerator().Generate(context.Background(), stats)
		if strings.Join(first, "\n") != strings.Join(again, "\n") {
			t.Fatal("observations differ across runs with tied AI percentages")
		}
	}
}

// ── Manager ────────────────────────────────────────────────────────────────

func TestManagerNilAndEmptyStats(t *testing.T) {
	manager := insights.NewManager(&config.Config{})
	if got := manager.Generate(context.Background(), nil); got != nil {
		t.Errorf("Generate(nil) = %v, want nil", got)
	}
	if got := manager.Generate(context.Background(), &models.StatisticsModel{}); got != nil {
		t.Errorf("Generate(empty) = %v, want nil", got)
	}
}

func TestManagerFallsBackToRules(t *testing.T) {
	// No provider configured: the rule generator is the floor.
	manager := insights.NewManager(&config.Config{})
	observations := manager.Generate(context.Background(), sampleStats())
	if len(observations) == 0 {
		t.Error("manager without a provider must still produce rule-based observations")
	}
}
