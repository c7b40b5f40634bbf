package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"joblens/internal/config"
	"joblens/internal/logging"
	"joblens/internal/logging/types"
	"joblens/pkg/models"
)

const insightsMaxTokens = 1024

// ClaudeGenerator asks Claude to summarize the aggregated numbers into
// a handful of analyst-style observations.
type ClaudeGenerator struct {
	client anthropic.Client
	cfg    *config.Config
	logger types.Logger
}

// NewClaudeGenerator creates the generator from the insights config.
func NewClaudeGenerator(cfg *config.Config) *ClaudeGenerator {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.Insights.APIKey),
	)
	return &ClaudeGenerator{
		client: client,
		cfg:    cfg,
		logger: logging.GetGlobalLogger(),
	}
}

func (g *ClaudeGenerator) Name() string { return "claude" }

// Generate sends the statistics model to Claude and parses the returned
// JSON array of observations.
func (g *ClaudeGenerator) Generate(ctx context.Context, stats *models.StatisticsModel) ([]string, error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to encode statistics: %w", err)
	}

	prompt := fmt.Sprintf(`You are a job market analyst. Below is an aggregated statistics document from a job posting research run, as JSON.

Write 4 to 6 short observations about what the numbers show: demand by role category, regional split, skill trends, remote work share, AI adoption. Each observation is one sentence grounded in a specific number from the data. Do not invent numbers.

Return ONLY a JSON array of strings, no markdown fences, no commentary.

Statistics:
%s`, statsJSON)

	model := anthropic.Model(g.cfg.Insights.Model)
	if g.cfg.Insights.Model == "" {
		model = anthropic.ModelClaude3_7SonnetLatest
	}

	response, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: insightsMaxTokens,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	if len(response.Content) == 0 {
		return nil, fmt.Errorf("empty response from Claude")
	}

	var responseText string
	for _, content := range response.Content {
		responseText = content.AsText().Text
		break
	}

	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var observations []string
	if err := json.Unmarshal([]byte(responseText), &observations); err != nil {
		return nil, fmt.Errorf("failed to parse observations: %w", err)
	}
	return observations, nil
}
