// Package ai generates bid narratives with Claude. The bid service treats
// this as best-effort: when the model is unavailable the suggestion is
// served from the heuristic cost model alone.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"namcportal/internal/domain/models"
)

const narrativeSystemPrompt = `You write short bid narratives for minority-owned construction contractors.
Given a project description and a proposed bid, write 2-3 sentences a contractor
could include with their bid: why the price is competitive and how the timeline
was estimated. Plain professional tone. No headings, no bullet points.`

// NarrativeGenerator produces the prose portion of a bid suggestion.
type NarrativeGenerator interface {
	GenerateNarrative(ctx context.Context, project *models.Project, suggestion *models.BidSuggestion) (string, error)
}

// ClaudeGenerator implements NarrativeGenerator on the Anthropic API.
type ClaudeGenerator struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

func NewClaudeGenerator(apiKey, model string, logger *slog.Logger) (*ClaudeGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &ClaudeGenerator{
		client: &client,
		model:  model,
		logger: logger,
	}, nil
}

// GenerateNarrative asks the model for a short narrative around the
// heuristic numbers. The numbers themselves are never model-generated.
func (g *ClaudeGenerator) GenerateNarrative(ctx context.Context, project *models.Project, suggestion *models.BidSuggestion) (string, error) {
	prompt := buildPrompt(project, suggestion)

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: narrativeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	narrative := strings.TrimSpace(sb.String())
	if narrative == "" {
		return "", fmt.Errorf("model returned no text content")
	}
	return narrative, nil
}

func buildPrompt(project *models.Project, suggestion *models.BidSuggestion) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s\n", project.Title)
	if project.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", project.Location)
	}
	if project.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", project.Description)
	}
	if project.BudgetMin != nil && project.BudgetMax != nil {
		fmt.Fprintf(&sb, "Client budget range: $%.0f - $%.0f\n", *project.BudgetMin, *project.BudgetMax)
	}
	fmt.Fprintf(&sb, "\nProposed bid: $%.2f over %d days.\n", suggestion.Amount, suggestion.TimelineDays)
	return sb.String()
}
