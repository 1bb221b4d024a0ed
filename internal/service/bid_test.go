package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

func float64Ptr(v float64) *float64 { return &v }

func TestSuggestBid(t *testing.T) {
	t.Run("budget range anchors the amount", func(t *testing.T) {
		project := &models.Project{
			Title:       "Warehouse electrical retrofit",
			Description: "Full electrical retrofit of a 40,000 sq ft warehouse.",
			BudgetMin:   float64Ptr(100000),
			BudgetMax:   float64Ptr(250000),
		}

		suggestion := SuggestBid(project)

		if suggestion.Amount < *project.BudgetMin || suggestion.Amount > *project.BudgetMax {
			t.Errorf("Amount = %v, want within [%v, %v]", suggestion.Amount, *project.BudgetMin, *project.BudgetMax)
		}
		if suggestion.TimelineDays <= 0 {
			t.Errorf("TimelineDays = %d, want positive", suggestion.TimelineDays)
		}
	})

	t.Run("scope keywords raise cost and confidence", func(t *testing.T) {
		plain := SuggestBid(&models.Project{Title: "Office painting", Description: "Repaint three offices."})
		scoped := SuggestBid(&models.Project{Title: "Seismic retrofit", Description: "Seismic retrofit with new concrete shear walls."})

		if scoped.Amount <= plain.Amount {
			t.Errorf("scoped amount %v should exceed plain amount %v", scoped.Amount, plain.Amount)
		}
		if scoped.Confidence <= plain.Confidence {
			t.Errorf("scoped confidence %v should exceed plain confidence %v", scoped.Confidence, plain.Confidence)
		}
	})

	t.Run("confidence stays bounded", func(t *testing.T) {
		project := &models.Project{
			Title:       "Everything project",
			Description: "demolition electrical plumbing hvac concrete roofing seismic retrofit renovation new build",
			BudgetMin:   float64Ptr(1),
			BudgetMax:   float64Ptr(2),
		}
		if got := SuggestBid(project).Confidence; got > 0.9 {
			t.Errorf("Confidence = %v, want <= 0.9", got)
		}
	})
}

// fakeProjectRepo serves a single project for suggestion tests.
type fakeProjectRepo struct {
	repositories.ProjectRepository
	project *models.Project
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	if f.project == nil || f.project.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.project, nil
}

// failingNarrator always errors, simulating an LLM outage.
type failingNarrator struct{}

func (failingNarrator) GenerateNarrative(ctx context.Context, project *models.Project, suggestion *models.BidSuggestion) (string, error) {
	return "", errors.New("model overloaded")
}

type fixedNarrator struct{ text string }

func (f fixedNarrator) GenerateNarrative(ctx context.Context, project *models.Project, suggestion *models.BidSuggestion) (string, error) {
	return f.text, nil
}

func publishedProject() *models.Project {
	deadline := time.Now().Add(72 * time.Hour)
	return &models.Project{
		ID:          "proj-1",
		Title:       "Community center renovation",
		Description: "Interior renovation of the Hunters Point community center.",
		Status:      models.ProjectPublished,
		BidDeadline: &deadline,
	}
}

func TestGenerateSuggestionFallsBackWhenLLMUnavailable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewBidService(nil, &fakeProjectRepo{project: publishedProject()}, nil, failingNarrator{}, nil, logger)

	suggestion, err := svc.GenerateSuggestion(context.Background(), "proj-1", "member-1")
	if err != nil {
		t.Fatalf("GenerateSuggestion() error = %v", err)
	}
	if !suggestion.Degraded {
		t.Error("Degraded = false, want true when the LLM fails")
	}
	if suggestion.Narrative == "" {
		t.Error("expected a fallback narrative")
	}
	if suggestion.Amount <= 0 {
		t.Errorf("Amount = %v, want positive", suggestion.Amount)
	}
}

func TestGenerateSuggestionUsesNarrator(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewBidService(nil, &fakeProjectRepo{project: publishedProject()}, nil, fixedNarrator{text: "A solid bid."}, nil, logger)

	suggestion, err := svc.GenerateSuggestion(context.Background(), "proj-1", "member-1")
	if err != nil {
		t.Fatalf("GenerateSuggestion() error = %v", err)
	}
	if suggestion.Degraded {
		t.Error("Degraded = true, want false")
	}
	if suggestion.Narrative != "A solid bid." {
		t.Errorf("Narrative = %q", suggestion.Narrative)
	}
}

func TestGenerateSuggestionRejectsClosedProject(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	project := publishedProject()
	project.Status = models.ProjectClosed
	svc := NewBidService(nil, &fakeProjectRepo{project: project}, nil, nil, nil, logger)

	if _, err := svc.GenerateSuggestion(context.Background(), "proj-1", "member-1"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
