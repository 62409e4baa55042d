// Package planner drives plan generation against a language model and turns
// the raw output into reconciled projects. All model output goes through the
// JSON recovery ladder and the plan package before anything is accepted.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"axiom/internal/domain"
	"axiom/internal/plan"
	"axiom/internal/roadmap"
)

var (
	// ErrNoMasterPlan means monthly generation was requested for a project
	// that was not created through the master-plan flow.
	ErrNoMasterPlan = errors.New("project has no master plan")
	// ErrHorizonReached means the generation cursor is already at the end of
	// the project's time horizon.
	ErrHorizonReached = errors.New("tasks already generated up to the time horizon")
)

// Client produces raw model output for a prompt. Implementations must honor
// the context for cancellation.
type Client interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Planner orchestrates the generation modes. The zero value is unusable;
// construct with New.
type Planner struct {
	client Client
	now    func() time.Time
}

func New(client Client) *Planner {
	return &Planner{client: client, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (pl *Planner) WithClock(now func() time.Time) *Planner {
	pl.now = now
	return pl
}

// CreateRequest is the user's ask for a new plan.
type CreateRequest struct {
	UserText        string
	TimeHorizonDays int
	Constraints     string
	StartDate       string
	TrainingProfile *domain.TrainingProfile
}

func (req CreateRequest) params() plan.CreateParams {
	return plan.CreateParams{
		RawInput:        req.UserText,
		Constraints:     req.Constraints,
		TrainingProfile: req.TrainingProfile,
		StartDate:       req.StartDate,
		TimeHorizonDays: req.TimeHorizonDays,
	}
}

// CreatePlan generates a fully tasked project in one shot.
func (pl *Planner) CreatePlan(ctx context.Context, req CreateRequest) (domain.Project, error) {
	raw, err := pl.generateJSON(ctx, createPrompt(req), guidanceFor(req.TimeHorizonDays).maxTokens)
	if err != nil {
		return domain.Project{}, err
	}
	p, err := plan.ReconcileCreate(raw, req.params(), pl.now())
	if err != nil {
		return domain.Project{}, fmt.Errorf("reconcile generated plan: %w", err)
	}
	return p, nil
}

// UpdatePlan feeds a daily check-in back into the model and reconciles the
// regenerated plan over the existing project. The check-in always ends up in
// the project history, whether or not the model recorded it.
func (pl *Planner) UpdatePlan(ctx context.Context, existing domain.Project, check domain.DailyHistory, adjustment string) (domain.Project, error) {
	raw, err := pl.generateJSON(ctx, updatePrompt(existing, check, adjustment), guidanceFor(existing.TimeHorizonDays).maxTokens)
	if err != nil {
		return domain.Project{}, err
	}
	p, err := plan.ReconcileUpdate(raw, existing, pl.now())
	if err != nil {
		return domain.Project{}, fmt.Errorf("reconcile updated plan: %w", err)
	}
	if !hasHistoryFor(p, check.Date) {
		p = roadmap.AddHistory(p, check, pl.now())
	}
	return p, nil
}

// CreateMaster generates the lightweight master-plan skeleton for long
// horizons: phases, skills and a progression template, with no tasks yet.
func (pl *Planner) CreateMaster(ctx context.Context, req CreateRequest) (domain.Project, error) {
	raw, err := pl.generateJSON(ctx, masterPrompt(req), 8192)
	if err != nil {
		return domain.Project{}, err
	}
	p, err := plan.ReconcileCreate(raw, req.params(), pl.now())
	if err != nil {
		return domain.Project{}, fmt.Errorf("reconcile master plan: %w", err)
	}
	if p.MasterPlan == nil {
		return domain.Project{}, ErrNoMasterPlan
	}
	p.Tasks = []domain.Task{}
	p.GeneratedUntilDay = 0
	p.LastGeneratedContext = ""
	if p.TodayCardRules == nil {
		p.TodayCardRules = &domain.TodayCardRules{MaxTasks: roadmap.MaxTodayTasks, SelectionLogic: []string{"priority"}}
	}
	return p, nil
}

// GenerateMonth advances the generation cursor by up to days, appending the
// next batch of tasks derived from the master plan.
func (pl *Planner) GenerateMonth(ctx context.Context, p domain.Project, days int) (domain.Project, error) {
	if p.MasterPlan == nil {
		return domain.Project{}, ErrNoMasterPlan
	}
	if days < 1 {
		days = 30
	}
	startDay := p.GeneratedUntilDay + 1
	endDay := startDay + days - 1
	if endDay > p.TimeHorizonDays {
		endDay = p.TimeHorizonDays
	}
	if startDay > p.TimeHorizonDays {
		return domain.Project{}, ErrHorizonReached
	}

	raw, err := pl.generateJSON(ctx, monthPrompt(p, startDay, endDay), 16000)
	if err != nil {
		return domain.Project{}, err
	}
	tasks, err := plan.NormalizeTasks(raw, startDay, pl.now())
	if err != nil {
		return domain.Project{}, fmt.Errorf("reconcile task batch: %w", err)
	}
	fallbackPhase := ""
	if len(p.Roadmap.Phases) > 0 {
		fallbackPhase = p.Roadmap.Phases[0].PhaseID
	}
	for i := range tasks {
		if tasks[i].PhaseID == "" {
			tasks[i].PhaseID = fallbackPhase
		}
	}

	out := roadmap.Clone(p)
	out.Tasks = append(out.Tasks, tasks...)
	out.GeneratedUntilDay = endDay
	focus := "Training"
	if current := currentMasterPhase(p, startDay); current != nil && current.Focus != "" {
		focus = current.Focus
	}
	out.LastGeneratedContext = fmt.Sprintf("%d tasks for days %d-%d. Focus: %s.", len(tasks), startDay, endDay, focus)
	out.UpdatedAt = pl.now().UTC().Format(time.RFC3339)
	return out, nil
}

// generateJSON runs one generation round plus at most one repair round when
// the output cannot be parsed.
func (pl *Planner) generateJSON(ctx context.Context, prompt string, maxTokens int) ([]byte, error) {
	text, err := pl.client.GenerateText(ctx, prompt, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	raw, err := ExtractJSON(text)
	if err == nil {
		return raw, nil
	}
	repaired, err := pl.client.GenerateText(ctx, repairPrompt(text), maxTokens)
	if err != nil {
		return nil, fmt.Errorf("repair plan output: %w", err)
	}
	raw, err = ExtractJSON(repaired)
	if err != nil {
		return nil, fmt.Errorf("repair plan output: %w", err)
	}
	return raw, nil
}

func hasHistoryFor(p domain.Project, date string) bool {
	for _, h := range p.Progress.History {
		if h.Date == date {
			return true
		}
	}
	return false
}
