// Package plan turns loosely-structured plan payloads from the generation
// service into valid Project values. Defaulting runs first and fills gaps
// conservatively; validation runs second and rejects the payload as a unit.
package plan

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"axiom/internal/domain"
)

// envelope accepts both shapes the model produces: the project nested under
// "project", or the project fields at the top level.
type envelope struct {
	Assumptions []string        `json:"assumptions"`
	Project     json.RawMessage `json:"project"`
}

type wireSchedule struct {
	EarliestDay    *int `json:"earliestDay"`
	LatestDay      *int `json:"latestDay"`
	RecommendedDay *int `json:"recommendedDay"`
}

type wireTask struct {
	TaskID           string                  `json:"taskId"`
	PhaseID          string                  `json:"phaseId"`
	Name             string                  `json:"name"`
	Type             domain.TaskType         `json:"type"`
	Effort           domain.Effort           `json:"effort"`
	DurationMinutes  int                     `json:"durationMinutes"`
	Details          *domain.TaskDetails     `json:"details"`
	Schedule         *wireSchedule           `json:"schedule"`
	DependsOnTaskIDs []string                `json:"dependsOnTaskIds"`
	SkillImpact      []domain.SkillImpact    `json:"skillImpact"`
	State            domain.TaskState        `json:"state"`
	LastUpdated      string                  `json:"lastUpdated"`
}

type wirePhase struct {
	PhaseID    string             `json:"phaseId"`
	Name       string             `json:"name"`
	Intent     string             `json:"intent"`
	Order      *int               `json:"order"`
	StartDay   int                `json:"startDay"`
	EndDay     int                `json:"endDay"`
	Milestones []domain.Milestone `json:"milestones"`
}

type wireSkill struct {
	SkillID      string   `json:"skillId"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Level        *int     `json:"level"`
	MaxLevel     *int     `json:"maxLevel"`
	Parents      []string `json:"parents"`
	ProgressRule string   `json:"progressRule"`
}

type wireProject struct {
	ProjectID        string                 `json:"projectId"`
	Name             string                 `json:"name"`
	OneLineIntent    string                 `json:"oneLineIntent"`
	DefinitionOfDone string                 `json:"definitionOfDone"`
	Status           domain.ProjectStatus   `json:"status"`
	CreatedAt        string                 `json:"createdAt"`
	UpdatedAt        string                 `json:"updatedAt"`
	StartDate        string                 `json:"startDate"`
	TimeHorizonDays  int                    `json:"timeHorizonDays"`
	CreatedFrom      *domain.CreatedFrom    `json:"createdFrom"`
	Pause            *domain.Pause          `json:"pause"`
	Roadmap          *struct {
		Phases []wirePhase `json:"phases"`
	} `json:"roadmap"`
	Tasks          []wireTask             `json:"tasks"`
	TodayCardRules *domain.TodayCardRules `json:"todayCardRules"`
	SkillTree      *struct {
		Skills []wireSkill `json:"skills"`
	} `json:"skillTree"`
	Progress *domain.Progress `json:"progress"`
	Assumptions []string      `json:"assumptions"`

	MasterPlan           *domain.MasterPlan `json:"masterPlan"`
	GeneratedUntilDay    int                `json:"generatedUntilDay"`
	LastGeneratedContext string             `json:"lastGeneratedContext"`
}

// Normalize decodes a raw plan payload and applies the defaulting rules.
// The result still needs Validate; Normalize only fails on malformed JSON.
func Normalize(raw []byte, now time.Time) (domain.Project, []string, error) {
	var env envelope
	wp, assumptions, err := decode(raw, &env)
	if err != nil {
		return domain.Project{}, nil, err
	}
	return applyDefaults(wp, now), assumptions, nil
}

func decode(raw []byte, env *envelope) (wireProject, []string, error) {
	var wp wireProject
	if err := json.Unmarshal(raw, env); err != nil {
		return wp, nil, fmt.Errorf("decode plan payload: %w", err)
	}
	projectRaw := raw
	if len(env.Project) > 0 {
		projectRaw = env.Project
	}
	if err := json.Unmarshal(projectRaw, &wp); err != nil {
		return wp, nil, fmt.Errorf("decode plan project: %w", err)
	}
	assumptions := env.Assumptions
	if len(assumptions) == 0 {
		assumptions = wp.Assumptions
	}
	return wp, assumptions, nil
}

func applyDefaults(wp wireProject, now time.Time) domain.Project {
	ts := now.UTC().Format(time.RFC3339)
	p := domain.Project{
		ProjectID:        defaultID(wp.ProjectID),
		Name:             wp.Name,
		OneLineIntent:    wp.OneLineIntent,
		DefinitionOfDone: wp.DefinitionOfDone,
		Status:           wp.Status,
		CreatedAt:        wp.CreatedAt,
		UpdatedAt:        wp.UpdatedAt,
		StartDate:        wp.StartDate,
		TimeHorizonDays:  wp.TimeHorizonDays,
		Pause:            domain.Pause{IsPaused: false},
		Roadmap:          domain.Roadmap{Phases: []domain.Phase{}},
		Tasks:            []domain.Task{},
		TodayCardRules:   wp.TodayCardRules,
		SkillTree:        domain.SkillTree{Skills: []domain.Skill{}},
		Progress:         domain.Progress{History: []domain.DailyHistory{}},
		Assumptions:      wp.Assumptions,

		MasterPlan:           wp.MasterPlan,
		GeneratedUntilDay:    wp.GeneratedUntilDay,
		LastGeneratedContext: wp.LastGeneratedContext,
	}
	if wp.CreatedFrom != nil {
		p.CreatedFrom = *wp.CreatedFrom
	}
	if wp.Pause != nil {
		p.Pause = *wp.Pause
	}
	if wp.Progress != nil {
		p.Progress = *wp.Progress
		if p.Progress.History == nil {
			p.Progress.History = []domain.DailyHistory{}
		}
	}
	if wp.Roadmap != nil {
		for i, ph := range wp.Roadmap.Phases {
			p.Roadmap.Phases = append(p.Roadmap.Phases, defaultPhase(ph, i))
		}
	}
	for i, t := range wp.Tasks {
		p.Tasks = append(p.Tasks, defaultTask(t, i, ts))
	}
	if wp.SkillTree != nil {
		for _, s := range wp.SkillTree.Skills {
			p.SkillTree.Skills = append(p.SkillTree.Skills, defaultSkill(s))
		}
	}
	return p
}

func defaultPhase(ph wirePhase, index int) domain.Phase {
	out := domain.Phase{
		PhaseID:    defaultID(ph.PhaseID),
		Name:       ph.Name,
		Intent:     ph.Intent,
		Order:      index,
		StartDay:   ph.StartDay,
		EndDay:     ph.EndDay,
		Milestones: []domain.Milestone{},
	}
	if ph.Order != nil {
		out.Order = *ph.Order
	}
	for _, ms := range ph.Milestones {
		ms.MilestoneID = defaultID(ms.MilestoneID)
		out.Milestones = append(out.Milestones, ms)
	}
	return out
}

// NormalizeTasks decodes a batch payload holding only tasks, either as a
// bare JSON array or under a "tasks" key. Used by monthly top-up generation;
// scheduling for tasks without one defaults relative to dayOffset.
func NormalizeTasks(raw []byte, dayOffset int, now time.Time) ([]domain.Task, error) {
	var batch struct {
		Tasks []wireTask `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &batch); err != nil || batch.Tasks == nil {
		if arrErr := json.Unmarshal(raw, &batch.Tasks); arrErr != nil {
			if err == nil {
				err = arrErr
			}
			return nil, fmt.Errorf("decode task batch: %w", err)
		}
	}
	ts := now.UTC().Format(time.RFC3339)
	out := make([]domain.Task, 0, len(batch.Tasks))
	for i, t := range batch.Tasks {
		out = append(out, defaultTask(t, dayOffset+i, ts))
	}
	return out, nil
}

// defaultTask fills a single task's gaps; index positions tasks without a
// schedule within their batch.
func defaultTask(t wireTask, index int, ts string) domain.Task {
	out := domain.Task{
		TaskID:           defaultID(t.TaskID),
		PhaseID:          t.PhaseID,
		Name:             t.Name,
		Type:             t.Type,
		Effort:           t.Effort,
		DurationMinutes:  t.DurationMinutes,
		DependsOnTaskIDs: t.DependsOnTaskIDs,
		SkillImpact:      t.SkillImpact,
		State:            t.State,
		LastUpdated:      t.LastUpdated,
	}
	if out.DependsOnTaskIDs == nil {
		out.DependsOnTaskIDs = []string{}
	}
	if out.SkillImpact == nil {
		out.SkillImpact = []domain.SkillImpact{}
	}
	if out.State == "" {
		out.State = domain.StateTodo
	}
	if out.LastUpdated == "" {
		out.LastUpdated = ts
	}
	if t.Details != nil {
		out.Details = *t.Details
	}
	if out.Details.Steps == nil {
		out.Details.Steps = []string{}
	}
	recommended := index
	if t.Schedule != nil && t.Schedule.RecommendedDay != nil {
		recommended = *t.Schedule.RecommendedDay
	}
	latest := recommended + 7
	if t.Schedule != nil && t.Schedule.LatestDay != nil {
		latest = *t.Schedule.LatestDay
	}
	out.Schedule = domain.Schedule{RecommendedDay: recommended, LatestDay: latest}
	if t.Schedule != nil && t.Schedule.EarliestDay != nil {
		d := *t.Schedule.EarliestDay
		out.Schedule.EarliestDay = &d
	}
	return out
}

func defaultSkill(s wireSkill) domain.Skill {
	out := domain.Skill{
		SkillID:      defaultID(s.SkillID),
		Name:         s.Name,
		Description:  s.Description,
		Level:        0,
		MaxLevel:     10,
		Parents:      s.Parents,
		ProgressRule: s.ProgressRule,
	}
	if s.Level != nil {
		out.Level = *s.Level
	}
	if s.MaxLevel != nil {
		out.MaxLevel = *s.MaxLevel
	}
	if out.Parents == nil {
		out.Parents = []string{}
	}
	return out
}

func defaultID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}
