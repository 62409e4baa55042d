package plan

import (
	"fmt"
	"strings"
	"time"

	"axiom/internal/domain"
)

// Issue is one validation failure, addressed by JSON field path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError rejects a normalized plan as a unit. No partial plan is
// ever accepted.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "plan validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Path+": "+is.Message)
	}
	return "plan validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a project after defaulting. It returns a *ValidationError
// listing every failure, or nil.
func Validate(p domain.Project) error {
	var issues []Issue
	add := func(path, format string, args ...any) {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if p.ProjectID == "" {
		add("projectId", "required")
	}
	if p.Name == "" {
		add("name", "required")
	}
	if !p.Status.Valid() {
		add("status", "invalid status %q", p.Status)
	}
	if p.TimeHorizonDays < 1 {
		add("timeHorizonDays", "must be at least 1")
	}
	if _, err := time.Parse("2006-01-02", p.StartDate); err != nil {
		add("startDate", "not a calendar date: %q", p.StartDate)
	}

	phaseIDs := make(map[string]bool, len(p.Roadmap.Phases))
	for i, ph := range p.Roadmap.Phases {
		path := fmt.Sprintf("roadmap.phases[%d]", i)
		if ph.PhaseID == "" {
			add(path+".phaseId", "required")
		}
		if phaseIDs[ph.PhaseID] {
			add(path+".phaseId", "duplicate id %q", ph.PhaseID)
		}
		phaseIDs[ph.PhaseID] = true
		if ph.StartDay > ph.EndDay {
			add(path, "startDay %d after endDay %d", ph.StartDay, ph.EndDay)
		}
	}

	taskIDs := make(map[string]bool, len(p.Tasks))
	for i, t := range p.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if t.TaskID == "" {
			add(path+".taskId", "required")
		}
		if taskIDs[t.TaskID] {
			add(path+".taskId", "duplicate id %q", t.TaskID)
		}
		taskIDs[t.TaskID] = true
		if !t.Type.Valid() {
			add(path+".type", "invalid type %q", t.Type)
		}
		if !t.Effort.Valid() {
			add(path+".effort", "invalid effort %q", t.Effort)
		}
		if !t.State.Valid() {
			add(path+".state", "invalid state %q", t.State)
		}
		if t.DurationMinutes < 1 {
			add(path+".durationMinutes", "must be at least 1")
		}
		if t.Schedule.EarliestDay != nil && *t.Schedule.EarliestDay > t.Schedule.LatestDay {
			add(path+".schedule", "earliestDay %d after latestDay %d", *t.Schedule.EarliestDay, t.Schedule.LatestDay)
		}
	}

	skillIDs := make(map[string]bool, len(p.SkillTree.Skills))
	for i, s := range p.SkillTree.Skills {
		path := fmt.Sprintf("skillTree.skills[%d]", i)
		if s.SkillID == "" {
			add(path+".skillId", "required")
		}
		if skillIDs[s.SkillID] {
			add(path+".skillId", "duplicate id %q", s.SkillID)
		}
		skillIDs[s.SkillID] = true
		if s.MaxLevel < 1 {
			add(path+".maxLevel", "must be at least 1")
		}
		if s.Level < 0 || s.Level > s.MaxLevel {
			add(path+".level", "level %d outside [0, %d]", s.Level, s.MaxLevel)
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
