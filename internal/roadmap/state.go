package roadmap

import (
	"time"

	"axiom/internal/domain"
)

// ApplyTaskState marks a task done or skipped and, on done, applies each
// skill-impact delta clamped to [0, maxLevel]. Unknown task ids are a silent
// no-op so the UI can retry idempotently after a replan removed the task.
// A task already in the requested state, or already done, is left untouched
// to avoid double-applying skill deltas.
func ApplyTaskState(p domain.Project, taskID string, newState domain.TaskState, now time.Time) domain.Project {
	if newState != domain.StateDone && newState != domain.StateSkipped {
		return p
	}
	task := p.Task(taskID)
	if task == nil || task.State != domain.StateTodo {
		return p
	}
	out := Clone(p)
	ts := now.UTC().Format(time.RFC3339)
	t := out.Task(taskID)
	t.State = newState
	t.LastUpdated = ts
	if newState == domain.StateDone {
		for _, impact := range t.SkillImpact {
			if s := out.Skill(impact.SkillID); s != nil {
				s.Level = clamp(s.Level+impact.Delta, 0, s.MaxLevel)
			}
		}
	}
	out.UpdatedAt = ts
	return out
}

// Undo reverts a done or skipped task to todo. A done task's skill deltas are
// reversed (clamped at zero); skips never applied one, so nothing to reverse.
func Undo(p domain.Project, taskID string, now time.Time) domain.Project {
	task := p.Task(taskID)
	if task == nil || task.State == domain.StateTodo {
		return p
	}
	out := Clone(p)
	ts := now.UTC().Format(time.RFC3339)
	t := out.Task(taskID)
	if t.State == domain.StateDone {
		for _, impact := range t.SkillImpact {
			if s := out.Skill(impact.SkillID); s != nil {
				s.Level = clamp(s.Level-impact.Delta, 0, s.MaxLevel)
			}
		}
	}
	t.State = domain.StateTodo
	t.LastUpdated = ts
	out.UpdatedAt = ts
	return out
}

// AddHistory appends a daily check-in, replacing any prior entry for the
// same date.
func AddHistory(p domain.Project, entry domain.DailyHistory, now time.Time) domain.Project {
	out := Clone(p)
	kept := out.Progress.History[:0]
	for _, h := range out.Progress.History {
		if h.Date != entry.Date {
			kept = append(kept, h)
		}
	}
	out.Progress.History = append(kept, entry)
	out.UpdatedAt = now.UTC().Format(time.RFC3339)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
