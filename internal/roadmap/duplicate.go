package roadmap

import (
	"time"

	"github.com/google/uuid"

	"axiom/internal/domain"
)

// Duplicate returns a fresh copy of a project with every phase, task, skill
// and milestone assigned a new id. Cross references (task phase, dependency,
// skill impact, skill parents) are remapped through the same id tables, so
// the copy's internal graph mirrors the original. Task states reset to todo,
// skill levels to zero, history is cleared.
func Duplicate(p domain.Project, now time.Time) domain.Project {
	out := Clone(p)
	ts := now.UTC().Format(time.RFC3339)

	phaseIDs := make(map[string]string, len(out.Roadmap.Phases))
	taskIDs := make(map[string]string, len(out.Tasks))
	skillIDs := make(map[string]string, len(out.SkillTree.Skills))
	for _, ph := range out.Roadmap.Phases {
		phaseIDs[ph.PhaseID] = uuid.New().String()
	}
	for _, t := range out.Tasks {
		taskIDs[t.TaskID] = uuid.New().String()
	}
	for _, s := range out.SkillTree.Skills {
		skillIDs[s.SkillID] = uuid.New().String()
	}

	out.ProjectID = uuid.New().String()
	out.Name = p.Name + " (Copy)"
	out.CreatedAt = ts
	out.UpdatedAt = ts
	out.StartDate = now.UTC().Format("2006-01-02")
	out.Status = domain.ProjectActive
	out.Pause = domain.Pause{IsPaused: false}
	out.Progress = domain.Progress{History: []domain.DailyHistory{}}
	out.SyncedAt = ""

	for i := range out.Roadmap.Phases {
		ph := &out.Roadmap.Phases[i]
		ph.PhaseID = phaseIDs[ph.PhaseID]
		for j := range ph.Milestones {
			ph.Milestones[j].MilestoneID = uuid.New().String()
		}
	}
	for i := range out.Tasks {
		t := &out.Tasks[i]
		t.TaskID = taskIDs[t.TaskID]
		t.PhaseID = remap(phaseIDs, t.PhaseID)
		for j, dep := range t.DependsOnTaskIDs {
			t.DependsOnTaskIDs[j] = remap(taskIDs, dep)
		}
		for j := range t.SkillImpact {
			t.SkillImpact[j].SkillID = remap(skillIDs, t.SkillImpact[j].SkillID)
		}
		t.State = domain.StateTodo
		t.LastUpdated = ts
	}
	for i := range out.SkillTree.Skills {
		s := &out.SkillTree.Skills[i]
		s.SkillID = skillIDs[s.SkillID]
		for j, parent := range s.Parents {
			s.Parents[j] = remap(skillIDs, parent)
		}
		s.Level = 0
	}
	return out
}

// remap keeps dangling references as-is rather than dropping them; they stay
// tolerated, filterable conditions like in the original project.
func remap(table map[string]string, id string) string {
	if mapped, ok := table[id]; ok {
		return mapped
	}
	return id
}
