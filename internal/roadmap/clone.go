package roadmap

import "axiom/internal/domain"

// Clone returns a deep copy of the project. Every transition function works
// on a copy so the caller's snapshot is never mutated in place.
func Clone(p domain.Project) domain.Project {
	out := p
	out.Tasks = make([]domain.Task, len(p.Tasks))
	for i, t := range p.Tasks {
		out.Tasks[i] = cloneTask(t)
	}
	out.Roadmap.Phases = make([]domain.Phase, len(p.Roadmap.Phases))
	for i, ph := range p.Roadmap.Phases {
		out.Roadmap.Phases[i] = clonePhase(ph)
	}
	out.SkillTree.Skills = make([]domain.Skill, len(p.SkillTree.Skills))
	for i, s := range p.SkillTree.Skills {
		out.SkillTree.Skills[i] = cloneSkill(s)
	}
	out.Progress.History = append([]domain.DailyHistory(nil), p.Progress.History...)
	out.Assumptions = append([]string(nil), p.Assumptions...)
	if p.TodayCardRules != nil {
		r := *p.TodayCardRules
		r.SelectionLogic = append([]string(nil), p.TodayCardRules.SelectionLogic...)
		out.TodayCardRules = &r
	}
	if p.CreatedFrom.TrainingProfile != nil {
		tp := *p.CreatedFrom.TrainingProfile
		out.CreatedFrom.TrainingProfile = &tp
	}
	if p.MasterPlan != nil {
		mp := *p.MasterPlan
		mp.Principles = append([]string(nil), p.MasterPlan.Principles...)
		mp.Phases = append([]domain.MasterPlanPhase(nil), p.MasterPlan.Phases...)
		mp.SkillProgression = append([]domain.SkillProgression(nil), p.MasterPlan.SkillProgression...)
		out.MasterPlan = &mp
	}
	return out
}

func cloneTask(t domain.Task) domain.Task {
	out := t
	out.DependsOnTaskIDs = append([]string(nil), t.DependsOnTaskIDs...)
	out.SkillImpact = append([]domain.SkillImpact(nil), t.SkillImpact...)
	out.Details.Steps = append([]string(nil), t.Details.Steps...)
	if t.Details.Training != nil {
		tr := *t.Details.Training
		out.Details.Training = &tr
	}
	if t.Schedule.EarliestDay != nil {
		d := *t.Schedule.EarliestDay
		out.Schedule.EarliestDay = &d
	}
	return out
}

func clonePhase(ph domain.Phase) domain.Phase {
	out := ph
	out.Milestones = append([]domain.Milestone(nil), ph.Milestones...)
	return out
}

func cloneSkill(s domain.Skill) domain.Skill {
	out := s
	out.Parents = append([]string(nil), s.Parents...)
	return out
}
