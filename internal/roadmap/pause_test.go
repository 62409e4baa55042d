package roadmap_test

import (
	"testing"
	"time"

	"axiom/internal/domain"
	"axiom/internal/roadmap"
)

func TestPauseShiftsEverything(t *testing.T) {
	p := fixtureProject()
	// include a done task: the shift is a calendar-wide rebase, done tasks move too
	p.Tasks[0].State = domain.StateDone
	out := roadmap.PauseProject(p, 7, "travel", testNow)

	if out.Status != domain.ProjectPaused || !out.Pause.IsPaused {
		t.Fatalf("status = %s paused=%v, want paused", out.Status, out.Pause.IsPaused)
	}
	if out.TimeHorizonDays != p.TimeHorizonDays+7 {
		t.Fatalf("horizon = %d, want %d", out.TimeHorizonDays, p.TimeHorizonDays+7)
	}
	for i := range p.Tasks {
		before, after := p.Tasks[i], out.Tasks[i]
		if after.TaskID != before.TaskID {
			t.Fatalf("task id changed on pause")
		}
		if after.Schedule.RecommendedDay != before.Schedule.RecommendedDay+7 {
			t.Fatalf("task %s recommendedDay = %d, want %d", after.TaskID, after.Schedule.RecommendedDay, before.Schedule.RecommendedDay+7)
		}
		if after.Schedule.LatestDay != before.Schedule.LatestDay+7 {
			t.Fatalf("task %s latestDay not shifted", after.TaskID)
		}
		if before.Schedule.EarliestDay != nil && *after.Schedule.EarliestDay != *before.Schedule.EarliestDay+7 {
			t.Fatalf("task %s earliestDay not shifted", after.TaskID)
		}
	}
	for i := range p.Roadmap.Phases {
		before, after := p.Roadmap.Phases[i], out.Roadmap.Phases[i]
		if after.StartDay != before.StartDay+7 || after.EndDay != before.EndDay+7 {
			t.Fatalf("phase %s boundaries not shifted by 7", after.PhaseID)
		}
	}
	if out.Pause.PauseUntil != testNow.AddDate(0, 0, 7).Format("2006-01-02") {
		t.Fatalf("pauseUntil = %s", out.Pause.PauseUntil)
	}
}

func TestPauseRejectsNonPositiveDays(t *testing.T) {
	p := fixtureProject()
	out := roadmap.PauseProject(p, 0, "", testNow)
	if out.Status != domain.ProjectActive || out.TimeHorizonDays != p.TimeHorizonDays {
		t.Fatalf("pause with days<1 should be a no-op")
	}
}

func TestResumeKeepsShiftedDates(t *testing.T) {
	p := fixtureProject()
	paused := roadmap.PauseProject(p, 5, "sick", testNow)
	resumed := roadmap.ResumeProject(paused, testNow.Add(24*time.Hour))
	if resumed.Status != domain.ProjectActive || resumed.Pause.IsPaused {
		t.Fatalf("resume did not reactivate project")
	}
	// early resume must not rewind the schedule
	if got := resumed.Tasks[0].Schedule.RecommendedDay; got != p.Tasks[0].Schedule.RecommendedDay+5 {
		t.Fatalf("recommendedDay = %d, want shift preserved", got)
	}
	if resumed.TimeHorizonDays != p.TimeHorizonDays+5 {
		t.Fatalf("horizon rewound on resume")
	}
}

func TestActivelyPaused(t *testing.T) {
	p := fixtureProject()
	if roadmap.ActivelyPaused(p, testNow) {
		t.Fatalf("active project reported paused")
	}
	paused := roadmap.PauseProject(p, 3, "", testNow)
	if !roadmap.ActivelyPaused(paused, testNow) {
		t.Fatalf("paused project not reported paused")
	}
	if !roadmap.ActivelyPaused(paused, testNow.AddDate(0, 0, 3)) {
		t.Fatalf("pauseUntil day itself should still count as paused")
	}
	if roadmap.ActivelyPaused(paused, testNow.AddDate(0, 0, 4)) {
		t.Fatalf("past pauseUntil should no longer count as paused")
	}
	// open-ended pause
	paused.Pause.PauseUntil = ""
	if !roadmap.ActivelyPaused(paused, testNow.AddDate(0, 0, 400)) {
		t.Fatalf("open-ended pause should stay paused")
	}
}

func TestDuplicateRemapsAllIDs(t *testing.T) {
	p := fixtureProject()
	p.Roadmap.Phases[0].Milestones = []domain.Milestone{{MilestoneID: "ms-1", Name: "5k"}}
	p.SkillTree.Skills[0].Parents = []string{"skill-2"}
	p.Tasks[0].State = domain.StateDone
	p.SkillTree.Skills[0].Level = 5

	out := roadmap.Duplicate(p, testNow)
	if out.ProjectID == p.ProjectID {
		t.Fatalf("duplicate kept project id")
	}
	if out.Name != p.Name+" (Copy)" {
		t.Fatalf("name = %q", out.Name)
	}
	old := map[string]bool{"proj-1": true, "phase-1": true, "phase-2": true, "task-1": true, "task-2": true, "skill-1": true, "skill-2": true, "ms-1": true}
	for _, ph := range out.Roadmap.Phases {
		if old[ph.PhaseID] {
			t.Fatalf("phase id %s not remapped", ph.PhaseID)
		}
		for _, ms := range ph.Milestones {
			if old[ms.MilestoneID] {
				t.Fatalf("milestone id not remapped")
			}
		}
	}
	for i, task := range out.Tasks {
		if old[task.TaskID] || old[task.PhaseID] {
			t.Fatalf("task ids not remapped: %s/%s", task.TaskID, task.PhaseID)
		}
		for _, dep := range task.DependsOnTaskIDs {
			if old[dep] {
				t.Fatalf("dependency not remapped")
			}
		}
		if task.State != domain.StateTodo {
			t.Fatalf("task %d state = %s, want todo", i, task.State)
		}
	}
	// dependency still points at the duplicate of task-1
	if out.Tasks[1].DependsOnTaskIDs[0] != out.Tasks[0].TaskID {
		t.Fatalf("dependency graph broken by remap")
	}
	for _, s := range out.SkillTree.Skills {
		if old[s.SkillID] {
			t.Fatalf("skill id not remapped")
		}
		if s.Level != 0 {
			t.Fatalf("skill level = %d, want reset 0", s.Level)
		}
	}
	if out.SkillTree.Skills[0].Parents[0] != out.SkillTree.Skills[1].SkillID {
		t.Fatalf("skill parent not remapped")
	}
	if len(out.Progress.History) != 0 {
		t.Fatalf("history not cleared")
	}
}

func TestPhaseAndProjectProgress(t *testing.T) {
	p := fixtureProject()
	p.Tasks[0].State = domain.StateDone
	if got := roadmap.PhaseProgress(p.Roadmap.Phases[0], p.Tasks); got != 50 {
		t.Fatalf("phase progress = %d, want 50", got)
	}
	if got := roadmap.PhaseProgress(p.Roadmap.Phases[1], p.Tasks); got != 0 {
		t.Fatalf("empty phase progress = %d, want 0", got)
	}
	if got := roadmap.ProjectProgress(p); got != 50 {
		t.Fatalf("project progress = %d, want 50", got)
	}
}
