package roadmap_test

import (
	"reflect"
	"testing"
	"time"

	"axiom/internal/domain"
	"axiom/internal/roadmap"
)

var testNow = time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func fixtureProject() domain.Project {
	return domain.Project{
		ProjectID:       "proj-1",
		Name:            "Marathon",
		Status:          domain.ProjectActive,
		StartDate:       "2024-01-01",
		TimeHorizonDays: 90,
		Roadmap: domain.Roadmap{Phases: []domain.Phase{
			{PhaseID: "phase-1", Name: "Base", Order: 0, StartDay: 0, EndDay: 30, Milestones: []domain.Milestone{}},
			{PhaseID: "phase-2", Name: "Build", Order: 1, StartDay: 31, EndDay: 60, Milestones: []domain.Milestone{}},
		}},
		Tasks: []domain.Task{
			{
				TaskID: "task-1", PhaseID: "phase-1", Name: "Easy run", Type: domain.TaskTrain,
				Effort: domain.EffortLow, DurationMinutes: 45,
				Schedule:    domain.Schedule{EarliestDay: intPtr(5), LatestDay: 14, RecommendedDay: 7},
				SkillImpact: []domain.SkillImpact{{SkillID: "skill-1", Delta: 2}},
				State:       domain.StateTodo,
			},
			{
				TaskID: "task-2", PhaseID: "phase-1", Name: "Plan nutrition", Type: domain.TaskThink,
				Effort: domain.EffortMedium, DurationMinutes: 30,
				Schedule:         domain.Schedule{LatestDay: 20, RecommendedDay: 9},
				DependsOnTaskIDs: []string{"task-1"},
				State:            domain.StateTodo,
			},
		},
		SkillTree: domain.SkillTree{Skills: []domain.Skill{
			{SkillID: "skill-1", Name: "Endurance", Level: 3, MaxLevel: 10},
			{SkillID: "skill-2", Name: "Discipline", Level: 9, MaxLevel: 10},
		}},
		Progress: domain.Progress{History: []domain.DailyHistory{}},
	}
}

func TestApplyTaskStateDone(t *testing.T) {
	p := fixtureProject()
	out := roadmap.ApplyTaskState(p, "task-1", domain.StateDone, testNow)
	if got := out.Task("task-1").State; got != domain.StateDone {
		t.Fatalf("state = %s, want done", got)
	}
	if got := out.Skill("skill-1").Level; got != 5 {
		t.Fatalf("skill level = %d, want 5", got)
	}
	// input untouched
	if p.Task("task-1").State != domain.StateTodo || p.Skill("skill-1").Level != 3 {
		t.Fatalf("input project was mutated")
	}
}

func TestApplyTaskStateUnknownIDIsNoop(t *testing.T) {
	p := fixtureProject()
	out := roadmap.ApplyTaskState(p, "no-such-task", domain.StateDone, testNow)
	if !reflect.DeepEqual(out, p) {
		t.Fatalf("expected unchanged project for unknown task id")
	}
}

func TestApplyTaskStateDoneTwiceDoesNotDoubleApply(t *testing.T) {
	p := fixtureProject()
	once := roadmap.ApplyTaskState(p, "task-1", domain.StateDone, testNow)
	twice := roadmap.ApplyTaskState(once, "task-1", domain.StateDone, testNow)
	if got := twice.Skill("skill-1").Level; got != 5 {
		t.Fatalf("skill level after repeat = %d, want 5", got)
	}
}

func TestSkillLevelClampedAtMax(t *testing.T) {
	p := fixtureProject()
	p.Tasks[0].SkillImpact = []domain.SkillImpact{{SkillID: "skill-2", Delta: 5}}
	out := roadmap.ApplyTaskState(p, "task-1", domain.StateDone, testNow)
	if got := out.Skill("skill-2").Level; got != 10 {
		t.Fatalf("skill level = %d, want clamped 10", got)
	}
}

func TestSkipAppliesNoSkillDelta(t *testing.T) {
	p := fixtureProject()
	out := roadmap.ApplyTaskState(p, "task-1", domain.StateSkipped, testNow)
	if got := out.Task("task-1").State; got != domain.StateSkipped {
		t.Fatalf("state = %s, want skipped", got)
	}
	if got := out.Skill("skill-1").Level; got != 3 {
		t.Fatalf("skill level = %d, want unchanged 3", got)
	}
}

func TestUndoRestoresSkillLevels(t *testing.T) {
	p := fixtureProject()
	done := roadmap.ApplyTaskState(p, "task-1", domain.StateDone, testNow)
	undone := roadmap.Undo(done, "task-1", testNow.Add(time.Hour))
	if got := undone.Task("task-1").State; got != domain.StateTodo {
		t.Fatalf("state = %s, want todo", got)
	}
	if got := undone.Skill("skill-1").Level; got != 3 {
		t.Fatalf("skill level = %d, want restored 3", got)
	}
}

func TestUndoClampsAtZero(t *testing.T) {
	p := fixtureProject()
	p.SkillTree.Skills[0].Level = 1
	p.Tasks[0].SkillImpact = []domain.SkillImpact{{SkillID: "skill-1", Delta: 5}}
	done := roadmap.ApplyTaskState(p, "task-1", domain.StateDone, testNow)
	undone := roadmap.Undo(done, "task-1", testNow)
	if got := undone.Skill("skill-1").Level; got != 0 {
		t.Fatalf("skill level = %d, want clamped 0", got)
	}
}

func TestUndoSkippedAdjustsNoSkills(t *testing.T) {
	p := fixtureProject()
	skipped := roadmap.ApplyTaskState(p, "task-1", domain.StateSkipped, testNow)
	undone := roadmap.Undo(skipped, "task-1", testNow)
	if got := undone.Task("task-1").State; got != domain.StateTodo {
		t.Fatalf("state = %s, want todo", got)
	}
	if got := undone.Skill("skill-1").Level; got != 3 {
		t.Fatalf("skill level = %d, want 3", got)
	}
}

func TestUndoTodoIsNoop(t *testing.T) {
	p := fixtureProject()
	out := roadmap.Undo(p, "task-1", testNow)
	if !reflect.DeepEqual(out, p) {
		t.Fatalf("undo of a todo task should not change the project")
	}
}

func TestAddHistoryReplacesSameDate(t *testing.T) {
	p := fixtureProject()
	first := domain.DailyHistory{Date: "2024-01-08", CompletedTaskIDs: []string{"task-1"}, AutoReplanSummary: "a"}
	second := domain.DailyHistory{Date: "2024-01-08", ZeroDay: true, AutoReplanSummary: "b"}
	out := roadmap.AddHistory(roadmap.AddHistory(p, first, testNow), second, testNow)
	if len(out.Progress.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(out.Progress.History))
	}
	if got := out.Progress.History[0].AutoReplanSummary; got != "b" {
		t.Fatalf("summary = %q, want replacement entry", got)
	}
}
