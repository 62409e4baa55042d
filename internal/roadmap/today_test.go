package roadmap_test

import (
	"testing"
	"time"

	"axiom/internal/domain"
	"axiom/internal/roadmap"
)

func todoTask(id string, typ domain.TaskType, recommendedDay int, deps ...string) domain.Task {
	return domain.Task{
		TaskID:           id,
		PhaseID:          "phase-1",
		Name:             id,
		Type:             typ,
		Effort:           domain.EffortMedium,
		DurationMinutes:  30,
		Schedule:         domain.Schedule{LatestDay: recommendedDay + 7, RecommendedDay: recommendedDay},
		DependsOnTaskIDs: deps,
		State:            domain.StateTodo,
	}
}

func projectWithTasks(tasks ...domain.Task) domain.Project {
	p := fixtureProject()
	p.Tasks = tasks
	return p
}

func TestTodayNumber(t *testing.T) {
	ref := time.Date(2024, 1, 8, 15, 30, 0, 0, time.UTC)
	if got := roadmap.TodayNumber("2024-01-01", ref); got != 7 {
		t.Fatalf("TodayNumber = %d, want 7", got)
	}
	// project starting in the future yields a negative offset
	if got := roadmap.TodayNumber("2024-01-15", ref); got != -7 {
		t.Fatalf("TodayNumber = %d, want -7", got)
	}
}

func TestDateFromDayRollsOverMonths(t *testing.T) {
	got := roadmap.DateFromDay("2024-01-25", 10)
	want := time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateFromDay = %s, want %s", got, want)
	}
}

func TestDayArithmeticRoundTrips(t *testing.T) {
	for _, day := range []int{0, 1, 30, 365} {
		d := roadmap.DateFromDay("2024-01-01", day)
		if got := roadmap.TodayNumber("2024-01-01", d); got != day {
			t.Fatalf("round trip for day %d gave %d", day, got)
		}
	}
}

func TestPickTodayTasksDueTodayScoresHighest(t *testing.T) {
	p := projectWithTasks(
		todoTask("later", domain.TaskBuild, 12),
		todoTask("today", domain.TaskTrain, 7),
		todoTask("soon", domain.TaskThink, 9),
	)
	got := roadmap.PickTodayTasks(p, 7)
	if len(got) != 3 {
		t.Fatalf("selected %d tasks, want 3", len(got))
	}
	if got[0].TaskID != "today" {
		t.Fatalf("first pick = %s, want the task due today", got[0].TaskID)
	}
}

func TestPickTodayTasksLessOverdueOutranksMoreOverdue(t *testing.T) {
	p := projectWithTasks(
		todoTask("overdue-10", domain.TaskBuild, 0),
		todoTask("overdue-1", domain.TaskThink, 9),
	)
	got := roadmap.PickTodayTasks(p, 10)
	if got[0].TaskID != "overdue-1" {
		t.Fatalf("first pick = %s, want the less overdue task", got[0].TaskID)
	}
}

func TestPickTodayTasksRespectsDependencies(t *testing.T) {
	blocker := todoTask("blocker", domain.TaskBuild, 5)
	blocked := todoTask("blocked", domain.TaskThink, 5, "blocker")
	for _, day := range []int{0, 5, 50} {
		p := projectWithTasks(blocker, blocked)
		for _, picked := range roadmap.PickTodayTasks(p, day) {
			if picked.TaskID == "blocked" {
				t.Fatalf("day %d: selected task with incomplete dependency", day)
			}
		}
	}
	// once the dependency is done the task becomes selectable
	p := projectWithTasks(blocker, blocked)
	p = roadmap.ApplyTaskState(p, "blocker", domain.StateDone, testNow)
	found := false
	for _, picked := range roadmap.PickTodayTasks(p, 5) {
		if picked.TaskID == "blocked" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected blocked task to be selectable after dependency done")
	}
}

func TestPickTodayTasksCapsAtThree(t *testing.T) {
	p := projectWithTasks(
		todoTask("a", domain.TaskBuild, 1),
		todoTask("b", domain.TaskThink, 2),
		todoTask("c", domain.TaskTrain, 3),
		todoTask("d", domain.TaskAdmin, 4),
		todoTask("e", domain.TaskRecover, 5),
	)
	if got := len(roadmap.PickTodayTasks(p, 3)); got != 3 {
		t.Fatalf("selected %d tasks, want 3", got)
	}
}

func TestPickTodayTasksDiversityFirst(t *testing.T) {
	p := projectWithTasks(
		todoTask("train-1", domain.TaskTrain, 7),
		todoTask("train-2", domain.TaskTrain, 7),
		todoTask("build-1", domain.TaskBuild, 7),
		todoTask("build-2", domain.TaskBuild, 7),
		todoTask("think-1", domain.TaskThink, 7),
	)
	got := roadmap.PickTodayTasks(p, 7)
	if len(got) != 3 {
		t.Fatalf("selected %d tasks, want 3", len(got))
	}
	seen := map[domain.TaskType]int{}
	for _, task := range got {
		seen[task.Type]++
	}
	if len(seen) != 3 {
		t.Fatalf("types selected = %v, want one of each distinct type", seen)
	}
}

func TestPickTodayTasksFillsFromSingleType(t *testing.T) {
	p := projectWithTasks(
		todoTask("t1", domain.TaskTrain, 1),
		todoTask("t2", domain.TaskTrain, 2),
		todoTask("t3", domain.TaskTrain, 3),
		todoTask("t4", domain.TaskTrain, 4),
	)
	got := roadmap.PickTodayTasks(p, 2)
	if len(got) != 3 {
		t.Fatalf("selected %d tasks, want 3 via fill pass", len(got))
	}
}

func TestPickTodayTasksEmptyProject(t *testing.T) {
	p := projectWithTasks()
	if got := roadmap.PickTodayTasks(p, 0); len(got) != 0 {
		t.Fatalf("selected %d tasks from empty project, want 0", len(got))
	}
}

func TestPickTodayTasksDeterministicTiebreak(t *testing.T) {
	p := projectWithTasks(
		todoTask("first", domain.TaskBuild, 7),
		todoTask("second", domain.TaskBuild, 7),
	)
	for i := 0; i < 5; i++ {
		got := roadmap.PickTodayTasks(p, 7)
		if got[0].TaskID != "first" || got[1].TaskID != "second" {
			t.Fatalf("tiebreak order not stable: %s, %s", got[0].TaskID, got[1].TaskID)
		}
	}
}
