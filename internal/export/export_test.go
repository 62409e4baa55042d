package export_test

import (
	"strings"
	"testing"
	"time"

	"axiom/internal/domain"
	"axiom/internal/export"
)

var testNow = time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)

func exportFixture() domain.Project {
	return domain.Project{
		ProjectID: "p1",
		Name:      "Marathon",
		StartDate: "2024-01-01",
		Roadmap: domain.Roadmap{Phases: []domain.Phase{
			{PhaseID: "phase-2", Name: "Build", Order: 1, StartDay: 31, EndDay: 60},
			{PhaseID: "phase-1", Name: "Base: weeks 1-4", Order: 0, StartDay: 0, EndDay: 30},
		}},
		Tasks: []domain.Task{
			{
				TaskID: "t-done", PhaseID: "phase-1", Name: "Shakeout run", Type: domain.TaskTrain,
				DurationMinutes: 30, Schedule: domain.Schedule{RecommendedDay: 1, LatestDay: 8},
				State: domain.StateDone,
			},
			{
				TaskID: "t-open", PhaseID: "phase-1", Name: "Long run, 90min", Type: domain.TaskTrain,
				DurationMinutes: 90, Schedule: domain.Schedule{RecommendedDay: 6, LatestDay: 13},
				Details: domain.TaskDetails{Steps: []string{"10min warmup", "70min steady"}},
				State:   domain.StateTodo,
			},
			{
				TaskID: "t-admin", PhaseID: "phase-2", Name: "Register for race", Type: domain.TaskAdmin,
				DurationMinutes: 15, Schedule: domain.Schedule{RecommendedDay: 35, LatestDay: 42},
				State: domain.StateSkipped,
			},
		},
	}
}

func TestICSSkipsDoneTasks(t *testing.T) {
	out := export.ICS(exportFixture(), nil, testNow)
	if !strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(out, "END:VCALENDAR") {
		t.Fatalf("malformed calendar envelope")
	}
	if strings.Contains(out, "UID:t-done@axiom") {
		t.Fatalf("done task exported")
	}
	if !strings.Contains(out, "UID:t-open@axiom") || !strings.Contains(out, "UID:t-admin@axiom") {
		t.Fatalf("open tasks missing from export:\n%s", out)
	}
	// day 6 from 2024-01-01 with 90 minutes duration
	if !strings.Contains(out, "DTSTART:20240107T000000") || !strings.Contains(out, "DTEND:20240107T013000") {
		t.Fatalf("event times wrong:\n%s", out)
	}
	if !strings.Contains(out, "SUMMARY:[Marathon] Long run\\, 90min") {
		t.Fatalf("summary missing or unescaped:\n%s", out)
	}
	if !strings.Contains(out, "DESCRIPTION:10min warmup\\n70min steady") {
		t.Fatalf("steps not joined into description:\n%s", out)
	}
	if strings.Contains(out, "\n") && !strings.Contains(out, "\r\n") {
		t.Fatalf("lines not CRLF separated")
	}
}

func TestICSTypeFilter(t *testing.T) {
	out := export.ICS(exportFixture(), []domain.TaskType{domain.TaskAdmin}, testNow)
	if strings.Contains(out, "UID:t-open@axiom") {
		t.Fatalf("filtered type exported")
	}
	if !strings.Contains(out, "UID:t-admin@axiom") {
		t.Fatalf("admin task missing")
	}
}

func TestGantt(t *testing.T) {
	out := export.Gantt(exportFixture())
	lines := strings.Split(out, "\n")
	if lines[0] != "gantt" || lines[1] != "    title Marathon" {
		t.Fatalf("header wrong:\n%s", out)
	}
	// sections follow phase order, with mermaid syntax characters stripped
	baseIdx := strings.Index(out, "section Base weeks 1-4")
	buildIdx := strings.Index(out, "section Build")
	if baseIdx == -1 || buildIdx == -1 || baseIdx > buildIdx {
		t.Fatalf("sections wrong:\n%s", out)
	}
	if !strings.Contains(out, "Shakeout run :done, 2024-01-02, 1d") {
		t.Fatalf("done task row wrong:\n%s", out)
	}
	if !strings.Contains(out, "Register for race :crit, 2024-02-05, 1d") {
		t.Fatalf("skipped task row wrong:\n%s", out)
	}
	if !strings.Contains(out, "Long run, 90min :2024-01-07, 1d") {
		t.Fatalf("open task row wrong:\n%s", out)
	}
}

func TestGanttCapsTasksPerPhase(t *testing.T) {
	p := exportFixture()
	p.Tasks = nil
	for i := 0; i < 15; i++ {
		p.Tasks = append(p.Tasks, domain.Task{
			TaskID: string(rune('a' + i)), PhaseID: "phase-1", Name: "Task", Type: domain.TaskTrain,
			DurationMinutes: 30, Schedule: domain.Schedule{RecommendedDay: i},
		})
	}
	out := export.Gantt(p)
	if got := strings.Count(out, "Task :"); got != 10 {
		t.Fatalf("tasks rendered = %d, want capped 10", got)
	}
}
