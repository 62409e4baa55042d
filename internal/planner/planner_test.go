package planner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"axiom/internal/domain"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

const validPlanResponse = `{
  "assumptions": ["three sessions a week"],
  "project": {
    "name": "10k under 50 minutes",
    "oneLineIntent": "Run a 10k in under 50 minutes",
    "status": "active",
    "timeHorizonDays": 60,
    "startDate": "2024-03-01",
    "roadmap": {"phases": [{"phaseId": "phase_base", "name": "Base", "startDay": 0, "endDay": 30}]},
    "tasks": [{
      "taskId": "task_1", "phaseId": "phase_base", "name": "40min @ 6:30/km",
      "type": "train", "effort": "medium", "durationMinutes": 40,
      "schedule": {"latestDay": 9, "recommendedDay": 2},
      "skillImpact": [{"skillId": "skill_endurance", "delta": 1}]
    }],
    "skillTree": {"skills": [{"skillId": "skill_endurance", "name": "Endurance"}]}
  }
}`

func newTestPlanner(responses ...string) (*Planner, *ScriptClient) {
	client := &ScriptClient{Responses: responses}
	pl := New(client).WithClock(func() time.Time { return testNow })
	return pl, client
}

func TestCreatePlan(t *testing.T) {
	pl, client := newTestPlanner(validPlanResponse)
	req := CreateRequest{UserText: "run a 10k under 50 minutes", TimeHorizonDays: 60, StartDate: "2024-03-01"}
	p, err := pl.CreatePlan(context.Background(), req)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if p.Name != "10k under 50 minutes" || len(p.Tasks) != 1 {
		t.Fatalf("plan not reconciled: %q %d tasks", p.Name, len(p.Tasks))
	}
	if p.TimeHorizonDays != 60 || p.StartDate != "2024-03-01" {
		t.Fatalf("request fields not authoritative: %d %s", p.TimeHorizonDays, p.StartDate)
	}
	if p.CreatedFrom.RawInput != "run a 10k under 50 minutes" {
		t.Fatalf("createdFrom not stamped")
	}
	if len(client.Prompts) != 1 || !strings.Contains(client.Prompts[0], "MODE: create") {
		t.Fatalf("unexpected prompts: %d", len(client.Prompts))
	}
}

func TestCreatePlanRepairsBrokenOutput(t *testing.T) {
	broken := "```json\n" + validPlanResponse[:len(validPlanResponse)-10] + "\n```"
	pl, client := newTestPlanner(broken, validPlanResponse)
	_, err := pl.CreatePlan(context.Background(), CreateRequest{UserText: "x", TimeHorizonDays: 60})
	if err != nil {
		t.Fatalf("CreatePlan with repair round: %v", err)
	}
	if len(client.Prompts) != 2 || !strings.Contains(client.Prompts[1], "The following JSON is invalid") {
		t.Fatalf("repair round not attempted: %d prompts", len(client.Prompts))
	}
}

func TestCreatePlanGivesUpAfterOneRepair(t *testing.T) {
	pl, client := newTestPlanner("not json", "still not json")
	_, err := pl.CreatePlan(context.Background(), CreateRequest{UserText: "x", TimeHorizonDays: 60})
	if err == nil {
		t.Fatalf("expected error after failed repair")
	}
	if len(client.Prompts) != 2 {
		t.Fatalf("prompts = %d, want exactly one repair round", len(client.Prompts))
	}
}

func TestUpdatePlanRecordsCheckIn(t *testing.T) {
	pl, _ := newTestPlanner(validPlanResponse)
	seed, err := pl.CreatePlan(context.Background(), CreateRequest{UserText: "x", TimeHorizonDays: 60})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// model response carries no history entry for the check-in date
	pl, client := newTestPlanner(validPlanResponse)
	check := domain.DailyHistory{Date: "2024-03-02", CompletedTaskIDs: []string{"task_1"}}
	got, err := pl.UpdatePlan(context.Background(), seed, check, "less volume")
	if err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}
	if got.ProjectID != seed.ProjectID {
		t.Fatalf("identity lost on update")
	}
	found := false
	for _, h := range got.Progress.History {
		if h.Date == "2024-03-02" {
			found = true
		}
	}
	if !found {
		t.Fatalf("check-in missing from history: %+v", got.Progress.History)
	}
	if !strings.Contains(client.Prompts[0], "Adjustment Request: less volume") {
		t.Fatalf("adjustment text not in prompt")
	}
}

const masterResponse = `{
  "name": "Marathon in 12 months",
  "oneLineIntent": "Finish a marathon",
  "assumptions": [],
  "masterPlan": {
    "overview": "Progressive base building toward a marathon block.",
    "principles": ["increase volume by at most 10% per week"],
    "weeklyTemplate": "Mon rest, Tue run, Thu run, Sat long run",
    "phases": [{"phaseNumber": 1, "name": "Base", "startWeek": 1, "endWeek": 8, "focus": "Aerobic base", "weeklyPattern": "3 runs", "targetVolume": "25km/week", "keyWorkouts": ["long run"], "progressionRules": "add 2km weekly"}],
    "skillProgression": []
  },
  "roadmap": {"phases": [{"phaseId": "phase_1", "name": "Base", "startDay": 0, "endDay": 56}]},
  "skillTree": {"skills": [{"skillId": "skill_aerobic", "name": "Aerobic capacity"}]}
}`

func TestCreateMaster(t *testing.T) {
	pl, _ := newTestPlanner(masterResponse)
	p, err := pl.CreateMaster(context.Background(), CreateRequest{UserText: "marathon", TimeHorizonDays: 365, StartDate: "2024-03-01"})
	if err != nil {
		t.Fatalf("CreateMaster: %v", err)
	}
	if p.MasterPlan == nil || p.MasterPlan.Overview == "" {
		t.Fatalf("master plan not kept")
	}
	if len(p.Tasks) != 0 || p.GeneratedUntilDay != 0 {
		t.Fatalf("master project must start with no tasks: %d tasks, cursor %d", len(p.Tasks), p.GeneratedUntilDay)
	}
	if p.TodayCardRules == nil || p.TodayCardRules.MaxTasks != 3 {
		t.Fatalf("today card rules not defaulted")
	}
}

const monthResponse = `{
  "tasks": [
    {"name": "45min @ 6:15/km Zone 2", "type": "train", "effort": "medium", "durationMinutes": 45,
     "schedule": {"latestDay": 8, "recommendedDay": 2}, "skillImpact": [{"skillId": "skill_aerobic", "delta": 1}]},
    {"name": "6x400m @ 4:30/km, 90s rest", "type": "train", "effort": "high", "durationMinutes": 50}
  ]
}`

func TestGenerateMonth(t *testing.T) {
	pl, _ := newTestPlanner(masterResponse)
	p, err := pl.CreateMaster(context.Background(), CreateRequest{UserText: "marathon", TimeHorizonDays: 365, StartDate: "2024-03-01"})
	if err != nil {
		t.Fatalf("seed master: %v", err)
	}

	pl, client := newTestPlanner(monthResponse)
	got, err := pl.GenerateMonth(context.Background(), p, 30)
	if err != nil {
		t.Fatalf("GenerateMonth: %v", err)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("tasks appended = %d, want 2", len(got.Tasks))
	}
	if got.GeneratedUntilDay != 30 {
		t.Fatalf("cursor = %d, want 30", got.GeneratedUntilDay)
	}
	if got.Tasks[0].TaskID == "" || got.Tasks[0].PhaseID != "phase_1" {
		t.Fatalf("batch defaults not applied: %+v", got.Tasks[0])
	}
	// task without schedule positions after the batch start
	if got.Tasks[1].Schedule.RecommendedDay < 1 {
		t.Fatalf("unscheduled batch task not positioned: %+v", got.Tasks[1].Schedule)
	}
	if got.LastGeneratedContext == "" {
		t.Fatalf("generation context not recorded")
	}
	if !strings.Contains(client.Prompts[0], "GENERATE FOR DAYS 1 to 30") {
		t.Fatalf("day window missing from prompt")
	}

	// cursor drives the next window
	pl, client = newTestPlanner(monthResponse)
	if _, err := pl.GenerateMonth(context.Background(), got, 30); err != nil {
		t.Fatalf("second month: %v", err)
	}
	if !strings.Contains(client.Prompts[0], "GENERATE FOR DAYS 31 to 60") {
		t.Fatalf("cursor not advanced in prompt")
	}
}

func TestGenerateMonthGuards(t *testing.T) {
	pl, _ := newTestPlanner(monthResponse)
	if _, err := pl.GenerateMonth(context.Background(), domain.Project{TimeHorizonDays: 30}, 30); err != ErrNoMasterPlan {
		t.Fatalf("err = %v, want ErrNoMasterPlan", err)
	}
	p := domain.Project{TimeHorizonDays: 30, GeneratedUntilDay: 30, MasterPlan: &domain.MasterPlan{}}
	if _, err := pl.GenerateMonth(context.Background(), p, 30); err != ErrHorizonReached {
		t.Fatalf("err = %v, want ErrHorizonReached", err)
	}
}

func TestGeminiClient(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGemini("test-key", "gemini-2.0-flash")
	g.BaseURL = srv.URL
	text, err := g.GenerateText(context.Background(), "prompt", 1024)
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != `{"ok":true}` {
		t.Fatalf("text = %q", text)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestGeminiClientRequiresKey(t *testing.T) {
	g := NewGemini("", "")
	if _, err := g.GenerateText(context.Background(), "p", 10); err != ErrNoAPIKey {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestGeminiClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()
	g := NewGemini("k", "m")
	g.BaseURL = srv.URL
	if _, err := g.GenerateText(context.Background(), "p", 10); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}
