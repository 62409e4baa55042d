package roadmap

import (
	"sort"
	"time"

	"axiom/internal/domain"
)

// MaxTodayTasks caps the today card.
const MaxTodayTasks = 3

// TodayNumber converts a calendar date into a day offset from the project
// start. Both dates are truncated to UTC midnight; the result may be negative
// (start in the future) or exceed the time horizon (overrun).
func TodayNumber(startDate string, ref time.Time) int {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0
	}
	startMid := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	refMid := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return int(refMid.Sub(startMid).Hours() / 24)
}

// DateFromDay maps a day offset back to a calendar date, calendar-correct
// across month and year boundaries.
func DateFromDay(startDate string, day int) time.Time {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}
	}
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
}

// PickTodayTasks selects up to three actionable tasks for the given day.
// Only todo tasks whose dependencies are all done are candidates. A task due
// today scores 1000; overdue tasks score 1000-|overdue|, future tasks
// 500-distance, so anything due or overdue outranks anything future. The
// first pass picks at most one task per type, the second fills remaining
// slots in score order. Stable sort keeps equal scores in source order, so
// the selection is deterministic for a given (project, day).
func PickTodayTasks(p domain.Project, todayNumber int) []domain.Task {
	done := make(map[string]bool)
	for _, t := range p.Tasks {
		if t.State == domain.StateDone {
			done[t.TaskID] = true
		}
	}

	var available []domain.Task
	for _, t := range p.Tasks {
		if t.State != domain.StateTodo {
			continue
		}
		if depsSatisfied(t, done) {
			available = append(available, t)
		}
	}

	sort.SliceStable(available, func(i, j int) bool {
		return taskScore(available[i], todayNumber) > taskScore(available[j], todayNumber)
	})

	selected := make([]domain.Task, 0, MaxTodayTasks)
	picked := make(map[string]bool)
	usedTypes := make(map[domain.TaskType]bool)
	for _, t := range available {
		if len(selected) >= MaxTodayTasks {
			break
		}
		if usedTypes[t.Type] {
			continue
		}
		selected = append(selected, t)
		picked[t.TaskID] = true
		usedTypes[t.Type] = true
	}
	for _, t := range available {
		if len(selected) >= MaxTodayTasks {
			break
		}
		if picked[t.TaskID] {
			continue
		}
		selected = append(selected, t)
		picked[t.TaskID] = true
	}
	return selected
}

func depsSatisfied(t domain.Task, done map[string]bool) bool {
	for _, dep := range t.DependsOnTaskIDs {
		if !done[dep] {
			return false
		}
	}
	return true
}

func taskScore(t domain.Task, todayNumber int) int {
	dayDiff := t.Schedule.RecommendedDay - todayNumber
	if dayDiff <= 0 {
		return 1000 + dayDiff // 1000 - |dayDiff|
	}
	return 500 - dayDiff
}
