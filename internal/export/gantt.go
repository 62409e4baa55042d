package export

import (
	"fmt"
	"sort"
	"strings"

	"axiom/internal/domain"
	"axiom/internal/roadmap"
)

// maxGanttTasksPerPhase keeps long phases readable in the rendered chart.
const maxGanttTasksPerPhase = 10

// Gantt renders a Mermaid gantt definition: one section per phase, tasks
// ordered by recommended day. Done tasks render as done, skipped as crit.
func Gantt(p domain.Project) string {
	lines := []string{
		"gantt",
		"    title " + p.Name,
		"    dateFormat YYYY-MM-DD",
		"    axisFormat %m/%d",
	}

	phases := make([]domain.Phase, len(p.Roadmap.Phases))
	copy(phases, p.Roadmap.Phases)
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Order < phases[j].Order })

	for _, phase := range phases {
		lines = append(lines, "    section "+sanitizeGantt(phase.Name))

		var tasks []domain.Task
		for _, t := range p.Tasks {
			if t.PhaseID == phase.PhaseID {
				tasks = append(tasks, t)
			}
		}
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Schedule.RecommendedDay < tasks[j].Schedule.RecommendedDay
		})
		if len(tasks) > maxGanttTasksPerPhase {
			tasks = tasks[:maxGanttTasksPerPhase]
		}

		for _, t := range tasks {
			start := roadmap.DateFromDay(p.StartDate, t.Schedule.RecommendedDay)
			// 8h working days
			days := (t.DurationMinutes + 8*60 - 1) / (8 * 60)
			if days < 1 {
				days = 1
			}
			status := ""
			switch t.State {
			case domain.StateDone:
				status = "done, "
			case domain.StateSkipped:
				status = "crit, "
			}
			lines = append(lines, fmt.Sprintf("    %s :%s%s, %dd",
				truncateGantt(sanitizeGantt(t.Name), 30), status, start.Format("2006-01-02"), days))
		}
	}
	return strings.Join(lines, "\n")
}

// sanitizeGantt strips characters Mermaid treats as syntax.
func sanitizeGantt(s string) string {
	return strings.NewReplacer(":", "", "[", "", "]", "").Replace(s)
}

func truncateGantt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
