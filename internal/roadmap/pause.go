package roadmap

import (
	"time"

	"axiom/internal/domain"
)

// PauseProject suspends the project and rebases its whole calendar forward by
// the requested number of days: every task's schedule fields (done tasks
// included), every phase boundary, and the time horizon. Identifiers are
// never touched. The shift is committed at pause time from the requested
// duration; resuming early does not rewind it.
func PauseProject(p domain.Project, days int, reason string, now time.Time) domain.Project {
	if days < 1 {
		return p
	}
	out := Clone(p)
	for i := range out.Tasks {
		s := &out.Tasks[i].Schedule
		if s.EarliestDay != nil {
			d := *s.EarliestDay + days
			s.EarliestDay = &d
		}
		s.LatestDay += days
		s.RecommendedDay += days
	}
	for i := range out.Roadmap.Phases {
		out.Roadmap.Phases[i].StartDay += days
		out.Roadmap.Phases[i].EndDay += days
	}
	out.TimeHorizonDays += days
	out.Status = domain.ProjectPaused
	out.Pause = domain.Pause{
		IsPaused:   true,
		PauseUntil: now.UTC().AddDate(0, 0, days).Format("2006-01-02"),
		Reason:     reason,
	}
	out.UpdatedAt = now.UTC().Format(time.RFC3339)
	return out
}

// ResumeProject reactivates a paused project. The forward shift applied by
// PauseProject stays in place.
func ResumeProject(p domain.Project, now time.Time) domain.Project {
	out := Clone(p)
	out.Status = domain.ProjectActive
	out.Pause = domain.Pause{IsPaused: false}
	out.UpdatedAt = now.UTC().Format(time.RFC3339)
	return out
}

// ActivelyPaused reports whether the pause is still in effect: paused with no
// end date, or paused and today has not passed pauseUntil.
func ActivelyPaused(p domain.Project, today time.Time) bool {
	if !p.Pause.IsPaused {
		return false
	}
	if p.Pause.PauseUntil == "" {
		return true
	}
	until, err := time.Parse("2006-01-02", p.Pause.PauseUntil)
	if err != nil {
		return true
	}
	todayMid := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return !todayMid.After(until)
}
