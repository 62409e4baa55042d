// Package export renders projects into external formats: an iCalendar feed
// for calendar apps and a Mermaid Gantt definition for documentation.
package export

import (
	"fmt"
	"strings"
	"time"

	"axiom/internal/domain"
	"axiom/internal/roadmap"
)

// ICS renders the project's remaining tasks as calendar events. Done tasks
// are skipped; typeFilter, when non-empty, limits the output to those task
// types. Lines are CRLF-joined per RFC 5545.
func ICS(p domain.Project, typeFilter []domain.TaskType, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Axiom//Axiom CLI//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + escapeICS(p.Name),
	}

	allowed := map[domain.TaskType]bool{}
	for _, t := range typeFilter {
		allowed[t] = true
	}
	stamp := formatICSDate(now.UTC())

	for _, task := range p.Tasks {
		if task.State == domain.StateDone {
			continue
		}
		if len(allowed) > 0 && !allowed[task.Type] {
			continue
		}
		start := roadmap.DateFromDay(p.StartDate, task.Schedule.RecommendedDay)
		end := start.Add(time.Duration(task.DurationMinutes) * time.Minute)
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+task.TaskID+"@axiom",
			"DTSTAMP:"+stamp,
			"DTSTART:"+formatICSDate(start),
			"DTEND:"+formatICSDate(end),
			"SUMMARY:"+escapeICS(fmt.Sprintf("[%s] %s", p.Name, task.Name)),
			"DESCRIPTION:"+escapeICS(strings.Join(task.Details.Steps, "\n")),
			"END:VEVENT",
		)
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n")
}

func formatICSDate(t time.Time) string {
	return t.Format("20060102T150405")
}

// escapeICS escapes the characters RFC 5545 treats specially in text values.
func escapeICS(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}
