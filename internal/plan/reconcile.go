package plan

import (
	"time"

	"github.com/google/uuid"

	"axiom/internal/domain"
)

// CreateParams is the user input a brand-new plan was generated from. It is
// stamped into the project so later regenerations can see the original ask.
// StartDate and TimeHorizonDays, when set, take precedence over whatever the
// payload claims.
type CreateParams struct {
	RawInput        string
	Constraints     string
	TrainingProfile *domain.TrainingProfile
	StartDate       string
	TimeHorizonDays int
}

// ReconcileCreate turns a generated payload into a new project. The payload
// never controls identity: id, timestamps and start date are assigned here.
func ReconcileCreate(raw []byte, params CreateParams, now time.Time) (domain.Project, error) {
	var env envelope
	wp, assumptions, err := decode(raw, &env)
	if err != nil {
		return domain.Project{}, err
	}
	p := applyDefaults(wp, now)
	ts := now.UTC().Format(time.RFC3339)

	p.ProjectID = uuid.New().String()
	p.CreatedAt = ts
	p.UpdatedAt = ts
	p.StartDate = now.UTC().Format("2006-01-02")
	if params.StartDate != "" {
		p.StartDate = params.StartDate
	}
	if params.TimeHorizonDays > 0 {
		p.TimeHorizonDays = params.TimeHorizonDays
	}
	p.Status = domain.ProjectActive
	p.Pause = domain.Pause{IsPaused: false}
	p.Progress = domain.Progress{History: []domain.DailyHistory{}}
	p.CreatedFrom = domain.CreatedFrom{
		RawInput:        params.RawInput,
		Constraints:     params.Constraints,
		TrainingProfile: params.TrainingProfile,
	}
	p.Assumptions = assumptions
	p.SyncedAt = ""

	if err := Validate(p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// ReconcileUpdate merges a regenerated payload over an existing project.
// Identity fields always come from the local project, even when the payload
// claims different values. Progress, pause state and the master plan are
// taken from the payload only when it actually carries them.
func ReconcileUpdate(raw []byte, existing domain.Project, now time.Time) (domain.Project, error) {
	var env envelope
	wp, assumptions, err := decode(raw, &env)
	if err != nil {
		return domain.Project{}, err
	}
	p := applyDefaults(wp, now)

	p.ProjectID = existing.ProjectID
	p.CreatedAt = existing.CreatedAt
	p.StartDate = existing.StartDate
	p.TimeHorizonDays = existing.TimeHorizonDays
	p.CreatedFrom = existing.CreatedFrom
	p.UpdatedAt = now.UTC().Format(time.RFC3339)
	p.SyncedAt = existing.SyncedAt

	if p.Status == "" {
		p.Status = existing.Status
	}
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	if wp.Pause == nil {
		p.Pause = existing.Pause
	}
	if wp.Progress == nil {
		p.Progress = existing.Progress
	}
	if wp.MasterPlan == nil {
		p.MasterPlan = existing.MasterPlan
	}
	if wp.GeneratedUntilDay == 0 {
		p.GeneratedUntilDay = existing.GeneratedUntilDay
	}
	if wp.LastGeneratedContext == "" {
		p.LastGeneratedContext = existing.LastGeneratedContext
	}
	if len(assumptions) > 0 {
		p.Assumptions = assumptions
	} else {
		p.Assumptions = existing.Assumptions
	}
	if p.Name == "" {
		p.Name = existing.Name
	}

	if err := Validate(p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}
