package store

import (
	"context"
	"fmt"
	"time"

	"axiom/internal/domain"
	"axiom/internal/events"
	"axiom/internal/roadmap"
)

// CreateProject stores a freshly reconciled project and selects it.
func (s *Store) CreateProject(ctx context.Context, p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := upsertProjectTx(ctx, tx, p); err != nil {
		return err
	}
	m, _, err := s.loadMeta(ctx)
	if err != nil {
		return err
	}
	m.SelectedProjectID = p.ProjectID
	if err := saveMetaTx(ctx, tx, m, s.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, events.ProjectCreated, p.ProjectID, "project", p.ProjectID, s.Actor, events.EventPayload{"name": p.Name}); err != nil {
		return err
	}
	return tx.Commit()
}

// ApplyTask marks a task done or skipped and persists the result. The
// transition is a no-op unless the task is currently todo.
func (s *Store) ApplyTask(ctx context.Context, projectID, taskID string, newState domain.TaskState) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	out := roadmap.ApplyTaskState(p, taskID, newState, s.now())
	before, after := p.Task(taskID), out.Task(taskID)
	if before == nil || after == nil || before.State == after.State {
		return p, nil
	}
	evtType := events.TaskDone
	if newState == domain.StateSkipped {
		evtType = events.TaskSkipped
	}
	if err := s.putTaskEvent(ctx, out, evtType, taskID); err != nil {
		return domain.Project{}, err
	}
	return out, nil
}

// UndoTask reverts a done or skipped task back to todo.
func (s *Store) UndoTask(ctx context.Context, projectID, taskID string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	out := roadmap.Undo(p, taskID, s.now())
	before, after := p.Task(taskID), out.Task(taskID)
	if before == nil || after == nil || before.State == after.State {
		return p, nil
	}
	if err := s.putTaskEvent(ctx, out, events.TaskUndone, taskID); err != nil {
		return domain.Project{}, err
	}
	return out, nil
}

func (s *Store) putTaskEvent(ctx context.Context, p domain.Project, evtType, taskID string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := upsertProjectTx(ctx, tx, p); err != nil {
		return err
	}
	if err := s.touchMetaTx(ctx, tx); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, evtType, p.ProjectID, "task", taskID, s.Actor, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// Pause shifts the whole schedule forward and marks the project paused.
func (s *Store) Pause(ctx context.Context, projectID string, days int, reason string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if days < 1 {
		return domain.Project{}, fmt.Errorf("pause days must be at least 1")
	}
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	out := roadmap.PauseProject(p, days, reason, s.now())
	if err := s.putProjectLocked(ctx, out, events.ProjectPaused, projectID, events.EventPayload{"days": days, "reason": reason}); err != nil {
		return domain.Project{}, err
	}
	return out, nil
}

// Resume reactivates a paused project without rewinding the schedule.
func (s *Store) Resume(ctx context.Context, projectID string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	out := roadmap.ResumeProject(p, s.now())
	if err := s.putProjectLocked(ctx, out, events.ProjectResumed, projectID, nil); err != nil {
		return domain.Project{}, err
	}
	return out, nil
}

// Checkin records a daily history entry, replacing any entry for that date.
func (s *Store) Checkin(ctx context.Context, projectID string, entry domain.DailyHistory) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	out := roadmap.AddHistory(p, entry, s.now())
	payload := events.EventPayload{"date": entry.Date, "completed": len(entry.CompletedTaskIDs), "skipped": len(entry.SkippedTaskIDs)}
	if err := s.putProjectLocked(ctx, out, events.CheckinRecorded, projectID, payload); err != nil {
		return domain.Project{}, err
	}
	return out, nil
}

// Duplicate stores an id-remapped copy of a project.
func (s *Store) Duplicate(ctx context.Context, projectID string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	out := roadmap.Duplicate(p, s.now())
	if err := s.putProjectLocked(ctx, out, events.ProjectDuplicated, out.ProjectID, events.EventPayload{"source": projectID}); err != nil {
		return domain.Project{}, err
	}
	return out, nil
}

// SavePlanUpdate persists a reconciled plan regeneration. snapshotUpdatedAt
// is the project's updatedAt at the time generation started; if the stored
// project moved past it while the model was running, the result is discarded.
func (s *Store) SavePlanUpdate(ctx context.Context, p domain.Project, snapshotUpdatedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSnapshot(ctx, p.ProjectID, snapshotUpdatedAt); err != nil {
		return err
	}
	return s.putProjectLocked(ctx, p, events.PlanRegenerated, p.ProjectID, nil)
}

// SaveGeneratedMonth persists a project extended by a monthly task batch,
// with the same staleness guard as SavePlanUpdate.
func (s *Store) SaveGeneratedMonth(ctx context.Context, p domain.Project, snapshotUpdatedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSnapshot(ctx, p.ProjectID, snapshotUpdatedAt); err != nil {
		return err
	}
	return s.putProjectLocked(ctx, p, events.MonthGenerated, p.ProjectID, events.EventPayload{"generatedUntilDay": p.GeneratedUntilDay})
}

func (s *Store) checkSnapshot(ctx context.Context, projectID, snapshotUpdatedAt string) error {
	if snapshotUpdatedAt == "" {
		return nil
	}
	current, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if current.UpdatedAt != snapshotUpdatedAt {
		return ErrStale
	}
	return nil
}

// Today computes the today card for a project: day number, the selected
// tasks, and whether the project is actively paused.
type TodayCard struct {
	ProjectID   string        `json:"projectId"`
	ProjectName string        `json:"projectName"`
	Day         int           `json:"day"`
	Date        string        `json:"date"`
	Paused      bool          `json:"paused"`
	PauseUntil  string        `json:"pauseUntil,omitempty"`
	Tasks       []domain.Task `json:"tasks"`
}

func (s *Store) Today(ctx context.Context, projectID string) (TodayCard, error) {
	var (
		p   domain.Project
		err error
	)
	if projectID != "" {
		p, err = s.GetProject(ctx, projectID)
	} else {
		p, err = s.SelectedProject(ctx)
	}
	if err != nil {
		return TodayCard{}, err
	}
	now := s.now()
	card := TodayCard{
		ProjectID:   p.ProjectID,
		ProjectName: p.Name,
		Day:         roadmap.TodayNumber(p.StartDate, now),
		Date:        now.UTC().Format("2006-01-02"),
		Tasks:       []domain.Task{},
	}
	if roadmap.ActivelyPaused(p, now) {
		card.Paused = true
		card.PauseUntil = p.Pause.PauseUntil
		return card, nil
	}
	card.Tasks = roadmap.PickTodayTasks(p, card.Day)
	return card, nil
}
