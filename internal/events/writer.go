// Package events appends an audit trail of state transitions to the events
// table, always inside the same transaction as the state change itself.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event types written by the store.
const (
	ProjectCreated    = "project.created"
	ProjectUpdated    = "project.updated"
	ProjectDeleted    = "project.deleted"
	ProjectDuplicated = "project.duplicated"
	ProjectPaused     = "project.paused"
	ProjectResumed    = "project.resumed"
	TaskDone          = "task.done"
	TaskSkipped       = "task.skipped"
	TaskUndone        = "task.undone"
	CheckinRecorded   = "checkin.recorded"
	PlanRegenerated   = "plan.regenerated"
	MonthGenerated    = "plan.month_generated"
	StatePushed       = "sync.pushed"
	StatePulled       = "sync.pulled"
)

type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type EventPayload map[string]any

func (w Writer) Append(ctx context.Context, tx *sql.Tx, evtType, projectID, entityKind, entityID, actorID string, payload EventPayload) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(ts,type,project_id,entity_kind,entity_id,actor_id,payload_json) VALUES (?,?,?,?,?,?,?)`,
		ts, evtType, nullable(projectID), entityKind, nullable(entityID), actorID, string(data))
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
