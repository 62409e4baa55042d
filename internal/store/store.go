// Package store owns all persistent state. Every mutation loads the current
// project snapshot, applies a pure transition, and writes the result plus an
// audit event in one transaction. A process-wide mutex serializes writers;
// readers see the last committed snapshot.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"axiom/internal/db"
	"axiom/internal/domain"
	"axiom/internal/events"
	"axiom/internal/migrate"
)

// AppVersion is stamped into every serialized AppState.
const AppVersion = "1.0.0"

var (
	ErrNotFound = errors.New("not found")
	// ErrStale means a generated plan was produced against a project snapshot
	// that has since changed; the caller should retry from current state.
	ErrStale = errors.New("project changed while the plan was being generated")
)

type Store struct {
	DB     *sql.DB
	Events events.Writer
	Now    func() time.Time
	Actor  string

	mu sync.Mutex
}

// Open opens (and migrates) the workspace database.
func Open(workspace string) (*Store, error) {
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return New(conn), nil
}

// New wraps an already-migrated database handle.
func New(conn *sql.DB) *Store {
	return &Store{
		DB:     conn,
		Events: events.Writer{DB: conn},
		Now:    time.Now,
		Actor:  "local",
	}
}

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// meta is the app_state document: everything in AppState except the projects,
// which live in their own table.
type meta struct {
	AppVersion        string `json:"appVersion"`
	SelectedProjectID string `json:"selectedProjectId,omitempty"`
	UserID            string `json:"userId,omitempty"`
	LastSyncedAt      string `json:"lastSyncedAt,omitempty"`
}

func (s *Store) loadMeta(ctx context.Context) (meta, string, error) {
	var doc, updatedAt string
	err := s.DB.QueryRowContext(ctx, `SELECT doc, updated_at FROM app_state WHERE id=1`).Scan(&doc, &updatedAt)
	if err == sql.ErrNoRows {
		return meta{AppVersion: AppVersion}, "", nil
	}
	if err != nil {
		return meta{}, "", err
	}
	var m meta
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return meta{}, "", fmt.Errorf("decode app state: %w", err)
	}
	return m, updatedAt, nil
}

func saveMetaTx(ctx context.Context, tx *sql.Tx, m meta, ts string) error {
	m.AppVersion = AppVersion
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO app_state(id, doc, updated_at) VALUES (1,?,?)
		 ON CONFLICT(id) DO UPDATE SET doc=excluded.doc, updated_at=excluded.updated_at`,
		string(doc), ts)
	return err
}

// GetProject returns one project snapshot.
func (s *Store) GetProject(ctx context.Context, projectID string) (domain.Project, error) {
	var doc string
	err := s.DB.QueryRowContext(ctx, `SELECT doc FROM projects WHERE project_id=?`, projectID).Scan(&doc)
	if err == sql.ErrNoRows {
		return domain.Project{}, ErrNotFound
	}
	if err != nil {
		return domain.Project{}, err
	}
	var p domain.Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return domain.Project{}, fmt.Errorf("decode project %s: %w", projectID, err)
	}
	return p, nil
}

// ListProjects returns all projects in insertion order.
func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT doc FROM projects ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p domain.Project
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// AppState assembles the full serialized application root.
func (s *Store) AppState(ctx context.Context) (domain.AppState, error) {
	m, updatedAt, err := s.loadMeta(ctx)
	if err != nil {
		return domain.AppState{}, err
	}
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return domain.AppState{}, err
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	if updatedAt == "" {
		updatedAt = s.now().UTC().Format(time.RFC3339)
	}
	return domain.AppState{
		AppVersion:        AppVersion,
		UpdatedAt:         updatedAt,
		SelectedProjectID: m.SelectedProjectID,
		Projects:          projects,
		UserID:            m.UserID,
		LastSyncedAt:      m.LastSyncedAt,
	}, nil
}

// PutProject writes a project snapshot and appends the given event, in one
// transaction.
func (s *Store) PutProject(ctx context.Context, p domain.Project, evtType string, payload events.EventPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putProjectLocked(ctx, p, evtType, p.ProjectID, payload)
}

func (s *Store) putProjectLocked(ctx context.Context, p domain.Project, evtType, entityID string, payload events.EventPayload) error {
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
	if err := s.Events.Append(ctx, tx, evtType, p.ProjectID, "project", entityID, s.Actor, payload); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertProjectTx(ctx context.Context, tx *sql.Tx, p domain.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", p.ProjectID, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects(project_id, name, status, updated_at, doc) VALUES (?,?,?,?,?)
		 ON CONFLICT(project_id) DO UPDATE SET name=excluded.name, status=excluded.status,
		 updated_at=excluded.updated_at, doc=excluded.doc`,
		p.ProjectID, p.Name, string(p.Status), p.UpdatedAt, string(doc))
	return err
}

func (s *Store) touchMetaTx(ctx context.Context, tx *sql.Tx) error {
	m, _, err := s.loadMeta(ctx)
	if err != nil {
		return err
	}
	return saveMetaTx(ctx, tx, m, s.now().UTC().Format(time.RFC3339))
}

// DeleteProject removes a project; the selection moves off it if needed.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE project_id=?`, projectID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	m, _, err := s.loadMeta(ctx)
	if err != nil {
		return err
	}
	if m.SelectedProjectID == projectID {
		m.SelectedProjectID = ""
	}
	if err := saveMetaTx(ctx, tx, m, s.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, events.ProjectDeleted, projectID, "project", projectID, s.Actor, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// SelectProject records which project the today view works on.
func (s *Store) SelectProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if projectID != "" {
		if _, err := s.GetProject(ctx, projectID); err != nil {
			return err
		}
	}
	return s.updateMeta(ctx, func(m *meta) { m.SelectedProjectID = projectID })
}

// SelectedProject resolves the current selection, falling back to the only
// project when exactly one exists.
func (s *Store) SelectedProject(ctx context.Context) (domain.Project, error) {
	m, _, err := s.loadMeta(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	if m.SelectedProjectID != "" {
		return s.GetProject(ctx, m.SelectedProjectID)
	}
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	if len(projects) == 0 {
		return domain.Project{}, ErrNotFound
	}
	if len(projects) > 1 {
		return domain.Project{}, fmt.Errorf("multiple projects exist; select one with axiom project use <id>")
	}
	return projects[0], nil
}

// SetUser stores the opaque sync identity.
func (s *Store) SetUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateMeta(ctx, func(m *meta) { m.UserID = userID })
}

// UserID returns the stored sync identity, or empty.
func (s *Store) UserID(ctx context.Context) (string, error) {
	m, _, err := s.loadMeta(ctx)
	return m.UserID, err
}

func (s *Store) updateMeta(ctx context.Context, mutate func(*meta)) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	m, _, err := s.loadMeta(ctx)
	if err != nil {
		return err
	}
	mutate(&m)
	if err := saveMetaTx(ctx, tx, m, s.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAll swaps the entire local state for a pulled remote state.
func (s *Store) ReplaceAll(ctx context.Context, state domain.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return err
	}
	for _, p := range state.Projects {
		if err := upsertProjectTx(ctx, tx, p); err != nil {
			return err
		}
	}
	m := meta{
		SelectedProjectID: state.SelectedProjectID,
		UserID:            state.UserID,
		LastSyncedAt:      state.LastSyncedAt,
	}
	updatedAt := state.UpdatedAt
	if updatedAt == "" {
		updatedAt = s.now().UTC().Format(time.RFC3339)
	}
	if err := saveMetaTx(ctx, tx, m, updatedAt); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, events.StatePulled, "", "app_state", "", s.Actor, events.EventPayload{"projects": len(state.Projects)}); err != nil {
		return err
	}
	return tx.Commit()
}

// MarkSynced records a successful push.
func (s *Store) MarkSynced(ctx context.Context, at string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	m, _, err := s.loadMeta(ctx)
	if err != nil {
		return err
	}
	m.LastSyncedAt = at
	if err := saveMetaTx(ctx, tx, m, s.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, events.StatePushed, "", "app_state", "", s.Actor, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// ListEvents returns the audit trail, newest first.
func (s *Store) ListEvents(ctx context.Context, projectID string, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, ts, type, COALESCE(project_id,''), entity_kind, COALESCE(entity_id,''), actor_id, payload_json FROM events`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id=?`
		args = append(args, projectID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.ProjectID, &e.EntityKind, &e.EntityID, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// GetSyncState returns a remote-side state blob for a user.
func (s *Store) GetSyncState(ctx context.Context, userID string) (string, string, error) {
	var doc, updatedAt string
	err := s.DB.QueryRowContext(ctx, `SELECT doc, updated_at FROM sync_states WHERE user_id=?`, userID).Scan(&doc, &updatedAt)
	if err == sql.ErrNoRows {
		return "", "", ErrNotFound
	}
	return doc, updatedAt, err
}

// PutSyncState stores a remote-side state blob for a user.
func (s *Store) PutSyncState(ctx context.Context, userID, doc, updatedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO sync_states(user_id, doc, updated_at) VALUES (?,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET doc=excluded.doc, updated_at=excluded.updated_at`,
		userID, doc, updatedAt)
	return err
}
