package axiomsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Axiom HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// Task represents the API task model (partial).
type Task struct {
	TaskID          string `json:"taskId"`
	PhaseID         string `json:"phaseId"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Effort          string `json:"effort"`
	DurationMinutes int    `json:"durationMinutes"`
	State           string `json:"state"`
	Schedule        struct {
		RecommendedDay int `json:"recommendedDay"`
		LatestDay      int `json:"latestDay"`
	} `json:"schedule"`
}

// Project represents the API project model (partial).
type Project struct {
	ProjectID       string `json:"projectId"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	StartDate       string `json:"startDate"`
	TimeHorizonDays int    `json:"timeHorizonDays"`
	UpdatedAt       string `json:"updatedAt"`
	Tasks           []Task `json:"tasks"`
}

// ProjectSummary is the list view of a project.
type ProjectSummary struct {
	ProjectID       string `json:"projectId"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	StartDate       string `json:"startDate"`
	TimeHorizonDays int    `json:"timeHorizonDays"`
	Progress        int    `json:"progress"`
	Tasks           int    `json:"tasks"`
	UpdatedAt       string `json:"updatedAt"`
}

// TodayCard is the deterministic daily task selection.
type TodayCard struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	Day         int    `json:"day"`
	Date        string `json:"date"`
	Paused      bool   `json:"paused"`
	PauseUntil  string `json:"pauseUntil,omitempty"`
	Tasks       []Task `json:"tasks"`
}

// Event represents an audit log entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	ProjectID  string `json:"project_id"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

// CreatePlanRequest drives both one-shot and master-plan creation.
type CreatePlanRequest struct {
	UserText        string `json:"userText"`
	TimeHorizonDays int    `json:"timeHorizonDays"`
	Constraints     string `json:"constraints,omitempty"`
	StartDate       string `json:"startDate,omitempty"`
}

// CheckinRequest records a day's outcome, optionally triggering a replan.
type CheckinRequest struct {
	Date             string   `json:"date"`
	CompletedTaskIDs []string `json:"completedTaskIds,omitempty"`
	SkippedTaskIDs   []string `json:"skippedTaskIds,omitempty"`
	ZeroDay          bool     `json:"zeroDay,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	AdjustmentText   string   `json:"adjustmentText,omitempty"`
	Replan           bool     `json:"replan,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Projects lists all projects.
func (c *Client) Projects(ctx context.Context) ([]ProjectSummary, error) {
	var resp []ProjectSummary
	err := c.do(ctx, http.MethodGet, "projects", nil, &resp)
	return resp, err
}

// Project fetches a full project document.
func (c *Client) Project(ctx context.Context, projectID string) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodGet, c.projectPath(projectID, ""), nil, &resp)
	return resp, err
}

// Today returns the card for the selected project.
func (c *Client) Today(ctx context.Context) (TodayCard, error) {
	var resp TodayCard
	err := c.do(ctx, http.MethodGet, "today", nil, &resp)
	return resp, err
}

// ProjectToday returns the card for a specific project.
func (c *Client) ProjectToday(ctx context.Context, projectID string) (TodayCard, error) {
	var resp TodayCard
	err := c.do(ctx, http.MethodGet, c.projectPath(projectID, "today"), nil, &resp)
	return resp, err
}

// TaskDone marks a task done and applies its skill deltas.
func (c *Client) TaskDone(ctx context.Context, projectID, taskID string) (Project, error) {
	return c.taskTransition(ctx, projectID, taskID, "done")
}

// TaskSkip marks a task skipped.
func (c *Client) TaskSkip(ctx context.Context, projectID, taskID string) (Project, error) {
	return c.taskTransition(ctx, projectID, taskID, "skip")
}

// TaskUndo returns a task to todo and reverses its skill deltas.
func (c *Client) TaskUndo(ctx context.Context, projectID, taskID string) (Project, error) {
	return c.taskTransition(ctx, projectID, taskID, "undo")
}

func (c *Client) taskTransition(ctx context.Context, projectID, taskID, action string) (Project, error) {
	var resp Project
	endpoint := c.projectPath(projectID, fmt.Sprintf("tasks/%s/%s", url.PathEscape(taskID), action))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// Pause shifts the project's schedule forward by days.
func (c *Client) Pause(ctx context.Context, projectID string, days int, reason string) (Project, error) {
	var resp Project
	body := map[string]any{"days": days, "reason": reason}
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "pause"), body, &resp)
	return resp, err
}

// Resume clears a pause without rewinding the schedule.
func (c *Client) Resume(ctx context.Context, projectID string) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "resume"), nil, &resp)
	return resp, err
}

// Checkin records a daily check-in.
func (c *Client) Checkin(ctx context.Context, projectID string, req CheckinRequest) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "checkin"), req, &resp)
	return resp, err
}

// CreatePlan generates a fully tasked project.
func (c *Client) CreatePlan(ctx context.Context, req CreatePlanRequest) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodPost, "plan/create", req, &resp)
	return resp, err
}

// CreateMasterPlan generates a phased project without tasks.
func (c *Client) CreateMasterPlan(ctx context.Context, req CreatePlanRequest) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodPost, "plan/create-master", req, &resp)
	return resp, err
}

// GenerateMonth generates the next monthly task batch.
func (c *Client) GenerateMonth(ctx context.Context, projectID string, days int) (Project, error) {
	var resp Project
	body := map[string]any{"days": days}
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "plan/generate-month"), body, &resp)
	return resp, err
}

// Events returns recent audit events, newest first.
func (c *Client) Events(ctx context.Context, projectID string, limit int) ([]Event, error) {
	endpoint := "events"
	q := url.Values{}
	if projectID != "" {
		q.Set("project_id", projectID)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// ExportICS returns the project calendar as iCalendar text.
func (c *Client) ExportICS(ctx context.Context, projectID string, types []string) (string, error) {
	endpoint := c.projectPath(projectID, "export/ics")
	if len(types) > 0 {
		endpoint += "?types=" + url.QueryEscape(strings.Join(types, ","))
	}
	return c.doText(ctx, endpoint)
}

// ExportGantt returns the project roadmap as a Mermaid gantt definition.
func (c *Client) ExportGantt(ctx context.Context, projectID string) (string, error) {
	return c.doText(ctx, c.projectPath(projectID, "export/gantt"))
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	resp, err := c.request(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) doText(ctx context.Context, endpoint string) (string, error) {
	resp, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	return string(b), nil
}

func (c *Client) request(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/api/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) projectPath(projectID, p string) string {
	escaped := url.PathEscape(projectID)
	if p == "" {
		return "projects/" + escaped
	}
	return fmt.Sprintf("projects/%s/%s", escaped, strings.TrimLeft(p, "/"))
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
