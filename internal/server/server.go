// Package server exposes the HTTP API: project CRUD, the today card, task
// transitions, plan generation, export and state sync.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"axiom/internal/domain"
	"axiom/internal/export"
	"axiom/internal/plan"
	"axiom/internal/planner"
	"axiom/internal/store"
)

// Config for the HTTP API handler.
type Config struct {
	Store    *store.Store
	Planner  *planner.Planner
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"project not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Axiom API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Axiom API", "1.0.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerMe(group)
	registerProjects(group, cfg.Store)
	registerToday(group, cfg.Store)
	registerTasks(group, cfg.Store)
	registerPlan(group, cfg.Store, cfg.Planner)
	registerSync(group, cfg.Store)
	registerEvents(group, cfg.Store)
	registerExport(router, basePath, cfg.Store)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			applyAuthSecurity(oas, basePath)
			spec, _ = json.Marshal(oas)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	healthPath := path.Join("/", basePath, "health")
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if route == healthPath {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var verr *plan.ValidationError
	if errors.As(err, &verr) {
		return newAPIError(http.StatusUnprocessableEntity, "validation_failed", "generated plan failed validation", map[string]any{"issues": verr.Issues})
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, planner.ErrNoMasterPlan), errors.Is(err, planner.ErrHorizonReached), errors.Is(err, store.ErrStale):
		return newAPIError(http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, planner.ErrNoAPIKey):
		return newAPIError(http.StatusServiceUnavailable, "planner_unavailable", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "missing") || strings.Contains(lowered, "required") || strings.Contains(lowered, "must be"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusServiceUnavailable:
		return "planner_unavailable"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", basePath, "openapi.json")
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Axiom API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerMe(api huma.API) {
	type meOutput struct {
		Body struct {
			Actor string `json:"actor"`
		} `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Identify the authenticated caller",
	}, func(ctx context.Context, _ *struct{}) (*meOutput, error) {
		out := &meOutput{}
		out.Body.Actor = actorID(ctx)
		return out, nil
	})
}

type projectPath struct {
	ProjectID string `path:"project_id"`
}

func registerProjects(api huma.API, s *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ProjectSummary `json:"body"`
	}, error) {
		items, err := s.ListProjects(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []ProjectSummary `json:"body"`
		}{Body: summarizeAll(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}",
		Summary:     "Get project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		p, err := s.GetProject(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/projects/{project_id}",
		Summary:     "Delete project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*struct {
		Body map[string]bool `json:"body"`
	}, error) {
		if err := s.DeleteProject(ctx, input.ProjectID); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body map[string]bool `json:"body"`
		}{Body: map[string]bool{"deleted": true}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "use-project",
		Method:      http.MethodPost,
		Path:        "/projects/{project_id}/use",
		Summary:     "Select the working project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		if err := s.SelectProject(ctx, input.ProjectID); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"selectedProjectId": input.ProjectID}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "duplicate-project",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/duplicate",
		Summary:       "Duplicate project with fresh ids",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		p, err := s.Duplicate(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})
}

func registerToday(api huma.API, s *store.Store) {
	type todayOutput struct {
		Body store.TodayCard `json:"body"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "today",
		Method:      http.MethodGet,
		Path:        "/today",
		Summary:     "Today card for the selected project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*todayOutput, error) {
		card, err := s.Today(ctx, "")
		if err != nil {
			return nil, handleError(err)
		}
		return &todayOutput{Body: card}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "project-today",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/today",
		Summary:     "Today card",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*todayOutput, error) {
		card, err := s.Today(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &todayOutput{Body: card}, nil
	})
}

func registerTasks(api huma.API, s *store.Store) {
	type taskPath struct {
		ProjectID string `path:"project_id"`
		TaskID    string `path:"task_id"`
	}
	transition := func(opID, suffix string, fn func(ctx context.Context, projectID, taskID string) (domain.Project, error)) {
		huma.Register(api, huma.Operation{
			OperationID: opID,
			Method:      http.MethodPost,
			Path:        "/projects/{project_id}/tasks/{task_id}/" + suffix,
			Summary:     "Task " + suffix,
			Errors:      []int{http.StatusNotFound},
		}, func(ctx context.Context, input *taskPath) (*struct {
			Body domain.Project `json:"body"`
		}, error) {
			p, err := fn(ctx, input.ProjectID, input.TaskID)
			if err != nil {
				return nil, handleError(err)
			}
			return &struct {
				Body domain.Project `json:"body"`
			}{Body: p}, nil
		})
	}
	transition("task-done", "done", func(ctx context.Context, projectID, taskID string) (domain.Project, error) {
		return s.ApplyTask(ctx, projectID, taskID, domain.StateDone)
	})
	transition("task-skip", "skip", func(ctx context.Context, projectID, taskID string) (domain.Project, error) {
		return s.ApplyTask(ctx, projectID, taskID, domain.StateSkipped)
	})
	transition("task-undo", "undo", s.UndoTask)

	huma.Register(api, huma.Operation{
		OperationID: "pause-project",
		Method:      http.MethodPost,
		Path:        "/projects/{project_id}/pause",
		Summary:     "Pause project and shift the schedule",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ProjectID string       `path:"project_id"`
		Body      PauseRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		p, err := s.Pause(ctx, input.ProjectID, input.Body.Days, input.Body.Reason)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "resume-project",
		Method:      http.MethodPost,
		Path:        "/projects/{project_id}/resume",
		Summary:     "Resume a paused project",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *projectPath) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		p, err := s.Resume(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})
}

func registerPlan(api huma.API, s *store.Store, pl *planner.Planner) {
	plannerRequired := func() huma.StatusError {
		if pl == nil {
			return newAPIError(http.StatusServiceUnavailable, "planner_unavailable", "plan generation is not configured", nil)
		}
		return nil
	}

	huma.Register(api, huma.Operation{
		OperationID:   "create-plan",
		Method:        http.MethodPost,
		Path:          "/plan/create",
		Summary:       "Generate a new project plan",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Body CreatePlanRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if err := plannerRequired(); err != nil {
			return nil, err
		}
		if input.Body.UserText == "" || input.Body.TimeHorizonDays < 1 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "userText and timeHorizonDays are required", nil)
		}
		p, err := pl.CreatePlan(ctx, createRequest(input.Body))
		if err != nil {
			return nil, handleError(err)
		}
		if err := s.CreateProject(ctx, p); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-master-plan",
		Method:        http.MethodPost,
		Path:          "/plan/create-master",
		Summary:       "Generate a master-plan project without tasks",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		Body CreatePlanRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if err := plannerRequired(); err != nil {
			return nil, err
		}
		if input.Body.UserText == "" || input.Body.TimeHorizonDays < 1 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "userText and timeHorizonDays are required", nil)
		}
		p, err := pl.CreateMaster(ctx, createRequest(input.Body))
		if err != nil {
			return nil, handleError(err)
		}
		if err := s.CreateProject(ctx, p); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "generate-month",
		Method:      http.MethodPost,
		Path:        "/projects/{project_id}/plan/generate-month",
		Summary:     "Generate the next monthly task batch",
		Errors:      []int{http.StatusConflict, http.StatusNotFound, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ProjectID string               `path:"project_id"`
		Body      GenerateMonthRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if err := plannerRequired(); err != nil {
			return nil, err
		}
		p, err := s.GetProject(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		out, err := pl.GenerateMonth(ctx, p, input.Body.Days)
		if err != nil {
			return nil, handleError(err)
		}
		if err := s.SaveGeneratedMonth(ctx, out, p.UpdatedAt); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "checkin",
		Method:      http.MethodPost,
		Path:        "/projects/{project_id}/checkin",
		Summary:     "Record a daily check-in, optionally replanning",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusServiceUnavailable},
	}, func(ctx context.Context, input *struct {
		ProjectID string         `path:"project_id"`
		Body      CheckinRequest `json:"body"`
	}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		if input.Body.Date == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "date is required", nil)
		}
		entry := domain.DailyHistory{
			Date:             input.Body.Date,
			CompletedTaskIDs: input.Body.CompletedTaskIDs,
			SkippedTaskIDs:   input.Body.SkippedTaskIDs,
			ZeroDay:          input.Body.ZeroDay,
			Notes:            input.Body.Notes,
		}
		// apply local transitions first so a failed replan loses nothing
		for _, taskID := range entry.CompletedTaskIDs {
			if _, err := s.ApplyTask(ctx, input.ProjectID, taskID, domain.StateDone); err != nil {
				return nil, handleError(err)
			}
		}
		for _, taskID := range entry.SkippedTaskIDs {
			if _, err := s.ApplyTask(ctx, input.ProjectID, taskID, domain.StateSkipped); err != nil {
				return nil, handleError(err)
			}
		}
		p, err := s.Checkin(ctx, input.ProjectID, entry)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.Replan {
			if err := plannerRequired(); err != nil {
				return nil, err
			}
			updated, err := pl.UpdatePlan(ctx, p, entry, input.Body.AdjustmentText)
			if err != nil {
				return nil, handleError(err)
			}
			if err := s.SavePlanUpdate(ctx, updated, p.UpdatedAt); err != nil {
				return nil, handleError(err)
			}
			p = updated
		}
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: p}, nil
	})
}

func createRequest(body CreatePlanRequest) planner.CreateRequest {
	startDate := body.StartDate
	if startDate == "" {
		startDate = time.Now().UTC().Format("2006-01-02")
	}
	return planner.CreateRequest{
		UserText:        body.UserText,
		TimeHorizonDays: body.TimeHorizonDays,
		Constraints:     body.Constraints,
		StartDate:       startDate,
		TrainingProfile: body.TrainingProfile,
	}
}

func registerSync(api huma.API, s *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "sync-push",
		Method:      http.MethodPost,
		Path:        "/sync/push",
		Summary:     "Store a user's full state blob",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body SyncPushRequest `json:"body"`
	}) (*struct {
		Body map[string]bool `json:"body"`
	}, error) {
		if input.Body.UserID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "userId is required", nil)
		}
		doc, err := json.Marshal(input.Body.AppState)
		if err != nil {
			return nil, handleError(err)
		}
		updatedAt := input.Body.AppState.UpdatedAt
		if updatedAt == "" {
			updatedAt = time.Now().UTC().Format(time.RFC3339)
		}
		if err := s.PutSyncState(ctx, input.Body.UserID, string(doc), updatedAt); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body map[string]bool `json:"body"`
		}{Body: map[string]bool{"success": true}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sync-pull",
		Method:      http.MethodGet,
		Path:        "/sync/pull",
		Summary:     "Fetch a user's full state blob",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		UserID string `query:"userId"`
	}) (*struct {
		Body SyncPullResponse `json:"body"`
	}, error) {
		if input.UserID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "userId is required", nil)
		}
		doc, updatedAt, err := s.GetSyncState(ctx, input.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return &struct {
				Body SyncPullResponse `json:"body"`
			}{Body: SyncPullResponse{AppState: nil}}, nil
		}
		if err != nil {
			return nil, handleError(err)
		}
		var state domain.AppState
		if err := json.Unmarshal([]byte(doc), &state); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SyncPullResponse `json:"body"`
		}{Body: SyncPullResponse{AppState: &state, UpdatedAt: updatedAt}}, nil
	})
}

func registerEvents(api huma.API, s *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List audit events, newest first",
	}, func(ctx context.Context, input *struct {
		ProjectID string `query:"project_id"`
		Limit     int    `query:"limit"`
	}) (*struct {
		Body []domain.Event `json:"body"`
	}, error) {
		items, err := s.ListEvents(ctx, input.ProjectID, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		if items == nil {
			items = []domain.Event{}
		}
		return &struct {
			Body []domain.Event `json:"body"`
		}{Body: items}, nil
	})
}

// Export endpoints return plain text rather than JSON, so they bypass huma.
func registerExport(router chi.Router, basePath string, s *store.Store) {
	router.Get(basePath+"/projects/{project_id}/export/ics", func(w http.ResponseWriter, r *http.Request) {
		p, err := s.GetProject(r.Context(), chi.URLParam(r, "project_id"))
		if err != nil {
			respondStatusError(w, handleError(err))
			return
		}
		var filter []domain.TaskType
		if raw := r.URL.Query().Get("types"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				t := domain.TaskType(strings.TrimSpace(part))
				if !t.Valid() {
					respondStatusError(w, newAPIError(http.StatusBadRequest, "bad_request", "invalid task type "+strconv.Quote(string(t)), nil))
					return
				}
				filter = append(filter, t)
			}
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="axiom.ics"`)
		io.WriteString(w, export.ICS(p, filter, time.Now()))
	})

	router.Get(basePath+"/projects/{project_id}/export/gantt", func(w http.ResponseWriter, r *http.Request) {
		p, err := s.GetProject(r.Context(), chi.URLParam(r, "project_id"))
		if err != nil {
			respondStatusError(w, handleError(err))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, export.Gantt(p))
	})
}
