package server

import (
	"axiom/internal/domain"
	"axiom/internal/roadmap"
)

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

func summarize(p domain.Project) ProjectSummary {
	return ProjectSummary{
		ProjectID:       p.ProjectID,
		Name:            p.Name,
		Status:          string(p.Status),
		StartDate:       p.StartDate,
		TimeHorizonDays: p.TimeHorizonDays,
		Progress:        roadmap.ProjectProgress(p),
		Tasks:           len(p.Tasks),
		UpdatedAt:       p.UpdatedAt,
	}
}

func summarizeAll(projects []domain.Project) []ProjectSummary {
	res := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		res = append(res, summarize(p))
	}
	return res
}

// CreatePlanRequest drives both one-shot and master-plan creation.
type CreatePlanRequest struct {
	UserText        string                  `json:"userText"`
	TimeHorizonDays int                     `json:"timeHorizonDays"`
	Constraints     string                  `json:"constraints,omitempty"`
	StartDate       string                  `json:"startDate,omitempty"`
	TrainingProfile *domain.TrainingProfile `json:"trainingProfile,omitempty"`
}

type PauseRequest struct {
	Days   int    `json:"days"`
	Reason string `json:"reason,omitempty"`
}

type CheckinRequest struct {
	Date             string   `json:"date"`
	CompletedTaskIDs []string `json:"completedTaskIds,omitempty"`
	SkippedTaskIDs   []string `json:"skippedTaskIds,omitempty"`
	ZeroDay          bool     `json:"zeroDay,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	AdjustmentText   string   `json:"adjustmentText,omitempty"`
	Replan           bool     `json:"replan,omitempty"`
}

type GenerateMonthRequest struct {
	Days int `json:"days,omitempty"`
}

type SyncPushRequest struct {
	UserID   string          `json:"userId"`
	AppState domain.AppState `json:"appState"`
}

type SyncPullResponse struct {
	AppState  *domain.AppState `json:"appState"`
	UpdatedAt string           `json:"updatedAt,omitempty"`
}
