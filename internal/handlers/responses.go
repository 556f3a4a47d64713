package handlers

import (
	"time"

	"github.com/organivo/organivo/internal/models"
)

type ProjectResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Owner       uint      `json:"owner"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ProjectID   uint           `json:"projectId"`
	Position    int            `json:"position"`
	Tasks       []TaskResponse `json:"tasks,omitempty"`
}

type TaskResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	ProjectID   uint   `json:"projectId"`
	ListID      uint   `json:"listId"`
	Order       int    `json:"order"`
}

func newProjectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Owner:       project.OwnerID,
		Status:      project.Status,
		Priority:    project.Priority,
		IsPublic:    project.IsPublic,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func newListResponse(list models.List) ListResponse {
	return ListResponse{
		ID:          list.ID,
		Title:       list.Title,
		Description: list.Description,
		ProjectID:   list.ProjectID,
		Position:    list.Position,
	}
}

func newTaskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		ProjectID:   task.ProjectID,
		ListID:      task.ListID,
		Order:       task.Order,
	}
}
