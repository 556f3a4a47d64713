package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/db"
	"github.com/organivo/organivo/internal/apperrors"
	"github.com/organivo/organivo/internal/models"
	"github.com/organivo/organivo/internal/utils"
	"gorm.io/gorm"
)

// Tasks owns the task endpoints, scoped to a project and a list the caller
// owns through the project.
type Tasks struct {
	Hub *BoardHub
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ListID      uint   `json:"listId" binding:"required"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   *bool  `json:"completed"`
	ListID      uint   `json:"listId"`
}

type ReorderTasksRequest struct {
	Tasks []TaskPlacement `json:"tasks" binding:"required,dive"`
}

// TaskPlacement is one entry of a batch reorder: which task, which list,
// which position.
type TaskPlacement struct {
	ID     uint `json:"id" binding:"required"`
	Order  int  `json:"order"`
	ListID uint `json:"listId" binding:"required"`
}

func validateTaskFields(title, description string) error {
	if title != "" && len(title) > 100 {
		return apperrors.Validation("Title must be at most 100 characters")
	}

	if len(description) > 500 {
		return apperrors.Validation("Description must be at most 500 characters")
	}

	return nil
}

func findProjectTask(taskParam string, projectID uint) (*models.Task, error) {
	taskID, err := parseEntityID(taskParam)

	if err != nil {
		return nil, err
	}

	var task models.Task

	err = db.DB.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Task not found")
		}
		return nil, err
	}

	return &task, nil
}

func (h *Tasks) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body CreateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Please provide a task title and a list"))
		return
	}

	if err := validateTaskFields(body.Title, body.Description); err != nil {
		fail(ctx, err)
		return
	}

	var list models.List

	err = db.DB.Where("id = ? AND project_id = ?", body.ListID, project.ID).First(&list).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, apperrors.NotFound("List not found"))
			return
		}
		fail(ctx, err)
		return
	}

	// New tasks go to the bottom of their list.
	var maxOrder int

	err = db.DB.Model(&models.Task{}).
		Where("list_id = ?", list.ID).
		Select("COALESCE(MAX(sort_order), -1)").
		Scan(&maxOrder).Error

	if err != nil {
		fail(ctx, err)
		return
	}

	task := models.Task{
		Title:       strings.TrimSpace(body.Title),
		Description: strings.TrimSpace(body.Description),
		ProjectID:   project.ID,
		ListID:      list.ID,
		Order:       maxOrder + 1,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		fail(ctx, err)
		return
	}

	h.Hub.NotifyProject(project.ID)

	respond(ctx, http.StatusCreated, "", gin.H{
		"task": newTaskResponse(task),
	})
}

func (h *Tasks) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	task, err := findProjectTask(ctx.Param("task_id"), project.ID)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid request"))
		return
	}

	if err := validateTaskFields(body.Title, body.Description); err != nil {
		fail(ctx, err)
		return
	}

	if body.Title != "" {
		task.Title = strings.TrimSpace(body.Title)
	}

	if body.Description != "" {
		task.Description = strings.TrimSpace(body.Description)
	}

	if body.Completed != nil {
		task.Completed = *body.Completed
	}

	// Moving a task only works within the same project.
	if body.ListID != 0 && body.ListID != task.ListID {
		var list models.List

		err := db.DB.Where("id = ? AND project_id = ?", body.ListID, project.ID).First(&list).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(ctx, apperrors.NotFound("List not found"))
				return
			}
			fail(ctx, err)
			return
		}

		task.ListID = list.ID
	}

	if err := db.DB.Save(task).Error; err != nil {
		fail(ctx, err)
		return
	}

	h.Hub.NotifyProject(project.ID)

	respond(ctx, http.StatusOK, "", gin.H{
		"task": newTaskResponse(*task),
	})
}

func (h *Tasks) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	task, err := findProjectTask(ctx.Param("task_id"), project.ID)

	if err != nil {
		fail(ctx, err)
		return
	}

	if err := db.DB.Delete(task).Error; err != nil {
		fail(ctx, err)
		return
	}

	h.Hub.NotifyProject(project.ID)

	respond(ctx, http.StatusOK, "Task deleted successfully", gin.H{
		"taskId": task.ID,
	})
}

// Reorder applies a batch of task placements in one transaction. Every task
// id must belong to the project and every target list must too; otherwise
// nothing is written.
func (h *Tasks) Reorder(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body ReorderTasksRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Please provide the task placements"))
		return
	}

	if len(body.Tasks) == 0 {
		fail(ctx, apperrors.Validation("Please provide the task placements"))
		return
	}

	var taskIDs []uint

	if err := db.DB.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
		fail(ctx, err)
		return
	}

	var listIDs []uint

	if err := db.DB.Model(&models.List{}).Where("project_id = ?", project.ID).Pluck("id", &listIDs).Error; err != nil {
		fail(ctx, err)
		return
	}

	ownedTasks := make(map[uint]bool, len(taskIDs))
	for _, id := range taskIDs {
		ownedTasks[id] = true
	}

	ownedLists := make(map[uint]bool, len(listIDs))
	for _, id := range listIDs {
		ownedLists[id] = true
	}

	for _, placement := range body.Tasks {
		if !ownedTasks[placement.ID] {
			fail(ctx, apperrors.Validation("Every task must belong to the project"))
			return
		}

		if !ownedLists[placement.ListID] {
			fail(ctx, apperrors.Validation("Every target list must belong to the project"))
			return
		}
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		for _, placement := range body.Tasks {
			err := tx.Model(&models.Task{}).
				Where("id = ? AND project_id = ?", placement.ID, project.ID).
				Updates(map[string]interface{}{
					"sort_order": placement.Order,
					"list_id":    placement.ListID,
				}).Error

			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		fail(ctx, err)
		return
	}

	h.Hub.NotifyProject(project.ID)

	respond(ctx, http.StatusOK, "Tasks reordered successfully", gin.H{
		"updated": len(body.Tasks),
	})
}
